package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShingles(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		width int
		want  []string
	}{
		{
			name:  "sliding windows",
			words: []string{"a", "b", "c", "d"},
			width: 3,
			want:  []string{"a b c", "b c d"},
		},
		{
			name:  "exactly width words",
			words: []string{"a", "b", "c"},
			width: 3,
			want:  []string{"a b c"},
		},
		{
			name:  "fewer words than width",
			words: []string{"a", "b"},
			width: 3,
			want:  nil,
		},
		{
			name:  "duplicates keep first appearance",
			words: []string{"x", "y", "x", "y", "x"},
			width: 2,
			want:  []string{"x y", "y x"},
		},
		{
			name:  "width one",
			words: []string{"p", "q", "p"},
			width: 1,
			want:  []string{"p", "q"},
		},
		{
			name:  "invalid width",
			words: []string{"a"},
			width: 0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shingles(tt.words, tt.width)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripComments_RegexFallback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		in   string
		want string
	}{
		{"line comment", "notes.txt", "keep // drop\nnext", "keep \nnext"},
		{"block comment", "notes.txt", "a /* drop */ b", "a  b"},
		{"block with slash survives", "notes.txt", "a /* x/y */ b", "a /* x/y */ b"},
		{"no comments", "essay.md", "plain words", "plain words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(ctx, tt.path, tt.in))
		})
	}
}

func TestStripComments_GrammarAware(t *testing.T) {
	src := `class A {
    String url = "http://example.com"; // site
    /* a/b */ int x;
}`
	got := StripComments(context.Background(), "A.java", src)

	assert.Contains(t, got, `"http://example.com"`)
	assert.NotContains(t, got, "site")
	assert.NotContains(t, got, "a/b")
	assert.Contains(t, got, "int x;")
}

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(3, false)

	got, err := tok.Tokenize(context.Background(), "Main.java", `// header
public   static VOID main() { }`)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"public static void",
		"static void main()",
		"void main() {",
		"main() { }",
	}, got)
}

func TestTokenizer_TooShort(t *testing.T) {
	got, err := NewTokenizer(3, false).Tokenize(context.Background(), "a.txt", "two words")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenizer_DefaultWidth(t *testing.T) {
	tok := NewTokenizer(0, false)
	assert.Equal(t, 3, tok.width)
}

func TestTokenizer_Stemming(t *testing.T) {
	tok := NewTokenizer(2, true)

	a, err := tok.Tokenize(context.Background(), "a.txt", "running quickly jumps")
	require.NoError(t, err)
	b, err := tok.Tokenize(context.Background(), "b.txt", "runs quickly jumping")
	require.NoError(t, err)

	assert.Equal(t, a, b, "inflections collapse to the same stems")
	assert.Equal(t, []string{"run quick", "quick jump"}, a)
}
