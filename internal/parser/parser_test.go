package parser

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	parser := New(Java)
	if parser == nil {
		t.Fatal("New() returned nil")
	}
	if parser.parser == nil {
		t.Fatal("parser field is nil")
	}
}

func TestParserClose(t *testing.T) {
	parser := New(Java)
	result, err := parser.Parse(context.Background(), []byte("class A {}"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	result.Tree.Close()

	parser.Close()
	parser.Close()
}

func TestStripCommentsRepeatedly(t *testing.T) {
	source := []byte("class A { // note\n int x; /* block */ }")
	for i := 0; i < 200; i++ {
		stripped, ok, err := StripComments(context.Background(), "A.java", source)
		if err != nil || !ok {
			t.Fatalf("StripComments() = %v, %v", ok, err)
		}
		if strings.Contains(string(stripped), "note") || strings.Contains(string(stripped), "block") {
			t.Fatalf("comments left in %q", stripped)
		}
	}
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want *Language
	}{
		{"alice/Main.java", Java},
		{"alice/MAIN.JAVA", Java},
		{"bob/main.go", Go},
		{"carol/solve.py", Python},
		{"dave/app.js", JavaScript},
		{"erin/list.c", C},
		{"frank/list.cpp", CPP},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForPath(tt.path)
			if !ok {
				t.Fatalf("LanguageForPath(%q) found no language", tt.path)
			}
			if got != tt.want {
				t.Errorf("LanguageForPath(%q) = %s, want %s", tt.path, got.Name, tt.want.Name)
			}
		})
	}

	for _, path := range []string{"notes.txt", "report.pdf", "Makefile"} {
		if _, ok := LanguageForPath(path); ok {
			t.Errorf("LanguageForPath(%q) should be unsupported", path)
		}
	}
}

func TestParseToleratesSyntaxErrors(t *testing.T) {
	parser := New(Java)
	result, err := parser.Parse(context.Background(), []byte("class Broken { void f( { // oops\n}"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.RootNode == nil {
		t.Fatal("Parse() returned nil root")
	}
}

func TestWalkTreeSkipChildren(t *testing.T) {
	parser := New(Python)
	result, err := parser.Parse(context.Background(), []byte("def f():\n    return 1\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	visited := 0
	err = parser.WalkTree(result.RootNode, func(n *sitter.Node) error {
		visited++
		if n.Type() == "function_definition" {
			return SkipChildren
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkTree() error: %v", err)
	}
	// module + function_definition, nothing beneath it
	if visited != 2 {
		t.Errorf("WalkTree() visited %d nodes, want 2", visited)
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		source string
		gone   []string
		kept   []string
	}{
		{
			name: "java line and block comments",
			path: "Main.java",
			source: `/** Entry point. */
public class Main {
    // prints a greeting
    public static void main(String[] args) {
        System.out.println("hi"); /* trailing */
    }
}`,
			gone: []string{"Entry point", "prints a greeting", "trailing"},
			kept: []string{"public class Main", `System.out.println("hi");`},
		},
		{
			name:   "java comment markers inside strings survive",
			path:   "Main.java",
			source: `class A { String s = "// not a comment"; }`,
			kept:   []string{`"// not a comment"`},
		},
		{
			name:   "block comment containing a slash",
			path:   "Main.java",
			source: "class A { /* a/b */ int x; }",
			gone:   []string{"a/b"},
			kept:   []string{"int x;"},
		},
		{
			name:   "go comments",
			path:   "main.go",
			source: "package main\n\n// Doc.\nfunc main() { /* x */ }\n",
			gone:   []string{"Doc.", "/* x */"},
			kept:   []string{"func main()"},
		},
		{
			name:   "python comments",
			path:   "solve.py",
			source: "# header\nx = 1  # inline\n",
			gone:   []string{"header", "inline"},
			kept:   []string{"x = 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok, err := StripComments(context.Background(), tt.path, []byte(tt.source))
			if err != nil {
				t.Fatalf("StripComments() error: %v", err)
			}
			if !ok {
				t.Fatalf("StripComments() reported %q as unsupported", tt.path)
			}
			text := string(out)
			for _, s := range tt.gone {
				if strings.Contains(text, s) {
					t.Errorf("stripped output still contains %q:\n%s", s, text)
				}
			}
			for _, s := range tt.kept {
				if !strings.Contains(text, s) {
					t.Errorf("stripped output lost %q:\n%s", s, text)
				}
			}
		})
	}
}

func TestStripCommentsKeepsTokensApart(t *testing.T) {
	out, _, err := StripComments(context.Background(), "A.java", []byte("class A { int/*x*/y; }"))
	if err != nil {
		t.Fatalf("StripComments() error: %v", err)
	}
	if string(out) != "class A { int y; }" {
		t.Errorf("StripComments() = %q, want %q", out, "class A { int y; }")
	}
}

func TestStripCommentsUnsupported(t *testing.T) {
	out, ok, err := StripComments(context.Background(), "essay.txt", []byte("// words"))
	if err != nil {
		t.Fatalf("StripComments() error: %v", err)
	}
	if ok || out != nil {
		t.Errorf("StripComments() = (%q, %v), want (nil, false)", out, ok)
	}
}
