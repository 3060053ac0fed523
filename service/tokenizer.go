package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tebeka/snowball"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/parser"
)

// commentPattern removes C-style comments from text without a grammar. The
// block alternative stops at the first '/', so a block comment containing a
// slash is left in place.
var commentPattern = regexp.MustCompile(`(/\*[^/]*\*/)|(//.*)`)

// TokenizerImpl implements the Tokenizer interface
type TokenizerImpl struct {
	width int
	stem  bool
}

// NewTokenizer creates a tokenizer producing shingles of width words.
// Widths below one fall back to the default.
func NewTokenizer(width int, stem bool) *TokenizerImpl {
	if width < 1 {
		width = domain.DefaultShingleWidth
	}
	return &TokenizerImpl{width: width, stem: stem}
}

// Tokenize strips comments from text, splits it into lowercase words and
// returns the distinct shingles in order of first appearance. A text with
// fewer words than the shingle width has no shingles.
func (t *TokenizerImpl) Tokenize(ctx context.Context, path, text string) ([]string, error) {
	stripped := StripComments(ctx, path, text)

	words := strings.Fields(strings.ToLower(stripped))
	if t.stem && len(words) > 0 {
		stemmed, err := stemWords(words)
		if err != nil {
			return nil, err
		}
		words = stemmed
	}

	return Shingles(words, t.width), nil
}

// StripComments removes comments using a tree-sitter grammar chosen by the
// extension of path, falling back to a regular expression when there is no
// grammar or the parse fails.
func StripComments(ctx context.Context, path, text string) string {
	out, ok, err := parser.StripComments(ctx, path, []byte(text))
	if ok && err == nil {
		return string(out)
	}
	return commentPattern.ReplaceAllString(text, "")
}

// Shingles joins every window of width consecutive words with a single
// space. Duplicates are dropped, keeping first appearances.
func Shingles(words []string, width int) []string {
	if width < 1 || len(words) < width {
		return nil
	}

	seen := make(map[string]struct{}, len(words)-width+1)
	shingles := make([]string, 0, len(words)-width+1)
	for i := 0; i+width <= len(words); i++ {
		s := strings.Join(words[i:i+width], " ")
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		shingles = append(shingles, s)
	}
	return shingles
}

func stemWords(words []string) ([]string, error) {
	stemmer, err := snowball.New("english")
	if err != nil {
		return nil, fmt.Errorf("create stemmer: %w", err)
	}
	defer stemmer.Close()

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = stemmer.Stem(w)
	}
	return out, nil
}
