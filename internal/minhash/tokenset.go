package minhash

import "sort"

// TokenSet is an unordered set of distinct shingles describing one document.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from tokens, dropping duplicates.
func NewTokenSet(tokens ...string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Add inserts a token.
func (s TokenSet) Add(token string) {
	s[token] = struct{}{}
}

// Contains reports whether token is in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int {
	return len(s)
}

// Tokens returns the tokens in sorted order.
func (s TokenSet) Tokens() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
