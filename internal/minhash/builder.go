package minhash

import (
	"fmt"
	"math"
	"sort"

	"github.com/sourcegraph/conc/iter"
)

// DefaultPermutationCount is the signature length used when none is configured.
const DefaultPermutationCount = 2500

// DocumentID is the dense index of a document, assigned in insertion order.
type DocumentID int

// Builder accumulates token sets and turns them into an immutable Matrix.
// A Builder is not safe for concurrent use and can be built only once.
type Builder struct {
	family   *HashFamily
	docs     []TokenSet
	vocab    map[string]struct{}
	workers  int
	consumed bool
}

// NewBuilder creates a builder drawing hash functions from family.
// A nil family gets a clock-seeded one.
func NewBuilder(family *HashFamily) *Builder {
	if family == nil {
		family = NewHashFamily(nil)
	}
	return &Builder{
		family: family,
		vocab:  make(map[string]struct{}),
	}
}

// SetWorkers bounds the goroutines used to compute signatures.
// Zero or less means GOMAXPROCS.
func (b *Builder) SetWorkers(n int) {
	if n < 0 {
		n = 0
	}
	b.workers = n
}

// AddDocument registers a token set and returns its id. The set must not be
// modified until Build returns.
func (b *Builder) AddDocument(tokens TokenSet) (DocumentID, error) {
	if b.consumed {
		return 0, ErrBuilderConsumed
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("%w: cannot add a document without tokens", ErrEmptyInput)
	}

	id := DocumentID(len(b.docs))
	b.docs = append(b.docs, tokens)
	for t := range tokens {
		b.vocab[t] = struct{}{}
	}
	return id, nil
}

// DocumentCount returns the number of documents added so far.
func (b *Builder) DocumentCount() int {
	return len(b.docs)
}

// VocabularySize returns the number of distinct tokens across all documents.
func (b *Builder) VocabularySize() int {
	return len(b.vocab)
}

// Build computes one MinHash signature per document and freezes them into a
// Matrix. The builder is consumed whether or not Build succeeds.
//
// Cost is O(permutationCount * total token occurrences).
func (b *Builder) Build(permutationCount int) (*Matrix, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true
	docs := b.docs
	vocab := b.vocab
	b.docs, b.vocab = nil, nil

	if permutationCount <= 0 {
		return nil, fmt.Errorf("%w: permutation count must be positive, got %d", ErrInvalidParameter, permutationCount)
	}

	termIndex := indexTerms(vocab)
	indexed := make([][]int64, len(docs))
	for id, doc := range docs {
		if len(doc) == 0 {
			return nil, fmt.Errorf("%w: document %d has no tokens", ErrEmptyInput, id)
		}
		ids := make([]int64, 0, len(doc))
		for t := range doc {
			idx, ok := termIndex[t]
			if !ok {
				idx = int64(len(termIndex))
				termIndex[t] = idx
			}
			ids = append(ids, idx)
		}
		indexed[id] = ids
	}

	funcs := b.family.Generate(permutationCount)
	mapper := iter.Mapper[[]int64, Signature]{MaxGoroutines: b.workers}
	signatures := mapper.Map(indexed, func(ids *[]int64) Signature {
		return minHash(*ids, funcs)
	})

	return &Matrix{
		signatures:   signatures,
		permutations: permutationCount,
	}, nil
}

// indexTerms assigns every token a unique integer. Sorting keeps the mapping
// reproducible for a seeded family.
func indexTerms(vocab map[string]struct{}) map[string]int64 {
	terms := make([]string, 0, len(vocab))
	for t := range vocab {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	index := make(map[string]int64, len(terms))
	for i, t := range terms {
		index[t] = int64(i)
	}
	return index
}

func minHash(ids []int64, funcs []HashFunc) Signature {
	sig := make(Signature, len(funcs))
	for k, fn := range funcs {
		minv := uint32(math.MaxUint32)
		for _, x := range ids {
			if v := fn.Apply(x); v < minv {
				minv = v
			}
		}
		sig[k] = minv
	}
	return sig
}
