package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

func buildMatrix(t *testing.T, permutations int, docs ...minhash.TokenSet) *minhash.Matrix {
	t.Helper()
	b := minhash.NewBuilder(minhash.NewSeededHashFamily(2024))
	for _, d := range docs {
		_, err := b.AddDocument(d)
		require.NoError(t, err)
	}
	m, err := b.Build(permutations)
	require.NoError(t, err)
	return m
}

func tokens(prefix string, n int) minhash.TokenSet {
	set := minhash.NewTokenSet()
	for i := 0; i < n; i++ {
		set.Add(fmt.Sprintf("%s %d", prefix, i))
	}
	return set
}

func labels(names ...string) LabelFunc {
	return func(id minhash.DocumentID) string {
		return names[id]
	}
}
