package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

func TestTopSimilarities(t *testing.T) {
	shared := tokens("shared", 40)
	m := buildMatrix(t, 512, shared, shared, tokens("alone", 30))

	top, err := TopSimilarities(context.Background(), m, 2)
	require.NoError(t, err)

	require.Len(t, top, 3)
	assert.Equal(t, 1.0, top[0])
	assert.Equal(t, 1.0, top[1])
	assert.Less(t, top[2], 0.05)
}

func TestTopSimilarities_MatchesPairwiseMaximum(t *testing.T) {
	m := buildMatrix(t, 256, tokens("a", 20), tokens("a", 30), tokens("a", 10), tokens("b", 5))

	top, err := TopSimilarities(context.Background(), m, 0)
	require.NoError(t, err)

	for i := 0; i < m.DocumentCount(); i++ {
		best := 0.0
		for j := 0; j < m.DocumentCount(); j++ {
			if i == j {
				continue
			}
			s, err := m.EstimateJaccard(minhash.DocumentID(i), minhash.DocumentID(j))
			require.NoError(t, err)
			if s > best {
				best = s
			}
		}
		assert.Equal(t, best, top[i])
	}
}

func TestTopSimilarities_SingleDocument(t *testing.T) {
	m := buildMatrix(t, 64, tokens("solo", 10))

	top, err := TopSimilarities(context.Background(), m, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{NoPeerSimilarity}, top)
}

func TestTopSimilarities_NilMatrix(t *testing.T) {
	_, err := TopSimilarities(context.Background(), nil, 1)
	assert.True(t, errors.Is(err, minhash.ErrInvalidParameter))
}

func TestTopSimilarities_Cancelled(t *testing.T) {
	m := buildMatrix(t, 64, tokens("a", 10), tokens("b", 10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TopSimilarities(ctx, m, 1)
	assert.True(t, errors.Is(err, context.Canceled))
}
