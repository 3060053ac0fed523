package cluster

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

// NoPeerSimilarity is the top similarity of a document that has nothing to be
// compared against (a single-document corpus).
const NoPeerSimilarity = 0.0

// TopSimilarities returns, in document id order, the maximum estimated Jaccard
// similarity of each document against every other document.
func TopSimilarities(ctx context.Context, m *minhash.Matrix, workers int) ([]float64, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: matrix is nil", minhash.ErrInvalidParameter)
	}

	n := m.DocumentCount()
	top := make([]float64, n)

	p := newRowPool(ctx, workers)
	for i := 0; i < n; i++ {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			best := NoPeerSimilarity
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				s, err := m.EstimateJaccard(minhash.DocumentID(i), minhash.DocumentID(j))
				if err != nil {
					return err
				}
				if s > best {
					best = s
				}
			}
			top[i] = best
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("sampling top similarities: %w", err)
	}
	return top, nil
}
