package cluster

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

// LabelFunc maps a document id to its external label (for example a student name).
type LabelFunc func(minhash.DocumentID) string

// Assembler partitions document pairs into anomalous and normal ones.
type Assembler interface {
	Assemble(ctx context.Context, m *minhash.Matrix, threshold float64, labelOf LabelFunc) (*Clusters, error)
}

// PairwiseAssembler compares every ordered pair of documents. A pair (i, j)
// above the threshold is recorded under i and, symmetrically, under j.
type PairwiseAssembler struct {
	// Workers bounds the goroutines scanning rows. Zero means GOMAXPROCS.
	Workers int
}

type hit struct {
	other      minhash.DocumentID
	similarity float64
}

// Assemble records (labelOf(j), s) under labelOf(i) for every i != j with
// s = EstimateJaccard(i, j) >= threshold. Matches within a label follow
// ascending j. labelOf is only called from the calling goroutine.
func (a PairwiseAssembler) Assemble(ctx context.Context, m *minhash.Matrix, threshold float64, labelOf LabelFunc) (*Clusters, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: matrix is nil", minhash.ErrInvalidParameter)
	}
	if labelOf == nil {
		labelOf = IndexLabel
	}

	n := m.DocumentCount()
	rows := make([][]hit, n)

	p := newRowPool(ctx, a.Workers)
	for i := 0; i < n; i++ {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var row []hit
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				s, err := m.EstimateJaccard(minhash.DocumentID(i), minhash.DocumentID(j))
				if err != nil {
					return err
				}
				if s >= threshold {
					row = append(row, hit{other: minhash.DocumentID(j), similarity: s})
				}
			}
			rows[i] = row
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("assembling clusters: %w", err)
	}

	clusters := newClusters()
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		label := labelOf(minhash.DocumentID(i))
		for _, h := range row {
			clusters.add(label, Match{Label: labelOf(h.other), Similarity: h.similarity})
		}
	}
	return clusters, nil
}

// IndexLabel labels a document by its decimal id.
func IndexLabel(id minhash.DocumentID) string {
	return strconv.Itoa(int(id))
}
