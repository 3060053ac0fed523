package cluster

import (
	"context"
	"fmt"
	"math"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

// Options configures a clustering run.
type Options struct {
	// StdFactor is k in mean + k*stddev.
	StdFactor float64
	// Workers bounds the goroutines of both passes. Zero means GOMAXPROCS.
	Workers int
	// Assembler defaults to a PairwiseAssembler using Workers.
	Assembler Assembler
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{StdFactor: DefaultStdFactor}
}

// MaxSimilarity is the largest value EstimateJaccard can return.
const MaxSimilarity = 1.0

// Result is the outcome of one clustering run. Nothing in it is retained by
// the package.
type Result struct {
	Sample  []float64
	Summary Summary
	// Cutoff is the threshold actually applied: Summary.Threshold capped at
	// MaxSimilarity, so exact copies are always reported.
	Cutoff   float64
	Clusters *Clusters
}

// Run samples top similarities, derives the threshold and assembles clusters.
func Run(ctx context.Context, m *minhash.Matrix, opts Options, labelOf LabelFunc) (*Result, error) {
	if err := validateStdFactor(opts.StdFactor); err != nil {
		return nil, err
	}

	sample, err := TopSimilarities(ctx, m, opts.Workers)
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(sample, opts.StdFactor)
	if err != nil {
		return nil, fmt.Errorf("estimating threshold: %w", err)
	}

	cutoff := math.Min(summary.Threshold, MaxSimilarity)

	assembler := opts.Assembler
	if assembler == nil {
		assembler = PairwiseAssembler{Workers: opts.Workers}
	}
	clusters, err := assembler.Assemble(ctx, m, cutoff, labelOf)
	if err != nil {
		return nil, err
	}

	return &Result{
		Sample:   sample,
		Summary:  summary,
		Cutoff:   cutoff,
		Clusters: clusters,
	}, nil
}
