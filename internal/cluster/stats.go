package cluster

import (
	"fmt"
	"math"

	"github.com/ludo-technologies/simscan/internal/minhash"
)

// DefaultStdFactor is the number of standard deviations above the mean at
// which a pair becomes anomalous.
const DefaultStdFactor = 2.0

// ErrEmptySample is returned by the statistics functions for an empty sample.
var ErrEmptySample = fmt.Errorf("%w: similarity sample has no values", minhash.ErrEmptyInput)

// Summary describes the distribution of top similarities and the cutoff derived from it.
type Summary struct {
	Mean      float64 `json:"mean" yaml:"mean"`
	StdDev    float64 `json:"std_dev" yaml:"std_dev"`
	StdFactor float64 `json:"std_factor" yaml:"std_factor"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Mean returns the arithmetic mean of sample.
func Mean(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	// Shifted by the first value so a constant sample yields that value exactly.
	shift := sample[0]
	sum := 0.0
	for _, x := range sample {
		sum += x - shift
	}
	return shift + sum/float64(len(sample)), nil
}

// StdDev returns the population standard deviation of sample (divisor n).
func StdDev(sample []float64) (float64, error) {
	mean, err := Mean(sample)
	if err != nil {
		return 0, err
	}
	sq := 0.0
	for _, x := range sample {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(sample))), nil
}

// Threshold returns mean(sample) + stdFactor*stddev(sample).
func Threshold(sample []float64, stdFactor float64) (float64, error) {
	s, err := Summarize(sample, stdFactor)
	if err != nil {
		return 0, err
	}
	return s.Threshold, nil
}

// Summarize computes mean, standard deviation and threshold in one call.
func Summarize(sample []float64, stdFactor float64) (Summary, error) {
	if err := validateStdFactor(stdFactor); err != nil {
		return Summary{}, err
	}
	mean, err := Mean(sample)
	if err != nil {
		return Summary{}, err
	}
	std, err := StdDev(sample)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Mean:      mean,
		StdDev:    std,
		StdFactor: stdFactor,
		Threshold: mean + stdFactor*std,
	}, nil
}

func validateStdFactor(k float64) error {
	if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
		return fmt.Errorf("%w: std factor must be a finite non-negative number, got %v", minhash.ErrInvalidParameter, k)
	}
	return nil
}
