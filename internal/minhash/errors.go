package minhash

import "errors"

// Sentinel errors returned by the signature engine. Callers match them with errors.Is.
var (
	// ErrEmptyInput is returned when a document (or sample) has nothing to work with.
	ErrEmptyInput = errors.New("minhash: empty input")

	// ErrInvalidParameter is returned for out-of-range configuration such as a
	// non-positive permutation count.
	ErrInvalidParameter = errors.New("minhash: invalid parameter")

	// ErrUnknownDocument is returned when a document id is outside [0, DocumentCount).
	// It always indicates a caller bug.
	ErrUnknownDocument = errors.New("minhash: unknown document")

	// ErrBuilderConsumed is returned when a builder is used after Build.
	ErrBuilderConsumed = errors.New("minhash: builder already consumed by Build")
)
