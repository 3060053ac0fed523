package minhash

import "fmt"

// Signature holds one minimum hashed term index per hash function.
type Signature []uint32

// Matrix is the immutable store of document signatures produced by Builder.Build.
// All rows have PermutationCount entries. A Matrix is safe for concurrent reads.
type Matrix struct {
	signatures   []Signature
	permutations int
}

// DocumentCount returns the number of documents in the matrix.
func (m *Matrix) DocumentCount() int {
	return len(m.signatures)
}

// PermutationCount returns the signature length.
func (m *Matrix) PermutationCount() int {
	return m.permutations
}

// SignatureOf returns a copy of the signature of document id.
func (m *Matrix) SignatureOf(id DocumentID) (Signature, error) {
	sig, err := m.row(id)
	if err != nil {
		return nil, err
	}
	out := make(Signature, len(sig))
	copy(out, sig)
	return out, nil
}

// EstimateJaccard approximates the Jaccard similarity of two documents as the
// fraction of signature coordinates on which they agree. The estimate has a
// standard error of about sqrt(J(1-J)/PermutationCount). Nothing is cached.
func (m *Matrix) EstimateJaccard(a, b DocumentID) (float64, error) {
	sigA, err := m.row(a)
	if err != nil {
		return 0, err
	}
	sigB, err := m.row(b)
	if err != nil {
		return 0, err
	}

	matches := 0
	for k := range sigA {
		if sigA[k] == sigB[k] {
			matches++
		}
	}
	return float64(matches) / float64(m.permutations), nil
}

func (m *Matrix) row(id DocumentID) (Signature, error) {
	if id < 0 || int(id) >= len(m.signatures) {
		return nil, fmt.Errorf("%w: id %d not in [0, %d)", ErrUnknownDocument, id, len(m.signatures))
	}
	return m.signatures[id], nil
}
