package vectorstore

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroVector marks a vector whose magnitude is zero; such vectors have
// no direction and cannot be ranked by cosine similarity.
var ErrZeroVector = errors.New("vectorstore: zero-magnitude vector")

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths, and ErrZeroVector
// if either vector has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectorstore: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vectorstore: cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("cosine similarity: %w", ErrZeroVector)
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}

func zeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
