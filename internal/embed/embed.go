// Package embed turns text into vectors. The production implementation
// calls an OpenAI-compatible embeddings endpoint; a deterministic local
// embedder backs tests and endpoint-less deployments.
package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"unicode"
)

// Embedder converts batches of text into embedding vectors. Implementations
// must return one vector per input, all with the same dimension, and must be
// safe for concurrent use: the ingest pipeline shares one Embedder across
// its workers.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LocalDimension is the vector size of the deterministic local embedder.
const LocalDimension = 256

// Local is a deterministic, dependency-free embedder. Each term is hashed
// into a handful of vector positions; the result is L2-normalized. It is not
// semantically meaningful, but identical texts always map to identical
// vectors and shared terms produce overlapping mass, which is enough for
// tests and for smoke deployments without an embedding backend.
type Local struct {
	dim int
}

// NewLocal returns a Local embedder with the default dimension.
func NewLocal() *Local {
	return &Local{dim: LocalDimension}
}

func (l *Local) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out[i] = l.embedOne(text)
	}
	return out, nil
}

func (l *Local) embedOne(text string) []float32 {
	vec := make([]float32, l.dim)
	for _, term := range terms(text) {
		sum := sha256.Sum256([]byte(term))
		// Spread each term over four positions derived from its hash.
		for p := 0; p < 4; p++ {
			idx := int(binary.LittleEndian.Uint32(sum[p*4:])) % l.dim
			sign := float32(1)
			if sum[16+p]&1 == 1 {
				sign = -1
			}
			vec[idx] += sign
		}
	}
	normalize(vec)
	return vec
}

func terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		// Leave a marker so zero-content text still has a nonzero vector;
		// cosine against an all-zero vector is undefined downstream.
		vec[0] = 1
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
