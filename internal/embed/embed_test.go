package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Deterministic(t *testing.T) {
	e := NewLocal()
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"what is bakra beverage"})
	require.NoError(t, err)
	b, err := e.Embed(ctx, []string{"what is bakra beverage"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestLocal_DimensionAndNormalization(t *testing.T) {
	e := NewLocal()

	vecs, err := e.Embed(context.Background(), []string{"alpha beta gamma"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	require.Len(t, vecs[0], LocalDimension)

	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5, "vector should be L2-normalized")
}

func TestLocal_SharedTermsScoreHigherThanDisjoint(t *testing.T) {
	e := NewLocal()
	ctx := context.Background()

	vecs, err := e.Embed(ctx, []string{
		"bakra beverage annual report",
		"bakra beverage quarterly report",
		"unrelated gardening manual",
	})
	require.NoError(t, err)

	related := dot(vecs[0], vecs[1])
	unrelated := dot(vecs[0], vecs[2])
	assert.Greater(t, related, unrelated)
}

func TestLocal_EmptyTextStillEmbeds(t *testing.T) {
	e := NewLocal()

	vecs, err := e.Embed(context.Background(), []string{""})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	assert.NotZero(t, sum)
}

func TestLocal_HonorsContextCancellation(t *testing.T) {
	e := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
