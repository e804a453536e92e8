package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerShortTextIsOneChunk(t *testing.T) {
	c := NewChunker()
	got := c.Split("  a short document  ")
	require.Len(t, got, 1)
	assert.Equal(t, "a short document", got[0])
}

func TestChunkerEmptyAndWhitespace(t *testing.T) {
	c := NewChunker()
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestChunkerBreaksOnWhitespace(t *testing.T) {
	c := Chunker{Size: 20, Overlap: 0}
	text := "alpha beta gamma delta epsilon zeta"

	got := c.Split(text)
	require.NotEmpty(t, got)
	for _, chunk := range got {
		assert.LessOrEqual(t, len([]rune(chunk)), 20)
		assert.False(t, strings.HasPrefix(chunk, " "))
		assert.False(t, strings.HasSuffix(chunk, " "))
	}
	// Every word survives intact in some chunk.
	for _, word := range strings.Fields(text) {
		found := false
		for _, chunk := range got {
			if strings.Contains(chunk, word) {
				found = true
				break
			}
		}
		assert.True(t, found, "word %q lost", word)
	}
}

func TestChunkerOverlapRepeatsTail(t *testing.T) {
	c := Chunker{Size: 10, Overlap: 4}
	got := c.Split("aaaaaaaaaa bbbbbbbbbb cccccccccc")
	require.Greater(t, len(got), 1)

	// Consecutive chunks share content because the window steps back.
	joined := strings.Join(got, "")
	assert.Greater(t, len(joined), len("aaaaaaaaaabbbbbbbbbbcccccccccc"))
}

func TestChunkerCutsMidWordWhenNoWhitespace(t *testing.T) {
	c := Chunker{Size: 8, Overlap: 0}
	got := c.Split(strings.Repeat("x", 20))
	require.Len(t, got, 3)
	assert.Equal(t, "xxxxxxxx", got[0])
	assert.Equal(t, "xxxx", got[2])
}
