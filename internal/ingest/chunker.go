package ingest

import "strings"

const (
	// DefaultChunkSize is the target chunk length in runes.
	DefaultChunkSize = 1024
	// DefaultChunkOverlap is how many runes consecutive chunks share.
	DefaultChunkOverlap = 128
)

// Chunker splits extracted text into overlapping windows, preferring to
// break on whitespace so words stay intact.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker returns a Chunker with the default window.
func NewChunker() Chunker {
	return Chunker{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
}

// Split returns the chunks of text. Whitespace-only input yields nothing.
func (c Chunker) Split(text string) []string {
	size := c.Size
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := c.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Walk back to the nearest whitespace so the cut lands between
		// words; give up after half a window and cut mid-word.
		cut := end
		for cut > start+size/2 && !isSpace(runes[cut]) {
			cut--
		}
		if cut == start+size/2 {
			cut = end
		}

		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
