package chunker

import (
	"fmt"
	"strings"

	"askhr/internal/domain"
)

const (
	DefaultMaxChars     = 1000
	DefaultOverlapChars = 200
)

// WindowChunker splits text into fixed-size character windows with overlap.
type WindowChunker struct {
	maxChars     int
	overlapChars int
}

// NewWindowChunker returns a chunker or ErrInvalidConfiguration when the
// windows would not advance.
func NewWindowChunker(maxChars, overlapChars int) (*WindowChunker, error) {
	if err := validate(maxChars, overlapChars); err != nil {
		return nil, err
	}
	return &WindowChunker{maxChars: maxChars, overlapChars: overlapChars}, nil
}

// Chunk splits the document text and tags each passage with its source and
// position among the emitted chunks.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	pieces, err := Split(document.Text, c.maxChars, c.overlapChars)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, domain.Chunk{Text: text, Source: document.Source, ChunkID: i})
	}
	return chunks, nil
}

// Split cuts text into windows of at most maxChars characters. Each window
// after the first starts overlapChars before the end of the previous one.
// Windows are trimmed and empty ones are dropped.
func Split(text string, maxChars, overlapChars int) ([]string, error) {
	if err := validate(maxChars, overlapChars); err != nil {
		return nil, err
	}
	runes := []rune(text)
	n := len(runes)
	var out []string
	for start := 0; start < n; {
		end := min(start+maxChars, n)
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if end == n {
			break
		}
		start = end - overlapChars
	}
	return out, nil
}

func validate(maxChars, overlapChars int) error {
	switch {
	case maxChars <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, maxChars)
	case overlapChars < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrInvalidConfiguration, overlapChars)
	case overlapChars >= maxChars:
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfiguration, overlapChars, maxChars)
	}
	return nil
}
