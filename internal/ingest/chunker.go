// File path: internal/ingest/chunker.go
package ingest

import (
	"fmt"
	"strings"
)

const (
	minChunkSize = 200
	chunkOverlap = 200
)

// Chunk is one sliding window over a document's text. The ID embeds the
// document, index and character span so evidence spans can be recovered from
// the ID alone.
type Chunk struct {
	ID        string
	Index     int
	CharStart int
	CharEnd   int
	Text      string
}

// ChunkText slices text into overlapping windows. Overlap is clamped below
// the chunk size so every iteration advances; whitespace-only windows are
// skipped without consuming an index.
func ChunkText(docID, text string, chunkSize int) []Chunk {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	if chunkSize < minChunkSize {
		chunkSize = minChunkSize
	}
	overlap := chunkOverlap
	if overlap > chunkSize-1 {
		overlap = chunkSize - 1
	}

	var out []Chunk
	idx := 0
	start := 0
	for start < len(t) {
		end := start + chunkSize
		if end > len(t) {
			end = len(t)
		}
		body := strings.TrimSpace(t[start:end])
		if body != "" {
			out = append(out, Chunk{
				ID:        fmt.Sprintf("%s:%d:%d:%d", docID, idx, start, end),
				Index:     idx,
				CharStart: start,
				CharEnd:   end,
				Text:      body,
			})
			idx++
		}
		if end >= len(t) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return out
}
