// File path: internal/ingest/engine.go
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/common/telemetry"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/storage"
	"github.com/jbrewton2/contract-security-studio/internal/vector"
)

// Document describes one document of a review heading into ingestion. Text
// is optional: when empty, the engine falls back to the extraction artifact
// and then to the stored PDF.
type Document struct {
	ID   string `json:"doc_id"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

// Summary reports what an ingestion run did.
type Summary struct {
	IngestedDocs   int `json:"ingested_docs"`
	IngestedChunks int `json:"ingested_chunks"`
	SkippedDocs    int `json:"skipped_docs"`
}

// Engine chunks, embeds and upserts review documents into the vector store.
type Engine struct {
	provider  llm.Provider
	store     vector.Store
	artifacts storage.Provider
}

func NewEngine(provider llm.Provider, store vector.Store, artifacts storage.Provider) *Engine {
	return &Engine{provider: provider, store: store, artifacts: artifacts}
}

// IngestReview ingests every document of a review under the given profile.
// A document with no resolvable text is counted as skipped; an embedding
// count mismatch is fatal for the run because the surviving chunk/vector
// pairing can no longer be trusted.
func (e *Engine) IngestReview(ctx context.Context, reviewID string, docs []Document, profile retrieval.Profile) (Summary, error) {
	logger := common.Logger()
	var summary Summary
	if len(docs) == 0 {
		return summary, nil
	}
	chunkSize := profile.ChunkSize()

	for _, doc := range docs {
		docID := strings.TrimSpace(doc.ID)
		if docID == "" {
			summary.SkippedDocs++
			continue
		}
		docName := strings.TrimSpace(doc.Name)
		if docName == "" {
			docName = "review:" + reviewID
		}

		text := strings.TrimSpace(doc.Text)
		if text == "" && e.artifacts != nil {
			text = storage.ResolveDocumentText(ctx, e.artifacts, docID)
		}
		if text == "" {
			logger.Warn("ingest: no text resolved for document", "review_id", reviewID, "doc_id", docID)
			summary.SkippedDocs++
			continue
		}

		chunks := ChunkText(docID, text, chunkSize)
		if len(chunks) == 0 {
			summary.SkippedDocs++
			continue
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := e.provider.Embed(ctx, texts)
		if err != nil {
			return summary, fmt.Errorf("embed document %s: %w", docID, err)
		}
		if len(vectors) != len(chunks) {
			return summary, fmt.Errorf("embed document %s: %w: got %d for %d chunks",
				docID, retrieval.ErrEmbeddingCountMismatch, len(vectors), len(chunks))
		}

		records := make([]vector.ChunkRecord, len(chunks))
		for i, c := range chunks {
			records[i] = vector.ChunkRecord{
				ID:   c.ID,
				Text: c.Text,
				Metadata: map[string]interface{}{
					"review_id":   reviewID,
					"doc_id":      docID,
					"doc_name":    docName,
					"chunk_index": c.Index,
					"char_start":  c.CharStart,
					"char_end":    c.CharEnd,
				},
			}
		}

		// Replace existing doc vectors before upserting the new set.
		if err := e.store.DeleteWhere(ctx, map[string]interface{}{"doc_id": docID}); err != nil {
			return summary, fmt.Errorf("clear document %s: %w", docID, err)
		}
		if err := e.store.UpsertChunks(ctx, records, vectors); err != nil {
			return summary, fmt.Errorf("upsert document %s: %w", docID, err)
		}

		summary.IngestedDocs++
		summary.IngestedChunks += len(records)
		logger.Info("ingest: document ingested", "review_id", reviewID, "doc_id", docID, "chunks", len(records))
	}

	telemetry.RecordIngest(summary.IngestedDocs, summary.IngestedChunks)
	return summary, nil
}
