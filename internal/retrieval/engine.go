// File path: internal/retrieval/engine.go
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/vector"
)

// ErrEmbeddingCountMismatch is fatal for the batch that produced it: if the
// provider returns a different number of vectors than inputs, no question can
// be trusted to line up with its embedding.
var ErrEmbeddingCountMismatch = fmt.Errorf("embedding count does not match input count")

// Hit is one retrieved evidence chunk for a question.
type Hit struct {
	ChunkID string  `json:"chunk_id"`
	DocID   string  `json:"doc_id"`
	DocName string  `json:"doc_name"`
	Text    string  `json:"text"`
	Score   float32 `json:"score"`
}

// QueryDebug records per-question retrieval outcomes for debug responses.
type QueryDebug struct {
	Question string   `json:"q"`
	Hits     int      `json:"hits"`
	Error    string   `json:"error,omitempty"`
	Top      []string `json:"top,omitempty"`
}

// Result holds per-question retrieval output in question order.
type Result struct {
	Questions []string
	Hits      map[string][]Hit
	Counts    map[string]int
	Debug     []QueryDebug
}

// Engine embeds questions and runs review-scoped similarity queries.
type Engine struct {
	provider llm.Provider
	store    vector.Store
}

func NewEngine(provider llm.Provider, store vector.Store) *Engine {
	return &Engine{provider: provider, store: store}
}

// Retrieve batch-embeds the questions and queries the vector store per
// question, filtered to the review. A failed query records an empty hit list
// instead of failing the run; a short embedding batch is fatal.
func (e *Engine) Retrieve(ctx context.Context, reviewID string, questions []string, topK int, debug bool) (*Result, error) {
	result := &Result{
		Questions: append([]string(nil), questions...),
		Hits:      make(map[string][]Hit, len(questions)),
		Counts:    make(map[string]int, len(questions)),
	}
	if len(questions) == 0 {
		return result, nil
	}
	logger := common.Logger()

	vectors, err := e.provider.Embed(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("embed questions: %w", err)
	}
	if len(vectors) != len(questions) {
		return nil, fmt.Errorf("%w: got %d for %d questions", ErrEmbeddingCountMismatch, len(vectors), len(questions))
	}

	where := map[string]interface{}{"review_id": reviewID}
	for i, q := range questions {
		results, err := e.store.Query(ctx, vectors[i], topK, where)
		if err != nil {
			logger.Warn("retrieval: query failed", "review_id", reviewID, "error", err)
			result.Hits[q] = nil
			result.Counts[q] = 0
			if debug {
				result.Debug = append(result.Debug, QueryDebug{Question: q, Error: err.Error()})
			}
			continue
		}
		hits := make([]Hit, 0, len(results))
		for _, r := range results {
			hits = append(hits, Hit{
				ChunkID: r.ID,
				DocID:   payloadString(r.Payload, "doc_id"),
				DocName: payloadString(r.Payload, "doc_name"),
				Text:    r.Text,
				Score:   r.Score,
			})
		}
		result.Hits[q] = hits
		result.Counts[q] = len(hits)
		if debug {
			dbg := QueryDebug{Question: q, Hits: len(hits)}
			for _, h := range hits {
				if len(dbg.Top) >= 3 {
					break
				}
				dbg.Top = append(dbg.Top, fmt.Sprintf("%s/%s score=%.3f", h.DocName, h.ChunkID, h.Score))
			}
			result.Debug = append(result.Debug, dbg)
		}
	}
	return result, nil
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
