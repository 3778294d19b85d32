// File path: internal/analysis/types.go
package analysis

import (
	"errors"

	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/risk"
	"github.com/jbrewton2/contract-security-studio/internal/sections"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

// Analysis modes. Only the review summary pipeline exists today; "default"
// is accepted for backward compatibility.
const ModeReviewSummary = "review_summary"

// ErrUnsupportedMode rejects modes outside the allowed set.
var ErrUnsupportedMode = errors.New("unsupported analysis mode")

// Request describes one analysis run over an ingested review.
type Request struct {
	ReviewID string `json:"review_id"`
	Mode     string `json:"mode,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
	Intent   string `json:"analysis_intent,omitempty"`
	Profile  string `json:"context_profile,omitempty"`

	AutoFlags     []taxonomy.AutoFlag     `json:"auto_flags,omitempty"`
	HeuristicHits []taxonomy.HeuristicHit `json:"heuristic_hits,omitempty"`

	// Caller-supplied Tier-1 candidates; when empty and inference is
	// enabled, triage runs generate their own.
	InferenceCandidates []string `json:"inference_candidates,omitempty"`
	EnableInference     bool     `json:"enable_inference,omitempty"`

	MultiPass bool `json:"multi_pass,omitempty"`
	Debug     bool `json:"debug,omitempty"`
}

// Citation points a question at one of its top retrieval hits.
type Citation struct {
	Question  string  `json:"question"`
	Doc       string  `json:"doc"`
	DocID     string  `json:"docId"`
	CharStart *int    `json:"charStart"`
	CharEnd   *int    `json:"charEnd"`
	Score     float32 `json:"score"`
	Snippet   string  `json:"snippet,omitempty"`
}

// Stats carries run accounting for operators and tests.
type Stats struct {
	TopKEffective    int                    `json:"top_k_effective"`
	RetrievedTotal   int                    `json:"retrieved_total"`
	ContextUsedChars int                    `json:"context_used_chars"`
	ContextTruncated bool                   `json:"context_truncated"`
	TierCounts       risk.TierCounts        `json:"tier_counts"`
	DebugContext     string                 `json:"debug_context,omitempty"`
	RetrievalDebug   []retrieval.QueryDebug `json:"retrieval_debug,omitempty"`
}

// Result is the full analysis response.
type Result struct {
	ReviewID        string             `json:"review_id"`
	Mode            string             `json:"mode"`
	TopK            int                `json:"top_k"`
	AnalysisIntent  string             `json:"analysis_intent"`
	ContextProfile  string             `json:"context_profile"`
	Summary         string             `json:"summary"`
	Citations       []Citation         `json:"citations"`
	RetrievedCounts map[string]int     `json:"retrieved_counts"`
	Risks           []risk.Risk        `json:"risks"`
	Sections        []sections.Section `json:"sections"`
	Stats           Stats              `json:"stats"`
	Warnings        []string           `json:"warnings"`
}
