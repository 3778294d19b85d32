// File path: internal/api/types.go
package api

import (
	"github.com/jbrewton2/contract-security-studio/internal/analysis"
	"github.com/jbrewton2/contract-security-studio/internal/ingest"
)

type ingestRequest struct {
	ReviewID  string            `json:"review_id"`
	Profile   string            `json:"context_profile,omitempty"`
	Documents []ingest.Document `json:"documents"`
}

type ingestResponse struct {
	ReviewID string         `json:"review_id"`
	Summary  ingest.Summary `json:"summary"`
}

// analyzeRequest wraps the engine request with re-ingestion controls; when
// force_reingest is set the listed documents are chunked and upserted before
// the analysis runs.
type analyzeRequest struct {
	analysis.Request
	ForceReingest bool              `json:"force_reingest,omitempty"`
	Documents     []ingest.Document `json:"documents,omitempty"`
}

type ingestUploadResponse struct {
	ReviewID  string         `json:"review_id"`
	Uploaded  int            `json:"uploaded"`
	Summary   ingest.Summary `json:"summary"`
	Warning   string         `json:"warning,omitempty"`
	Documents []string       `json:"documents"`
}
