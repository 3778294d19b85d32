// File path: internal/sections/types.go
package sections

// Evidence is one bound retrieval hit on a section.
type Evidence struct {
	Doc        string  `json:"doc"`
	DocID      string  `json:"docId"`
	EvidenceID string  `json:"evidenceId,omitempty"`
	CharStart  *int    `json:"charStart"`
	CharEnd    *int    `json:"charEnd"`
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
}

// Section is one canonical report section with its narrative, findings and
// bound evidence. The transforms in this package take and return section
// slices; none of them call a provider or hold state.
type Section struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Text               string     `json:"text"`
	Owner              string     `json:"owner"`
	Findings           []string   `json:"findings"`
	Evidence           []Evidence `json:"evidence"`
	Gaps               []string   `json:"gaps"`
	RecommendedActions []string   `json:"recommended_actions"`
	Confidence         string     `json:"confidence"`
	ConfidencePct      int        `json:"confidence_pct"`
}

// Placeholder body for sections the model left empty.
const InsufficientEvidence = "Insufficient evidence retrieved for this section."
