// File path: internal/risk/types.go
package risk

import "strings"

// Risk sources, in descending confidence tier order.
const (
	SourceAutoFlag       = "autoFlag"
	SourceHeuristic      = "heuristic"
	SourceSectionDerived = "sectionDerived"
	SourceAIOnly         = "ai_only"
)

// Risk is one entry in the materialized risk register.
type Risk struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Severity   string  `json:"severity"`
	Source     string  `json:"source"`
	Category   string  `json:"category,omitempty"`
	Why        string  `json:"why,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TierCounts summarizes the register by source tier. The counts are always
// computed from the merged list so they stay consistent after dedupe.
type TierCounts struct {
	Tier3Flags      int `json:"tier3_flags"`
	Tier2Heuristics int `json:"tier2_heuristics"`
	Tier2Sections   int `json:"tier2_sections"`
	Tier1Inference  int `json:"tier1_inference"`
	Total           int `json:"total"`
}

// NormalizeSeverity maps free-form severity strings onto the canonical
// Low / Medium / High / Critical ladder; unrecognized values fall back to
// the provided default.
func NormalizeSeverity(sev, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(sev)) {
	case "low":
		return "Low"
	case "medium", "moderate":
		return "Medium"
	case "high":
		return "High"
	case "critical":
		return "Critical"
	default:
		return fallback
	}
}
