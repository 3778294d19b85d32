// File path: internal/taxonomy/signals.go
package taxonomy

// AutoFlag is a Tier-3 deterministic scanner hit supplied with the review.
type AutoFlag struct {
	ID       string `json:"id,omitempty"`
	Key      string `json:"key,omitempty"`
	HitKey   string `json:"hit_key,omitempty"`
	Label    string `json:"label,omitempty"`
	Severity string `json:"severity,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// HeuristicHit is a Tier-2 semi-deterministic pattern hit.
type HeuristicHit struct {
	ID       string `json:"id,omitempty"`
	Label    string `json:"label,omitempty"`
	Severity string `json:"severity,omitempty"`
	Why      string `json:"why,omitempty"`
}
