// File path: internal/prompt/render.go
package prompt

import (
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

// RenderBriefPrompt renders the full single-pass analysis prompt for the
// given intent. Signals are only carried into the triage template; the
// strict-summary template has no signals slot.
func RenderBriefPrompt(intent string, headers []string, evidenceContext, signals string) string {
	var cleaned []string
	for _, h := range headers {
		if trimmed := strings.TrimSpace(h); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	headerBlock := strings.Join(cleaned, "\n")

	tmpl := strictSummaryTemplate
	if taxonomy.NormalizeIntent(intent) == taxonomy.IntentRiskTriage {
		tmpl = riskTriageTemplate
	}
	out := strings.ReplaceAll(tmpl, "{headers}", headerBlock)
	out = strings.ReplaceAll(out, "{context}", evidenceContext)
	out = strings.ReplaceAll(out, "{signals}", signals)
	return out
}
