// File path: internal/sections/confidence.go
package sections

import (
	"math"
	"regexp"
)

var (
	obligationRe = regexp.MustCompile(`(?i)\b(shall|must|required|will|may not|prohibited)\b`)
	complianceRe = regexp.MustCompile(`(?i)\b(dfars|far|nist|cui|cdi|rmf|ato|il[0-9]|fedramp|800-53|800-171|incident|breach|encryption|audit|logging|sbom|zero trust|conmon)\b`)
	glossaryRe   = regexp.MustCompile(`(?i)\b(glossary|definitions?|for purposes of|means)\b`)
)

// EvidenceSignalScore rates how load-bearing an evidence excerpt is:
// obligation language scores up, compliance vocabulary scores up, glossary
// or definitional text scores down.
func EvidenceSignalScore(text string) int {
	if text == "" {
		return 0
	}
	score := 0
	if obligationRe.MatchString(text) {
		score += 3
	}
	if complianceRe.MatchString(text) {
		score += 2
	}
	if glossaryRe.MatchString(text) {
		score -= 3
	}
	return score
}

// ConfidenceForSection scores a section from evidence volume and evidence
// signal strength. No model involvement: the same section always scores the
// same.
func ConfidenceForSection(s Section) (string, int) {
	if len(s.Evidence) == 0 {
		return "missing", 0
	}

	// saturate at 6 evidence snippets
	countFactor := clamp01(float64(len(s.Evidence)) / 6.0)

	var total float64
	for _, ev := range s.Evidence {
		sig := EvidenceSignalScore(ev.Text)
		if sig > 0 {
			total += float64(sig)
		}
	}
	avg := total / float64(len(s.Evidence))
	signalFactor := clamp01(avg / 5.0)

	pct := int(math.Round(100.0 * clamp01(0.60*countFactor+0.40*signalFactor)))
	switch {
	case pct >= 80:
		return "strong", pct
	case pct >= 55:
		return "moderate", pct
	default:
		return "weak", pct
	}
}

// ApplyConfidence stamps every section with its confidence verdict.
func ApplyConfidence(secs []Section) []Section {
	for i := range secs {
		label, pct := ConfidenceForSection(secs[i])
		secs[i].Confidence = label
		secs[i].ConfidencePct = pct
	}
	return secs
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
