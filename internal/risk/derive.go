// File path: internal/risk/derive.go
package risk

import (
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/sections"
)

var ambiguityTerms = []string{
	"may",
	"should",
	"as appropriate",
	"as needed",
	"best effort",
	"endeavor",
	"where practicable",
	"where practical",
	"as agreed",
	"at its discretion",
}

const deriveMaxItems = 25

// DeriveSectionRisks inspects parsed sections and emits deterministic Tier-2
// risks: one ambiguity risk per section that uses hedging language in its
// narrative, and one missing-evidence risk per starved section. A run where
// no section carries evidence derives nothing: there is no grounded
// narrative to mine, and placeholder text must not fabricate risks. No
// provider calls; the same sections always derive the same risks.
func DeriveSectionRisks(secs []sections.Section) []Risk {
	grounded := false
	for _, sec := range secs {
		if len(sec.Evidence) > 0 {
			grounded = true
			break
		}
	}
	if !grounded {
		return nil
	}

	var risks []Risk
	seen := make(map[string]bool)

	add := func(r Risk) {
		if r.ID == "" || seen[r.ID] {
			return
		}
		seen[r.ID] = true
		risks = append(risks, r)
	}

	for _, sec := range secs {
		if len(risks) >= deriveMaxItems {
			break
		}
		title := strings.TrimSpace(sec.Title)
		text := strings.ToLower(sec.Text)

		for _, term := range ambiguityTerms {
			if !containsTerm(text, term) {
				continue
			}
			add(Risk{
				ID:       "sec_ambiguous_" + titleSlug(title) + "_" + strings.ReplaceAll(term, " ", "_"),
				Label:    "Ambiguous obligation language in section: " + title,
				Severity: "Medium",
				Source:   SourceSectionDerived,
				Category: "project_level",
				Why:      "Found ambiguity term '" + term + "' in section text (deterministic rule).",
			})
			// one ambiguity risk per section
			break
		}

		if len(sec.Evidence) == 0 {
			add(Risk{
				ID:       "sec_no_evidence_" + titleSlug(title),
				Label:    "No contract evidence attached for section: " + title,
				Severity: "Low",
				Source:   SourceSectionDerived,
				Category: "project_level",
				Why:      "Section has no attached evidence (retrieval starvation or mapping issue).",
			})
		}
	}

	if len(risks) > deriveMaxItems {
		risks = risks[:deriveMaxItems]
	}
	return risks
}

// titleSlug keeps only lowercase alphanumerics, capped at 32 characters.
func titleSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= 32 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func containsTerm(text, term string) bool {
	return strings.Contains(text, term)
}
