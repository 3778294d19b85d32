// File path: internal/risk/materialize.go
package risk

import (
	"fmt"
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/sections"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

const (
	maxHeuristicRisks = 25
	maxInferenceRisks = 10
)

// Materialize builds the tiered risk register for a triage run. Every other
// intent gets an empty register with zeroed counts. Tiers are materialized
// independently so a malformed input in one source never suppresses the
// others, then merged with tier-priority dedupe by risk ID.
func Materialize(intent string, flags []taxonomy.AutoFlag, heuristics []taxonomy.HeuristicHit, secs []sections.Section, inferenceCandidates []string) ([]Risk, TierCounts) {
	if taxonomy.NormalizeIntent(intent) != taxonomy.IntentRiskTriage {
		return []Risk{}, TierCounts{}
	}

	merged := make([]Risk, 0, len(flags)+len(heuristics)+len(inferenceCandidates))
	seen := make(map[string]bool)
	addAll := func(src []Risk) {
		for _, r := range src {
			id := strings.TrimSpace(r.ID)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			merged = append(merged, r)
		}
	}

	addAll(materializeFlags(flags))
	addAll(materializeHeuristics(heuristics))
	addAll(DeriveSectionRisks(secs))
	addAll(materializeInference(inferenceCandidates))

	var counts TierCounts
	for _, r := range merged {
		switch r.Source {
		case SourceAutoFlag:
			counts.Tier3Flags++
		case SourceHeuristic:
			counts.Tier2Heuristics++
		case SourceSectionDerived:
			counts.Tier2Sections++
		case SourceAIOnly:
			counts.Tier1Inference++
		}
	}
	counts.Total = len(merged)
	return merged, counts
}

func materializeFlags(flags []taxonomy.AutoFlag) []Risk {
	var out []Risk
	for i, f := range flags {
		label := strings.TrimSpace(firstNonEmpty(f.Label, f.ID))
		if label == "" {
			continue
		}
		id := strings.TrimSpace(firstNonEmpty(f.HitKey, f.Key, f.ID))
		if id == "" {
			id = fmt.Sprintf("autoflag:%s:%d", label, i)
		}
		out = append(out, Risk{
			ID:       id,
			Label:    label,
			Severity: NormalizeSeverity(f.Severity, "Medium"),
			Source:   SourceAutoFlag,
		})
	}
	return out
}

func materializeHeuristics(heuristics []taxonomy.HeuristicHit) []Risk {
	var out []Risk
	for i, h := range heuristics {
		if len(out) >= maxHeuristicRisks {
			break
		}
		label := strings.TrimSpace(firstNonEmpty(h.Label, h.ID))
		if label == "" {
			continue
		}
		id := strings.TrimSpace(h.ID)
		if id == "" {
			id = fmt.Sprintf("heur:%s:%d", label, i)
		}
		out = append(out, Risk{
			ID:       id,
			Label:    label,
			Severity: NormalizeSeverity(h.Severity, "Low"),
			Source:   SourceHeuristic,
		})
	}
	return out
}

func materializeInference(candidates []string) []Risk {
	var out []Risk
	for i, c := range candidates {
		if len(out) >= maxInferenceRisks {
			break
		}
		t := strings.TrimSpace(c)
		if t == "" {
			continue
		}
		label40 := t
		if len(label40) > 40 {
			label40 = label40[:40]
		}
		out = append(out, Risk{
			ID:         fmt.Sprintf("ai:%d:%s", i, label40),
			Label:      t,
			Severity:   "Low",
			Source:     SourceAIOnly,
			Category:   "ai_identified_risk",
			Confidence: 0.25,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
