// File path: internal/risk/risk_test.go
package risk

import (
	"strings"
	"testing"

	"github.com/jbrewton2/contract-security-studio/internal/sections"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

func TestNormalizeSeverity(t *testing.T) {
	cases := []struct {
		in, fallback, want string
	}{
		{"low", "Medium", "Low"},
		{"MEDIUM", "Low", "Medium"},
		{"moderate", "Low", "Medium"},
		{"high", "Low", "High"},
		{" Critical ", "Low", "Critical"},
		{"", "Medium", "Medium"},
		{"bananas", "Low", "Low"},
	}
	for _, tc := range cases {
		if got := NormalizeSeverity(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("NormalizeSeverity(%q, %q) = %q, want %q", tc.in, tc.fallback, got, tc.want)
		}
	}
}

func TestMaterializeStrictSummaryEmpty(t *testing.T) {
	flags := []taxonomy.AutoFlag{{ID: "f1", Label: "flag"}}
	risks, counts := Materialize(taxonomy.IntentStrictSummary, flags, nil, nil, []string{"candidate"})
	if len(risks) != 0 {
		t.Fatalf("strict summary must produce no risks, got %d", len(risks))
	}
	if counts.Total != 0 || counts.Tier3Flags != 0 || counts.Tier1Inference != 0 {
		t.Fatalf("strict summary tier counts must be zero, got %+v", counts)
	}
}

func TestMaterializeEmptyTriage(t *testing.T) {
	risks, counts := Materialize(taxonomy.IntentRiskTriage, nil, nil, nil, nil)
	if len(risks) != 0 || counts.Total != 0 {
		t.Fatalf("empty triage inputs must produce an empty register, got %d/%+v", len(risks), counts)
	}
}

func TestMaterializeTiers(t *testing.T) {
	flags := []taxonomy.AutoFlag{
		{HitKey: "hit_dfars", Key: "dfars", ID: "f1", Label: "DFARS 7012 incident reporting", Severity: "high"},
		{Label: "Unkeyed flag"},
		{ID: "", Label: "   "}, // no label, dropped
	}
	heuristics := []taxonomy.HeuristicHit{
		{ID: "h1", Label: "ambiguous acceptance", Severity: ""},
	}
	secs := []sections.Section{
		{Title: "FINANCIAL RISKS", Text: "Payment terms may be adjusted at its discretion.", Evidence: []sections.Evidence{{Text: "x"}}},
		{Title: "SCOPE OF WORK", Text: "Clear scope.", Evidence: nil},
	}
	candidates := []string{"May be missing a data rights clause", ""}

	risks, counts := Materialize(taxonomy.IntentRiskTriage, flags, heuristics, secs, candidates)

	if counts.Tier3Flags != 2 {
		t.Fatalf("expected 2 flag risks, got %d", counts.Tier3Flags)
	}
	if counts.Tier2Heuristics != 1 {
		t.Fatalf("expected 1 heuristic risk, got %d", counts.Tier2Heuristics)
	}
	if counts.Tier2Sections != 2 {
		t.Fatalf("expected ambiguity + no-evidence section risks, got %d", counts.Tier2Sections)
	}
	if counts.Tier1Inference != 1 {
		t.Fatalf("expected 1 inference risk, got %d", counts.Tier1Inference)
	}
	if counts.Total != len(risks) {
		t.Fatalf("total %d inconsistent with register size %d", counts.Total, len(risks))
	}

	byID := make(map[string]Risk)
	for _, r := range risks {
		if _, dup := byID[r.ID]; dup {
			t.Fatalf("duplicate risk id %q", r.ID)
		}
		byID[r.ID] = r
	}
	if r := byID["hit_dfars"]; r.Severity != "High" || r.Source != SourceAutoFlag {
		t.Fatalf("hit_key should win the id slot with normalized severity, got %+v", r)
	}
	if r := byID["autoflag:Unkeyed flag:1"]; r.Severity != "Medium" {
		t.Fatalf("unkeyed flag should default Medium with positional id, got %+v", r)
	}
	if r := byID["h1"]; r.Severity != "Low" || r.Source != SourceHeuristic {
		t.Fatalf("heuristic risk wrong: %+v", r)
	}
	if r := byID["sec_ambiguous_financialrisks_may"]; r.Severity != "Medium" || r.Category != "project_level" {
		t.Fatalf("ambiguity risk wrong: %+v", r)
	}
	if r := byID["sec_no_evidence_scopeofwork"]; r.Severity != "Low" {
		t.Fatalf("no-evidence risk wrong: %+v", r)
	}
	inf := byID["ai:0:May be missing a data rights clause"]
	if inf.Source != SourceAIOnly || inf.Category != "ai_identified_risk" || inf.Confidence != 0.25 {
		t.Fatalf("inference risk wrong: %+v", inf)
	}
}

func TestMaterializeIdempotentIDs(t *testing.T) {
	flags := []taxonomy.AutoFlag{{ID: "f1", Label: "flag one"}}
	secs := []sections.Section{{Title: "OVERVIEW", Text: "Work should proceed as appropriate.", Evidence: []sections.Evidence{{Text: "x"}}}}

	first, _ := Materialize(taxonomy.IntentRiskTriage, flags, nil, secs, nil)
	second, _ := Materialize(taxonomy.IntentRiskTriage, flags, nil, secs, nil)
	if len(first) != len(second) {
		t.Fatalf("register size changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("risk ids not stable at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestMaterializeInferenceCap(t *testing.T) {
	var candidates []string
	for i := 0; i < 15; i++ {
		candidates = append(candidates, "candidate "+strings.Repeat("c", i+1))
	}
	risks, counts := Materialize(taxonomy.IntentRiskTriage, nil, nil, nil, candidates)
	if counts.Tier1Inference != 10 || len(risks) != 10 {
		t.Fatalf("expected inference capped at 10, got %d", counts.Tier1Inference)
	}
}

func TestMaterializeLabelTruncation(t *testing.T) {
	long := strings.Repeat("a", 80)
	risks, _ := Materialize(taxonomy.IntentRiskTriage, nil, nil, nil, []string{long})
	if len(risks) != 1 {
		t.Fatalf("expected one risk, got %d", len(risks))
	}
	if risks[0].ID != "ai:0:"+strings.Repeat("a", 40) {
		t.Fatalf("expected label truncated to 40 in id, got %q", risks[0].ID)
	}
	if risks[0].Label != long {
		t.Fatal("full label must survive on the risk itself")
	}
}

func TestDeriveSectionRisksOneAmbiguityPerSection(t *testing.T) {
	secs := []sections.Section{{
		Title:    "LEGAL & DATA RIGHTS RISKS",
		Text:     "The vendor may terminate and should notify as appropriate.",
		Evidence: []sections.Evidence{{Text: "x"}},
	}}
	risks := DeriveSectionRisks(secs)
	if len(risks) != 1 {
		t.Fatalf("expected a single ambiguity risk per section, got %d: %+v", len(risks), risks)
	}
	if !strings.HasPrefix(risks[0].ID, "sec_ambiguous_legaldatarightsrisks_") {
		t.Fatalf("unexpected ambiguity id %q", risks[0].ID)
	}
}

func TestDeriveSectionRisksTitleSlug(t *testing.T) {
	secs := []sections.Section{
		{Title: "OVERVIEW", Text: "Grounded narrative.", Evidence: []sections.Evidence{{Text: "x"}}},
		{Title: "!!!", Text: ""},
	}
	risks := DeriveSectionRisks(secs)
	if len(risks) != 1 || risks[0].ID != "sec_no_evidence_unknown" {
		t.Fatalf("expected unknown slug fallback, got %+v", risks)
	}
}

func TestDeriveSectionRisksAllStarvedDerivesNothing(t *testing.T) {
	secs := []sections.Section{
		{Title: "OVERVIEW", Text: "Work should proceed as appropriate."},
		{Title: "SCOPE OF WORK", Text: ""},
	}
	if risks := DeriveSectionRisks(secs); len(risks) != 0 {
		t.Fatalf("starved run must not derive section risks, got %+v", risks)
	}
}
