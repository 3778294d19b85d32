// File path: internal/sections/backfill_test.go
package sections

import (
	"strings"
	"testing"

	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

func TestBackfillStarvedSections(t *testing.T) {
	secs := Backfill(Parse(""))
	for _, s := range secs {
		if s.Text != InsufficientEvidence {
			t.Fatalf("starved section %s should carry the insufficient-evidence text, got %q", s.Title, s.Text)
		}
		if len(s.Gaps) != 1 || !strings.Contains(s.Gaps[0], "No contract evidence retrieved") {
			t.Fatalf("starved section %s missing gap: %v", s.Title, s.Gaps)
		}
		if len(s.RecommendedActions) != 1 || !strings.HasPrefix(s.RecommendedActions[0], "Action:") {
			t.Fatalf("starved section %s missing action: %v", s.Title, s.RecommendedActions)
		}
	}
	// idempotent: a second pass must not duplicate gaps or actions
	secs = Backfill(secs)
	for _, s := range secs {
		if len(s.Gaps) != 1 || len(s.RecommendedActions) != 1 {
			t.Fatalf("backfill not idempotent for %s: %v %v", s.Title, s.Gaps, s.RecommendedActions)
		}
	}
}

func TestBackfillEvidenceOnlySection(t *testing.T) {
	secs := Parse("")
	secs[0].Evidence = []Evidence{{Doc: "sow.pdf", Text: "The contractor shall report incidents."}}
	secs = Backfill(secs)
	if !strings.HasPrefix(secs[0].Text, "Evidence retrieved.") {
		t.Fatalf("evidence-only section should get the evidence text, got %q", secs[0].Text)
	}
	if len(secs[0].Gaps) != 0 {
		t.Fatalf("section with evidence must not get a gap: %v", secs[0].Gaps)
	}
}

func TestBackfillKeepsNarrative(t *testing.T) {
	secs := Parse("")
	secs[2].Text = "The scope covers cloud migration."
	secs = Backfill(secs)
	if secs[2].Text != "The scope covers cloud migration." {
		t.Fatalf("narrative text must be preserved, got %q", secs[2].Text)
	}
}

func TestStrengthenOverview(t *testing.T) {
	secs := Parse("")
	long := strings.Repeat("The contractor shall maintain an incident response plan. ", 10)
	secs[0].Evidence = []Evidence{
		{Text: "The contractor shall encrypt CUI at rest."},
		{Text: "the contractor shall encrypt cui at rest."},
		{Text: long},
		{Text: "Deliverables are due monthly."},
		{Text: "Invoices submitted via WAWF."},
	}
	secs = StrengthenOverview(secs)
	overview := secs[0]
	if len(overview.Findings) != 3 {
		t.Fatalf("expected 3 derived findings, got %d", len(overview.Findings))
	}
	for _, f := range overview.Findings {
		if len(f) > 220 {
			t.Fatalf("finding exceeds 220 chars: %d", len(f))
		}
	}
	// case-insensitive dedupe dropped the second snippet
	if overview.Findings[1] == overview.Findings[0] {
		t.Fatalf("duplicate finding survived: %v", overview.Findings)
	}
	if !strings.HasSuffix(overview.Findings[1], "...") {
		t.Fatalf("long evidence should truncate with marker, got %q", overview.Findings[1])
	}
}

func TestStrengthenOverviewNoOpCases(t *testing.T) {
	secs := Parse("")
	secs[0].Findings = []string{"existing"}
	secs[0].Evidence = []Evidence{{Text: "evidence"}}
	secs = StrengthenOverview(secs)
	if len(secs[0].Findings) != 1 {
		t.Fatalf("sections with findings must be untouched, got %v", secs[0].Findings)
	}

	secs = Parse("")
	secs = StrengthenOverview(secs)
	if len(secs[0].Findings) != 0 {
		t.Fatalf("no evidence means no derived findings, got %v", secs[0].Findings)
	}
}

func TestAssignOwners(t *testing.T) {
	secs := AssignOwners(Parse(""))
	byID := make(map[string]string)
	for _, s := range secs {
		byID[s.ID] = s.Owner
	}
	if byID[taxonomy.Slug(taxonomy.SectionSecurity)] != taxonomy.OwnerSecurity {
		t.Fatalf("security owner wrong: %v", byID)
	}
	if byID[taxonomy.Slug(taxonomy.SectionContradictions)] != taxonomy.OwnerLegal {
		t.Fatalf("contradictions owner wrong: %v", byID)
	}
	if byID[taxonomy.Slug(taxonomy.SectionFinancial)] != taxonomy.OwnerFinance {
		t.Fatalf("financial owner wrong: %v", byID)
	}
	if byID[taxonomy.Slug(taxonomy.SectionOverview)] != taxonomy.OwnerProgram {
		t.Fatalf("overview owner wrong: %v", byID)
	}
}
