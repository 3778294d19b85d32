// File path: internal/taxonomy/taxonomy_test.go
package taxonomy

import (
	"strings"
	"testing"
)

func TestSectionHeadersOrder(t *testing.T) {
	headers := SectionHeaders()
	if len(headers) != 12 {
		t.Fatalf("expected 12 canonical headers, got %d", len(headers))
	}
	if headers[0] != SectionOverview {
		t.Fatalf("expected OVERVIEW first, got %s", headers[0])
	}
	if headers[len(headers)-1] != SectionActions {
		t.Fatalf("expected actions section last, got %s", headers[len(headers)-1])
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"OVERVIEW", "overview"},
		{"SECURITY, COMPLIANCE & HOSTING CONSTRAINTS", "security-compliance-hosting-constraints"},
		{"GAPS / QUESTIONS FOR THE GOVERNMENT", "gaps-questions-for-the-government"},
		{"  ", "section"},
		{"!!!", "section"},
		{strings.Repeat("a", 200), strings.Repeat("a", 80)},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOwnerForSlug(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{SectionSecurity, OwnerSecurity},
		{SectionLegal, OwnerLegal},
		{SectionContradictions, OwnerLegal},
		{SectionFinancial, OwnerFinance},
		{SectionOverview, OwnerProgram},
		{SectionGaps, OwnerProgram},
	}
	for _, tc := range cases {
		if got := OwnerForSlug(Slug(tc.header)); got != tc.want {
			t.Fatalf("owner for %s = %s, want %s", tc.header, got, tc.want)
		}
	}
	if got := OwnerForSlug("not-a-section"); got != OwnerProgram {
		t.Fatalf("unknown slug should default to program owner, got %s", got)
	}
}

func TestNormalizeIntent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"risk_triage", IntentRiskTriage},
		{" RISK_TRIAGE ", IntentRiskTriage},
		{"strict_summary", IntentStrictSummary},
		{"", IntentStrictSummary},
		{"something_else", IntentStrictSummary},
	}
	for _, tc := range cases {
		if got := NormalizeIntent(tc.in); got != tc.want {
			t.Fatalf("NormalizeIntent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQuestionMapSizes(t *testing.T) {
	strict := QuestionMap(IntentStrictSummary)
	if len(strict) != 10 {
		t.Fatalf("expected 10 strict summary questions, got %d", len(strict))
	}
	triage := QuestionMap(IntentRiskTriage)
	if len(triage) != 15 {
		t.Fatalf("expected 15 triage questions, got %d", len(triage))
	}
	for _, b := range append(strict, triage...) {
		if strings.TrimSpace(b.Section) == "" || strings.TrimSpace(b.Question) == "" {
			t.Fatalf("binding with empty field: %+v", b)
		}
	}
}

func TestQuestionMapBindsKnownSections(t *testing.T) {
	known := make(map[string]bool)
	for _, h := range SectionHeaders() {
		known[h] = true
	}
	for _, b := range QuestionMap(IntentRiskTriage) {
		if !known[b.Section] {
			t.Fatalf("triage question bound to unknown section %q", b.Section)
		}
	}
}

func TestTriggeredAreas(t *testing.T) {
	flags := []AutoFlag{{ID: "dfars_7012", Label: "DFARS 252.204-7012 incident reporting", Severity: "High"}}
	heuristics := []HeuristicHit{{ID: "h1", Label: "mentions subcontract flowdown"}}

	triggered := TriggeredAreas(flags, heuristics)
	if !triggered["information_security"] {
		t.Fatal("expected information_security triggered by dfars flag")
	}
	if !triggered["enterprise_level"] {
		t.Fatal("expected enterprise_level triggered by flowdown heuristic")
	}
	if triggered["privacy"] {
		t.Fatal("privacy should not trigger without privacy keywords")
	}

	if got := TriggeredAreas(nil, nil); len(got) != 0 {
		t.Fatalf("expected no triggered areas for empty signals, got %v", got)
	}
}

func TestTargetedQuestionListOrderAndCap(t *testing.T) {
	triggered := map[string]bool{"legal_data_rights": true, "information_security": true}

	questions := TargetedQuestionList(triggered, 10)
	if len(questions) != 4 {
		t.Fatalf("expected 4 targeted questions for two areas, got %d", len(questions))
	}
	// fixed area order puts information_security first
	if !strings.Contains(questions[0], "cybersecurity") {
		t.Fatalf("expected information_security question first, got %q", questions[0])
	}

	capped := TargetedQuestionList(triggered, 3)
	if len(capped) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(capped))
	}
	if got := TargetedQuestionList(triggered, 0); got != nil {
		t.Fatalf("expected nil for zero cap, got %v", got)
	}
}

func TestExtendQuestions(t *testing.T) {
	base := Questions(QuestionMap(IntentRiskTriage))
	flags := []AutoFlag{{ID: "f1", Label: "CUI safeguarding required", Severity: "High"}}

	extended := ExtendQuestions(base, IntentRiskTriage, flags, nil, 10)
	if len(extended) <= len(base) {
		t.Fatalf("expected targeted questions appended, base=%d extended=%d", len(base), len(extended))
	}
	for i, q := range base {
		if extended[i] != q {
			t.Fatalf("base question order disturbed at %d: %q", i, extended[i])
		}
	}
	seen := make(map[string]bool)
	for _, q := range extended {
		if seen[q] {
			t.Fatalf("duplicate question after extension: %q", q)
		}
		seen[q] = true
	}

	strict := ExtendQuestions(base, IntentStrictSummary, flags, nil, 10)
	if len(strict) != len(base) {
		t.Fatalf("strict summary must not extend questions, got %d want %d", len(strict), len(base))
	}
}
