// File path: internal/sections/parse_test.go
package sections

import (
	"strings"
	"testing"

	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

func TestCanonHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"**OVERVIEW**", "OVERVIEW"},
		{"Overview:", "OVERVIEW"},
		{"  scope   of  work ", "SCOPE OF WORK"},
		{strings.Repeat("A", 130), ""},
	}
	for _, tc := range cases {
		if got := CanonHeader(tc.in); got != tc.want {
			t.Fatalf("CanonHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseAlwaysEmitsCanonicalSections(t *testing.T) {
	secs := Parse("")
	headers := taxonomy.SectionHeaders()
	if len(secs) != len(headers) {
		t.Fatalf("expected %d sections, got %d", len(headers), len(secs))
	}
	for i, s := range secs {
		if s.Title != headers[i] {
			t.Fatalf("section %d title %q, want %q", i, s.Title, headers[i])
		}
		if s.ID != taxonomy.Slug(headers[i]) {
			t.Fatalf("section %d id %q, want %q", i, s.ID, taxonomy.Slug(headers[i]))
		}
		if s.Findings == nil || s.Evidence == nil {
			t.Fatalf("section %d slices must be initialized", i)
		}
	}
}

func TestParseRoutesBodies(t *testing.T) {
	narrative := strings.Join([]string{
		"OVERVIEW",
		"This effort modernizes a logistics system.",
		"- Key scope includes cloud migration",
		"",
		"**SECURITY, COMPLIANCE & HOSTING CONSTRAINTS:**",
		"CUI handling per DFARS applies.",
		"Owner: Security/ISSO",
		"- Encryption at rest required",
		"- Encryption at rest required",
		"",
		"SOME UNKNOWN HEADER",
		"This body must be dropped.",
	}, "\n")

	secs := Parse(narrative)
	byID := make(map[string]Section)
	for _, s := range secs {
		byID[s.ID] = s
	}

	overview := byID[taxonomy.Slug(taxonomy.SectionOverview)]
	if !strings.Contains(overview.Text, "modernizes a logistics system") {
		t.Fatalf("overview body missing: %q", overview.Text)
	}
	if len(overview.Findings) != 1 || overview.Findings[0] != "Key scope includes cloud migration" {
		t.Fatalf("unexpected overview findings: %v", overview.Findings)
	}

	security := byID[taxonomy.Slug(taxonomy.SectionSecurity)]
	if strings.Contains(security.Text, "Owner:") {
		t.Fatalf("owner token not stripped: %q", security.Text)
	}
	if len(security.Findings) != 1 {
		t.Fatalf("duplicate bullets must collapse, got %v", security.Findings)
	}

	for _, s := range secs {
		if strings.Contains(s.Text, "must be dropped") {
			t.Fatalf("unknown-header body leaked into %s", s.Title)
		}
	}
}

func TestParseDropsTrailingRollupBlock(t *testing.T) {
	narrative := strings.Join([]string{
		"RECOMMENDED INTERNAL ACTIONS",
		"Schedule a security review before signature.",
		"- Confirm CUI enclave boundary",
		"",
		"STAKEHOLDER ROLLUP",
		"- Program/PM: rollup paragraph one",
		"- Security/ISSO: rollup paragraph two",
	}, "\n")

	secs := Parse(narrative)
	actions := secs[len(secs)-1]
	if !strings.Contains(actions.Text, "security review before signature") {
		t.Fatalf("actions body missing: %q", actions.Text)
	}
	if len(actions.Findings) != 1 || actions.Findings[0] != "Confirm CUI enclave boundary" {
		t.Fatalf("rollup bullets must not become findings: %v", actions.Findings)
	}
	if strings.Contains(actions.Text, "rollup paragraph") {
		t.Fatalf("rollup block leaked into %s: %q", actions.Title, actions.Text)
	}
}

func TestParseFindingsCap(t *testing.T) {
	var lines []string
	lines = append(lines, "OVERVIEW")
	for i := 0; i < 15; i++ {
		lines = append(lines, "- finding number "+strings.Repeat("x", i+1))
	}
	secs := Parse(strings.Join(lines, "\n"))
	if len(secs[0].Findings) != 9 {
		t.Fatalf("expected findings capped at 9, got %d", len(secs[0].Findings))
	}
}
