// File path: internal/sections/parse.go
package sections

import (
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

const maxSectionFindings = 9

// CanonHeader normalizes a candidate header line: decoration stripped,
// whitespace collapsed, uppercased. Returns "" for lines that cannot be a
// header (too long for the short all-caps heuristic).
func CanonHeader(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "*")
	s = strings.ReplaceAll(s, ":", "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToUpper(s)
	if len(s) > 120 {
		return ""
	}
	return s
}

// Parse splits a flat narrative (alternating header and body lines) into the
// canonical twelve sections in fixed order. Bodies under unknown headers are
// dropped; bullet lines become findings; sections absent from the narrative
// come back with empty text for the backfill pass to fill.
func Parse(narrative string) []Section {
	bodies := splitByHeader(narrative)

	headers := taxonomy.SectionHeaders()
	out := make([]Section, 0, len(headers))
	for _, header := range headers {
		canon := CanonHeader(header)
		body := bodies[canon]
		sec := Section{
			ID:       taxonomy.Slug(header),
			Title:    header,
			Text:     stripOwnerTokens(body),
			Findings: []string{},
			Evidence: []Evidence{},
		}
		sec.Findings = extractFindings(sec.Text)
		out = append(out, sec)
	}
	return out
}

func splitByHeader(text string) map[string]string {
	known := make(map[string]bool)
	for _, h := range taxonomy.SectionHeaders() {
		known[CanonHeader(h)] = true
	}

	bodies := make(map[string][]string)
	var current string
	for _, line := range strings.Split(text, "\n") {
		if headerLike(line) {
			// Any header line starts a new segment. Unknown headers open
			// a discarded segment so their bodies never leak into the
			// preceding section.
			canon := CanonHeader(line)
			if known[canon] {
				current = canon
				if _, ok := bodies[current]; !ok {
					bodies[current] = []string{}
				}
			} else {
				current = ""
			}
			continue
		}
		if current == "" {
			continue
		}
		bodies[current] = append(bodies[current], line)
	}

	out := make(map[string]string, len(bodies))
	for k, v := range bodies {
		out[k] = strings.TrimSpace(strings.Join(v, "\n"))
	}
	return out
}

// headerLike reports whether a line reads as a section header: short,
// not a bullet, and already fully uppercase once decoration is stripped.
func headerLike(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "-") {
		return false
	}
	canon := CanonHeader(s)
	if canon == "" {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// stripOwnerTokens drops standalone "Owner:" lines the model sometimes emits
// despite instructions; owner routing is deterministic and server-side.
func stripOwnerTokens(s string) string {
	var kept []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r", " "), "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "owner:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func extractFindings(body string) []string {
	findings := []string{}
	seen := make(map[string]bool)
	for _, line := range strings.Split(body, "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "-") && !strings.HasPrefix(t, "*") {
			continue
		}
		t = strings.TrimSpace(strings.TrimLeft(t, "-*"))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		findings = append(findings, t)
		if len(findings) >= maxSectionFindings {
			break
		}
	}
	return findings
}
