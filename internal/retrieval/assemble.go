// File path: internal/retrieval/assemble.go
package retrieval

import "strings"

// Context is the assembled evidence block handed to the prompt renderer.
type Context struct {
	Text      string
	UsedChars int
	Truncated bool
}

// triage-scale question lists tighten the per-question hit budget
const triageQuestionThreshold = 15

// PerQuestionBudget bounds how many hits per question enter the context.
func PerQuestionBudget(topK, questionCount int) int {
	if questionCount >= triageQuestionThreshold {
		return clampInt(topK, 4, 8)
	}
	return clampInt(topK, 8, 20)
}

// AssembleContext greedily packs question headers and hit lines into the
// profile's character budget. Assembly stops mid-question once the budget is
// spent; questions with no hits are skipped entirely.
func AssembleContext(result *Result, profile Profile, topK int) Context {
	if result == nil || len(result.Questions) == 0 {
		return Context{}
	}
	contextCap := profile.ContextCap()
	snippetCap := profile.SnippetCap()
	perQ := PerQuestionBudget(topK, len(result.Questions))

	var parts []string
	used := 0

	for _, q := range result.Questions {
		hits := result.Hits[q]
		if len(hits) == 0 {
			continue
		}
		header := "Q: " + q + "\n"
		if used+len(header) > contextCap {
			break
		}
		parts = append(parts, header)
		used += len(header)

		budget := perQ
		if budget > len(hits) {
			budget = len(hits)
		}
		for _, h := range hits[:budget] {
			txt := strings.TrimSpace(h.Text)
			if txt == "" {
				continue
			}
			if snippetCap > 0 && len(txt) > snippetCap {
				txt = strings.TrimRight(txt[:snippetCap], " \t\n") + "..."
			}
			doc := h.DocName
			if doc == "" {
				doc = h.DocID
			}
			if doc == "" {
				doc = "doc"
			}
			line := "- (" + doc + " / " + h.ChunkID + ") " + txt + "\n"
			if used+len(line) > contextCap {
				break
			}
			parts = append(parts, line)
			used += len(line)
		}

		parts = append(parts, "\n")
		used++
		if used >= contextCap {
			break
		}
	}

	return Context{
		Text:      strings.TrimSpace(strings.Join(parts, "")),
		UsedChars: used,
		Truncated: used >= contextCap,
	}
}
