// File path: internal/inference/engine.go
package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/sections"
)

const (
	maxCandidatesTotal      = 20
	maxCandidatesPerSection = 4
	candidateLineCap        = 160
	sectionTextCap          = 1200
	evidenceSnippetCap      = 240
	maxEvidenceSnippets     = 6
)

// Engine generates Tier-1 inference risk candidates: low-confidence
// hypotheses to investigate, never facts. Per-section calls keep each prompt
// small; a failed section is skipped, not fatal.
type Engine struct {
	provider llm.Provider
}

func NewEngine(provider llm.Provider) *Engine {
	return &Engine{provider: provider}
}

// Generate walks the parsed sections in order and collects deduplicated
// candidate lines, capped per section and in total.
func (e *Engine) Generate(ctx context.Context, secs []sections.Section) []string {
	logger := common.Logger()
	var out []string
	seen := make(map[string]bool)

	for _, s := range secs {
		prompt := sectionPrompt(s)
		txt, err := e.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
		if err != nil {
			logger.Warn("inference: section candidates failed", "section", s.Title, "error", err)
			continue
		}
		for _, line := range strings.Split(txt, "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "- ") {
				continue
			}
			cand := safeLine(strings.TrimSpace(line[2:]), candidateLineCap)
			if cand == "" {
				continue
			}
			key := strings.ToLower(cand)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, cand)
			if len(out) >= maxCandidatesTotal {
				return out
			}
		}
	}
	return out
}

func sectionPrompt(s sections.Section) string {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = strings.TrimSpace(s.ID)
	}
	if title == "" {
		title = "SECTION"
	}

	var snips []string
	for _, ev := range s.Evidence {
		if len(snips) >= maxEvidenceSnippets {
			break
		}
		t := strings.TrimSpace(ev.Text)
		if t == "" {
			cs, ce := "", ""
			if ev.CharStart != nil {
				cs = fmt.Sprint(*ev.CharStart)
			}
			if ev.CharEnd != nil {
				ce = fmt.Sprint(*ev.CharEnd)
			}
			t = strings.TrimSpace(fmt.Sprintf("%s span %s-%s", ev.Doc, cs, ce))
		}
		if t != "" {
			snips = append(snips, "- "+safeLine(t, evidenceSnippetCap))
		}
	}
	evBlock := strings.TrimSpace(strings.Join(snips, "\n"))
	if evBlock == "" {
		evBlock = "- (no evidence snippets available)"
	}

	return strings.TrimSpace(strings.Join([]string{
		"TASK",
		"Generate Tier-1 (inference) risk candidates for this section. These are low-confidence hypotheses to investigate.",
		"",
		"RULES",
		"- Do NOT invent facts; phrase as 'May be missing/unclear' when uncertain.",
		fmt.Sprintf("- Keep each candidate <= %d characters.", candidateLineCap),
		"- Provide ONLY bullet lines starting with '- '. No extra text.",
		fmt.Sprintf("- Provide at most %d candidates.", maxCandidatesPerSection),
		"",
		"SECTION: " + title,
		"",
		"SECTION TEXT (may be incomplete):",
		safeLine(s.Text, sectionTextCap),
		"",
		"EVIDENCE SNIPPETS:",
		evBlock,
		"",
		"OUTPUT",
		"- <candidate 1>",
		"- <candidate 2>",
	}, "\n"))
}

func safeLine(s string, maxLen int) string {
	t := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " "))
	if maxLen > 0 && len(t) > maxLen {
		t = strings.TrimRight(t[:maxLen-3], " ") + "..."
	}
	return t
}
