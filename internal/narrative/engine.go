// File path: internal/narrative/engine.go
package narrative

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

const (
	insufficientEvidence = "INSUFFICIENT EVIDENCE"

	maxEvidenceLines    = 12
	maxHitsPerQuestion  = 6
	evidenceLineCap     = 260
	signalsExcerptCap   = 1200
	maxSectionSentences = 6

	sectionWorkers = 4
)

// Engine turns retrieved evidence into the flat narrative the section parser
// consumes.
type Engine struct {
	provider llm.Provider
}

func NewEngine(provider llm.Provider) *Engine {
	return &Engine{provider: provider}
}

// GenerateSinglePass runs one chat call over the fully rendered prompt.
func (e *Engine) GenerateSinglePass(ctx context.Context, renderedPrompt string) (string, error) {
	out, err := e.provider.Chat(ctx, []llm.Message{{Role: "user", Content: renderedPrompt}})
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// GenerateMultiPass makes one bounded-size chat call per canonical section so
// deep-profile evidence never breaches a hard model context limit. Sections
// run on a small worker pool; the stitched output preserves report order and
// matches the single-pass parser format (alternating header and body lines).
// A failed or empty section becomes INSUFFICIENT EVIDENCE rather than
// failing the run.
func (e *Engine) GenerateMultiPass(ctx context.Context, bindings []taxonomy.QuestionBinding, result *retrieval.Result, snippetCap int, signals string) string {
	headers := taxonomy.SectionHeaders()
	bodies := make([]string, len(headers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, sectionWorkers)
	logger := common.Logger()

	for i, header := range headers {
		wg.Add(1)
		go func(idx int, header string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			lines := evidenceLinesForSection(header, bindings, result, snippetCap)
			prompt := sectionPrompt(header, lines, signals)
			txt, err := e.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
			if err != nil {
				logger.Warn("narrative: section generation failed", "section", header, "error", err)
				txt = ""
			}
			txt = strings.TrimSpace(txt)
			if txt == "" {
				txt = insufficientEvidence
			}
			bodies[idx] = txt
		}(i, header)
	}
	wg.Wait()

	parts := make([]string, 0, len(headers)*2)
	for i, header := range headers {
		parts = append(parts, strings.TrimSpace(header), bodies[i])
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func evidenceLinesForSection(header string, bindings []taxonomy.QuestionBinding, result *retrieval.Result, snippetCap int) []string {
	var out []string
	if result == nil {
		return out
	}
	for _, b := range bindings {
		if !strings.EqualFold(strings.TrimSpace(b.Section), strings.TrimSpace(header)) {
			continue
		}
		hits := result.Hits[b.Question]
		budget := maxHitsPerQuestion
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
			out = append(out, "- ("+doc+") "+txt)
			if len(out) >= maxEvidenceLines {
				return out
			}
		}
	}
	return out
}

func sectionPrompt(header string, evidenceLines []string, signals string) string {
	flattened := make([]string, 0, len(evidenceLines))
	for _, line := range evidenceLines {
		flattened = append(flattened, flatten(line, evidenceLineCap))
	}
	ev := strings.TrimSpace(strings.Join(flattened, "\n"))
	if ev == "" {
		ev = "(no evidence retrieved)"
	}
	sig := strings.TrimSpace(signals)
	if sig != "" {
		sig = flatten(sig, signalsExcerptCap)
	} else {
		sig = "(none)"
	}

	return strings.TrimSpace(strings.Join([]string{
		"TASK",
		"Write a short narrative for this section based ONLY on the evidence lines.",
		"",
		"RULES",
		"- Plain text only",
		"- Do NOT fabricate facts",
		"- If insufficient evidence: write 'INSUFFICIENT EVIDENCE'",
		"- Do not cite deterministic signals as contract text",
		"",
		"SECTION HEADER: " + header,
		"",
		"DETERMINISTIC SIGNALS (NOT CONTRACT EVIDENCE):",
		sig,
		"",
		"CONTRACT EVIDENCE LINES:",
		ev,
		"",
		"OUTPUT",
		fmt.Sprintf("Write 2-%d sentences.", maxSectionSentences),
	}, "\n"))
}

func flatten(s string, maxLen int) string {
	t := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " "))
	if maxLen > 0 && len(t) > maxLen {
		t = strings.TrimRight(t[:maxLen-3], " ") + "..."
	}
	return t
}
