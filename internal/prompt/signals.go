// File path: internal/prompt/signals.go
package prompt

import (
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

const signalLineCap = 25

// RenderSignalsBlock renders the deterministic-signals block for triage
// prompts. The block is a prioritization hint only; the markers make clear
// to both the model and downstream parsers that it is not contract evidence.
// Inference candidates appear only when includeInference is set. Empty
// inputs render to an empty string so the block disappears entirely.
func RenderSignalsBlock(flags []taxonomy.AutoFlag, heuristics []taxonomy.HeuristicHit, inferenceCandidates []string, includeInference bool) string {
	var parts []string

	if len(flags) > 0 {
		var lines []string
		for _, f := range flags {
			if len(lines) >= signalLineCap {
				break
			}
			label := strings.TrimSpace(firstNonEmpty(f.Label, f.ID))
			if label == "" {
				continue
			}
			sev := strings.TrimSpace(f.Severity)
			if sev == "" {
				sev = "High"
			}
			key := strings.TrimSpace(firstNonEmpty(f.HitKey, f.Key, f.ID))
			line := "- " + label + " (src=autoFlag, severity=" + sev
			if key != "" {
				line += ", key=" + key
			}
			line += ")"
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			parts = append(parts, "AUTOFLAGS (deterministic hits)")
			parts = append(parts, lines...)
		}
	}

	if len(heuristics) > 0 {
		var lines []string
		for _, h := range heuristics {
			if len(lines) >= signalLineCap {
				break
			}
			label := strings.TrimSpace(firstNonEmpty(h.Label, h.ID))
			if label == "" {
				continue
			}
			lines = append(lines, "- "+label+" (src=heuristic)")
		}
		if len(lines) > 0 {
			parts = append(parts, "", "HEURISTIC HITS (semi-deterministic)")
			parts = append(parts, lines...)
		}
	}

	if includeInference && len(inferenceCandidates) > 0 {
		var lines []string
		for _, c := range inferenceCandidates {
			if len(lines) >= signalLineCap {
				break
			}
			t := strings.TrimSpace(c)
			if t == "" {
				continue
			}
			lines = append(lines, "- "+t)
		}
		if len(lines) > 0 {
			parts = append(parts, "", "INFERENCE CANDIDATES (LLM suggestions; lowest confidence)")
			parts = append(parts, lines...)
		}
	}

	block := strings.TrimSpace(strings.Join(parts, "\n"))
	if block == "" {
		return ""
	}
	return "BEGIN DETERMINISTIC SIGNALS\nNOT CONTRACT EVIDENCE\n" + block + "\nEND DETERMINISTIC SIGNALS"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
