// File path: internal/narrative/engine_test.go
package narrative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

type scriptedProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	chatFn  func(prompt string) (string, error)
}

func (s *scriptedProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	s.mu.Lock()
	s.calls++
	prompt := messages[len(messages)-1].Content
	s.prompts = append(s.prompts, prompt)
	fn := s.chatFn
	s.mu.Unlock()
	if fn != nil {
		return fn(prompt)
	}
	return "section narrative body", nil
}

func (s *scriptedProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	return nil, errors.New("embed not expected")
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestGenerateSinglePass(t *testing.T) {
	provider := &scriptedProvider{chatFn: func(prompt string) (string, error) {
		if !strings.Contains(prompt, "rendered prompt body") {
			return "", errors.New("prompt not forwarded")
		}
		return "  OVERVIEW\ntext  ", nil
	}}
	engine := NewEngine(provider)

	out, err := engine.GenerateSinglePass(context.Background(), "rendered prompt body")
	if err != nil {
		t.Fatalf("GenerateSinglePass returned error: %v", err)
	}
	if out != "OVERVIEW\ntext" {
		t.Fatalf("expected trimmed narrative, got %q", out)
	}
}

func TestGenerateSinglePassError(t *testing.T) {
	provider := &scriptedProvider{chatFn: func(string) (string, error) {
		return "", errors.New("model down")
	}}
	engine := NewEngine(provider)
	if _, err := engine.GenerateSinglePass(context.Background(), "p"); err == nil {
		t.Fatal("expected error surfaced")
	}
}

func TestGenerateMultiPassCallsPerSection(t *testing.T) {
	provider := &scriptedProvider{}
	engine := NewEngine(provider)

	bindings := taxonomy.QuestionMap(taxonomy.IntentRiskTriage)
	result := &retrieval.Result{
		Questions: taxonomy.Questions(bindings),
		Hits: map[string][]retrieval.Hit{
			bindings[0].Question: {{ChunkID: "sow:0:0:40", DocID: "sow", DocName: "sow.pdf", Text: "The contractor shall encrypt CUI."}},
		},
	}

	out := engine.GenerateMultiPass(context.Background(), bindings, result, 900, "")
	if provider.callCount() != len(taxonomy.SectionHeaders()) {
		t.Fatalf("expected one call per canonical section, got %d", provider.callCount())
	}

	lines := strings.Split(out, "\n")
	if lines[0] != taxonomy.SectionOverview {
		t.Fatalf("stitched output must start with the first header, got %q", lines[0])
	}
	for _, header := range taxonomy.SectionHeaders() {
		if !strings.Contains(out, header+"\n") && !strings.HasSuffix(out, header) {
			t.Fatalf("stitched output missing header %s:\n%s", header, out)
		}
	}
}

func TestGenerateMultiPassFailureBecomesInsufficient(t *testing.T) {
	provider := &scriptedProvider{chatFn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "SECTION HEADER: "+taxonomy.SectionOverview) {
			return "", errors.New("model down")
		}
		if strings.Contains(prompt, "SECTION HEADER: "+taxonomy.SectionScope) {
			return "   ", nil
		}
		return "body", nil
	}}
	engine := NewEngine(provider)

	out := engine.GenerateMultiPass(context.Background(), nil, &retrieval.Result{}, 900, "")
	if !strings.Contains(out, taxonomy.SectionOverview+"\nINSUFFICIENT EVIDENCE") {
		t.Fatalf("failed section should read INSUFFICIENT EVIDENCE:\n%s", out)
	}
	if !strings.Contains(out, taxonomy.SectionScope+"\nINSUFFICIENT EVIDENCE") {
		t.Fatalf("empty section should read INSUFFICIENT EVIDENCE:\n%s", out)
	}
}

func TestSectionPromptShape(t *testing.T) {
	lines := []string{"- (sow.pdf) The contractor shall encrypt CUI."}
	prompt := sectionPrompt(taxonomy.SectionSecurity, lines, "BEGIN DETERMINISTIC SIGNALS\nfoo\nEND DETERMINISTIC SIGNALS")

	if !strings.Contains(prompt, "SECTION HEADER: "+taxonomy.SectionSecurity) {
		t.Fatalf("missing section header:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- (sow.pdf) The contractor shall encrypt CUI.") {
		t.Fatalf("missing evidence line:\n%s", prompt)
	}
	if strings.Contains(prompt, "\nfoo\n") {
		t.Fatal("signals must be flattened to one line")
	}

	empty := sectionPrompt(taxonomy.SectionSecurity, nil, "")
	if !strings.Contains(empty, "(no evidence retrieved)") {
		t.Fatalf("expected evidence placeholder:\n%s", empty)
	}
	if !strings.Contains(empty, "(none)") {
		t.Fatalf("expected signals placeholder:\n%s", empty)
	}
}

func TestEvidenceLinesForSection(t *testing.T) {
	bindings := []taxonomy.QuestionBinding{
		{Section: taxonomy.SectionSecurity, Question: "q1"},
		{Section: taxonomy.SectionOverview, Question: "q2"},
	}
	var hits []retrieval.Hit
	for i := 0; i < 10; i++ {
		hits = append(hits, retrieval.Hit{
			ChunkID: "d:0:0:10",
			DocID:   "d",
			DocName: "d.pdf",
			Text:    strings.Repeat("evidence ", i+1),
		})
	}
	result := &retrieval.Result{
		Hits: map[string][]retrieval.Hit{"q1": hits, "q2": {{ChunkID: "x", Text: "other"}}},
	}

	lines := evidenceLinesForSection(taxonomy.SectionSecurity, bindings, result, 900)
	if len(lines) != 6 {
		t.Fatalf("expected per-question hit budget of 6, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "- (d.pdf) ") {
			t.Fatalf("unexpected line format: %q", line)
		}
	}
	if got := evidenceLinesForSection(taxonomy.SectionGaps, bindings, result, 900); len(got) != 0 {
		t.Fatalf("unbound section should have no lines, got %v", got)
	}
}
