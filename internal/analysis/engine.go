// File path: internal/analysis/engine.go
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/common/telemetry"
	"github.com/jbrewton2/contract-security-studio/internal/inference"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/narrative"
	"github.com/jbrewton2/contract-security-studio/internal/prompt"
	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/risk"
	"github.com/jbrewton2/contract-security-studio/internal/sections"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
	"github.com/jbrewton2/contract-security-studio/internal/vector"
)

const (
	defaultTopK          = 12
	maxTargetedExtra     = 10
	citationSnippetCap   = 350
	citationsPerQuestion = 3
)

// Engine runs the full analysis pipeline: retrieve, assemble, generate,
// parse, bind, backfill, and materialize risks.
type Engine struct {
	provider  llm.Provider
	store     vector.Store
	retriever *retrieval.Engine
	narrator  *narrative.Engine
	inferrer  *inference.Engine
}

func NewEngine(provider llm.Provider, store vector.Store) *Engine {
	return &Engine{
		provider:  provider,
		store:     store,
		retriever: retrieval.NewEngine(provider, store),
		narrator:  narrative.NewEngine(provider),
		inferrer:  inference.NewEngine(provider),
	}
}

func canonicalMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "default", ModeReviewSummary:
		return ModeReviewSummary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

// Analyze executes one analysis run. Vector unavailability and per-question
// retrieval failures degrade to starved sections with explicit gaps; only
// embedding batch mismatches and generation failures abort the run.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	logger := common.Logger()

	mode, err := canonicalMode(req.Mode)
	if err != nil {
		return nil, err
	}
	intent := taxonomy.NormalizeIntent(req.Intent)
	profile := retrieval.NormalizeProfile(req.Profile)
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	effectiveTopK := profile.EffectiveTopK(topK)

	logger.Info("analysis: run started",
		"review_id", req.ReviewID, "intent", intent, "profile", profile, "top_k", effectiveTopK)

	bindings := taxonomy.QuestionMap(intent)
	questions := taxonomy.ExtendQuestions(taxonomy.Questions(bindings), intent, req.AutoFlags, req.HeuristicHits, maxTargetedExtra)

	result, err := e.retriever.Retrieve(ctx, req.ReviewID, questions, effectiveTopK, req.Debug)
	if err != nil {
		return nil, err
	}
	evidence := retrieval.AssembleContext(result, profile, effectiveTopK)

	var signals string
	if intent == taxonomy.IntentRiskTriage {
		signals = prompt.RenderSignalsBlock(req.AutoFlags, req.HeuristicHits, req.InferenceCandidates, req.EnableInference)
	}

	multiPass := req.MultiPass || profile == retrieval.ProfileDeep
	var summary string
	if multiPass {
		summary = e.narrator.GenerateMultiPass(ctx, bindings, result, profile.SnippetCap(), signals)
	} else {
		rendered := prompt.RenderBriefPrompt(intent, taxonomy.SectionHeaders(), evidence.Text, signals)
		summary, err = e.narrator.GenerateSinglePass(ctx, rendered)
		if err != nil {
			return nil, err
		}
	}

	secs := sections.Parse(summary)
	secs = sections.AttachEvidence(secs, bindings, result)
	secs = sections.AssignOwners(secs)
	secs = sections.Backfill(secs)
	secs = sections.StrengthenOverview(secs)
	secs = sections.ApplyConfidence(secs)

	candidates := req.InferenceCandidates
	if intent == taxonomy.IntentRiskTriage && req.EnableInference && len(candidates) == 0 {
		candidates = e.inferrer.Generate(ctx, secs)
	}

	risks, tierCounts := risk.Materialize(intent, req.AutoFlags, req.HeuristicHits, secs, candidates)

	citations := buildCitations(result, effectiveTopK)

	retrievedTotal := 0
	zeroHit := 0
	for _, q := range result.Questions {
		n := result.Counts[q]
		retrievedTotal += n
		if n == 0 {
			zeroHit++
		}
	}

	var warnings []string
	if zeroHit > 0 {
		warnings = append(warnings, fmt.Sprintf("Insufficient evidence for %d section(s).", zeroHit))
	}
	if evidence.Truncated {
		warnings = append(warnings, fmt.Sprintf("Context truncated at %d chars.", profile.ContextCap()))
	}

	stats := Stats{
		TopKEffective:    effectiveTopK,
		RetrievedTotal:   retrievedTotal,
		ContextUsedChars: evidence.UsedChars,
		ContextTruncated: evidence.Truncated,
		TierCounts:       tierCounts,
	}
	if req.Debug {
		stats.DebugContext = debugContext(evidence.Text, signals)
		stats.RetrievalDebug = result.Debug
	}

	telemetry.RecordAnalysisRun(intent, time.Since(start))
	logger.Info("analysis: run finished",
		"review_id", req.ReviewID, "intent", intent,
		"retrieved", retrievedTotal, "risks", tierCounts.Total, "dur", time.Since(start))

	return &Result{
		ReviewID:        req.ReviewID,
		Mode:            mode,
		TopK:            effectiveTopK,
		AnalysisIntent:  intent,
		ContextProfile:  string(profile),
		Summary:         summary,
		Citations:       citations,
		RetrievedCounts: result.Counts,
		Risks:           risks,
		Sections:        secs,
		Stats:           stats,
		Warnings:        warnings,
	}, nil
}

func buildCitations(result *retrieval.Result, effectiveTopK int) []Citation {
	citations := []Citation{}
	budget := citationsPerQuestion
	if effectiveTopK < budget {
		budget = effectiveTopK
	}
	for _, q := range result.Questions {
		hits := result.Hits[q]
		n := budget
		if n > len(hits) {
			n = len(hits)
		}
		for _, h := range hits[:n] {
			start, end := sections.ParseChunkSpan(h.ChunkID)
			snippet := strings.TrimSpace(h.Text)
			if len(snippet) > citationSnippetCap {
				snippet = snippet[:citationSnippetCap]
			}
			doc := h.DocName
			if doc == "" {
				doc = h.DocID
			}
			citations = append(citations, Citation{
				Question:  q,
				Doc:       doc,
				DocID:     h.DocID,
				CharStart: start,
				CharEnd:   end,
				Score:     h.Score,
				Snippet:   snippet,
			})
		}
	}
	return citations
}

func debugContext(evidenceText, signals string) string {
	if strings.TrimSpace(signals) == "" {
		return evidenceText
	}
	return strings.TrimSpace(evidenceText + "\n\n" + signals)
}
