// File path: internal/api/analyze_handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jbrewton2/contract-security-studio/internal/analysis"
	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/jobs"
	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var wrapped analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&wrapped); err != nil {
		logger.Warn("api: analyze decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req := wrapped.Request
	req.ReviewID = strings.TrimSpace(req.ReviewID)
	if req.ReviewID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("review_id is required"))
		return
	}
	if wrapped.ForceReingest {
		if len(wrapped.Documents) == 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("force_reingest requires documents"))
			return
		}
		profile := retrieval.NormalizeProfile(req.Profile)
		summary, err := s.ingester.IngestReview(ctx, req.ReviewID, wrapped.Documents, profile)
		if err != nil {
			logger.Error("api: reingest before analyze failed", "review", req.ReviewID, "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		logger.Info("api: reingest before analyze", "review", req.ReviewID, "chunks", summary.IngestedChunks, "skipped", summary.SkippedDocs)
	}
	logger.Info(
		"api: analyze requested",
		"review", req.ReviewID,
		"intent", req.Intent,
		"profile", req.Profile,
		"top_k", req.TopK,
	)
	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, req)
	duration := time.Since(start)
	if err != nil {
		s.recordRun(req, nil, duration, err)
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrUnsupportedMode) {
			status = http.StatusBadRequest
		}
		logger.Error("api: analyze failed", "review", req.ReviewID, "status", status, "error", err)
		writeError(w, status, err)
		return
	}
	s.recordRun(req, result, duration, nil)
	logger.Info(
		"api: analyze succeeded",
		"review", req.ReviewID,
		"retrieved", result.Stats.RetrievedTotal,
		"risks", len(result.Risks),
		"dur", duration,
	)
	writeJSON(w, http.StatusOK, result)
}

// recordRun persists a run row; persistence failures only warn.
func (s *Server) recordRun(req analysis.Request, result *analysis.Result, duration time.Duration, runErr error) {
	if s.runs == nil {
		return
	}
	run := jobs.Run{
		ReviewID:   req.ReviewID,
		Intent:     req.Intent,
		Profile:    req.Profile,
		Status:     jobs.StatusCompleted,
		DurationMS: duration.Milliseconds(),
	}
	if result != nil {
		run.Intent = result.AnalysisIntent
		run.Profile = result.ContextProfile
		run.RetrievedTotal = result.Stats.RetrievedTotal
		run.RiskTotal = result.Stats.TierCounts.Total
		run.ContextUsedChars = result.Stats.ContextUsedChars
	}
	if runErr != nil {
		run.Status = jobs.StatusFailed
		run.Error = runErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.runs.Record(ctx, run); err != nil {
		common.Logger().Warn("api: record run failed", "review", req.ReviewID, "error", err)
	}
}
