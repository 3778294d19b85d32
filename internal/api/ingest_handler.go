// File path: internal/api/ingest_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/ingest"
	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/storage"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: ingest decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ReviewID = strings.TrimSpace(req.ReviewID)
	if req.ReviewID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("review_id is required"))
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("documents are required"))
		return
	}
	profile := retrieval.NormalizeProfile(req.Profile)
	logger.Info("api: ingest requested", "review", req.ReviewID, "documents", len(req.Documents), "profile", string(profile))
	summary, err := s.ingester.IngestReview(ctx, req.ReviewID, req.Documents, profile)
	if err != nil {
		logger.Error("api: ingest failed", "review", req.ReviewID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: ingest succeeded", "review", req.ReviewID, "chunks", summary.IngestedChunks, "skipped", summary.SkippedDocs)
	writeJSON(w, http.StatusOK, ingestResponse{ReviewID: req.ReviewID, Summary: summary})
}

func (s *Server) handleIngestUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	const maxMemory = 64 << 20 // 64 MiB of in-memory file parts
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		logger.Warn("api: ingest upload form parse failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	reviewID := strings.TrimSpace(r.FormValue("review_id"))
	if reviewID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("review_id is required"))
		return
	}
	profile := retrieval.NormalizeProfile(r.FormValue("context_profile"))
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no files uploaded"))
		return
	}

	docs := make([]ingest.Document, 0, len(files))
	names := make([]string, 0, len(files))
	var warning string
	for _, header := range files {
		docID := documentID(header.Filename)
		if docID == "" {
			warning = appendWarning(warning, fmt.Sprintf("skipped unnamed upload %q", header.Filename))
			continue
		}
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("open upload %s: %w", header.Filename, err))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("read upload %s: %w", header.Filename, err))
			return
		}
		if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			if err := storage.StorePDF(ctx, s.artifacts, docID, data); err != nil {
				logger.Warn("api: pdf store failed", "doc", docID, "error", err)
				warning = appendWarning(warning, fmt.Sprintf("could not store %s", header.Filename))
				continue
			}
			// Text resolved from the stored PDF during ingestion.
			docs = append(docs, ingest.Document{ID: docID, Name: header.Filename})
		} else {
			docs = append(docs, ingest.Document{ID: docID, Name: header.Filename, Text: string(data)})
		}
		names = append(names, header.Filename)
	}
	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no usable documents in upload"))
		return
	}
	logger.Info("api: upload ingest requested", "review", reviewID, "documents", len(docs))
	summary, err := s.ingester.IngestReview(ctx, reviewID, docs, profile)
	if err != nil {
		logger.Error("api: upload ingest failed", "review", reviewID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestUploadResponse{
		ReviewID:  reviewID,
		Uploaded:  len(docs),
		Summary:   summary,
		Warning:   warning,
		Documents: names,
	})
}

func documentID(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func appendWarning(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "; " + next
}
