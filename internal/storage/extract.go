// File path: internal/storage/extract.go
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/jbrewton2/contract-security-studio/internal/common"
)

// Artifact keys per document. The extraction cache is the source of truth;
// the stored PDF is the fallback the cache is rebuilt from.
func extractTextKey(docID string) string { return "review_pdfs/extract/" + docID + "/raw_text.txt" }

func extractMetaKey(docID string) string { return "review_pdfs/extract/" + docID + "/extract.json" }

func legacyExtractKey(docID string) string { return "extract/" + docID + "/raw_text.txt" }

func pdfKey(docID string) string { return "review_pdfs/" + docID + ".pdf" }

// ResolveDocumentText returns the best-effort text for a document:
// the cached extraction artifact when present (current or legacy layout),
// else text re-extracted from the stored PDF with a cache write-back.
// Never fails hard; a document without resolvable text returns "".
func ResolveDocumentText(ctx context.Context, provider Provider, docID string) string {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return ""
	}
	logger := common.Logger()

	for _, key := range []string{extractTextKey(docID), legacyExtractKey(docID)} {
		if data, err := provider.GetObject(ctx, key); err == nil {
			if t := strings.TrimSpace(string(data)); t != "" {
				return t
			}
		}
	}

	pdfBytes, err := provider.GetObject(ctx, pdfKey(docID))
	if err != nil || len(pdfBytes) == 0 {
		return ""
	}
	text := strings.TrimSpace(ExtractPDFText(pdfBytes))
	if text == "" {
		return ""
	}

	// best-effort cache write-back
	if err := provider.PutObject(ctx, extractTextKey(docID), []byte(text), "text/plain; charset=utf-8"); err != nil {
		logger.Warn("storage: extraction write-back failed", "doc_id", docID, "error", err)
	} else {
		meta := map[string]string{
			"doc_id":              docID,
			"pdf_key":             pdfKey(docID),
			"pdf_sha256":          sha256Hex(pdfBytes),
			"extract_text_sha256": sha256Hex([]byte(text)),
			"created_at":          time.Now().UTC().Format(time.RFC3339),
		}
		if payload, err := json.MarshalIndent(meta, "", "  "); err == nil {
			if err := provider.PutObject(ctx, extractMetaKey(docID), payload, "application/json"); err != nil {
				logger.Warn("storage: extraction metadata write failed", "doc_id", docID, "error", err)
			}
		}
	}
	return text
}

// ExtractPDFText pulls plain text from PDF bytes; empty on any parse failure.
func ExtractPDFText(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return buf.String()
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StorePDF writes a document's PDF bytes into the artifact layout.
func StorePDF(ctx context.Context, provider Provider, docID string, data []byte) error {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return fmt.Errorf("doc id required")
	}
	return provider.PutObject(ctx, pdfKey(docID), data, "application/pdf")
}

// StoreExtractedText seeds the extraction cache directly, used when callers
// submit already-extracted text instead of a PDF.
func StoreExtractedText(ctx context.Context, provider Provider, docID, text string) error {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return fmt.Errorf("doc id required")
	}
	return provider.PutObject(ctx, extractTextKey(docID), []byte(text), "text/plain; charset=utf-8")
}
