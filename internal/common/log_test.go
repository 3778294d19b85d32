// File path: internal/common/log_test.go
package common

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoggerCapturesEntries(t *testing.T) {
	logger := Logger()
	logger.Info("ingest: document ingested", "review_id", "rev-1", "chunks", int64(3))

	entries := LogEntries()
	if len(entries) == 0 {
		t.Fatal("expected captured log entries")
	}
	var found *LogEntry
	for i := range entries {
		if entries[i].Message == "ingest: document ingested" {
			found = &entries[i]
		}
	}
	if found == nil {
		t.Fatalf("logged message not captured, have %d entries", len(entries))
	}
	if found.Component != "ingest" {
		t.Fatalf("component not derived from message prefix: %q", found.Component)
	}
	if found.Level != "info" {
		t.Fatalf("unexpected level %q", found.Level)
	}
	if found.Attributes["review_id"] != "rev-1" {
		t.Fatalf("attributes not captured: %v", found.Attributes)
	}
	if found.Time.IsZero() || found.Time.Location() != time.UTC {
		t.Fatalf("timestamps must be UTC, got %v", found.Time)
	}
}

func TestLogSinkBounded(t *testing.T) {
	s := newLogSink(5)
	for i := 0; i < 12; i++ {
		s.capture(slog.NewRecord(time.Now(), slog.LevelInfo, "retrieval: query", 0))
	}
	if got := len(s.entries()); got != 5 {
		t.Fatalf("sink should cap history at 5, got %d", got)
	}
}
