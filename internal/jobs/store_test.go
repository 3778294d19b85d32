// File path: internal/jobs/store_test.go
package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	saved, err := store.Record(ctx, Run{
		ReviewID:         "rev-1",
		Intent:           "risk_triage",
		Profile:          "balanced",
		Status:           StatusCompleted,
		RetrievedTotal:   42,
		RiskTotal:        7,
		ContextUsedChars: 12345,
		DurationMS:       830,
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Record should assign an ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("Record should assign a timestamp")
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ReviewID != "rev-1" || got.RetrievedTotal != 42 || got.RiskTotal != 7 || got.Status != StatusCompleted {
		t.Fatalf("unexpected run: %+v", got)
	}
}

func TestGetNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		reviewID := "rev-a"
		if i == 1 {
			reviewID = "rev-b"
		}
		_, err := store.Record(ctx, Run{
			ReviewID:  reviewID,
			Intent:    "strict_summary",
			Profile:   "fast",
			Status:    StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	all, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[0].CreatedAt.Before(all[1].CreatedAt) {
		t.Fatal("runs should be newest first")
	}

	filtered, err := store.List(ctx, "rev-a", 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 rev-a runs, got %d", len(filtered))
	}
	for _, run := range filtered {
		if run.ReviewID != "rev-a" {
			t.Fatalf("filter leaked run: %+v", run)
		}
	}

	limited, err := store.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit of 1, got %d", len(limited))
	}
}

func TestRecordFailedRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	saved, err := store.Record(ctx, Run{
		ReviewID: "rev-1",
		Intent:   "strict_summary",
		Profile:  "fast",
		Status:   StatusFailed,
		Error:    "embed questions: provider down",
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Status != StatusFailed || got.Error == "" {
		t.Fatalf("unexpected failed run: %+v", got)
	}
}

func TestOpenEnablesWALJournal(t *testing.T) {
	store := openTestStore(t)
	var mode string
	if err := store.db.GetContext(context.Background(), &mode, `PRAGMA journal_mode`); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), Run{ReviewID: "rev-1", Intent: "x", Profile: "fast", Status: StatusCompleted}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
}
