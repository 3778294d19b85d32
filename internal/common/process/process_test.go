// File path: internal/common/process/process_test.go
package process

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStartRequiresCommand(t *testing.T) {
	if _, err := Start(context.Background(), ServiceConfig{}); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestBinaryPath(t *testing.T) {
	if _, err := BinaryPath("  "); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := BinaryPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Fatal("expected error for unknown binary")
	}
	path, err := BinaryPath("sh")
	if err != nil {
		t.Fatalf("BinaryPath(sh) returned error: %v", err)
	}
	if path == "" {
		t.Fatal("expected resolved path")
	}
}

func TestStartReadyAndStop(t *testing.T) {
	ready := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ready.Close()

	svc, err := Start(context.Background(), ServiceConfig{
		Name:          "sleeper",
		Command:       "sleep",
		Args:          []string{"30"},
		ReadyURL:      ready.URL,
		ReadyTimeout:  5 * time.Second,
		ReadyInterval: 50 * time.Millisecond,
		StopTimeout:   2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestStartFailsWhenProcessDiesBeforeReady(t *testing.T) {
	// Probe a closed listener so readiness can never succeed.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := dead.URL
	dead.Close()

	_, err := Start(context.Background(), ServiceConfig{
		Name:          "short-lived",
		Command:       "sh",
		Args:          []string{"-c", "exit 3"},
		ReadyURL:      url,
		ReadyTimeout:  3 * time.Second,
		ReadyInterval: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error when the process exits before ready")
	}
}
