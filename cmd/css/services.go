// File path: cmd/css/services.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jbrewton2/contract-security-studio/internal/common/process"
)

// startChroma launches a local ChromaDB server via the chroma CLI and waits
// for its heartbeat.
func startChroma(ctx context.Context, logger *slog.Logger) (*process.ManagedService, error) {
	chromaBin, err := chromaBinary()
	if err != nil {
		return nil, err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	chromaDataDir := filepath.Join(workDir, "chroma_data")
	if err := os.MkdirAll(chromaDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare chroma data directory: %w", err)
	}

	if err := ensureEnvDefault("CHROMADB_HOST", "127.0.0.1"); err != nil {
		return nil, err
	}
	if err := ensureEnvDefault("CHROMADB_PORT", "8000"); err != nil {
		return nil, err
	}
	if err := ensureEnvDefault("CHROMADB_SCHEME", "http"); err != nil {
		return nil, err
	}
	if err := ensureEnvDefault("CHROMADB_COLLECTION", "css_contracts"); err != nil {
		return nil, err
	}

	host := os.Getenv("CHROMADB_HOST")
	port := os.Getenv("CHROMADB_PORT")
	readyURL := fmt.Sprintf("%s://%s/api/v1/heartbeat", os.Getenv("CHROMADB_SCHEME"), net.JoinHostPort(host, port))
	return process.Start(ctx, process.ServiceConfig{
		Name:    "chromadb",
		Command: chromaBin,
		Args:    []string{"run", "--path", chromaDataDir, "--host", host, "--port", port},
		Env: []string{
			"ANONYMIZED_TELEMETRY=false",
		},
		ReadyURL:     readyURL,
		ReadyTimeout: 2 * time.Minute,
		StopTimeout:  5 * time.Second,
		Logger:       logger.With("component", "launcher", "service", "chromadb"),
	})
}

func stopManagedService(ctx context.Context, svc *process.ManagedService, logger *slog.Logger) {
	if svc == nil {
		return
	}
	if err := svc.Stop(ctx); err != nil && logger != nil {
		logger.Warn("launcher: service shutdown returned error", "error", err)
	}
}

func chromaBinary() (string, error) {
	candidate := strings.TrimSpace(os.Getenv("CHROMA_BIN"))
	if candidate == "" {
		candidate = "chroma"
	}
	path, err := process.BinaryPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve chroma binary: %w", err)
	}
	return path, nil
}

func ensureEnvDefault(key, value string) error {
	if _, ok := os.LookupEnv(key); ok {
		return nil
	}
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
