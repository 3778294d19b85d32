// File path: internal/common/process/process.go
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ServiceConfig describes a sidecar process (today: a local ChromaDB
// server) that should be launched alongside the API and probed for
// readiness over HTTP.
type ServiceConfig struct {
	Name          string
	Command       string
	Args          []string
	Env           []string
	WorkDir       string
	ReadyURL      string
	ReadyTimeout  time.Duration
	ReadyInterval time.Duration
	StopTimeout   time.Duration
	Logger        *slog.Logger
}

func (c ServiceConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c ServiceConfig) label() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return filepath.Base(strings.TrimSpace(c.Command))
}

// ManagedService is a launched sidecar. Stop is safe to call once from the
// owning main; the exit status is observed by a single wait goroutine.
type ManagedService struct {
	cfg  ServiceConfig
	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	waitErr error
}

// Start launches the process, forwards its output into the service logger,
// and blocks until the readiness URL answers (or the process dies first).
func Start(ctx context.Context, cfg ServiceConfig) (*ManagedService, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("process: command required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.logger()
	logger.Info("process: launching", "service", cfg.label(), "command", cfg.Command, "args", strings.Join(cfg.Args, " "))

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.WorkDir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("process: stdout pipe %s: %w", cfg.label(), err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("process: stderr pipe %s: %w", cfg.label(), err)
	}
	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("process: start %s: %w", cfg.label(), err)
	}

	svc := &ManagedService{cfg: cfg, cmd: cmd, done: make(chan struct{})}
	go svc.forward(stdout, slog.LevelInfo)
	go svc.forward(stderr, slog.LevelWarn)
	go func() {
		err := cmd.Wait()
		svc.mu.Lock()
		svc.waitErr = err
		svc.mu.Unlock()
		close(svc.done)
	}()

	if err := svc.awaitReady(ctx); err != nil {
		svc.Stop(context.Background())
		return nil, err
	}
	logger.Info("process: ready", "service", cfg.label(), "url", cfg.ReadyURL)
	return svc, nil
}

// forward copies one output stream into the logger, a line per entry.
func (s *ManagedService) forward(pipe io.ReadCloser, level slog.Level) {
	defer pipe.Close()
	logger := s.cfg.logger()
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logger.Log(context.Background(), level, scanner.Text(), "service", s.cfg.label())
	}
}

func (s *ManagedService) awaitReady(ctx context.Context) error {
	url := strings.TrimSpace(s.cfg.ReadyURL)
	if url == "" {
		return nil
	}
	timeout := s.cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	interval := s.cfg.ReadyInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client := &http.Client{Timeout: 2 * time.Second}

	var lastErr error
	for {
		req, err := http.NewRequestWithContext(readyCtx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("process: readiness request for %s: %w", s.cfg.label(), err)
		}
		resp, err := client.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode < http.StatusInternalServerError {
				return nil
			}
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
		} else {
			lastErr = err
		}

		select {
		case <-readyCtx.Done():
			if lastErr != nil {
				return fmt.Errorf("process: %s not ready after %s: %w", s.cfg.label(), timeout, lastErr)
			}
			return fmt.Errorf("process: %s not ready after %s: %w", s.cfg.label(), timeout, readyCtx.Err())
		case <-s.done:
			return fmt.Errorf("process: %s exited before ready: %w", s.cfg.label(), s.waitError())
		case <-time.After(interval):
		}
	}
}

// Stop interrupts the process and falls back to a kill after StopTimeout.
// An exit caused by the shutdown signal is not reported as an error.
func (s *ManagedService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.cfg.logger()
	logger.Info("process: stopping", "service", s.cfg.label())
	if s.cmd.Process != nil {
		if err := s.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logger.Warn("process: interrupt failed", "service", s.cfg.label(), "error", err)
		}
	}
	timeout := s.cfg.StopTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	select {
	case <-s.done:
		return s.shutdownError()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
	}

	logger.Warn("process: forcing kill", "service", s.cfg.label())
	if s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logger.Error("process: kill failed", "service", s.cfg.label(), "error", err)
			return err
		}
	}
	<-s.done
	return s.shutdownError()
}

func (s *ManagedService) waitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitErr
}

// shutdownError filters out signal-driven exits observed during Stop.
func (s *ManagedService) shutdownError() error {
	err := s.waitError()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// BinaryPath resolves an executable on PATH, erroring on blank names so
// misconfigured env overrides fail loudly.
func BinaryPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("process: binary name required")
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("process: locate %s: %w", name, err)
	}
	return filepath.Clean(path), nil
}
