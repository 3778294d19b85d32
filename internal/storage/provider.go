// File path: internal/storage/provider.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a stored artifact does not exist.
var ErrNotFound = errors.New("object not found")

// Provider is the artifact store holding uploaded PDFs and their extraction
// artifacts. Keys are relative, slash-separated paths.
type Provider interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// FSProvider stores artifacts under a root directory on local disk.
type FSProvider struct {
	root string
}

func NewFSProvider(root string) (*FSProvider, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("storage root required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FSProvider{root: trimmed}, nil
}

func (p *FSProvider) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := p.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

func (p *FSProvider) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object %s: %w", key, err)
	}
	return nil
}

func (p *FSProvider) resolve(key string) (string, error) {
	cleaned := filepath.Clean(strings.TrimLeft(strings.TrimSpace(key), "/"))
	if cleaned == "." || cleaned == "" || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(p.root, filepath.FromSlash(cleaned)), nil
}

var _ Provider = (*FSProvider)(nil)
