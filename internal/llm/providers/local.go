// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// LocalProvider is a deterministic offline fallback used when no API key is
// configured. Chat echoes the tail of the prompt; Embed hashes tokens into a
// small fixed-dimension vector so retrieval remains exercisable in tests.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	tail := strings.TrimSpace(messages[len(messages)-1].Content)
	return "[local-stub] " + tail, nil
}

const localEmbedDim = 16

// Embed buckets lowercased whitespace tokens by FNV-1a hash. Identical text
// always produces identical vectors, which keeps cosine ordering stable.
func (l *LocalProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, len(input))
	for i, text := range input {
		vec := make([]float32, localEmbedDim)
		for _, token := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			vec[h.Sum32()%localEmbedDim]++
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
