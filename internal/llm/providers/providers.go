// File path: internal/llm/providers/providers.go
package providers

import "context"

// Message is a single chat turn. Role is expected to be lowercase
// ("system", "user", "assistant") by the time it reaches a provider.
type Message struct {
	Role    string
	Content string
}

// Provider abstracts the model backend used for narrative generation and
// embeddings. Implementations must be safe for concurrent use.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
}
