// File path: internal/llm/llm_test.go
package llm

import "testing"

func TestNormalizeMessagesLowersRoles(t *testing.T) {
	msgs, err := NormalizeMessages([]Message{
		{Role: "USER", Content: "hello"},
		{Role: "System", Content: "context"},
	})
	if err != nil {
		t.Fatalf("NormalizeMessages returned error: %v", err)
	}
	if msgs[0].Role != "user" || msgs[1].Role != "system" {
		t.Fatalf("roles not normalised: %+v", msgs)
	}
}

func TestNormalizeMessagesEmpty(t *testing.T) {
	if _, err := NormalizeMessages(nil); err == nil {
		t.Fatal("expected error for empty message list")
	}
}

func TestNewProviderFallsBackToLocal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	p := NewProvider()
	if p.Name() != "local" {
		t.Fatalf("expected local fallback, got %q", p.Name())
	}
}

func TestNewProviderSelectsOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_ENDPOINT", "http://127.0.0.1:1")
	p := NewProvider()
	if p.Name() != "openai" {
		t.Fatalf("expected openai provider, got %q", p.Name())
	}
}
