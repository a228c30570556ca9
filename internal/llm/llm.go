// Package llm provides provider-polymorphic chat clients for text generation.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role/content pair in a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for chat-based generation providers.
type Client interface {
	// Chat sends the full message sequence to the provider and returns the
	// generated text. No partial output is returned on error.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Name returns the provider name (e.g. "deepseek", "ollama").
	Name() string
}

// Sentinel errors classifying generation failures. Callers may treat all
// three as retryable at their own discretion.
var (
	// ErrTimeout indicates the provider did not answer within its deadline.
	ErrTimeout = errors.New("llm: request timed out")

	// ErrConnection indicates the provider could not be reached.
	ErrConnection = errors.New("llm: connection failed")

	// ErrProvider indicates an unexpected provider-side failure.
	ErrProvider = errors.New("llm: unexpected provider error")
)

// ProviderError wraps a classified generation failure with the provider name.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Registry maps provider names to clients. Selection by name keeps the
// pipeline independent of concrete backend types.
type Registry struct {
	clients map[string]Client
}

// NewRegistry creates a registry from the given clients, keyed by Name().
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Name()] = c
	}
	return r
}

// Get returns the client registered under name.
func (r *Registry) Get(name string) (Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return c, nil
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}
