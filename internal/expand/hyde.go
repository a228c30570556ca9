package expand

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/prompt"
)

// HyDE generates a hypothetical answer paragraph and retrieves with it
// instead of the literal query.
type HyDE struct {
	client llm.Client
}

// NewHyDE creates a hypothetical-answer expander.
func NewHyDE(client llm.Client) *HyDE {
	return &HyDE{client: client}
}

// Expand returns a single hypothetical-answer paragraph for the query.
func (e *HyDE) Expand(ctx context.Context, query string) ([]string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.HyDESystem},
		{Role: llm.RoleUser, Content: query},
	}

	response, err := e.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating hypothetical answer: %w", err)
	}

	hypothetical := strings.TrimSpace(response)
	if hypothetical == "" {
		return nil, fmt.Errorf("provider returned an empty hypothetical answer")
	}

	return []string{hypothetical}, nil
}

// Ensure HyDE implements Expander.
var _ Expander = (*HyDE)(nil)
