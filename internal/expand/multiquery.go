package expand

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/prompt"
)

// DefaultMaxParaphrases bounds how many paraphrases are kept per query.
const DefaultMaxParaphrases = 3

// MultiQuery generates paraphrases spanning different semantic angles of
// the question. The literal query is always kept as the first retrieval
// query; paraphrases are retrieved independently and merged downstream.
type MultiQuery struct {
	client llm.Client
	max    int
}

// NewMultiQuery creates a multi-query expander keeping up to max paraphrases.
func NewMultiQuery(client llm.Client, max int) *MultiQuery {
	if max <= 0 {
		max = DefaultMaxParaphrases
	}
	return &MultiQuery{client: client, max: max}
}

// Expand returns the literal query followed by up to max paraphrases.
func (e *MultiQuery) Expand(ctx context.Context, query string) ([]string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.MultiQuerySystem},
		{Role: llm.RoleUser, Content: query},
	}

	response, err := e.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating paraphrases: %w", err)
	}

	queries := []string{query}
	for _, line := range strings.Split(response, "\n") {
		paraphrase := cleanParaphrase(line)
		if paraphrase == "" || paraphrase == query {
			continue
		}
		queries = append(queries, paraphrase)
		if len(queries) > e.max {
			break
		}
	}

	return queries, nil
}

// cleanParaphrase strips list markers the model sometimes adds despite the
// prompt asking for bare lines.
func cleanParaphrase(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "-*•")
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if i+1 < len(s) && (s[i+1] == '.' || s[i+1] == ')') {
			s = s[i+2:]
			break
		}
	}
	return strings.TrimSpace(s)
}

// Ensure MultiQuery implements Expander.
var _ Expander = (*MultiQuery)(nil)
