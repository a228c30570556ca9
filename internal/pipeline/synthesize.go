package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/passage"
	"github.com/jmorales/normabot/internal/prompt"
)

// BuildContext concatenates passages, in order, as "[{doc_id}-{page}] {text}"
// blocks separated by a blank line. The citation key opening each block is
// exactly what the model is instructed to cite, so the format is load-bearing.
func BuildContext(passages []passage.Passage) string {
	blocks := make([]string, len(passages))
	for i, p := range passages {
		blocks[i] = fmt.Sprintf("[%s] %s", p.CitationKey(), p.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// synthesize builds the citation-annotated context and asks the generation
// provider for a grounded answer. The context string is handed over
// unmodified; citation presence is a downstream-checkable property, not
// enforced here.
func (p *Pipeline) synthesize(ctx context.Context, query string, passages []passage.Passage) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.SynthesizeSystem},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Pregunta: %s\n\nContexto:\n%s", query, BuildContext(passages))},
	}
	return p.client.Chat(ctx, messages)
}
