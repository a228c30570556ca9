package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/retriever"
)

const (
	// maxPassageChars truncates passage text in the scoring prompt to
	// bound token usage.
	maxPassageChars = 500

	// defaultScore is assigned to passages the model forgot to score.
	defaultScore = 0.5
)

// LLMReranker scores every (query, passage) pair with a single structured
// LLM call, cross-encoder style: the model sees query and passage together.
type LLMReranker struct {
	client llm.Client
}

// NewLLMReranker creates an LLM-based reranker.
func NewLLMReranker(client llm.Client) *LLMReranker {
	return &LLMReranker{client: client}
}

// relevanceScore represents one entry of the structured model output.
type relevanceScore struct {
	DocIndex int     `json:"doc_index"`
	Score    float32 `json:"score"`
}

type rerankResponse struct {
	Scores []relevanceScore `json:"scores"`
}

// Rerank scores all candidates and returns them sorted by RerankScore
// descending, ties keeping retrieval order.
func (r *LLMReranker) Rerank(ctx context.Context, query string, cands []retriever.Candidate) ([]retriever.Candidate, error) {
	if len(cands) == 0 {
		return nil, nil
	}

	response, err := r.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a relevance scoring system. Score each document's relevance to the query. Output only JSON."},
		{Role: llm.RoleUser, Content: buildScoringPrompt(query, cands)},
	})
	if err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	scores, err := parseScores(response, len(cands))
	if err != nil {
		return nil, fmt.Errorf("parsing rerank scores: %w", err)
	}

	reranked := make([]retriever.Candidate, len(cands))
	copy(reranked, cands)
	for i := range reranked {
		reranked[i].RerankScore = scores[i]
	}

	// Stable sort keeps retrieval order for equal scores.
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankScore > reranked[j].RerankScore
	})

	return reranked, nil
}

// buildScoringPrompt lists the query and numbered passages with the exact
// output format the parser expects.
func buildScoringPrompt(query string, cands []retriever.Candidate) string {
	var sb strings.Builder

	sb.WriteString("Query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nDocuments to score:\n")

	for i, cand := range cands {
		text := cand.Text
		if len(text) > maxPassageChars {
			text = text[:maxPassageChars] + "..."
		}
		sb.WriteString(fmt.Sprintf("[Doc %d]: %s\n\n", i, text))
	}

	sb.WriteString(`Score each document from 0.0 to 1.0 based on relevance to the query.
Output ONLY valid JSON in this exact format:
{"scores": [{"doc_index": 0, "score": 0.9}, {"doc_index": 1, "score": 0.3}, ...]}

Be strict: irrelevant documents should score below 0.3, somewhat relevant 0.3-0.7, highly relevant above 0.7.
Output only JSON, no explanation:`)

	return sb.String()
}

// parseScores extracts per-candidate scores from the model response,
// tolerating markdown code fences around the JSON.
func parseScores(response string, numCands int) ([]float32, error) {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		start := idx + 7
		if end := strings.Index(response[start:], "```"); end != -1 {
			response = response[start : start+end]
		}
	} else if idx := strings.Index(response, "```"); idx != -1 {
		start := idx + 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			response = response[start : start+end]
		}
	}

	var parsed rerankResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	scores := make([]float32, numCands)
	for i := range scores {
		scores[i] = defaultScore
	}

	for _, s := range parsed.Scores {
		if s.DocIndex < 0 || s.DocIndex >= numCands {
			continue
		}
		score := s.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		scores[s.DocIndex] = score
	}

	return scores, nil
}

// Ensure LLMReranker implements Reranker interface.
var _ Reranker = (*LLMReranker)(nil)
