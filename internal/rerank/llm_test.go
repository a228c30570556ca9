package rerank

import (
	"context"
	"testing"

	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/passage"
	"github.com/jmorales/normabot/internal/retriever"
)

type scriptedClient struct {
	response string
	prompt   string
}

func (c *scriptedClient) Chat(_ context.Context, messages []llm.Message) (string, error) {
	c.prompt = messages[len(messages)-1].Content
	return c.response, nil
}

func (c *scriptedClient) Name() string { return "scripted" }

func candidates(n int) []retriever.Candidate {
	cands := make([]retriever.Candidate, n)
	for i := range cands {
		cands[i] = retriever.Candidate{Passage: passage.Passage{
			DocID: "D", Page: i + 1, Text: "pasaje", ChunkID: string(rune('a' + i)),
		}}
	}
	return cands
}

func TestRerank_SortsByScoreDescending(t *testing.T) {
	client := &scriptedClient{response: `{"scores": [{"doc_index": 0, "score": 0.2}, {"doc_index": 1, "score": 0.9}, {"doc_index": 2, "score": 0.5}]}`}
	r := NewLLMReranker(client)

	got, err := r.Rerank(context.Background(), "pregunta", candidates(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	wantPages := []int{2, 3, 1}
	for i, want := range wantPages {
		if got[i].Page != want {
			t.Errorf("position %d: page %d, want %d", i, got[i].Page, want)
		}
	}
}

func TestRerank_StableTiesKeepRetrievalOrder(t *testing.T) {
	client := &scriptedClient{response: `{"scores": [{"doc_index": 0, "score": 0.5}, {"doc_index": 1, "score": 0.5}, {"doc_index": 2, "score": 0.5}]}`}
	r := NewLLMReranker(client)

	got, err := r.Rerank(context.Background(), "pregunta", candidates(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range got {
		if c.Page != i+1 {
			t.Errorf("position %d: page %d, ties must keep input order", i, c.Page)
		}
	}
}

func TestRerank_ToleratesCodeFences(t *testing.T) {
	client := &scriptedClient{response: "Here are the scores:\n```json\n{\"scores\": [{\"doc_index\": 0, \"score\": 0.1}, {\"doc_index\": 1, \"score\": 0.8}]}\n```"}
	r := NewLLMReranker(client)

	got, err := r.Rerank(context.Background(), "pregunta", candidates(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Page != 2 {
		t.Errorf("fenced JSON not parsed: got %+v first", got[0])
	}
}

func TestRerank_InvalidJSONIsAnError(t *testing.T) {
	client := &scriptedClient{response: "I cannot score these documents."}
	r := NewLLMReranker(client)

	if _, err := r.Rerank(context.Background(), "pregunta", candidates(2)); err == nil {
		t.Fatal("expected an error for unparseable model output")
	}
}

func TestRerank_EmptyInput(t *testing.T) {
	r := NewLLMReranker(&scriptedClient{})
	got, err := r.Rerank(context.Background(), "pregunta", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no candidates", got)
	}
}

func TestParseScores_ClampsAndDefaults(t *testing.T) {
	// Index 0 is out of range above 1, index 1 negative, index 2 missing,
	// index 9 out of bounds.
	response := `{"scores": [{"doc_index": 0, "score": 1.7}, {"doc_index": 1, "score": -0.3}, {"doc_index": 9, "score": 0.4}]}`

	scores, err := parseScores(response, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 1 {
		t.Errorf("scores[0] = %v, want clamped to 1", scores[0])
	}
	if scores[1] != 0 {
		t.Errorf("scores[1] = %v, want clamped to 0", scores[1])
	}
	if scores[2] != defaultScore {
		t.Errorf("scores[2] = %v, want default %v", scores[2], defaultScore)
	}
}

func TestBuildScoringPrompt_TruncatesLongPassages(t *testing.T) {
	long := make([]byte, maxPassageChars*2)
	for i := range long {
		long[i] = 'x'
	}
	cands := []retriever.Candidate{{Passage: passage.Passage{DocID: "D", Page: 1, Text: string(long)}}}

	prompt := buildScoringPrompt("q", cands)
	if len(prompt) > maxPassageChars+1000 {
		t.Errorf("prompt length %d, passage text not truncated", len(prompt))
	}
}
