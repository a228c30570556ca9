package expand

import (
	"context"
	"errors"
	"testing"

	"github.com/jmorales/normabot/internal/llm"
)

type scriptedClient struct {
	response string
	err      error
}

func (c *scriptedClient) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return c.response, c.err
}

func (c *scriptedClient) Name() string { return "scripted" }

func TestHyDE_ReturnsTrimmedHypothetical(t *testing.T) {
	e := NewHyDE(&scriptedClient{response: "  La nota mínima de aprobación es 4,0.\n"})

	got, err := e.Expand(context.Background(), "¿Cuál es la nota mínima?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d queries, want 1", len(got))
	}
	if got[0] != "La nota mínima de aprobación es 4,0." {
		t.Errorf("hypothetical = %q, want trimmed text", got[0])
	}
}

func TestHyDE_EmptyResponseIsAnError(t *testing.T) {
	e := NewHyDE(&scriptedClient{response: "   \n  "})
	if _, err := e.Expand(context.Background(), "pregunta"); err == nil {
		t.Fatal("expected an error for an empty hypothetical answer")
	}
}

func TestHyDE_PropagatesProviderError(t *testing.T) {
	chatErr := errors.New("upstream down")
	e := NewHyDE(&scriptedClient{err: chatErr})
	if _, err := e.Expand(context.Background(), "pregunta"); !errors.Is(err, chatErr) {
		t.Errorf("error = %v, want wrapped %v", err, chatErr)
	}
}

func TestMultiQuery_KeepsLiteralQueryFirst(t *testing.T) {
	e := NewMultiQuery(&scriptedClient{response: "¿Qué calificación se exige?\n¿Cuánto hay que sacar para aprobar?"}, 3)

	got, err := e.Expand(context.Background(), "¿Cuál es la nota mínima?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != "¿Cuál es la nota mínima?" {
		t.Errorf("first query = %q, want the literal question", got[0])
	}
	if len(got) != 3 {
		t.Errorf("got %d queries, want 3", len(got))
	}
}

func TestMultiQuery_StripsListMarkers(t *testing.T) {
	e := NewMultiQuery(&scriptedClient{response: "1. primera variante\n- segunda variante\n2) tercera variante"}, 3)

	got, err := e.Expand(context.Background(), "pregunta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"pregunta", "primera variante", "segunda variante", "tercera variante"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMultiQuery_DropsBlankAndDuplicateLines(t *testing.T) {
	e := NewMultiQuery(&scriptedClient{response: "\n\npregunta\nvariante única\n\n"}, 3)

	got, err := e.Expand(context.Background(), "pregunta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"pregunta", "variante única"}
	if len(got) != len(want) || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMultiQuery_HonorsParaphraseLimit(t *testing.T) {
	e := NewMultiQuery(&scriptedClient{response: "v1\nv2\nv3\nv4\nv5"}, 2)

	got, err := e.Expand(context.Background(), "pregunta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Literal query plus at most two paraphrases.
	if len(got) != 3 {
		t.Errorf("got %d queries (%v), want 3", len(got), got)
	}
}
