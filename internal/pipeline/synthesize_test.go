package pipeline

import (
	"testing"

	"github.com/jmorales/normabot/internal/passage"
)

func TestBuildContext_FormatAndOrder(t *testing.T) {
	p1 := passage.Passage{DocID: "A", Page: 1, Text: "primer pasaje"}
	p2 := passage.Passage{DocID: "B", Page: 2, Text: "segundo pasaje"}

	got := BuildContext([]passage.Passage{p1, p2})
	want := "[A-1] primer pasaje\n\n[B-2] segundo pasaje"
	if got != want {
		t.Errorf("BuildContext = %q, want %q", got, want)
	}
}

func TestBuildContext_UnknownPage(t *testing.T) {
	p := passage.Passage{DocID: "Reg", Page: passage.PageUnknown, Text: "texto"}

	got := BuildContext([]passage.Passage{p})
	want := "[Reg-unknown] texto"
	if got != want {
		t.Errorf("BuildContext = %q, want %q", got, want)
	}
}

func TestBuildContext_Empty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("BuildContext(nil) = %q, want empty", got)
	}
}
