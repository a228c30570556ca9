package pipeline

import "testing"

func TestClean_CollapsesAdjacentDuplicates(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "spaced duplicates",
			in:   "Regla A [Reg-4] [Reg-4] Regla B [Reg-5]",
			want: "Regla A [Reg-4] Regla B [Reg-5]",
		},
		{
			name: "glued duplicates",
			in:   "texto [A-1][A-1] final",
			want: "texto [A-1] final",
		},
		{
			name: "triple run",
			in:   "[A-1] [A-1][A-1]",
			want: "[A-1]",
		},
		{
			name: "different tokens untouched",
			in:   "[A-1][B-1]",
			want: "[A-1][B-1]",
		},
		{
			name: "non-adjacent duplicates untouched",
			in:   "[A-1] texto [A-1]",
			want: "[A-1] texto [A-1]",
		},
		{
			name: "no citations",
			in:   "  sin citas  ",
			want: "sin citas",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Clean(tc.in)
			if got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Regla A [Reg-4] [Reg-4] Regla B [Reg-5]",
		"[A-1][A-1] [A-1] y [B-2][B-2]",
		"[A-1][B-1]",
		"sin citas",
		"",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
