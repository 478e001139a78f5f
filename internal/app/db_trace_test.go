package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace",
			in:   " SELECT   points\nFROM points \t WHERE league_id = $1 ",
			want: "SELECT points FROM points WHERE league_id = $1",
		},
		{
			name: "masks literals",
			in:   "INSERT INTO kv_state (key, value) VALUES ('locked:Bundesliga', '1760000000')",
			want: "INSERT INTO kv_state (key, value) VALUES ('?', '?')",
		},
		{
			name: "masks escaped quotes",
			in:   "SELECT 1 WHERE club = 'O''Higgins'",
			want: "SELECT 1 WHERE club = '?'",
		},
		{name: "empty", in: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatDBQueryForTrace(tt.in); got != tt.want {
				t.Fatalf("unexpected formatted query: got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestFormatDBQueryForTrace_Truncates(t *testing.T) {
	t.Parallel()

	got := formatDBQueryForTrace("SELECT " + strings.Repeat("a, ", 400) + "b FROM players")
	if len(got) != maxTracedQueryLength+len("...") || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncated length: %d", len(got))
	}
}
