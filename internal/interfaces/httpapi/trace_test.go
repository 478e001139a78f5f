package httpapi

import "testing"

func TestAPISpans_HandlerOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "httpapi.Handler.GetTransferState", want: true},
		{in: "httpapi.Handler.RunScoringPass", want: true},
		{in: "httpapi.writeJSON", want: false},
		{in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		if got := apiSpans.Allows(tt.in); got != tt.want {
			t.Fatalf("apiSpans.Allows(%q)=%v want=%v", tt.in, got, tt.want)
		}
	}
}
