package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"score":7}`,
			want:  `{"score":7}`,
			ok:    true,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"score\":7}\n```",
			want:  `{"score":7}`,
			ok:    true,
		},
		{
			name:  "strips plain fenced block",
			input: "```\n{\"score\":7}\n```",
			want:  `{"score":7}`,
			ok:    true,
		},
		{
			name:  "ignores surrounding prose",
			input: "Sure, here is the analysis:\n{\"score\":7}\nLet me know if you need more.",
			want:  `{"score":7}`,
			ok:    true,
		},
		{
			name:  "balanced scan skips nested braces correctly",
			input: `noise {"outer":{"inner":1},"score":7} trailing`,
			want:  `{"outer":{"inner":1},"score":7}`,
			ok:    true,
		},
		{
			name:  "braces inside string literals do not confuse the scanner",
			input: `{"note":"use { and } carefully","score":7}`,
			want:  `{"note":"use { and } carefully","score":7}`,
			ok:    true,
		},
		{
			name:  "no object present",
			input: "I could not analyze this.",
			want:  "",
			ok:    false,
		},
		{
			name:  "unbalanced braces",
			input: `{"score":7`,
			want:  "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
