package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "Referral request for Google",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "alumni",
			limit:  10,
			expect: "alumni",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "software engineer",
			limit:  8,
			expect: "software...",
		},
		{
			name:   "counts runes not bytes",
			input:  "Müller GmbH",
			limit:  6,
			expect: "Müller...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	t.Parallel()

	got := OneLine("Hi Priya,\n\n  I hope\tthis finds you well.\r\n")
	if got != "Hi Priya, I hope this finds you well." {
		t.Fatalf("unexpected collapsed text: %q", got)
	}
}
