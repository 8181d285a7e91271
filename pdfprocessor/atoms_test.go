package pdfprocessor

import "testing"

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short", "abcd", 1},
		{"longer", "abcdefghijklmnop", 4},
		{"below one token", "ab", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokenCount(tt.text); got != tt.want {
				t.Errorf("EstimateTokenCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single word", "hello", 1},
		{"multiple words", "the quick brown fox", 4},
		{"extra whitespace", "  a \t b\n c  ", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountNonWhitespace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"only whitespace", " \t\n ", 0},
		{"mixed", "a b c", 3},
		{"unicode", "héllo wörld", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountNonWhitespace(tt.text); got != tt.want {
				t.Errorf("CountNonWhitespace(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestTruncateTextWithEllipsis(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"fits", "short", 10, "short"},
		{"truncated", "a very long sentence", 10, "a very ..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateTextWithEllipsis(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
