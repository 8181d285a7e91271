// Package pdfprocessor provides PDF text extraction and corpus truncation for
// the foresight pipeline. This file holds the pure helper atoms.
package pdfprocessor

import (
	"strings"
	"unicode"
)

// EstimateTokenCount provides a rough estimate of tokens in a text.
// It uses an average of 4 characters per token, a reasonable heuristic for
// English text with GPT-style tokenizers.
func EstimateTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(text) / 4
}

// CountWords counts whitespace-separated words in a text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountNonWhitespace counts the non-whitespace runes in a text. Used to
// decide whether a PDF has a usable text layer at all.
func CountNonWhitespace(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// TruncateTextWithEllipsis truncates text to maxLen and appends "..." if
// truncated. The total length including ellipsis will not exceed maxLen.
func TruncateTextWithEllipsis(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(text) <= maxLen {
		return text
	}
	if maxLen < 4 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}
