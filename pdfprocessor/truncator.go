// Package pdfprocessor provides PDF text extraction and corpus truncation for
// the foresight pipeline.
//
// truncator.go implements the corpus truncation policy. Long books exceed the
// AI provider's context ceiling, so the policy keeps a head fraction and a
// tail fraction of the text with an explicit omission marker between them.
// The head carries the table of contents and framing chapters, the tail the
// conclusions; both hold more of a book's thematic signal than arbitrary
// middle chapters.
package pdfprocessor

import (
	"strings"
)

// OmissionMarker is inserted where middle content was dropped. The analysis
// prompt documents this marker so the model knows content is missing.
const OmissionMarker = "\n\n[... CONTENT TRUNCATED ...]\n\n"

// TruncatorConfig holds configuration for corpus truncation.
type TruncatorConfig struct {
	// MaxChars is the character budget for the bounded corpus.
	MaxChars int

	// HeadFraction is the share of the budget spent on the start of the book.
	HeadFraction float64

	// TailFraction is the share of the budget spent on the end of the book.
	TailFraction float64
}

// DefaultTruncatorConfig returns the default truncation policy:
// 500k character budget, 40% head, 20% tail.
func DefaultTruncatorConfig() TruncatorConfig {
	return TruncatorConfig{
		MaxChars:     500000,
		HeadFraction: 0.4,
		TailFraction: 0.2,
	}
}

// Truncator applies the truncation policy. It is a pure value; Truncate is
// deterministic and idempotent for identical inputs.
type Truncator struct {
	config TruncatorConfig
}

// NewTruncator creates a Truncator, falling back to defaults for zero or
// impossible configuration values.
func NewTruncator(config TruncatorConfig) *Truncator {
	defaults := DefaultTruncatorConfig()
	if config.MaxChars <= 0 {
		config.MaxChars = defaults.MaxChars
	}
	if config.HeadFraction <= 0 || config.TailFraction < 0 ||
		config.HeadFraction+config.TailFraction > 1.0 {
		config.HeadFraction = defaults.HeadFraction
		config.TailFraction = defaults.TailFraction
	}
	return &Truncator{config: config}
}

// Truncate returns a bounded corpus for the given pages. If the full
// concatenation fits within MaxChars it is returned unchanged; otherwise the
// result is head + OmissionMarker + tail, guaranteed not to exceed MaxChars.
func (t *Truncator) Truncate(pages []PageResult) string {
	return t.TruncateText(JoinPages(pages))
}

// TruncateText is the text-level truncation primitive behind Truncate.
func (t *Truncator) TruncateText(text string) string {
	if len(text) <= t.config.MaxChars {
		return text
	}

	headBudget := int(float64(t.config.MaxChars) * t.config.HeadFraction)
	tailBudget := int(float64(t.config.MaxChars) * t.config.TailFraction)

	// Leave room for the marker within the budget, giving up head before
	// tail so the conclusions survive tight budgets.
	if overrun := headBudget + tailBudget + len(OmissionMarker) - t.config.MaxChars; overrun > 0 {
		if headBudget >= overrun {
			headBudget -= overrun
		} else {
			overrun -= headBudget
			headBudget = 0
			if tailBudget >= overrun {
				tailBudget -= overrun
			} else {
				tailBudget = 0
			}
		}
	}

	head := text[:headBudget]
	// Prefer ending the head at a paragraph break when one is reasonably
	// close, so the model does not see a mid-sentence cut.
	if lastBreak := strings.LastIndex(head, "\n\n"); lastBreak > headBudget*8/10 {
		head = head[:lastBreak]
	}

	tail := text[len(text)-tailBudget:]
	// Symmetrically, prefer starting the tail at a paragraph break.
	if firstBreak := strings.Index(tail, "\n\n"); firstBreak >= 0 && firstBreak < tailBudget*2/10 {
		tail = tail[firstBreak+2:]
	}

	result := head + OmissionMarker + tail
	// Budgets below the marker length cannot fit even the marker whole.
	if len(result) > t.config.MaxChars {
		result = result[:t.config.MaxChars]
	}
	return result
}

// Budget returns the configured character budget.
func (t *Truncator) Budget() int {
	return t.config.MaxChars
}
