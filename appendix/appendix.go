// Package appendix generates the long-form foresight appendix documents, one
// per planning-table chapter group.
package appendix

import (
	"fmt"
	"strings"
	"time"
)

// Defaults for generation parameters, matching the tool's standard settings.
const (
	DefaultTimeHorizon = "2040-2050"
	DefaultWordCount   = "2500-3500"
)

// Request describes one appendix generation pass. Requests are ephemeral;
// they are not retained beyond the pipeline run.
type Request struct {
	// GroupID is the target planning-table chapter group.
	GroupID string

	// TimeHorizon is the forecast window, e.g. "2040-2050".
	TimeHorizon string

	// WordCount is the target length range, e.g. "2500-3500".
	WordCount string

	// FocusOverride optionally narrows the thematic focus for this pass.
	FocusOverride string
}

// withDefaults fills empty parameters with the standard settings.
func (r Request) withDefaults() Request {
	if strings.TrimSpace(r.TimeHorizon) == "" {
		r.TimeHorizon = DefaultTimeHorizon
	}
	if strings.TrimSpace(r.WordCount) == "" {
		r.WordCount = DefaultWordCount
	}
	return r
}

// Appendix is one generated foresight appendix. Regenerating a group
// replaces its appendix; only the regeneration count survives, not prior
// content.
type Appendix struct {
	// GroupID is the source chapter group.
	GroupID string `json:"group_id"`

	// Content is the generated Markdown text.
	Content string `json:"content"`

	// GeneratedAt is when this version was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// WordCount is the word count of Content.
	WordCount int `json:"word_count"`

	// Regenerations counts how many times this group's appendix has been
	// replaced. Zero means first draft.
	Regenerations int `json:"regenerations"`
}

// Status renders the draft status for progress displays: "Draft" for a
// first generation, "Regenerated{n}" after n replacements.
func (a *Appendix) Status() string {
	if a.Regenerations == 0 {
		return "Draft"
	}
	return fmt.Sprintf("Regenerated{%d}", a.Regenerations)
}
