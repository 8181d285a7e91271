// Package planning holds the planning table model: the structured analysis
// artifact that guides which foresight appendices get generated and what
// each one covers. The table is produced by the analysis stage, reviewed by
// the user, and optionally revised through AI-assisted edit requests.
package planning

import (
	"encoding/json"
	"fmt"
)

// GroupType values used in the planning table.
const (
	GroupTypeGroup      = "GROUP"
	GroupTypeStandalone = "STANDALONE"
)

// Overview summarizes the analyzed book.
type Overview struct {
	Title         string   `json:"title"`
	Scope         string   `json:"scope"`
	TotalChapters int      `json:"total_chapters"`
	Disciplines   []string `json:"disciplines"`
	Languages     []string `json:"languages"`
}

// ChapterGroup is one row of the planning table: a standalone chapter or a
// bundle of related chapters that will receive a single appendix.
type ChapterGroup struct {
	// GroupID identifies the group, e.g. "GROUP_A" or "STANDALONE_1".
	GroupID string `json:"group_id"`

	// GroupType is GROUP or STANDALONE.
	GroupType string `json:"group_type"`

	// ChapterNumbers are the source chapter references covered by this group.
	ChapterNumbers []int `json:"chapter_numbers"`

	// ChapterTitles mirror ChapterNumbers.
	ChapterTitles []string `json:"chapter_titles"`

	// ContentSummary is a short prose summary of the covered content.
	ContentSummary string `json:"content_summary"`

	// ThematicQuadrants organize the futures radar analysis for this group.
	ThematicQuadrants []string `json:"thematic_quadrants"`

	// ForesightTask is the detailed assignment brief for appendix generation.
	ForesightTask string `json:"foresight_task"`
}

// Table is the complete planning table. It is replaced atomically on edit:
// either a whole new table arrives or the prior one is kept unchanged.
type Table struct {
	Overview            Overview       `json:"book_overview"`
	Groups              []ChapterGroup `json:"chapters"`
	ImplementationNotes string         `json:"implementation_notes,omitempty"`

	// Warnings carries coverage-invariant violations detected after
	// analysis. They are data-quality findings, not failures; the table
	// stays usable.
	Warnings []string `json:"-"`
}

// Group returns the chapter group with the given ID.
func (t *Table) Group(groupID string) (*ChapterGroup, bool) {
	for i := range t.Groups {
		if t.Groups[i].GroupID == groupID {
			return &t.Groups[i], true
		}
	}
	return nil, false
}

// GroupIDs returns the group identifiers in table order.
func (t *Table) GroupIDs() []string {
	ids := make([]string, len(t.Groups))
	for i, g := range t.Groups {
		ids[i] = g.GroupID
	}
	return ids
}

// ToJSON serializes the table the way it is embedded in edit and generation
// prompts.
func (t *Table) ToJSON() (string, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize planning table: %w", err)
	}
	return string(data), nil
}
