package planning

import (
	"fmt"
	"strings"
)

// ToMarkdown renders the planning table as a downloadable Markdown document.
func ToMarkdown(table *Table) []byte {
	var b strings.Builder

	b.WriteString("# Foresight Planning Table\n")
	b.WriteString("\n## Book Overview\n\n")
	fmt.Fprintf(&b, "**Title:** %s\n", orNA(table.Overview.Title))
	fmt.Fprintf(&b, "**Scope:** %s\n", orNA(table.Overview.Scope))
	fmt.Fprintf(&b, "**Total Chapters:** %d\n", table.Overview.TotalChapters)
	fmt.Fprintf(&b, "**Disciplines:** %s\n", strings.Join(table.Overview.Disciplines, ", "))

	b.WriteString("\n## Planning Table\n\n")
	for _, group := range table.Groups {
		fmt.Fprintf(&b, "### %s\n", orNA(group.GroupID))
		fmt.Fprintf(&b, "**Chapters:** %s\n", joinInts(group.ChapterNumbers))
		fmt.Fprintf(&b, "**Titles:** %s\n", strings.Join(group.ChapterTitles, ", "))
		fmt.Fprintf(&b, "\n**Summary:** %s\n", group.ContentSummary)
		fmt.Fprintf(&b, "\n**Thematic Quadrants:** %s\n", strings.Join(group.ThematicQuadrants, ", "))
		fmt.Fprintf(&b, "\n**Foresight Task:**\n%s\n", group.ForesightTask)
		b.WriteString("\n---\n\n")
	}

	if table.ImplementationNotes != "" {
		b.WriteString("## Implementation Notes\n\n")
		b.WriteString(table.ImplementationNotes)
		b.WriteString("\n")
	}

	if len(table.Warnings) > 0 {
		b.WriteString("\n## Coverage Warnings\n\n")
		for _, warning := range table.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	return []byte(b.String())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
