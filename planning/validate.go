package planning

import (
	"fmt"
	"sort"
)

// Validate checks the coverage invariant: chapter references across groups
// must be non-overlapping and, in aggregate, cover all detected chapters.
// Violations are returned as warnings, not errors; a table with gaps is
// still usable for generation, the user just needs to see what was dropped
// or doubled.
func Validate(table *Table) []string {
	var warnings []string

	if len(table.Groups) == 0 {
		return []string{"planning table contains no chapter groups"}
	}

	seen := make(map[int][]string)
	for _, group := range table.Groups {
		if group.GroupID == "" {
			warnings = append(warnings, "a chapter group is missing its group_id")
		}
		if len(group.ChapterNumbers) == 0 {
			warnings = append(warnings, fmt.Sprintf("group %s references no chapters", group.GroupID))
		}
		for _, num := range group.ChapterNumbers {
			seen[num] = append(seen[num], group.GroupID)
		}
	}

	// Duplicates: the same chapter claimed by more than one group.
	var duplicated []int
	for num, groups := range seen {
		if len(groups) > 1 {
			duplicated = append(duplicated, num)
		}
	}
	sort.Ints(duplicated)
	for _, num := range duplicated {
		warnings = append(warnings, fmt.Sprintf("chapter %d appears in multiple groups: %v", num, seen[num]))
	}

	// Gaps: detected chapters no group covers.
	total := table.Overview.TotalChapters
	if total > 0 {
		var missing []int
		for num := 1; num <= total; num++ {
			if _, ok := seen[num]; !ok {
				missing = append(missing, num)
			}
		}
		if len(missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("chapters not covered by any group: %v", missing))
		}

		var outOfRange []int
		for num := range seen {
			if num < 1 || num > total {
				outOfRange = append(outOfRange, num)
			}
		}
		sort.Ints(outOfRange)
		for _, num := range outOfRange {
			warnings = append(warnings, fmt.Sprintf("chapter %d is outside the detected range 1-%d", num, total))
		}
	}

	return warnings
}
