package planning

import (
	"strings"
	"testing"
)

func validTable() *Table {
	return &Table{
		Overview: Overview{
			Title:         "Futures of Governance",
			TotalChapters: 4,
		},
		Groups: []ChapterGroup{
			{GroupID: "GROUP_A", GroupType: GroupTypeGroup, ChapterNumbers: []int{1, 2}},
			{GroupID: "STANDALONE_1", GroupType: GroupTypeStandalone, ChapterNumbers: []int{3}},
			{GroupID: "STANDALONE_2", GroupType: GroupTypeStandalone, ChapterNumbers: []int{4}},
		},
	}
}

func TestValidateCleanTable(t *testing.T) {
	if warnings := Validate(validTable()); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestValidateEmptyTable(t *testing.T) {
	warnings := Validate(&Table{})
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "no chapter groups") {
		t.Errorf("unexpected warning: %s", warnings[0])
	}
}

func TestValidateDuplicateChapter(t *testing.T) {
	table := validTable()
	table.Groups[1].ChapterNumbers = []int{2, 3}

	warnings := Validate(table)
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "chapter 2 appears in multiple groups") {
		t.Errorf("unexpected warning: %s", warnings[0])
	}
}

func TestValidateMissingChapter(t *testing.T) {
	table := validTable()
	table.Groups = table.Groups[:2] // drops chapter 4

	warnings := Validate(table)
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "not covered by any group: [4]") {
		t.Errorf("unexpected warning: %s", warnings[0])
	}
}

func TestValidateOutOfRangeChapter(t *testing.T) {
	table := validTable()
	table.Groups[2].ChapterNumbers = []int{4, 9}

	warnings := Validate(table)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "chapter 9 is outside the detected range 1-4") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an out-of-range warning, got %v", warnings)
	}
}

func TestValidateMissingGroupID(t *testing.T) {
	table := validTable()
	table.Groups[0].GroupID = ""

	warnings := Validate(table)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "missing its group_id") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing group_id warning, got %v", warnings)
	}
}

func TestValidateEmptyChapterList(t *testing.T) {
	table := validTable()
	table.Groups[0].ChapterNumbers = nil

	warnings := Validate(table)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "GROUP_A references no chapters") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a no-chapters warning, got %v", warnings)
	}
}

func TestValidateDeterministicOrder(t *testing.T) {
	table := validTable()
	table.Groups[0].ChapterNumbers = []int{1, 2, 3, 4}
	table.Groups[1].ChapterNumbers = []int{3}
	table.Groups[2].ChapterNumbers = []int{4}

	first := Validate(table)
	for i := 0; i < 10; i++ {
		if got := Validate(table); len(got) != len(first) {
			t.Fatalf("warning count changed between runs: %v vs %v", first, got)
		} else {
			for j := range got {
				if got[j] != first[j] {
					t.Fatalf("warning order changed between runs: %v vs %v", first, got)
				}
			}
		}
	}
}
