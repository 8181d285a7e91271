package planning

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGroupLookup(t *testing.T) {
	table := validTable()

	group, ok := table.Group("STANDALONE_1")
	if !ok {
		t.Fatal("expected STANDALONE_1 to exist")
	}
	if group.GroupType != GroupTypeStandalone {
		t.Errorf("unexpected group type %q", group.GroupType)
	}

	if _, ok := table.Group("GROUP_Z"); ok {
		t.Error("unknown group must not be found")
	}
}

func TestGroupIDs(t *testing.T) {
	table := validTable()

	ids := table.GroupIDs()
	want := []string{"GROUP_A", "STANDALONE_1", "STANDALONE_2"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestTableJSONRoundTrip(t *testing.T) {
	table := validTable()
	table.Warnings = []string{"a warning"}

	out, err := table.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"book_overview"`) {
		t.Error("serialized table must use the book_overview key")
	}
	if strings.Contains(out, "a warning") {
		t.Error("warnings must not be serialized into prompts")
	}

	var decoded Table
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("serialized table must decode: %v", err)
	}
	if decoded.Overview.Title != table.Overview.Title {
		t.Errorf("title lost in round trip: %q", decoded.Overview.Title)
	}
	if len(decoded.Groups) != len(table.Groups) {
		t.Errorf("groups lost in round trip: %d", len(decoded.Groups))
	}
}
