package conflict

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/atjproject/lawcat/internal/work"
)

func line(t *testing.T, rec work.Record) string {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func conflicted(t *testing.T, before []work.Record, ours, theirs []work.Record, after []work.Record) string {
	t.Helper()
	var lines []string
	for _, r := range before {
		lines = append(lines, line(t, r))
	}
	lines = append(lines, "<<<<<<< HEAD")
	for _, r := range ours {
		lines = append(lines, line(t, r))
	}
	lines = append(lines, "=======")
	for _, r := range theirs {
		lines = append(lines, line(t, r))
	}
	lines = append(lines, ">>>>>>> feature")
	for _, r := range after {
		lines = append(lines, line(t, r))
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestParse_NoConflicts(t *testing.T) {
	content := line(t, work.Record{ID: "1", Title: "A"}) + "\n" + line(t, work.Record{ID: "2", Title: "B"}) + "\n"
	result, err := ParseString(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got %d", len(result.Conflicts))
	}
	recs, err := result.CleanRecords()
	if err != nil || len(recs) != 2 {
		t.Errorf("CleanRecords() = %d records, %v", len(recs), err)
	}
}

func TestParse_SimpleConflict(t *testing.T) {
	content := conflicted(t,
		[]work.Record{{ID: "1", Title: "Före"}},
		[]work.Record{{ID: "4711", Title: "Obligationsrätt", Year: 1956}},
		[]work.Record{{ID: "4711", Title: "Obligationsrätt"}, {ID: "4712", Title: "Sakrätt"}},
		[]work.Record{{ID: "9", Title: "Efter"}},
	)

	result, err := ParseString(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}

	region := result.Conflicts[0]
	if region.StartLine != 2 || region.EndLine != 7 {
		t.Errorf("region lines = %d..%d, want 2..7", region.StartLine, region.EndLine)
	}
	if len(region.Ours) != 1 || len(region.Theirs) != 2 {
		t.Errorf("ours %d, theirs %d records", len(region.Ours), len(region.Theirs))
	}
	if region.Ours[0].Year != 1956 {
		t.Errorf("ours year = %d", region.Ours[0].Year)
	}
	if len(result.CleanLines) != 2 {
		t.Errorf("expected 2 clean lines, got %d", len(result.CleanLines))
	}
}

func TestParse_Errors(t *testing.T) {
	rec := `{"id":"1","title":"A"}`
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"separator outside", rec + "\n=======\n", 2},
		{"end outside", ">>>>>>> x\n", 1},
		{"nested", "<<<<<<< a\n<<<<<<< b\n", 2},
		{"end before separator", "<<<<<<< a\n" + rec + "\n>>>>>>> b\n", 3},
		{"duplicate separator", "<<<<<<< a\n=======\n=======\n", 3},
		{"unterminated", "<<<<<<< a\n" + rec + "\n=======\n", 3},
		{"invalid json", "<<<<<<< a\n{nope\n=======\n>>>>>>> b\n", 2},
		{"missing id", "<<<<<<< a\n=======\n{\"title\":\"x\"}\n>>>>>>> b\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.content)
			var pe ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("error line = %d, want %d (%v)", pe.Line, tt.wantLine, pe)
			}
		})
	}
}

func TestAssemble_PreservesOrder(t *testing.T) {
	content := conflicted(t,
		[]work.Record{{ID: "a"}},
		[]work.Record{{ID: "x"}},
		[]work.Record{{ID: "y"}},
		[]work.Record{{ID: "z"}},
	)
	result, err := ParseString(content)
	if err != nil {
		t.Fatal(err)
	}

	out, err := result.Assemble([][]work.Record{{{ID: "m1"}, {ID: "m2"}}})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	var ids []string
	for _, r := range out {
		ids = append(ids, r.ID)
	}
	if got := strings.Join(ids, ","); got != "a,m1,m2,z" {
		t.Errorf("Assemble() order = %s, want a,m1,m2,z", got)
	}

	if _, err := result.Assemble(nil); err == nil {
		t.Error("Assemble() expected error for region count mismatch")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Skadeståndsrätt", 8); got != "Skade..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("kort", 8); got != "kort" {
		t.Errorf("truncate() = %q", got)
	}
}
