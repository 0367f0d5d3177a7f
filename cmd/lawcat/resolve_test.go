package main

import (
	"strings"
	"testing"

	"github.com/atjproject/lawcat/internal/conflict"
)

const conflictedCatalog = `{"id":"1000","title":"Förvaltningsrätt","authors_raw":"Hans Ragnemalm","authors_parsed":[{"given":"Hans","family":"Ragnemalm"}],"year":1970,"work_type":"book","aliases":[]}
<<<<<<< HEAD
{"id":"4711","title":"Obligationsrätt","authors_raw":"Knut Rodhe","authors_parsed":[{"given":"Knut","family":"Rodhe"}],"year":1956,"work_type":"book","aliases":["Rodhe"]}
{"id":"5000","title":"Sakrätt","authors_raw":"","authors_parsed":null,"year":1980,"work_type":"book","aliases":[]}
=======
{"id":"4711","title":"Obligationsrätt","authors_raw":"Knut Rodhe","authors_parsed":[{"given":"Knut","family":"Rodhe"}],"year":1958,"work_type":"book","aliases":[]}
{"id":"6000","title":"Arbetsrätt","authors_raw":"","authors_parsed":null,"year":1990,"work_type":"book","aliases":[]}
>>>>>>> feature
`

func TestResolveRegions(t *testing.T) {
	parsed, err := conflict.ParseString(conflictedCatalog)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}

	result, byRegion := resolveRegions(parsed, "")
	if len(result.Unresolved) != 1 || result.Unresolved[0].WorkID != "4711" {
		t.Fatalf("Unresolved = %+v", result.Unresolved)
	}
	if result.OursWorks != 1 || result.TheirsWorks != 1 {
		t.Errorf("ours %d, theirs %d", result.OursWorks, result.TheirsWorks)
	}

	recs, err := parsed.Assemble(byRegion)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	if got := strings.Join(ids, ","); got != "1000,4711,5000,6000" {
		t.Errorf("order = %s", got)
	}
}

func TestResolveRegions_PreferTheirs(t *testing.T) {
	parsed, err := conflict.ParseString(conflictedCatalog)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}

	result, byRegion := resolveRegions(parsed, conflict.SideTheirs)
	if len(result.Unresolved) != 0 {
		t.Fatalf("Unresolved = %+v", result.Unresolved)
	}
	if result.Merged != 1 {
		t.Errorf("Merged = %d", result.Merged)
	}

	got := byRegion[0][0]
	if got.Year != 1958 {
		t.Errorf("Year = %d, want theirs", got.Year)
	}
	if len(got.Aliases) != 1 || got.Aliases[0] != "Rodhe" {
		t.Errorf("Aliases = %v", got.Aliases)
	}
	if got.CitationLong != "Knut Rodhe, Obligationsrätt, 1958" {
		t.Errorf("CitationLong = %q", got.CitationLong)
	}
}
