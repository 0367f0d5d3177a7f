package conflict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atjproject/lawcat/internal/citation"
	"github.com/atjproject/lawcat/internal/merge"
	"github.com/atjproject/lawcat/internal/work"
)

// Side names one branch of a conflict.
type Side string

const (
	SideOurs   Side = "ours"
	SideTheirs Side = "theirs"
)

// sourceField is a source-catalog fact that branches must agree on.
type sourceField struct {
	name string
	get  func(work.Record) string
	set  func(dst *work.Record, src work.Record)
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

var sourceFields = []sourceField{
	{"title", func(r work.Record) string { return r.Title },
		func(d *work.Record, s work.Record) { d.Title = s.Title }},
	{"subtitle", func(r work.Record) string { return r.Subtitle },
		func(d *work.Record, s work.Record) { d.Subtitle = s.Subtitle }},
	{"authors_raw", func(r work.Record) string { return r.AuthorsRaw },
		func(d *work.Record, s work.Record) { d.AuthorsRaw, d.Authors = s.AuthorsRaw, s.Authors }},
	{"year", func(r work.Record) string { return intString(r.Year) },
		func(d *work.Record, s work.Record) { d.Year = s.Year }},
	{"edition", func(r work.Record) string { return intString(r.Edition) },
		func(d *work.Record, s work.Record) { d.Edition = s.Edition }},
	{"work_type", func(r work.Record) string { return string(r.WorkType) },
		func(d *work.Record, s work.Record) { d.WorkType = s.WorkType }},
	{"isbn", func(r work.Record) string { return r.ISBN },
		func(d *work.Record, s work.Record) { d.ISBN = s.ISBN }},
	{"publisher", func(r work.Record) string { return r.Publisher },
		func(d *work.Record, s work.Record) { d.Publisher = s.Publisher }},
}

// Resolve determines the resolution plan for a matched pair.
func Resolve(m WorkMatch) ResolutionPlan {
	plan := ResolutionPlan{WorkID: m.Ours.ID}

	merged, conflicts := MergeWorks(m.Ours, m.Theirs)
	if len(conflicts) > 0 {
		plan.Action = ActionConflict
		plan.Conflicts = conflicts
		plan.Reason = "source fields disagree: " + conflictFieldNames(conflicts)
		return plan
	}

	switch {
	case sameJSON(merged, citation.Apply(m.Ours)):
		plan.Action = ActionKeepOurs
		plan.Reason = "ours already holds everything"
	case sameJSON(merged, citation.Apply(m.Theirs)):
		plan.Action = ActionKeepTheirs
		plan.Reason = "theirs already holds everything"
	default:
		plan.Action = ActionMerge
		plan.Reason = "complementary data merged"
	}
	return plan
}

// MergeWorks combines both versions of a work. Source facts present on
// only one side are taken from it; disagreeing facts are reported and left
// as in ours, as are case-only differences. The better-scoring external
// match wins, ours on a tie. Aliases are united and a downloaded PDF beats
// a failed one.
func MergeWorks(ours, theirs work.Record) (work.Record, []FieldConflict) {
	// Incremental lets non-empty incoming facts win, so feed it theirs with
	// every field both sides set reset to ours.
	in := theirs.Clone()
	var conflicts []FieldConflict
	for _, f := range sourceFields {
		o, t := f.get(ours), f.get(theirs)
		if o == "" || t == "" {
			continue
		}
		if !strings.EqualFold(o, t) {
			conflicts = append(conflicts, FieldConflict{FieldName: f.name, OursValue: o, TheirsValue: t})
		}
		f.set(&in, ours)
	}
	in.ExternalMatch, in.Classification, in.Subjects = nil, nil, nil
	in.PDF = nil
	out := merge.Incremental(ours, in)

	enriched, other := ours, theirs
	if theirs.ExternalMatch != nil && (ours.ExternalMatch == nil || theirs.ExternalMatch.Score > ours.ExternalMatch.Score) {
		enriched, other = theirs, ours
	}
	out.ExternalMatch = enriched.ExternalMatch
	out.Classification = enriched.Classification
	if out.Classification.IsEmpty() {
		out.Classification = other.Classification
	}
	out.Subjects = enriched.Subjects
	if len(out.Subjects) == 0 {
		out.Subjects = other.Subjects
	}

	out.PDF = ours.PDF
	if theirs.PDF != nil && (ours.PDF == nil || (theirs.PDF.Downloaded && !ours.PDF.Downloaded)) {
		out.PDF = theirs.PDF
	}

	return citation.Apply(out.Clone()), conflicts
}

// ApplyResolution produces the resolved record for a plan. Conflicting
// source fields are taken from prefer; an empty prefer keeps ours.
func ApplyResolution(m WorkMatch, plan ResolutionPlan, prefer Side) work.Record {
	switch plan.Action {
	case ActionKeepOurs:
		return m.Ours
	case ActionKeepTheirs:
		return m.Theirs
	}

	merged, _ := MergeWorks(m.Ours, m.Theirs)
	if prefer == SideTheirs {
		for _, c := range plan.Conflicts {
			fieldByName(c.FieldName).set(&merged, m.Theirs)
		}
		merged = citation.Apply(merged)
	}
	return merged
}

func fieldByName(name string) sourceField {
	for _, f := range sourceFields {
		if f.name == name {
			return f
		}
	}
	panic("conflict: unknown field " + name)
}

func sameJSON(a, b work.Record) bool {
	if a.Aliases == nil {
		a.Aliases = []string{}
	}
	if b.Aliases == nil {
		b.Aliases = []string{}
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

// conflictFieldNames returns a comma-separated list of field names with conflicts.
func conflictFieldNames(conflicts []FieldConflict) string {
	names := make([]string, len(conflicts))
	for i, c := range conflicts {
		names[i] = c.FieldName
	}
	return strings.Join(names, ", ")
}
