// Package conflict resolves git merge conflicts in catalog.jsonl using what
// is known about catalogued works.
package conflict

import (
	"fmt"

	"github.com/atjproject/lawcat/internal/work"
)

// ConflictRegion represents a single git conflict region in a JSONL file.
type ConflictRegion struct {
	// Line numbers in original file (1-indexed)
	StartLine int // Line of <<<<<<< marker
	EndLine   int // Line of >>>>>>> marker

	Ours   []work.Record // Works from the "ours" (HEAD) side
	Theirs []work.Record // Works from the "theirs" side

	// Raw content (for error messages)
	OursRaw   string
	TheirsRaw string
}

// WorkMatch is a work that appears on both sides of a conflict.
type WorkMatch struct {
	Ours      work.Record
	Theirs    work.Record
	MatchedBy string // "id" or "isbn"
}

// FieldConflict is a source-catalog field the two sides disagree on.
// Values are stored in full; truncation happens only at display time.
type FieldConflict struct {
	FieldName   string `json:"field"`
	OursValue   string `json:"ours"`
	TheirsValue string `json:"theirs"`
}

// ResolutionPlan describes how a matched pair will be resolved.
type ResolutionPlan struct {
	WorkID    string
	Action    ResolutionAction
	Reason    string
	Conflicts []FieldConflict // Empty if auto-resolvable
}

// ResolutionAction indicates the type of resolution applied.
type ResolutionAction string

const (
	ActionKeepOurs   ResolutionAction = "keep_ours"   // Ours already holds everything
	ActionKeepTheirs ResolutionAction = "keep_theirs" // Theirs already holds everything
	ActionMerge      ResolutionAction = "merge"       // Complementary data merged
	ActionAddOurs    ResolutionAction = "add_ours"    // Work only in ours
	ActionAddTheirs  ResolutionAction = "add_theirs"  // Work only in theirs
	ActionConflict   ResolutionAction = "conflict"    // Source facts disagree
)

// ParseError represents an error while parsing conflict markers or JSONL.
type ParseError struct {
	Line    int    // Line number where error occurred (1-indexed)
	Message string // Description of the error
	Context string // Surrounding content for debugging
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseResult contains the result of parsing a conflicted file.
type ParseResult struct {
	CleanLines []CleanLine
	Conflicts  []ConflictRegion
}

// CleanLine represents a line outside of any conflict region.
type CleanLine struct {
	LineNum int
	Content string
}

// MatchResult contains the result of matching works in a conflict region.
type MatchResult struct {
	Matches    []WorkMatch
	OursOnly   []work.Record
	TheirsOnly []work.Record
}
