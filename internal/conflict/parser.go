package conflict

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

type parserState int

const (
	stateNormal parserState = iota
	stateInOurs
	stateInTheirs
)

// Conflict marker prefixes
const (
	oursMarker      = "<<<<<<<"
	separatorMarker = "======="
	theirsMarker    = ">>>>>>>"
)

func markerOf(line string) string {
	for _, m := range []string{oursMarker, separatorMarker, theirsMarker} {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}

// Parse reads a conflicted catalog file, separating clean lines from
// conflict regions and decoding the records on both sides of each region.
func Parse(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), storage.MaxJSONLLineCapacity)
	result := &ParseResult{}

	state := stateNormal
	lineNum := 0
	var region ConflictRegion
	var ours, theirs []string

	fail := func(msg, line string) (*ParseResult, error) {
		return nil, ParseError{Line: lineNum, Message: msg, Context: line}
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		m := markerOf(line)

		switch {
		case state == stateNormal && m == "":
			result.CleanLines = append(result.CleanLines, CleanLine{LineNum: lineNum, Content: line})
		case state == stateNormal && m == oursMarker:
			region = ConflictRegion{StartLine: lineNum}
			ours, theirs = nil, nil
			state = stateInOurs
		case state == stateNormal:
			return fail("unexpected "+m+" marker outside conflict region", line)

		case m == oursMarker:
			return fail("nested conflict markers not allowed", line)

		case state == stateInOurs && m == "":
			ours = append(ours, line)
		case state == stateInOurs && m == separatorMarker:
			state = stateInTheirs
		case state == stateInOurs:
			return fail("unexpected end marker before separator", line)

		case m == "":
			theirs = append(theirs, line)
		case m == separatorMarker:
			return fail("duplicate separator marker in conflict region", line)
		default:
			region.EndLine = lineNum
			region.OursRaw = strings.Join(ours, "\n")
			region.TheirsRaw = strings.Join(theirs, "\n")

			var err error
			if region.Ours, err = parseJSONLContent(ours, region.StartLine+1); err != nil {
				return nil, err
			}
			if region.Theirs, err = parseJSONLContent(theirs, region.StartLine+len(ours)+2); err != nil {
				return nil, err
			}
			result.Conflicts = append(result.Conflicts, region)
			state = stateNormal
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != stateNormal {
		return fail("unterminated conflict region at end of file", "")
	}

	return result, nil
}

// parseJSONLContent parses JSONL lines into records.
func parseJSONLContent(lines []string, startLine int) ([]work.Record, error) {
	var recs []work.Record

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec work.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, ParseError{
				Line:    startLine + i,
				Message: "invalid JSON: " + err.Error(),
				Context: truncate(line, 50),
			}
		}
		if rec.ID == "" {
			return nil, ParseError{
				Line:    startLine + i,
				Message: "record has no id",
				Context: truncate(line, 50),
			}
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// ParseString is a convenience function that parses from a string.
func ParseString(content string) (*ParseResult, error) {
	return Parse(strings.NewReader(content))
}

// HasConflicts returns true if the parse result contains any conflict regions.
func (r *ParseResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// CleanRecords parses every non-blank clean line.
func (r *ParseResult) CleanRecords() ([]work.Record, error) {
	var recs []work.Record
	for _, cl := range r.CleanLines {
		got, err := parseJSONLContent([]string{cl.Content}, cl.LineNum)
		if err != nil {
			return nil, err
		}
		recs = append(recs, got...)
	}
	return recs, nil
}

// Assemble rebuilds the file content in order, placing resolved[i] where
// conflict region i stood.
func (r *ParseResult) Assemble(resolved [][]work.Record) ([]work.Record, error) {
	if len(resolved) != len(r.Conflicts) {
		return nil, fmt.Errorf("expected %d resolved regions, got %d", len(r.Conflicts), len(resolved))
	}

	var out []work.Record
	clean := r.CleanLines
	for i, region := range r.Conflicts {
		for len(clean) > 0 && clean[0].LineNum < region.StartLine {
			recs, err := parseJSONLContent([]string{clean[0].Content}, clean[0].LineNum)
			if err != nil {
				return nil, err
			}
			out = append(out, recs...)
			clean = clean[1:]
		}
		out = append(out, resolved[i]...)
	}
	for _, cl := range clean {
		recs, err := parseJSONLContent([]string{cl.Content}, cl.LineNum)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}
