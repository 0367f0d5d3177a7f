package conflict

import (
	"github.com/atjproject/lawcat/internal/libris"
)

// MatchWorks pairs works between the two sides of a conflict region by id,
// then by ISBN for works whose id differs between branches.
func MatchWorks(region ConflictRegion) MatchResult {
	var result MatchResult

	oursByID := make(map[string]int, len(region.Ours))
	oursByISBN := make(map[string]int)
	for i, rec := range region.Ours {
		oursByID[rec.ID] = i
		if isbn := libris.NormalizeISBN(rec.ISBN); isbn != "" {
			oursByISBN[isbn] = i
		}
	}

	oursMatched := make(map[int]bool)
	theirsMatched := make(map[int]bool)
	pair := func(oi, ti int, by string) {
		result.Matches = append(result.Matches, WorkMatch{
			Ours:      region.Ours[oi],
			Theirs:    region.Theirs[ti],
			MatchedBy: by,
		})
		oursMatched[oi] = true
		theirsMatched[ti] = true
	}

	for ti, rec := range region.Theirs {
		if oi, ok := oursByID[rec.ID]; ok && !oursMatched[oi] {
			pair(oi, ti, "id")
		}
	}
	for ti, rec := range region.Theirs {
		if theirsMatched[ti] {
			continue
		}
		isbn := libris.NormalizeISBN(rec.ISBN)
		if oi, ok := oursByISBN[isbn]; ok && isbn != "" && !oursMatched[oi] {
			pair(oi, ti, "isbn")
		}
	}

	for i, rec := range region.Ours {
		if !oursMatched[i] {
			result.OursOnly = append(result.OursOnly, rec)
		}
	}
	for i, rec := range region.Theirs {
		if !theirsMatched[i] {
			result.TheirsOnly = append(result.TheirsOnly, rec)
		}
	}

	return result
}
