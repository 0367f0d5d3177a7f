// Package enrich reconciles catalog records against external candidates and
// runs the enrichment phase over a whole catalog.
package enrich

import (
	"github.com/atjproject/lawcat/internal/citation"
	"github.com/atjproject/lawcat/internal/match"
	"github.com/atjproject/lawcat/internal/merge"
	"github.com/atjproject/lawcat/internal/work"
)

// Outcome is the result of reconciling one record.
type Outcome string

// Reconcile outcomes.
const (
	// OutcomeMatched means a candidate was accepted and attached.
	OutcomeMatched Outcome = "matched"
	// OutcomeKept means a candidate was accepted but the record already
	// carries a better-scoring match, which is retained.
	OutcomeKept Outcome = "kept"
	// OutcomeNoMatch means no candidate reached the threshold.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeFailed means the external lookup itself failed.
	OutcomeFailed Outcome = "failed"
)

// Reconcile selects the best candidate for rec, merges it in and
// recomputes the citations. It performs no I/O. A record without an
// acceptable candidate keeps all of its existing enrichment.
func Reconcile(m *match.Matcher, rec work.Record, cands []work.Candidate) (work.Record, Outcome) {
	best, ok := m.Select(rec, cands)
	if !ok {
		return citation.Apply(rec.Clone()), OutcomeNoMatch
	}
	if rec.ExternalMatch != nil && best.Score < rec.ExternalMatch.Score {
		return citation.Apply(rec.Clone()), OutcomeKept
	}
	return citation.Apply(merge.Enrich(rec, &best)), OutcomeMatched
}
