// Package match scores external catalog candidates against a work record
// and selects the best one above a confidence threshold.
//
// Everything here is pure: the external lookup happens in the caller, which
// hands the resulting candidate list to the Matcher.
package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/atjproject/lawcat/internal/names"
	"github.com/atjproject/lawcat/internal/work"
)

// Config holds the tunable weights and the acceptance threshold.
type Config struct {
	TitleWeight    float64 `json:"title_weight"`
	AuthorWeight   float64 `json:"author_weight"`
	YearWeight     float64 `json:"year_weight"`
	YearNearCredit float64 `json:"year_near_credit"` // Credit for a ±1 year difference
	Threshold      float64 `json:"threshold"`
}

// DefaultConfig returns the default matching configuration. Title dominates,
// author overlap is secondary and the year mostly breaks ties.
func DefaultConfig() Config {
	return Config{
		TitleWeight:    0.70,
		AuthorWeight:   0.20,
		YearWeight:     0.10,
		YearNearCredit: 0.5,
		Threshold:      0.75,
	}
}

// Validate checks that weights are usable.
func (c Config) Validate() error {
	if c.TitleWeight < 0 || c.AuthorWeight < 0 || c.YearWeight < 0 {
		return fmt.Errorf("match weights must be non-negative")
	}
	if c.TitleWeight+c.AuthorWeight+c.YearWeight == 0 {
		return fmt.Errorf("match weights must not all be zero")
	}
	if c.TitleWeight < c.AuthorWeight || c.TitleWeight < c.YearWeight {
		return fmt.Errorf("title_weight must be the largest weight")
	}
	if c.YearNearCredit < 0 || c.YearNearCredit > 1 {
		return fmt.Errorf("year_near_credit must be in [0,1]")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1]")
	}
	return nil
}

// Matcher scores and selects candidates.
type Matcher struct {
	cfg Config
}

// New creates a Matcher with the given configuration.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Scored pairs a candidate with its score and its position in the input.
type Scored struct {
	Candidate work.Candidate `json:"candidate"`
	Score     float64        `json:"score"`
	Index     int            `json:"index"`
	Title     float64        `json:"title_similarity"`
	Author    float64        `json:"author_overlap"`
	Year      float64        `json:"year_proximity"`
	Accepted  bool           `json:"accepted"`
}

// Score returns the confidence in [0,1] that cand describes rec.
func (m *Matcher) Score(rec work.Record, cand work.Candidate) float64 {
	return m.score(rec, cand, 0).Score
}

func (m *Matcher) score(rec work.Record, cand work.Candidate, idx int) Scored {
	s := Scored{
		Candidate: cand,
		Index:     idx,
		Title:     recordTitleSimilarity(rec, cand.Title),
		Author:    AuthorOverlap(rec.Authors, cand.Authors),
		Year:      m.yearProximity(rec.Year, cand.Year),
	}
	total := m.cfg.TitleWeight + m.cfg.AuthorWeight + m.cfg.YearWeight
	if total > 0 {
		s.Score = (m.cfg.TitleWeight*s.Title + m.cfg.AuthorWeight*s.Author + m.cfg.YearWeight*s.Year) / total
	}
	s.Candidate.Score = s.Score
	s.Accepted = s.Score >= m.cfg.Threshold
	return s
}

// Rank scores every candidate and returns them best first, using the same
// ordering Select uses.
func (m *Matcher) Rank(rec work.Record, cands []work.Candidate) []Scored {
	scored := make([]Scored, len(cands))
	for i, c := range cands {
		scored[i] = m.score(rec, c, i)
	}
	// Insertion sort keeps the ordering obviously stable.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && better(scored[j], scored[j-1]); j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
	return scored
}

// Select returns the best candidate when its score reaches the threshold.
// Ties prefer a candidate with a classification code, then earlier results.
// The returned candidate has its Score set.
func (m *Matcher) Select(rec work.Record, cands []work.Candidate) (work.Candidate, bool) {
	var best *Scored
	for i, c := range cands {
		s := m.score(rec, c, i)
		if best == nil || better(s, *best) {
			best = &s
		}
	}
	if best == nil || !best.Accepted {
		return work.Candidate{}, false
	}
	return best.Candidate, true
}

// better reports whether a should rank ahead of b.
func better(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	ac, bc := a.Candidate.HasClassification(), b.Candidate.HasClassification()
	if ac != bc {
		return ac
	}
	return a.Index < b.Index
}

// recordTitleSimilarity scores the candidate title against the record's
// title alone and with its subtitle, keeping the better of the two.
func recordTitleSimilarity(rec work.Record, candTitle string) float64 {
	sim := TitleSimilarity(rec.Title, candTitle)
	if rec.Subtitle == "" || sim == 1 {
		return sim
	}
	return math.Max(sim, TitleSimilarity(rec.Title+" "+rec.Subtitle, candTitle))
}

// TitleSimilarity compares normalized titles with a Levenshtein ratio.
// Statements of responsibility after " / " are ignored.
func TitleSimilarity(a, b string) float64 {
	na, nb := Normalize(BareTitle(a)), Normalize(BareTitle(b))
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return levenshtein.Similarity(na, nb, nil)
}

// AuthorOverlap is the overlap coefficient of the two family-name sets:
// shared names divided by the size of the smaller set. External catalogs
// often list only the primary author, which this measure does not punish.
func AuthorOverlap(authors []work.Author, candAuthors []string) float64 {
	ours := familySet(names.Families(authors))
	theirs := make(map[string]bool, len(candAuthors))
	for _, heading := range candAuthors {
		if fam := names.ParseInverted(heading).Family; fam != "" {
			theirs[Normalize(fam)] = true
		}
	}
	delete(theirs, "")
	if len(ours) == 0 || len(theirs) == 0 {
		return 0
	}

	shared := 0
	for f := range ours {
		if theirs[f] {
			shared++
		}
	}
	smaller := len(ours)
	if len(theirs) < smaller {
		smaller = len(theirs)
	}
	return float64(shared) / float64(smaller)
}

func (m *Matcher) yearProximity(a, b int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	switch d := a - b; {
	case d == 0:
		return 1
	case d == 1 || d == -1:
		return m.cfg.YearNearCredit
	default:
		return 0
	}
}

func familySet(families []string) map[string]bool {
	set := make(map[string]bool, len(families))
	for _, f := range families {
		if n := Normalize(f); n != "" {
			set[n] = true
		}
	}
	return set
}

// Describe renders a one-line summary of a scored candidate for logs.
func Describe(s Scored) string {
	return fmt.Sprintf("%.3f (title %.2f, author %.2f, year %.2f) %s",
		s.Score, s.Title, s.Author, s.Year, strings.TrimSpace(s.Candidate.Title))
}
