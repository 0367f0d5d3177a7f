package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atjproject/lawcat/internal/work"
)

func sourceRecord() work.Record {
	return work.Record{
		ID:         "9118676421",
		Title:      "Lärobok i obligationsrätt",
		AuthorsRaw: "Knut Rodhe",
		Authors:    []work.Author{{Given: "Knut", Family: "Rodhe"}},
		Year:       1986,
		Edition:    6,
		WorkType:   work.TypeBook,
	}
}

func librisMatch(score float64) *work.Candidate {
	return &work.Candidate{
		BibID:          "7654321",
		Title:          "Lärobok i obligationsrätt / Knut Rodhe",
		Authors:        []string{"Rodhe, Knut, 1909-1999"},
		Year:           1987,
		ISBN:           "91-1-867642-1",
		Classification: &work.Classification{SAB: "Oeaa", DDC: "346.02"},
		Subjects:       []work.Subject{{Term: "Obligationsrätt", System: "sao"}},
		Score:          score,
	}
}

func TestEnrich_SourceFactsWin(t *testing.T) {
	rec := sourceRecord()
	got := Enrich(rec, librisMatch(0.9))

	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.Year, got.Year)
	assert.Equal(t, rec.Edition, got.Edition)
	assert.Equal(t, rec.WorkType, got.WorkType)
	assert.Equal(t, rec.AuthorsRaw, got.AuthorsRaw)
	assert.Equal(t, rec.Authors, got.Authors)
}

func TestEnrich_AttachesClassificationAndSubjects(t *testing.T) {
	got := Enrich(sourceRecord(), librisMatch(0.9))

	require.NotNil(t, got.ExternalMatch)
	assert.Equal(t, "7654321", got.ExternalMatch.BibID)
	require.NotNil(t, got.Classification)
	assert.Equal(t, "Oeaa", got.Classification.SAB)
	assert.Equal(t, []work.Subject{{Term: "Obligationsrätt", System: "sao"}}, got.Subjects)
	assert.Equal(t, "91-1-867642-1", got.ISBN)
}

func TestEnrich_NilMatchLeavesEnrichmentUntouched(t *testing.T) {
	enriched := Enrich(sourceRecord(), librisMatch(0.9))
	again := Enrich(enriched, nil)

	assert.Equal(t, enriched, again)
}

func TestEnrich_LowerScoreIsIgnored(t *testing.T) {
	enriched := Enrich(sourceRecord(), librisMatch(0.9))

	worse := librisMatch(0.8)
	worse.BibID = "other"
	worse.Classification = &work.Classification{SAB: "Xyz"}
	got := Enrich(enriched, worse)

	assert.Equal(t, "7654321", got.ExternalMatch.BibID)
	assert.Equal(t, "Oeaa", got.Classification.SAB)
}

func TestEnrich_EqualOrBetterReplaces(t *testing.T) {
	enriched := Enrich(sourceRecord(), librisMatch(0.9))

	better := librisMatch(0.95)
	better.BibID = "better"
	better.Classification = &work.Classification{SAB: "Oeab"}
	got := Enrich(enriched, better)

	assert.Equal(t, "better", got.ExternalMatch.BibID)
	assert.Equal(t, "Oeab", got.Classification.SAB)
}

func TestEnrich_BetterMatchWithoutPayloadKeepsOldPayload(t *testing.T) {
	enriched := Enrich(sourceRecord(), librisMatch(0.9))

	bare := &work.Candidate{BibID: "bare", Title: "Lärobok i obligationsrätt", Score: 0.99}
	got := Enrich(enriched, bare)

	assert.Equal(t, "bare", got.ExternalMatch.BibID)
	require.NotNil(t, got.Classification)
	assert.Equal(t, "Oeaa", got.Classification.SAB)
	assert.Len(t, got.Subjects, 1)
}

func TestEnrich_ISBNNeverOverwritten(t *testing.T) {
	rec := sourceRecord()
	rec.ISBN = "9118676421"
	got := Enrich(rec, librisMatch(0.9))
	assert.Equal(t, "9118676421", got.ISBN)
}

func TestEnrich_DoesNotMutateInputs(t *testing.T) {
	rec := sourceRecord()
	m := librisMatch(0.9)
	got := Enrich(rec, m)
	got.Classification.SAB = "changed"
	got.Subjects[0].Term = "changed"

	assert.Nil(t, rec.Classification)
	assert.Equal(t, "Oeaa", m.Classification.SAB)
	assert.Equal(t, "Obligationsrätt", m.Subjects[0].Term)
}

func TestIncremental_CrawlUpdateKeepsEnrichment(t *testing.T) {
	existing := Enrich(sourceRecord(), librisMatch(0.9))
	existing.Aliases = []string{"Rodhe, Lärobok"}
	existing.PDF = &work.PDFInfo{Path: "x.pdf", Downloaded: true}

	crawled := sourceRecord()
	crawled.Publisher = "Norstedts"

	got := Incremental(existing, crawled)

	assert.Equal(t, "Norstedts", got.Publisher)
	require.NotNil(t, got.ExternalMatch)
	assert.Equal(t, "Oeaa", got.Classification.SAB)
	assert.Len(t, got.Subjects, 1)
	assert.Equal(t, []string{"Rodhe, Lärobok"}, got.Aliases)
	require.NotNil(t, got.PDF)
	assert.True(t, got.PDF.Downloaded)
}

func TestIncremental_StalePartialWriteCannotRegress(t *testing.T) {
	existing := Enrich(sourceRecord(), librisMatch(0.9))

	stale := sourceRecord()
	stale.ExternalMatch = &work.Candidate{BibID: "stale", Score: 0.5}

	got := Incremental(existing, stale)
	assert.Equal(t, "7654321", got.ExternalMatch.BibID)
	assert.Equal(t, "Oeaa", got.Classification.SAB)
}

func TestIncremental_AliasesUnion(t *testing.T) {
	existing := sourceRecord()
	existing.Aliases = []string{"A", "B"}
	incoming := sourceRecord()
	incoming.Aliases = []string{"B", "C"}

	got := Incremental(existing, incoming)
	assert.Equal(t, []string{"A", "B", "C"}, got.Aliases)
}

func TestIncremental_IdenticalIsNoOp(t *testing.T) {
	rec := Enrich(sourceRecord(), librisMatch(0.9))
	rec.Aliases = []string{"Rodhe"}
	rec.CitationLong = "Knut Rodhe, Lärobok i obligationsrätt, 6 uppl. 1986"
	rec.CitationShort = "Rodhe, Lärobok i obligationsrätt"

	assert.Equal(t, rec, Incremental(rec, rec))
}

func TestIncremental_EmptyIncomingFieldsKeepExisting(t *testing.T) {
	existing := sourceRecord()
	existing.Publisher = "Norstedts"

	incoming := work.Record{ID: existing.ID}
	got := Incremental(existing, incoming)

	assert.Equal(t, existing.Title, got.Title)
	assert.Equal(t, existing.Year, got.Year)
	assert.Equal(t, existing.Authors, got.Authors)
	assert.Equal(t, "Norstedts", got.Publisher)
}
