package citation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atjproject/lawcat/internal/work"
)

func tibergLennhammer() work.Record {
	return work.Record{
		ID:    "tiberg-1995",
		Title: "Skuldebrev, växel och check",
		Authors: []work.Author{
			{Given: "Hugo", Family: "Tiberg"},
			{Given: "Dan", Family: "Lennhammer"},
		},
		Edition:  7,
		Year:     1995,
		WorkType: work.TypeBook,
	}
}

func rodhe() work.Record {
	return work.Record{
		ID:       "rodhe-1956",
		Title:    "Obligationsrätt",
		Authors:  []work.Author{{Given: "Knut", Family: "Rodhe"}},
		Edition:  1,
		Year:     1956,
		WorkType: work.TypeBook,
	}
}

func TestFormat_ConjunctionRule(t *testing.T) {
	c, err := Format(tibergLennhammer())
	require.NoError(t, err)
	assert.Equal(t, "Hugo Tiberg och Dan Lennhammer, Skuldebrev, växel och check, 7 uppl. 1995", c.Long)
	assert.Equal(t, "Tiberg, Skuldebrev, växel och check", c.Short)
}

func TestFormat_SingleAuthorFirstEdition(t *testing.T) {
	c, err := Format(rodhe())
	require.NoError(t, err)
	assert.Equal(t, "Knut Rodhe, Obligationsrätt, 1956", c.Long)
	assert.Equal(t, "Rodhe, Obligationsrätt", c.Short)
}

func TestFormat_ThreeAuthors(t *testing.T) {
	rec := work.Record{
		Title: "Skadeståndsrätt",
		Authors: []work.Author{
			{Given: "Jan", Family: "Hellner"},
			{Given: "Richard", Family: "Hager"},
			{Given: "Annina H", Family: "Persson"},
		},
		Edition: 9,
		Year:    2014,
	}
	c, err := Format(rec)
	require.NoError(t, err)
	assert.Equal(t, "Jan Hellner, Richard Hager och Annina H Persson, Skadeståndsrätt, 9 uppl. 2014", c.Long)
	assert.NotContains(t, c.Long, "&")
}

func TestFormat_EditionSuppression(t *testing.T) {
	for _, edition := range []int{0, 1} {
		rec := rodhe()
		rec.Edition = edition
		c, err := Format(rec)
		require.NoError(t, err)
		assert.NotContains(t, c.Long, "uppl.")
		assert.NotContains(t, c.Long, "1 uppl.")
	}

	rec := rodhe()
	rec.Edition = 2
	c, err := Format(rec)
	require.NoError(t, err)
	assert.Contains(t, c.Long, "2 uppl.")
	assert.Equal(t, "Knut Rodhe, Obligationsrätt, 2 uppl. 1956", c.Long)
}

func TestFormat_WorkTypeInvariance(t *testing.T) {
	book := tibergLennhammer()
	diss := tibergLennhammer()
	diss.WorkType = work.TypeDissertation

	a, err := Format(book)
	require.NoError(t, err)
	b, err := Format(diss)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormat_Deterministic(t *testing.T) {
	rec := tibergLennhammer()
	first, err := Format(rec)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Format(rec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFormat_ZeroAuthors(t *testing.T) {
	rec := rodhe()
	rec.Authors = nil
	c, err := Format(rec)
	require.NoError(t, err)
	assert.Equal(t, "Obligationsrätt, 1956", c.Long)
	assert.Equal(t, "Obligationsrätt", c.Short)
	assert.False(t, strings.HasPrefix(c.Long, ","))
}

func TestFormat_MissingYear(t *testing.T) {
	rec := rodhe()
	rec.Year = 0
	_, err := Format(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequiredField))

	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, "year", mf.Field)
	assert.Equal(t, "rodhe-1956", mf.RecordID)
}

func TestFormat_MissingTitle(t *testing.T) {
	rec := rodhe()
	rec.Title = "   "
	_, err := Format(rec)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestFormat_TitleVerbatim(t *testing.T) {
	rec := rodhe()
	rec.Title = "Obligationsrätt "
	c, err := Format(rec)
	require.NoError(t, err)
	assert.Equal(t, "Knut Rodhe, Obligationsrätt , 1956", c.Long)
	assert.Equal(t, "Rodhe, Obligationsrätt ", c.Short)
}

func TestApply(t *testing.T) {
	got := Apply(rodhe())
	assert.Equal(t, "Knut Rodhe, Obligationsrätt, 1956", got.CitationLong)
	assert.Equal(t, "Rodhe, Obligationsrätt", got.CitationShort)
	assert.Empty(t, got.CitationError)

	broken := got
	broken.Year = 0
	failed := Apply(broken)
	assert.Empty(t, failed.CitationLong)
	assert.Empty(t, failed.CitationShort)
	assert.Contains(t, failed.CitationError, "year")
	assert.Equal(t, broken.Title, failed.Title)
}

func TestApply_IgnoresStaleDerivedFields(t *testing.T) {
	rec := rodhe()
	rec.CitationLong = "hand edited"
	rec.CitationShort = "hand edited"
	got := Apply(rec)
	assert.Equal(t, "Knut Rodhe, Obligationsrätt, 1956", got.CitationLong)
}

func TestAuthorClause_SkipsEmptyNames(t *testing.T) {
	authors := []work.Author{{}, {Given: "Knut", Family: "Rodhe"}}
	assert.Equal(t, "Knut Rodhe", AuthorClause(authors))
}
