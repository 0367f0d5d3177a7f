package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

var (
	searchLimit    int
	searchAuthor   string
	searchTitle    string
	searchYearFrom int
	searchYearTo   int
	searchYear     string
	searchType     string
	searchSAB      string
	searchHasPDF   bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	f := searchCmd.Flags()
	f.IntVarP(&searchLimit, "limit", "n", DefaultSearchLimit, "Maximum number of results")
	f.StringVarP(&searchAuthor, "author", "a", "", "Author family name (prefix match)")
	f.StringVarP(&searchTitle, "title", "t", "", "Words in the title")
	f.IntVar(&searchYearFrom, "year-from", 0, "Earliest publication year")
	f.IntVar(&searchYearTo, "year-to", 0, "Latest publication year")
	f.StringVar(&searchYear, "year", "", "Year or range: 1956, 1950:1970, 1950:, :1970")
	f.StringVar(&searchType, "type", "", "Work type (book, dissertation, festschrift, ...)")
	f.StringVar(&searchSAB, "sab", "", "SAB classification prefix, e.g. Oe")
	f.BoolVar(&searchHasPDF, "has-pdf", false, "Only works with a downloaded PDF")
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long: `Full-text search over titles, authors, subjects, citations and aliases,
optionally narrowed by filters. All filters must match.

Examples:
  lawcat search obligationsrätt
  lawcat search --author Rodhe --year-to 1970
  lawcat search skadestånd --sab Oe --human`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchYear != "" {
		from, to, err := parseYearRange(searchYear)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		searchYearFrom, searchYearTo = from, to
	}

	filters := storage.SearchFilters{
		Keyword:   strings.Join(args, " "),
		Author:    searchAuthor,
		Title:     searchTitle,
		YearFrom:  searchYearFrom,
		YearTo:    searchYearTo,
		WorkType:  work.Type(searchType),
		SABPrefix: searchSAB,
		HasPDF:    searchHasPDF,
	}
	if filters == (storage.SearchFilters{}) {
		exitWithError(ExitError, "give a query or at least one filter")
	}
	if searchType != "" && !slices.Contains(work.ValidTypes, filters.WorkType) {
		exitWithError(ExitError, "unknown work type: %s (valid: %v)", searchType, work.ValidTypes)
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var recs []work.Record
	var err error
	if filters == (storage.SearchFilters{Keyword: filters.Keyword}) {
		recs, err = db.Search(filters.Keyword, searchLimit)
	} else {
		recs, err = db.SearchWithFilters(filters, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		printSummariesHuman(recs)
	} else {
		outputJSON(summarize(recs))
	}
	return nil
}

// parseYearRange parses "1956" (exact), "1950:1970", "1950:" or ":1970".
func parseYearRange(expr string) (from, to int, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, 0, nil
	}

	if lo, hi, ok := strings.Cut(expr, ":"); ok {
		if lo != "" {
			if from, err = strconv.Atoi(lo); err != nil {
				return 0, 0, fmt.Errorf("invalid start year %q", lo)
			}
		}
		if hi != "" {
			if to, err = strconv.Atoi(hi); err != nil {
				return 0, 0, fmt.Errorf("invalid end year %q", hi)
			}
		}
		return from, to, nil
	}

	year, err := strconv.Atoi(expr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", expr)
	}
	return year, year, nil
}
