package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atjproject/lawcat/internal/work"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	ListTitleMaxLen   = 50 // Used in list and search output
	DetailTitleMaxLen = 70 // Rule width in the get command detail view

	TextWrapWidth = 60
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WorkSummary is the compact form of a work used by list and search.
type WorkSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Authors       string    `json:"authors,omitempty"`
	Year          int       `json:"year,omitempty"`
	WorkType      work.Type `json:"work_type"`
	CitationShort string    `json:"citation_short,omitempty"`
	HasPDF        bool      `json:"has_pdf"`
}

func summarize(recs []work.Record) []WorkSummary {
	out := make([]WorkSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, WorkSummary{
			ID:            r.ID,
			Title:         r.Title,
			Authors:       formatAuthorsFull(r.Authors),
			Year:          r.Year,
			WorkType:      r.WorkType,
			CitationShort: r.CitationShort,
			HasPDF:        r.PDF != nil && r.PDF.Downloaded,
		})
	}
	return out
}

func printSummariesHuman(recs []work.Record) {
	if len(recs) == 0 {
		fmt.Println("No works found")
		return
	}
	for _, r := range recs {
		year := "----"
		if r.Year > 0 {
			year = fmt.Sprint(r.Year)
		}
		fmt.Printf("%-10s %s  %-*s  %s\n", r.ID, year, ListTitleMaxLen,
			truncateString(r.Title, ListTitleMaxLen), formatAuthorsFamily(r.Authors))
	}
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range strings.Fields(text) {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

func formatAuthorsFull(authors []work.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Full()
	}
	return strings.Join(names, ", ")
}

func formatAuthorsFamily(authors []work.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Family
	}
	return strings.Join(names, ", ")
}
