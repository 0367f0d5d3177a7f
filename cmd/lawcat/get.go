package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/work"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single work by ID",
	Long: `Get a single work by its ID.

Example:
  lawcat get 4711`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	id := args[0]
	rec, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "getting work: %v", err)
	}
	if rec == nil {
		exitWithError(ExitNotFound, "work not found: %s", id)
	}

	if humanOutput {
		printWorkDetail(*rec)
	} else {
		outputJSON(rec)
	}
	return nil
}

func printWorkDetail(rec work.Record) {
	const indent = "            "
	fmt.Println(rec.ID)
	fmt.Println(strings.Repeat("═", DetailTitleMaxLen))
	fmt.Println()

	title := rec.Title
	if rec.Subtitle != "" {
		title += " : " + rec.Subtitle
	}
	fmt.Printf("Title:      %s\n", wrapText(title, TextWrapWidth, indent))
	if len(rec.Authors) > 0 {
		fmt.Printf("Authors:    %s\n", wrapText(formatAuthorsFull(rec.Authors), TextWrapWidth, indent))
	}
	if rec.Year > 0 {
		fmt.Printf("Year:       %d\n", rec.Year)
	}
	if rec.Edition > 1 {
		fmt.Printf("Edition:    %d\n", rec.Edition)
	}
	fmt.Printf("Type:       %s\n", rec.WorkType)
	if rec.Publisher != "" {
		fmt.Printf("Publisher:  %s\n", rec.Publisher)
	}
	if rec.ISBN != "" {
		fmt.Printf("ISBN:       %s\n", rec.ISBN)
	}
	if rec.Series != "" {
		fmt.Printf("Series:     %s\n", rec.Series)
	}

	fmt.Println()
	if rec.CitationError != "" {
		fmt.Printf("Citation:   (%s)\n", rec.CitationError)
	} else {
		fmt.Printf("Citation:   %s\n", wrapText(rec.CitationLong, TextWrapWidth, indent))
		fmt.Printf("Short:      %s\n", rec.CitationShort)
	}
	if len(rec.Aliases) > 0 {
		fmt.Printf("Aliases:    %s\n", strings.Join(rec.Aliases, ", "))
	}

	if rec.ExternalMatch != nil {
		fmt.Println()
		fmt.Printf("LIBRIS:     %s (score %.2f)\n", rec.ExternalMatch.BibID, rec.ExternalMatch.Score)
	}
	if c := rec.Classification; !c.IsEmpty() {
		if c.SAB != "" {
			fmt.Printf("SAB:        %s %s\n", c.SAB, c.SABDescription)
		}
		if c.DDC != "" {
			fmt.Printf("DDC:        %s\n", c.DDC)
		}
		if c.UDK != "" {
			fmt.Printf("UDK:        %s\n", c.UDK)
		}
	}
	if len(rec.Subjects) > 0 {
		terms := make([]string, len(rec.Subjects))
		for i, s := range rec.Subjects {
			terms[i] = s.Term
		}
		fmt.Printf("Subjects:   %s\n", wrapText(strings.Join(terms, "; "), TextWrapWidth, indent))
	}

	if rec.PDF != nil {
		fmt.Println()
		if rec.PDF.Downloaded {
			fmt.Printf("PDF:        %s (%d pages)\n", rec.PDF.Path, rec.PDF.Pages)
		} else {
			fmt.Printf("PDF:        not downloaded: %s\n", rec.PDF.Error)
		}
	}
}
