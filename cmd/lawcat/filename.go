package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/filename"
)

func init() {
	rootCmd.AddCommand(filenameCmd)
}

var filenameCmd = &cobra.Command{
	Use:   "filename <id>",
	Short: "Print the file name a work's PDF is stored under",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilename,
}

func runFilename(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cat := mustOpenCatalog(repoRoot)

	rec, ok := cat.Get(args[0])
	if !ok {
		exitWithError(ExitNotFound, "work not found: %s", args[0])
	}

	name := filename.Render(rec)
	if humanOutput {
		fmt.Println(name)
	} else {
		outputJSON(map[string]string{"id": rec.ID, "filename": name})
	}
	return nil
}
