package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new lawcat repository",
	Long: `Initialize a new lawcat repository in the given or current directory.

Creates:
  .lawcat/
  ├── catalog.jsonl   # Empty catalog
  ├── config.json     # Default config
  └── cache/          # SQLite index and logs (gitignored)
  pdf/                # Downloaded full texts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root = config.ExpandPath(root)

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a lawcat repository")
	}

	for _, dir := range []string{config.LawcatPath(root), config.CachePath(root)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(ExitError, "creating %s: %v", dir, err)
		}
	}

	f, err := os.Create(config.CatalogPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.CatalogFile, err)
	}
	f.Close()

	cfg := config.Default()
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}
	if err := os.MkdirAll(cfg.ResolvePDFDir(root), 0755); err != nil {
		exitWithError(ExitError, "creating pdf directory: %v", err)
	}

	gitignore := filepath.Join(config.LawcatPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized lawcat repository in %s\n", config.LawcatPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.LawcatPath(root)})
	}
	return nil
}
