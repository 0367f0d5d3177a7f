package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  lawcat config                        # Show all config
  lawcat config workers                # Get specific value
  lawcat config workers 4              # Set value
  lawcat config match.threshold 0.8    # Tune the matcher

Keys:
  pdf_dir              PDF directory, relative to the repository root
  pdf_reader           PDF reader (system, skim, preview, zathura, evince, okular)
  delay_seconds        Pause between requests to the same host
  workers              Concurrent lookups and downloads (1-16)
  max_detail_lookups   LIBRIS detail pages fetched per work
  match.*              title_weight, author_weight, year_weight,
                       year_near_credit, threshold`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys {
				v, _ := cfg.Get(key)
				fmt.Printf("%-22s %s\n", key+":", v)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey converts key formats (pdf-dir, PDF_DIR) to the stored form.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}
