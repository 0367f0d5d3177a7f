// Package main provides the lawcat CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/citation"
	"github.com/atjproject/lawcat/internal/config"
	"github.com/atjproject/lawcat/internal/logger"
	"github.com/atjproject/lawcat/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// quietOutput suppresses progress bars
	quietOutput bool

	logCloser io.Closer
)

func main() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		// SilenceErrors is set, so cobra errors such as a missing argument
		// are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lawcat",
	Short: "Legal literature catalog harvester and citation engine",
	Long: `lawcat harvests the juridikbok.se catalog of Swedish legal literature,
enriches each work with LIBRIS classification and subject data, and derives
court-style long and short citations.

The catalog is stored in git-versionable JSONL with an ephemeral SQLite
index for queries. All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&quietOutput, "quiet", "q", false, "Hide progress bars")
	rootCmd.Version = Version
}

// setupLogging installs the slog logger described by the global config.
// File logs go to the repository cache when one is found, and next to the
// global config otherwise.
func setupLogging(cmd *cobra.Command, args []string) error {
	gcfg, err := config.LoadGlobalConfig()
	if err != nil {
		return err
	}

	logDir := filepath.Dir(config.GlobalConfigPath())
	if cwd, err := os.Getwd(); err == nil {
		if root, err := config.FindRepository(cwd); err == nil {
			logDir = config.CachePath(root)
		}
	}

	logCloser, err = logger.Init(logDir, gcfg.Log)
	return err
}

// mustLoadGlobalConfig loads the global configuration, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	gcfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return gcfg
}

// mustFindRepository finds the repository containing the working
// directory, falling back to the configured library_path.
func mustFindRepository() string {
	if cwd, err := os.Getwd(); err == nil {
		if root, err := config.FindRepository(cwd); err == nil {
			return root
		}
	}

	root, err := config.ValidateLibraryPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustLoadConfig loads and validates the repository configuration.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustOpenCatalog loads the JSONL catalog. Citations are recomputed for
// every record the catalog merges.
func mustOpenCatalog(repoRoot string) *storage.Catalog {
	cat, err := storage.OpenCatalog(config.CatalogPath(repoRoot), storage.WithDerive(citation.Apply))
	if err != nil {
		exitWithError(ExitDataError, "loading catalog: %v", err)
	}
	return cat
}

// mustOpenDatabase opens the SQLite index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustSaveCatalog writes pending catalog changes and refreshes the index.
func mustSaveCatalog(repoRoot string, cat *storage.Catalog) {
	if cat.Dirty() {
		if err := cat.Save(); err != nil {
			exitWithError(ExitError, "saving catalog: %v", err)
		}
	}
	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if _, err := db.Rebuild(cat.Load()); err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM so that
// long phases can persist partial progress before exiting.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
