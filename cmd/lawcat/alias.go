package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(aliasCmd)
	aliasCmd.AddCommand(aliasAddCmd)
}

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage alternate short names of works",
}

var aliasAddCmd = &cobra.Command{
	Use:   "add <id> <alias>",
	Short: "Add an alias to a work",
	Long: `Add an operator-curated alias, such as a customary short title, to a
work. Aliases are searchable and survive crawls and enrichment.

Example:
  lawcat alias add 4711 "Rodhe, Obl."`,
	Args: cobra.ExactArgs(2),
	RunE: runAliasAdd,
}

// AliasResponse is the response for alias add.
type AliasResponse struct {
	Status  string   `json:"status"`
	ID      string   `json:"id"`
	Aliases []string `json:"aliases"`
}

func runAliasAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cat := mustOpenCatalog(repoRoot)

	id, alias := args[0], args[1]
	if _, ok := cat.Get(id); !ok {
		exitWithError(ExitNotFound, "work not found: %s", id)
	}
	action, err := cat.AppendAlias(id, alias)
	if err != nil {
		exitWithError(ExitError, "adding alias: %v", err)
	}
	mustSaveCatalog(repoRoot, cat)

	rec, _ := cat.Get(id)
	if humanOutput {
		fmt.Printf("%s: %s\n", id, action)
	} else {
		outputJSON(AliasResponse{Status: string(action), ID: id, Aliases: rec.Aliases})
	}
	return nil
}
