package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
)

var (
	searchPrefix     bool   // Match every label starting with the query
	searchIgnoreCase bool   // Compare labels case-insensitively
	searchKind       string // Entity type to search: unit or quantitykind
)

// --- dimkit search ---

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Find units or quantity kinds by label, symbol or local name",
	Example: "  dimkit search km\n  dimkit search kilo --prefix --ignore-case\n" +
		"  dimkit search length --kind quantitykind --ignore-case",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openCatalog(cmd)
		if err := runSearch(cmd.OutOrStdout(), c, args[0], searchKind, searchFlags(searchPrefix, searchIgnoreCase)); err != nil {
			logrus.Fatalf("Search failed: %v", err)
		}
	},
}

func searchFlags(prefix, ignoreCase bool) units.SearchFlags {
	var flags units.SearchFlags
	if prefix {
		flags |= units.MatchPrefix
	}
	if ignoreCase {
		flags |= units.IgnoreCase
	}
	return flags
}

// runSearch prints the matching entities of the requested kind.
func runSearch(w io.Writer, c *units.Catalog, query, kind string, flags units.SearchFlags) error {
	switch kind {
	case "unit", "":
		writeUnitList(w, c.SearchUnits(query, flags))
	case "quantitykind":
		for _, q := range c.SearchQuantityKinds(query, flags) {
			fmt.Fprintf(w, "%-28s %s\n", q.ID(), q.Label("en"))
		}
	default:
		return fmt.Errorf("unknown kind %q; valid: unit, quantitykind", kind)
	}
	return nil
}

func init() {
	searchCmd.Flags().BoolVar(&searchPrefix, "prefix", false, "Match labels starting with QUERY")
	searchCmd.Flags().BoolVar(&searchIgnoreCase, "ignore-case", false, "Ignore case when comparing labels")
	searchCmd.Flags().StringVar(&searchKind, "kind", "unit", "Entity type to search (unit, quantitykind)")
	rootCmd.AddCommand(searchCmd)
}
