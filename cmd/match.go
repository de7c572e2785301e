package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
	"github.com/dimkit/dimkit/units/trace"
)

var (
	factorArgs []string // Factor selectors, "unit:M:2" or "unit:M^2"
	explain    bool     // Print the match exploration
	searchMode string   // DerivedUnits search mode
)

// parseSelectors parses every --factor value.
func parseSelectors(raw []string) ([]units.FactorSelector, error) {
	selectors := make([]units.FactorSelector, 0, len(raw))
	for _, s := range raw {
		sel, err := units.ParseFactorSelector(s)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", s, err)
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

// --- dimkit match ---

var matchCmd = &cobra.Command{
	Use:   "match UNIT",
	Short: "Check whether a unit's structure matches a set of factor selectors",
	Example: "  dimkit match unit:N --factor unit:KiloGM:1 --factor unit:M:1 --factor unit:SEC:-2\n" +
		"  dimkit match unit:KiloN --factor unit:KiloGM --factor unit:M --factor unit:SEC^-2 --explain",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, cfg := openCatalog(cmd)
		selectors, err := parseSelectors(factorArgs)
		if err != nil {
			logrus.Fatalf("Invalid selector: %v", err)
		}
		if !explain {
			ok, err := c.Matches(args[0], selectors)
			if err != nil {
				logrus.Fatalf("Match failed: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return
		}
		tc := cfg.MatchTraceConfig()
		if tc.Level == "" || tc.Level == trace.TraceLevelNone {
			tc.Level = trace.TraceLevelSteps
		}
		ok, mt, err := c.ExplainMatch(args[0], selectors, tc)
		if err != nil {
			logrus.Fatalf("Match failed: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		writeTrace(cmd.OutOrStdout(), mt)
	},
}

// writeTrace prints the steps, outcomes and summary of a match trace.
func writeTrace(w io.Writer, mt *trace.MatchTrace) {
	if mt == nil {
		return
	}
	fmt.Fprintf(w, "=== Match Trace: %s ===\n", mt.UnitID)
	for _, s := range mt.Steps {
		path := s.Path
		if path == "" {
			path = "."
		}
		fmt.Fprintf(w, "  %-10s %-16s %-28s exp=%-3d remaining=%d scale=%s\n",
			path, s.Action, s.UnitID, s.Exponent, s.Remaining, s.Scale)
	}
	if mt.Dropped > 0 {
		fmt.Fprintf(w, "  ... %d steps dropped\n", mt.Dropped)
	}
	for i, o := range mt.Outcomes {
		fmt.Fprintf(w, "  candidate %d: consumed=[%s] scale=%s complete=%t matched=%t\n",
			i, strings.Join(o.Consumed, " "), o.Scale, o.Complete, o.Matched)
	}
	sum := trace.Summarize(mt)
	fmt.Fprintf(w, "Steps: %d (consume %d, descend %d), max depth %d\n",
		sum.TotalSteps, sum.Consumptions, sum.Descents, sum.MaxDepth)
	fmt.Fprintf(w, "Candidates: %d (complete %d, matched %d)\n",
		sum.Candidates, sum.CompleteCount, sum.MatchedCount)
}

// --- dimkit derived ---

var derivedCmd = &cobra.Command{
	Use:   "derived",
	Short: "List catalogued units composed of the given factors",
	Long: `List the units whose factor structure satisfies the selectors.
Modes: exact (literal factor list), best_match (structure explained by the
selectors), all (same recursive canonical expansion).`,
	Example: "  dimkit derived --mode best_match --factor unit:N --factor unit:M",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openCatalog(cmd)
		mode, err := units.ParseSearchMode(searchMode)
		if err != nil {
			logrus.Fatalf("Invalid mode: %v", err)
		}
		selectors, err := parseSelectors(factorArgs)
		if err != nil {
			logrus.Fatalf("Invalid selector: %v", err)
		}
		found, err := c.DerivedUnits(mode, selectors)
		if err != nil {
			logrus.Fatalf("Search failed: %v", err)
		}
		writeUnitList(cmd.OutOrStdout(), found)
	},
}

// writeUnitList prints one unit per line: ID, symbol and English label.
func writeUnitList(w io.Writer, us []*units.Unit) {
	for _, u := range us {
		fmt.Fprintf(w, "%-28s %-10s %s\n", u.ID(), u.Symbol(), u.Label("en"))
	}
}

func init() {
	matchCmd.Flags().StringArrayVar(&factorArgs, "factor", nil, "Factor selector UNIT:EXP or UNIT^EXP (repeatable)")
	matchCmd.Flags().BoolVar(&explain, "explain", false, "Print the match exploration trace")
	derivedCmd.Flags().StringArrayVar(&factorArgs, "factor", nil, "Factor selector UNIT:EXP or UNIT^EXP (repeatable)")
	derivedCmd.Flags().StringVar(&searchMode, "mode", "best_match", "Search mode (exact, best_match, all)")
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(derivedCmd)
}
