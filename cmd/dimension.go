package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
)

var (
	dimensionIRI   bool // Print the vector as an IRI
	dimensionUnits bool // List catalogued units sharing the dimension
)

// --- dimkit dimension ---

var dimensionCmd = &cobra.Command{
	Use:     "dimension UNIT_EXPR",
	Short:   "Print the dimension vector of a unit or product of units",
	Example: "  dimkit dimension unit:J\n  dimkit dimension 'unit:KiloGM*unit:M^2*unit:SEC^-2' --units",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openCatalog(cmd)
		if err := runDimension(cmd.OutOrStdout(), c, args[0], dimensionIRI, dimensionUnits); err != nil {
			logrus.Fatalf("Dimension failed: %v", err)
		}
	},
}

func runDimension(w io.Writer, c *units.Catalog, expr string, iri, listUnits bool) error {
	fus, err := parseUnitExpr(expr)
	if err != nil {
		return err
	}
	dv, err := c.DimensionOf(fus)
	if err != nil {
		return err
	}
	if iri {
		fmt.Fprintln(w, dv.IRI())
	} else {
		fmt.Fprintln(w, dv.String())
	}
	if listUnits {
		writeUnitList(w, c.UnitsWithDimension(dv))
	}
	return nil
}

// --- dimkit compose ---

var composeCmd = &cobra.Command{
	Use:     "compose UNIT_EXPR",
	Short:   "Print the symbol, UCUM code, local name and labels composed for a product of units",
	Example: "  dimkit compose 'unit:KiloGM*unit:M*unit:SEC^-2'",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openCatalog(cmd)
		if err := runCompose(cmd.OutOrStdout(), c, args[0]); err != nil {
			logrus.Fatalf("Compose failed: %v", err)
		}
	},
}

// composedView is the YAML rendering of a composed product.
type composedView struct {
	Factors   []string          `yaml:"factors"`
	Symbol    string            `yaml:"symbol"`
	UCUM      string            `yaml:"ucum,omitempty"`
	LocalName string            `yaml:"local_name"`
	Labels    map[string]string `yaml:"labels,omitempty"`
	Dimension string            `yaml:"dimension"`
}

func runCompose(w io.Writer, c *units.Catalog, expr string) error {
	fus, err := parseUnitExpr(expr)
	if err != nil {
		return err
	}
	dv, err := c.DimensionOf(fus)
	if err != nil {
		return err
	}
	sym, err := c.Symbol(fus)
	if err != nil {
		return err
	}
	v := composedView{
		Factors:   factorStrings(units.Canonicalize(fus)),
		Symbol:    sym,
		LocalName: c.LocalName(fus),
		Labels:    labelMap(c.Labels(fus)),
		Dimension: dv.String(),
	}
	// Factors without UCUM codes leave the code empty.
	if code, err := c.UCUMCode(fus); err == nil {
		v.UCUM = code
	}
	return writeYAML(w, v)
}

func init() {
	dimensionCmd.Flags().BoolVar(&dimensionIRI, "iri", false, "Print the dimension vector IRI")
	dimensionCmd.Flags().BoolVar(&dimensionUnits, "units", false, "List catalogued units with the same dimension")
	rootCmd.AddCommand(dimensionCmd)
	rootCmd.AddCommand(composeCmd)
}
