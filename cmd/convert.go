package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
)

var (
	precision uint32 // Significant digits of rounded output; 0 keeps results exact
	rounding  string // Rounding mode applied with --precision
)

// --- dimkit convert ---

var convertCmd = &cobra.Command{
	Use:   "convert AMOUNT FROM TO",
	Short: "Convert an amount between two units of the same dimension",
	Long: `Convert an exact amount between two catalogued units, applying multipliers and
temperature offsets. Results are exact fractions unless --precision is given.`,
	Example: "  dimkit convert 100 unit:DEG_C unit:DEG_F\n  dimkit convert 1 unit:KiloM-PER-HR unit:M-PER-SEC --precision 4",
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		c, cfg := openCatalog(cmd)
		pc, err := resolvePrecision(cfg, precision, cmd.Flags().Changed("precision"), rounding, cmd.Flags().Changed("rounding"))
		if err != nil {
			logrus.Fatalf("Invalid precision: %v", err)
		}
		out, err := c.ConvertDecimal(args[0], args[1], args[2], pc)
		if err != nil {
			logrus.Fatalf("Conversion failed: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", out, displaySymbol(c, args[2]))
	},
}

// displaySymbol returns the unit's symbol, or its ID when it has none.
func displaySymbol(c *units.Catalog, id string) string {
	u, err := c.Unit(id)
	if err != nil || u.Symbol() == "" {
		return id
	}
	return u.Symbol()
}

// addPrecisionFlags registers --precision and --rounding on cmd.
func addPrecisionFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&precision, "precision", 0, "Significant digits of the result (0 = exact)")
	cmd.Flags().StringVar(&rounding, "rounding", "", fmt.Sprintf("Rounding mode with --precision (%v)", units.ValidRoundings()))
}

func init() {
	addPrecisionFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
