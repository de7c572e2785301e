package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
	"github.com/dimkit/dimkit/units/catalog"
)

// receiptView is the YAML rendering of an applied contribution.
type receiptView struct {
	ID            string   `yaml:"id"`
	AppliedAt     string   `yaml:"applied_at"`
	Units         []string `yaml:"units,omitempty"`
	QuantityKinds []string `yaml:"quantity_kinds,omitempty"`
	CatalogUnits  int      `yaml:"catalog_units"`
}

// contribute appends the units and quantity kinds of the catalog file at path.
func contribute(c *units.Catalog, path string) (receiptView, error) {
	f, err := catalog.LoadFile(path)
	if err != nil {
		return receiptView{}, err
	}
	set, err := f.Contribution()
	if err != nil {
		return receiptView{}, err
	}
	rec, err := c.Append(set)
	if err != nil {
		return receiptView{}, err
	}
	return receiptView{
		ID:            rec.ID.String(),
		AppliedAt:     rec.AppliedAt.UTC().Format(time.RFC3339),
		Units:         rec.UnitIDs,
		QuantityKinds: rec.QuantityKindIDs,
		CatalogUnits:  len(c.Units()),
	}, nil
}

// --- dimkit contribute ---

var contributeCmd = &cobra.Command{
	Use:   "contribute FILE",
	Short: "Validate a contribution file against the catalog and print its receipt",
	Long: `Connect the units and quantity kinds of a catalog-format YAML file against the
loaded catalog. The contribution is all-or-nothing: dangling references, cycles
and duplicate IDs reject the whole file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openCatalog(cmd)
		rec, err := contribute(c, args[0])
		if err != nil {
			logrus.Fatalf("Contribution rejected: %v", err)
		}
		if err := writeYAML(cmd.OutOrStdout(), rec); err != nil {
			logrus.Fatalf("Failed to write output: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(contributeCmd)
}
