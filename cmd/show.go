package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dimkit/dimkit/units"
)

// unitView is the YAML rendering of a unit.
type unitView struct {
	ID            string            `yaml:"id"`
	Symbol        string            `yaml:"symbol,omitempty"`
	UCUM          string            `yaml:"ucum,omitempty"`
	Labels        map[string]string `yaml:"labels,omitempty"`
	Dimension     string            `yaml:"dimension"`
	Multiplier    string            `yaml:"multiplier,omitempty"`
	Offset        string            `yaml:"offset,omitempty"`
	Prefix        string            `yaml:"prefix,omitempty"`
	ScalingOf     string            `yaml:"scaling_of,omitempty"`
	Factors       []string          `yaml:"factors,omitempty"`
	Expansion     []string          `yaml:"expansion,omitempty"`
	QuantityKinds []string          `yaml:"quantity_kinds,omitempty"`
	Systems       []string          `yaml:"systems,omitempty"`
	ExactMatch    []string          `yaml:"exact_match,omitempty"`
	Description   string            `yaml:"description,omitempty"`
}

// quantityKindView is the YAML rendering of a quantity kind.
type quantityKindView struct {
	ID              string            `yaml:"id"`
	Symbol          string            `yaml:"symbol,omitempty"`
	Labels          map[string]string `yaml:"labels,omitempty"`
	Dimension       string            `yaml:"dimension,omitempty"`
	ApplicableUnits []string          `yaml:"applicable_units,omitempty"`
	Broader         []string          `yaml:"broader,omitempty"`
	Description     string            `yaml:"description,omitempty"`
}

// systemView is the YAML rendering of a system of units.
type systemView struct {
	ID           string            `yaml:"id"`
	Abbreviation string            `yaml:"abbreviation,omitempty"`
	Labels       map[string]string `yaml:"labels,omitempty"`
	BaseUnits    []string          `yaml:"base_units,omitempty"`
	Units        []string          `yaml:"units,omitempty"`
}

// prefixView is the YAML rendering of a prefix.
type prefixView struct {
	ID         string            `yaml:"id"`
	Multiplier string            `yaml:"multiplier"`
	Symbol     string            `yaml:"symbol,omitempty"`
	UCUM       string            `yaml:"ucum,omitempty"`
	Labels     map[string]string `yaml:"labels,omitempty"`
}

func labelMap(ls []units.LangString) map[string]string {
	if len(ls) == 0 {
		return nil
	}
	m := make(map[string]string, len(ls))
	for _, l := range ls {
		m[l.Lang] = l.Text
	}
	return m
}

func factorStrings(fus units.FactorUnits) []string {
	out := make([]string, len(fus))
	for i, f := range fus {
		out[i] = f.String()
	}
	return out
}

func newUnitView(c *units.Catalog, u *units.Unit) (unitView, error) {
	v := unitView{
		ID:            u.ID(),
		Symbol:        u.Symbol(),
		UCUM:          u.UCUMCode(),
		Labels:        labelMap(u.Labels()),
		Dimension:     u.Dimension().String(),
		Prefix:        u.PrefixID(),
		ScalingOf:     u.ScalingOfID(),
		Factors:       factorStrings(u.FactorUnits()),
		QuantityKinds: u.QuantityKindIDs(),
		Systems:       u.SystemOfUnitsIDs(),
		ExactMatch:    u.ExactMatchIDs(),
		Description:   u.Description(),
	}
	if m, ok := u.Multiplier(); ok {
		v.Multiplier = units.FormatRat(m)
	}
	if u.HasOffset() {
		v.Offset = units.FormatRat(u.Offset())
	}
	if u.IsDerived() {
		exp, err := c.Expand(u.ID())
		if err != nil {
			return unitView{}, err
		}
		v.Expansion = factorStrings(exp)
	}
	return v, nil
}

func newQuantityKindView(q *units.QuantityKind) quantityKindView {
	v := quantityKindView{
		ID:              q.ID(),
		Symbol:          q.Symbol(),
		Labels:          labelMap(q.Labels()),
		ApplicableUnits: q.ApplicableUnitIDs(),
		Broader:         q.BroaderIDs(),
		Description:     q.Description(),
	}
	if dv, ok := q.Dimension(); ok {
		v.Dimension = dv.String()
	}
	return v
}

// describe returns the view of whichever entity id names.
func describe(c *units.Catalog, id string) (any, error) {
	u, err := c.Unit(id)
	if err == nil {
		return newUnitView(c, u)
	}
	if !errors.Is(err, units.ErrNotFound) {
		return nil, err
	}
	if q, err := c.QuantityKind(id); err == nil {
		return newQuantityKindView(q), nil
	}
	if s, err := c.SystemOfUnits(id); err == nil {
		return systemView{
			ID:           s.ID(),
			Abbreviation: s.Abbreviation(),
			Labels:       labelMap(s.Labels()),
			BaseUnits:    s.BaseUnitIDs(),
			Units:        s.UnitIDs(),
		}, nil
	}
	if p, err := c.Prefix(id); err == nil {
		return prefixView{
			ID:         p.ID(),
			Multiplier: units.FormatRat(p.Multiplier()),
			Symbol:     p.Symbol(),
			UCUM:       p.UCUMCode(),
			Labels:     labelMap(p.Labels()),
		}, nil
	}
	return nil, fmt.Errorf("no unit, quantity kind, system of units or prefix %q: %w", id, units.ErrNotFound)
}

// writeYAML marshals v to w.
func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// --- dimkit show ---

var showCmd = &cobra.Command{
	Use:     "show ID",
	Short:   "Print a unit, quantity kind, system of units or prefix as YAML",
	Example: "  dimkit show unit:KiloM-PER-HR\n  dimkit show quantitykind:Velocity",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openCatalog(cmd)
		v, err := describe(c, args[0])
		if err != nil {
			logrus.Fatalf("Lookup failed: %v", err)
		}
		if err := writeYAML(cmd.OutOrStdout(), v); err != nil {
			logrus.Fatalf("Failed to write output: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
