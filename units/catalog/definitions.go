// Package catalog loads unit catalogs from YAML and builds units.Catalog
// values from them. An embedded default catalog covers the SI base and
// common derived, imperial and temperature units.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"math/big"
	"os"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dimkit/dimkit/units"
	_ "github.com/dimkit/dimkit/units/search" // registers units.NewLabelIndexFunc
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// File is the YAML catalog format.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type File struct {
	Version       string             `yaml:"version"`
	Prefixes      []PrefixSpec       `yaml:"prefixes"`
	Units         []UnitSpec         `yaml:"units"`
	QuantityKinds []QuantityKindSpec `yaml:"quantity_kinds"`
	Systems       []SystemSpec       `yaml:"systems"`
}

// Labels maps a language tag to a label.
type Labels map[string]string

// PrefixSpec describes a prefix. Multiplier is an exact number ("1e-6").
type PrefixSpec struct {
	ID         string `yaml:"id"`
	Multiplier string `yaml:"multiplier"`
	Symbol     string `yaml:"symbol"`
	UCUM       string `yaml:"ucum"`
	Labels     Labels `yaml:"labels"`
}

// UnitSpec describes a unit. Empty fields are derived during Build where the
// unit's structure allows it.
type UnitSpec struct {
	ID            string       `yaml:"id"`
	Prefix        string       `yaml:"prefix"`
	ScalingOf     string       `yaml:"scaling_of"`
	Multiplier    string       `yaml:"multiplier"`
	Offset        string       `yaml:"offset"`
	Dimension     string       `yaml:"dimension"`
	Symbol        string       `yaml:"symbol"`
	UCUM          string       `yaml:"ucum"`
	Description   string       `yaml:"description"`
	Labels        Labels       `yaml:"labels"`
	QuantityKinds []string     `yaml:"quantity_kinds"`
	Factors       []FactorSpec `yaml:"factors"`
	ExactMatch    []string     `yaml:"exact_match"`
}

// FactorSpec is one factor unit of a derived unit.
type FactorSpec struct {
	Unit     string `yaml:"unit"`
	Exponent int    `yaml:"exponent"`
}

// QuantityKindSpec describes a quantity kind.
type QuantityKindSpec struct {
	ID              string   `yaml:"id"`
	Dimension       string   `yaml:"dimension"`
	Symbol          string   `yaml:"symbol"`
	Description     string   `yaml:"description"`
	Labels          Labels   `yaml:"labels"`
	ApplicableUnits []string `yaml:"applicable_units"`
	Broader         []string `yaml:"broader"`
}

// SystemSpec describes a system of units.
type SystemSpec struct {
	ID           string   `yaml:"id"`
	Abbreviation string   `yaml:"abbreviation"`
	Labels       Labels   `yaml:"labels"`
	Units        []string `yaml:"units"`
	BaseUnits    []string `yaml:"base_units"`
}

// validVersions lists the catalog format versions this loader reads.
var validVersions = map[string]bool{"": true, "1": true}

// Parse decodes a catalog with strict field checking: unknown keys are errors.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Validate checks the literal values of every entry. Cross-references are
// checked by units.Builder.Build.
func (f *File) Validate() error {
	if !validVersions[f.Version] {
		return fmt.Errorf("unsupported catalog version %q", f.Version)
	}
	for _, p := range f.Prefixes {
		if p.ID == "" {
			return fmt.Errorf("prefix without id")
		}
		if p.Multiplier == "" {
			return fmt.Errorf("prefix %s: multiplier is required", p.ID)
		}
		if _, err := units.ParseRat(p.Multiplier); err != nil {
			return fmt.Errorf("prefix %s: %w", p.ID, err)
		}
	}
	for _, u := range f.Units {
		if u.ID == "" {
			return fmt.Errorf("unit without id")
		}
		for _, lit := range []string{u.Multiplier, u.Offset} {
			if lit == "" {
				continue
			}
			if _, err := units.ParseRat(lit); err != nil {
				return fmt.Errorf("unit %s: %w", u.ID, err)
			}
		}
		if u.Dimension != "" {
			if _, err := units.ParseDimensionVector(u.Dimension); err != nil {
				return fmt.Errorf("unit %s: %w", u.ID, err)
			}
		}
		for _, fs := range u.Factors {
			if fs.Unit == "" {
				return fmt.Errorf("unit %s: factor without unit", u.ID)
			}
			if fs.Exponent == 0 {
				return fmt.Errorf("unit %s: factor %s has exponent 0", u.ID, fs.Unit)
			}
		}
	}
	for _, q := range f.QuantityKinds {
		if q.ID == "" {
			return fmt.Errorf("quantity kind without id")
		}
		if q.Dimension != "" {
			if _, err := units.ParseDimensionVector(q.Dimension); err != nil {
				return fmt.Errorf("quantity kind %s: %w", q.ID, err)
			}
		}
	}
	for _, s := range f.Systems {
		if s.ID == "" {
			return fmt.Errorf("system of units without id")
		}
	}
	return nil
}

// applyLabels adds labels in language order so definitions are deterministic.
func applyLabels[C any](b *units.EntityBuilder[C], labels Labels) {
	langs := make([]string, 0, len(labels))
	for lang := range labels {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		b.Label(labels[lang], lang)
	}
}

func langStrings(labels Labels) []units.LangString {
	out := make([]units.LangString, 0, len(labels))
	for lang, text := range labels {
		out = append(out, units.LangString{Text: text, Lang: lang})
	}
	slices.SortFunc(out, func(a, b units.LangString) int { return strings.Compare(a.Lang, b.Lang) })
	return out
}

func optionalRat(s string) (*big.Rat, error) {
	if s == "" {
		return nil, nil
	}
	return units.ParseRat(s)
}

// UnitDefinition converts a unit entry into a definition.
func (u UnitSpec) UnitDefinition() (units.UnitDefinition, error) {
	m, err := optionalRat(u.Multiplier)
	if err != nil {
		return units.UnitDefinition{}, fmt.Errorf("unit %s: %w", u.ID, err)
	}
	off, err := optionalRat(u.Offset)
	if err != nil {
		return units.UnitDefinition{}, fmt.Errorf("unit %s: %w", u.ID, err)
	}
	factors := make(units.FactorUnits, 0, len(u.Factors))
	for _, f := range u.Factors {
		factors = append(factors, units.FactorUnit{UnitID: f.Unit, Exponent: f.Exponent})
	}
	b := units.NewUnitBuilder(u.ID).
		Description(u.Description).
		Configure(func(c *units.UnitConfig) {
			c.PrefixID = u.Prefix
			c.ScalingOfID = u.ScalingOf
			c.Multiplier = m
			c.Offset = off
			c.Dimension = u.Dimension
			c.Symbol = u.Symbol
			c.UCUMCode = u.UCUM
			c.QuantityKindIDs = u.QuantityKinds
			c.FactorUnits = factors
		})
	applyLabels(b, u.Labels)
	for _, id := range u.ExactMatch {
		b.ExactMatch(id)
	}
	return b.Definition()
}

// QuantityKindDefinition converts a quantity kind entry into a definition.
func (q QuantityKindSpec) QuantityKindDefinition() (units.QuantityKindDefinition, error) {
	b := units.NewQuantityKindBuilder(q.ID).
		Description(q.Description).
		Configure(func(c *units.QuantityKindConfig) {
			c.Dimension = q.Dimension
			c.Symbol = q.Symbol
			c.ApplicableUnitIDs = q.ApplicableUnits
			c.BroaderIDs = q.Broader
		})
	applyLabels(b, q.Labels)
	return b.Definition()
}

// Populate queues every entry of f on b.
func (f *File) Populate(b *units.Builder) error {
	if err := f.Validate(); err != nil {
		return err
	}
	for _, p := range f.Prefixes {
		m, err := units.ParseRat(p.Multiplier)
		if err != nil {
			return fmt.Errorf("prefix %s: %w", p.ID, err)
		}
		err = b.AddPrefix(units.PrefixDefinition{
			ID:       p.ID,
			Metadata: units.Metadata{Labels: langStrings(p.Labels)},
			Config:   units.PrefixConfig{Multiplier: m, Symbol: p.Symbol, UCUMCode: p.UCUM},
		})
		if err != nil {
			return err
		}
	}
	for _, u := range f.Units {
		def, err := u.UnitDefinition()
		if err != nil {
			return err
		}
		if err := b.AddUnit(def); err != nil {
			return err
		}
	}
	for _, q := range f.QuantityKinds {
		def, err := q.QuantityKindDefinition()
		if err != nil {
			return err
		}
		if err := b.AddQuantityKind(def); err != nil {
			return err
		}
	}
	for _, s := range f.Systems {
		err := b.AddSystemOfUnits(units.SystemOfUnitsDefinition{
			ID:       s.ID,
			Metadata: units.Metadata{Labels: langStrings(s.Labels)},
			Config:   units.SystemOfUnitsConfig{Abbreviation: s.Abbreviation, UnitIDs: s.Units, BaseUnitIDs: s.BaseUnits},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Contribution converts the units and quantity kinds of f into a set for
// Catalog.Append. Prefixes and systems are not accepted at runtime.
func (f *File) Contribution() (units.ContributionSet, error) {
	if len(f.Prefixes) > 0 || len(f.Systems) > 0 {
		return units.ContributionSet{}, fmt.Errorf("contributions may only add units and quantity kinds")
	}
	if err := f.Validate(); err != nil {
		return units.ContributionSet{}, err
	}
	var set units.ContributionSet
	for _, u := range f.Units {
		def, err := u.UnitDefinition()
		if err != nil {
			return units.ContributionSet{}, err
		}
		set.Units = append(set.Units, def)
	}
	for _, q := range f.QuantityKinds {
		def, err := q.QuantityKindDefinition()
		if err != nil {
			return units.ContributionSet{}, err
		}
		set.QuantityKinds = append(set.QuantityKinds, def)
	}
	return set, nil
}

// Build validates f and builds a catalog from it.
func (f *File) Build(opts ...units.Option) (*units.Catalog, error) {
	b := units.NewBuilder()
	if err := f.Populate(b); err != nil {
		return nil, err
	}
	return b.Build(opts...)
}

// Default builds the embedded catalog.
func Default(opts ...units.Option) (*units.Catalog, error) {
	f, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return f.Build(opts...)
}

// Load builds the catalog at path, or the embedded catalog when path is empty.
func Load(path string, opts ...units.Option) (*units.Catalog, error) {
	if path == "" {
		return Default(opts...)
	}
	logrus.Debugf("loading catalog from %s", path)
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Build(opts...)
}
