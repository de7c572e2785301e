package units

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// Metadata is the descriptive part shared by every entity definition.
type Metadata struct {
	Labels        []LangString
	Description   string
	ExactMatchIDs []string
}

// Definition is an unconnected entity: scalar fields plus unresolved IDs.
// C is the entity-specific configuration (UnitConfig, QuantityKindConfig, ...).
type Definition[C any] struct {
	ID string
	Metadata
	Config C
}

// PrefixConfig holds the scalar fields of a prefix.
type PrefixConfig struct {
	Multiplier *big.Rat
	Symbol     string
	UCUMCode   string
}

// UnitConfig holds the scalar fields and outgoing references of a unit.
type UnitConfig struct {
	PrefixID        string
	ScalingOfID     string
	Multiplier      *big.Rat // nil = derive (scaled/derived units) or unknown
	Offset          *big.Rat
	Dimension       string // canonical vector; "" = derive from structure
	Symbol          string
	UCUMCode        string
	QuantityKindIDs []string
	FactorUnits     FactorUnits
}

// QuantityKindConfig holds the scalar fields and references of a quantity kind.
type QuantityKindConfig struct {
	Dimension         string
	Symbol            string
	ApplicableUnitIDs []string
	BroaderIDs        []string
}

// SystemOfUnitsConfig holds the membership of a system of units.
type SystemOfUnitsConfig struct {
	Abbreviation string
	UnitIDs      []string
	BaseUnitIDs  []string
}

type (
	PrefixDefinition        = Definition[PrefixConfig]
	UnitDefinition          = Definition[UnitConfig]
	QuantityKindDefinition  = Definition[QuantityKindConfig]
	SystemOfUnitsDefinition = Definition[SystemOfUnitsConfig]
)

// EntityBuilder assembles a Definition fluently. It is shared by the unit and
// quantity-kind contribution flows; only the configuration type differs.
type EntityBuilder[C any] struct {
	def  Definition[C]
	errs []string
}

// NewEntityBuilder starts a definition for id with the given configuration.
func NewEntityBuilder[C any](id string, config C) *EntityBuilder[C] {
	b := &EntityBuilder[C]{def: Definition[C]{ID: id, Config: config}}
	if strings.TrimSpace(id) == "" {
		b.errs = append(b.errs, "empty id")
	}
	return b
}

// NewUnitBuilder starts a unit definition.
func NewUnitBuilder(id string) *EntityBuilder[UnitConfig] {
	return NewEntityBuilder(id, UnitConfig{})
}

// NewQuantityKindBuilder starts a quantity kind definition.
func NewQuantityKindBuilder(id string) *EntityBuilder[QuantityKindConfig] {
	return NewEntityBuilder(id, QuantityKindConfig{})
}

// Label adds a language-tagged label. A second label for the same language
// replaces the first.
func (b *EntityBuilder[C]) Label(text, lang string) *EntityBuilder[C] {
	if strings.TrimSpace(text) == "" {
		b.errs = append(b.errs, fmt.Sprintf("empty label for language %q", lang))
		return b
	}
	b.def.Labels = slices.DeleteFunc(b.def.Labels, func(l LangString) bool { return l.Lang == lang })
	b.def.Labels = append(b.def.Labels, LangString{Text: text, Lang: lang})
	return b
}

// Description sets the free-text description.
func (b *EntityBuilder[C]) Description(text string) *EntityBuilder[C] {
	b.def.Description = text
	return b
}

// ExactMatch records an equivalent entity ID.
func (b *EntityBuilder[C]) ExactMatch(id string) *EntityBuilder[C] {
	b.def.ExactMatchIDs = append(b.def.ExactMatchIDs, id)
	return b
}

// Configure mutates the entity-specific configuration.
func (b *EntityBuilder[C]) Configure(fn func(*C)) *EntityBuilder[C] {
	fn(&b.def.Config)
	return b
}

// Definition returns the assembled definition, or an ArgumentError listing
// every problem recorded along the way.
func (b *EntityBuilder[C]) Definition() (Definition[C], error) {
	if len(b.errs) > 0 {
		return Definition[C]{}, &ArgumentError{Arg: "definition " + b.def.ID, Reason: strings.Join(b.errs, "; ")}
	}
	def := b.def
	def.Labels = slices.Clone(def.Labels)
	slices.SortFunc(def.Labels, func(x, y LangString) int { return strings.Compare(x.Lang, y.Lang) })
	def.ExactMatchIDs = sortedSet(def.ExactMatchIDs)
	return def, nil
}
