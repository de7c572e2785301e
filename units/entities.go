package units

import (
	"math/big"
	"slices"
	"strings"
)

// ID prefixes used by the catalog. IDs are opaque strings; the prefixes only
// drive LocalName.
const (
	UnitIDPrefix         = "unit:"
	PrefixIDPrefix       = "prefix:"
	QuantityKindIDPrefix = "quantitykind:"
	SystemIDPrefix       = "sou:"
)

// LangString is a text value with an optional BCP 47 language tag.
type LangString struct {
	Text string
	Lang string
}

// LocalName strips the namespace prefix of an entity ID ("unit:KiloM" -> "KiloM").
func LocalName(id string) string {
	if i := strings.LastIndexAny(id, ":/#"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func labelFor(labels []LangString, lang string) (string, bool) {
	for _, l := range labels {
		if l.Lang == lang {
			return l.Text, true
		}
	}
	return "", false
}

// Prefix is a decimal or binary multiplier applied to a unit (kilo, milli, kibi).
type Prefix struct {
	id         string
	multiplier *big.Rat
	symbol     string
	ucumCode   string
	labels     []LangString
}

func (p *Prefix) ID() string               { return p.id }
func (p *Prefix) Multiplier() *big.Rat     { return copyRat(p.multiplier) }
func (p *Prefix) Symbol() string           { return p.symbol }
func (p *Prefix) UCUMCode() string         { return p.ucumCode }
func (p *Prefix) Labels() []LangString     { return slices.Clone(p.labels) }
func (p *Prefix) Label(lang string) string { s, _ := labelFor(p.labels, lang); return s }

// Unit is a catalogued unit of measure. A unit is scaled when it has both a
// prefix and a scalingOf base, and derived when it has factor units.
type Unit struct {
	id              string
	prefixID        string
	scalingOfID     string
	multiplier      *big.Rat
	offset          *big.Rat
	dimension       DimensionVector
	symbol          string
	ucumCode        string
	description     string
	labels          []LangString
	quantityKindIDs []string
	factorUnits     FactorUnits
	exactMatchIDs   []string
	systemIDs       []string
}

func (u *Unit) ID() string { return u.id }

// PrefixID returns the prefix of a scaled unit, or "".
func (u *Unit) PrefixID() string { return u.prefixID }

// ScalingOfID returns the base unit of a scaled unit, or "".
func (u *Unit) ScalingOfID() string { return u.scalingOfID }

// IsScaled reports whether the unit is a prefix applied to a base unit.
func (u *Unit) IsScaled() bool { return u.prefixID != "" && u.scalingOfID != "" }

// IsDerived reports whether the unit has its own factor-unit decomposition.
func (u *Unit) IsDerived() bool { return len(u.factorUnits) > 0 }

// Multiplier returns the factor converting one of this unit into the
// coherent SI unit of its dimension. ok is false when the catalog has none.
func (u *Unit) Multiplier() (m *big.Rat, ok bool) {
	return copyRat(u.multiplier), u.multiplier != nil
}

// Offset returns the additive offset of an absolute-scale unit (zero if none).
func (u *Unit) Offset() *big.Rat {
	if u.offset == nil {
		return new(big.Rat)
	}
	return copyRat(u.offset)
}

// HasOffset reports whether the unit carries a non-zero offset.
func (u *Unit) HasOffset() bool { return u.offset != nil && u.offset.Sign() != 0 }

func (u *Unit) Dimension() DimensionVector { return u.dimension }
func (u *Unit) Symbol() string             { return u.symbol }
func (u *Unit) UCUMCode() string           { return u.ucumCode }
func (u *Unit) Description() string        { return u.description }
func (u *Unit) Labels() []LangString       { return slices.Clone(u.labels) }
func (u *Unit) Label(lang string) string   { s, _ := labelFor(u.labels, lang); return s }
func (u *Unit) QuantityKindIDs() []string  { return slices.Clone(u.quantityKindIDs) }
func (u *Unit) FactorUnits() FactorUnits   { return slices.Clone(u.factorUnits) }
func (u *Unit) ExactMatchIDs() []string    { return slices.Clone(u.exactMatchIDs) }
func (u *Unit) SystemOfUnitsIDs() []string { return slices.Clone(u.systemIDs) }
func (u *Unit) LocalName() string          { return LocalName(u.id) }
func (u *Unit) String() string             { return u.id }

// offsetForConversion applies offsets only to absolute-scale units; derived
// (ratio) units never carry their offset into a conversion.
func (u *Unit) offsetForConversion() *big.Rat {
	if u.offset == nil || u.IsDerived() {
		return new(big.Rat)
	}
	return u.offset
}

func (u *Unit) clone() *Unit {
	c := *u
	c.labels = slices.Clone(u.labels)
	c.quantityKindIDs = slices.Clone(u.quantityKindIDs)
	c.factorUnits = slices.Clone(u.factorUnits)
	c.exactMatchIDs = slices.Clone(u.exactMatchIDs)
	c.systemIDs = slices.Clone(u.systemIDs)
	return &c
}

// QuantityKind classifies what a unit measures ("Length", "Force").
type QuantityKind struct {
	id                string
	dimension         DimensionVector
	hasDimension      bool
	symbol            string
	description       string
	labels            []LangString
	applicableUnitIDs []string
	broaderIDs        []string
}

func (q *QuantityKind) ID() string { return q.id }

// Dimension returns the kind's dimension vector; ok is false when undeclared.
func (q *QuantityKind) Dimension() (DimensionVector, bool) { return q.dimension, q.hasDimension }
func (q *QuantityKind) Symbol() string                     { return q.symbol }
func (q *QuantityKind) Description() string                { return q.description }
func (q *QuantityKind) Labels() []LangString               { return slices.Clone(q.labels) }
func (q *QuantityKind) Label(lang string) string           { s, _ := labelFor(q.labels, lang); return s }
func (q *QuantityKind) ApplicableUnitIDs() []string        { return slices.Clone(q.applicableUnitIDs) }
func (q *QuantityKind) BroaderIDs() []string               { return slices.Clone(q.broaderIDs) }
func (q *QuantityKind) String() string                     { return q.id }

func (q *QuantityKind) clone() *QuantityKind {
	c := *q
	c.labels = slices.Clone(q.labels)
	c.applicableUnitIDs = slices.Clone(q.applicableUnitIDs)
	c.broaderIDs = slices.Clone(q.broaderIDs)
	return &c
}

// SystemOfUnits groups the units belonging to a measurement system.
type SystemOfUnits struct {
	id           string
	abbreviation string
	labels       []LangString
	unitIDs      []string
	baseUnitIDs  []string
}

func (s *SystemOfUnits) ID() string               { return s.id }
func (s *SystemOfUnits) Abbreviation() string     { return s.abbreviation }
func (s *SystemOfUnits) Labels() []LangString     { return slices.Clone(s.labels) }
func (s *SystemOfUnits) Label(lang string) string { l, _ := labelFor(s.labels, lang); return l }
func (s *SystemOfUnits) UnitIDs() []string        { return slices.Clone(s.unitIDs) }
func (s *SystemOfUnits) BaseUnitIDs() []string    { return slices.Clone(s.baseUnitIDs) }

// insertSorted adds id to a sorted set, returning the set unchanged if present.
func insertSorted(set []string, id string) []string {
	i, found := slices.BinarySearch(set, id)
	if found {
		return set
	}
	return slices.Insert(set, i, id)
}

func sortedSet(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
