package units

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// FactorUnit is one (unit, exponent) term of a unit decomposition.
type FactorUnit struct {
	UnitID   string
	Exponent int
}

func (f FactorUnit) String() string {
	if f.Exponent == 1 {
		return f.UnitID
	}
	return f.UnitID + "^" + strconv.Itoa(f.Exponent)
}

// ParseFactorUnit parses "unit:M^2" (exponent defaults to 1).
func ParseFactorUnit(s string) (FactorUnit, error) {
	id, exp, found := strings.Cut(strings.TrimSpace(s), "^")
	if id == "" {
		return FactorUnit{}, &ParseError{Input: s, Reason: "missing unit id"}
	}
	if !found {
		return FactorUnit{UnitID: id, Exponent: 1}, nil
	}
	n, err := strconv.Atoi(exp)
	if err != nil {
		return FactorUnit{}, &ParseError{Input: s, Offset: len(id) + 1, Reason: "exponent is not an integer"}
	}
	return FactorUnit{UnitID: id, Exponent: n}, nil
}

// FactorUnits is an ordered product of factor units.
type FactorUnits []FactorUnit

func (fus FactorUnits) String() string {
	parts := make([]string, len(fus))
	for i, f := range fus {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// Canonicalize merges entries for the same unit by summing exponents, drops
// zero results and sorts by unit ID. The input is not modified.
func Canonicalize(fus FactorUnits) FactorUnits {
	sums := make(map[string]int, len(fus))
	for _, f := range fus {
		sums[f.UnitID] += f.Exponent
	}
	out := make(FactorUnits, 0, len(sums))
	for id, exp := range sums {
		if exp != 0 {
			out = append(out, FactorUnit{UnitID: id, Exponent: exp})
		}
	}
	slices.SortFunc(out, func(a, b FactorUnit) int { return strings.Compare(a.UnitID, b.UnitID) })
	return out
}

// Pow multiplies every exponent by n.
func (fus FactorUnits) Pow(n int) FactorUnits {
	out := make(FactorUnits, len(fus))
	for i, f := range fus {
		out[i] = FactorUnit{UnitID: f.UnitID, Exponent: f.Exponent * n}
	}
	return out
}

// Times concatenates two products without merging.
func (fus FactorUnits) Times(o FactorUnits) FactorUnits {
	return append(slices.Clone(fus), o...)
}

// Equal compares two products literally (same order, same exponents).
func (fus FactorUnits) Equal(o FactorUnits) bool {
	return slices.Equal(fus, o)
}

// SameTerms compares two products as multisets of terms without merging
// entries for the same unit.
func (fus FactorUnits) SameTerms(o FactorUnits) bool {
	if len(fus) != len(o) {
		return false
	}
	a, b := slices.Clone(fus), slices.Clone(o)
	slices.SortFunc(a, compareFactor)
	slices.SortFunc(b, compareFactor)
	return slices.Equal(a, b)
}

func compareFactor(a, b FactorUnit) int {
	if c := strings.Compare(a.UnitID, b.UnitID); c != 0 {
		return c
	}
	return a.Exponent - b.Exponent
}

// single reports the unit ID when the product is exactly one unit to the
// first power.
func (fus FactorUnits) single() (string, bool) {
	if len(fus) == 1 && fus[0].Exponent == 1 {
		return fus[0].UnitID, true
	}
	return "", false
}

// dimensionOf sums each unit's declared vector scaled by its exponent.
func (g *graph) dimensionOf(fus FactorUnits) (DimensionVector, error) {
	dv := Dimensionless
	for _, f := range fus {
		u, err := g.unit(f.UnitID)
		if err != nil {
			return DimensionVector{}, err
		}
		dv = dv.Add(u.dimension.Scale(f.Exponent))
	}
	return dv, nil
}

// productMultiplier returns Π multiplier(u_i)^e_i.
func (g *graph) productMultiplier(fus FactorUnits) (*big.Rat, error) {
	out := big.NewRat(1, 1)
	for _, f := range fus {
		u, err := g.unit(f.UnitID)
		if err != nil {
			return nil, err
		}
		if u.multiplier == nil {
			return nil, &MissingConversionDataError{UnitID: u.id}
		}
		out.Mul(out, ratPow(u.multiplier, f.Exponent))
	}
	return out, nil
}

// conversionFactor returns the number of b in one a.
func (g *graph) conversionFactor(a, b FactorUnits) (*big.Rat, error) {
	ca, cb := Canonicalize(a), Canonicalize(b)
	da, err := g.dimensionOf(ca)
	if err != nil {
		return nil, err
	}
	db, err := g.dimensionOf(cb)
	if err != nil {
		return nil, err
	}
	if da != db {
		return nil, &IncompatibleDimensionsError{Left: a.String(), Right: b.String(), LeftDim: da, RightDim: db}
	}
	ma, err := g.productMultiplier(ca)
	if err != nil {
		return nil, err
	}
	mb, err := g.productMultiplier(cb)
	if err != nil {
		return nil, err
	}
	return new(big.Rat).Quo(ma, mb), nil
}

// expand decomposes a product recursively through derived units. Scaled
// units are kept as they are: their magnitude differs from their base.
func (g *graph) expand(fus FactorUnits, path []string) (FactorUnits, error) {
	var out FactorUnits
	for _, f := range fus {
		u, err := g.unit(f.UnitID)
		if err != nil {
			return nil, err
		}
		if !u.IsDerived() {
			out = append(out, f)
			continue
		}
		if slices.Contains(path, u.id) {
			return nil, &InternalConsistencyError{Path: append(slices.Clone(path), u.id), Reason: "cycle in factor units"}
		}
		sub, err := g.expand(u.factorUnits.Pow(f.Exponent), append(path, u.id))
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return Canonicalize(out), nil
}

// DimensionOf returns Σ exponent_i × dimension(unit_i).
func (c *Catalog) DimensionOf(fus FactorUnits) (DimensionVector, error) {
	return c.current().dimensionOf(fus)
}

// ConversionFactor returns the factor converting a magnitude in a into b.
// Both products must have the same dimension vector.
func (c *Catalog) ConversionFactor(a, b FactorUnits) (*big.Rat, error) {
	return c.current().conversionFactor(a, b)
}

// CanonicalDecomposition returns the unit's own factor units in canonical form.
// Atomic units decompose into themselves.
func (c *Catalog) CanonicalDecomposition(unitID string) (FactorUnits, error) {
	u, err := c.Unit(unitID)
	if err != nil {
		return nil, err
	}
	if !u.IsDerived() {
		return FactorUnits{{UnitID: u.id, Exponent: 1}}, nil
	}
	return Canonicalize(u.factorUnits), nil
}

// Expand decomposes a unit recursively into non-derived units.
func (c *Catalog) Expand(unitID string) (FactorUnits, error) {
	if _, err := c.Unit(unitID); err != nil {
		return nil, err
	}
	fus, err := c.current().expand(FactorUnits{{UnitID: unitID, Exponent: 1}}, nil)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", unitID, err)
	}
	return fus, nil
}
