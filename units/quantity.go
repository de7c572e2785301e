package units

import (
	"fmt"
	"math/big"
)

// Quantity is an exact magnitude in a unit. Unit is a product of catalogued
// units; a plain unit is the single factor {id^1} and an empty product is a
// pure number.
type Quantity struct {
	Value *big.Rat
	Unit  FactorUnits
}

// NewQuantity returns value in the catalogued unit unitID.
func NewQuantity(value *big.Rat, unitID string) Quantity {
	return Quantity{Value: value, Unit: FactorUnits{{UnitID: unitID, Exponent: 1}}}
}

// UnitID returns the unit when the quantity is in a single catalogued unit.
func (q Quantity) UnitID() (string, bool) {
	return q.Unit.single()
}

func (q Quantity) String() string {
	if len(q.Unit) == 0 {
		return FormatRat(q.Value)
	}
	return FormatRat(q.Value) + " " + q.Unit.String()
}

// Arithmetic combines quantities over a catalog. Binary operators convert the
// right operand into the left operand's unit first. Results are exact unless
// a precision context is set, in which case every result is rounded to it.
type Arithmetic struct {
	c   *Catalog
	ctx *PrecisionContext
}

// Arithmetic returns the operators bound to c. ctx may be nil.
func (c *Catalog) Arithmetic(ctx *PrecisionContext) *Arithmetic {
	return &Arithmetic{c: c, ctx: ctx}
}

func (a *Arithmetic) finish(v *big.Rat, unit FactorUnits) (Quantity, error) {
	if a.ctx != nil {
		r, err := a.ctx.Round(v)
		if err != nil {
			return Quantity{}, err
		}
		v = r
	}
	return Quantity{Value: v, Unit: unit}, nil
}

// valueIn returns q's magnitude expressed in target. Single units convert
// through their offsets; products convert linearly.
func (a *Arithmetic) valueIn(q Quantity, target FactorUnits) (*big.Rat, error) {
	g := a.c.current()
	if from, ok := q.Unit.single(); ok {
		if to, ok := target.single(); ok {
			fu, err := g.unit(from)
			if err != nil {
				return nil, err
			}
			tu, err := g.unit(to)
			if err != nil {
				return nil, err
			}
			out, err := g.convert(q.Value, fu, tu)
			a.c.metrics.conversion(err)
			return out, err
		}
	}
	f, err := g.conversionFactor(q.Unit, target)
	if err != nil {
		return nil, err
	}
	return new(big.Rat).Mul(q.Value, f), nil
}

// resolve names a product by a catalogued unit when one matches it exactly,
// rescaling the value accordingly; otherwise the canonical product is kept.
func (a *Arithmetic) resolve(v *big.Rat, unit FactorUnits) (*big.Rat, FactorUnits) {
	unit = Canonicalize(unit)
	if _, ok := unit.single(); ok || len(unit) == 0 || len(unit) > MaxSelectors {
		return v, unit
	}
	selectors := make([]FactorSelector, len(unit))
	for i, f := range unit {
		selectors[i] = FactorSelector(f)
	}
	found, err := a.c.DerivedUnits(ModeBestMatch, selectors)
	if err != nil || len(found) == 0 {
		return v, unit
	}
	named := FactorUnits{{UnitID: found[0].id, Exponent: 1}}
	f, err := a.c.current().conversionFactor(unit, named)
	if err != nil {
		return v, unit
	}
	return new(big.Rat).Mul(v, f), named
}

// ConvertTo expresses q in unitID.
func (a *Arithmetic) ConvertTo(q Quantity, unitID string) (Quantity, error) {
	target := FactorUnits{{UnitID: unitID, Exponent: 1}}
	v, err := a.valueIn(q, target)
	if err != nil {
		return Quantity{}, err
	}
	return a.finish(v, target)
}

// Add returns x + y in x's unit.
func (a *Arithmetic) Add(x, y Quantity) (Quantity, error) {
	v, err := a.valueIn(y, x.Unit)
	if err != nil {
		return Quantity{}, fmt.Errorf("add: %w", err)
	}
	return a.finish(v.Add(x.Value, v), x.Unit)
}

// Subtract returns x − y in x's unit.
func (a *Arithmetic) Subtract(x, y Quantity) (Quantity, error) {
	v, err := a.valueIn(y, x.Unit)
	if err != nil {
		return Quantity{}, fmt.Errorf("subtract: %w", err)
	}
	return a.finish(v.Sub(x.Value, v), x.Unit)
}

// Multiply returns x × y in the product unit, named by a catalogued unit when
// one matches.
func (a *Arithmetic) Multiply(x, y Quantity) (Quantity, error) {
	v, unit := a.resolve(new(big.Rat).Mul(x.Value, y.Value), x.Unit.Times(y.Unit))
	return a.finish(v, unit)
}

// Divide returns x ÷ y in the quotient unit.
func (a *Arithmetic) Divide(x, y Quantity) (Quantity, error) {
	if y.Value.Sign() == 0 {
		return Quantity{}, &ArgumentError{Arg: "divisor", Reason: "division by zero"}
	}
	v, unit := a.resolve(new(big.Rat).Quo(x.Value, y.Value), x.Unit.Times(y.Unit.Pow(-1)))
	return a.finish(v, unit)
}

// MaxPower bounds the magnitude of the exponent accepted by Pow.
const MaxPower = 1024

// Pow returns x raised to an integer power of at most MaxPower in magnitude.
func (a *Arithmetic) Pow(x Quantity, n int) (Quantity, error) {
	if n > MaxPower || n < -MaxPower {
		return Quantity{}, &ArgumentError{Arg: "power", Reason: fmt.Sprintf("|%d| exceeds %d", n, MaxPower)}
	}
	if n < 0 && x.Value.Sign() == 0 {
		return Quantity{}, &ArgumentError{Arg: "power", Reason: "zero raised to a negative power"}
	}
	v, unit := a.resolve(ratPow(x.Value, n), x.Unit.Pow(n))
	return a.finish(v, unit)
}

// Sqrt returns the square root of x. Every exponent of x's unit must be even.
// The result is inexact, so a precision context is required.
func (a *Arithmetic) Sqrt(x Quantity) (Quantity, error) {
	if a.ctx == nil {
		return Quantity{}, &ArgumentError{Arg: "sqrt", Reason: "requires a precision context"}
	}
	unit := Canonicalize(x.Unit)
	half := make(FactorUnits, len(unit))
	for i, f := range unit {
		if f.Exponent%2 != 0 {
			return Quantity{}, &ArgumentError{Arg: "sqrt", Reason: fmt.Sprintf("unit %s has odd exponent", unit)}
		}
		half[i] = FactorUnit{UnitID: f.UnitID, Exponent: f.Exponent / 2}
	}
	v, err := a.ctx.Sqrt(x.Value)
	if err != nil {
		return Quantity{}, err
	}
	v, half = a.resolve(v, half)
	return a.finish(v, half)
}

// Abs returns |x|.
func (a *Arithmetic) Abs(x Quantity) (Quantity, error) {
	return a.finish(new(big.Rat).Abs(x.Value), x.Unit)
}

// Negate returns −x.
func (a *Arithmetic) Negate(x Quantity) (Quantity, error) {
	return a.finish(new(big.Rat).Neg(x.Value), x.Unit)
}

// Compare returns -1, 0 or +1 as x is less than, equal to or greater than y.
func (a *Arithmetic) Compare(x, y Quantity) (int, error) {
	v, err := a.valueIn(y, x.Unit)
	if err != nil {
		return 0, fmt.Errorf("compare: %w", err)
	}
	return x.Value.Cmp(v), nil
}

// Min returns the smaller of x and y, in x's unit.
func (a *Arithmetic) Min(x, y Quantity) (Quantity, error) {
	v, err := a.valueIn(y, x.Unit)
	if err != nil {
		return Quantity{}, fmt.Errorf("min: %w", err)
	}
	if v.Cmp(x.Value) < 0 {
		return a.finish(v, x.Unit)
	}
	return a.finish(new(big.Rat).Set(x.Value), x.Unit)
}

// Max returns the larger of x and y, in x's unit.
func (a *Arithmetic) Max(x, y Quantity) (Quantity, error) {
	v, err := a.valueIn(y, x.Unit)
	if err != nil {
		return Quantity{}, fmt.Errorf("max: %w", err)
	}
	if v.Cmp(x.Value) > 0 {
		return a.finish(v, x.Unit)
	}
	return a.finish(new(big.Rat).Set(x.Value), x.Unit)
}

// Remainder returns x − y × trunc(x / y) in x's unit.
func (a *Arithmetic) Remainder(x, y Quantity) (Quantity, error) {
	v, err := a.valueIn(y, x.Unit)
	if err != nil {
		return Quantity{}, fmt.Errorf("remainder: %w", err)
	}
	if v.Sign() == 0 {
		return Quantity{}, &ArgumentError{Arg: "divisor", Reason: "division by zero"}
	}
	q := new(big.Rat).Quo(x.Value, v)
	n := new(big.Int).Quo(q.Num(), q.Denom())
	r := new(big.Rat).Mul(v, new(big.Rat).SetInt(n))
	return a.finish(r.Sub(x.Value, r), x.Unit)
}

// Rescale rounds x to places digits after the decimal point using the
// context's rounding mode. Rounding is only done on request, so a precision
// context is required.
func (a *Arithmetic) Rescale(x Quantity, places int32) (Quantity, error) {
	if a.ctx == nil {
		return Quantity{}, &ArgumentError{Arg: "rescale", Reason: "requires a precision context"}
	}
	v, err := a.ctx.Quantize(x.Value, places)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: v, Unit: x.Unit}, nil
}
