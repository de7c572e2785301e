package units

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// PrecisionContext requests rounding to a number of significant digits.
// Conversions and arithmetic never round unless a context is supplied.
type PrecisionContext struct {
	Precision uint32
	Rounding  string // one of ValidRoundings; "" means half_even
}

// validRoundings maps accepted rounding names to apd rounding modes.
var validRoundings = map[string]apd.Rounder{
	"":          apd.RoundHalfEven,
	"half_even": apd.RoundHalfEven,
	"half_up":   apd.RoundHalfUp,
	"half_down": apd.RoundHalfDown,
	"up":        apd.RoundUp,
	"down":      apd.RoundDown,
	"ceiling":   apd.RoundCeiling,
	"floor":     apd.RoundFloor,
}

// IsValidRounding returns true if name is a recognized rounding mode.
func IsValidRounding(name string) bool {
	_, ok := validRoundings[name]
	return ok
}

// ValidRoundings returns the accepted rounding names, sorted.
func ValidRoundings() []string {
	out := make([]string, 0, len(validRoundings))
	for k := range validRoundings {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Validate checks the precision and rounding mode.
func (pc PrecisionContext) Validate() error {
	if pc.Precision == 0 {
		return &ArgumentError{Arg: "precision", Reason: "must be positive"}
	}
	if !IsValidRounding(pc.Rounding) {
		return &ArgumentError{Arg: "rounding", Reason: fmt.Sprintf("unknown mode %q (valid: %s)", pc.Rounding, strings.Join(ValidRoundings(), ", "))}
	}
	return nil
}

func (pc PrecisionContext) context(precision uint32) *apd.Context {
	ctx := apd.BaseContext.WithPrecision(precision)
	ctx.Rounding = validRoundings[pc.Rounding]
	return ctx
}

func decimalFromInt(i *big.Int) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(i.String())
	return d, err
}

func ratFromDecimal(d *apd.Decimal) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(d.Text('f'))
	if !ok {
		return nil, &ParseError{Input: d.String(), Reason: "decimal result is not finite"}
	}
	return r, nil
}

// toDecimal divides numerator by denominator under ctx.
func toDecimal(ctx *apd.Context, r *big.Rat) (*apd.Decimal, error) {
	num, err := decimalFromInt(r.Num())
	if err != nil {
		return nil, err
	}
	den, err := decimalFromInt(r.Denom())
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	if _, err := ctx.Quo(out, num, den); err != nil {
		return nil, fmt.Errorf("rounding %s: %w", r.RatString(), err)
	}
	return out, nil
}

// Round rounds r to the context's significant digits.
func (pc PrecisionContext) Round(r *big.Rat) (*big.Rat, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	d, err := toDecimal(pc.context(pc.Precision), r)
	if err != nil {
		return nil, err
	}
	return ratFromDecimal(d)
}

// Sqrt returns the square root of a non-negative r to the context's precision.
func (pc PrecisionContext) Sqrt(r *big.Rat) (*big.Rat, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if r.Sign() < 0 {
		return nil, &ArgumentError{Arg: "sqrt", Reason: "negative operand " + FormatRat(r)}
	}
	// One guard digit for the intermediate quotient.
	ctx := pc.context(pc.Precision + 1)
	x, err := toDecimal(ctx, r)
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	if _, err := pc.context(pc.Precision).Sqrt(out, x); err != nil {
		return nil, fmt.Errorf("sqrt %s: %w", FormatRat(r), err)
	}
	return ratFromDecimal(out)
}

// Quantize rounds r to places digits after the decimal point.
func (pc PrecisionContext) Quantize(r *big.Rat, places int32) (*big.Rat, error) {
	if !IsValidRounding(pc.Rounding) {
		return nil, &ArgumentError{Arg: "rounding", Reason: fmt.Sprintf("unknown mode %q", pc.Rounding)}
	}
	if places < 0 {
		return nil, &ArgumentError{Arg: "places", Reason: "must not be negative"}
	}
	intDigits := len(new(big.Int).Quo(new(big.Int).Abs(r.Num()), r.Denom()).String())
	ctx := pc.context(uint32(intDigits) + uint32(places) + 2)
	x, err := toDecimal(ctx, r)
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	if _, err := ctx.Quantize(out, x, -places); err != nil {
		return nil, fmt.Errorf("quantize %s: %w", FormatRat(r), err)
	}
	return ratFromDecimal(out)
}

// FormatDecimal renders r rounded under pc, or exactly when pc is nil.
func FormatDecimal(r *big.Rat, pc *PrecisionContext) (string, error) {
	if pc == nil {
		return FormatRat(r), nil
	}
	rounded, err := pc.Round(r)
	if err != nil {
		return "", err
	}
	return FormatRat(rounded), nil
}

// convert applies the affine conversion through the shared reference scale:
// ref = (amount + offset_from) × m_from; out = ref / m_to − offset_to.
// Offsets of derived units are ignored.
func (g *graph) convert(amount *big.Rat, from, to *Unit) (*big.Rat, error) {
	if from.dimension != to.dimension {
		return nil, &InconvertibleQuantitiesError{From: from.id, To: to.id, FromDim: from.dimension, ToDim: to.dimension}
	}
	if from.id == to.id {
		return new(big.Rat).Set(amount), nil
	}
	if from.multiplier == nil {
		return nil, &MissingConversionDataError{UnitID: from.id}
	}
	if to.multiplier == nil {
		return nil, &MissingConversionDataError{UnitID: to.id}
	}
	out := new(big.Rat).Add(amount, from.offsetForConversion())
	out.Mul(out, from.multiplier)
	out.Quo(out, to.multiplier)
	return out.Sub(out, to.offsetForConversion()), nil
}

// Convert converts amount from one unit into another of the same dimension.
// The result is exact.
func (c *Catalog) Convert(amount *big.Rat, from, to string) (out *big.Rat, err error) {
	defer func() { c.metrics.conversion(err) }()
	g := c.current()
	fu, err := g.unit(from)
	if err != nil {
		return nil, err
	}
	tu, err := g.unit(to)
	if err != nil {
		return nil, err
	}
	return g.convert(amount, fu, tu)
}

// ConvertDecimal parses amount, converts it and renders the result, rounding
// only when pc is non-nil.
func (c *Catalog) ConvertDecimal(amount, from, to string, pc *PrecisionContext) (string, error) {
	a, err := ParseRat(amount)
	if err != nil {
		return "", err
	}
	out, err := c.Convert(a, from, to)
	if err != nil {
		return "", err
	}
	return FormatDecimal(out, pc)
}
