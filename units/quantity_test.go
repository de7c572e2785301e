package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(value, unitID string) Quantity { return NewQuantity(MustRat(value), unitID) }

func assertQuantity(t *testing.T, want string, wantUnit FactorUnits, got Quantity) {
	t.Helper()
	assert.Equal(t, want, FormatRat(got.Value))
	assert.Equal(t, wantUnit, got.Unit)
}

func TestArithmetic_AddSubtract(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	// GIVEN 1 km and 500 m
	sum, err := a.Add(q("1", "unit:KiloM"), q("500", "unit:M"))

	// THEN the sum is in the left operand's unit
	require.NoError(t, err)
	assertQuantity(t, "1.5", FactorUnits{fu("unit:KiloM", 1)}, sum)
	assert.Equal(t, "1.5 unit:KiloM", sum.String())

	diff, err := a.Subtract(q("1", "unit:KiloM"), q("500", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "0.5", FactorUnits{fu("unit:KiloM", 1)}, diff)

	_, err = a.Add(q("1", "unit:M"), q("1", "unit:SEC"))
	assert.True(t, errors.Is(err, ErrInconvertibleQuantities))
}

func TestArithmetic_ConvertTo(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	got, err := a.ConvertTo(q("38.5", "unit:DEG_C"), "unit:DEG_F")
	require.NoError(t, err)
	assertQuantity(t, "101.3", FactorUnits{fu("unit:DEG_F", 1)}, got)

	product := Quantity{Value: MustRat("36"), Unit: FactorUnits{fu("unit:KiloM", 1), fu("unit:HR", -1)}}
	got, err = a.ConvertTo(product, "unit:M-PER-SEC")
	require.NoError(t, err)
	assertQuantity(t, "10", FactorUnits{fu("unit:M-PER-SEC", 1)}, got)

	id, ok := got.UnitID()
	assert.True(t, ok)
	assert.Equal(t, "unit:M-PER-SEC", id)
	_, ok = product.UnitID()
	assert.False(t, ok)
}

func TestArithmetic_MultiplyDivideResolveNamedUnits(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	// kg·m has no catalogued name and stays a product
	km, err := a.Multiply(q("2", "unit:KiloGM"), q("3", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "6", FactorUnits{fu("unit:KiloGM", 1), fu("unit:M", 1)}, km)

	// dividing by s² completes a newton
	n, err := a.Divide(km, Quantity{Value: MustRat("4"), Unit: FactorUnits{fu("unit:SEC", 2)}})
	require.NoError(t, err)
	assertQuantity(t, "1.5", FactorUnits{fu("unit:N", 1)}, n)

	// N·m resolves to the first named unit in ID order
	j, err := a.Multiply(q("2", "unit:N"), q("3", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "6", FactorUnits{fu("unit:J", 1)}, j)

	speed, err := a.Divide(q("36", "unit:KiloM"), q("1", "unit:HR"))
	require.NoError(t, err)
	assertQuantity(t, "36", FactorUnits{fu("unit:KiloM-PER-HR", 1)}, speed)

	_, err = a.Divide(q("1", "unit:M"), q("0", "unit:SEC"))
	assert.True(t, errors.Is(err, ErrArgument))
}

func TestArithmetic_Pow(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	area, err := a.Pow(q("3", "unit:M"), 2)
	require.NoError(t, err)
	assertQuantity(t, "9", FactorUnits{fu("unit:M2", 1)}, area)

	one, err := a.Pow(q("3", "unit:M"), 0)
	require.NoError(t, err)
	assert.Equal(t, "1", one.String(), "a pure number")

	inv, err := a.Pow(q("4", "unit:SEC"), -1)
	require.NoError(t, err)
	assertQuantity(t, "0.25", FactorUnits{fu("unit:HZ", 1)}, inv)

	_, err = a.Pow(q("0", "unit:M"), -1)
	assert.True(t, errors.Is(err, ErrArgument))
}

func TestArithmetic_Sqrt(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Arithmetic(nil).Sqrt(Quantity{Value: MustRat("16"), Unit: FactorUnits{fu("unit:M", 2)}})
	assert.True(t, errors.Is(err, ErrArgument), "needs a precision context")

	a := c.Arithmetic(&PrecisionContext{Precision: 10})
	got, err := a.Sqrt(Quantity{Value: MustRat("16"), Unit: FactorUnits{fu("unit:M", 2)}})
	require.NoError(t, err)
	assertQuantity(t, "4", FactorUnits{fu("unit:M", 1)}, got)

	_, err = a.Sqrt(Quantity{Value: MustRat("8"), Unit: FactorUnits{fu("unit:M", 3)}})
	assert.True(t, errors.Is(err, ErrArgument), "odd exponent")
}

func TestArithmetic_SignAndOrdering(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	abs, err := a.Abs(q("-2.5", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "2.5", FactorUnits{fu("unit:M", 1)}, abs)

	neg, err := a.Negate(q("2.5", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "-2.5", FactorUnits{fu("unit:M", 1)}, neg)

	cmp, err := a.Compare(q("1", "unit:KiloM"), q("999", "unit:M"))
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
	cmp, err = a.Compare(q("1", "unit:KiloM"), q("1000", "unit:M"))
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	lo, err := a.Min(q("1", "unit:KiloM"), q("500", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "0.5", FactorUnits{fu("unit:KiloM", 1)}, lo)

	hi, err := a.Max(q("1", "unit:KiloM"), q("500", "unit:M"))
	require.NoError(t, err)
	assertQuantity(t, "1", FactorUnits{fu("unit:KiloM", 1)}, hi)

	_, err = a.Compare(q("1", "unit:M"), q("1", "unit:SEC"))
	assert.True(t, errors.Is(err, ErrInconvertibleQuantities))
}

func TestArithmetic_Remainder(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	tests := []struct {
		x, y Quantity
		want string
	}{
		{q("7", "unit:M"), q("2", "unit:M"), "1"},
		{q("-7", "unit:M"), q("2", "unit:M"), "-1"},
		{q("1", "unit:KiloM"), q("300", "unit:M"), "0.1"},
	}
	for _, tc := range tests {
		got, err := a.Remainder(tc.x, tc.y)
		require.NoError(t, err)
		assert.Equal(t, tc.want, FormatRat(got.Value), "%s rem %s", tc.x, tc.y)
		assert.Equal(t, tc.x.Unit, got.Unit)
	}

	_, err := a.Remainder(q("1", "unit:M"), q("0", "unit:M"))
	assert.True(t, errors.Is(err, ErrArgument))
}

func TestArithmetic_PrecisionContextRounds(t *testing.T) {
	c := newTestCatalog(t)

	// GIVEN exact arithmetic
	exact, err := c.Arithmetic(nil).Divide(q("1", "unit:M"), q("3", "unit:SEC"))
	require.NoError(t, err)
	assert.Equal(t, "1/3", FormatRat(exact.Value))

	// WHEN a precision context is bound
	rounded, err := c.Arithmetic(&PrecisionContext{Precision: 3}).Divide(q("1", "unit:M"), q("3", "unit:SEC"))

	// THEN results are rounded to it
	require.NoError(t, err)
	assertQuantity(t, "0.333", FactorUnits{fu("unit:M-PER-SEC", 1)}, rounded)
}

func TestArithmetic_Rescale(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Arithmetic(nil).Rescale(q("1.2345", "unit:M"), 2)
	assert.True(t, errors.Is(err, ErrArgument))

	got, err := c.Arithmetic(&PrecisionContext{Precision: 10, Rounding: "half_up"}).Rescale(q("1.235", "unit:M"), 2)
	require.NoError(t, err)
	assertQuantity(t, "1.24", FactorUnits{fu("unit:M", 1)}, got)
}

func TestArithmetic_Pow_RejectsExponentBeyondMaxPower(t *testing.T) {
	a := newTestCatalog(t).Arithmetic(nil)

	_, err := a.Pow(q("2", "unit:M"), 2_000_000_000)
	assert.True(t, errors.Is(err, ErrArgument))
	_, err = a.Pow(q("2", "unit:M"), -MaxPower-1)
	assert.True(t, errors.Is(err, ErrArgument))

	got, err := a.Pow(Quantity{Value: MustRat("2")}, MaxPower)
	require.NoError(t, err)
	assert.Equal(t, MaxPower+1, got.Value.Num().BitLen())
}
