package units

import (
	"math/big"
	"strconv"
	"strings"
)

// Dimension indexes a slot of a DimensionVector.
type Dimension int

const (
	DimAmountOfSubstance Dimension = iota // A
	DimElectricCurrent                    // E
	DimLength                             // L
	DimLuminousIntensity                  // I
	DimMass                               // M
	DimTemperature                        // H
	DimTime                               // T
	DimDimensionless                      // D
	numDimensions
)

// dimensionSymbols is the canonical slot order of the string encoding.
var dimensionSymbols = [numDimensions]byte{'A', 'E', 'L', 'I', 'M', 'H', 'T', 'D'}

// DimensionVectorNamespace is the IRI namespace of canonical dimension vectors.
const DimensionVectorNamespace = "http://qudt.org/vocab/dimensionvector/"

// dimensionVectorCURIE is the compact prefix accepted by ParseDimensionVector.
const dimensionVectorCURIE = "qkdv:"

// exponent is a reduced fraction. The denominator is stored minus one so the
// zero value is 0/1 and equal exponents compare equal with ==.
type exponent struct {
	num  int64
	den1 int64
}

// exponentOf converts r, failing when its reduced terms exceed int64.
func exponentOf(r *big.Rat) (exponent, bool) {
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return exponent{}, false
	}
	return exponent{num: r.Num().Int64(), den1: r.Denom().Int64() - 1}, true
}

func mustExponent(r *big.Rat) exponent {
	x, ok := exponentOf(r)
	if !ok {
		panic("units: dimension exponent " + r.RatString() + " overflows int64")
	}
	return x
}

func (x exponent) rat() *big.Rat { return big.NewRat(x.num, x.den1+1) }

// String writes terminating fractions as decimals with "dot" for the point.
func (x exponent) String() string {
	if x.den1 == 0 {
		return strconv.FormatInt(x.num, 10)
	}
	return strings.Replace(FormatRat(x.rat()), ".", "dot", 1)
}

// DimensionVector holds the rational exponents of the seven base dimensions
// plus the dimensionless marker slot. The zero value has every slot at zero.
// Values are comparable with ==.
type DimensionVector struct {
	values [numDimensions]exponent
}

// Dimensionless is the vector of a pure number (A0E0L0I0M0H0T0D1).
var Dimensionless = NewDimensionVector(0, 0, 0, 0, 0, 0, 0, 1)

// NewDimensionVector builds a vector of integer exponents in canonical slot
// order. The D slot is stored as given; Add and Scale recompute it.
// Fractional exponents come from ParseDimensionVector.
func NewDimensionVector(a, e, l, i, m, h, t, d int64) DimensionVector {
	var v DimensionVector
	for idx, x := range []int64{a, e, l, i, m, h, t, d} {
		v.values[idx] = exponent{num: x}
	}
	return v
}

// Get returns the exponent stored in slot d.
func (v DimensionVector) Get(d Dimension) *big.Rat {
	return v.values[d].rat()
}

// Values returns the eight slot values in canonical order.
func (v DimensionVector) Values() [numDimensions]*big.Rat {
	var out [numDimensions]*big.Rat
	for d := range v.values {
		out[d] = v.values[d].rat()
	}
	return out
}

// IsDimensionless reports whether every base slot is zero.
func (v DimensionVector) IsDimensionless() bool {
	for d := Dimension(0); d < DimDimensionless; d++ {
		if v.values[d].num != 0 {
			return false
		}
	}
	return true
}

// Equal reports value equality.
func (v DimensionVector) Equal(o DimensionVector) bool {
	return v == o
}

// Add returns the slot-wise sum of v and o with the D marker recomputed.
func (v DimensionVector) Add(o DimensionVector) DimensionVector {
	var out DimensionVector
	for d := Dimension(0); d < DimDimensionless; d++ {
		out.values[d] = mustExponent(new(big.Rat).Add(v.values[d].rat(), o.values[d].rat()))
	}
	return out.withMarker()
}

// Scale multiplies every base slot by k with the D marker recomputed.
func (v DimensionVector) Scale(k int) DimensionVector {
	var out DimensionVector
	factor := big.NewRat(int64(k), 1)
	for d := Dimension(0); d < DimDimensionless; d++ {
		out.values[d] = mustExponent(new(big.Rat).Mul(v.values[d].rat(), factor))
	}
	return out.withMarker()
}

func (v DimensionVector) withMarker() DimensionVector {
	if v.IsDimensionless() {
		v.values[DimDimensionless] = exponent{num: 1}
	} else {
		v.values[DimDimensionless] = exponent{}
	}
	return v
}

// String renders the canonical encoding, e.g. "A0E0L1I0M1H0T-2D0".
// Fractional exponents write the decimal point as "dot" ("L0dot5").
func (v DimensionVector) String() string {
	var sb strings.Builder
	for d := Dimension(0); d < numDimensions; d++ {
		sb.WriteByte(dimensionSymbols[d])
		sb.WriteString(v.values[d].String())
	}
	return sb.String()
}

// IRI returns the vector's identifier in the dimension vector namespace.
func (v DimensionVector) IRI() string {
	return DimensionVectorNamespace + v.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v DimensionVector) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *DimensionVector) UnmarshalText(text []byte) error {
	parsed, err := ParseDimensionVector(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseDimensionVector parses the canonical encoding. The input may carry the
// "qkdv:" prefix or the full namespace IRI. Every slot must be present in
// canonical order.
func ParseDimensionVector(s string) (DimensionVector, error) {
	body := s
	offset := 0
	switch {
	case strings.HasPrefix(body, DimensionVectorNamespace):
		offset = len(DimensionVectorNamespace)
	case strings.HasPrefix(body, dimensionVectorCURIE):
		offset = len(dimensionVectorCURIE)
	}
	body = body[offset:]

	var v DimensionVector
	pos := 0
	for d := Dimension(0); d < numDimensions; d++ {
		if pos >= len(body) || body[pos] != dimensionSymbols[d] {
			return DimensionVector{}, &ParseError{Input: s, Offset: offset + pos,
				Reason: "expected slot " + string(dimensionSymbols[d])}
		}
		pos++
		end, ok := scanExponent(body, pos)
		if !ok {
			return DimensionVector{}, &ParseError{Input: s, Offset: offset + pos,
				Reason: "malformed exponent for slot " + string(dimensionSymbols[d])}
		}
		literal := strings.Replace(body[pos:end], "dot", ".", 1)
		r, ok := new(big.Rat).SetString(literal)
		if !ok {
			return DimensionVector{}, &ParseError{Input: s, Offset: offset + pos,
				Reason: "malformed exponent for slot " + string(dimensionSymbols[d])}
		}
		x, ok := exponentOf(r)
		if !ok {
			return DimensionVector{}, &ParseError{Input: s, Offset: offset + pos,
				Reason: "exponent out of range for slot " + string(dimensionSymbols[d])}
		}
		v.values[d] = x
		pos = end
	}
	if pos != len(body) {
		return DimensionVector{}, &ParseError{Input: s, Offset: offset + pos, Reason: "trailing characters"}
	}
	return v, nil
}

// scanExponent consumes [-]digits[dot digits] starting at pos.
func scanExponent(s string, pos int) (int, bool) {
	i := pos
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == digits {
		return pos, false
	}
	if strings.HasPrefix(s[i:], "dot") {
		i += 3
		frac := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == frac {
			return pos, false
		}
	}
	return i, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
