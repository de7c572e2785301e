package units

import (
	"math/big"
	"strings"
)

// ParseRat parses an exact number: an integer, a decimal ("0.001"),
// scientific notation ("1e-3") or a fraction ("5/9").
func ParseRat(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, &ParseError{Input: s, Reason: "not an exact number"}
	}
	return r, nil
}

// MustRat is ParseRat for literals known to be valid; it panics otherwise.
func MustRat(s string) *big.Rat {
	r, err := ParseRat(s)
	if err != nil {
		panic(err)
	}
	return r
}

// FormatRat renders r as a plain decimal when its expansion terminates and as
// "num/den" otherwise. No rounding is applied.
func FormatRat(r *big.Rat) string {
	if r == nil {
		return ""
	}
	if r.IsInt() {
		return r.Num().String()
	}
	den := new(big.Int).Set(r.Denom())
	digits := 0
	two, five := big.NewInt(2), big.NewInt(5)
	mod := new(big.Int)
	for _, p := range []*big.Int{two, five} {
		n := 0
		for {
			q, m := new(big.Int).QuoRem(den, p, mod)
			if m.Sign() != 0 {
				break
			}
			den = q
			n++
		}
		if n > digits {
			digits = n
		}
	}
	if den.Cmp(big.NewInt(1)) != 0 {
		return r.RatString()
	}
	out := r.FloatString(digits)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

func copyRat(r *big.Rat) *big.Rat {
	if r == nil {
		return nil
	}
	return new(big.Rat).Set(r)
}

var ratOne = big.NewRat(1, 1)

// ratPow raises r to an integer power. r must be non-zero when n < 0.
func ratPow(r *big.Rat, n int) *big.Rat {
	if n == 0 {
		return big.NewRat(1, 1)
	}
	num, den := new(big.Int).Set(r.Num()), new(big.Int).Set(r.Denom())
	if n < 0 {
		num, den = den, num
		n = -n
	}
	e := big.NewInt(int64(n))
	num.Exp(num, e, nil)
	den.Exp(den, e, nil)
	return new(big.Rat).SetFrac(num, den)
}
