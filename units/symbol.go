package units

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Locale describes how composed labels are spelled in one language.
type Locale struct {
	// Powers maps an absolute exponent to a format applied to the unit label
	// ("square %s"). Exponent 1 needs no entry.
	Powers map[int]string
	// Per joins the numerator and the denominator ("per").
	Per string
	// Joiner separates factors on the same side of Per.
	Joiner string
}

// LocaleTable maps a language tag to its Locale.
type LocaleTable map[string]Locale

// DefaultLocales returns the built-in English, German and French tables.
func DefaultLocales() LocaleTable {
	return LocaleTable{
		"en": {Powers: map[int]string{2: "Square %s", 3: "Cubic %s"}, Per: "per", Joiner: " "},
		"de": {Powers: map[int]string{2: "Quadrat%s", 3: "Kubik%s"}, Per: "pro", Joiner: " "},
		"fr": {Powers: map[int]string{2: "%s carré", 3: "%s cube"}, Per: "par", Joiner: " "},
	}
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹', '-': '⁻',
}

func superscript(n int) string {
	var sb strings.Builder
	for _, r := range strconv.Itoa(n) {
		sb.WriteRune(superscripts[r])
	}
	return sb.String()
}

// split separates a product into positive and negative exponent factors,
// keeping the input order on each side.
func split(fus FactorUnits) (num, den FactorUnits) {
	for _, f := range fus {
		switch {
		case f.Exponent > 0:
			num = append(num, f)
		case f.Exponent < 0:
			den = append(den, f)
		}
	}
	return num, den
}

// symbolTerm renders one factor. Compound symbols are bracketed when an
// exponent follows them or when they sit in a denominator. A quotient is also
// bracketed when other factors share the product.
func symbolTerm(sym string, exp int, denominator, shared bool) string {
	compound := strings.ContainsAny(sym, "/·")
	if compound && (exp != 1 || denominator || (shared && strings.Contains(sym, "/"))) {
		sym = "(" + sym + ")"
	}
	if exp == 1 {
		return sym
	}
	return sym + superscript(exp)
}

// symbol renders "kg·m/s²" in the given factor order. A negative-only product
// renders as "1/s".
func (g *graph) symbol(fus FactorUnits) (string, error) {
	num, den := split(fus)
	part := func(side FactorUnits, denominator bool) (string, error) {
		shared := len(num)+len(den) > 1
		terms := make([]string, 0, len(side))
		for _, f := range side {
			u, err := g.unit(f.UnitID)
			if err != nil {
				return "", err
			}
			if u.symbol == "" {
				return "", &ArgumentError{Arg: "factor units", Reason: fmt.Sprintf("unit %s has no symbol", u.id)}
			}
			exp := f.Exponent
			if exp < 0 {
				exp = -exp
			}
			terms = append(terms, symbolTerm(u.symbol, exp, denominator, shared))
		}
		return strings.Join(terms, "·"), nil
	}
	n, err := part(num, false)
	if err != nil {
		return "", err
	}
	d, err := part(den, true)
	if err != nil {
		return "", err
	}
	switch {
	case d == "":
		return n, nil
	case n == "":
		n = "1"
	}
	if len(den) > 1 {
		d = "(" + d + ")"
	}
	return n + "/" + d, nil
}

// ucumCode renders the inline UCUM form "kg.m.s-2".
func (g *graph) ucumCode(fus FactorUnits) (string, error) {
	num, den := split(fus)
	terms := make([]string, 0, len(fus))
	for _, f := range append(append(make([]FactorUnit, 0, len(num)+len(den)), num...), den...) {
		u, err := g.unit(f.UnitID)
		if err != nil {
			return "", err
		}
		if u.ucumCode == "" {
			return "", &ArgumentError{Arg: "factor units", Reason: fmt.Sprintf("unit %s has no UCUM code", u.id)}
		}
		if f.Exponent == 1 {
			terms = append(terms, u.ucumCode)
			continue
		}
		code := u.ucumCode
		if strings.ContainsAny(code, "./") {
			code = "(" + code + ")"
		}
		terms = append(terms, code+strconv.Itoa(f.Exponent))
	}
	return strings.Join(terms, "."), nil
}

// localName renders the catalog naming style "KiloGM-M-PER-SEC2".
func localName(fus FactorUnits) string {
	part := func(side FactorUnits) string {
		terms := make([]string, 0, len(side))
		for _, f := range side {
			exp := f.Exponent
			if exp < 0 {
				exp = -exp
			}
			name := LocalName(f.UnitID)
			if exp != 1 {
				name += strconv.Itoa(exp)
			}
			terms = append(terms, name)
		}
		return strings.Join(terms, "-")
	}
	num, den := split(fus)
	n, d := part(num), part(den)
	switch {
	case d == "":
		return n
	case n == "":
		return "PER-" + d
	}
	return n + "-PER-" + d
}

// labels composes one label per language in locales. A language is omitted
// when any factor lacks a label in it or its table has no entry for a needed
// exponent.
func (g *graph) labels(fus FactorUnits, locales LocaleTable) []LangString {
	langs := make([]string, 0, len(locales))
	for lang := range locales {
		langs = append(langs, lang)
	}
	slices.Sort(langs)

	num, den := split(fus)
	var out []LangString
	for _, lang := range langs {
		loc := locales[lang]
		n, ok := g.composeSide(num, lang, loc)
		if !ok {
			continue
		}
		d, ok := g.composeSide(den, lang, loc)
		if !ok {
			continue
		}
		var text string
		switch {
		case d == "":
			text = n
		case n == "":
			text = loc.Per + " " + d
		default:
			text = n + " " + loc.Per + " " + d
		}
		if text != "" {
			out = append(out, LangString{Text: text, Lang: lang})
		}
	}
	return out
}

func (g *graph) composeSide(side FactorUnits, lang string, loc Locale) (string, bool) {
	terms := make([]string, 0, len(side))
	for _, f := range side {
		u, ok := g.units[f.UnitID]
		if !ok {
			return "", false
		}
		label, ok := labelFor(u.labels, lang)
		if !ok {
			return "", false
		}
		exp := f.Exponent
		if exp < 0 {
			exp = -exp
		}
		if exp != 1 {
			format, ok := loc.Powers[exp]
			if !ok {
				return "", false
			}
			label = fmt.Sprintf(format, label)
		}
		terms = append(terms, label)
	}
	return strings.Join(terms, loc.Joiner), true
}

// canonicalProduct merges and orders fus so equal products compose equal
// names. Catalogued units keep their declared factor order.
func canonicalProduct(fus FactorUnits) (FactorUnits, error) {
	out := Canonicalize(fus)
	if len(out) == 0 {
		return nil, &ArgumentError{Arg: "factor units", Reason: "empty product"}
	}
	return out, nil
}

// Symbol composes the display symbol of a product ("kg·m/s²"). The product is
// canonicalized first.
func (c *Catalog) Symbol(fus FactorUnits) (string, error) {
	cf, err := canonicalProduct(fus)
	if err != nil {
		return "", err
	}
	return c.current().symbol(cf)
}

// UCUMCode composes the inline UCUM code of a product ("kg.m.s-2").
func (c *Catalog) UCUMCode(fus FactorUnits) (string, error) {
	cf, err := canonicalProduct(fus)
	if err != nil {
		return "", err
	}
	return c.current().ucumCode(cf)
}

// LocalName composes the catalog-style local name of a product
// ("KiloGM-M-PER-SEC2"). An empty product has no name.
func (c *Catalog) LocalName(fus FactorUnits) string {
	return localName(Canonicalize(fus))
}

// Labels composes localized labels for a product using the catalog's locale
// table. Languages the table or the factor labels cannot serve are omitted.
func (c *Catalog) Labels(fus FactorUnits) []LangString {
	return c.current().labels(Canonicalize(fus), c.opts.locales)
}
