package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// labelled returns en/de labels for a definition.
func labelled(en, de string) Metadata {
	md := Metadata{Labels: []LangString{{Text: en, Lang: "en"}}}
	if de != "" {
		md.Labels = append(md.Labels, LangString{Text: de, Lang: "de"})
	}
	return md
}

func baseUnit(id, multiplier, dim, symbol, ucum string, md Metadata) UnitDefinition {
	return UnitDefinition{ID: id, Metadata: md, Config: UnitConfig{
		Multiplier: MustRat(multiplier), Dimension: dim, Symbol: symbol, UCUMCode: ucum,
	}}
}

func scaledUnit(id, prefix, base string, md Metadata) UnitDefinition {
	return UnitDefinition{ID: id, Metadata: md, Config: UnitConfig{PrefixID: prefix, ScalingOfID: base}}
}

func derivedUnit(id string, md Metadata, fus ...FactorUnit) UnitDefinition {
	return UnitDefinition{ID: id, Metadata: md, Config: UnitConfig{FactorUnits: fus}}
}

func fu(id string, exp int) FactorUnit { return FactorUnit{UnitID: id, Exponent: exp} }

func sel(id string, exp int) FactorSelector { return FactorSelector{UnitID: id, Exponent: exp} }

const (
	dimLength = "A0E0L1I0M0H0T0D0"
	dimMass   = "A0E0L0I0M1H0T0D0"
	dimTime   = "A0E0L0I0M0H0T1D0"
	dimTemp   = "A0E0L0I0M0H1T0D0"
	dimCurr   = "A0E1L0I0M0H0T0D0"
	dimNone   = "A0E0L0I0M0H0T0D1"
	dimForce  = "A0E0L1I0M1H0T-2D0"
)

// newTestBuilder returns a builder holding a small SI catalog.
func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder()
	for _, p := range []PrefixDefinition{
		{ID: "prefix:Kilo", Config: PrefixConfig{Multiplier: MustRat("1000"), Symbol: "k", UCUMCode: "k"}},
		{ID: "prefix:Milli", Config: PrefixConfig{Multiplier: MustRat("0.001"), Symbol: "m", UCUMCode: "m"}},
	} {
		require.NoError(t, b.AddPrefix(p))
	}

	defs := []UnitDefinition{
		baseUnit("unit:M", "1", dimLength, "m", "m", labelled("Meter", "Meter")),
		scaledUnit("unit:KiloM", "prefix:Kilo", "unit:M", labelled("Kilometer", "Kilometer")),
		scaledUnit("unit:MilliM", "prefix:Milli", "unit:M", labelled("Millimeter", "")),
		baseUnit("unit:GM", "0.001", dimMass, "g", "g", labelled("Gram", "Gramm")),
		scaledUnit("unit:KiloGM", "prefix:Kilo", "unit:GM", labelled("Kilogram", "Kilogramm")),
		baseUnit("unit:SEC", "1", dimTime, "s", "s", labelled("Second", "Sekunde")),
		baseUnit("unit:HR", "3600", dimTime, "h", "h", labelled("Hour", "Stunde")),
		baseUnit("unit:A", "1", dimCurr, "A", "A", labelled("Ampere", "")),
		baseUnit("unit:K", "1", dimTemp, "K", "K", labelled("Kelvin", "Kelvin")),
		baseUnit("unit:UNITLESS", "1", dimNone, "", "1", labelled("Unitless", "")),
		{ID: "unit:DEG_C", Metadata: labelled("Degree Celsius", "Grad Celsius"), Config: UnitConfig{
			Multiplier: MustRat("1"), Offset: MustRat("273.15"), Dimension: dimTemp, Symbol: "°C", UCUMCode: "Cel",
		}},
		{ID: "unit:DEG_F", Metadata: labelled("Degree Fahrenheit", ""), Config: UnitConfig{
			Multiplier: MustRat("5/9"), Offset: MustRat("459.67"), Dimension: dimTemp, Symbol: "°F", UCUMCode: "[degF]",
		}},
		{ID: "unit:N", Metadata: labelled("Newton", "Newton"), Config: UnitConfig{
			Dimension: dimForce, Symbol: "N", UCUMCode: "N",
			FactorUnits: FactorUnits{fu("unit:KiloGM", 1), fu("unit:M", 1), fu("unit:SEC", -2)},
		}},
		scaledUnit("unit:KiloN", "prefix:Kilo", "unit:N", labelled("Kilonewton", "")),
		derivedUnit("unit:J", labelled("Joule", "Joule"), fu("unit:N", 1), fu("unit:M", 1)),
		derivedUnit("unit:N-M", labelled("Newton Meter", ""), fu("unit:N", 1), fu("unit:M", 1)),
		derivedUnit("unit:W", labelled("Watt", "Watt"), fu("unit:J", 1), fu("unit:SEC", -1)),
		derivedUnit("unit:PA", labelled("Pascal", "Pascal"), fu("unit:N", 1), fu("unit:M", -2)),
		derivedUnit("unit:HZ", labelled("Hertz", "Hertz"), fu("unit:SEC", -1)),
		derivedUnit("unit:M2", Metadata{}, fu("unit:M", 2)),
		derivedUnit("unit:M-PER-SEC", Metadata{}, fu("unit:M", 1), fu("unit:SEC", -1)),
		derivedUnit("unit:KiloM-PER-HR", Metadata{}, fu("unit:KiloM", 1), fu("unit:HR", -1)),
	}
	for _, u := range defs {
		require.NoError(t, b.AddUnit(u))
	}

	for _, q := range []QuantityKindDefinition{
		{ID: "quantitykind:Length", Metadata: labelled("Length", "Länge"), Config: QuantityKindConfig{
			Dimension: dimLength, ApplicableUnitIDs: []string{"unit:M", "unit:KiloM", "unit:MilliM"},
		}},
		{ID: "quantitykind:Force", Metadata: labelled("Force", "Kraft"), Config: QuantityKindConfig{
			Dimension: dimForce, Symbol: "F", ApplicableUnitIDs: []string{"unit:N", "unit:KiloN"},
		}},
		{ID: "quantitykind:Temperature", Metadata: labelled("Temperature", "")},
		{ID: "quantitykind:ThermodynamicTemperature", Metadata: labelled("Thermodynamic Temperature", ""), Config: QuantityKindConfig{
			Dimension: dimTemp, BroaderIDs: []string{"quantitykind:Temperature"},
			ApplicableUnitIDs: []string{"unit:K", "unit:DEG_C", "unit:DEG_F"},
		}},
	} {
		require.NoError(t, b.AddQuantityKind(q))
	}

	require.NoError(t, b.AddSystemOfUnits(SystemOfUnitsDefinition{
		ID:       "sou:SI",
		Metadata: labelled("International System of Units", ""),
		Config: SystemOfUnitsConfig{
			Abbreviation: "SI",
			BaseUnitIDs:  []string{"unit:M", "unit:KiloGM", "unit:SEC", "unit:A", "unit:K"},
			UnitIDs:      []string{"unit:N", "unit:J", "unit:W"},
		},
	}))
	return b
}

// newTestCatalog builds the small SI catalog.
func newTestCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := newTestBuilder(t).Build(opts...)
	require.NoError(t, err)
	return c
}
