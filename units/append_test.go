package units

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accelerationSet() ContributionSet {
	return ContributionSet{
		Units: []UnitDefinition{
			derivedUnit("unit:M-PER-SEC2", Metadata{}, fu("unit:M", 1), fu("unit:SEC", -2)),
			scaledUnit("unit:MilliSEC", "prefix:Milli", "unit:SEC", labelled("Millisecond", "Millisekunde")),
		},
		QuantityKinds: []QuantityKindDefinition{
			{ID: "quantitykind:Acceleration", Metadata: labelled("Acceleration", "Beschleunigung"), Config: QuantityKindConfig{
				Dimension: "A0E0L1I0M0H0T-2D0", ApplicableUnitIDs: []string{"unit:M-PER-SEC2"},
			}},
		},
	}
}

func TestCatalog_Append_PublishesConnectedEntities(t *testing.T) {
	c := newTestCatalog(t)

	// WHEN a contribution adds a derived unit, a scaled unit and a kind
	rec, err := c.Append(accelerationSet())

	// THEN the receipt lists what was applied
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.AppliedAt.IsZero())
	assert.Equal(t, []string{"unit:M-PER-SEC2", "unit:MilliSEC"}, rec.UnitIDs)
	assert.Equal(t, []string{"quantitykind:Acceleration"}, rec.QuantityKindIDs)

	// AND the new units are connected like built ones
	acc := c.MustUnit("unit:M-PER-SEC2")
	assert.Equal(t, "A0E0L1I0M0H0T-2D0", acc.Dimension().String())
	assert.Equal(t, "m/s²", acc.Symbol())
	assert.Equal(t, "Meter per Square Second", acc.Label("en"))
	assert.Equal(t, []string{"quantitykind:Acceleration"}, acc.QuantityKindIDs())

	ms := c.MustUnit("unit:MilliSEC")
	m, ok := ms.Multiplier()
	require.True(t, ok)
	assert.Equal(t, "0.001", FormatRat(m))
	scaled, err := c.ScaledUnits("unit:SEC")
	require.NoError(t, err)
	assert.Equal(t, []string{"unit:MilliSEC"}, ids(scaled))

	// AND searchable, matchable and convertible
	assert.Equal(t, []string{"unit:M-PER-SEC2"}, ids(c.SearchUnits("Meter per Square Second", 0)))
	assert.Equal(t, []string{"quantitykind:Acceleration"}, ids(c.SearchQuantityKinds("beschleunigung", IgnoreCase)))
	found, err := c.DerivedUnits(ModeBestMatch, []FactorSelector{sel("unit:M", 1), sel("unit:SEC", -2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"unit:M-PER-SEC2"}, ids(found))
	out, err := c.Convert(MustRat("1500"), "unit:MilliSEC", "unit:SEC")
	require.NoError(t, err)
	assert.Equal(t, "1.5", FormatRat(out))
}

func TestCatalog_Append_LinksExistingEntitiesWithoutMutatingOldGeneration(t *testing.T) {
	c := newTestCatalog(t)
	before, err := c.QuantityKind("quantitykind:Length")
	require.NoError(t, err)

	// GIVEN a new unit applicable to an existing kind
	foot := baseUnit("unit:FT", "0.3048", dimLength, "ft", "[ft_i]", labelled("Foot", "Fuß"))
	foot.Config.QuantityKindIDs = []string{"quantitykind:Length"}

	_, err = c.Append(ContributionSet{Units: []UnitDefinition{foot}})
	require.NoError(t, err)

	// THEN the published kind links back to it
	after, err := c.QuantityKind("quantitykind:Length")
	require.NoError(t, err)
	assert.Contains(t, after.ApplicableUnitIDs(), "unit:FT")

	// AND the entity read before the append is unchanged
	assert.NotContains(t, before.ApplicableUnitIDs(), "unit:FT")
}

func TestCatalog_Append_AllOrNothing(t *testing.T) {
	c := newTestCatalog(t)
	unitsBefore := len(c.Units())

	// GIVEN a contribution whose second unit has a dangling reference
	set := ContributionSet{Units: []UnitDefinition{
		baseUnit("unit:FT", "0.3048", dimLength, "ft", "[ft_i]", labelled("Foot", "")),
		derivedUnit("unit:FT-PER-FORTNIGHT", Metadata{}, fu("unit:FT", 1), fu("unit:FORTNIGHT", -1)),
	}}

	// WHEN appended
	_, err := c.Append(set)

	// THEN it fails and nothing is published
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "unit:FORTNIGHT", nf.ID)
	assert.Len(t, c.Units(), unitsBefore)
	_, err = c.Unit("unit:FT")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, c.SearchUnits("Foot", 0))
}

func TestCatalog_Append_InvalidSets(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Append(ContributionSet{})
	assert.True(t, errors.Is(err, ErrArgument), "empty")

	dup := baseUnit("unit:FT", "0.3048", dimLength, "ft", "[ft_i]", Metadata{})
	_, err = c.Append(ContributionSet{Units: []UnitDefinition{dup, dup}})
	assert.True(t, errors.Is(err, ErrArgument), "duplicate within set")

	_, err = c.Append(ContributionSet{Units: []UnitDefinition{baseUnit("unit:M", "1", dimLength, "m", "m", Metadata{})}})
	assert.True(t, errors.Is(err, ErrArgument), "existing id")

	_, err = c.Append(ContributionSet{Units: []UnitDefinition{derivedUnit("unit:X", Metadata{}, fu("unit:X", 1))}})
	assert.True(t, errors.Is(err, ErrInternalConsistency), "self reference")
}

func TestCatalog_Append_ConcurrentReaders(t *testing.T) {
	c := newTestCatalog(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := c.Convert(MustRat("1"), "unit:KiloM", "unit:M"); err != nil {
					errs <- err
					return
				}
				if _, err := c.Matches("unit:N", newtonSelectors); err != nil {
					errs <- err
					return
				}
				if len(c.SearchUnits("Meter", 0)) != 1 {
					errs <- errors.New("label index lost unit:M")
					return
				}
			}
		}()
	}

	_, err := c.Append(accelerationSet())
	require.NoError(t, err)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	_, err = c.Unit("unit:M-PER-SEC2")
	assert.NoError(t, err)
}
