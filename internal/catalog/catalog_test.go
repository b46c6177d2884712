package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/units"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	require.NoError(t, err)
	return c
}

func TestLoad_ValidatesAndVersions(t *testing.T) {
	c := loadCatalog(t)
	assert.Equal(t, "1.0.0", c.Version())
	assert.NotEmpty(t, c.Keys())
}

func TestMetric_Lookup(t *testing.T) {
	c := loadCatalog(t)

	m, err := c.Metric("total_distance")
	require.NoError(t, err)
	assert.Equal(t, units.Distance, m.Dimension)
	assert.Equal(t, "m", m.CanonicalUnit)
	assert.True(t, m.Allows("km"))
	assert.False(t, m.Allows("km/h"))

	_, err = c.Metric("does_not_exist")
	assert.ErrorIs(t, err, catalog.ErrUnknownMetric)
}

func TestAllowedUnits(t *testing.T) {
	c := loadCatalog(t)
	au, err := c.AllowedUnits("total_distance")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m", "km", "yd"}, au)

	_, err = c.AllowedUnits("nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownMetric)
}

func TestDisplayUnitOrDefault_FallsBackInsteadOfCrashing(t *testing.T) {
	c := loadCatalog(t)
	assert.Equal(t, "m", c.DisplayUnitOrDefault("ghost_metric"))
	assert.Equal(t, "m/s", c.DisplayUnitOrDefault("max_speed"))
}

func TestCompatibleWith(t *testing.T) {
	c := loadCatalog(t)
	assert.True(t, c.CompatibleWith("1.0.0"))
	assert.True(t, c.CompatibleWith("1.2.7"))
	assert.False(t, c.CompatibleWith("2.0.0"))
	assert.False(t, c.CompatibleWith(""))
}

func TestChoices_DeduplicatesConcepts(t *testing.T) {
	c := loadCatalog(t)
	choices := c.Choices("en")

	// The two "Time on field" unit variants collapse to one concept; the
	// canonical-unit variant (seconds) wins.
	var timeOnField []string
	for _, ch := range choices {
		if ch.Label == "Time on field" {
			timeOnField = append(timeOnField, ch.Key)
		}
	}
	require.Len(t, timeOnField, 1)
	assert.Equal(t, "time_on_field_s", timeOnField[0])
}

func TestChoices_StripUnitSuffixFromLabel(t *testing.T) {
	c := loadCatalog(t)
	for _, ch := range c.Choices("en") {
		assert.NotRegexp(t, `\([^)]*\)$`, ch.Label)
	}
}

func TestConceptKey(t *testing.T) {
	a := catalog.ConceptKey("Time on field (min)", units.Time)
	b := catalog.ConceptKey("Time on field (s)", units.Time)
	assert.Equal(t, a, b)

	other := catalog.ConceptKey("Time on field", units.Distance)
	assert.NotEqual(t, a, other)
}

func TestExcludedMetricsAreFlagged(t *testing.T) {
	c := loadCatalog(t)
	for _, key := range []string{"max_speed", "max_acceleration", "max_heart_rate"} {
		m, err := c.Metric(key)
		require.NoError(t, err)
		assert.True(t, m.ExcludeFromAverages, "%s must be excluded from averages", key)
	}
	m, err := c.Metric("total_distance")
	require.NoError(t, err)
	assert.False(t, m.ExcludeFromAverages)
}
