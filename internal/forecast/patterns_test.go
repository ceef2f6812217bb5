package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPattern_AllMetrics(t *testing.T) {
	for _, metric := range MetricKinds() {
		entry, err := LookupPattern(metric)
		require.NoError(t, err, metric)

		assert.Greater(t, entry.Baseline, 0.0, metric)
		assert.NotEmpty(t, entry.Unit, metric)
		assert.Greater(t, entry.WeekdayMultiplier, 0.0, metric)
		assert.Greater(t, entry.WeekendMultiplier, 0.0, metric)
		for hour, m := range entry.HourlyMultipliers {
			assert.GreaterOrEqual(t, m, 0.0, "%s hour %d", metric, hour)
		}
	}
}

func TestLookupPattern_Unknown(t *testing.T) {
	_, err := LookupPattern(MetricKind("oil"))
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("chilledwater")
	require.NoError(t, err)
	assert.Equal(t, MetricChilledWater, m)

	_, err = ParseMetric("diesel")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestParseInterval(t *testing.T) {
	for _, s := range []string{"hourly", "daily", "weekly", "monthly"} {
		iv, err := ParseInterval(s)
		require.NoError(t, err)
		assert.Equal(t, Interval(s), iv)
	}
	_, err := ParseInterval("quarterly")
	assert.ErrorIs(t, err, ErrUnsupportedInterval)
}

func TestLookupProfile_AllModels(t *testing.T) {
	for _, id := range ModelIDs() {
		profile, err := LookupProfile(id)
		require.NoError(t, err, id)
		assert.Equal(t, id, profile.ID)
		assert.Greater(t, profile.NoiseScale, 0.0)
		assert.Greater(t, profile.UncertaintyScale, 0.0)
		assert.NotEmpty(t, profile.Factors)
	}
}

func TestLookupProfile_Unknown(t *testing.T) {
	_, err := LookupProfile("lstm")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

// The registry hands out copies: mutating a returned factor slice must not
// leak into later lookups.
func TestLookupProfile_CopyIsolation(t *testing.T) {
	a, err := LookupProfile("simple")
	require.NoError(t, err)
	a.Factors[0].Impact = 99

	b, err := LookupProfile("simple")
	require.NoError(t, err)
	assert.NotEqual(t, 99.0, b.Factors[0].Impact)
}
