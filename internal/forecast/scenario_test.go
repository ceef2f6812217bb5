package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func scenarioBaseline(t *testing.T, metric MetricKind) *ForecastSeries {
	t.Helper()
	e := NewEngine(DefaultScenarioCoefficients())
	req := baseRequest()
	req.Metric = metric
	req.HorizonHours = 48
	series, err := e.GenerateForecast(req)
	require.NoError(t, err)
	return series
}

// TestApplyScenario_Identity checks the identity law: no parameters set
// leaves every value and bound untouched.
func TestApplyScenario_Identity(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{})
	require.NoError(t, err)
	assert.Equal(t, baseline.Points, adjusted.Points)
	assert.NotSame(t, baseline, adjusted)
}

func TestApplyScenario_DoesNotMutateBaseline(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)
	original := make([]DataPoint, len(baseline.Points))
	copy(original, baseline.Points)

	_, err := e.ApplyScenario(baseline, ScenarioParameters{
		EquipmentEfficiencyImprovementPercent: floatPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, original, baseline.Points)
}

// TestApplyScenario_EfficiencyFactor: 50% efficiency improvement alone gives
// A = 1 - 0.45 = 0.55 for every point regardless of hour.
func TestApplyScenario_EfficiencyFactor(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		EquipmentEfficiencyImprovementPercent: floatPtr(50),
	})
	require.NoError(t, err)

	for i, p := range adjusted.Points {
		require.Greater(t, baseline.Points[i].Value, 0.0)
		assert.InDelta(t, 0.55, p.Value/baseline.Points[i].Value, 1e-12, "point %d", i)
		assert.InDelta(t, 0.55, p.UpperBound/baseline.Points[i].UpperBound, 1e-12, "point %d", i)
	}
}

// TestApplyScenario_SetpointCooling: setpoint 26 on chilledwater is delta=+4
// on a cooling metric, contribution -0.2, so A = 0.8.
func TestApplyScenario_SetpointCooling(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricChilledWater)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		TemperatureSetpoint: floatPtr(26),
	})
	require.NoError(t, err)

	for i, p := range adjusted.Points {
		assert.InDelta(t, 0.8, p.Value/baseline.Points[i].Value, 1e-12,
			"higher setpoint must reduce cooling load")
	}
}

func TestApplyScenario_SetpointHeating(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricGas)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		TemperatureSetpoint: floatPtr(24),
	})
	require.NoError(t, err)

	// delta=+2 on a heating metric: A = 1.1.
	for i, p := range adjusted.Points {
		assert.InDelta(t, 1.1, p.Value/baseline.Points[i].Value, 1e-12)
	}
}

func TestApplyScenario_SetpointUnaffectedMetric(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricWater)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		TemperatureSetpoint: floatPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, baseline.Points, adjusted.Points, "domestic water ignores the setpoint")
}

// TestApplyScenario_OccupancyWindows: occupancy shifts weigh heavier inside
// business hours than outside them.
func TestApplyScenario_OccupancyWindows(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		OccupancyChangePercent: floatPtr(100),
	})
	require.NoError(t, err)

	for i, p := range adjusted.Points {
		hour := p.Timestamp.Hour()
		ratio := p.Value / baseline.Points[i].Value
		if hour >= 8 && hour <= 18 {
			assert.InDelta(t, 1.6, ratio, 1e-12, "hour %d inside business hours", hour)
		} else {
			assert.InDelta(t, 1.2, ratio, 1e-12, "hour %d outside business hours", hour)
		}
	}
}

// TestApplyScenario_OperatingHoursWindows: operating-hours changes only act
// in the morning and evening transition windows.
func TestApplyScenario_OperatingHoursWindows(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		OperatingHoursChangePercent: floatPtr(-50),
	})
	require.NoError(t, err)

	for i, p := range adjusted.Points {
		hour := p.Timestamp.Hour()
		ratio := p.Value / baseline.Points[i].Value
		inTransition := (hour >= 6 && hour <= 8) || (hour >= 18 && hour <= 22)
		if inTransition {
			assert.InDelta(t, 0.6, ratio, 1e-12, "hour %d in transition window", hour)
		} else {
			assert.InDelta(t, 1.0, ratio, 1e-12, "hour %d outside transition window", hour)
		}
	}
}

// TestApplyScenario_FloorClamp: contributions below -0.9 clamp A to exactly
// the 0.1 floor, never lower.
func TestApplyScenario_FloorClamp(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		OccupancyChangePercent:                floatPtr(-100),
		EquipmentEfficiencyImprovementPercent: floatPtr(100),
	})
	require.NoError(t, err)

	for i, p := range adjusted.Points {
		assert.InDelta(t, 0.1, p.Value/baseline.Points[i].Value, 1e-12,
			"stacked reductions must hit the floor exactly")
	}
}

func TestApplyScenario_CombinedContributionsAreAdditive(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricChilledWater)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		TemperatureSetpoint:                   floatPtr(26), // -0.2
		EquipmentEfficiencyImprovementPercent: floatPtr(20), // -0.18
	})
	require.NoError(t, err)

	for i, p := range adjusted.Points {
		assert.InDelta(t, 1-0.2-0.18, p.Value/baseline.Points[i].Value, 1e-12)
	}
}

func TestApplyScenario_ParameterOutOfRange(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricElectricity)

	cases := []ScenarioParameters{
		{OccupancyChangePercent: floatPtr(150)},
		{OccupancyChangePercent: floatPtr(-101)},
		{OperatingHoursChangePercent: floatPtr(120)},
		{EquipmentEfficiencyImprovementPercent: floatPtr(-5)},
		{EquipmentEfficiencyImprovementPercent: floatPtr(101)},
	}
	for _, params := range cases {
		_, err := e.ApplyScenario(baseline, params)
		assert.ErrorIs(t, err, ErrParameterOutOfRange)
	}
}

func TestApplyScenario_PreservesBoundOrdering(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	baseline := scenarioBaseline(t, MetricSteam)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		OccupancyChangePercent: floatPtr(40),
		TemperatureSetpoint:    floatPtr(19),
	})
	require.NoError(t, err)

	for _, p := range adjusted.Points {
		assert.LessOrEqual(t, p.LowerBound, p.Value)
		assert.GreaterOrEqual(t, p.UpperBound, p.Value)
		assert.GreaterOrEqual(t, p.Value, 0.0)
	}
}

func TestThermalRoleTable(t *testing.T) {
	assert.Equal(t, ThermalCooling, ThermalRoleOf(MetricElectricity))
	assert.Equal(t, ThermalCooling, ThermalRoleOf(MetricChilledWater))
	assert.Equal(t, ThermalHeating, ThermalRoleOf(MetricGas))
	assert.Equal(t, ThermalHeating, ThermalRoleOf(MetricSteam))
	assert.Equal(t, ThermalHeating, ThermalRoleOf(MetricHotWater))
	assert.Equal(t, ThermalNone, ThermalRoleOf(MetricWater))
}

// Aggregated series keep working: daily points carry midnight timestamps,
// so the off-hours occupancy weight applies.
func TestApplyScenario_OnAggregatedSeries(t *testing.T) {
	e := NewEngine(DefaultScenarioCoefficients())
	req := baseRequest()
	req.Interval = IntervalDaily
	req.HorizonHours = 72
	baseline, err := e.GenerateForecast(req)
	require.NoError(t, err)
	require.Len(t, baseline.Points, 3)

	adjusted, err := e.ApplyScenario(baseline, ScenarioParameters{
		OccupancyChangePercent: floatPtr(50),
	})
	require.NoError(t, err)
	for i, p := range adjusted.Points {
		assert.Equal(t, 0, p.Timestamp.Hour())
		assert.InDelta(t, 1.1, p.Value/baseline.Points[i].Value, 1e-12)
	}
}

func TestScenarioParametersValidateAndEmpty(t *testing.T) {
	assert.True(t, ScenarioParameters{}.IsEmpty())
	assert.False(t, ScenarioParameters{TemperatureSetpoint: floatPtr(22)}.IsEmpty())
	assert.NoError(t, ScenarioParameters{}.Validate())
	assert.NoError(t, ScenarioParameters{
		OccupancyChangePercent:                floatPtr(-100),
		OperatingHoursChangePercent:           floatPtr(100),
		EquipmentEfficiencyImprovementPercent: floatPtr(0),
	}.Validate())
}
