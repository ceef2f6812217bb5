package forecast

// ThermalRole records which physical direction a setpoint change pushes a
// metric. Kept as a table rather than scattered conditionals so the rule is
// testable in one place.
type ThermalRole int

const (
	ThermalNone ThermalRole = iota
	ThermalHeating
	ThermalCooling
)

var thermalRoles = map[MetricKind]ThermalRole{
	MetricElectricity:  ThermalCooling,
	MetricChilledWater: ThermalCooling,
	MetricGas:          ThermalHeating,
	MetricSteam:        ThermalHeating,
	MetricHotWater:     ThermalHeating,
	MetricWater:        ThermalNone,
}

// ThermalRoleOf returns how a setpoint change affects a metric's load.
func ThermalRoleOf(metric MetricKind) ThermalRole {
	return thermalRoles[metric]
}

func (r ThermalRole) String() string {
	switch r {
	case ThermalHeating:
		return "heating"
	case ThermalCooling:
		return "cooling"
	default:
		return "none"
	}
}

// ScenarioCoefficients are the empirical weights and time windows of the
// what-if model. They have no stated physical derivation, so they stay
// configurable instead of hard-coded; DefaultScenarioCoefficients matches
// the values the dashboard was calibrated against.
type ScenarioCoefficients struct {
	OccupancyBusinessWeight float64
	OccupancyOffHoursWeight float64
	BusinessHoursStart      int
	BusinessHoursEnd        int

	SetpointPerDegree float64
	ComfortSetpointC  float64

	OperatingHoursWeight    float64
	MorningTransitionStart  int
	MorningTransitionEnd    int
	EveningTransitionStart  int
	EveningTransitionEnd    int

	EfficiencyWeight float64

	// FloorFactor is the lowest composite factor allowed; it prevents a
	// stacked scenario from collapsing consumption to zero or below.
	FloorFactor float64
}

func DefaultScenarioCoefficients() ScenarioCoefficients {
	return ScenarioCoefficients{
		OccupancyBusinessWeight: 0.6,
		OccupancyOffHoursWeight: 0.2,
		BusinessHoursStart:      8,
		BusinessHoursEnd:        18,
		SetpointPerDegree:       0.05,
		ComfortSetpointC:        22.0,
		OperatingHoursWeight:    0.8,
		MorningTransitionStart:  6,
		MorningTransitionEnd:    8,
		EveningTransitionStart:  18,
		EveningTransitionEnd:    22,
		EfficiencyWeight:        0.9,
		FloorFactor:             0.1,
	}
}

// ApplyScenario recomputes a baseline series under the given what-if
// parameters. It is a pure transform: the baseline is never touched, every
// point of the result is the baseline point scaled by one composite factor,
// so lower <= value <= upper is preserved. Empty parameters return an
// identical copy.
func (e *Engine) ApplyScenario(baseline *ForecastSeries, params ScenarioParameters) (*ForecastSeries, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	role := ThermalRoleOf(baseline.Metric)
	adjusted := &ForecastSeries{
		BuildingID: baseline.BuildingID,
		Metric:     baseline.Metric,
		Unit:       baseline.Unit,
		Interval:   baseline.Interval,
		StartTime:  baseline.StartTime,
		EndTime:    baseline.EndTime,
		Accuracy:   baseline.Accuracy,
		Factors:    copyFactors(baseline.Factors),
		Points:     make([]DataPoint, len(baseline.Points)),
	}

	for i, p := range baseline.Points {
		a := e.adjustmentFactor(p.Timestamp.Hour(), role, params)
		adjusted.Points[i] = DataPoint{
			Timestamp:  p.Timestamp,
			Value:      p.Value * a,
			LowerBound: p.LowerBound * a,
			UpperBound: p.UpperBound * a,
		}
	}
	return adjusted, nil
}

// adjustmentFactor composes the per-point multiplicative factor A. Each
// present parameter contributes an additive term, so the composition is
// order-independent; the result is floored at FloorFactor.
func (e *Engine) adjustmentFactor(hour int, role ThermalRole, params ScenarioParameters) float64 {
	c := e.coeffs
	sum := 0.0

	if v := params.OccupancyChangePercent; v != nil {
		weight := c.OccupancyOffHoursWeight
		if hour >= c.BusinessHoursStart && hour <= c.BusinessHoursEnd {
			weight = c.OccupancyBusinessWeight
		}
		sum += (*v / 100) * weight
	}

	if v := params.TemperatureSetpoint; v != nil {
		delta := *v - c.ComfortSetpointC
		switch role {
		case ThermalCooling:
			// Raising the setpoint relaxes cooling load.
			sum += -c.SetpointPerDegree * delta
		case ThermalHeating:
			sum += c.SetpointPerDegree * delta
		}
	}

	if v := params.OperatingHoursChangePercent; v != nil {
		morning := hour >= c.MorningTransitionStart && hour <= c.MorningTransitionEnd
		evening := hour >= c.EveningTransitionStart && hour <= c.EveningTransitionEnd
		if morning || evening {
			sum += (*v / 100) * c.OperatingHoursWeight
		}
	}

	if v := params.EquipmentEfficiencyImprovementPercent; v != nil {
		sum -= (*v / 100) * c.EfficiencyWeight
	}

	a := 1 + sum
	if a < c.FloorFactor {
		a = c.FloorFactor
	}
	return a
}
