package forecast

import (
	"fmt"
	"time"
)

// MetricKind identifies one of the six utility meters a building reports.
type MetricKind string

const (
	MetricElectricity  MetricKind = "electricity"
	MetricWater        MetricKind = "water"
	MetricGas          MetricKind = "gas"
	MetricSteam        MetricKind = "steam"
	MetricHotWater     MetricKind = "hotwater"
	MetricChilledWater MetricKind = "chilledwater"
)

// MetricKinds lists every recognized metric in a stable order.
func MetricKinds() []MetricKind {
	return []MetricKind{
		MetricElectricity,
		MetricWater,
		MetricGas,
		MetricSteam,
		MetricHotWater,
		MetricChilledWater,
	}
}

func ParseMetric(s string) (MetricKind, error) {
	m := MetricKind(s)
	if _, ok := patternTable[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Interval is the output granularity of a forecast series.
type Interval string

const (
	IntervalHourly  Interval = "hourly"
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

func ParseInterval(s string) (Interval, error) {
	switch iv := Interval(s); iv {
	case IntervalHourly, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return iv, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedInterval, s)
	}
}

// DataPoint is one forecast sample. LowerBound <= Value <= UpperBound and
// Value >= 0 hold for every point the engine emits.
type DataPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

type InfluencingFactor struct {
	Name   string  `json:"name"`
	Impact float64 `json:"impact"`
}

type AccuracyMetrics struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// ForecastSeries is the result handed back to the caller. Each request gets
// its own instance; the engine never retains or mutates a returned series.
type ForecastSeries struct {
	BuildingID string              `json:"building_id"`
	Metric     MetricKind          `json:"metric"`
	Unit       string              `json:"unit"`
	Interval   Interval            `json:"interval"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    time.Time           `json:"end_time"`
	Points     []DataPoint         `json:"points"`
	Accuracy   AccuracyMetrics     `json:"accuracy"`
	Factors    []InfluencingFactor `json:"influencing_factors"`
}

// Request describes one forecast generation call. HorizonHours is the number
// of hourly samples generated before aggregation to Interval. A nil Seed
// draws entropy from the clock; a set Seed makes the output reproducible.
type Request struct {
	BuildingID      string
	Metric          MetricKind
	StartTime       time.Time
	HorizonHours    int
	Interval        Interval
	ModelID         string
	IncludeWeather  bool
	IncludeCalendar bool
	Seed            *int64
}

// ScenarioParameters are the optional what-if knobs. A nil field contributes
// no adjustment; an all-nil struct is the identity transform.
type ScenarioParameters struct {
	OccupancyChangePercent                *float64 `json:"occupancy_change_percent,omitempty"`
	TemperatureSetpoint                   *float64 `json:"temperature_setpoint,omitempty"`
	OperatingHoursChangePercent           *float64 `json:"operating_hours_change_percent,omitempty"`
	EquipmentEfficiencyImprovementPercent *float64 `json:"equipment_efficiency_improvement_percent,omitempty"`
}

func (p ScenarioParameters) Validate() error {
	if v := p.OccupancyChangePercent; v != nil && (*v < -100 || *v > 100) {
		return fmt.Errorf("%w: occupancy_change_percent %.1f outside [-100, 100]", ErrParameterOutOfRange, *v)
	}
	if v := p.OperatingHoursChangePercent; v != nil && (*v < -100 || *v > 100) {
		return fmt.Errorf("%w: operating_hours_change_percent %.1f outside [-100, 100]", ErrParameterOutOfRange, *v)
	}
	if v := p.EquipmentEfficiencyImprovementPercent; v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("%w: equipment_efficiency_improvement_percent %.1f outside [0, 100]", ErrParameterOutOfRange, *v)
	}
	return nil
}

// IsEmpty reports whether no parameter is set at all.
func (p ScenarioParameters) IsEmpty() bool {
	return p.OccupancyChangePercent == nil &&
		p.TemperatureSetpoint == nil &&
		p.OperatingHoursChangePercent == nil &&
		p.EquipmentEfficiencyImprovementPercent == nil
}
