package forecast

import "fmt"

// PatternEntry is the static load shape of one metric: a baseline hourly
// magnitude, weekday/weekend day-level multipliers and a 24-slot hour-of-day
// multiplier curve. Lookups return a copy, so the table stays read-only.
type PatternEntry struct {
	Baseline          float64
	Unit              string
	WeekdayMultiplier float64
	WeekendMultiplier float64
	HourlyMultipliers [24]float64
}

// patternTable is built once at init and never written afterwards, so
// concurrent readers need no locking.
var patternTable = map[MetricKind]PatternEntry{
	MetricElectricity: {
		Baseline:          125.0,
		Unit:              "kWh",
		WeekdayMultiplier: 1.0,
		WeekendMultiplier: 0.62,
		HourlyMultipliers: [24]float64{
			0.55, 0.52, 0.50, 0.50, 0.52, 0.60,
			0.75, 0.90, 1.05, 1.15, 1.20, 1.25,
			1.22, 1.24, 1.25, 1.20, 1.12, 1.05,
			0.95, 0.85, 0.75, 0.68, 0.62, 0.58,
		},
	},
	MetricWater: {
		Baseline:          6.4,
		Unit:              "m3",
		WeekdayMultiplier: 1.0,
		WeekendMultiplier: 0.55,
		HourlyMultipliers: [24]float64{
			0.30, 0.25, 0.22, 0.22, 0.28, 0.50,
			0.95, 1.30, 1.20, 1.00, 0.90, 0.95,
			1.05, 0.95, 0.85, 0.80, 0.90, 1.10,
			1.30, 1.25, 1.00, 0.75, 0.50, 0.38,
		},
	},
	MetricGas: {
		Baseline:          52.0,
		Unit:              "m3",
		WeekdayMultiplier: 1.0,
		WeekendMultiplier: 0.70,
		HourlyMultipliers: [24]float64{
			0.70, 0.68, 0.68, 0.70, 0.80, 1.10,
			1.40, 1.35, 1.20, 1.00, 0.90, 0.85,
			0.82, 0.80, 0.80, 0.85, 0.95, 1.10,
			1.15, 1.05, 0.95, 0.88, 0.78, 0.72,
		},
	},
	MetricSteam: {
		Baseline:          41.0,
		Unit:              "kg",
		WeekdayMultiplier: 1.0,
		WeekendMultiplier: 0.68,
		HourlyMultipliers: [24]float64{
			0.65, 0.62, 0.62, 0.66, 0.78, 1.15,
			1.45, 1.40, 1.22, 1.05, 0.92, 0.85,
			0.82, 0.80, 0.82, 0.88, 0.98, 1.08,
			1.10, 1.00, 0.90, 0.82, 0.74, 0.68,
		},
	},
	MetricHotWater: {
		Baseline:          18.5,
		Unit:              "m3",
		WeekdayMultiplier: 1.0,
		WeekendMultiplier: 0.60,
		HourlyMultipliers: [24]float64{
			0.35, 0.30, 0.28, 0.28, 0.35, 0.65,
			1.20, 1.45, 1.25, 1.00, 0.85, 0.80,
			0.85, 0.80, 0.75, 0.75, 0.85, 1.05,
			1.25, 1.30, 1.10, 0.85, 0.60, 0.45,
		},
	},
	MetricChilledWater: {
		Baseline:          96.0,
		Unit:              "ton-h",
		WeekdayMultiplier: 1.0,
		WeekendMultiplier: 0.58,
		HourlyMultipliers: [24]float64{
			0.45, 0.42, 0.40, 0.40, 0.42, 0.50,
			0.65, 0.85, 1.05, 1.20, 1.32, 1.40,
			1.45, 1.48, 1.45, 1.38, 1.25, 1.10,
			0.95, 0.80, 0.68, 0.58, 0.52, 0.48,
		},
	},
}

// LookupPattern returns the load shape for a metric, or ErrUnknownMetric.
func LookupPattern(metric MetricKind) (PatternEntry, error) {
	entry, ok := patternTable[metric]
	if !ok {
		return PatternEntry{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return entry, nil
}
