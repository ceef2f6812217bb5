package forecast

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	noiseAmplitude  = 0.1
	uncertaintyBase = 0.1
	horizonWidening = 0.5
)

// Engine is the forecast and scenario computation core. It is stateless:
// every call is a pure function of its inputs plus the read-only pattern and
// profile tables, so concurrent calls need no synchronization.
type Engine struct {
	coeffs ScenarioCoefficients
}

func NewEngine(coeffs ScenarioCoefficients) *Engine {
	return &Engine{coeffs: coeffs}
}

// GenerateForecast synthesizes a consumption series for the request. Samples
// are generated hourly and then rolled up to the requested interval. With
// req.Seed set, identical requests produce byte-identical series; the rng is
// local to the call, so concurrent seeded calls stay reproducible.
func (e *Engine) GenerateForecast(req Request) (*ForecastSeries, error) {
	if req.HorizonHours <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidHorizon, req.HorizonHours)
	}
	pattern, err := LookupPattern(req.Metric)
	if err != nil {
		return nil, err
	}
	profile, err := LookupProfile(req.ModelID)
	if err != nil {
		return nil, err
	}
	if _, err := ParseInterval(string(req.Interval)); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	points := make([]DataPoint, 0, req.HorizonHours)
	for i := 0; i < req.HorizonHours; i++ {
		ts := req.StartTime.Add(time.Duration(i) * time.Hour)
		points = append(points, e.samplePoint(ts, i, req, pattern, profile, rng))
	}

	hourly := &ForecastSeries{
		BuildingID: req.BuildingID,
		Metric:     req.Metric,
		Unit:       pattern.Unit,
		Interval:   IntervalHourly,
		StartTime:  req.StartTime,
		EndTime:    req.StartTime.Add(time.Duration(req.HorizonHours) * time.Hour),
		Points:     points,
	}

	series, err := Aggregate(hourly, req.Interval)
	if err != nil {
		return nil, err
	}
	series.Accuracy, series.Factors = Summarize(profile, req.IncludeWeather, req.IncludeCalendar, req.HorizonHours)
	return series, nil
}

// samplePoint produces the hourly sample at offset i: multiplicative pattern
// layers, then model noise, then the horizon-widening uncertainty band.
func (e *Engine) samplePoint(ts time.Time, i int, req Request, pattern PatternEntry, profile ModelProfile, rng *rand.Rand) DataPoint {
	value := pattern.Baseline

	if req.IncludeCalendar {
		if isWeekend(ts) {
			value *= pattern.WeekendMultiplier
		} else {
			value *= pattern.WeekdayMultiplier
		}
	}

	value *= pattern.HourlyMultipliers[ts.Hour()]

	if req.IncludeWeather {
		value *= weatherFactor(syntheticTemperature(ts.Hour(), rng))
	}

	noise := (rng.Float64()*2 - 1) * noiseAmplitude * profile.NoiseScale
	value *= 1 + noise
	if value < 0 {
		value = 0
	}

	// Band widens monotonically with distance into the horizon.
	horizonStretch := 1 + float64(i)/float64(req.HorizonHours)*horizonWidening
	halfWidth := uncertaintyBase * value * profile.UncertaintyScale * horizonStretch

	lower := value - halfWidth
	if lower < 0 {
		lower = 0
	}
	return DataPoint{
		Timestamp:  ts,
		Value:      value,
		LowerBound: lower,
		UpperBound: value + halfWidth,
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
