package forecast

import (
	"fmt"
	"time"
)

// Aggregate rolls an hourly series up to the target interval. Buckets follow
// calendar boundaries (day, ISO week, month) in the timestamps' location.
// Values and both bounds are summed independently, so an aggregate band is
// exactly the sum of its constituents' bands. Hourly is a passthrough copy.
func Aggregate(series *ForecastSeries, target Interval) (*ForecastSeries, error) {
	if _, err := ParseInterval(string(target)); err != nil {
		return nil, err
	}

	out := &ForecastSeries{
		BuildingID: series.BuildingID,
		Metric:     series.Metric,
		Unit:       series.Unit,
		Interval:   target,
		StartTime:  series.StartTime,
		EndTime:    series.EndTime,
		Accuracy:   series.Accuracy,
		Factors:    copyFactors(series.Factors),
	}

	if target == IntervalHourly {
		out.Points = make([]DataPoint, len(series.Points))
		copy(out.Points, series.Points)
		return out, nil
	}

	var points []DataPoint
	for _, p := range series.Points {
		start := bucketStart(p.Timestamp, target)
		if n := len(points); n > 0 && points[n-1].Timestamp.Equal(start) {
			points[n-1].Value += p.Value
			points[n-1].LowerBound += p.LowerBound
			points[n-1].UpperBound += p.UpperBound
			continue
		}
		points = append(points, DataPoint{
			Timestamp:  start,
			Value:      p.Value,
			LowerBound: p.LowerBound,
			UpperBound: p.UpperBound,
		})
	}
	out.Points = points
	return out, nil
}

// bucketStart truncates a timestamp to the calendar boundary of the bucket
// that contains it. Weekly buckets start on the ISO week's Monday.
func bucketStart(t time.Time, target Interval) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch target {
	case IntervalDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case IntervalWeekly:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		sinceMonday := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -sinceMonday)
	case IntervalMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		panic(fmt.Sprintf("aggregate: unreachable interval %q", target))
	}
}

func copyFactors(factors []InfluencingFactor) []InfluencingFactor {
	if factors == nil {
		return nil
	}
	out := make([]InfluencingFactor, len(factors))
	copy(out, factors)
	return out
}
