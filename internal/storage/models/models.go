package models

import "time"

// ForecastRecord is one audit row per forecast request. It stores request
// metadata and headline results only, never the meter series itself.
type ForecastRecord struct {
	ID              string
	BuildingID      string
	Metric          string
	Interval        string
	Model           string
	HorizonHours    int
	IncludeWeather  bool
	IncludeCalendar bool
	Seed            *int64
	PointCount      int
	MAPE            float64
	CacheHit        bool
	LatencyMS       int
	CreatedAt       time.Time
}

// ScenarioRecord captures the what-if parameters applied on top of a
// forecast request.
type ScenarioRecord struct {
	ID                          int
	ForecastID                  string
	OccupancyChangePercent      *float64
	TemperatureSetpoint         *float64
	OperatingHoursChangePercent *float64
	EfficiencyImprovement       *float64
	CreatedAt                   time.Time
}

// SystemMetric is one persisted operational sample, kept so the dashboard
// can chart backend health over windows longer than a scrape retention.
type SystemMetric struct {
	ID          int       `json:"id"`
	MetricName  string    `json:"metric_name"`
	MetricValue float64   `json:"metric_value"`
	Tags        string    `json:"tags,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
