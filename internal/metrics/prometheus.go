package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ForecastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enerboard_forecast_duration_seconds",
			Help:    "Forecast generation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"metric", "interval"},
	)

	ForecastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enerboard_forecast_total",
			Help: "Total number of forecast requests",
		},
		[]string{"metric", "status"},
	)

	ScenarioTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enerboard_scenario_total",
			Help: "Total number of scenario simulations",
		},
		[]string{"status"},
	)

	HorizonHours = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enerboard_forecast_horizon_hours",
			Help:    "Requested forecast horizon in hours",
			Buckets: []float64{24, 72, 168, 336, 720, 2160, 8760},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enerboard_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enerboard_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ActiveStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enerboard_active_forecast_streams",
			Help: "Open websocket forecast streams",
		},
	)
)

func Init() {
	prometheus.MustRegister(ForecastDuration)
	prometheus.MustRegister(ForecastTotal)
	prometheus.MustRegister(ScenarioTotal)
	prometheus.MustRegister(HorizonHours)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ActiveStreams)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
