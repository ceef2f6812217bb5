package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enerboard/backend/internal/cache/redis"
	"github.com/enerboard/backend/internal/forecast"
	"github.com/enerboard/backend/internal/metrics"
	"github.com/enerboard/backend/internal/storage/models"
	"github.com/enerboard/backend/internal/storage/sqlite"
	"github.com/enerboard/backend/pkg/config"
	"github.com/enerboard/backend/pkg/logger"
)

type ForecastHandler struct {
	engine *forecast.Engine
	store  *sqlite.Client
	cache  *redis.Client // nil when redis is disabled
	cfg    config.ForecastConfig
}

func NewForecastHandler(engine *forecast.Engine, store *sqlite.Client, cache *redis.Client, cfg config.ForecastConfig) *ForecastHandler {
	return &ForecastHandler{
		engine: engine,
		store:  store,
		cache:  cache,
		cfg:    cfg,
	}
}

type forecastRequest struct {
	BuildingID      string `json:"building_id"`
	Metric          string `json:"metric"`
	StartTime       string `json:"start_time,omitempty"`
	HorizonHours    int    `json:"horizon_hours,omitempty"`
	Interval        string `json:"interval,omitempty"`
	Model           string `json:"model,omitempty"`
	IncludeWeather  bool   `json:"include_weather"`
	IncludeCalendar bool   `json:"include_calendar"`
	Seed            *int64 `json:"seed,omitempty"`
}

type scenarioRequest struct {
	forecastRequest
	Scenario forecast.ScenarioParameters `json:"scenario"`
}

// toEngineRequest fills caller-policy defaults: missing model falls back to
// the configured default (the registry itself never falls back), missing
// interval means hourly, missing start means the top of the current hour.
func (h *ForecastHandler) toEngineRequest(body forecastRequest) (forecast.Request, error) {
	req := forecast.Request{
		BuildingID:      body.BuildingID,
		Metric:          forecast.MetricKind(body.Metric),
		HorizonHours:    body.HorizonHours,
		Interval:        forecast.Interval(body.Interval),
		ModelID:         body.Model,
		IncludeWeather:  body.IncludeWeather,
		IncludeCalendar: body.IncludeCalendar,
		Seed:            body.Seed,
	}
	if req.ModelID == "" {
		req.ModelID = h.cfg.DefaultModel
	}
	if body.Interval == "" {
		req.Interval = forecast.IntervalHourly
	}
	if req.HorizonHours == 0 {
		req.HorizonHours = h.cfg.DefaultHorizonHours
	}
	if body.StartTime == "" {
		req.StartTime = time.Now().UTC().Truncate(time.Hour)
	} else {
		ts, err := time.Parse(time.RFC3339, body.StartTime)
		if err != nil {
			return forecast.Request{}, errors.New("start_time must be RFC3339")
		}
		req.StartTime = ts
	}
	return req, nil
}

func (h *ForecastHandler) HandleForecast(c *fiber.Ctx) error {
	var body forecastRequest
	if err := c.BodyParser(&body); err != nil {
		logger.Error("Failed to parse forecast request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.BuildingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "building_id is required",
		})
	}

	req, err := h.toEngineRequest(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.HorizonHours > h.cfg.MaxHorizonHours {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "horizon_hours exceeds the configured maximum",
		})
	}

	start := time.Now()
	requestID := uuid.New().String()

	series, cached, err := h.generate(c, req)
	if err != nil {
		metrics.ForecastTotal.WithLabelValues(body.Metric, "error").Inc()
		logger.Error("Forecast generation failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	latency := time.Since(start)
	metrics.ForecastTotal.WithLabelValues(string(req.Metric), "success").Inc()
	metrics.ForecastDuration.WithLabelValues(string(req.Metric), string(req.Interval)).Observe(latency.Seconds())
	metrics.HorizonHours.Observe(float64(req.HorizonHours))

	h.audit(c, requestID, req, series, cached, latency)

	logger.Info("Forecast generated",
		zap.String("request_id", requestID),
		zap.String("building_id", req.BuildingID),
		zap.String("metric", string(req.Metric)),
		zap.Int("horizon_hours", req.HorizonHours),
		zap.Bool("cached", cached),
	)

	return c.JSON(fiber.Map{
		"request_id": requestID,
		"series":     series,
		"cached":     cached,
		"latency_ms": latency.Milliseconds(),
	})
}

func (h *ForecastHandler) HandleScenario(c *fiber.Ctx) error {
	var body scenarioRequest
	if err := c.BodyParser(&body); err != nil {
		logger.Error("Failed to parse scenario request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.BuildingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "building_id is required",
		})
	}

	req, err := h.toEngineRequest(body.forecastRequest)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	start := time.Now()
	requestID := uuid.New().String()

	baseline, cached, err := h.generate(c, req)
	if err != nil {
		metrics.ScenarioTotal.WithLabelValues("error").Inc()
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	adjusted, err := h.engine.ApplyScenario(baseline, body.Scenario)
	if err != nil {
		metrics.ScenarioTotal.WithLabelValues("error").Inc()
		logger.Error("Scenario adjustment failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	latency := time.Since(start)
	metrics.ScenarioTotal.WithLabelValues("success").Inc()

	h.audit(c, requestID, req, baseline, cached, latency)
	if h.store != nil {
		err := h.store.InsertScenarioRun(c.Context(), &models.ScenarioRecord{
			ForecastID:                  requestID,
			OccupancyChangePercent:      body.Scenario.OccupancyChangePercent,
			TemperatureSetpoint:         body.Scenario.TemperatureSetpoint,
			OperatingHoursChangePercent: body.Scenario.OperatingHoursChangePercent,
			EfficiencyImprovement:       body.Scenario.EquipmentEfficiencyImprovementPercent,
			CreatedAt:                   time.Now(),
		})
		if err != nil {
			logger.Warn("Failed to record scenario run", zap.Error(err))
		}
	}

	logger.Info("Scenario applied",
		zap.String("request_id", requestID),
		zap.String("building_id", req.BuildingID),
		zap.String("metric", string(req.Metric)),
	)

	return c.JSON(fiber.Map{
		"request_id": requestID,
		"baseline":   baseline,
		"adjusted":   adjusted,
		"scenario":   body.Scenario,
		"latency_ms": latency.Milliseconds(),
	})
}

func (h *ForecastHandler) HandleHistory(c *fiber.Ctx) error {
	buildingID := c.Query("building_id")
	if buildingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "building_id is required",
		})
	}
	limit := c.QueryInt("limit", 50)

	records, err := h.store.GetForecastHistory(c.Context(), buildingID, limit)
	if err != nil {
		logger.Error("Failed to load forecast history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{"history": records})
}

// HandleCacheInvalidate drops every cached series. Operators call this after
// changing scenario coefficients so stale factors are not served.
func (h *ForecastHandler) HandleCacheInvalidate(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.JSON(fiber.Map{"invalidated": false, "reason": "cache disabled"})
	}
	if err := h.cache.Invalidate(c.Context()); err != nil {
		logger.Error("Cache invalidation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to invalidate cache",
		})
	}
	logger.Info("Forecast cache invalidated")
	return c.JSON(fiber.Map{"invalidated": true})
}

// HandleSystemMetrics exposes the persisted operational samples, so the
// dashboard can chart backend health beyond a scrape retention window.
func (h *ForecastHandler) HandleSystemMetrics(c *fiber.Ctx) error {
	name := c.Query("name", "uptime_seconds")
	limit := c.QueryInt("limit", 100)

	samples, err := h.store.GetRecentSystemMetrics(c.Context(), name, limit)
	if err != nil {
		logger.Error("Failed to load system metrics", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load system metrics",
		})
	}

	return c.JSON(fiber.Map{"samples": samples})
}

// HandleModels lists the model profiles for the dashboard's picker.
func (h *ForecastHandler) HandleModels(c *fiber.Ctx) error {
	profiles := make([]forecast.ModelProfile, 0, len(forecast.ModelIDs()))
	for _, id := range forecast.ModelIDs() {
		profile, err := forecast.LookupProfile(id)
		if err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return c.JSON(fiber.Map{
		"models":  profiles,
		"default": h.cfg.DefaultModel,
	})
}

// HandleUtilities lists the metric kinds with their units and thermal roles.
func (h *ForecastHandler) HandleUtilities(c *fiber.Ctx) error {
	type utility struct {
		Metric      string `json:"metric"`
		Unit        string `json:"unit"`
		ThermalRole string `json:"thermal_role"`
	}
	utilities := make([]utility, 0, len(forecast.MetricKinds()))
	for _, metric := range forecast.MetricKinds() {
		entry, err := forecast.LookupPattern(metric)
		if err != nil {
			continue
		}
		utilities = append(utilities, utility{
			Metric:      string(metric),
			Unit:        entry.Unit,
			ThermalRole: forecast.ThermalRoleOf(metric).String(),
		})
	}
	return c.JSON(fiber.Map{"utilities": utilities})
}

// generate answers from the cache when possible. Only seeded requests are
// cacheable: an unseeded generation is different on every call.
func (h *ForecastHandler) generate(c *fiber.Ctx, req forecast.Request) (*forecast.ForecastSeries, bool, error) {
	cacheable := h.cache != nil && req.Seed != nil
	var key string

	if cacheable {
		key = redis.SeriesKey(req)
		series, hit, err := h.cache.GetSeries(c.Context(), key)
		if err != nil {
			logger.Warn("Cache lookup failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("forecast").Inc()
			return series, true, nil
		} else {
			metrics.CacheMisses.WithLabelValues("forecast").Inc()
		}
	}

	series, err := h.engine.GenerateForecast(req)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if err := h.cache.SetSeries(c.Context(), key, series); err != nil {
			logger.Warn("Cache store failed", zap.Error(err))
		}
	}
	return series, false, nil
}

func (h *ForecastHandler) audit(c *fiber.Ctx, requestID string, req forecast.Request, series *forecast.ForecastSeries, cached bool, latency time.Duration) {
	if h.store == nil {
		return
	}
	err := h.store.InsertForecastRecord(c.Context(), &models.ForecastRecord{
		ID:              requestID,
		BuildingID:      req.BuildingID,
		Metric:          string(req.Metric),
		Interval:        string(req.Interval),
		Model:           req.ModelID,
		HorizonHours:    req.HorizonHours,
		IncludeWeather:  req.IncludeWeather,
		IncludeCalendar: req.IncludeCalendar,
		Seed:            req.Seed,
		PointCount:      len(series.Points),
		MAPE:            series.Accuracy.MAPE,
		CacheHit:        cached,
		LatencyMS:       int(latency.Milliseconds()),
		CreatedAt:       time.Now(),
	})
	if err != nil {
		logger.Warn("Failed to record forecast request", zap.Error(err))
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, forecast.ErrUnknownMetric),
		errors.Is(err, forecast.ErrUnknownModel),
		errors.Is(err, forecast.ErrInvalidHorizon),
		errors.Is(err, forecast.ErrUnsupportedInterval),
		errors.Is(err, forecast.ErrParameterOutOfRange):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
