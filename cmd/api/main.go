package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/enerboard/backend/internal/api/handlers"
	redisCache "github.com/enerboard/backend/internal/cache/redis"
	"github.com/enerboard/backend/internal/forecast"
	"github.com/enerboard/backend/internal/metrics"
	"github.com/enerboard/backend/internal/middleware/ratelimit"
	"github.com/enerboard/backend/internal/middleware/security"
	"github.com/enerboard/backend/internal/middleware/validation"
	"github.com/enerboard/backend/internal/storage/sqlite"
	"github.com/enerboard/backend/pkg/config"
	appLogger "github.com/enerboard/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Enerboard Forecast API Server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	uptimeDone := make(chan struct{})
	go recordUptime(store, uptimeDone)
	defer close(uptimeDone)

	var cache *redisCache.Client
	if cfg.Redis.Enabled {
		cache, err = redisCache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Forecast.CacheTTLSeconds)*time.Second,
		)
		if err != nil {
			// Forecasting works without the cache; run degraded.
			appLogger.Warn("Redis unavailable, running without series cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	engine := forecast.NewEngine(scenarioCoefficients(cfg.Scenario))

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		MaxHorizonHours: cfg.Forecast.MaxHorizonHours,
		Logger:          appLogger.Log,
	}))

	forecastHandler := handlers.NewForecastHandler(engine, store, cache, cfg.Forecast)
	wsHandler := handlers.NewWebSocketHandler(engine, cfg.Forecast)

	api := app.Group("/api/v1")

	api.Post("/forecast", forecastHandler.HandleForecast)
	api.Post("/forecast/scenario", forecastHandler.HandleScenario)
	api.Get("/forecast/history", forecastHandler.HandleHistory)
	api.Get("/models", forecastHandler.HandleModels)
	api.Get("/utilities", forecastHandler.HandleUtilities)
	api.Get("/metrics/system", forecastHandler.HandleSystemMetrics)
	api.Post("/cache/invalidate", forecastHandler.HandleCacheInvalidate)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/forecast", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

// recordUptime samples process uptime into the audit store so availability
// can be charted next to forecast history.
func recordUptime(store *sqlite.Client, done <-chan struct{}) {
	start := time.Now()
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := store.RecordMetric(ctx, "uptime_seconds", time.Since(start).Seconds(), nil)
			cancel()
			if err != nil {
				appLogger.Warn("Failed to record uptime sample", zap.Error(err))
			}
		}
	}
}

// scenarioCoefficients maps the config section onto the engine's struct so
// deployments can recalibrate the what-if weights.
func scenarioCoefficients(s config.ScenarioConfig) forecast.ScenarioCoefficients {
	return forecast.ScenarioCoefficients{
		OccupancyBusinessWeight: s.OccupancyBusinessWeight,
		OccupancyOffHoursWeight: s.OccupancyOffHoursWeight,
		BusinessHoursStart:      s.BusinessHoursStart,
		BusinessHoursEnd:        s.BusinessHoursEnd,
		SetpointPerDegree:       s.SetpointPerDegree,
		ComfortSetpointC:        s.ComfortSetpointC,
		OperatingHoursWeight:    s.OperatingHoursWeight,
		MorningTransitionStart:  s.MorningTransitionStart,
		MorningTransitionEnd:    s.MorningTransitionEnd,
		EveningTransitionStart:  s.EveningTransitionStart,
		EveningTransitionEnd:    s.EveningTransitionEnd,
		EfficiencyWeight:        s.EfficiencyWeight,
		FloorFactor:             s.FloorFactor,
	}
}
