package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/enerboard/backend/internal/storage/models"
	"github.com/enerboard/backend/pkg/logger"
	"github.com/enerboard/backend/pkg/retry"
)

type Client struct {
	db       *sql.DB
	retryCfg retry.Config
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = logger.Log
	retryCfg.Retryable = isBusy

	return &Client{db: db, retryCfg: retryCfg}, nil
}

// isBusy matches the lock-contention errors worth retrying under WAL.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS forecast_history (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL,
		metric TEXT NOT NULL,
		interval TEXT NOT NULL,
		model TEXT NOT NULL,
		horizon_hours INTEGER NOT NULL,
		include_weather INTEGER NOT NULL,
		include_calendar INTEGER NOT NULL,
		seed INTEGER,
		point_count INTEGER,
		mape REAL,
		cache_hit INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_forecast_building ON forecast_history(building_id);
	CREATE INDEX IF NOT EXISTS idx_forecast_created ON forecast_history(created_at);

	CREATE TABLE IF NOT EXISTS scenario_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		forecast_id TEXT NOT NULL,
		occupancy_change_percent REAL,
		temperature_setpoint REAL,
		operating_hours_change_percent REAL,
		efficiency_improvement_percent REAL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (forecast_id) REFERENCES forecast_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_scenario_forecast ON scenario_runs(forecast_id);

	CREATE TABLE IF NOT EXISTS system_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		tags TEXT,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_name ON system_metrics(metric_name);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

func (c *Client) InsertForecastRecord(ctx context.Context, record *models.ForecastRecord) error {
	query := `
	INSERT INTO forecast_history
		(id, building_id, metric, interval, model, horizon_hours,
		 include_weather, include_calendar, seed, point_count, mape,
		 cache_hit, latency_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := retry.Do(ctx, c.retryCfg, func() error {
		_, err := c.db.ExecContext(ctx, query,
			record.ID,
			record.BuildingID,
			record.Metric,
			record.Interval,
			record.Model,
			record.HorizonHours,
			record.IncludeWeather,
			record.IncludeCalendar,
			record.Seed,
			record.PointCount,
			record.MAPE,
			record.CacheHit,
			record.LatencyMS,
			record.CreatedAt.Unix(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert forecast record: %w", err)
	}
	return nil
}

func (c *Client) InsertScenarioRun(ctx context.Context, run *models.ScenarioRecord) error {
	query := `
	INSERT INTO scenario_runs
		(forecast_id, occupancy_change_percent, temperature_setpoint,
		 operating_hours_change_percent, efficiency_improvement_percent, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	err := retry.Do(ctx, c.retryCfg, func() error {
		_, err := c.db.ExecContext(ctx, query,
			run.ForecastID,
			run.OccupancyChangePercent,
			run.TemperatureSetpoint,
			run.OperatingHoursChangePercent,
			run.EfficiencyImprovement,
			run.CreatedAt.Unix(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert scenario run: %w", err)
	}
	return nil
}

func (c *Client) GetForecastHistory(ctx context.Context, buildingID string, limit int) ([]models.ForecastRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, building_id, metric, interval, model, horizon_hours,
	       include_weather, include_calendar, seed, point_count, mape,
	       cache_hit, latency_ms, created_at
	FROM forecast_history
	WHERE building_id = ?
	ORDER BY created_at DESC
	LIMIT ?`

	rows, err := c.db.QueryContext(ctx, query, buildingID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast history: %w", err)
	}
	defer rows.Close()

	var records []models.ForecastRecord
	for rows.Next() {
		var r models.ForecastRecord
		var createdAt int64
		err := rows.Scan(
			&r.ID, &r.BuildingID, &r.Metric, &r.Interval, &r.Model,
			&r.HorizonHours, &r.IncludeWeather, &r.IncludeCalendar, &r.Seed,
			&r.PointCount, &r.MAPE, &r.CacheHit, &r.LatencyMS, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast record: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRecentSystemMetrics returns the latest samples recorded under one
// metric name, newest first.
func (c *Client) GetRecentSystemMetrics(ctx context.Context, name string, limit int) ([]models.SystemMetric, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
	SELECT id, metric_name, metric_value, tags, timestamp
	FROM system_metrics
	WHERE metric_name = ?
	ORDER BY timestamp DESC
	LIMIT ?`

	rows, err := c.db.QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query system metrics: %w", err)
	}
	defer rows.Close()

	var samples []models.SystemMetric
	for rows.Next() {
		var s models.SystemMetric
		var ts int64
		if err := rows.Scan(&s.ID, &s.MetricName, &s.MetricValue, &s.Tags, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan system metric: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (c *Client) RecordMetric(ctx context.Context, name string, value float64, tags map[string]string) error {
	tagsJSON := ""
	if len(tags) > 0 {
		data, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		tagsJSON = string(data)
	}

	return retry.Do(ctx, c.retryCfg, func() error {
		_, err := c.db.ExecContext(ctx,
			"INSERT INTO system_metrics (metric_name, metric_value, tags, timestamp) VALUES (?, ?, ?, ?)",
			name, value, tagsJSON, time.Now().Unix(),
		)
		return err
	})
}
