package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/enerboard/backend/internal/forecast"
	"github.com/enerboard/backend/pkg/circuitbreaker"
	"github.com/enerboard/backend/pkg/logger"
	"github.com/enerboard/backend/pkg/utils"
)

// Client caches rendered forecast series by request hash. It is a response
// cache only: the engine itself stays stateless, and a cold or broken cache
// just means regeneration. A circuit breaker keeps a redis outage from
// adding latency to every request.
type Client struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Duration("ttl", ttl),
	)

	return &Client{
		client: client,
		breaker: circuitbreaker.New("forecast-cache", circuitbreaker.Config{
			Logger: logger.Log,
		}),
		ttl: ttl,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SeriesKey derives the cache key for a forecast request. Seeded requests
// are deterministic so they cache cleanly; unseeded ones are excluded by the
// caller since every invocation differs.
func SeriesKey(req forecast.Request) string {
	seed := "none"
	if req.Seed != nil {
		seed = fmt.Sprintf("%d", *req.Seed)
	}
	return utils.HashFields(
		req.BuildingID,
		string(req.Metric),
		req.StartTime.UTC().Format(time.RFC3339),
		fmt.Sprintf("%d", req.HorizonHours),
		string(req.Interval),
		req.ModelID,
		fmt.Sprintf("%t", req.IncludeWeather),
		fmt.Sprintf("%t", req.IncludeCalendar),
		seed,
	)
}

func (c *Client) SetSeries(ctx context.Context, key string, series *forecast.ForecastSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, "forecast:"+key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set series cache: %w", err)
	}

	logger.Debug("Series cached", zap.String("key", key))
	return nil
}

func (c *Client) GetSeries(ctx context.Context, key string) (*forecast.ForecastSeries, bool, error) {
	var data []byte
	var miss bool
	err := c.breaker.Execute(func() error {
		b, err := c.client.Get(ctx, "forecast:"+key).Bytes()
		if err == redis.Nil {
			// A miss is a healthy outcome; it must not trip the breaker.
			miss = true
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get series cache: %w", err)
	}
	if miss {
		return nil, false, nil
	}

	var series forecast.ForecastSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal series: %w", err)
	}

	logger.Debug("Series cache hit", zap.String("key", key))
	return &series, true, nil
}

// Invalidate drops every cached series, e.g. after a coefficient reload.
func (c *Client) Invalidate(ctx context.Context) error {
	return c.breaker.Execute(func() error {
		iter := c.client.Scan(ctx, 0, "forecast:*", 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				logger.Warn("Failed to delete cache key", zap.Error(err))
			}
		}
		return iter.Err()
	})
}
