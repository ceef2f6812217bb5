package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/enerboard/backend/internal/forecast"
)

// buildingIDPattern keeps identifiers to what the dashboard issues: short
// slugs that are safe to log and index.
var buildingIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

type Config struct {
	MaxHorizonHours     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed forecast bodies before they reach the
// handlers, so handler code only deals with engine-level validation.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxHorizonHours == 0 {
		cfg.MaxHorizonHours = 8760
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get("Content-Type")
			if contentType != "" && !typeAllowed(contentType, cfg.AllowedContentTypes) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if c.Method() == fiber.MethodPost && strings.HasPrefix(c.Path(), "/api/v1/forecast") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			buildingID, ok := req["building_id"].(string)
			if !ok || buildingID == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "building_id is required and must be a string",
				})
			}
			if !buildingIDPattern.MatchString(buildingID) {
				cfg.Logger.Warn("Rejected malformed building id",
					zap.String("ip", c.IP()),
					zap.String("building_id", buildingID),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "building_id has an invalid format",
				})
			}

			if metric, ok := req["metric"].(string); ok && metric != "" {
				if _, err := forecast.ParseMetric(metric); err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "metric must be one of: electricity, water, gas, steam, hotwater, chilledwater",
					})
				}
			}

			if interval, ok := req["interval"].(string); ok && interval != "" {
				if _, err := forecast.ParseInterval(interval); err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "interval must be one of: hourly, daily, weekly, monthly",
					})
				}
			}

			if horizon, ok := req["horizon_hours"].(float64); ok {
				if horizon < 1 || horizon > float64(cfg.MaxHorizonHours) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "horizon_hours is out of range",
					})
				}
			}
		}

		return c.Next()
	}
}

func typeAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
