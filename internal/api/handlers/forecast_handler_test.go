package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerboard/backend/internal/forecast"
	"github.com/enerboard/backend/pkg/config"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	engine := forecast.NewEngine(forecast.DefaultScenarioCoefficients())
	// No store and no cache: the handler must degrade to pure generation.
	h := NewForecastHandler(engine, nil, nil, config.ForecastConfig{
		DefaultModel:        "simple",
		DefaultHorizonHours: 168,
		MaxHorizonHours:     8760,
	})

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/forecast", h.HandleForecast)
	api.Post("/forecast/scenario", h.HandleScenario)
	api.Get("/models", h.HandleModels)
	api.Get("/utilities", h.HandleUtilities)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestHandleForecast_Success(t *testing.T) {
	app := testApp(t)

	status, body := postJSON(t, app, "/api/v1/forecast", map[string]interface{}{
		"building_id":   "bld-001",
		"metric":        "electricity",
		"start_time":    "2025-03-03T00:00:00Z",
		"horizon_hours": 24,
		"interval":      "hourly",
		"model":         "simple",
		"seed":          42,
	})

	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["request_id"])
	assert.Equal(t, false, body["cached"])

	series, ok := body["series"].(map[string]interface{})
	require.True(t, ok)
	points, ok := series["points"].([]interface{})
	require.True(t, ok)
	assert.Len(t, points, 24)
	assert.Equal(t, "kWh", series["unit"])
}

func TestHandleForecast_UnknownMetric(t *testing.T) {
	app := testApp(t)

	status, body := postJSON(t, app, "/api/v1/forecast", map[string]interface{}{
		"building_id": "bld-001",
		"metric":      "oil",
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "unknown metric")
}

func TestHandleForecast_MissingBuildingID(t *testing.T) {
	app := testApp(t)

	status, body := postJSON(t, app, "/api/v1/forecast", map[string]interface{}{
		"metric": "electricity",
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "building_id")
}

func TestHandleForecast_DefaultsApplied(t *testing.T) {
	app := testApp(t)

	status, body := postJSON(t, app, "/api/v1/forecast", map[string]interface{}{
		"building_id": "bld-001",
		"metric":      "gas",
	})

	require.Equal(t, fiber.StatusOK, status)
	series := body["series"].(map[string]interface{})
	points := series["points"].([]interface{})
	assert.Len(t, points, 168, "default horizon should apply")
	assert.Equal(t, "hourly", series["interval"])
}

func TestHandleScenario_ReturnsBaselineAndAdjusted(t *testing.T) {
	app := testApp(t)

	status, body := postJSON(t, app, "/api/v1/forecast/scenario", map[string]interface{}{
		"building_id":   "bld-001",
		"metric":        "chilledwater",
		"start_time":    "2025-03-03T00:00:00Z",
		"horizon_hours": 24,
		"seed":          7,
		"scenario": map[string]interface{}{
			"temperature_setpoint": 26,
		},
	})

	require.Equal(t, fiber.StatusOK, status)

	baseline := body["baseline"].(map[string]interface{})
	adjusted := body["adjusted"].(map[string]interface{})
	basePoints := baseline["points"].([]interface{})
	adjPoints := adjusted["points"].([]interface{})
	require.Len(t, adjPoints, len(basePoints))

	// delta=+4 on a cooling metric: every value scales by 0.8.
	for i := range basePoints {
		bv := basePoints[i].(map[string]interface{})["value"].(float64)
		av := adjPoints[i].(map[string]interface{})["value"].(float64)
		assert.InDelta(t, 0.8, av/bv, 1e-9)
	}
}

func TestHandleScenario_ParameterOutOfRange(t *testing.T) {
	app := testApp(t)

	status, body := postJSON(t, app, "/api/v1/forecast/scenario", map[string]interface{}{
		"building_id": "bld-001",
		"metric":      "electricity",
		"scenario": map[string]interface{}{
			"occupancy_change_percent": 250,
		},
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "out of range")
}

func TestHandleModels_ListsRegistry(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/models", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Models  []forecast.ModelProfile `json:"models"`
		Default string                  `json:"default"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Models, 4)
	assert.Equal(t, "simple", body.Default)
}

func TestHandleUtilities_ListsMetricKinds(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/utilities", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Utilities []struct {
			Metric      string `json:"metric"`
			Unit        string `json:"unit"`
			ThermalRole string `json:"thermal_role"`
		} `json:"utilities"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Utilities, 6)

	roles := map[string]string{}
	for _, u := range body.Utilities {
		roles[u.Metric] = u.ThermalRole
	}
	assert.Equal(t, "cooling", roles["chilledwater"])
	assert.Equal(t, "heating", roles["gas"])
	assert.Equal(t, "none", roles["water"])
}
