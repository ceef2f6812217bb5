package handlers

import (
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/enerboard/backend/internal/forecast"
	"github.com/enerboard/backend/internal/metrics"
	"github.com/enerboard/backend/pkg/config"
	"github.com/enerboard/backend/pkg/logger"
)

// WebSocketHandler streams forecast series to the dashboard in point
// batches, so charts can render progressively on long horizons.
type WebSocketHandler struct {
	engine *forecast.Engine
	cfg    config.ForecastConfig
}

func NewWebSocketHandler(engine *forecast.Engine, cfg config.ForecastConfig) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
		cfg:    cfg,
	}
}

type streamMessage struct {
	Type     string                      `json:"type"`
	Forecast forecastRequest             `json:"forecast"`
	Scenario forecast.ScenarioParameters `json:"scenario"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	log := logger.With(zap.String("remote", c.RemoteAddr().String()))
	log.Info("Forecast stream opened")
	metrics.ActiveStreams.Inc()

	defer func() {
		c.Close()
		metrics.ActiveStreams.Dec()
		log.Info("Forecast stream closed")
	}()

	for {
		var msg streamMessage
		if err := c.ReadJSON(&msg); err != nil {
			log.Debug("Stream read ended", zap.Error(err))
			break
		}
		if msg.Type != "forecast" && msg.Type != "scenario" {
			continue
		}

		if err := h.streamSeries(c, msg); err != nil {
			log.Error("Failed to stream series", zap.Error(err))
			h.sendError(c, err.Error())
		}
	}
}

func (h *WebSocketHandler) streamSeries(c *websocket.Conn, msg streamMessage) error {
	req, err := h.toEngineRequest(msg.Forecast)
	if err != nil {
		return err
	}

	series, err := h.engine.GenerateForecast(req)
	if err != nil {
		return err
	}
	if msg.Type == "scenario" {
		series, err = h.engine.ApplyScenario(series, msg.Scenario)
		if err != nil {
			return err
		}
	}

	if err := h.send(c, map[string]interface{}{
		"type":        "series_start",
		"building_id": series.BuildingID,
		"metric":      series.Metric,
		"unit":        series.Unit,
		"interval":    series.Interval,
		"total":       len(series.Points),
	}); err != nil {
		return err
	}

	batch := h.cfg.StreamBatchSize
	if batch <= 0 {
		batch = 24
	}
	for offset := 0; offset < len(series.Points); offset += batch {
		end := offset + batch
		if end > len(series.Points) {
			end = len(series.Points)
		}
		if err := h.send(c, map[string]interface{}{
			"type":   "points",
			"offset": offset,
			"points": series.Points[offset:end],
		}); err != nil {
			return err
		}
	}

	return h.send(c, map[string]interface{}{
		"type":                "series_end",
		"accuracy":            series.Accuracy,
		"influencing_factors": series.Factors,
	})
}

// toEngineRequest mirrors the HTTP handler's defaulting policy.
func (h *WebSocketHandler) toEngineRequest(body forecastRequest) (forecast.Request, error) {
	fh := ForecastHandler{cfg: h.cfg}
	return fh.toEngineRequest(body)
}

func (h *WebSocketHandler) send(c *websocket.Conn, msg map[string]interface{}) error {
	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
