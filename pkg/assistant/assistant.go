// Package assistant exposes the calendar advisory endpoint: it gathers the
// pending calendar and the farm forecast, asks the configured model for
// reschedule suggestions and falls back to weather-only advice when the
// model is unavailable.
package assistant

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
	"agrocal/pkg/ai"
	"agrocal/pkg/weather"
)

type Controller struct {
	repo    repository.ActivityRepository
	llm     ai.Client
	weather *weather.Client
	farm    weather.Coordinates
}

// New wires the advisory endpoint. farm is the configured farm location,
// used when a request carries no coordinates of its own.
func New(repo repository.ActivityRepository, llm ai.Client, wc *weather.Client, farm weather.Coordinates) *Controller {
	return &Controller{repo: repo, llm: llm, weather: wc, farm: farm}
}

type request struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Suggest handles POST /calendar/assistant.
func (h *Controller) Suggest(c echo.Context) error {
	var req request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	coords := weather.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude}
	if coords.Latitude == 0 && coords.Longitude == 0 {
		coords = h.farm
	}
	if coords.Latitude == 0 || coords.Longitude == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":          "Se requieren coordenadas válidas",
			"suggestions":    []ai.Suggestion{},
			"weather_alerts": []string{"No se pudo obtener el pronóstico sin coordenadas"},
		})
	}

	activities, err := h.repo.Find(repository.Filter{
		StatusIn: []string{entities.StatusScheduled, entities.StatusDeferred},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	forecast := h.weather.Forecast(c.Request().Context(), coords)
	analysis := weather.Analyze(forecast)

	advice, err := h.llm.SuggestReschedules(activities, forecast, analysis)
	if err != nil {
		// weather-only fallback keeps the endpoint useful without the model
		log.Printf("[assistant] llm error, falling back: %v", err)
		advice, _ = ai.NewMock().SuggestReschedules(activities, forecast, analysis)
	}

	weatherData := map[string]any{
		"forecast_days":     len(forecast),
		"rainy_days":        len(analysis.RainyDays),
		"irrigation_needed": len(analysis.IrrigationNeeded),
	}
	return c.JSON(http.StatusOK, map[string]any{
		"suggestions":     advice.Suggestions,
		"weather_alerts":  advice.WeatherAlerts,
		"critical_errors": advice.CriticalErrors,
		"risk_analysis":   advice.RiskAnalysis,
		"weather_data":    weatherData,
		"location_info": map[string]any{
			"latitude":     coords.Latitude,
			"longitude":    coords.Longitude,
			"weather_data": weatherData,
		},
	})
}
