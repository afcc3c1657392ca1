// Package weather pulls the short-range forecast for the farm and derives
// the agronomic day classification the calendar assistant reasons over.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type Day struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	Description   string  `json:"description"`
	WindSpeed     float64 `json:"wind_speed"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, httpc: &http.Client{Timeout: 15 * time.Second}}
}

// NewClientWithBase exists for tests against a local server.
func NewClientWithBase(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// Forecast returns up to five daily samples from the 3-hourly feed (one
// every 24 h). Missing key, transport failure or a bad payload all yield an
// empty forecast; weather never fails the caller.
func (c *Client) Forecast(ctx context.Context, coords Coordinates) []Day {
	if c.apiKey == "" {
		log.Printf("[weather] no API key configured, skipping forecast")
		return nil
	}
	if coords.Latitude == 0 && coords.Longitude == 0 {
		log.Printf("[weather] invalid coordinates: %+v", coords)
		return nil
	}

	url := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&appid=%s&units=metric&lang=es",
		c.baseURL, coords.Latitude, coords.Longitude, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("[weather] forecast request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[weather] forecast request status %d", resp.StatusCode)
		return nil
	}

	var payload struct {
		List []struct {
			DtTxt string `json:"dt_txt"`
			Main  struct {
				TempMax  float64 `json:"temp_max"`
				TempMin  float64 `json:"temp_min"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Rain map[string]float64 `json:"rain"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[weather] decode failed: %v", err)
		return nil
	}

	// the free API returns 3-hourly slots; take one per day, max 5 days
	var out []Day
	for i := 0; i < len(payload.List) && i < 40; i += 8 {
		item := payload.List[i]
		d := Day{
			Date:          item.DtTxt,
			TempMax:       item.Main.TempMax,
			TempMin:       item.Main.TempMin,
			Humidity:      item.Main.Humidity,
			Description:   "Sin datos",
			WindSpeed:     item.Wind.Speed,
			Precipitation: item.Rain["3h"],
		}
		if len(item.Weather) > 0 && item.Weather[0].Description != "" {
			d.Description = item.Weather[0].Description
		}
		out = append(out, d)
	}
	return out
}

type Risk struct {
	Date string `json:"date"`
	Risk string `json:"risk"`
}

type Analysis struct {
	RainyDays           []string `json:"rainy_days"`
	OptimalPlantingDays []string `json:"optimal_planting_days"`
	RiskyDays           []Risk   `json:"risky_days"`
	IrrigationNeeded    []string `json:"irrigation_needed"`
}

// Analyze classifies forecast days for field work planning.
func Analyze(days []Day) Analysis {
	var a Analysis
	for _, d := range days {
		if d.Precipitation > 5 {
			a.RainyDays = append(a.RainyDays, d.Date)
			a.RiskyDays = append(a.RiskyDays, Risk{
				Date: d.Date,
				Risk: fmt.Sprintf("Lluvia fuerte (%.1fmm) - evitar fumigación y fertilización", d.Precipitation),
			})
		}
		if d.TempMax < 30 && d.TempMin > 15 && d.Humidity > 60 && d.Humidity < 85 {
			a.OptimalPlantingDays = append(a.OptimalPlantingDays, d.Date)
		}
		if d.Precipitation < 2 && d.TempMax > 28 {
			a.IrrigationNeeded = append(a.IrrigationNeeded, d.Date)
		}
		if d.TempMax > 35 {
			a.RiskyDays = append(a.RiskyDays, Risk{
				Date: d.Date,
				Risk: fmt.Sprintf("Temperatura extrema (%.1f°C) - aumentar riego y evitar trasplantes", d.TempMax),
			})
		}
		if d.TempMin < 10 {
			a.RiskyDays = append(a.RiskyDays, Risk{
				Date: d.Date,
				Risk: fmt.Sprintf("Posible helada (%.1f°C) - proteger cultivos sensibles", d.TempMin),
			})
		}
		if d.WindSpeed > 10 {
			a.RiskyDays = append(a.RiskyDays, Risk{
				Date: d.Date,
				Risk: fmt.Sprintf("Viento fuerte (%.1f m/s) - evitar fumigación", d.WindSpeed),
			})
		}
	}
	return a
}
