// pkg/ai/client.go

package ai

import (
	"agrocal/entities"
	"agrocal/pkg/weather"
)

type Suggestion struct {
	Type     string `json:"type"`     // warning|optimization|recommendation
	Priority string `json:"priority"` // high|medium|low
	Text     string `json:"text"`
	Action   Action `json:"action"`
}

type Action struct {
	ActivityID      string `json:"activity_id"`
	RecommendedDate string `json:"recommended_date"`
	Reason          string `json:"reason"`
}

type Advice struct {
	Suggestions    []Suggestion `json:"suggestions"`
	WeatherAlerts  []string     `json:"weather_alerts"`
	CriticalErrors []string     `json:"critical_errors"`
	RiskAnalysis   string       `json:"risk_analysis"`
}

type Client interface {
	// SuggestReschedules asks the model to reconcile the upcoming calendar
	// with the forecast and propose reschedules as structured JSON.
	SuggestReschedules(activities []entities.Activity, forecast []weather.Day, analysis weather.Analysis) (*Advice, error)
}
