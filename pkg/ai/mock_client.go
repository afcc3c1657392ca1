// pkg/ai/mock_client.go

package ai

import (
	"strings"

	"agrocal/entities"
	"agrocal/pkg/weather"
)

type mockClient struct{}

func NewMock() Client { return &mockClient{} }

// SuggestReschedules builds advice from the weather analysis alone, the
// same shape the live model returns. Used when no LLM is configured and as
// the fallback content when the live call fails.
func (m *mockClient) SuggestReschedules(activities []entities.Activity, forecast []weather.Day, analysis weather.Analysis) (*Advice, error) {
	advice := &Advice{
		RiskAnalysis: "Análisis adaptado para cultivo de Palma Africana. Considere condiciones climáticas específicas para cada tipo de aplicación.",
	}
	for _, r := range analysis.RiskyDays {
		advice.WeatherAlerts = append(advice.WeatherAlerts, r.Risk)
	}

	for _, a := range activities {
		switch a.Type {
		case "aplicacion_biologicos":
			advice.Suggestions = append(advice.Suggestions, Suggestion{
				Type:     "recommendation",
				Priority: "medium",
				Text:     a.Name + ": Verificar temperatura del día. Los biológicos pierden efectividad >32°C",
				Action: Action{
					ActivityID:      a.ID,
					RecommendedDate: a.ScheduledDate.Format("2006-01-02T15:04:05Z07:00"),
					Reason:          "Aplicar biológicos en horas frescas del día (antes 9 AM o después 4 PM)",
				},
			})
		case "control_plagas":
			advice.Suggestions = append(advice.Suggestions, Suggestion{
				Type:     "recommendation",
				Priority: "medium",
				Text:     a.Name + ": Verificar condiciones de viento. Evitar días >8 m/s",
				Action: Action{
					ActivityID:      a.ID,
					RecommendedDate: a.ScheduledDate.Format("2006-01-02T15:04:05Z07:00"),
					Reason:          "El viento fuerte causa deriva del producto y reduce efectividad",
				},
			})
		}
	}

	if len(analysis.RainyDays) > 0 {
		advice.Suggestions = append(advice.Suggestions, Suggestion{
			Type:     "warning",
			Priority: "high",
			Text:     "Se detectaron días lluviosos próximos. Revise fumigaciones y fertilizaciones.",
			Action: Action{
				Reason: "Días con lluvia próximos: " + strings.Join(analysis.RainyDays, ", "),
			},
		})
	}
	if len(advice.Suggestions) == 0 {
		advice.Suggestions = append(advice.Suggestions, Suggestion{
			Type:     "recommendation",
			Priority: "medium",
			Text:     "Análisis básico para cultivo de Palma completado.",
			Action: Action{
				Reason: "Considere: aplicar biológicos en temperaturas frescas, controlar plagas sin viento, y mantener maquinaria en días lluviosos.",
			},
		})
	}
	advice.CriticalErrors = append(advice.CriticalErrors, "Revisar actividades vs pronóstico del clima")
	return advice, nil
}
