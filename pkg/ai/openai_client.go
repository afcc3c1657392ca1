// pkg/ai/openai_client.go

package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agrocal/entities"
	"agrocal/pkg/weather"
)

type openAI struct {
	endpoint string
	key      string
	model    string
}

func NewOpenAI(endpoint, key, model string) Client {
	return &openAI{endpoint: endpoint, key: key, model: model}
}

func (c *openAI) SuggestReschedules(activities []entities.Activity, forecast []weather.Day, analysis weather.Analysis) (*Advice, error) {
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": "Eres un agrónomo experto que analiza calendarios agrícolas considerando pronósticos meteorológicos reales. Responde SIEMPRE con JSON válido."},
			{"role": "user", "content": renderAssistantPrompt(activities, forecast, analysis)},
		},
		"temperature": 0.3,
	}

	b, _ := json.Marshal(reqBody)
	httpc := &http.Client{Timeout: 25 * time.Second}
	req, _ := http.NewRequest("POST", strings.TrimRight(c.endpoint, "/")+"/v1/chat/completions", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}

	var advice Advice
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.Choices[0].Message.Content)), &advice); err != nil {
		return nil, fmt.Errorf("parse assistant reply: %v / raw: %s", err, out.Choices[0].Message.Content)
	}
	return &advice, nil
}

func renderAssistantPrompt(activities []entities.Activity, forecast []weather.Day, analysis weather.Analysis) string {
	type actLine struct {
		ID            string  `json:"id"`
		Nombre        string  `json:"nombre"`
		Tipo          string  `json:"tipo"`
		Fecha         string  `json:"fecha"`
		DuracionHoras float64 `json:"duracion_horas"`
		Prioridad     string  `json:"prioridad"`
	}
	lines := make([]actLine, 0, len(activities))
	for _, a := range activities {
		lines = append(lines, actLine{
			ID:            a.ID,
			Nombre:        a.Name,
			Tipo:          a.Type,
			Fecha:         a.ScheduledDate.Format(time.RFC3339),
			DuracionHoras: float64(a.Duration) / 60.0,
			Prioridad:     a.Priority,
		})
	}
	actsJSON, _ := json.MarshalIndent(lines, "", "  ")
	fcJSON, _ := json.MarshalIndent(forecast, "", "  ")
	risksJSON, _ := json.Marshal(analysis.RiskyDays)

	return fmt.Sprintf(`
Eres un experto agrónomo especializado en CULTIVO DE PALMA AFRICANA.
Analiza este calendario considerando las condiciones climáticas reales.

ACTIVIDADES PROGRAMADAS:
%s

PRONÓSTICO DEL CLIMA (próximos días):
%s

ANÁLISIS CLIMÁTICO:
- Días con lluvia fuerte: %s
- Días óptimos para siembra: %s
- Días que requieren riego: %s
- Riesgos climáticos: %s

REGLAS CRÍTICAS:
1. NUNCA fumigar si hay lluvia en las próximas 24-48 horas
2. NO fertilizar antes de lluvia fuerte
3. NO aplicar biológicos con temperaturas >32°C
4. Control de plagas debe evitar días con viento >8 m/s
5. Programar mantenimiento de maquinaria en días lluviosos

IMPORTANTE: Responde ÚNICAMENTE con un objeto JSON válido:
{
  "suggestions": [{"type":"warning|optimization|recommendation","priority":"high|medium|low","text":"...","action":{"activity_id":"...","recommended_date":"fecha ISO","reason":"..."}}],
  "weather_alerts": ["..."],
  "critical_errors": ["..."],
  "risk_analysis": "..."
}
`, actsJSON, fcJSON,
		orNone(analysis.RainyDays), orNone(analysis.OptimalPlantingDays), orNone(analysis.IrrigationNeeded), risksJSON)
}

func orNone(days []string) string {
	if len(days) == 0 {
		return "Ninguno"
	}
	return strings.Join(days, ", ")
}
