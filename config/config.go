package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port          string
	DBPath        string
	LLMEndpoint   string
	LLMAPIKey     string
	LLMModel      string
	WeatherAPIKey string
	FarmLatitude  float64
	FarmLongitude float64
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	getf := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	cfg := AppConfig{
		Port:          get("PORT", "8080"),
		DBPath:        get("DB_PATH", "agrocal.db"),
		LLMEndpoint:   get("LLM_ENDPOINT", ""),
		LLMAPIKey:     get("LLM_API_KEY", ""),
		LLMModel:      get("LLM_MODEL", "gpt-4o-mini"),
		WeatherAPIKey: get("OPENWEATHER_API_KEY", ""),
		FarmLatitude:  getf("FARM_LATITUDE", 0),
		FarmLongitude: getf("FARM_LONGITUDE", 0),
	}
	log.Printf("[cfg] port=%s db=%s llm=%t weather=%t", cfg.Port, cfg.DBPath, cfg.LLMAPIKey != "", cfg.WeatherAPIKey != "")
	return cfg
}
