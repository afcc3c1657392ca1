package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"agrocal/config"
	"agrocal/database"
	"agrocal/router"

	// Activities
	actCtrlImp "agrocal/pkg/activity/controllerImp"
	actRepoImp "agrocal/pkg/activity/repositoryImp"

	// Redistribution
	redistCtrlImp "agrocal/pkg/redistribution/controllerImp"
	redistSvcImp "agrocal/pkg/redistribution/serviceImp"

	// Reorganization (defer)
	reorgCtrlImp "agrocal/pkg/reorganize/controllerImp"
	reorgSvcImp "agrocal/pkg/reorganize/serviceImp"

	// Assistant/LLM + weather
	"agrocal/pkg/ai"
	"agrocal/pkg/assistant"
	"agrocal/pkg/weather"

	// Export
	"agrocal/pkg/export"
)

func main() {
	// 1) Config
	cfg := config.Load()

	// 2) DB (sqlite) + automigrate
	db := database.OpenSQLite(cfg.DBPath)

	// 3) Echo
	e := echo.New()
	e.Use(echoMiddleware.Recover())

	// 4) Repos
	actRepo := actRepoImp.New(db)

	// 5) LLM (mock fallback) + weather
	var llm ai.Client
	if cfg.LLMEndpoint != "" && cfg.LLMAPIKey != "" {
		llm = ai.NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel)
	} else {
		llm = ai.NewMock()
	}
	wc := weather.NewClient(cfg.WeatherAPIKey)

	// 6) Services + controllers
	redistSvc := redistSvcImp.New(actRepo)
	reorgSvc := reorgSvcImp.New(actRepo)

	actCtrl := actCtrlImp.New(actRepo)
	redistCtrl := redistCtrlImp.New(redistSvc)
	reorgCtrl := reorgCtrlImp.New(reorgSvc)
	asstCtrl := assistant.New(actRepo, llm, wc, weather.Coordinates{
		Latitude:  cfg.FarmLatitude,
		Longitude: cfg.FarmLongitude,
	})
	expCtrl := export.NewController(actRepo)

	health := func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	// 7) Router
	r := router.New(
		e,
		actCtrl,
		redistCtrl.Complete,
		reorgCtrl.Defer,
		asstCtrl.Suggest,
		expCtrl.Download,
		health,
	)

	// 8) Start
	log.Printf("listening on :%s", cfg.Port)
	if err := r.Start(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
