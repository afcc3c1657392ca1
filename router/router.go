package router

import (
	"github.com/labstack/echo/v4"
)

func New(
	e *echo.Echo,
	actCtrl interface {
		List(echo.Context) error
		Create(echo.Context) error
		Get(echo.Context) error
		Update(echo.Context) error
		Delete(echo.Context) error
		Summary(echo.Context) error
	},
	completeWithHectares func(echo.Context) error,
	deferActivity func(echo.Context) error,
	assistantSuggest func(echo.Context) error,
	exportCalendar func(echo.Context) error,
	health func(echo.Context) error,
) *echo.Echo {
	e.GET("/health", health)

	api := e.Group("")

	api.GET("/activities", actCtrl.List)
	api.POST("/activities", actCtrl.Create)
	api.GET("/activities/export", exportCalendar)
	api.GET("/activities/summary", actCtrl.Summary)
	api.GET("/activities/:id", actCtrl.Get)
	api.PUT("/activities/:id", actCtrl.Update)
	api.DELETE("/activities/:id", actCtrl.Delete)

	api.POST("/activities/complete-with-hectares", completeWithHectares)
	api.POST("/activities/defer", deferActivity)

	api.POST("/calendar/assistant", assistantSuggest)

	return e
}
