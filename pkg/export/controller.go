package export

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrocal/pkg/activity/repository"
)

type Controller struct{ repo repository.ActivityRepository }

func NewController(repo repository.ActivityRepository) *Controller { return &Controller{repo} }

// Download handles GET /activities/export.
func (h *Controller) Download(c echo.Context) error {
	activities, err := h.repo.Find(repository.Filter{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	f, err := BuildWorkbook(activities)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendario.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
