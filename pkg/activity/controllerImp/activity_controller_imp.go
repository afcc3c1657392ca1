package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agrocal/entities"
	"agrocal/pkg/activity/controller"
	"agrocal/pkg/activity/repository"
)

type ActCtrl struct{ repo repository.ActivityRepository }

func New(repo repository.ActivityRepository) controller.ActivityController { return &ActCtrl{repo} }

func (h *ActCtrl) List(c echo.Context) error {
	f := repository.Filter{
		Status:   c.QueryParam("status"),
		Type:     c.QueryParam("type"),
		NameLike: c.QueryParam("name"),
	}
	out, err := h.repo.Find(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if out == nil {
		out = []entities.Activity{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActCtrl) Create(c echo.Context) error {
	var a entities.Activity
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if a.Name == "" || a.Type == "" || a.ScheduledDate.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name, type y scheduled_date son requeridos"})
	}
	if a.Status == "" {
		a.Status = entities.StatusScheduled
	}
	if err := h.repo.Create(&a); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ActCtrl) Get(c echo.Context) error {
	a, err := h.repo.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Actividad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ActCtrl) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	// id/created_at are immutable once assigned
	delete(fields, "id")
	delete(fields, "created_at")
	a, err := h.repo.Update(c.Param("id"), fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Actividad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": a})
}

// Summary reports the calendar's overall size plus a per-status breakdown.
func (h *ActCtrl) Summary(c echo.Context) error {
	total, err := h.repo.Count()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	byStatus := map[string]int{}
	for _, st := range []string{entities.StatusScheduled, entities.StatusDeferred, entities.StatusCompleted} {
		acts, err := h.repo.Find(repository.Filter{Status: st})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		byStatus[st] = len(acts)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total_activities": total,
		"by_status":        byStatus,
	})
}

func (h *ActCtrl) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Actividad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "deleted_id": id})
}
