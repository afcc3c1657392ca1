package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrocal/pkg/apperr"
	"agrocal/pkg/reorganize/service"
)

type ReorgCtrl struct{ svc service.ReorganizeService }

func New(svc service.ReorganizeService) *ReorgCtrl { return &ReorgCtrl{svc} }

// Defer handles POST /activities/defer.
func (h *ReorgCtrl) Defer(c echo.Context) error {
	var req service.DeferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.New(apperr.KindValidation, "bad json"))
	}
	res, err := h.svc.Defer(req)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.From(err))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":                   true,
		"message":                   "Calendario reorganizado dinámicamente",
		"activity_id":               res.ActivityID,
		"old_date":                  res.OldDate,
		"new_date":                  res.NewDate,
		"reason":                    res.Reason,
		"days_shifted":              res.DaysShifted,
		"reorganized_activities":    res.ReorganizedCount,
		"cycle_months":              res.CycleMonths,
		"total_activities_in_cycle": res.TotalActivitiesInCycle,
		"cycle_date_range": map[string]any{
			"start": res.CycleStart,
			"end":   res.CycleEnd,
		},
	})
}
