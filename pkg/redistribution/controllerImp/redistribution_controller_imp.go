package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrocal/pkg/apperr"
	"agrocal/pkg/redistribution/service"
	"agrocal/pkg/redistribution/types"
)

type RedistCtrl struct{ svc service.RedistributionService }

func New(svc service.RedistributionService) *RedistCtrl { return &RedistCtrl{svc} }

// Complete handles POST /activities/complete-with-hectares.
func (h *RedistCtrl) Complete(c echo.Context) error {
	var req types.CompleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.New(apperr.KindValidation, "bad json"))
	}
	res, err := h.svc.CompleteWithHectares(req)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), apperr.From(err))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":                  true,
		"message":                  "Actividad completada exitosamente con redistribución inteligente",
		"activity_id":              res.Activity.ID,
		"completed_hectares":       res.CompletedHectares,
		"planned_hectares":         res.PlannedHectares,
		"hectares_difference":      res.HectaresDifference,
		"redistributed_activities": res.RedistributedCount,
		"redistribution_details":   res.Details,
		"block_info":               res.BlockInfo,
		"cycle_info":               res.CycleInfo,
		"notes":                    res.Notes,
	})
}
