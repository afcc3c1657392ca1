package serviceImp

import (
	"errors"
	"fmt"
	"log"
	"time"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
	"agrocal/pkg/apperr"
	"agrocal/pkg/cycle"
	"agrocal/pkg/reorganize/service"
	"agrocal/pkg/workday"
)

type reorgSvc struct {
	repo repository.ActivityRepository
	days *workday.Calculator
}

func New(repo repository.ActivityRepository) service.ReorganizeService {
	return &reorgSvc{repo: repo, days: workday.ForCycleReorganize()}
}

// Defer moves one activity to an explicit new date and reflows every
// scheduled activity in its cycle onto a contiguous working-day sequence
// anchored at a start shifted by the same working-day offset. Time-of-day
// is preserved per activity.
func (s *reorgSvc) Defer(req service.DeferRequest) (*service.DeferResult, error) {
	if req.ActivityID == "" || req.OldDate == "" || req.NewDate == "" || req.Reason == "" {
		return nil, apperr.New(apperr.KindValidation, "Faltan campos requeridos: activity_id, old_date, new_date, reason")
	}
	newDate, err := time.Parse(time.RFC3339, req.NewDate)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "Formato de fecha inválido. Use formato ISO (YYYY-MM-DDTHH:mm:ssZ)")
	}
	if !s.days.IsWorking(newDate) {
		return nil, apperr.New(apperr.KindValidation, "La nueva fecha debe ser un día laboral")
	}
	oldDate, err := time.Parse(time.RFC3339, req.OldDate)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "Formato de fecha inválido. Use formato ISO (YYYY-MM-DDTHH:mm:ssZ)")
	}

	target, err := s.repo.Get(req.ActivityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Actividad no encontrada")
		}
		return nil, apperr.New(apperr.KindStore, "error consultando actividad: %v", err)
	}

	offset := s.days.DaysBetween(oldDate, newDate)

	// the reorganizer maps months strictly: no snapping to the next cycle
	cyc, ok := cycle.FromMonth(oldDate.Month())
	if !ok {
		return nil, apperr.New(apperr.KindDomain, "La actividad no pertenece a un ciclo reconocido")
	}
	winStart, winEnd := cycle.MonthWindow(cyc.Number, oldDate.Year())

	all, err := s.repo.Find(repository.Filter{
		Status:          entities.StatusScheduled,
		DateFrom:        &winStart,
		DateTo:          &winEnd,
		DateToExclusive: true,
	})
	if err != nil {
		return nil, apperr.New(apperr.KindStore, "Error obteniendo actividades del ciclo: %v", err)
	}
	if len(all) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "No se encontraron actividades en el ciclo")
	}
	found := false
	for i := range all {
		if all[i].ID == req.ActivityID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.New(apperr.KindNotFound, "Actividad no encontrada en el ciclo")
	}

	// shift the cycle's start anchor by the same working-day offset
	anchor := all[0].ScheduledDate
	for i := 0; i < offset; i++ {
		anchor = s.days.Next(anchor)
	}
	for i := 0; i > offset; i-- {
		anchor = s.days.Previous(anchor)
	}

	type update struct {
		id         string
		name       string
		oldDate    time.Time
		newDate    time.Time
		isDeferred bool
	}
	var updates []update
	cursor := anchor
	for i := range all {
		a := &all[i]
		for !s.days.IsWorking(cursor) {
			cursor = s.days.Next(cursor)
		}
		orig := a.ScheduledDate
		assigned := time.Date(cursor.Year(), cursor.Month(), cursor.Day(),
			orig.Hour(), orig.Minute(), orig.Second(), orig.Nanosecond(), orig.Location())
		if !assigned.Equal(orig) {
			updates = append(updates, update{
				id:         a.ID,
				name:       a.Name,
				oldDate:    orig,
				newDate:    assigned,
				isDeferred: a.ID == req.ActivityID,
			})
		}
		cursor = s.days.Next(cursor)
	}

	// record the explicit deferral before touching the calendar
	if err := s.repo.LogReschedule(&entities.RescheduleEvent{
		ActivityID: req.ActivityID,
		OldDate:    oldDate,
		NewDate:    newDate,
		Reason:     req.Reason,
	}); err != nil {
		return nil, apperr.New(apperr.KindStore, "Error registrando la reprogramación: %v", err)
	}

	success := 0
	for _, u := range updates {
		status := entities.StatusScheduled
		if u.isDeferred {
			status = entities.StatusDeferred
		}
		if _, err := s.repo.Update(u.id, map[string]any{
			"scheduled_date": u.newDate,
			"status":         status,
		}); err != nil {
			log.Printf("[reorg] update failed for %s: %v", u.id, err)
			continue
		}
		if !u.isDeferred {
			if err := s.repo.LogReschedule(&entities.RescheduleEvent{
				ActivityID: u.id,
				OldDate:    u.oldDate,
				NewDate:    u.newDate,
				Reason:     fmt.Sprintf("Reorganización automática por aplazamiento de %s", target.Name),
			}); err != nil {
				log.Printf("[reorg] reschedule log failed for %s: %v", u.id, err)
			}
		}
		success++
	}

	first, second := cycle.Months(cyc.Number)
	return &service.DeferResult{
		ActivityID:             req.ActivityID,
		OldDate:                req.OldDate,
		NewDate:                req.NewDate,
		Reason:                 req.Reason,
		DaysShifted:            offset,
		ReorganizedCount:       success,
		CycleMonths:            []time.Month{first, second},
		TotalActivitiesInCycle: len(all),
		CycleStart:             winStart,
		CycleEnd:               winEnd,
	}, nil
}
