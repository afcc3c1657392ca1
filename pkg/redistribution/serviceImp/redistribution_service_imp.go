package serviceImp

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
	"agrocal/pkg/apperr"
	"agrocal/pkg/cycle"
	"agrocal/pkg/naming"
	"agrocal/pkg/redistribution/service"
	"agrocal/pkg/redistribution/types"
	"agrocal/pkg/workday"
)

type redistSvc struct {
	repo      repository.ActivityRepository
	shiftDays *workday.Calculator

	// serializes redistributions per block+cycle; two completions racing on
	// the same buffer slot would otherwise both read its pre-update size
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(repo repository.ActivityRepository) service.RedistributionService {
	return &redistSvc{
		repo:      repo,
		shiftDays: workday.ForCalendarShift(),
		locks:     map[string]*sync.Mutex{},
	}
}

func (s *redistSvc) blockLock(block, cycleNumber int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d/%d", block, cycleNumber)
	if _, ok := s.locks[key]; !ok {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}

func (s *redistSvc) CompleteWithHectares(req types.CompleteRequest) (*types.CompleteResult, error) {
	if req.ActivityID == "" {
		return nil, apperr.New(apperr.KindValidation, "Falta activity_id en la solicitud")
	}
	if req.CompletedHectares <= 0 {
		return nil, apperr.New(apperr.KindValidation, "completed_hectares debe ser un número mayor a 0")
	}

	act, err := s.repo.Get(req.ActivityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Actividad no encontrada")
		}
		return nil, apperr.New(apperr.KindStore, "error consultando actividad: %v", err)
	}
	if act.Status == entities.StatusCompleted {
		return nil, apperr.New(apperr.KindValidation, "La actividad ya está completada")
	}

	planned := plannedOr(act, types.DefaultPlannedHectares)
	delta := req.CompletedHectares - planned

	// Primary write goes through before the block/cycle parse: a completion
	// with an unreadable name still records its status and actual area.
	updated, err := s.repo.Update(act.ID, map[string]any{
		"status":             entities.StatusCompleted,
		"completed_hectares": req.CompletedHectares,
	})
	if err != nil {
		return nil, apperr.New(apperr.KindStore, "error actualizando actividad: %v", err)
	}

	parsed := naming.Parse(act.Name)
	cyc, cycleOK := cycle.FromDate(act.ScheduledDate)
	if !parsed.BlockOK || !cycleOK {
		return nil, apperr.New(apperr.KindDomain, "No se pudo determinar el bloque o ciclo de la actividad")
	}

	details := []types.Detail{}
	count := 0

	if abs(delta) > types.ToleranceHectares {
		lock := s.blockLock(parsed.Block, cyc.Number)
		lock.Lock()
		n, redistErr := s.redistribute(act, parsed, cyc, delta, &details)
		lock.Unlock()
		count = n
		if redistErr != nil {
			log.Printf("[redist] redistribution error for %s: %v", act.ID, redistErr)
			details = append(details, types.Detail{
				Kind:    types.DetailWarning,
				Message: fmt.Sprintf("Error en redistribución inteligente: %v", redistErr),
			})
		}
	}

	blockInfo := s.blockInfo(parsed.Block, planned, req.CompletedHectares)

	return &types.CompleteResult{
		Activity:           updated,
		PlannedHectares:    planned,
		CompletedHectares:  req.CompletedHectares,
		HectaresDifference: delta,
		RedistributedCount: count,
		Details:            details,
		BlockInfo:          blockInfo,
		CycleInfo:          cyc,
		Notes:              req.Notes,
	}, nil
}

// redistribute fetches the block's pending activities, locates the buffer
// slot and dispatches the decided policy. Errors past this point never roll
// anything back; the caller converts them into a warning detail.
func (s *redistSvc) redistribute(act *entities.Activity, parsed naming.ParsedName, cyc cycle.Cycle, delta float64, details *[]types.Detail) (int, error) {
	start, end := cycle.DateRange(cyc.Number, act.ScheduledDate.Year())
	pending, err := s.repo.Find(repository.Filter{
		NameLike:  fmt.Sprintf("Bloque %d", parsed.Block),
		DateFrom:  &start,
		DateTo:    &end,
		StatusIn:  []string{entities.StatusScheduled, entities.StatusDeferred},
		ExcludeID: act.ID,
	})
	if err != nil {
		return 0, err
	}

	// latest-dated buffer candidate wins; at most one is ever used
	var buffer *entities.Activity
	for i := range pending {
		if !naming.IsBufferDay(pending[i].Name) {
			continue
		}
		if buffer == nil || pending[i].ScheduledDate.After(buffer.ScheduledDate) {
			buffer = &pending[i]
		}
	}

	switch decide(delta, buffer, parsed.IsBuffer) {
	case bufferSelfDeficit:
		return s.applyBufferSelfDeficit(act, parsed, -delta, details)
	case absorbInBuffer:
		return s.applyAbsorbInBuffer(buffer, delta, details)
	case capBufferAndOverflow:
		return s.applyCapBufferAndOverflow(act, buffer, delta, details)
	case deleteBuffer:
		return s.applyDeleteBuffer(buffer, details)
	case deleteBufferWithDeficit:
		return s.applyDeleteBufferWithDeficit(act, buffer, delta, details)
	case noBufferExcess:
		return s.applyNoBufferExcess(act, delta, details)
	case noBufferDeficit:
		return s.applyNoBufferDeficit(act, pending, -delta, details)
	}
	return 0, nil
}

// applyBufferSelfDeficit handles completing the buffer day itself short of
// plan when no other buffer exists: the shortfall becomes a fresh activity
// on the next freed working date.
func (s *redistSvc) applyBufferSelfDeficit(act *entities.Activity, parsed naming.ParsedName, deficit float64, details *[]types.Detail) (int, error) {
	insertion := s.shiftDays.Next(act.ScheduledDate)
	shifted := s.shiftForward(insertion, details)

	name := fmt.Sprintf("Aplicación Preventiva Biológicos - Bloque %d Día %d (Déficit Restante)", parsed.Block, parsed.Day+1)
	created := &entities.Activity{
		Name:            name,
		Type:            act.Type,
		ScheduledDate:   insertion,
		Duration:        types.DurationForHectares(deficit),
		Priority:        act.Priority,
		Status:          entities.StatusScheduled,
		PlannedHectares: &deficit,
	}
	if err := s.repo.Create(created); err != nil {
		return shifted, err
	}
	*details = append(*details, types.Detail{
		Kind:         types.DetailNewActivity,
		ActivityID:   created.ID,
		ActivityName: name,
		NewHectares:  &deficit,
		Message: fmt.Sprintf("Nueva actividad creada para %sha de déficit del día remanente en %s",
			haStr(deficit), insertion.Format("2006-01-02")),
	})
	return 1 + shifted, nil
}

func (s *redistSvc) applyAbsorbInBuffer(buffer *entities.Activity, delta float64, details *[]types.Detail) (int, error) {
	current := plannedOr(buffer, types.DefaultBufferHectares)
	next := current - delta
	if _, err := s.repo.Update(buffer.ID, map[string]any{
		"planned_hectares": next,
		"duration":         types.DurationForHectares(next),
	}); err != nil {
		return 0, err
	}
	msg := fmt.Sprintf("Exceso de %sha absorbido por el día comodín (%sha → %sha)", haStr(delta), haStr(current), haStr(next))
	if delta < 0 {
		msg = fmt.Sprintf("Déficit de %sha compensado por el día comodín (%sha → %sha)", haStr(-delta), haStr(current), haStr(next))
	}
	*details = append(*details, types.Detail{
		Kind:         types.DetailUpdated,
		ActivityID:   buffer.ID,
		ActivityName: buffer.Name,
		OldHectares:  &current,
		NewHectares:  &next,
		Message:      msg,
	})
	return 1, nil
}

func (s *redistSvc) applyCapBufferAndOverflow(act, buffer *entities.Activity, delta float64, details *[]types.Detail) (int, error) {
	current := plannedOr(buffer, types.DefaultBufferHectares)
	capped := types.BufferCapHectares
	excess := (current - delta) - capped

	if _, err := s.repo.Update(buffer.ID, map[string]any{
		"planned_hectares": capped,
		"duration":         types.DurationForHectares(capped),
	}); err != nil {
		return 0, err
	}
	*details = append(*details, types.Detail{
		Kind:         types.DetailWarning,
		ActivityID:   buffer.ID,
		ActivityName: buffer.Name,
		OldHectares:  &current,
		NewHectares:  &capped,
		Message:      fmt.Sprintf("Día comodín ajustado al máximo de %sha (era %sha)", haStr(capped), haStr(current)),
	})

	insertion := s.shiftDays.Next(buffer.ScheduledDate)
	shifted := s.shiftForward(insertion, details)

	name := fmt.Sprintf("%s - Exceso Adicional (+%sha)", act.Name, haStr(excess))
	created := &entities.Activity{
		Name:            name,
		Type:            act.Type,
		ScheduledDate:   insertion,
		Duration:        types.DurationForHectares(excess),
		Priority:        act.Priority,
		Status:          entities.StatusScheduled,
		PlannedHectares: &excess,
	}
	if err := s.repo.Create(created); err != nil {
		return shifted, err
	}
	*details = append(*details, types.Detail{
		Kind:         types.DetailNewActivity,
		ActivityID:   created.ID,
		ActivityName: name,
		NewHectares:  &excess,
		Message: fmt.Sprintf("Nueva actividad creada para %sha en fecha %s (calendario desplazado)",
			haStr(excess), insertion.Format("2006-01-02")),
	})
	return 1 + shifted, nil
}

func (s *redistSvc) applyDeleteBuffer(buffer *entities.Activity, details *[]types.Detail) (int, error) {
	current := plannedOr(buffer, types.DefaultBufferHectares)
	if err := s.repo.Delete(buffer.ID); err != nil {
		return 0, err
	}
	zero := 0.0
	*details = append(*details, types.Detail{
		Kind:         types.DetailDeleted,
		ActivityID:   buffer.ID,
		ActivityName: buffer.Name,
		OldHectares:  &current,
		NewHectares:  &zero,
		Message:      fmt.Sprintf("Día comodín eliminado (%sha exactamente absorbidos por exceso)", haStr(current)),
	})
	return 1, nil
}

func (s *redistSvc) applyDeleteBufferWithDeficit(act, buffer *entities.Activity, delta float64, details *[]types.Detail) (int, error) {
	current := plannedOr(buffer, types.DefaultBufferHectares)
	remaining := -(current - delta)

	if err := s.repo.Delete(buffer.ID); err != nil {
		return 0, err
	}
	zero := 0.0
	*details = append(*details, types.Detail{
		Kind:         types.DetailDeleted,
		ActivityID:   buffer.ID,
		ActivityName: buffer.Name,
		OldHectares:  &current,
		NewHectares:  &zero,
		Message: fmt.Sprintf("Día comodín eliminado (%sha absorbidos, quedan %sha por redistribuir)",
			haStr(current), haStr(remaining)),
	})

	insertion := s.shiftDays.Next(buffer.ScheduledDate)
	shifted := s.shiftForward(insertion, details)

	name := fmt.Sprintf("%s - Déficit Restante (+%sha)", act.Name, haStr(remaining))
	created := &entities.Activity{
		Name:            name,
		Type:            act.Type,
		ScheduledDate:   insertion,
		Duration:        types.DurationForHectares(remaining),
		Priority:        act.Priority,
		Status:          entities.StatusScheduled,
		PlannedHectares: &remaining,
	}
	if err := s.repo.Create(created); err != nil {
		return shifted, err
	}
	*details = append(*details, types.Detail{
		Kind:         types.DetailNewActivity,
		ActivityID:   created.ID,
		ActivityName: name,
		NewHectares:  &remaining,
		Message: fmt.Sprintf("Nueva actividad creada para %sha de déficit en fecha %s (calendario desplazado)",
			haStr(remaining), insertion.Format("2006-01-02")),
	})
	return 1 + shifted, nil
}

func (s *redistSvc) applyNoBufferExcess(act *entities.Activity, delta float64, details *[]types.Detail) (int, error) {
	insertion := s.shiftDays.Next(act.ScheduledDate)
	shifted := s.shiftForward(insertion, details)

	name := fmt.Sprintf("%s - Excedente (+%sha)", act.Name, haStr(delta))
	created := &entities.Activity{
		Name:            name,
		Type:            act.Type,
		ScheduledDate:   insertion,
		Duration:        types.DurationForHectares(delta),
		Priority:        act.Priority,
		Status:          entities.StatusScheduled,
		PlannedHectares: &delta,
	}
	if err := s.repo.Create(created); err != nil {
		return shifted, err
	}
	*details = append(*details, types.Detail{
		Kind:         types.DetailNewActivity,
		ActivityID:   created.ID,
		ActivityName: name,
		NewHectares:  &delta,
		Message: fmt.Sprintf("Se creó nueva actividad para %sha en fecha %s (calendario desplazado, no hay día comodín)",
			haStr(delta), insertion.Format("2006-01-02")),
	})
	return 1 + shifted, nil
}

// applyNoBufferDeficit spreads the shortfall across the block's pending
// activities, at most MaxDeficitPerActivity each, then reschedules whatever
// is left onto a fresh slot.
func (s *redistSvc) applyNoBufferDeficit(act *entities.Activity, pending []entities.Activity, deficit float64, details *[]types.Detail) (int, error) {
	count := 0
	remaining := deficit

	for i := range pending {
		if remaining <= 0 {
			break
		}
		p := &pending[i]
		current := plannedOr(p, types.DefaultPlannedHectares)
		add := min(remaining, types.MaxDeficitPerActivity)
		next := current + add

		if _, err := s.repo.Update(p.ID, map[string]any{
			"planned_hectares": next,
			"duration":         types.DurationForHectares(next),
		}); err != nil {
			return count, err
		}
		*details = append(*details, types.Detail{
			Kind:         types.DetailUpdated,
			ActivityID:   p.ID,
			ActivityName: p.Name,
			OldHectares:  &current,
			NewHectares:  &next,
			Message:      fmt.Sprintf("Se añadieron %sha a esta actividad", haStr(add)),
		})
		count++
		remaining -= add
	}

	if remaining > 0 {
		insertion := s.shiftDays.Next(act.ScheduledDate)
		shifted := s.shiftForward(insertion, details)

		name := fmt.Sprintf("%s - Déficit Redistribuido (+%sha)", act.Name, haStr(remaining))
		created := &entities.Activity{
			Name:            name,
			Type:            act.Type,
			ScheduledDate:   insertion,
			Duration:        types.DurationForHectares(remaining),
			Priority:        act.Priority,
			Status:          entities.StatusScheduled,
			PlannedHectares: &remaining,
		}
		if err := s.repo.Create(created); err != nil {
			return count + shifted, err
		}
		*details = append(*details, types.Detail{
			Kind:         types.DetailNewActivity,
			ActivityID:   created.ID,
			ActivityName: name,
			NewHectares:  &remaining,
			Message: fmt.Sprintf("Se creó nueva actividad para %sha de déficit en fecha %s (calendario desplazado)",
				haStr(remaining), insertion.Format("2006-01-02")),
		})
		count += 1 + shifted
	}
	return count, nil
}

// blockInfo reports block totals; stats failure falls back to the values of
// the completion at hand rather than failing the whole operation.
func (s *redistSvc) blockInfo(block int, planned, completed float64) types.BlockInfo {
	st, err := s.repo.BlockStats(block)
	if err != nil {
		log.Printf("[redist] block stats failed for block %d: %v", block, err)
		return types.BlockInfo{
			BlockNumber:          block,
			TotalPlannedHectares: planned,
			CompletedHectares:    completed,
			PendingHectares:      0,
		}
	}
	return types.BlockInfoFromStats(block, st)
}

func haStr(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
