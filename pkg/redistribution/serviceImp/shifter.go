package serviceImp

import (
	"fmt"
	"log"
	"sort"
	"time"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
	"agrocal/pkg/naming"
	"agrocal/pkg/redistribution/types"
)

// shiftForward pushes every pending activity at or after insertionDate onto
// its own subsequent working date, cascading one activity per day. Relative
// order is preserved: the stable sort runs on (date, block, day) and dates
// are assigned sequentially. Returns the shifted count; on store failure it
// records a warning and returns 0, and the caller proceeds without a shift.
func (s *redistSvc) shiftForward(insertionDate time.Time, details *[]types.Detail) int {
	acts, err := s.repo.Find(repository.Filter{
		DateFrom: &insertionDate,
		StatusIn: []string{entities.StatusScheduled, entities.StatusDeferred},
	})
	if err != nil {
		*details = append(*details, types.Detail{
			Kind:    types.DetailWarning,
			Message: fmt.Sprintf("Error desplazando calendario: %v", err),
		})
		return 0
	}
	if len(acts) == 0 {
		return 0
	}

	type item struct {
		act    entities.Activity
		parsed naming.ParsedName
	}
	items := make([]item, len(acts))
	for i, a := range acts {
		items[i] = item{act: a, parsed: naming.Parse(a.Name)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.act.ScheduledDate.Equal(b.act.ScheduledDate) {
			return a.act.ScheduledDate.Before(b.act.ScheduledDate)
		}
		ba, bb := blockOrNone(a.parsed), blockOrNone(b.parsed)
		if ba != bb {
			return ba < bb
		}
		return a.parsed.Day < b.parsed.Day
	})

	shifted := 0
	cursor := insertionDate
	for _, it := range items {
		if it.act.ScheduledDate.Before(insertionDate) {
			continue
		}
		newDate := s.shiftDays.Next(cursor)
		if _, err := s.repo.Update(it.act.ID, map[string]any{"scheduled_date": newDate}); err != nil {
			log.Printf("[redist] shift update failed for %s: %v", it.act.ID, err)
			*details = append(*details, types.Detail{
				Kind:    types.DetailWarning,
				Message: fmt.Sprintf("Error desplazando calendario: %v", err),
			})
			return 0
		}
		oldDate := it.act.ScheduledDate
		*details = append(*details, types.Detail{
			Kind:         types.DetailShifted,
			ActivityID:   it.act.ID,
			ActivityName: it.act.Name,
			OldDate:      &oldDate,
			NewDate:      &newDate,
			Message: fmt.Sprintf("Actividad desplazada de %s a %s",
				oldDate.Format("2006-01-02"), newDate.Format("2006-01-02")),
		})
		shifted++
		cursor = newDate
	}
	return shifted
}

func blockOrNone(p naming.ParsedName) int {
	if !p.BlockOK {
		return naming.DayNumberNone
	}
	return p.Block
}
