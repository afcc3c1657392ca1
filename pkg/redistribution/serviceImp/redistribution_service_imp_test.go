package serviceImp

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
	"agrocal/pkg/apperr"
	"agrocal/pkg/redistribution/types"
)

// fakeRepo is a map-backed ActivityRepository honoring the same Filter
// semantics as the gorm implementation, with deterministic ordering.
type fakeRepo struct {
	acts   map[string]*entities.Activity
	nextID int
	events []entities.RescheduleEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{acts: map[string]*entities.Activity{}}
}

func (r *fakeRepo) add(a entities.Activity) *entities.Activity {
	cp := a
	r.acts[cp.ID] = &cp
	return &cp
}

func (r *fakeRepo) Get(id string) (*entities.Activity, error) {
	a, ok := r.acts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Create(a *entities.Activity) error {
	if a.ID == "" {
		r.nextID++
		a.ID = fmt.Sprintf("gen-%d", r.nextID)
	}
	cp := *a
	r.acts[cp.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(id string, fields map[string]any) (*entities.Activity, error) {
	a, ok := r.acts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = v.(string)
		case "completed_hectares":
			ha := v.(float64)
			a.CompletedHectares = &ha
		case "planned_hectares":
			ha := v.(float64)
			a.PlannedHectares = &ha
		case "duration":
			a.Duration = v.(int)
		case "scheduled_date":
			a.ScheduledDate = v.(time.Time)
		case "notes":
			a.Notes = v.(string)
		}
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Delete(id string) error {
	if _, ok := r.acts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.acts, id)
	return nil
}

func (r *fakeRepo) Find(f repository.Filter) ([]entities.Activity, error) {
	var out []entities.Activity
	for _, a := range r.acts {
		if f.NameLike != "" && !strings.Contains(a.Name, f.NameLike) {
			continue
		}
		if f.DateFrom != nil && a.ScheduledDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil {
			if f.DateToExclusive {
				if !a.ScheduledDate.Before(*f.DateTo) {
					continue
				}
			} else if a.ScheduledDate.After(*f.DateTo) {
				continue
			}
		}
		if len(f.StatusIn) > 0 {
			found := false
			for _, st := range f.StatusIn {
				if a.Status == st {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if f.ExcludeID != "" && a.ID == f.ExcludeID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRepo) BlockStats(blockNumber int) (repository.BlockStats, error) {
	token := fmt.Sprintf("Bloque %d", blockNumber)
	var st repository.BlockStats
	for _, a := range r.acts {
		if !strings.Contains(a.Name, token) {
			continue
		}
		st.TotalActivities++
		if a.PlannedHectares != nil {
			st.TotalPlannedHectares += *a.PlannedHectares
		}
		if a.Status == entities.StatusCompleted {
			st.CompletedActivities++
			if a.CompletedHectares != nil {
				st.TotalCompletedHectares += *a.CompletedHectares
			}
		}
	}
	return st, nil
}

func (r *fakeRepo) Count() (int64, error) { return int64(len(r.acts)), nil }

func (r *fakeRepo) LogReschedule(ev *entities.RescheduleEvent) error {
	r.events = append(r.events, *ev)
	return nil
}

func at(day int, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
}

func ha(v float64) *float64 { return &v }

func scheduled(id, name string, date time.Time, planned *float64) entities.Activity {
	return entities.Activity{
		ID:              id,
		Name:            name,
		Type:            "aplicacion_biologicos",
		ScheduledDate:   date,
		Duration:        480,
		Priority:        "media",
		Status:          entities.StatusScheduled,
		PlannedHectares: planned,
	}
}

func kinds(details []types.Detail) []types.DetailKind {
	out := make([]types.DetailKind, len(details))
	for i, d := range details {
		out[i] = d.Kind
	}
	return out
}

func TestCompleteWithinTolerance(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Control Malezas - Bloque 1 Día 1", at(3, 9), nil))

	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 60.05,
	})
	require.NoError(t, err)
	require.Zero(t, res.RedistributedCount)
	require.Empty(t, res.Details)
	require.InDelta(t, 0.05, res.HectaresDifference, 1e-9)
	require.Equal(t, 60.0, res.PlannedHectares)

	stored, _ := repo.Get("a1")
	require.Equal(t, entities.StatusCompleted, stored.Status)
	require.Equal(t, 60.05, *stored.CompletedHectares)
}

func TestCompleteExcessAbsorbedByBuffer(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Control Malezas - Bloque 2 Día 3", at(3, 9), nil))
	repo.add(scheduled("buf", "Aplicación Remanente - Bloque 2 Día 8", at(12, 9), ha(40)))

	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 80,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RedistributedCount)
	require.Equal(t, []types.DetailKind{types.DetailUpdated}, kinds(res.Details))
	require.Equal(t, 40.0, *res.Details[0].OldHectares)
	require.Equal(t, 20.0, *res.Details[0].NewHectares)

	buf, _ := repo.Get("buf")
	require.Equal(t, 20.0, *buf.PlannedHectares)
	require.Equal(t, 160, buf.Duration) // 20 ha at 8 min/ha
}

func TestLatestDatedBufferWins(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Control Malezas - Bloque 2 Día 3", at(3, 9), nil))
	repo.add(scheduled("buf1", "Día Comodín - Bloque 2", at(10, 9), ha(50)))
	repo.add(scheduled("buf2", "Día Remanente - Bloque 2", at(12, 9), ha(40)))

	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 80,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RedistributedCount)
	require.Equal(t, "buf2", res.Details[0].ActivityID)

	buf1, _ := repo.Get("buf1")
	require.Equal(t, 50.0, *buf1.PlannedHectares) // untouched
	buf2, _ := repo.Get("buf2")
	require.Equal(t, 20.0, *buf2.PlannedHectares)
}

func TestCompleteDeficitCapsBufferAndOverflows(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Fertilización - Bloque 3 Día 2", at(3, 9), nil))
	repo.add(scheduled("buf", "Aplicación Remanente - Bloque 3 Día 8", at(12, 9), ha(60)))

	// 40 of 60 done: the 20 ha deficit would push the buffer to 80, past cap.
	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 40,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RedistributedCount)
	require.Equal(t, []types.DetailKind{types.DetailWarning, types.DetailNewActivity}, kinds(res.Details))

	buf, _ := repo.Get("buf")
	require.Equal(t, 70.0, *buf.PlannedHectares)
	require.Equal(t, 560, buf.Duration)

	overflow, _ := repo.Get(res.Details[1].ActivityID)
	require.Equal(t, 10.0, *overflow.PlannedHectares)
	require.Equal(t, at(13, 9), overflow.ScheduledDate) // day after the buffer
	require.Equal(t, entities.StatusScheduled, overflow.Status)
}

func TestCompleteExcessDeletesExhaustedBuffer(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Control Malezas - Bloque 2 Día 3", at(3, 9), nil))
	repo.add(scheduled("buf", "Aplicación Remanente - Bloque 2 Día 8", at(12, 9), ha(20)))

	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 80,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RedistributedCount)
	require.Equal(t, []types.DetailKind{types.DetailDeleted}, kinds(res.Details))

	_, err = repo.Get("buf")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCompleteExcessDeletesBufferAndReschedulesRemainder(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Control Malezas - Bloque 2 Día 3", at(3, 9), nil))
	repo.add(scheduled("buf", "Aplicación Remanente - Bloque 2 Día 8", at(12, 9), ha(10)))
	repo.add(scheduled("later", "Poda - Bloque 2 Día 9", at(13, 9), ha(25)))

	// +25 excess against a 10 ha buffer: buffer goes, 15 ha reschedules.
	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 85,
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.RedistributedCount)
	require.Equal(t,
		[]types.DetailKind{types.DetailDeleted, types.DetailShifted, types.DetailNewActivity},
		kinds(res.Details))

	_, err = repo.Get("buf")
	require.ErrorIs(t, err, repository.ErrNotFound)

	later, _ := repo.Get("later")
	require.Equal(t, at(14, 9), later.ScheduledDate) // pushed one working day

	created, _ := repo.Get(res.Details[2].ActivityID)
	require.Equal(t, 15.0, *created.PlannedHectares)
	require.Equal(t, at(13, 9), created.ScheduledDate) // freed slot after the buffer
	require.Contains(t, created.Name, "Déficit Restante")
}

func TestCompleteExcessWithoutBuffer(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Siembra - Bloque 6 Día 1", at(3, 9), nil))

	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 80,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RedistributedCount)
	require.Equal(t, []types.DetailKind{types.DetailNewActivity}, kinds(res.Details))

	created, _ := repo.Get(res.Details[0].ActivityID)
	require.Equal(t, 20.0, *created.PlannedHectares)
	require.Equal(t, at(4, 9), created.ScheduledDate)
	require.Contains(t, created.Name, "Excedente (+20ha)")
}

func TestCompleteDeficitSpreadsAcrossPending(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Fumigación - Bloque 4 Día 2", at(3, 9), ha(130)))
	repo.add(scheduled("p1", "Fumigación - Bloque 4 Día 3", at(4, 9), ha(20)))
	repo.add(scheduled("p2", "Fumigación - Bloque 4 Día 4", at(5, 9), ha(30)))

	// 30 of 130 done: 100 ha of deficit, 60 ha per activity at most.
	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 30,
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.RedistributedCount)
	require.Equal(t, []types.DetailKind{types.DetailUpdated, types.DetailUpdated}, kinds(res.Details))

	p1, _ := repo.Get("p1")
	require.Equal(t, 80.0, *p1.PlannedHectares) // capped at +60
	require.Equal(t, 640, p1.Duration)
	p2, _ := repo.Get("p2")
	require.Equal(t, 70.0, *p2.PlannedHectares) // remaining 40
}

func TestCompleteDeficitRemainderCreatesActivity(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Siembra - Bloque 5 Día 1", at(3, 9), ha(130)))
	repo.add(scheduled("p1", "Siembra - Bloque 5 Día 2", at(4, 9), ha(20)))

	// 70 ha deficit: one pending absorbs 60, the last 10 get a fresh slot.
	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 60,
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.RedistributedCount)
	require.Equal(t,
		[]types.DetailKind{types.DetailUpdated, types.DetailShifted, types.DetailNewActivity},
		kinds(res.Details))

	p1, _ := repo.Get("p1")
	require.Equal(t, 80.0, *p1.PlannedHectares)
	require.Equal(t, at(5, 9), p1.ScheduledDate) // shifted out of the insertion slot

	created, _ := repo.Get(res.Details[2].ActivityID)
	require.Equal(t, 10.0, *created.PlannedHectares)
	require.Equal(t, at(4, 9), created.ScheduledDate)
	require.Contains(t, created.Name, "Déficit Redistribuido (+10ha)")
}

func TestCompleteBufferItselfWithDeficit(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("buf", "Aplicación Biológicos - Bloque 3 Día 8 Remanente", at(12, 9), ha(60)))

	res, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "buf", CompletedHectares: 40,
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.RedistributedCount)
	require.Equal(t, []types.DetailKind{types.DetailNewActivity}, kinds(res.Details))

	created, _ := repo.Get(res.Details[0].ActivityID)
	require.Equal(t, "Aplicación Preventiva Biológicos - Bloque 3 Día 9 (Déficit Restante)", created.Name)
	require.Equal(t, 20.0, *created.PlannedHectares)
	require.Equal(t, at(13, 9), created.ScheduledDate)
}

func TestCompleteRejectsAlreadyCompleted(t *testing.T) {
	repo := newFakeRepo()
	a := scheduled("a1", "Control - Bloque 1 Día 1", at(3, 9), nil)
	a.Status = entities.StatusCompleted
	repo.add(a)

	_, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 50,
	})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.From(err).Kind)
}

func TestCompleteUnparseableNameStillPersists(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("a1", "Mantenimiento general de equipos", at(3, 9), nil))

	_, err := New(repo).CompleteWithHectares(types.CompleteRequest{
		ActivityID: "a1", CompletedHectares: 50,
	})
	require.Error(t, err)
	require.Equal(t, apperr.KindDomain, apperr.From(err).Kind)

	// the completion write happened before the parse failed
	stored, _ := repo.Get("a1")
	require.Equal(t, entities.StatusCompleted, stored.Status)
	require.Equal(t, 50.0, *stored.CompletedHectares)
}

func TestCompleteRequestValidation(t *testing.T) {
	svc := New(newFakeRepo())

	_, err := svc.CompleteWithHectares(types.CompleteRequest{CompletedHectares: 10})
	require.Equal(t, apperr.KindValidation, apperr.From(err).Kind)

	_, err = svc.CompleteWithHectares(types.CompleteRequest{ActivityID: "a1"})
	require.Equal(t, apperr.KindValidation, apperr.From(err).Kind)

	_, err = svc.CompleteWithHectares(types.CompleteRequest{ActivityID: "nope", CompletedHectares: 10})
	require.Equal(t, apperr.KindNotFound, apperr.From(err).Kind)
}

func TestDecide(t *testing.T) {
	buf := func(planned float64) *entities.Activity {
		return &entities.Activity{PlannedHectares: &planned}
	}
	cases := []struct {
		name           string
		delta          float64
		buffer         *entities.Activity
		targetIsBuffer bool
		want           resolution
	}{
		{"buffer short of plan, no sibling buffer", -20, nil, true, bufferSelfDeficit},
		{"buffer over plan, no sibling buffer", 20, nil, true, noAction},
		{"excess without buffer", 20, nil, false, noBufferExcess},
		{"deficit without buffer", -20, nil, false, noBufferDeficit},
		{"excess fits in buffer", 20, buf(40), false, absorbInBuffer},
		{"deficit fits under cap", -20, buf(40), false, absorbInBuffer},
		{"deficit pushes buffer past cap", -20, buf(60), false, capBufferAndOverflow},
		{"excess drains buffer exactly", 20, buf(20), false, deleteBuffer},
		{"excess exceeds buffer", 25, buf(10), false, deleteBufferWithDeficit},
		{"nil planned uses buffer default", 15, &entities.Activity{}, false, deleteBuffer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, decide(tc.delta, tc.buffer, tc.targetIsBuffer))
		})
	}
}

func TestShiftForwardCascadesOneDayEach(t *testing.T) {
	repo := newFakeRepo()
	repo.add(scheduled("s1", "Siembra - Bloque 1 Día 1", at(8, 9), nil))  // Saturday
	repo.add(scheduled("s2", "Siembra - Bloque 1 Día 2", at(10, 9), nil)) // Monday
	repo.add(scheduled("s3", "Siembra - Bloque 2 Día 1", at(10, 9), nil))

	svc := New(repo).(*redistSvc)
	details := []types.Detail{}
	shifted := svc.shiftForward(at(8, 9), &details)

	require.Equal(t, 3, shifted)
	require.Len(t, details, 3)

	s1, _ := repo.Get("s1")
	s2, _ := repo.Get("s2")
	s3, _ := repo.Get("s3")
	require.Equal(t, at(10, 9), s1.ScheduledDate) // Sunday Mar 9 skipped
	require.Equal(t, at(11, 9), s2.ScheduledDate) // block 1 before block 2 on ties
	require.Equal(t, at(12, 9), s3.ScheduledDate)
	for _, a := range []*entities.Activity{s1, s2, s3} {
		require.NotEqual(t, time.Sunday, a.ScheduledDate.Weekday())
	}
}
