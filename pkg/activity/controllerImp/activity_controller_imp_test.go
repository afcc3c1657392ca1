package controllerImp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
)

type fakeRepo struct {
	acts       map[string]*entities.Activity
	nextID     int
	lastFilter repository.Filter
	lastUpdate map[string]any
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{acts: map[string]*entities.Activity{}}
}

func (r *fakeRepo) add(a entities.Activity) {
	cp := a
	r.acts[cp.ID] = &cp
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
	r.lastUpdate = fields
	a, ok := r.acts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if v, ok := fields["status"]; ok {
		a.Status = v.(string)
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
	r.lastFilter = f
	var out []entities.Activity
	for _, a := range r.acts {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.NameLike != "" && !strings.Contains(a.Name, f.NameLike) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) BlockStats(int) (repository.BlockStats, error) {
	return repository.BlockStats{}, nil
}

func (r *fakeRepo) Count() (int64, error) { return int64(len(r.acts)), nil }

func (r *fakeRepo) LogReschedule(*entities.RescheduleEvent) error { return nil }

func call(t *testing.T, handler func(echo.Context) error, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, handler(c))
	return rec
}

func seeded() *fakeRepo {
	repo := newFakeRepo()
	repo.add(entities.Activity{ID: "a1", Name: "Siembra - Bloque 1 Día 1", Type: "siembra",
		ScheduledDate: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
		Status:        entities.StatusScheduled})
	repo.add(entities.Activity{ID: "a2", Name: "Poda - Bloque 2 Día 1", Type: "poda",
		ScheduledDate: time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC),
		Status:        entities.StatusCompleted})
	return repo
}

func TestListPassesQueryFilters(t *testing.T) {
	repo := seeded()
	h := New(repo)

	rec := call(t, h.List, http.MethodGet, "/activities?status=scheduled&type=siembra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, entities.StatusScheduled, repo.lastFilter.Status)
	require.Equal(t, "siembra", repo.lastFilter.Type)

	var out []entities.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, "a1", out[0].ID)
}

func TestListEmptyIsArrayNotNull(t *testing.T) {
	rec := call(t, New(newFakeRepo()).List, http.MethodGet, "/activities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetStatuses(t *testing.T) {
	h := New(seeded())

	rec := call(t, h.Get, http.MethodGet, "/activities/a1", "", "id", "a1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h.Get, http.MethodGet, "/activities/ghost", "", "id", "ghost")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidatesAndDefaults(t *testing.T) {
	repo := newFakeRepo()
	h := New(repo)

	rec := call(t, h.Create, http.MethodPost, "/activities", `{"name":"Siembra - Bloque 1 Día 1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h.Create, http.MethodPost, "/activities",
		`{"name":"Siembra - Bloque 1 Día 1","type":"siembra","scheduled_date":"2025-03-03T09:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out entities.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.ID)
	require.Equal(t, entities.StatusScheduled, out.Status)
}

func TestUpdateStripsImmutableFields(t *testing.T) {
	repo := seeded()
	h := New(repo)

	rec := call(t, h.Update, http.MethodPut, "/activities/a1",
		`{"id":"hack","created_at":"2020-01-01T00:00:00Z","status":"cancelled"}`, "id", "a1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, repo.lastUpdate, "id")
	require.NotContains(t, repo.lastUpdate, "created_at")
	require.Equal(t, entities.StatusCancelled, repo.acts["a1"].Status)

	rec = call(t, h.Update, http.MethodPut, "/activities/ghost", `{"status":"cancelled"}`, "id", "ghost")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStatuses(t *testing.T) {
	h := New(seeded())

	rec := call(t, h.Delete, http.MethodDelete, "/activities/a1", "", "id", "a1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h.Delete, http.MethodDelete, "/activities/a1", "", "id", "a1")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummary(t *testing.T) {
	rec := call(t, New(seeded()).Summary, http.MethodGet, "/activities/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2.0, payload["total_activities"])
	byStatus := payload["by_status"].(map[string]any)
	require.Equal(t, 1.0, byStatus[entities.StatusScheduled])
	require.Equal(t, 0.0, byStatus[entities.StatusDeferred])
	require.Equal(t, 1.0, byStatus[entities.StatusCompleted])
}
