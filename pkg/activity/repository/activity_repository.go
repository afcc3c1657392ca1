package repository

import (
	"errors"
	"time"

	"agrocal/entities"
)

// ErrNotFound distinguishes a missing record from a store failure.
var ErrNotFound = errors.New("activity not found")

// Filter is the predicate vocabulary the redistribution engine and the
// reorganizer query with. All set fields combine with AND; results come
// back ordered by scheduled_date ascending.
type Filter struct {
	NameLike        string
	DateFrom        *time.Time // scheduled_date >= DateFrom
	DateTo          *time.Time // scheduled_date <= DateTo (or < when exclusive)
	DateToExclusive bool
	StatusIn        []string
	ExcludeID       string
	Status          string
	Type            string
}

// BlockStats aggregates every activity whose name carries the block token,
// regardless of status or cycle.
type BlockStats struct {
	TotalActivities        int     `json:"total_activities"`
	CompletedActivities    int     `json:"completed_activities"`
	TotalPlannedHectares   float64 `json:"total_planned_hectares"`
	TotalCompletedHectares float64 `json:"total_completed_hectares"`
}

type ActivityRepository interface {
	Get(id string) (*entities.Activity, error)
	Create(a *entities.Activity) error
	Update(id string, fields map[string]any) (*entities.Activity, error)
	Delete(id string) error
	Find(f Filter) ([]entities.Activity, error)
	BlockStats(blockNumber int) (BlockStats, error)
	Count() (int64, error)
	LogReschedule(ev *entities.RescheduleEvent) error
}
