package entities

import "time"

// Activity statuses. Redistribution only ever reads/writes the first three.
const (
	StatusScheduled   = "scheduled"
	StatusDeferred    = "deferred"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Activity is one day of field work. The name embeds the block number and
// optionally a day index and the buffer-day marker ("Día Remanente"); the
// redistribution engine parses these via pkg/naming.
type Activity struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"` // aplicacion_biologicos|control_plagas|mantenimiento_maquinaria|...
	ScheduledDate     time.Time `gorm:"index" json:"scheduled_date"`
	Duration          int       `json:"duration"` // minutes, 8 min per hectare
	Priority          string    `json:"priority"`
	Status            string    `gorm:"index" json:"status"`
	PlannedHectares   *float64  `json:"planned_hectares"`
	CompletedHectares *float64  `json:"completed_hectares"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
