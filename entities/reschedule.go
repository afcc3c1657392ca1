package entities

import "time"

// RescheduleEvent is the persisted audit trail of deferrals: one row for
// the explicit deferral plus one per activity moved by the automatic
// cycle reorganization it triggered.
type RescheduleEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID string    `gorm:"index" json:"activity_id"`
	OldDate    time.Time `json:"old_date"`
	NewDate    time.Time `json:"new_date"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
