// Package types holds the redistribution engine's request/response and
// audit-detail shapes, plus the hectare constants the policy branches on.
package types

import (
	"math"
	"time"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
	"agrocal/pkg/cycle"
)

const (
	// DefaultPlannedHectares applies when an activity has no planned area.
	DefaultPlannedHectares = 60.0
	// DefaultBufferHectares applies when the buffer slot has no planned area.
	DefaultBufferHectares = 15.0
	// BufferCapHectares is the most the buffer slot may grow to.
	BufferCapHectares = 70.0
	// ToleranceHectares below which a planned/actual delta is ignored.
	ToleranceHectares = 0.1
	// MaxDeficitPerActivity caps how much deficit one pending activity absorbs.
	MaxDeficitPerActivity = 60.0
)

// DurationForHectares keeps duration proportional to area: 60 ha is a
// 480-minute day, so 8 minutes per hectare.
func DurationForHectares(ha float64) int {
	return int(math.Round(ha / 60.0 * 480.0))
}

type DetailKind string

const (
	DetailUpdated     DetailKind = "updated"
	DetailNewActivity DetailKind = "new_activity"
	DetailDeleted     DetailKind = "deleted"
	DetailWarning     DetailKind = "warning"
	DetailShifted     DetailKind = "shifted"
)

// Detail is one entry of the audit trail returned to the caller. It is
// never persisted by the engine.
type Detail struct {
	Kind         DetailKind `json:"type"`
	ActivityID   string     `json:"activity_id,omitempty"`
	ActivityName string     `json:"activity_name,omitempty"`
	OldHectares  *float64   `json:"old_hectares,omitempty"`
	NewHectares  *float64   `json:"new_hectares,omitempty"`
	OldDate      *time.Time `json:"old_date,omitempty"`
	NewDate      *time.Time `json:"new_date,omitempty"`
	Message      string     `json:"message"`
}

type CompleteRequest struct {
	ActivityID        string  `json:"activity_id"`
	CompletedHectares float64 `json:"completed_hectares"`
	Notes             string  `json:"notes,omitempty"`
}

type BlockInfo struct {
	BlockNumber          int     `json:"block_number"`
	TotalPlannedHectares float64 `json:"total_planned_hectares"`
	CompletedHectares    float64 `json:"completed_hectares"`
	PendingHectares      float64 `json:"pending_hectares"`
}

type CompleteResult struct {
	Activity           *entities.Activity `json:"activity"`
	PlannedHectares    float64            `json:"planned_hectares"`
	CompletedHectares  float64            `json:"completed_hectares"`
	HectaresDifference float64            `json:"hectares_difference"`
	RedistributedCount int                `json:"redistributed_activities"`
	Details            []Detail           `json:"redistribution_details"`
	BlockInfo          BlockInfo          `json:"block_info"`
	CycleInfo          cycle.Cycle        `json:"cycle_info"`
	Notes              string             `json:"notes,omitempty"`
}

// BlockInfoFromStats derives the caller-facing block report; pending is
// whatever planned area has not been completed yet.
func BlockInfoFromStats(block int, st repository.BlockStats) BlockInfo {
	return BlockInfo{
		BlockNumber:          block,
		TotalPlannedHectares: st.TotalPlannedHectares,
		CompletedHectares:    st.TotalCompletedHectares,
		PendingHectares:      st.TotalPlannedHectares - st.TotalCompletedHectares,
	}
}
