package service

import "time"

type DeferRequest struct {
	ActivityID string `json:"activity_id"`
	OldDate    string `json:"old_date"`
	NewDate    string `json:"new_date"`
	Reason     string `json:"reason"`
}

type DeferResult struct {
	ActivityID             string       `json:"activity_id"`
	OldDate                string       `json:"old_date"`
	NewDate                string       `json:"new_date"`
	Reason                 string       `json:"reason"`
	DaysShifted            int          `json:"days_shifted"`
	ReorganizedCount       int          `json:"reorganized_activities"`
	CycleMonths            []time.Month `json:"cycle_months"`
	TotalActivitiesInCycle int          `json:"total_activities_in_cycle"`
	CycleStart             time.Time    `json:"cycle_start"`
	CycleEnd               time.Time    `json:"cycle_end"`
}

type ReorganizeService interface {
	Defer(req DeferRequest) (*DeferResult, error)
}
