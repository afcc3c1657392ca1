// Package workday steps dates across the working week under a
// single-excluded-weekday rule. The excluded day is configuration because
// the calendar shifter and the cycle reorganizer each construct their own
// calculator; today both exclude Sunday, but neither call site hardcodes it.
package workday

import "time"

type Calculator struct {
	excluded time.Weekday
}

func New(excluded time.Weekday) *Calculator {
	return &Calculator{excluded: excluded}
}

// ForCalendarShift is the rule the hectare redistribution shifter uses.
func ForCalendarShift() *Calculator { return New(time.Sunday) }

// ForCycleReorganize is the rule the deferral reorganizer uses.
func ForCycleReorganize() *Calculator { return New(time.Sunday) }

func (c *Calculator) IsWorking(t time.Time) bool {
	return t.Weekday() != c.excluded
}

// Next returns the next working date strictly after t.
func (c *Calculator) Next(t time.Time) time.Time {
	n := t.AddDate(0, 0, 1)
	for !c.IsWorking(n) {
		n = n.AddDate(0, 0, 1)
	}
	return n
}

// Previous returns the closest working date strictly before t.
func (c *Calculator) Previous(t time.Time) time.Time {
	p := t.AddDate(0, 0, -1)
	for !c.IsWorking(p) {
		p = p.AddDate(0, 0, -1)
	}
	return p
}

// DaysBetween counts workday steps from a to b, negative when b precedes a.
// It steps iteratively so behavior around the excluded day matches repeated
// application of Next/Previous exactly.
func (c *Calculator) DaysBetween(a, b time.Time) int {
	cur := a
	days := 0
	if a.After(b) {
		for cur.After(b) {
			cur = c.Previous(cur)
			days--
		}
	} else {
		for cur.Before(b) {
			cur = c.Next(cur)
			days++
		}
	}
	return days
}
