// Package cycle maps calendar dates onto the four fixed seasonal work
// cycles and derives their date boundaries.
package cycle

import "time"

type Cycle struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
}

var cycles = [4]Cycle{
	{Name: "Feb-Mar", Number: 1},
	{Name: "May-Jun", Number: 2},
	{Name: "Aug-Sep", Number: 3},
	{Name: "Nov-Dec", Number: 4},
}

// startMonths holds the first month of each cycle; the second month is
// always the one after.
var startMonths = [4]time.Month{time.February, time.May, time.August, time.November}

// FromMonth maps a month onto its cycle strictly: only the eight canonical
// months resolve. The reorganizer rejects dates outside these.
func FromMonth(m time.Month) (Cycle, bool) {
	for i, start := range startMonths {
		if m == start || m == start+1 {
			return cycles[i], true
		}
	}
	return Cycle{}, false
}

// FromDate maps a date onto its cycle. Months outside the canonical pairs
// snap to the next cycle (Jan to 1, Apr to 2, Jul to 3, Oct to 4), so this
// never fails for a well-formed date.
func FromDate(t time.Time) (Cycle, bool) {
	if c, ok := FromMonth(t.Month()); ok {
		return c, true
	}
	switch t.Month() {
	case time.January:
		return cycles[0], true
	case time.April:
		return cycles[1], true
	case time.July:
		return cycles[2], true
	case time.October:
		return cycles[3], true
	}
	return Cycle{}, false
}

// Months returns the two months of the given cycle number (1-4).
func Months(number int) (time.Month, time.Month) {
	start := startMonths[number-1]
	return start, start + 1
}

// DateRange returns the cycle's inclusive boundaries: first day of the
// first month through the last day of the second month at 23:59:59.
func DateRange(number, year int) (time.Time, time.Time) {
	first, second := Months(number)
	start := time.Date(year, first, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, second+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
	return start, end
}

// MonthWindow returns the half-open query window [start, end): first day of
// the first month up to the first day of the month after the second month,
// rolling December into January of the next year.
func MonthWindow(number, year int) (time.Time, time.Time) {
	first, second := Months(number)
	start := time.Date(year, first, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, second+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}
