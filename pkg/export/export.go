// Package export renders the activity calendar as an xlsx workbook, one
// sheet per seasonal cycle, for field crews working off printed plans.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"agrocal/entities"
	"agrocal/pkg/cycle"
)

var header = []string{"Fecha", "Actividad", "Tipo", "Estado", "Prioridad", "Ha Planificadas", "Ha Completadas", "Duración (min)"}

// BuildWorkbook lays activities out by cycle. Input order is kept within
// each sheet (callers pass store results, already date-ascending).
func BuildWorkbook(activities []entities.Activity) (*excelize.File, error) {
	f := excelize.NewFile()

	rows := map[int]int{} // cycle number -> next row
	for _, a := range activities {
		cyc, ok := cycle.FromDate(a.ScheduledDate)
		if !ok {
			continue
		}
		sheet := fmt.Sprintf("Ciclo %d (%s)", cyc.Number, cyc.Name)
		if rows[cyc.Number] == 0 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
			for i, h := range header {
				cell, _ := excelize.CoordinatesToCellName(i+1, 1)
				if err := f.SetCellValue(sheet, cell, h); err != nil {
					return nil, err
				}
			}
			rows[cyc.Number] = 2
		}
		row := rows[cyc.Number]
		values := []any{
			a.ScheduledDate.Format("2006-01-02 15:04"),
			a.Name,
			a.Type,
			a.Status,
			a.Priority,
			derefOrEmpty(a.PlannedHectares),
			derefOrEmpty(a.CompletedHectares),
			a.Duration,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		rows[cyc.Number] = row + 1
	}

	// drop the default sheet when any cycle sheet exists
	if len(rows) > 0 {
		_ = f.DeleteSheet("Sheet1")
	}
	return f, nil
}

func derefOrEmpty(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
