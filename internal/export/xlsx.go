package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"energy-traffic-light/internal/analysis"
)

const (
	summarySheet = "summary"
	windowSheet  = "window"
)

// BuildXLSX writes a summary sheet and one row per timestamp in the window.
func BuildXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(windowSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Energy Traffic Light Export")
	_ = f.SetCellValue(summarySheet, "A3", "Simulated Time")
	_ = f.SetCellValue(summarySheet, "B3", r.CurrentTime.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Window")
	_ = f.SetCellValue(summarySheet, "B4", r.Window.String())
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", r.GeneratedAt.Format(time.RFC3339))

	_ = f.SetSheetRow(summarySheet, "A7", &[]any{"Series", "Points", "Min", "Max", "Mean", "P05", "P95", "Peak Share"})
	for i, s := range []analysis.SeriesStats{r.GridStats, r.HouseholdStats} {
		cell := fmt.Sprintf("A%d", 8+i)
		_ = f.SetSheetRow(summarySheet, cell, &[]any{string(s.Kind), s.Count, s.Min, s.Max, s.Mean, s.P05, s.P95, s.PeakShare})
	}

	_ = f.SetSheetRow(windowSheet, "A1", &[]any{"Time (UTC)", "Grid Load (kW)", "Grid Peak", "Household Load (kW)", "Household Peak"})
	for i, rw := range r.rows() {
		vals := []any{time.Unix(rw.ts, 0).UTC().Format("2006-01-02 15:04"), "", "", "", ""}
		if rw.grid != nil {
			vals[1], vals[2] = rw.grid.Value, rw.grid.IsPeak
		}
		if rw.household != nil {
			vals[3], vals[4] = rw.household.Value, rw.household.IsPeak
		}
		if err := f.SetSheetRow(windowSheet, fmt.Sprintf("A%d", i+2), &vals); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
