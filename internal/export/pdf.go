package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/model"
)

// pdfRowLimit keeps the table to a few pages; the XLSX carries every row.
const pdfRowLimit = 200

// BuildPDF renders a summary page, the optional chart and a table of the window.
func BuildPDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Energy Traffic Light Export")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Simulated time: %s", r.CurrentTime.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s", r.Window))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	for _, s := range []analysis.SeriesStats{r.GridStats, r.HouseholdStats} {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %d points, min %.2f, max %.2f, mean %.2f kW, peak share %.0f%%",
			s.Kind, s.Count, s.Min, s.Max, s.Mean, s.PeakShare*100))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	if len(r.ChartPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(r.ChartPNG))
		pdf.ImageOptions("chart", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Time (UTC)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Grid (kW)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Household (kW)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	rows := r.rows()
	if len(rows) > pdfRowLimit {
		rows = rows[len(rows)-pdfRowLimit:]
	}
	for _, rw := range rows {
		pdf.CellFormat(50, 6, time.Unix(rw.ts, 0).UTC().Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, entryCell(rw.grid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, entryCell(rw.household), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// entryCell marks peak samples with an asterisk.
func entryCell(e *model.PowerLoadEntry) string {
	if e == nil {
		return ""
	}
	s := fmt.Sprintf("%.3f", e.Value)
	if e.IsPeak {
		s += " *"
	}
	return s
}
