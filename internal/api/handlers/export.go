package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"energy-traffic-light/internal/chart"
	"energy-traffic-light/internal/export"
	"energy-traffic-light/internal/metrics"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler downloads the current window
type ExportHandler struct {
	store   *simulation.Store
	charts  *chart.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(store *simulation.Store, charts *chart.Service, m *metrics.Metrics, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{store: store, charts: charts, metrics: m, logger: logger}
}

func (h *ExportHandler) report() export.Report {
	return export.NewReport(h.store.Snapshot(), h.store.Window(), time.Now())
}

func attachment(r export.Report, ext string) string {
	return fmt.Sprintf("attachment; filename=\"energy-window-%s.%s\"", r.CurrentTime.Format("20060102-1504"), ext)
}

// XLSX handles GET /api/v1/export.xlsx
func (h *ExportHandler) XLSX(c *gin.Context) {
	r := h.report()
	body, err := export.BuildXLSX(r)
	h.metrics.ObserveExport("xlsx", err)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "EXPORT_ERROR", err.Error(), nil)
		return
	}
	c.Header("Content-Disposition", attachment(r, "xlsx"))
	c.Data(http.StatusOK, xlsxContentType, body)
}

// PDF handles GET /api/v1/export.pdf
func (h *ExportHandler) PDF(c *gin.Context) {
	r := h.report()
	if h.charts != nil {
		png, err := h.charts.Render(chart.Request{Kind: model.KindGrid, View: chart.ViewDaily}, 0, 0, chart.FormatPNG)
		if err != nil {
			h.logger.Warn("export without chart", zap.Error(err))
		} else {
			r.ChartPNG = png
		}
	}
	body, err := export.BuildPDF(r)
	h.metrics.ObserveExport("pdf", err)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "EXPORT_ERROR", err.Error(), nil)
		return
	}
	c.Header("Content-Disposition", attachment(r, "pdf"))
	c.Data(http.StatusOK, "application/pdf", body)
}
