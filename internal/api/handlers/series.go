package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/chart"
	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/model"
)

const maxChartSide = 4096

// ChartHandler serves chart payloads and rendered images
type ChartHandler struct {
	charts *chart.Service
}

// NewChartHandler creates a new chart handler
func NewChartHandler(charts *chart.Service) *ChartHandler {
	return &ChartHandler{charts: charts}
}

func parseKind(c *gin.Context, raw string) (model.SeriesKind, bool) {
	kind := model.SeriesKind(raw)
	if !kind.Valid() {
		abortWithError(c, http.StatusNotFound, "UNKNOWN_SERIES",
			fmt.Sprintf("unknown series %q (expected grid or household)", raw), nil)
		return "", false
	}
	return kind, true
}

func bindChartRequest(c *gin.Context, kind model.SeriesKind) (chart.Request, models.SeriesQuery, bool) {
	var q models.SeriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return chart.Request{}, q, false
	}
	view, err := chart.ParseView(q.View)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_VIEW", err.Error(), nil)
		return chart.Request{}, q, false
	}
	cmp, err := chart.ParseComparison(q.Comparison)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_COMPARISON", err.Error(), nil)
		return chart.Request{}, q, false
	}
	if q.Smooth < 0 || q.Downsample < 0 {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "smooth and downsample must be >= 0", nil)
		return chart.Request{}, q, false
	}
	if q.Width < 0 || q.Height < 0 || q.Width > maxChartSide || q.Height > maxChartSide {
		abortWithError(c, http.StatusBadRequest, "INVALID_SIZE",
			fmt.Sprintf("width and height must be between 1 and %d", maxChartSide), nil)
		return chart.Request{}, q, false
	}
	return chart.Request{
		Kind:       kind,
		View:       view,
		Comparison: cmp,
		Override:   config.ViewConfig{Smooth: q.Smooth, Downsample: q.Downsample},
	}, q, true
}

// GetSeries handles GET /api/v1/series/:kind
func (h *ChartHandler) GetSeries(c *gin.Context) {
	kind, ok := parseKind(c, c.Param("kind"))
	if !ok {
		return
	}
	req, _, ok := bindChartRequest(c, kind)
	if !ok {
		return
	}
	p, err := h.charts.Payload(req)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "CHART_BUILD_ERROR", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RenderChart handles GET /api/v1/charts/:file where file is <kind>.png or <kind>.svg
func (h *ChartHandler) RenderChart(c *gin.Context) {
	file := c.Param("file")
	dot := strings.LastIndexByte(file, '.')
	if dot < 0 {
		abortWithError(c, http.StatusNotFound, "UNKNOWN_FORMAT", "expected <series>.png or <series>.svg", nil)
		return
	}
	format, err := chart.ParseFormat(file[dot+1:])
	if err != nil {
		abortWithError(c, http.StatusNotFound, "UNKNOWN_FORMAT", err.Error(), nil)
		return
	}
	kind, ok := parseKind(c, file[:dot])
	if !ok {
		return
	}
	req, q, ok := bindChartRequest(c, kind)
	if !ok {
		return
	}

	body, err := h.charts.Render(req, q.Width, q.Height, format)
	if err != nil {
		if errors.Is(err, chart.ErrNotInitialized) {
			abortWithError(c, http.StatusServiceUnavailable, "CHARTS_NOT_READY", err.Error(), nil)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "CHART_RENDER_ERROR", err.Error(), nil)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, format.ContentType(), body)
}

// Resize handles PUT /api/v1/charts/size
func (h *ChartHandler) Resize(c *gin.Context) {
	var req models.ChartSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_SIZE", err.Error(), nil)
		return
	}
	if err := h.charts.Resize(req.Width, req.Height); err != nil {
		abortWithError(c, http.StatusServiceUnavailable, "CHARTS_NOT_READY", err.Error(), nil)
		return
	}
	w, hgt := h.charts.Size()
	c.JSON(http.StatusOK, models.ChartSize{Width: w, Height: hgt})
}
