package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/widgets"
)

// WidgetHandler serves the dashboard side panels
type WidgetHandler struct {
	board *widgets.Board
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(board *widgets.Board) *WidgetHandler {
	return &WidgetHandler{board: board}
}

// Summary handles GET /api/v1/widgets
func (h *WidgetHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Summary())
}

// TrafficLight handles GET /api/v1/widgets/traffic-light
func (h *WidgetHandler) TrafficLight(c *gin.Context) {
	c.JSON(http.StatusOK, widgets.ReadTrafficLight(h.board.Source))
}

// Bill handles GET /api/v1/widgets/bill
func (h *WidgetHandler) Bill(c *gin.Context) {
	c.JSON(http.StatusOK, widgets.EstimateBill(h.board.Source))
}

// Gamification handles GET /api/v1/widgets/gamification
func (h *WidgetHandler) Gamification(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Gamification.State())
}

// Price handles GET /api/v1/widgets/price
func (h *WidgetHandler) Price(c *gin.Context) {
	in := h.board.Insights()
	c.JSON(http.StatusOK, gin.H{
		"tier":            in.Tier,
		"unit_price":      in.UnitPrice,
		"monthly_savings": in.MonthlySavings,
		"load_pct":        in.LoadPct,
	})
}

// Insights handles GET /api/v1/widgets/insights
func (h *WidgetHandler) Insights(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Insights())
}

// Carbon handles GET /api/v1/widgets/carbon?kwh=
// Without kwh the projected monthly usage is used.
func (h *WidgetHandler) Carbon(c *gin.Context) {
	kwh := h.board.Source.MonthlyUsageKWh()
	if raw := c.Query("kwh"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			abortWithError(c, http.StatusBadRequest, "INVALID_PARAM", "kwh must be a non-negative number", nil)
			return
		}
		kwh = v
	}
	c.JSON(http.StatusOK, widgets.Footprint(kwh))
}

// Notifications handles GET /api/v1/widgets/notifications
func (h *WidgetHandler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.board.Notifications.List()})
}

// DismissNotification handles DELETE /api/v1/widgets/notifications/:id
func (h *WidgetHandler) DismissNotification(c *gin.Context) {
	if !h.board.Notifications.Dismiss(c.Param("id")) {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "notification not found or already expired", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
