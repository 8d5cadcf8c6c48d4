package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"
)

// RankHandler ranks hours of the day by load
type RankHandler struct {
	store *simulation.Store
}

// NewRankHandler creates a new rank handler
func NewRankHandler(store *simulation.Store) *RankHandler {
	return &RankHandler{store: store}
}

// RankHours handles GET /api/v1/rank/hours?series=grid&scope=full|window
func (h *RankHandler) RankHours(c *gin.Context) {
	kind, ok := parseKind(c, c.DefaultQuery("series", string(model.KindGrid)))
	if !ok {
		return
	}
	var series []model.PowerLoadEntry
	switch c.DefaultQuery("scope", "full") {
	case "full":
		series = h.store.Dataset().Series(kind)
	case "window":
		series = h.store.Snapshot().Window(kind)
	default:
		abortWithError(c, http.StatusBadRequest, "INVALID_SCOPE", "scope must be full or window", nil)
		return
	}
	c.JSON(http.StatusOK, models.RankResponse{
		Series:   string(kind),
		Rankings: analysis.RankHoursByLoad(series),
	})
}
