package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/replay"
	"energy-traffic-light/internal/simulation"
)

const (
	defaultReplaySteps = 24
	defaultReplayStep  = time.Hour
)

// ReplayHandler runs replays against the loaded data
type ReplayHandler struct {
	store  *simulation.Store
	engine *replay.Engine
}

// NewReplayHandler creates a new replay handler
func NewReplayHandler(store *simulation.Store, engine *replay.Engine) *ReplayHandler {
	return &ReplayHandler{store: store, engine: engine}
}

// RunReplay handles GET /api/v1/replay
func (h *ReplayHandler) RunReplay(c *gin.Context) {
	var q models.ReplayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	from := h.store.Snapshot().Time()
	if q.From != "" {
		t, err := simulation.ParseInstant(q.From)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_TIME", err.Error(), nil)
			return
		}
		from = t
	}
	steps := q.Steps
	if steps == 0 {
		steps = defaultReplaySteps
	}
	step := defaultReplayStep
	if q.Step != "" {
		d, err := time.ParseDuration(q.Step)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_STEP", err.Error(), nil)
			return
		}
		step = d
	}

	res, err := h.engine.Run(h.store.Dataset(), replay.Options{
		From:   from,
		Steps:  steps,
		Step:   step,
		Window: h.store.Window(),
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "REPLAY_ERROR", err.Error(), map[string]interface{}{
			"max_steps": replay.MaxSteps,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}
