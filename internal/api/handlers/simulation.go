package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/simulation"
	"energy-traffic-light/internal/widgets"
)

// SimulationHandler exposes the simulated clock
type SimulationHandler struct {
	store *simulation.Store
	clock *simulation.Clock
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(store *simulation.Store, clock *simulation.Clock) *SimulationHandler {
	return &SimulationHandler{store: store, clock: clock}
}

func (h *SimulationHandler) state() models.SimulationState {
	st := h.clock.State()
	snap := h.store.Snapshot()
	face := widgets.FormatClock(snap.Time())
	lo, hi := h.clock.SpeedRange()
	return models.SimulationState{
		CurrentTime:     st.CurrentTime,
		CurrentTimeISO:  snap.Time(),
		Date:            face.Date,
		Time:            face.Time,
		Speed:           st.Speed,
		MinSpeed:        lo,
		MaxSpeed:        hi,
		Playing:         st.Playing,
		Error:           st.Error,
		GridPoints:      len(snap.WindowGrid),
		HouseholdPoints: len(snap.WindowHousehold),
		Version:         snap.Version,
	}
}

// GetState handles GET /api/v1/simulation
func (h *SimulationHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// Play handles POST /api/v1/simulation/play
func (h *SimulationHandler) Play(c *gin.Context) {
	h.clock.Play()
	c.JSON(http.StatusOK, h.state())
}

// Pause handles POST /api/v1/simulation/pause
func (h *SimulationHandler) Pause(c *gin.Context) {
	h.clock.Pause()
	c.JSON(http.StatusOK, h.state())
}

// Toggle handles POST /api/v1/simulation/toggle
func (h *SimulationHandler) Toggle(c *gin.Context) {
	h.clock.TogglePlayPause()
	c.JSON(http.StatusOK, h.state())
}

// SetSpeed handles PUT /api/v1/simulation/speed
func (h *SimulationHandler) SetSpeed(c *gin.Context) {
	var req models.SpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if err := h.clock.SetSpeed(*req.Speed); err != nil {
		lo, hi := h.clock.SpeedRange()
		abortWithError(c, http.StatusBadRequest, "INVALID_SPEED", h.clock.State().Error, map[string]interface{}{
			"min_speed": lo,
			"max_speed": hi,
			"speed":     h.clock.State().Speed,
		})
		return
	}
	c.JSON(http.StatusOK, h.state())
}

// Jump handles POST /api/v1/simulation/jump
func (h *SimulationHandler) Jump(c *gin.Context) {
	var req models.JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if err := h.clock.JumpToString(string(req.Time)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, simulation.ErrInvalidTime) {
			status = http.StatusBadRequest
		}
		abortWithError(c, status, "INVALID_TIME", simulation.MsgInvalidTime, map[string]interface{}{
			"reason": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, h.state())
}

// Advance handles POST /api/v1/simulation/advance
func (h *SimulationHandler) Advance(c *gin.Context) {
	var req models.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	h.clock.AdvanceTime(req.Minutes)
	c.JSON(http.StatusOK, h.state())
}
