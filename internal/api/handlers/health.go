package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/simulation"
	"energy-traffic-light/internal/stream"
)

// Health handles GET /health
func Health(store *simulation.Store, clock *simulation.Clock, broker *stream.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:      "ok",
			CurrentTime: store.Snapshot().Time(),
			Playing:     clock.State().Playing,
			Clients:     broker.Clients(),
		})
	}
}
