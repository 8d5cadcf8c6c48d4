package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/stream"
)

// StreamHandler pushes simulation updates to browsers
type StreamHandler struct {
	broker *stream.Broker
	hub    *stream.Hub
	ctrl   stream.Controller
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(broker *stream.Broker, hub *stream.Hub, ctrl stream.Controller) *StreamHandler {
	return &StreamHandler{broker: broker, hub: hub, ctrl: ctrl}
}

// SSE handles GET /api/v1/stream
func (h *StreamHandler) SSE(c *gin.Context) {
	ch := h.broker.Subscribe("sse")
	if ch == nil {
		abortWithError(c, http.StatusServiceUnavailable, "STREAM_NOT_READY", "stream not ready", nil)
		return
	}
	defer h.broker.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent(stream.EventReady, h.ctrl.State())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(msg.Type, msg.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// WebSocket handles GET /api/v1/ws
func (h *StreamHandler) WebSocket(c *gin.Context) {
	h.hub.ServeHTTP(c.Writer, c.Request)
}
