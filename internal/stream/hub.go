package stream

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"energy-traffic-light/internal/simulation"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	readLimit  = 4096
)

// Hub upgrades WebSocket connections, forwards broker messages to them and
// applies control messages they send to the clock.
type Hub struct {
	broker   *Broker
	ctrl     Controller
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub builds a hub. An empty allowedOrigins accepts any origin.
func NewHub(b *Broker, ctrl Controller, allowedOrigins []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		broker: b,
		ctrl:   ctrl,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 || allowed["*"] {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	sub  chan Message
	// replies carries control acknowledgements for this client only.
	replies chan Message
	done    chan struct{}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		sub:     h.broker.Subscribe("websocket"),
		replies: make(chan Message, 8),
		done:    make(chan struct{}),
	}
	h.logger.Info("websocket client connected", zap.String("client_id", c.id))

	if st, err := json.Marshal(h.ctrl.State()); err == nil {
		c.replies <- Message{Type: EventState, Data: st}
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		close(c.done)
		h.broker.Unsubscribe(c.sub)
		h.logger.Info("websocket client disconnected", zap.String("client_id", c.id))
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
		var msg ControlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(c, errorMessage(err, h.ctrl.State()))
			continue
		}
		h.reply(c, msg)
	}
}

func (h *Hub) reply(c *client, msg ControlMessage) {
	st, err := Apply(h.ctrl, msg)
	if err != nil {
		h.logger.Info("control message rejected",
			zap.String("client_id", c.id), zap.String("action", msg.Action), zap.Error(err))
		h.send(c, errorMessage(err, st))
		return
	}
	data, _ := json.Marshal(st)
	h.send(c, Message{Type: EventState, Data: data})
}

func (h *Hub) send(c *client, m Message) {
	select {
	case c.replies <- m:
	default:
	}
}

func errorMessage(err error, st simulation.ClockState) Message {
	data, _ := json.Marshal(map[string]any{"message": err.Error(), "state": st})
	return Message{Type: EventError, Data: data}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var msg Message
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case m, ok := <-c.sub:
			if !ok {
				return
			}
			msg = m
		case m := <-c.replies:
			msg = m
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
