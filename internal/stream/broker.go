// Package stream pushes simulation updates to browsers over SSE and WebSocket.
package stream

import (
	"encoding/json"
	"sync"

	"energy-traffic-light/internal/metrics"
)

const (
	EventState  = "state"
	EventWindow = "window"
	EventReady  = "ready"
	EventError  = "error"
)

// Message is one event fanned out to every subscriber.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Broker fans out messages to subscribed clients. Slow clients drop messages
// rather than block publishers.
type Broker struct {
	mu      sync.Mutex
	clients map[chan Message]string

	metrics *metrics.Metrics
}

func NewBroker(m *metrics.Metrics) *Broker {
	return &Broker{clients: make(map[chan Message]string), metrics: m}
}

// Subscribe registers a client channel. transport labels the client in metrics.
func (b *Broker) Subscribe(transport string) chan Message {
	if b == nil {
		return nil
	}
	ch := make(chan Message, 16)
	b.mu.Lock()
	b.clients[ch] = transport
	b.mu.Unlock()
	b.metrics.StreamClientDelta(transport, 1)
	return ch
}

func (b *Broker) Unsubscribe(ch chan Message) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	transport, ok := b.clients[ch]
	delete(b.clients, ch)
	b.mu.Unlock()
	if !ok {
		return
	}
	close(ch)
	b.metrics.StreamClientDelta(transport, -1)
}

func (b *Broker) Clients() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Publish marshals v and broadcasts it under eventType.
func (b *Broker) Publish(eventType string, v any) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.broadcast(Message{Type: eventType, Data: data})
	return nil
}

func (b *Broker) broadcast(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}
