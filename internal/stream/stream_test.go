package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClock(t *testing.T) (*simulation.Store, *simulation.Clock) {
	t.Helper()
	series := []model.PowerLoadEntry{{Timestamp: 0, Value: 1}, {Timestamp: 3600, Value: 2}}
	store := simulation.NewStore(24 * time.Hour)
	store.Init(data.Prepare(series, append([]model.PowerLoadEntry(nil), series...)), 3600*1000)
	return store, simulation.NewClock(store, simulation.ClockOptions{}, nil, nil)
}

func TestBrokerFanOutAndUnsubscribe(t *testing.T) {
	b := NewBroker(nil)
	a := b.Subscribe("sse")
	c := b.Subscribe("websocket")
	assert.Equal(t, 2, b.Clients())

	require.NoError(t, b.Publish(EventState, map[string]int{"n": 1}))
	for _, ch := range []chan Message{a, c} {
		msg := <-ch
		assert.Equal(t, EventState, msg.Type)
		assert.JSONEq(t, `{"n":1}`, string(msg.Data))
	}

	b.Unsubscribe(a)
	b.Unsubscribe(a)
	_, ok := <-a
	assert.False(t, ok)
	assert.Equal(t, 1, b.Clients())
}

func TestBrokerDropsForSlowClient(t *testing.T) {
	b := NewBroker(nil)
	ch := b.Subscribe("sse")
	for i := 0; i < 100; i++ {
		require.NoError(t, b.Publish(EventWindow, i))
	}
	assert.Len(t, ch, cap(ch))
}

func TestNilBroker(t *testing.T) {
	var b *Broker
	assert.Nil(t, b.Subscribe("sse"))
	assert.NoError(t, b.Publish(EventState, 1))
	assert.Zero(t, b.Clients())
}

func TestApply(t *testing.T) {
	_, clock := newClock(t)

	st, err := Apply(clock, ControlMessage{Action: ActionToggle})
	require.NoError(t, err)
	assert.True(t, st.Playing)

	speed := 4.0
	st, err = Apply(clock, ControlMessage{Action: ActionSpeed, Speed: &speed})
	require.NoError(t, err)
	assert.Equal(t, 4.0, st.Speed)

	_, err = Apply(clock, ControlMessage{Action: ActionSpeed})
	assert.ErrorIs(t, err, simulation.ErrInvalidSpeed)

	st, err = Apply(clock, ControlMessage{Action: ActionAdvance, Minutes: 30})
	require.NoError(t, err)
	assert.False(t, st.Playing)
	assert.Equal(t, int64(3600*1000+30*60*1000), st.CurrentTime)

	st, err = Apply(clock, ControlMessage{Action: ActionJump, Time: "2024-07-10T12:00"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC).UnixMilli(), st.CurrentTime)

	_, err = Apply(clock, ControlMessage{Action: ActionJump, Time: "not a date"})
	assert.ErrorIs(t, err, simulation.ErrInvalidTime)

	_, err = Apply(clock, ControlMessage{Action: "rewind"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFeedPublishesWindowAndState(t *testing.T) {
	store, clock := newClock(t)
	b := NewBroker(nil)
	ch := b.Subscribe("sse")
	cancel := Feed(store, clock, b, nil)
	defer cancel()

	clock.AdvanceTime(60)

	win := <-ch
	require.Equal(t, EventWindow, win.Type)
	var u WindowUpdate
	require.NoError(t, json.Unmarshal(win.Data, &u))
	assert.Equal(t, int64(7200*1000), u.CurrentTime)
	assert.Equal(t, 2, u.GridPoints)
	require.NotNil(t, u.LatestGrid)
	assert.Equal(t, 2.0, *u.LatestGrid)

	st := <-ch
	assert.Equal(t, EventState, st.Type)

	cancel()
	clock.AdvanceTime(60)
	assert.Len(t, ch, 0)
}

func TestHubControlOverWebSocket(t *testing.T) {
	_, clock := newClock(t)
	b := NewBroker(nil)
	srv := httptest.NewServer(NewHub(b, clock, nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventState, msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "speed", "speed": 2}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, EventState, msg.Type)
	var st simulation.ClockState
	require.NoError(t, json.Unmarshal(msg.Data, &st))
	assert.Equal(t, 2.0, st.Speed)

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "speed", "speed": 100}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventError, msg.Type)
	assert.Equal(t, 2.0, clock.State().Speed)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventError, msg.Type)

	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, b.Publish(EventWindow, map[string]int{"version": 9}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventWindow, msg.Type)
}
