package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksim/internal/engine"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeConn satisfies Connection without a network socket.
type fakeConn struct {
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, io.EOF
}
func (f *fakeConn) WriteMessage(int, []byte) error    { return nil }
func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) RemoteAddr() string                { return "test:0" }
func (f *fakeConn) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newFakeConn(), testLogger())
	hub.register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.unregister <- client
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

func TestHubGreetsNewClient(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newFakeConn(), testLogger())
	hub.register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	select {
	case raw := <-client.send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeConnection, msg["type"])
	case <-time.After(2 * time.Second):
		t.Fatal("no greeting received")
	}
}

func TestHubPublishFansOut(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	a := NewClientWithConnection(hub, newFakeConn(), testLogger())
	b := NewClientWithConnection(hub, newFakeConn(), testLogger())
	hub.register <- a
	hub.register <- b
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	// Drain greetings.
	<-a.send
	<-b.send

	hub.Publish(engine.Event{
		Type:         engine.EventSimulationProgress,
		SimulationID: "sim-1",
		Ticker:       "AAPL",
		Phase:        engine.PhaseGeneration,
		Timestamp:    time.Now(),
	})

	for _, client := range []*Client{a, b} {
		select {
		case raw := <-client.send:
			var event engine.Event
			require.NoError(t, json.Unmarshal(raw, &event))
			assert.Equal(t, engine.EventSimulationProgress, event.Type)
			assert.Equal(t, "sim-1", event.SimulationID)
			assert.Equal(t, engine.PhaseGeneration, event.Phase)
		case <-time.After(2 * time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubMetricsSnapshot(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := NewClientWithConnection(hub, newFakeConn(), testLogger())
	hub.register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	m := hub.Metrics()
	assert.Equal(t, 1, m["active_clients"])
	assert.EqualValues(t, 1, m["total_connections"])
}
