package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/model"
	"trailview/pkg/playback"
	"trailview/pkg/tracker"
)

func TestNewStreamFrame(t *testing.T) {
	a := model.NewSample(0, 0, 0, 0)
	b := model.NewSample(0.1, 0, 2, 1)

	tests := []struct {
		name        string
		snap        playback.Snapshot
		wantSample  *model.Sample
		wantHeading *float64
		wantText    string
		wantTrail   []r3.Vec
	}{
		{
			name:      "Idle",
			snap:      playback.Snapshot{Total: 2, State: playback.StateIdle},
			wantText:  "--",
			wantTrail: []r3.Vec{},
		},
		{
			name:        "SingleSample",
			snap:        playback.Snapshot{Visible: []model.Sample{a}, Cursor: 1, Total: 2, State: playback.StateRunning},
			wantSample:  &a,
			wantHeading: ptr(0.0),
			wantText:    "0.0°",
			wantTrail:   []r3.Vec{},
		},
		{
			name:        "TwoSamples",
			snap:        playback.Snapshot{Visible: []model.Sample{a, b}, Cursor: 2, Total: 2, State: playback.StateStopped},
			wantSample:  &b,
			wantHeading: ptr(90.0),
			wantText:    "90.0°",
			wantTrail:   []r3.Vec{{X: 0, Y: -2, Z: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewStreamFrame(tt.snap)

			assert.Equal(t, tt.snap.Cursor, f.Cursor)
			assert.Equal(t, tt.snap.Total, f.Total)
			assert.Equal(t, tt.snap.State, f.State)
			assert.Equal(t, tt.wantText, f.HeadingText)
			if diff := cmp.Diff(tt.wantSample, f.Sample); diff != "" {
				t.Errorf("sample mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantHeading, f.Heading); diff != "" {
				t.Errorf("heading mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantTrail, f.Trail); diff != "" {
				t.Errorf("trail mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func dialStream(t *testing.T, hub *StreamHub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) StreamFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f StreamFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestStreamHub_Broadcast(t *testing.T) {
	hub := NewStreamHub(0, nil)
	conn := dialStream(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	s := model.NewSample(0, 3, 0, 0)
	hub.OnFrame(playback.Snapshot{Visible: []model.Sample{s}, Cursor: 1, Total: 1, State: playback.StateRunning})
	hub.OnStop(playback.Snapshot{Visible: []model.Sample{s}, Cursor: 1, Total: 1, State: playback.StateStopped})

	first := readFrame(t, conn)
	assert.Equal(t, 1, first.Cursor)
	assert.Equal(t, playback.StateRunning, first.State)
	require.NotNil(t, first.Sample)
	assert.Equal(t, s.ID, first.Sample.ID)

	last := readFrame(t, conn)
	assert.Equal(t, playback.StateStopped, last.State)
}

func TestStreamHub_LateClientGetsLastFrame(t *testing.T) {
	hub := NewStreamHub(0, nil)
	hub.OnFrame(playback.Snapshot{
		Visible: []model.Sample{model.NewSample(0, 1, 1, 0)},
		Cursor:  1,
		Total:   5,
		State:   playback.StateRunning,
	})

	conn := dialStream(t, hub)
	f := readFrame(t, conn)
	assert.Equal(t, 1, f.Cursor)
	assert.Equal(t, "45.0°", f.HeadingText)
}

func TestStreamHub_ResetForgetsLastFrame(t *testing.T) {
	hub := NewStreamHub(0, nil)
	hub.OnFrame(playback.Snapshot{Cursor: 3, Total: 5, State: playback.StateRunning})
	hub.ResetSession(context.Background())

	c := &streamClient{send: make(chan []byte, 1)}
	hub.register(c)
	assert.Empty(t, c.send)
}

func TestStreamHub_DropsWhenClientIsBehind(t *testing.T) {
	hub := NewStreamHub(2, nil)

	// A client without a writer never drains its queue.
	c := &streamClient{send: make(chan []byte, 2)}
	hub.register(c)

	for i := 1; i <= 5; i++ {
		hub.OnFrame(playback.Snapshot{Cursor: i, Total: 5, State: playback.StateRunning})
	}

	assert.Len(t, c.send, 2)
	assert.Equal(t, int64(3), hub.Dropped())
	assert.Equal(t, int64(2), hub.tracker.Get(tracker.ComponentStream).Accepted)

	hub.unregister(c)
	assert.Equal(t, 0, hub.Clients())
	hub.unregister(c)
}

func TestStreamHub_Close(t *testing.T) {
	hub := NewStreamHub(0, nil)
	conn := dialStream(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	// Frames after Close reach nobody.
	hub.OnFrame(playback.Snapshot{Cursor: 1, Total: 1})
	assert.Equal(t, int64(0), hub.Dropped())
}
