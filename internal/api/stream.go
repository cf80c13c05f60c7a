package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/display"
	"trailview/pkg/geom"
	"trailview/pkg/model"
	"trailview/pkg/playback"
	"trailview/pkg/scene"
	"trailview/pkg/tracker"
)

const (
	// DefaultStreamBuffer is the number of frames queued per client before frames are dropped.
	DefaultStreamBuffer = 16

	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamFrame is pushed to every websocket client after each tick and once more when
// the session stops. Heading and Sample are null before the first sample.
type StreamFrame struct {
	Cursor      int            `json:"cursor"`
	Total       int            `json:"total"`
	State       playback.State `json:"state"`
	Sample      *model.Sample  `json:"sample"`
	Heading     *float64       `json:"heading"`
	HeadingText string         `json:"headingText"`
	Trail       []r3.Vec       `json:"trail"`
}

// NewStreamFrame builds the frame for a snapshot.
func NewStreamFrame(snap playback.Snapshot) StreamFrame {
	f := StreamFrame{
		Cursor: snap.Cursor,
		Total:  snap.Total,
		State:  snap.State,
		Trail:  scene.Trail(snap.Visible),
	}
	if f.Trail == nil {
		f.Trail = []r3.Vec{}
	}
	if cur, ok := snap.Current(); ok {
		f.Sample = &cur
	}
	deg, ok := geom.CurrentHeading(snap.Visible)
	if ok {
		f.Heading = &deg
	}
	f.HeadingText = display.FormatHeading(deg, ok)
	return f
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.send) })
}

// StreamHub fans playback frames out to websocket clients.
// A client that cannot keep up loses frames rather than slowing down playback.
type StreamHub struct {
	mu       sync.Mutex
	clients  map[*streamClient]struct{}
	last     []byte
	buffer   int
	upgrader websocket.Upgrader
	tracker  *tracker.Tracker
}

// NewStreamHub creates a hub with a per-client queue of buffer frames
// (DefaultStreamBuffer when buffer <= 0). Delivered and dropped frames are
// counted in tr under tracker.ComponentStream; tr may be nil.
func NewStreamHub(buffer int, tr *tracker.Tracker) *StreamHub {
	if buffer <= 0 {
		buffer = DefaultStreamBuffer
	}
	if tr == nil {
		tr = tracker.New()
	}
	return &StreamHub{
		clients: make(map[*streamClient]struct{}),
		buffer:  buffer,
		tracker: tr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// OnFrame implements playback.Sink.
func (h *StreamHub) OnFrame(snap playback.Snapshot) {
	h.broadcast(NewStreamFrame(snap))
}

// OnStop implements playback.StopSink.
func (h *StreamHub) OnStop(snap playback.Snapshot) {
	h.broadcast(NewStreamFrame(snap))
}

// ResetSession forgets the last frame so new clients do not see the previous run.
func (h *StreamHub) ResetSession(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = nil
}

func (h *StreamHub) broadcast(f StreamFrame) {
	data, err := json.Marshal(f)
	if err != nil {
		slog.Error("Failed to encode stream frame", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
			h.tracker.TrackAccepted(tracker.ComponentStream, 1)
		default:
			h.tracker.TrackDropped(tracker.ComponentStream, 1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of frames discarded for slow clients.
func (h *StreamHub) Dropped() int64 {
	return h.tracker.Get(tracker.ComponentStream).Dropped
}

func (h *StreamHub) register(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
}

func (h *StreamHub) unregister(c *streamClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// Close disconnects every client.
func (h *StreamHub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*streamClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// ServeHTTP upgrades the request and streams frames until the client goes away.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, h.buffer)}
	h.register(c)
	slog.Debug("Stream client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop only handles control frames; it ends when the peer disconnects.
func (h *StreamHub) readLoop(c *streamClient) {
	defer func() {
		h.unregister(c)
		slog.Debug("Stream client disconnected", "clients", h.Clients())
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) writeLoop(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.tracker.TrackFailure(tracker.ComponentStream)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var (
	_ playback.Sink     = (*StreamHub)(nil)
	_ playback.StopSink = (*StreamHub)(nil)
)
