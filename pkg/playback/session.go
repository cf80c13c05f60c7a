// Package playback replays a sample store one sample per tick.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"trailview/pkg/logging"
	"trailview/pkg/model"
	"trailview/pkg/timeutil"
)

// DefaultInterval is the time between two appended samples.
const DefaultInterval = 100 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a session that has left Idle.
var ErrAlreadyStarted = errors.New("playback: session already started")

// State is the lifecycle state of a session.
type State string

const (
	// StateIdle is the state between construction and Start.
	StateIdle State = "idle"
	// StateRunning indicates the ticker is appending samples.
	StateRunning State = "running"
	// StateStopped is terminal: the store is exhausted or the session was cancelled.
	StateStopped State = "stopped"
)

// Snapshot is a consistent view of a session.
// Visible is always the first Cursor samples of the store.
type Snapshot struct {
	Visible []model.Sample `json:"samples"`
	Cursor  int            `json:"cursor"`
	Total   int            `json:"total"`
	State   State          `json:"state"`
}

// Current returns the newest visible sample.
func (s Snapshot) Current() (model.Sample, bool) {
	if len(s.Visible) == 0 {
		return model.Sample{}, false
	}
	return s.Visible[len(s.Visible)-1], true
}

// Sink receives a snapshot after every appended sample.
// Sinks are called one after another on the session goroutine and must treat
// the snapshot as read-only. A sink must not call Stop on its own session.
type Sink interface {
	OnFrame(snap Snapshot)
}

// StopSink is implemented by sinks that want to know when a session reaches Stopped.
type StopSink interface {
	OnStop(snap Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

// OnFrame implements Sink.
func (f SinkFunc) OnFrame(snap Snapshot) { f(snap) }

// Option configures a Session.
type Option func(*Session)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock sets the clock that provides the ticker.
func WithClock(c timeutil.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithSinks registers frame consumers in call order.
func WithSinks(sinks ...Sink) Option {
	return func(s *Session) { s.sinks = append(s.sinks, sinks...) }
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session owns the playback cursor and visible sequence of one replay.
type Session struct {
	mu      sync.RWMutex
	store   []model.Sample
	visible []model.Sample
	cursor  int
	state   State

	interval time.Duration
	clock    timeutil.Clock
	sinks    []Sink
	logger   *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// NewSession creates an Idle session over samples. The slice must not be modified afterwards.
func NewSession(samples []model.Sample, opts ...Option) *Session {
	s := &Session{
		store:    samples,
		visible:  make([]model.Sample, 0, len(samples)),
		state:    StateIdle,
		interval: DefaultInterval,
		clock:    timeutil.RealClock{},
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start moves the session from Idle to Running and begins ticking.
// Cancelling ctx has the same effect as Stop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateRunning
	ticker := s.clock.NewTicker(s.interval)
	s.mu.Unlock()

	s.logger.Info("Playback started", "samples", len(s.store), "interval", s.interval)

	go s.loop(ctx, ticker)
	return nil
}

func (s *Session) loop(ctx context.Context, ticker timeutil.Ticker) {
	defer s.closeDone()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish("Playback cancelled")
			return
		case <-s.stopCh:
			s.finish("Playback stopped")
			return
		case <-ticker.C():
			if !s.tick() {
				s.finish("Playback finished")
				return
			}
		}
	}
}

// tick appends the next sample and notifies sinks. It reports false once the store is exhausted.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.cursor >= len(s.store) {
		s.mu.Unlock()
		return false
	}
	s.visible = append(s.visible, s.store[s.cursor])
	s.cursor++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	logging.Trace(s.logger, "Playback tick", "cursor", snap.Cursor, "total", snap.Total)

	for _, sink := range s.sinks {
		sink.OnFrame(snap)
	}
	return true
}

func (s *Session) finish(msg string) {
	s.mu.Lock()
	s.state = StateStopped
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info(msg, "cursor", snap.Cursor, "total", snap.Total)

	for _, sink := range s.sinks {
		if ss, ok := sink.(StopSink); ok {
			ss.OnStop(snap)
		}
	}
}

// Stop cancels the session and waits for the ticking goroutine to exit.
// It is safe to call more than once and on a session that was never started.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateStopped
		s.mu.Unlock()
		s.closeDone()
		return
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.done
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed when the session reaches Stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns a copy of the current visible sequence and cursor.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	visible := make([]model.Sample, len(s.visible))
	copy(visible, s.visible)
	return Snapshot{
		Visible: visible,
		Cursor:  s.cursor,
		Total:   len(s.store),
		State:   s.state,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Interval returns the tick period.
func (s *Session) Interval() time.Duration {
	return s.interval
}
