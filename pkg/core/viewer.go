// Package core wires a sample store to the playback sessions that replay it.
package core

import (
	"context"
	"log/slog"
	"sync"

	"trailview/pkg/model"
	"trailview/pkg/playback"
)

// Viewer owns the active playback session of the running application.
// Activating the view starts a fresh session, deactivating it cancels the session.
type Viewer struct {
	mu      sync.Mutex
	samples []model.Sample
	opts    []playback.Option
	sinks   []playback.Sink
	resets  []SessionResettable
	session *playback.Session
	runs    int
}

// NewViewer creates a viewer over an immutable sample store.
// opts are applied to every session it creates.
func NewViewer(samples []model.Sample, opts ...playback.Option) *Viewer {
	if samples == nil {
		samples = []model.Sample{}
	}
	return &Viewer{
		samples: samples,
		opts:    opts,
	}
}

// AddSink registers a frame consumer for sessions activated after this call.
func (v *Viewer) AddSink(s playback.Sink) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sinks = append(v.sinks, s)
}

// AddResettable registers a component cleared on every activation.
func (v *Viewer) AddResettable(r SessionResettable) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets = append(v.resets, r)
}

// Activate stops any running session, resets per-session state and starts a new
// session from the beginning of the store.
func (v *Viewer) Activate(ctx context.Context) (*playback.Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.session != nil {
		v.session.Stop()
	}
	for _, r := range v.resets {
		r.ResetSession(ctx)
	}

	opts := make([]playback.Option, 0, len(v.opts)+1)
	opts = append(opts, v.opts...)
	opts = append(opts, playback.WithSinks(v.sinks...))

	s := playback.NewSession(v.samples, opts...)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	v.session = s
	v.runs++

	slog.Debug("Viewer activated", "run", v.runs, "samples", len(v.samples))
	return s, nil
}

// Deactivate cancels the active session, if any.
func (v *Viewer) Deactivate() {
	v.mu.Lock()
	s := v.session
	v.mu.Unlock()

	if s != nil {
		s.Stop()
	}
}

// Session returns the active session or nil before the first activation.
func (v *Viewer) Session() *playback.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session
}

// Snapshot returns the active session's snapshot, or an Idle snapshot before activation.
func (v *Viewer) Snapshot() playback.Snapshot {
	s := v.Session()
	if s == nil {
		return playback.Snapshot{
			Visible: []model.Sample{},
			Total:   len(v.samples),
			State:   playback.StateIdle,
		}
	}
	return s.Snapshot()
}

// Runs returns the number of sessions activated so far.
func (v *Viewer) Runs() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.runs
}
