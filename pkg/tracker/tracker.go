// Package tracker counts what each pipeline component accepted, dropped and failed.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Component names used by the application.
const (
	ComponentSource   = "source"
	ComponentPlayback = "playback"
	ComponentStream   = "stream"
)

// Tracker tracks counters per component.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ComponentStats
}

// ComponentStats holds the counters of one component.
// Fields are accessed atomically.
type ComponentStats struct {
	Accepted int64 `json:"accepted"`
	Dropped  int64 `json:"dropped"`
	Failures int64 `json:"failures"`
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ComponentStats),
	}
}

// getStats returns the stats object for a component, creating it if needed.
func (t *Tracker) getStats(component string) *ComponentStats {
	t.mu.RLock()
	s, ok := t.stats[component]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[component]; ok {
		return s
	}
	s = &ComponentStats{}
	t.stats[component] = s
	return s
}

// TrackAccepted adds n accepted items (loaded samples, delivered frames).
func (t *Tracker) TrackAccepted(component string, n int) {
	atomic.AddInt64(&t.getStats(component).Accepted, int64(n))
}

// TrackDropped adds n discarded items (rejected rows, frames lost to slow clients).
func (t *Tracker) TrackDropped(component string, n int) {
	atomic.AddInt64(&t.getStats(component).Dropped, int64(n))
}

func (t *Tracker) TrackFailure(component string) {
	atomic.AddInt64(&t.getStats(component).Failures, 1)
}

// Get returns a copy of one component's counters.
func (t *Tracker) Get(component string) ComponentStats {
	t.mu.RLock()
	s, ok := t.stats[component]
	t.mu.RUnlock()
	if !ok {
		return ComponentStats{}
	}
	return load(s)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ComponentStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ComponentStats, len(t.stats))
	for k, v := range t.stats {
		result[k] = load(v)
	}
	return result
}

// Reset clears the counters of the given component.
func (t *Tracker) Reset(component string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.stats, component)
}

func load(s *ComponentStats) ComponentStats {
	return ComponentStats{
		Accepted: atomic.LoadInt64(&s.Accepted),
		Dropped:  atomic.LoadInt64(&s.Dropped),
		Failures: atomic.LoadInt64(&s.Failures),
	}
}
