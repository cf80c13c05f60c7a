package core

import (
	"context"
)

// SessionResettable is implemented by components that hold per-session state
// (the scene's trail, stream buffers) and must be cleared when a new session starts.
type SessionResettable interface {
	ResetSession(ctx context.Context)
}

// ResetFunc adapts a function to SessionResettable.
type ResetFunc func(ctx context.Context)

// ResetSession implements SessionResettable.
func (f ResetFunc) ResetSession(ctx context.Context) { f(ctx) }
