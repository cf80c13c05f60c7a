package api

import (
	"context"
	"log/slog"
	"net/http"

	"trailview/pkg/playback"
)

// Activator starts a fresh playback session.
type Activator interface {
	Activate(ctx context.Context) (*playback.Session, error)
}

// PlaybackHandler restarts playback on request.
type PlaybackHandler struct {
	// ctx outlives the request: sessions keep running after the response is sent.
	ctx    context.Context
	viewer Activator
}

func NewPlaybackHandler(ctx context.Context, v Activator) *PlaybackHandler {
	return &PlaybackHandler{ctx: ctx, viewer: v}
}

func (h *PlaybackHandler) handleRestart(w http.ResponseWriter, r *http.Request) {
	s, err := h.viewer.Activate(h.ctx)
	if err != nil {
		slog.Error("Failed to restart playback", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("Playback restarted via API")
	writeJSON(w, s.Snapshot(), "playback")
}
