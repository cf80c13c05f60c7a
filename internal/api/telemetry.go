package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"trailview/pkg/display"
	"trailview/pkg/geom"
	"trailview/pkg/playback"
)

// SnapshotSource provides the state of the active playback session.
type SnapshotSource interface {
	Snapshot() playback.Snapshot
}

// HeadingResponse is the heading readout. Heading is null before the first sample.
type HeadingResponse struct {
	Heading *float64 `json:"heading"`
	Text    string   `json:"text"`
}

// TelemetryHandler serves the telemetry table and heading readout.
type TelemetryHandler struct {
	src SnapshotSource
}

func NewTelemetryHandler(src SnapshotSource) *TelemetryHandler {
	return &TelemetryHandler{src: src}
}

func (h *TelemetryHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.src.Snapshot(), "telemetry")
}

func (h *TelemetryHandler) handleHeading(w http.ResponseWriter, r *http.Request) {
	snap := h.src.Snapshot()
	writeJSON(w, headingResponse(snap), "heading")
}

func headingResponse(snap playback.Snapshot) HeadingResponse {
	deg, ok := geom.CurrentHeading(snap.Visible)
	resp := HeadingResponse{Text: display.FormatHeading(deg, ok)}
	if ok {
		resp.Heading = &deg
	}
	return resp
}

func writeJSON(w http.ResponseWriter, v any, what string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "endpoint", what, "error", err)
	}
}
