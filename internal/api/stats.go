package api

import (
	"net/http"

	"trailview/pkg/tracker"
)

// RunCounter reports how many playback sessions have been started.
type RunCounter interface {
	Runs() int
}

// StatsResponse summarizes pipeline counters.
type StatsResponse struct {
	Components map[string]tracker.ComponentStats `json:"components"`
	Clients    int                               `json:"clients"`
	Runs       int                               `json:"runs"`
}

// StatsHandler serves the component counters.
type StatsHandler struct {
	tracker *tracker.Tracker
	stream  *StreamHub
	runs    RunCounter
}

func NewStatsHandler(t *tracker.Tracker, stream *StreamHub, runs RunCounter) *StatsHandler {
	return &StatsHandler{tracker: t, stream: stream, runs: runs}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Components: h.tracker.Snapshot()}
	if h.stream != nil {
		resp.Clients = h.stream.Clients()
	}
	if h.runs != nil {
		resp.Runs = h.runs.Runs()
	}
	writeJSON(w, resp, "stats")
}
