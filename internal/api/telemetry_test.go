package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailview/pkg/model"
	"trailview/pkg/playback"
)

type stubSnapshots struct {
	snap playback.Snapshot
}

func (s *stubSnapshots) Snapshot() playback.Snapshot { return s.snap }

func running(samples ...model.Sample) playback.Snapshot {
	return playback.Snapshot{
		Visible: samples,
		Cursor:  len(samples),
		Total:   10,
		State:   playback.StateRunning,
	}
}

func TestTelemetryHandler_HandleTelemetry(t *testing.T) {
	tests := []struct {
		name     string
		snap     playback.Snapshot
		validate func(*testing.T, map[string]any)
	}{
		{
			name: "Success_WithData",
			snap: running(model.NewSample(0, 1, 2, 3), model.NewSample(0.1, 2, 3, 4)),
			validate: func(t *testing.T, got map[string]any) {
				assert.Equal(t, float64(2), got["cursor"])
				assert.Equal(t, float64(10), got["total"])
				assert.Equal(t, "running", got["state"])
				samples := got["samples"].([]any)
				require.Len(t, samples, 2)
				last := samples[1].(map[string]any)
				assert.Equal(t, 0.1, last["time"])
				assert.Equal(t, float64(4), last["z"])
			},
		},
		{
			name: "Success_Idle",
			snap: playback.Snapshot{Visible: []model.Sample{}, Total: 3, State: playback.StateIdle},
			validate: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "idle", got["state"])
				assert.Equal(t, []any{}, got["samples"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTelemetryHandler(&stubSnapshots{snap: tt.snap})

			req := httptest.NewRequest("GET", "/api/telemetry", http.NoBody)
			w := httptest.NewRecorder()
			handler.handleTelemetry(w, req)

			resp := w.Result()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var got map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			tt.validate(t, got)
		})
	}
}

func TestTelemetryHandler_HandleHeading(t *testing.T) {
	tests := []struct {
		name        string
		snap        playback.Snapshot
		wantHeading *float64
		wantText    string
	}{
		{
			name:     "NoSamples",
			snap:     playback.Snapshot{State: playback.StateIdle},
			wantText: "--",
		},
		{
			name:        "North",
			snap:        running(model.NewSample(0, 0, 5, 0)),
			wantHeading: ptr(90.0),
			wantText:    "90.0°",
		},
		{
			name:        "Origin",
			snap:        running(model.NewSample(0, 0, 0, 0)),
			wantHeading: ptr(0.0),
			wantText:    "0.0°",
		},
		{
			name:        "UsesNewestSample",
			snap:        running(model.NewSample(0, 0, 5, 0), model.NewSample(1, -1, 0, 0)),
			wantHeading: ptr(180.0),
			wantText:    "180.0°",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTelemetryHandler(&stubSnapshots{snap: tt.snap})

			w := httptest.NewRecorder()
			handler.handleHeading(w, httptest.NewRequest("GET", "/api/heading", http.NoBody))

			var got HeadingResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.wantText, got.Text)
			if tt.wantHeading == nil {
				assert.Nil(t, got.Heading)
				return
			}
			require.NotNil(t, got.Heading)
			assert.InDelta(t, *tt.wantHeading, *got.Heading, 1e-9)
		})
	}
}

func ptr[T any](v T) *T { return &v }
