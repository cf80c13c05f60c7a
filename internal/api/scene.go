package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/render"
	"trailview/pkg/scene"
)

// SceneResponse lists every entity of the scene, static ones first.
type SceneResponse struct {
	Entities []scene.Entity `json:"entities"`
	Frames   int            `json:"frames"`
}

// SceneHandler serves the scene as JSON and as rendered views.
type SceneHandler struct {
	scene *scene.Scene
}

func NewSceneHandler(sc *scene.Scene) *SceneHandler {
	return &SceneHandler{scene: sc}
}

func (h *SceneHandler) handleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SceneResponse{
		Entities: h.scene.Entities(),
		Frames:   h.scene.Frames(),
	}, "scene")
}

// handleChart renders the interactive 3D view. The page is buffered so a render
// failure can still be reported with a proper status.
func (h *SceneHandler) handleChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.Chart(&buf, h.scene.Entities()); err != nil {
		slog.Error("Failed to render scene chart", "error", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Failed to write scene chart", "error", err)
	}
}

func (h *SceneHandler) handleTopDown(w http.ResponseWriter, r *http.Request) {
	dots := h.scene.TrailEntities()
	trail := make([]r3.Vec, len(dots))
	for i, e := range dots {
		trail[i] = e.Position
	}

	var buf bytes.Buffer
	if err := render.TopDownPNG(&buf, trail); err != nil {
		slog.Error("Failed to render top-down view", "error", err)
		http.Error(w, "failed to render image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Failed to write top-down view", "error", err)
	}
}
