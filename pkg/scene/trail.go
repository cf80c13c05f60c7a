package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/model"
)

const (
	// TrailLimit is the number of most recent samples drawn as trail dots.
	TrailLimit = 100
	// OriginEpsilon suppresses dots that would sit on the origin marker.
	OriginEpsilon = 0.01
)

// Window returns the last min(TrailLimit, len(visible)) samples.
func Window(visible []model.Sample) []model.Sample {
	if len(visible) > TrailLimit {
		return visible[len(visible)-TrailLimit:]
	}
	return visible
}

// Trail returns the window's positions relative to the newest sample, oldest first.
// Offsets within OriginEpsilon of the origin on every axis are skipped, which always
// includes the newest sample itself.
func Trail(visible []model.Sample) []r3.Vec {
	if len(visible) == 0 {
		return nil
	}
	current := visible[len(visible)-1].Position()

	window := Window(visible)
	offsets := make([]r3.Vec, 0, len(window))
	for _, s := range window {
		rel := r3.Sub(s.Position(), current)
		if nearOrigin(rel) {
			continue
		}
		offsets = append(offsets, rel)
	}
	return offsets
}

func nearOrigin(v r3.Vec) bool {
	return math.Abs(v.X) < OriginEpsilon &&
		math.Abs(v.Y) < OriginEpsilon &&
		math.Abs(v.Z) < OriginEpsilon
}

// Extent returns the largest absolute coordinate among offsets, or 0 when empty.
// Renderers use it to size symmetric axes.
func Extent(offsets []r3.Vec) float64 {
	var ext float64
	for _, v := range offsets {
		ext = math.Max(ext, math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z))))
	}
	return ext
}
