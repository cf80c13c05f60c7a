// Package geom derives headings from recorded positions.
package geom

import (
	"math"

	"trailview/pkg/model"
)

// Heading returns the direction of the vector (x, y) in degrees, in [0, 360).
// 0° is the +X axis and angles grow counter-clockwise towards +Y.
// The zero vector has heading 0.
func Heading(x, y float64) float64 {
	deg := math.Atan2(y, x) * (180.0 / math.Pi)
	if deg < 0 {
		deg += 360
	}
	// -0 and rounding up to exactly 360 both fold back to 0.
	if deg == 0 || deg >= 360 {
		return 0
	}
	return deg
}

// CurrentHeading returns the heading of the newest visible sample.
// It reports false when nothing has been played yet.
func CurrentHeading(visible []model.Sample) (float64, bool) {
	if len(visible) == 0 {
		return 0, false
	}
	last := visible[len(visible)-1]
	return Heading(last.X, last.Y), true
}
