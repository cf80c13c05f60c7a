// Package display formats playback state for people: the heading readout and
// telemetry table rows, plus a terminal console that shows both.
package display

import (
	"fmt"

	"trailview/pkg/geom"
	"trailview/pkg/model"
)

// NoHeading is shown before the first sample has been played.
const NoHeading = "--"

// FormatHeading renders a heading with one decimal and a degree sign.
func FormatHeading(deg float64, ok bool) string {
	if !ok {
		return NoHeading
	}
	return fmt.Sprintf("%.1f°", deg)
}

// HeadingText is the heading readout for a visible sequence.
func HeadingText(visible []model.Sample) string {
	return FormatHeading(geom.CurrentHeading(visible))
}

// FormatRow renders one telemetry table row.
func FormatRow(s model.Sample) string {
	return fmt.Sprintf("t:%6.1f  x:%7.2f  y:%7.2f  z:%7.2f", s.Time, s.X, s.Y, s.Z)
}
