package geom

import (
	"math"
	"testing"

	"trailview/pkg/model"
)

func TestHeading(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"PlusX", 1, 0, 0},
		{"Diagonal", 1, 1, 45},
		{"PlusY", 0, 1, 90},
		{"MinusX", -1, 0, 180},
		{"MinusXNegZeroY", -1, math.Copysign(0, -1), 180},
		{"MinusY", 0, -1, 270},
		{"FourthQuadrant", 1, -1, 315},
		{"Origin", 0, 0, 0},
		{"NegativeZeroOrigin", math.Copysign(0, -1), math.Copysign(0, -1), 0},
		{"PlusXNegZeroY", 1, math.Copysign(0, -1), 0},
		{"TinyNegativeY", 1, -1e-300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Heading(tt.x, tt.y)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Heading(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
			if got < 0 || got >= 360 || math.Signbit(got) {
				t.Errorf("Heading(%v, %v) = %v out of [0, 360)", tt.x, tt.y, got)
			}
		})
	}
}

func TestHeading_Range(t *testing.T) {
	for deg := -720.0; deg <= 720; deg += 7.5 {
		rad := deg * math.Pi / 180
		got := Heading(math.Cos(rad), math.Sin(rad))
		if got < 0 || got >= 360 {
			t.Fatalf("Heading at %v° = %v, out of range", deg, got)
		}
	}
}

func TestCurrentHeading(t *testing.T) {
	if _, ok := CurrentHeading(nil); ok {
		t.Error("expected no heading for empty sequence")
	}
	if _, ok := CurrentHeading([]model.Sample{}); ok {
		t.Error("expected no heading for empty sequence")
	}

	visible := []model.Sample{
		model.NewSample(0, 1, 0, 0),
		model.NewSample(0.1, -1, 0, 5),
	}
	h, ok := CurrentHeading(visible)
	if !ok {
		t.Fatal("expected heading")
	}
	if math.Abs(h-180) > 1e-9 {
		t.Errorf("CurrentHeading() = %v, want 180 (newest sample)", h)
	}
}
