package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/model"
	"trailview/pkg/scene"
)

func populatedScene() *scene.Scene {
	s := scene.New()
	s.Update([]model.Sample{
		model.NewSample(0, 0, 0, 0),
		model.NewSample(1, 3, 4, 1),
		model.NewSample(2, 6, 8, 2),
	})
	return s
}

func TestChart(t *testing.T) {
	tests := []struct {
		name     string
		entities []scene.Entity
		want     []string
	}{
		{
			name:     "StaticOnly",
			entities: scene.New().Entities(),
			want:     []string{"<html", "scatter3D", "0 trail points", "xAxis+"},
		},
		{
			name:     "WithTrail",
			entities: populatedScene().Entities(),
			want:     []string{"scatter3D", "2 trail points", "#ff0000", "#000000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Chart(&buf, tt.entities); err != nil {
				t.Fatalf("Chart() error: %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("chart output missing %q", w)
				}
			}
		})
	}
}

func TestTopDownPNG(t *testing.T) {
	tests := []struct {
		name  string
		trail []r3.Vec
	}{
		{"Empty", nil},
		{"Trail", scene.Trail(populatedSamples())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TopDownPNG(&buf, tt.trail); err != nil {
				t.Fatalf("TopDownPNG() error: %v", err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() == 0 || b.Dx() != b.Dy() {
				t.Errorf("expected a square image, got %v", b)
			}
		})
	}
}

func populatedSamples() []model.Sample {
	return []model.Sample{
		model.NewSample(0, -20, 5, 0),
		model.NewSample(1, 0, 0, 0),
	}
}
