package model

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one timestamped 3D position reading from a recording.
type Sample struct {
	// ID identifies the value for list diffing in rendering layers. It carries no domain meaning.
	ID   uuid.UUID `json:"id"`
	Time float64   `json:"time"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Z    float64   `json:"z"`
}

// NewSample creates a sample with a fresh identity.
func NewSample(t, x, y, z float64) Sample {
	return Sample{
		ID:   uuid.New(),
		Time: t,
		X:    x,
		Y:    y,
		Z:    z,
	}
}

// Position returns the sample position as a vector.
func (s Sample) Position() r3.Vec {
	return r3.Vec{X: s.X, Y: s.Y, Z: s.Z}
}
