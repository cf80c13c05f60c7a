// Package scene keeps the 3D scene state shown to the user: static geometry
// created once and a tagged set of trail dots replaced on every frame.
package scene

import (
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/model"
	"trailview/pkg/playback"
)

// TagTrail marks the ephemeral trail dots.
const TagTrail = "trailDot"

// Geometry constants of the static scene.
const (
	AxisLength   = 10.0
	AxisRadius   = 0.03
	MarkerRadius = 0.2
	DotRadius    = 0.1

	// MarkerName names the origin marker standing for the current sample.
	MarkerName = "centerNode"
)

// Colors used by the scene.
const (
	ColorRed   = "#ff0000"
	ColorGreen = "#00ff00"
	ColorBlue  = "#0000ff"
	ColorBlack = "#000000"
	ColorWhite = "#ffffff"
)

// Kind is the type of a scene entity.
type Kind string

const (
	KindCamera Kind = "camera"
	KindLight  Kind = "light"
	KindAxis   Kind = "axis"
	KindSphere Kind = "sphere"
)

// Entity is one node of the scene.
type Entity struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name,omitempty"`
	Tag      string    `json:"tag,omitempty"`
	Kind     Kind      `json:"kind"`
	Position r3.Vec    `json:"position"`
	// Direction is the look-at target for cameras and the unit direction for axes.
	Direction r3.Vec  `json:"direction"`
	Length    float64 `json:"length,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Diff describes one trail replacement.
type Diff struct {
	Removed []uuid.UUID `json:"removed"`
	Added   []Entity    `json:"added"`
}

// Empty reports whether the diff changed nothing.
func (d Diff) Empty() bool {
	return len(d.Removed) == 0 && len(d.Added) == 0
}

// Scene holds the entity set. It is safe for concurrent use: Update runs on the playback
// goroutine while renderers read copies.
type Scene struct {
	mu       sync.RWMutex
	entities []Entity
	frames   int
}

// New creates a scene holding only the static entities.
func New() *Scene {
	return &Scene{entities: staticEntities()}
}

func staticEntities() []Entity {
	axis := func(name string, dir r3.Vec, color string) Entity {
		return Entity{
			ID:        uuid.New(),
			Name:      name,
			Kind:      KindAxis,
			Direction: dir,
			Length:    AxisLength,
			Radius:    AxisRadius,
			Color:     color,
		}
	}

	return []Entity{
		{
			ID:        uuid.New(),
			Name:      "camera",
			Kind:      KindCamera,
			Position:  r3.Vec{X: 10, Y: 10, Z: 20},
			Direction: r3.Vec{},
		},
		{ID: uuid.New(), Name: "ambient", Kind: KindLight, Color: ColorWhite},
		axis("xAxis", r3.Vec{X: 1}, ColorRed),
		axis("yAxis", r3.Vec{Y: 1}, ColorGreen),
		axis("zAxis", r3.Vec{Z: 1}, ColorBlue),
		{
			ID:     uuid.New(),
			Name:   MarkerName,
			Kind:   KindSphere,
			Radius: MarkerRadius,
			Color:  ColorBlack,
		},
	}
}

// Update replaces all trail dots with the trail of visible.
// An empty sequence leaves the scene untouched.
func (s *Scene) Update(visible []model.Sample) Diff {
	if len(visible) == 0 {
		return Diff{}
	}

	offsets := Trail(visible)
	added := make([]Entity, len(offsets))
	for i, off := range offsets {
		added[i] = Entity{
			ID:       uuid.New(),
			Tag:      TagTrail,
			Kind:     KindSphere,
			Position: off,
			Radius:   DotRadius,
			Color:    ColorRed,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeTaggedLocked(TagTrail)
	s.entities = append(s.entities, added...)
	s.frames++

	return Diff{Removed: removed, Added: added}
}

// Reset removes the trail dots, keeping the static entities.
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeTaggedLocked(TagTrail)
	s.frames = 0
}

func (s *Scene) removeTaggedLocked(tag string) []uuid.UUID {
	removed := make([]uuid.UUID, 0)
	kept := s.entities[:0]
	for _, e := range s.entities {
		if e.Tag == tag {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	// Clear the tail so dropped entities are not retained by the backing array.
	clear(s.entities[len(kept):])
	s.entities = kept
	return removed
}

// Entities returns a copy of all entities, static ones first.
func (s *Scene) Entities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// TrailEntities returns a copy of the trail dots.
func (s *Scene) TrailEntities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if e.Tag == TagTrail {
			out = append(out, e)
		}
	}
	return out
}

// Frames returns the number of updates applied since creation or the last Reset.
func (s *Scene) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// OnFrame implements playback.Sink.
func (s *Scene) OnFrame(snap playback.Snapshot) {
	s.Update(snap.Visible)
}

var _ playback.Sink = (*Scene)(nil)
