package track

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

// Track kinds understood by Spec.
const (
	KindArena    = "arena"
	KindSegments = "segments"
)

// Spec describes a wall-segment track in configuration. Raster tracks are
// built in code with FromImage or a GridBuilder.
type Spec struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// arena
	Margin             float64 `json:"margin,omitempty" yaml:"margin,omitempty"`
	TrackWidth         float64 `json:"track_width,omitempty" yaml:"track_width,omitempty"`
	CheckpointInset    float64 `json:"checkpoint_inset,omitempty" yaml:"checkpoint_inset,omitempty"`
	CheckpointsPerSide int     `json:"checkpoints_per_side,omitempty" yaml:"checkpoints_per_side,omitempty"`
	CheckpointRadius   float64 `json:"checkpoint_radius,omitempty" yaml:"checkpoint_radius,omitempty"`

	// segments
	Walls       [][4]float64     `json:"walls,omitempty" yaml:"walls,omitempty"`
	Checkpoints []CheckpointSpec `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty"`
}

// CheckpointSpec is a circular checkpoint in configuration.
type CheckpointSpec struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Radius float64 `json:"radius" yaml:"radius"`
}

// DefaultSpec is the 900x600 arena with a 40 unit margin, a 100 unit corridor
// and twelve ring positions (eleven checkpoints) 30 units inside the outer
// wall.
func DefaultSpec() Spec {
	return Spec{
		Kind:               KindArena,
		Width:              900,
		Height:             600,
		Margin:             40,
		TrackWidth:         100,
		CheckpointInset:    30,
		CheckpointsPerSide: 3,
		CheckpointRadius:   30,
	}
}

// Validate checks the spec without building it.
func (s Spec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return errors.Wrapf(ErrInvalidBounds, "size %gx%g", s.Width, s.Height)
	}
	switch s.Kind {
	case KindArena:
		if s.Margin < 0 || s.TrackWidth <= 0 {
			return errors.Wrap(ErrInvalidGeometry, "arena margin and track width must be positive")
		}
		if 2*(s.Margin+s.TrackWidth) >= s.Width || 2*(s.Margin+s.TrackWidth) >= s.Height {
			return errors.Wrap(ErrInvalidGeometry, "arena corridor does not fit the world")
		}
		if s.CheckpointsPerSide < 1 || s.CheckpointRadius <= 0 {
			return errors.Wrap(ErrNoCheckpoints, "arena needs checkpoints per side and a radius")
		}
	case KindSegments:
		if len(s.Walls) == 0 {
			return ErrNoGeometry
		}
		if len(s.Checkpoints) == 0 {
			return ErrNoCheckpoints
		}
		for i, cp := range s.Checkpoints {
			if cp.Radius <= 0 {
				return errors.Wrapf(ErrInvalidGeometry, "checkpoint %d radius %g", i, cp.Radius)
			}
		}
	default:
		return errors.Wrapf(ErrUnknownKind, "%q", s.Kind)
	}
	return nil
}

// Build validates the spec and constructs the track.
func (s Spec) Build() (*Track, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Kind {
	case KindArena:
		outer := physics.R(s.Margin, s.Margin, s.Width-s.Margin, s.Height-s.Margin)
		ring := outer.Inset(s.CheckpointInset)
		return New(outer,
			WithWalls(SquareArena(s.Width, s.Height, s.Margin, s.TrackWidth)...),
			WithCheckpoints(RingCheckpoints(ring, s.CheckpointsPerSide, s.CheckpointRadius)...),
		)
	default:
		cps := make([]Checkpoint, len(s.Checkpoints))
		for i, cp := range s.Checkpoints {
			cps[i] = Circle{Position: physics.V(cp.X, cp.Y), Radius: cp.Radius}
		}
		return New(physics.R(0, 0, s.Width, s.Height),
			WithWalls(FromXYXY(s.Walls)...),
			WithCheckpoints(cps...),
		)
	}
}
