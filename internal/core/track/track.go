// Package track holds the immutable world an environment drives in: wall
// segments, an optional classification surface, the ordered checkpoints and
// the world bounds. A Track never changes after New returns and may be shared
// by any number of environments.
package track

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

type Track struct {
	bounds      physics.Rect
	walls       []physics.Segment
	surface     Surface
	checkpoints []Checkpoint
}

// Option configures a Track under construction.
type Option func(*Track)

// WithWalls appends wall segments.
func WithWalls(walls ...physics.Segment) Option {
	return func(t *Track) { t.walls = append(t.walls, walls...) }
}

// WithSurface sets the classification surface.
func WithSurface(s Surface) Option {
	return func(t *Track) { t.surface = s }
}

// WithCheckpoints appends checkpoints in lap order.
func WithCheckpoints(cps ...Checkpoint) Option {
	return func(t *Track) { t.checkpoints = append(t.checkpoints, cps...) }
}

// New validates and freezes a track.
func New(bounds physics.Rect, opts ...Option) (*Track, error) {
	t := &Track{bounds: bounds}
	for _, opt := range opts {
		opt(t)
	}

	if bounds.Empty() || !bounds.Min.IsFinite() || !bounds.Max.IsFinite() {
		return nil, ErrInvalidBounds
	}
	if len(t.walls) == 0 && t.surface == nil {
		return nil, ErrNoGeometry
	}
	for i, w := range t.walls {
		if !w.A.IsFinite() || !w.B.IsFinite() {
			return nil, errors.Wrapf(ErrInvalidSegment, "wall %d", i)
		}
	}
	if t.surface != nil && t.surface.Bounds().Empty() {
		return nil, ErrInvalidSurface
	}
	if len(t.checkpoints) == 0 {
		return nil, ErrNoCheckpoints
	}
	for i, cp := range t.checkpoints {
		if cp == nil {
			return nil, errors.Wrapf(ErrNoCheckpoints, "checkpoint %d is nil", i)
		}
		if !cp.Center().IsFinite() {
			return nil, errors.Wrapf(ErrInvalidGeometry, "checkpoint %d center is not finite", i)
		}
	}
	return t, nil
}

// Bounds is the world rectangle.
func (t *Track) Bounds() physics.Rect { return t.bounds }

// Walls returns a copy of the wall segments.
func (t *Track) Walls() []physics.Segment {
	return append([]physics.Segment(nil), t.walls...)
}

// Surface returns the classification surface or nil.
func (t *Track) Surface() Surface { return t.surface }

// Checkpoints returns a copy of the ordered checkpoint list.
func (t *Track) Checkpoints() []Checkpoint {
	return append([]Checkpoint(nil), t.checkpoints...)
}

func (t *Track) NumCheckpoints() int { return len(t.checkpoints) }
