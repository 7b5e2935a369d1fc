// Package collision decides whether a predicted vehicle state overlaps the
// track's obstacles.
package collision

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/systems/vehicle"
	"github.com/zeusync/trackenv/internal/core/track"
)

// Policy is what the environment does with a colliding update.
type Policy int

const (
	// Terminal drops the update and ends the episode.
	Terminal Policy = iota
	// Stop commits the update with zero velocity and keeps the episode alive.
	Stop
)

func (p Policy) String() string {
	if p == Stop {
		return "stop"
	}
	return "terminal"
}

// Detector tests a predicted state against the track.
type Detector interface {
	Name() string
	Collides(s vehicle.State, fp vehicle.Footprint) bool
	// Policy is the default reaction for this detector.
	Policy() Policy
}

var (
	_ Detector = (*Geometric)(nil)
	_ Detector = (*Classification)(nil)
)

// Geometric collides when any wall segment touches the unrotated footprint
// rectangle centred on the vehicle.
type Geometric struct {
	walls []physics.Segment
}

func NewGeometric(walls []physics.Segment) *Geometric {
	return &Geometric{walls: append([]physics.Segment(nil), walls...)}
}

func (*Geometric) Name() string   { return StrategyGeometric }
func (*Geometric) Policy() Policy { return Terminal }

func (g *Geometric) Collides(s vehicle.State, fp vehicle.Footprint) bool {
	box := physics.RectAround(s.Position, fp.HalfWidth, fp.HalfHeight)
	for _, w := range g.walls {
		if box.ClipSegment(w) {
			return true
		}
	}
	return false
}

// Classification samples the four rotated footprint corners on a surface.
// A corner collides when it lands on a wall that is not a checkpoint or the
// finish; corners off the surface do not collide.
type Classification struct {
	surface track.Surface
}

func NewClassification(surface track.Surface) *Classification {
	return &Classification{surface: surface}
}

func (*Classification) Name() string   { return StrategyClassification }
func (*Classification) Policy() Policy { return Stop }

func (c *Classification) Collides(s vehicle.State, fp vehicle.Footprint) bool {
	for _, p := range physics.Corners(s.Position, fp.HalfWidth, fp.HalfHeight, s.Heading) {
		if class, ok := c.surface.Classify(p); ok && class.Obstacle() {
			return true
		}
	}
	return false
}

// Strategies
const (
	StrategyGeometric      = "geometric"
	StrategyClassification = "classification"
)

var ErrInvalidConfig = errors.New("invalid collision configuration")

// Config selects the detector. An empty Strategy picks geometric when the
// track has walls and classification otherwise. An empty Policy keeps the
// detector's default.
type Config struct {
	Strategy string `json:"strategy" yaml:"strategy"`
	Policy   string `json:"policy" yaml:"policy"`
}

// Build returns the detector for trk and the policy to apply.
func (c Config) Build(trk *track.Track) (Detector, Policy, error) {
	strategy := c.Strategy
	if strategy == "" {
		strategy = StrategyGeometric
		if len(trk.Walls()) == 0 {
			strategy = StrategyClassification
		}
	}

	var d Detector
	switch strategy {
	case StrategyGeometric:
		if len(trk.Walls()) == 0 {
			return nil, 0, errors.Wrap(ErrInvalidConfig, "geometric collision needs wall segments")
		}
		d = NewGeometric(trk.Walls())
	case StrategyClassification:
		if trk.Surface() == nil {
			return nil, 0, errors.Wrap(ErrInvalidConfig, "classification collision needs a surface")
		}
		d = NewClassification(trk.Surface())
	default:
		return nil, 0, errors.Wrapf(ErrInvalidConfig, "unknown strategy %q", strategy)
	}

	switch c.Policy {
	case "":
		return d, d.Policy(), nil
	case "terminal":
		return d, Terminal, nil
	case "stop":
		return d, Stop, nil
	default:
		return nil, 0, errors.Wrapf(ErrInvalidConfig, "unknown policy %q", c.Policy)
	}
}
