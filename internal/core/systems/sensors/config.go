package sensors

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

// Direction presets
const (
	PresetCompass8 = "compass8"
	PresetFan5     = "fan5"
)

// Sources the rays are cast against
const (
	SourceWalls   = "walls"
	SourceSurface = "surface"
)

// Config describes a sensor array. Angles are in degrees: compass bearings
// in screen space (0 = +x, 90 = +y) for the compass mode, heading offsets
// for the relative mode. A preset, when set, replaces Mode and AnglesDeg.
type Config struct {
	Mode       string    `json:"mode" yaml:"mode"`
	Preset     string    `json:"preset,omitempty" yaml:"preset,omitempty"`
	AnglesDeg  []float64 `json:"angles_deg,omitempty" yaml:"angles_deg,omitempty"`
	MaxRange   float64   `json:"max_range" yaml:"max_range"`
	Source     string    `json:"source" yaml:"source"`
	RasterStep float64   `json:"raster_step,omitempty" yaml:"raster_step,omitempty"`
}

// DefaultConfig is the eight-ray compass array with a range of 100.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeCompass.String(),
		Preset:     PresetCompass8,
		MaxRange:   100,
		Source:     SourceWalls,
		RasterStep: 2,
	}
}

// Validate checks the configuration without building the array.
func (c Config) Validate() error {
	_, err := c.Build()
	return err
}

// Build creates the array.
func (c Config) Build() (*Array, error) {
	switch c.Source {
	case SourceWalls, SourceSurface:
	default:
		return nil, errors.Errorf("unknown sensor source %q", c.Source)
	}

	switch c.Preset {
	case PresetCompass8:
		return NewCompass(Compass8, c.MaxRange)
	case PresetFan5:
		return NewRelative(Fan5, c.MaxRange)
	case "":
	default:
		return nil, errors.Errorf("unknown sensor preset %q", c.Preset)
	}

	switch c.Mode {
	case ModeCompass.String():
		dirs := make([]physics.Vec2, len(c.AnglesDeg))
		for i, a := range c.AnglesDeg {
			dirs[i] = physics.FromAngle(physics.Radians(a), 1)
		}
		return NewCompass(dirs, c.MaxRange)
	case ModeRelative.String():
		offsets := make([]float64, len(c.AnglesDeg))
		for i, a := range c.AnglesDeg {
			offsets[i] = physics.Radians(a)
		}
		return NewRelative(offsets, c.MaxRange)
	default:
		return nil, errors.Errorf("unknown sensor mode %q", c.Mode)
	}
}
