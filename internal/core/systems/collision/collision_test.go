package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/systems/vehicle"
	"github.com/zeusync/trackenv/internal/core/track"
)

var car = vehicle.Footprint{HalfWidth: 20, HalfHeight: 12}

func at(x, y, heading float64) vehicle.State {
	return vehicle.State{Pose: physics.Pose{Position: physics.V(x, y), Heading: heading}}
}

func TestGeometric(t *testing.T) {
	g := NewGeometric(track.SquareArena(900, 600, 40, 100))

	assert.False(t, g.Collides(at(225, 90, 0), car))
	assert.True(t, g.Collides(at(225, 45, 0), car), "overlaps outer top wall")
	assert.True(t, g.Collides(at(225, 40, 0), car), "centred on wall")
	assert.True(t, g.Collides(at(150, 130, 0), car), "touches inner corner")
	assert.True(t, g.Collides(at(225, 52, 0), car), "footprint edge on wall")
	assert.False(t, g.Collides(at(225, 53, 0), car), "footprint edge one unit clear")
	assert.Equal(t, Terminal, g.Policy())
}

func TestClassification(t *testing.T) {
	grid := track.NewGridBuilder(200, 100).
		Fill(physics.R(150, 0, 200, 100), track.WallClass).
		Fill(physics.R(80, 0, 90, 100), track.Class{Wall: true, Checkpoint: 0}).
		Build()
	c := NewClassification(grid)

	assert.False(t, c.Collides(at(50, 50, 0), car))
	assert.True(t, c.Collides(at(135, 50, 0), car), "front corners on wall")
	assert.False(t, c.Collides(at(135, 50, math.Pi/2), car), "rotated footprint clears wall")
	assert.False(t, c.Collides(at(65, 50, 0), car), "checkpoint painted over wall is not an obstacle")
	assert.False(t, c.Collides(at(-100, -100, 0), car), "off surface")
	assert.Equal(t, Stop, c.Policy())
}

func TestConfigBuild(t *testing.T) {
	walled, err := track.New(physics.R(0, 0, 100, 100),
		track.WithWalls(physics.Seg(0, 0, 100, 0)),
		track.WithCheckpoints(track.Circle{Position: physics.V(50, 50), Radius: 5}))
	require.NoError(t, err)

	grid := track.NewGridBuilder(100, 100).Build()
	raster, err := track.New(grid.Bounds(),
		track.WithSurface(grid),
		track.WithCheckpoints(track.Circle{Position: physics.V(50, 50), Radius: 5}))
	require.NoError(t, err)

	d, p, err := Config{}.Build(walled)
	require.NoError(t, err)
	assert.Equal(t, StrategyGeometric, d.Name())
	assert.Equal(t, Terminal, p)

	d, p, err = Config{}.Build(raster)
	require.NoError(t, err)
	assert.Equal(t, StrategyClassification, d.Name())
	assert.Equal(t, Stop, p)

	_, p, err = Config{Policy: "stop"}.Build(walled)
	require.NoError(t, err)
	assert.Equal(t, Stop, p)

	_, _, err = Config{Strategy: StrategyClassification}.Build(walled)
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, _, err = Config{Strategy: StrategyGeometric}.Build(raster)
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, _, err = Config{Policy: "bounce"}.Build(walled)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
