package track

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

func TestNew(t *testing.T) {
	bounds := physics.R(0, 0, 100, 100)
	walls := bounds.Edges()
	cp := Circle{Position: physics.V(50, 50), Radius: 5}

	t.Run("Valid", func(t *testing.T) {
		trk, err := New(bounds, WithWalls(walls...), WithCheckpoints(cp))
		require.NoError(t, err)
		assert.Equal(t, bounds, trk.Bounds())
		assert.Len(t, trk.Walls(), 4)
		assert.Equal(t, 1, trk.NumCheckpoints())
		assert.Nil(t, trk.Surface())
	})

	t.Run("Walls are copied", func(t *testing.T) {
		trk, err := New(bounds, WithWalls(walls...), WithCheckpoints(cp))
		require.NoError(t, err)
		w := trk.Walls()
		w[0] = physics.Seg(1, 2, 3, 4)
		assert.Equal(t, walls[0], trk.Walls()[0])
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := New(bounds, WithCheckpoints(cp))
		assert.ErrorIs(t, err, ErrNoGeometry)

		_, err = New(bounds, WithWalls(walls...))
		assert.ErrorIs(t, err, ErrNoCheckpoints)

		_, err = New(physics.R(0, 0, 0, 10), WithWalls(walls...), WithCheckpoints(cp))
		assert.ErrorIs(t, err, ErrInvalidBounds)

		_, err = New(bounds, WithWalls(physics.Seg(0, 0, nan(), 1)), WithCheckpoints(cp))
		assert.Equal(t, ErrInvalidSegment, errors.Cause(err))

		_, err = New(bounds, WithWalls(walls...), WithCheckpoints(nil))
		assert.Equal(t, ErrNoCheckpoints, errors.Cause(err))
	})
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestSquareArena(t *testing.T) {
	walls := SquareArena(900, 600, 40, 100)
	require.Len(t, walls, 8)
	assert.Equal(t, physics.Seg(40, 40, 860, 40), walls[0])
	assert.Equal(t, physics.Seg(140, 140, 760, 140), walls[4])
}

func TestRingCheckpoints(t *testing.T) {
	cps := RingCheckpoints(physics.R(70, 70, 830, 530), 3, 30)
	require.Len(t, cps, 11)

	first := cps[0].Center()
	assert.InDelta(t, 70+760.0/3, first.X, 1e-9)
	assert.Equal(t, 70.0, first.Y)
	assert.Equal(t, physics.V(70, 70), cps[len(cps)-1].Center())

	// every position is distinct
	seen := map[physics.Vec2]bool{}
	for _, cp := range cps {
		assert.False(t, seen[cp.Center()])
		seen[cp.Center()] = true
	}

	assert.Nil(t, RingCheckpoints(physics.R(0, 0, 1, 1), 0, 1))
}

func TestCheckpointZones(t *testing.T) {
	c := Circle{Position: physics.V(10, 10), Radius: 5}
	assert.True(t, c.Reached(physics.V(12, 12)))
	assert.False(t, c.Reached(physics.V(15, 10)))

	p := NewPolygon(physics.V(0, 0), physics.V(10, 0), physics.V(10, 10), physics.V(0, 10))
	assert.True(t, p.Reached(physics.V(5, 5)))
	assert.False(t, p.Reached(physics.V(-1, 5)))
	assert.Equal(t, physics.V(5, 5), p.Center())
}

func TestGrid(t *testing.T) {
	g := NewGridBuilder(20, 10).
		Outline(1, WallClass).
		Fill(physics.R(5, 2, 7, 8), CheckpointClass(0)).
		FillCircle(physics.V(15, 5), 2, FinishClass).
		Build()

	c, ok := g.Classify(physics.V(0.5, 0.5))
	require.True(t, ok)
	assert.True(t, c.Obstacle())

	c, ok = g.Classify(physics.V(6, 5))
	require.True(t, ok)
	assert.Equal(t, 0, c.Checkpoint)
	assert.False(t, c.Obstacle())

	c, _ = g.Classify(physics.V(15, 5))
	assert.True(t, c.Finish)

	c, _ = g.Classify(physics.V(10, 5))
	assert.Equal(t, FreeClass, c)

	_, ok = g.Classify(physics.V(-0.1, 5))
	assert.False(t, ok)
	_, ok = g.Classify(physics.V(20, 5))
	assert.False(t, ok)
	_, ok = g.Classify(physics.V(nan(), 5))
	assert.False(t, ok)

	center, ok := g.Centroid(0)
	require.True(t, ok)
	assert.Equal(t, physics.V(6, 5), center)
	_, ok = g.Centroid(3)
	assert.False(t, ok)
}

func TestPaletteClassify(t *testing.T) {
	p := DefaultPalette()

	assert.True(t, p.Classify(RGB{20, 20, 20}).Obstacle())
	assert.True(t, p.Classify(RGB{100, 100, 100}).Wall)
	assert.False(t, p.Classify(RGB{101, 100, 100}).Wall)
	assert.Equal(t, 1, p.Classify(RGB{100, 230, 240}).Checkpoint)
	assert.Equal(t, -1, p.Classify(RGB{150, 150, 150}).Checkpoint)

	// a dark checkpoint color stays passable
	p.Checkpoints = append(p.Checkpoints, RGB{30, 30, 90})
	c := p.Classify(RGB{30, 30, 90})
	assert.True(t, c.Wall)
	assert.Equal(t, 5, c.Checkpoint)
	assert.False(t, c.Obstacle())

	finish := RGB{203, 108, 230}
	p.Finish = &finish
	assert.True(t, p.Classify(finish).Finish)
}

func TestFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	img.Set(0, 0, color.RGBA{A: 255})
	img.Set(4, 2, color.RGBA{R: 234, G: 51, B: 247, A: 255})

	g, err := FromImage(img, DefaultPalette())
	require.NoError(t, err)
	assert.Equal(t, 8, g.Width())
	assert.Equal(t, 4, g.Height())

	c, _ := g.Classify(physics.V(0.2, 0.2))
	assert.True(t, c.Obstacle())
	c, _ = g.Classify(physics.V(4.5, 2.5))
	assert.Equal(t, 0, c.Checkpoint)

	cps, err := ColoredCheckpoints(g, 1)
	require.NoError(t, err)
	require.Len(t, cps, 1)
	assert.Equal(t, physics.V(4.5, 2.5), cps[0].Center())
	assert.True(t, cps[0].Reached(physics.V(4.1, 2.9)))
	assert.False(t, cps[0].Reached(physics.V(1, 1)))

	_, err = ColoredCheckpoints(g, 2)
	assert.ErrorIs(t, err, ErrNoCheckpoints)

	_, err = FromImage(nil, DefaultPalette())
	assert.ErrorIs(t, err, ErrInvalidSurface)
}

func TestSpecBuild(t *testing.T) {
	t.Run("Default arena", func(t *testing.T) {
		trk, err := DefaultSpec().Build()
		require.NoError(t, err)
		assert.Equal(t, physics.R(40, 40, 860, 560), trk.Bounds())
		assert.Len(t, trk.Walls(), 8)
		assert.Equal(t, 11, trk.NumCheckpoints())
	})

	t.Run("Segments", func(t *testing.T) {
		s := Spec{
			Kind:        KindSegments,
			Width:       200,
			Height:      100,
			Walls:       [][4]float64{{0, 0, 200, 0}, {0, 100, 200, 100}},
			Checkpoints: []CheckpointSpec{{X: 50, Y: 50, Radius: 10}, {X: 150, Y: 50, Radius: 10}},
		}
		trk, err := s.Build()
		require.NoError(t, err)
		assert.Len(t, trk.Walls(), 2)
		assert.Equal(t, physics.V(150, 50), trk.Checkpoints()[1].Center())
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Spec{Kind: "maze", Width: 1, Height: 1}.Build()
		assert.ErrorIs(t, err, ErrUnknownKind)

		s := DefaultSpec()
		s.TrackWidth = 400
		assert.ErrorIs(t, s.Validate(), ErrInvalidGeometry)

		s = DefaultSpec()
		s.Width = 0
		assert.ErrorIs(t, s.Validate(), ErrInvalidBounds)

		assert.ErrorIs(t, Spec{Kind: KindSegments, Width: 1, Height: 1}.Validate(), ErrNoGeometry)
	})
}
