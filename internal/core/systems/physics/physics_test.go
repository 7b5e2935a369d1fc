package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	t.Run("Perpendicular hit", func(t *testing.T) {
		d, ok := Intersect(V(0, 0), V(1, 0), Seg(10, -5, 10, 5))
		require.True(t, ok)
		assert.Equal(t, 10.0, d)
	})

	t.Run("Behind origin", func(t *testing.T) {
		_, ok := Intersect(V(0, 0), V(1, 0), Seg(-10, -5, -10, 5))
		require.False(t, ok)
	})

	t.Run("Past segment end", func(t *testing.T) {
		_, ok := Intersect(V(0, 0), V(1, 0), Seg(10, 1, 10, 5))
		require.False(t, ok)
	})

	t.Run("Endpoint counts as hit", func(t *testing.T) {
		d, ok := Intersect(V(0, 0), V(1, 0), Seg(10, 0, 10, 5))
		require.True(t, ok)
		assert.Equal(t, 10.0, d)
	})

	t.Run("Parallel", func(t *testing.T) {
		_, ok := Intersect(V(0, 0), V(1, 0), Seg(0, 1, 10, 1))
		require.False(t, ok)
	})

	t.Run("Collinear", func(t *testing.T) {
		_, ok := Intersect(V(0, 0), V(1, 0), Seg(5, 0, 10, 0))
		require.False(t, ok)
	})

	t.Run("Zero length segment", func(t *testing.T) {
		_, ok := Intersect(V(0, 0), V(1, 0), Seg(5, 0, 5, 0))
		require.False(t, ok)
	})

	t.Run("Origin on segment", func(t *testing.T) {
		d, ok := Intersect(V(10, 0), V(1, 0), Seg(10, -5, 10, 5))
		require.True(t, ok)
		assert.Equal(t, 0.0, d)
	})
}

func TestIntersectEndpointOrderInvariant(t *testing.T) {
	origins := []Vec2{V(225, 210), V(0, 0), V(-13.7, 401.25), V(860, 40)}
	walls := []Segment{
		Seg(40, 40, 860, 40),
		Seg(860, 40, 860, 560),
		Seg(140, 140, 760, 460),
		Seg(100, 300, 400, 100),
		Seg(300, 250, 300, 251),
		Seg(0.1, 0.7, 0.3, 0.2),
		Seg(333.3, 17.9, 12.01, 590.55),
	}
	check := func(origin, dir Vec2, w Segment) {
		d1, ok1 := Intersect(origin, dir, w)
		d2, ok2 := Intersect(origin, dir, w.Reversed())
		require.Equal(t, ok1, ok2, "origin %v dir %v wall %v", origin, dir, w)
		require.Equal(t, d1, d2, "origin %v dir %v wall %v", origin, dir, w)
	}
	for _, origin := range origins {
		for _, w := range walls {
			for i := 0; i < 64; i++ {
				check(origin, FromAngle(float64(i)*2*math.Pi/64, 1), w)
			}
			// rays aimed exactly at the endpoints sit on the u = 0 and u = 1 boundary
			for _, end := range []Vec2{w.A, w.B} {
				if end == origin {
					continue
				}
				check(origin, end.Sub(origin).Normalize(), w)
			}
		}
	}
}

func TestNearest(t *testing.T) {
	walls := []Segment{Seg(50, -5, 50, 5), Seg(20, -5, 20, 5), Seg(-30, -5, -30, 5)}

	d, ok := Nearest(V(0, 0), V(1, 0), walls)
	require.True(t, ok)
	assert.Equal(t, 20.0, d)

	_, ok = Nearest(V(0, 0), V(0, 1), walls)
	assert.False(t, ok)

	_, ok = Nearest(V(0, 0), V(1, 0), nil)
	assert.False(t, ok)
}

func TestRectClipSegment(t *testing.T) {
	r := RectAround(V(100, 100), 20, 12)

	cases := []struct {
		name string
		seg  Segment
		want bool
	}{
		{"crossing", Seg(50, 100, 150, 100), true},
		{"fully inside", Seg(95, 98, 105, 102), true},
		{"touching edge", Seg(120, 0, 120, 200), true},
		{"outside left", Seg(0, 0, 0, 200), false},
		{"diagonal miss", Seg(60, 60, 70, 50), false},
		{"diagonal through corner", Seg(70, 78, 90, 98), true},
		{"degenerate inside", Seg(100, 100, 100, 100), true},
		{"degenerate outside", Seg(10, 10, 10, 10), false},
		{"ends before rect", Seg(0, 100, 70, 100), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.ClipSegment(tc.seg))
			assert.Equal(t, tc.want, r.ClipSegment(tc.seg.Reversed()))
		})
	}
}

func TestRectHelpers(t *testing.T) {
	r := R(40, 40, 860, 560)

	assert.Equal(t, V(40, 300), r.Clamp(V(-10, 300)))
	assert.Equal(t, V(860, 560), r.Clamp(V(1000, 1000)))
	assert.True(t, r.Contains(V(40, 40)))
	assert.False(t, r.Contains(V(39.9, 40)))
	assert.Equal(t, R(45, 45, 855, 555), r.Inset(5))
	assert.Len(t, r.Edges(), 4)
	assert.False(t, r.Empty())
	assert.True(t, R(10, 10, 10, 20).Empty())
}

func TestCorners(t *testing.T) {
	t.Run("Heading zero", func(t *testing.T) {
		c := Corners(V(100, 50), 20, 12, 0)
		assert.Equal(t, [4]Vec2{{80, 38}, {120, 38}, {120, 62}, {80, 62}}, c)
	})

	t.Run("Quarter turn swaps extents", func(t *testing.T) {
		c := Corners(V(0, 0), 20, 12, math.Pi/2)
		for _, p := range c {
			assert.InDelta(t, 12, math.Abs(p.X), 1e-9)
			assert.InDelta(t, 20, math.Abs(p.Y), 1e-9)
		}
	})
}

func TestPointInPolygon(t *testing.T) {
	square := []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.True(t, PointInPolygon(V(5, 5), square))
	assert.False(t, PointInPolygon(V(15, 5), square))
	assert.False(t, PointInPolygon(V(5, 5), nil))
}

func TestVectorHelpers(t *testing.T) {
	assert.Equal(t, Vec2{}, V(0, 0).Normalize())
	assert.Equal(t, Vec2{}, V(math.Inf(1), 0).Normalize())
	assert.Equal(t, V(0.6, 0.8), V(3, 4).Normalize())
	assert.Equal(t, 5.0, V(0, 0).Distance(V(3, 4)))
	assert.Equal(t, 5.0, Distance2(0, 0, 3, 4))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.False(t, V(math.NaN(), 1).IsFinite())
	assert.Equal(t, -2.0, Cross(V(1, 0), V(0, -2)))
}
