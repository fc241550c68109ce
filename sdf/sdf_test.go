package sdf

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DanielTakeshi/DiSECt/geom"
)

func TestBoxDistance(t *testing.T) {
	b := Box(r3.Vec{X: 2, Y: 2, Z: 2}) // unit half extents

	tests := []struct {
		name string
		p    r3.Vec
		want float64
	}{
		{name: "centre", p: r3.Vec{}, want: -1},
		{name: "face", p: r3.Vec{X: 1}, want: 0},
		{name: "outside face", p: r3.Vec{X: 2}, want: 1},
		{name: "inside near face", p: r3.Vec{X: 0.5}, want: -0.5},
		{name: "outside corner", p: r3.Vec{X: 2, Y: 2, Z: 2}, want: 1.7320508075688772},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, b.Evaluate(tt.p), 1e-12)
		})
	}
}

func TestCapsuleDistance(t *testing.T) {
	c := Capsule(r3.Vec{Y: -1}, r3.Vec{Y: 1}, 0.5)

	assert.InDelta(t, -0.5, c.Evaluate(r3.Vec{}), 1e-12)
	assert.InDelta(t, 0.5, c.Evaluate(r3.Vec{X: 1}), 1e-12)
	assert.InDelta(t, 0.5, c.Evaluate(r3.Vec{Y: 2}), 1e-12)
}

func TestBladeDistance(t *testing.T) {
	b := NewBlade(0.002, 0.04, 0.0005, 0.01, 0.1)

	// above the tip inside the wedge midplane
	assert.Negative(t, b.Evaluate(r3.Vec{Y: 0.02}))
	// well to the side of the blade
	assert.Positive(t, b.Evaluate(r3.Vec{X: 0.05, Y: 0.02}))
	// beyond the depth extent
	assert.Positive(t, b.Evaluate(r3.Vec{Y: 0.02, Z: 0.1}))
	// below the cutting edge
	assert.Positive(t, b.Evaluate(r3.Vec{Y: -0.01}))
}

func TestBladeSurfaceTriangles(t *testing.T) {
	b := NewBlade(0.002, 0.04, 0.0005, 0.01, 0.1)
	tris := b.SurfaceTriangles()

	assert.Len(t, tris, 2)
	for _, tri := range tris {
		for _, v := range tri {
			assert.Equal(t, 0.0, v.X, "cutting facets lie in the blade midplane")
		}
	}
}

func TestNormalPointsOutward(t *testing.T) {
	b := Box(r3.Vec{X: 2, Y: 2, Z: 2})

	n := Normal(b, r3.Vec{X: 1.5}, 1e-6)
	assert.InDelta(t, 1.0, n.X, 1e-6)
	assert.InDelta(t, 0.0, n.Y, 1e-6)
}

func TestTransformedDistance(t *testing.T) {
	b := Box(r3.Vec{X: 2, Y: 2, Z: 2})
	pose := geom.FromAxisAngle(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{}, 0)
	moved := Transformed(b, pose)

	assert.InDelta(t, -1.0, moved.Evaluate(r3.Vec{Y: 5}), 1e-12)
	assert.InDelta(t, 1.0, moved.Evaluate(r3.Vec{Y: 7}), 1e-12)

	bounds := moved.Bounds()
	assert.InDelta(t, 4.0, bounds.Min.Y, 1e-12)
	assert.InDelta(t, 6.0, bounds.Max.Y, 1e-12)
}
