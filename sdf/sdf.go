// Package sdf provides the signed-distance-field colliders used for rigid
// obstacles and the knife blade. Distances are negative inside a solid.
package sdf

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the interface to a 3d signed distance function object
type SDF3 interface {
	// Evaluate returns the minimum distance of the surface to the point,
	// negative if the point is contained within the solid
	Evaluate(p r3.Vec) float64
	// Bounds returns a box that completely contains the solid
	Bounds() r3.Box
}

// FromMGL converts a simulation vector into the SDF query type
func FromMGL(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// ToMGL converts an SDF vector back into a simulation vector
func ToMGL(v r3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Normal estimates the outward surface normal at p by central differences
func Normal(s SDF3, p r3.Vec, eps float64) r3.Vec {
	grad := r3.Vec{
		X: s.Evaluate(r3.Vec{X: p.X + eps, Y: p.Y, Z: p.Z}) - s.Evaluate(r3.Vec{X: p.X - eps, Y: p.Y, Z: p.Z}),
		Y: s.Evaluate(r3.Vec{X: p.X, Y: p.Y + eps, Z: p.Z}) - s.Evaluate(r3.Vec{X: p.X, Y: p.Y - eps, Z: p.Z}),
		Z: s.Evaluate(r3.Vec{X: p.X, Y: p.Y, Z: p.Z + eps}) - s.Evaluate(r3.Vec{X: p.X, Y: p.Y, Z: p.Z - eps}),
	}
	n := r3.Norm(grad)
	if n == 0 {
		return r3.Vec{Y: 1}
	}
	return r3.Scale(1.0/n, grad)
}

type box3 struct {
	half r3.Vec
}

// Box returns an SDF3 for an axis-aligned box of the given full size,
// centred on the origin
func Box(size r3.Vec) SDF3 {
	return &box3{half: r3.Scale(0.5, size)}
}

func (b *box3) Evaluate(p r3.Vec) float64 {
	q := r3.Vec{
		X: math.Abs(p.X) - b.half.X,
		Y: math.Abs(p.Y) - b.half.Y,
		Z: math.Abs(p.Z) - b.half.Z,
	}
	outside := r3.Vec{
		X: math.Max(q.X, 0),
		Y: math.Max(q.Y, 0),
		Z: math.Max(q.Z, 0),
	}
	inside := math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
	return r3.Norm(outside) + inside
}

func (b *box3) Bounds() r3.Box {
	return r3.Box{Min: r3.Scale(-1, b.half), Max: b.half}
}

type capsule3 struct {
	a, b   r3.Vec
	radius float64
}

// Capsule returns an SDF3 for a capsule between two points
func Capsule(a, b r3.Vec, radius float64) SDF3 {
	return &capsule3{a: a, b: b, radius: radius}
}

func (c *capsule3) Evaluate(p r3.Vec) float64 {
	pa := r3.Sub(p, c.a)
	ba := r3.Sub(c.b, c.a)
	h := 0.0
	if dot := r3.Dot(ba, ba); dot > 0 {
		h = math.Min(math.Max(r3.Dot(pa, ba)/dot, 0), 1)
	}
	return r3.Norm(r3.Sub(pa, r3.Scale(h, ba))) - c.radius
}

func (c *capsule3) Bounds() r3.Box {
	r := r3.Vec{X: c.radius, Y: c.radius, Z: c.radius}
	min := r3.Vec{
		X: math.Min(c.a.X, c.b.X),
		Y: math.Min(c.a.Y, c.b.Y),
		Z: math.Min(c.a.Z, c.b.Z),
	}
	max := r3.Vec{
		X: math.Max(c.a.X, c.b.X),
		Y: math.Max(c.a.Y, c.b.Y),
		Z: math.Max(c.a.Z, c.b.Z),
	}
	return r3.Box{Min: r3.Sub(min, r), Max: r3.Add(max, r)}
}
