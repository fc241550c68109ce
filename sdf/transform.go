package sdf

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DanielTakeshi/DiSECt/geom"
)

type transformed struct {
	solid SDF3
	pose  geom.Transform
}

// Transformed places a solid at a rigid pose. Queries are evaluated in the
// solid's local frame; distances are preserved because the pose is rigid.
func Transformed(solid SDF3, pose geom.Transform) SDF3 {
	return &transformed{solid: solid, pose: pose}
}

func (t *transformed) Evaluate(p r3.Vec) float64 {
	local := t.pose.ApplyInverse(ToMGL(p))
	return t.solid.Evaluate(FromMGL(local))
}

func (t *transformed) Bounds() r3.Box {
	b := t.solid.Bounds()
	corners := [8]r3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	world := FromMGL(t.pose.Apply(ToMGL(corners[0])))
	out := r3.Box{Min: world, Max: world}
	for _, c := range corners[1:] {
		world = FromMGL(t.pose.Apply(ToMGL(c)))
		out.Min.X = min(out.Min.X, world.X)
		out.Min.Y = min(out.Min.Y, world.Y)
		out.Min.Z = min(out.Min.Z, world.Z)
		out.Max.X = max(out.Max.X, world.X)
		out.Max.Y = max(out.Max.Y, world.Y)
		out.Max.Z = max(out.Max.Z, world.Z)
	}
	return out
}
