package sdf

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Blade models a knife blade as an extruded wedge profile. The cutting edge
// runs along the z axis at y=0, the profile tapers from the edge thickness
// at TipHeight up to the spine thickness, and the spine extends upward by
// SpineHeight. Dimensions follow the knife parameterization
// (spine_dim, spine_height, edge_dim, tip_height, depth).
type Blade struct {
	SpineDim    float64
	SpineHeight float64
	EdgeDim     float64
	TipHeight   float64
	Depth       float64

	profile []vec2
}

// NewBlade builds the blade solid from its profile dimensions
func NewBlade(spineDim, spineHeight, edgeDim, tipHeight, depth float64) *Blade {
	b := &Blade{
		SpineDim:    spineDim,
		SpineHeight: spineHeight,
		EdgeDim:     edgeDim,
		TipHeight:   tipHeight,
		Depth:       depth,
	}

	top := tipHeight + spineHeight
	// counter-clockwise convex profile in the (x thickness, y height) plane,
	// tip at the origin
	b.profile = []vec2{
		{0, 0},
		{edgeDim / 2, tipHeight},
		{spineDim / 2, tipHeight},
		{spineDim / 2, top},
		{-spineDim / 2, top},
		{-spineDim / 2, tipHeight},
		{-edgeDim / 2, tipHeight},
	}

	return b
}

func (b *Blade) Evaluate(p r3.Vec) float64 {
	d2 := polygonDistance(b.profile, vec2{p.X, p.Y})
	dz := math.Abs(p.Z) - b.Depth/2

	outside := math.Hypot(math.Max(d2, 0), math.Max(dz, 0))
	inside := math.Min(math.Max(d2, dz), 0)
	return outside + inside
}

func (b *Blade) Bounds() r3.Box {
	half := math.Max(b.SpineDim, b.EdgeDim) / 2
	return r3.Box{
		Min: r3.Vec{X: -half, Y: 0, Z: -b.Depth / 2},
		Max: r3.Vec{X: half, Y: b.TipHeight + b.SpineHeight, Z: b.Depth / 2},
	}
}

// SurfaceTriangles returns the two cutting facets of the blade in local
// space, the swept geometry the cutting engine intersects against mesh
// edges. Each facet spans the full depth from the edge line up to the
// spine top.
func (b *Blade) SurfaceTriangles() [][3]r3.Vec {
	top := b.TipHeight + b.SpineHeight
	hd := b.Depth / 2

	// the cutting plane is the mid-plane of the wedge; two triangles
	// spanning edge line (y=0) to spine top
	return [][3]r3.Vec{
		{
			{X: 0, Y: 0, Z: -hd},
			{X: 0, Y: 0, Z: hd},
			{X: 0, Y: top, Z: hd},
		},
		{
			{X: 0, Y: 0, Z: -hd},
			{X: 0, Y: top, Z: hd},
			{X: 0, Y: top, Z: -hd},
		},
	}
}

type vec2 struct {
	x, y float64
}

// polygonDistance returns the signed distance from a point to a simple
// polygon, negative inside
func polygonDistance(poly []vec2, p vec2) float64 {
	n := len(poly)
	d := math.Inf(1)
	sign := 1.0

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		e := vec2{poly[j].x - poly[i].x, poly[j].y - poly[i].y}
		w := vec2{p.x - poly[i].x, p.y - poly[i].y}

		t := 0.0
		if ee := e.x*e.x + e.y*e.y; ee > 0 {
			t = math.Min(math.Max((w.x*e.x+w.y*e.y)/ee, 0), 1)
		}
		bx := w.x - e.x*t
		by := w.y - e.y*t
		d = math.Min(d, bx*bx+by*by)

		// winding crossing test
		c1 := p.y >= poly[i].y
		c2 := p.y < poly[j].y
		c3 := e.x*w.y > e.y*w.x
		if (c1 && c2 && c3) || (!c1 && !c2 && !c3) {
			sign = -sign
		}
	}

	return sign * math.Sqrt(d)
}
