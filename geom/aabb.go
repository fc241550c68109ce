package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// FromPoints computes the bounding box of a point set
func FromPoints(points ...mgl64.Vec3) AABB {
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box = box.ExtendPoint(p)
	}
	return box
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// ExtendPoint grows the AABB to include a point
func (a AABB) ExtendPoint(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Union merges two AABBs
func (a AABB) Union(other AABB) AABB {
	return a.ExtendPoint(other.Min).ExtendPoint(other.Max)
}

// Inflate grows the AABB by a uniform margin on every side
func (a AABB) Inflate(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}
