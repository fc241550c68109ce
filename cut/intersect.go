package cut

import "github.com/go-gl/mathgl/mgl64"

// segmentTriangle intersects the segment p0→p1 with a triangle using the
// Moller-Trumbore algorithm. It returns the parameter t along the segment,
// with ok=false when the segment misses or runs parallel to the triangle.
func segmentTriangle(p0, p1, a, b, c mgl64.Vec3, tol float64) (float64, bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	direction := p1.Sub(p0)

	h := direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -tol && det < tol {
		return 0, false
	}

	f := 1.0 / det
	s := p0.Sub(a)
	u := f * s.Dot(h)
	if u < -tol || u > 1.0+tol {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)
	if v < -tol || u+v > 1.0+tol {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t < -tol || t > 1.0+tol {
		return 0, false
	}

	return t, true
}

// isAbove reports on which side of a triangle's plane a point lies, using
// the sign of the corner determinant
func isAbove(point, a, b, c mgl64.Vec3) bool {
	m := mgl64.Mat3FromRows(b.Sub(a), c.Sub(a), point.Sub(a))
	return m.Det() > 0
}

// triangleNormal returns the unnormalized plane normal of a triangle
func triangleNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}
