package geom

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a rigid placement in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// FromAxisAngle creates a transform from a position and an axis-angle rotation,
// the rotation encoding used by mesh placement presets
func FromAxisAngle(position, axis mgl64.Vec3, angle float64) Transform {
	if axis.Len() == 0 {
		t := NewTransform()
		t.Position = position
		return t
	}

	rotation := mgl64.QuatRotate(angle, axis.Normalize())

	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}

// Apply maps a local-space point into world space
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(point).Add(t.Position)
}

// ApplyInverse maps a world-space point into local space
func (t Transform) ApplyInverse(point mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(point.Sub(t.Position))
}

// RotateDirection maps a local-space direction into world space, ignoring translation
func (t Transform) RotateDirection(direction mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(direction)
}
