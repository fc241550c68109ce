// Package knife advances the rigid cutting body along its trajectory and
// exposes its pose, implicit surface and cutting facets to the contact and
// cutting subsystems.
package knife

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
	"github.com/DanielTakeshi/DiSECt/sdf"
)

// Knife is the rigid cutting body. Its motion is either keyframed or a
// free-running constant rigid velocity; it is never influenced by the
// deformable body.
type Knife struct {
	Profile Profile

	Pose     geom.Transform
	Velocity mgl64.Vec3
	Omega    mgl64.Vec3

	track *Track
	time  float64
}

// New creates a knife following a constant rigid motion from an initial pose
func New(profile Profile, pose geom.Transform, velocity, omega mgl64.Vec3) *Knife {
	return &Knife{
		Profile:  profile,
		Pose:     pose,
		Velocity: velocity,
		Omega:    omega,
	}
}

// NewDropping creates the simplified vertical-drop knife: start at initialY
// above the origin and translate with constant velocityY. This is the
// fallback when no full trajectory is prescribed.
func NewDropping(profile Profile, initialY, velocityY float64) *Knife {
	pose := geom.NewTransform()
	pose.Position = mgl64.Vec3{0, initialY, 0}
	return New(profile, pose, mgl64.Vec3{0, velocityY, 0}, mgl64.Vec3{})
}

// NewKeyframed creates a knife replaying a keyframe track
func NewKeyframed(profile Profile, track Track) (*Knife, error) {
	if err := track.Validate(); err != nil {
		return nil, err
	}

	k := &Knife{Profile: profile, track: &track}
	k.Pose, k.Velocity, k.Omega = track.At(0)
	return k, nil
}

// Advance moves the knife forward by dt
func (k *Knife) Advance(dt float64) {
	k.time += dt

	if k.track != nil {
		k.Pose, k.Velocity, k.Omega = k.track.At(k.time)
		return
	}

	k.Pose = advancePose(k.Pose, k.Velocity, k.Omega, dt)
}

// Time returns the accumulated trajectory time
func (k *Knife) Time() float64 { return k.time }

// Solid returns the world-space rigid collider at the current pose
func (k *Knife) Solid() sdf.SDF3 {
	return sdf.Transformed(k.Profile.Solid(), k.Pose)
}

// Distance evaluates the signed distance from a world-space point to the
// knife surface
func (k *Knife) Distance(p mgl64.Vec3) float64 {
	return k.Profile.Solid().Evaluate(sdf.FromMGL(k.Pose.ApplyInverse(p)))
}

// SurfaceVelocity returns the velocity of the knife surface at a
// world-space point, combining linear and angular motion
func (k *Knife) SurfaceVelocity(p mgl64.Vec3) mgl64.Vec3 {
	r := p.Sub(k.Pose.Position)
	return k.Velocity.Add(k.Omega.Cross(r))
}

// CuttingTriangles returns the cutting facets in world space at the current
// pose, or nil for non-cutting profiles
func (k *Knife) CuttingTriangles() [][3]mgl64.Vec3 {
	local := k.Profile.CuttingTriangles()
	if len(local) == 0 {
		return nil
	}

	world := make([][3]mgl64.Vec3, len(local))
	for i, tri := range local {
		for c := 0; c < 3; c++ {
			world[i][c] = k.Pose.Apply(sdf.ToMGL(tri[c]))
		}
	}
	return world
}

// SweptTriangles returns the cutting facets at both the current pose and a
// previous one. This catches edges passed over by in-plane blade motion
// within one substep; it assumes the blade does not translate along its
// facet normal faster than the facet thickness per substep
func (k *Knife) SweptTriangles(previous geom.Transform) [][3]mgl64.Vec3 {
	current := k.CuttingTriangles()
	if current == nil {
		return nil
	}

	local := k.Profile.CuttingTriangles()
	swept := make([][3]mgl64.Vec3, 0, len(current)*2)
	swept = append(swept, current...)

	for _, tri := range local {
		var prevTri [3]mgl64.Vec3
		for c := 0; c < 3; c++ {
			prevTri[c] = previous.Apply(sdf.ToMGL(tri[c]))
		}
		swept = append(swept, prevTri)
	}

	return swept
}
