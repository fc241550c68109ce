// Package contact implements the stateless penalty contact model: a static
// ground plane plus signed-distance-field obstacles, with Coulomb-capped
// friction. Forces depend only on the instantaneous particle state, so
// re-evaluation is idempotent and the per-particle loop parallelizes
// trivially.
package contact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/sdf"
)

// Params are the penalty constants of one contact pairing
type Params struct {
	Ke     float64 `json:"ke"`     // normal stiffness
	Kd     float64 `json:"kd"`     // normal damping
	Kf     float64 `json:"kf"`     // friction stiffness
	Mu     float64 `json:"mu"`     // Coulomb friction coefficient
	Radius float64 `json:"radius"` // contact onset tolerance
}

// Validate rejects negative constants
func (p Params) Validate() error {
	if p.Ke < 0 || p.Kd < 0 || p.Kf < 0 || p.Mu < 0 || p.Radius < 0 {
		return errNegativeParams
	}
	return nil
}

// Obstacle is a rigid SDF collider. SurfaceVelocity may be nil for static
// obstacles.
type Obstacle struct {
	Solid           sdf.SDF3
	SurfaceVelocity func(p mgl64.Vec3) mgl64.Vec3
}

// Resolver evaluates contact forces for the deformable body. The
// SurfaceSDF variant applies to particles on faces exposed by cutting.
type Resolver struct {
	GroundActive bool
	Ground       Params

	SDF        Params
	SurfaceSDF Params

	Obstacles []Obstacle
}

// Force returns the total contact force on one particle. cutExposed picks
// the surface-variant SDF constants; noContact particles skip obstacle
// contact entirely but still collide with the ground.
func (r *Resolver) Force(pos, vel mgl64.Vec3, cutExposed, noContact bool) mgl64.Vec3 {
	var total mgl64.Vec3

	if r.GroundActive {
		total = total.Add(groundForce(r.Ground, pos, vel))
	}

	if noContact {
		return total
	}

	params := r.SDF
	if cutExposed {
		params = r.SurfaceSDF
	}

	for _, obstacle := range r.Obstacles {
		total = total.Add(obstacleForce(params, obstacle, pos, vel))
	}

	return total
}

// groundForce is the penalty force of the static plane y=0
func groundForce(params Params, pos, vel mgl64.Vec3) mgl64.Vec3 {
	depth := pos.Y() - params.Radius
	if depth >= 0 {
		return mgl64.Vec3{}
	}

	normal := mgl64.Vec3{0, 1, 0}
	return penaltyForce(params, normal, -depth, vel)
}

// obstacleForce is the penalty force of a rigid SDF collider
func obstacleForce(params Params, obstacle Obstacle, pos, vel mgl64.Vec3) mgl64.Vec3 {
	p := sdf.FromMGL(pos)
	dist := obstacle.Solid.Evaluate(p) - params.Radius
	if dist >= 0 {
		return mgl64.Vec3{}
	}

	normal := sdf.ToMGL(sdf.Normal(obstacle.Solid, p, 1e-6))

	relVel := vel
	if obstacle.SurfaceVelocity != nil {
		relVel = vel.Sub(obstacle.SurfaceVelocity(pos))
	}

	return penaltyForce(params, normal, -dist, relVel)
}

// penaltyForce composes the normal penalty and the Coulomb-capped friction
// for a contact of the given penetration along the given normal
func penaltyForce(params Params, normal mgl64.Vec3, penetration float64, relVel mgl64.Vec3) mgl64.Vec3 {
	vn := relVel.Dot(normal)

	fn := params.Ke*penetration - params.Kd*vn
	if fn <= 0 {
		return mgl64.Vec3{}
	}

	force := normal.Mul(fn)

	vt := relVel.Sub(normal.Mul(vn))
	speed := vt.Len()
	if speed > 1e-12 {
		ft := math.Min(params.Kf*speed, params.Mu*fn)
		force = force.Sub(vt.Mul(ft / speed))
	}

	return force
}
