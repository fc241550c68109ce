package cut

import (
	"github.com/go-gl/mathgl/mgl64"
)

// SpringState tracks a cut spring's position in the Splitting→Split
// progression. A spring exists only while its edge is splitting; once it
// relaxes or breaks it transitions to Split and stops contributing.
type SpringState int

const (
	// StateSplitting is an installed spring still bridging the cut
	StateSplitting SpringState = iota
	// StateSplit is a fully relaxed or broken spring, mechanically inert
	StateSplit
)

// SpringParams are the constants of one cut-spring flavour (interior or
// surface)
type SpringParams struct {
	Ke         float64 `json:"ke"`
	Kd         float64 `json:"kd"`
	Softness   float64 `json:"softness"`
	RestLength float64 `json:"rest_length"`
}

// VirtualPoint is a point on a mesh edge addressed by its parent particles
// and a barycentric coordinate. Cut springs attach to virtual points, and
// their forces distribute to the parents by the barycentric weights, which
// keeps the internal force pair exactly momentum free.
type VirtualPoint struct {
	I, J int
	T    float64
}

// Position interpolates the virtual point from the particle positions
func (vp VirtualPoint) Position(positions []mgl64.Vec3) mgl64.Vec3 {
	return positions[vp.I].Mul(1.0 - vp.T).Add(positions[vp.J].Mul(vp.T))
}

// Velocity interpolates the virtual point velocity
func (vp VirtualPoint) Velocity(velocities []mgl64.Vec3) mgl64.Vec3 {
	return velocities[vp.I].Mul(1.0 - vp.T).Add(velocities[vp.J].Mul(vp.T))
}

// Spring bridges the two virtual points created when a cut passes through
// an edge. Softness ramps its stiffness to zero over the relaxation window,
// modelling progressive separation instead of instant fracture.
type Spring struct {
	A, B VirtualPoint

	Params  SpringParams
	Normal  mgl64.Vec3
	Surface bool

	state SpringState
	relax float64
}

// State returns the spring's lifecycle state
func (s *Spring) State() SpringState { return s.state }

// Relaxation returns the accumulated softness relaxation in [0,1]
func (s *Spring) Relaxation() float64 { return s.relax }

// EffectiveStiffness is the softness-scaled spring constant
func (s *Spring) EffectiveStiffness() float64 {
	return s.Params.Ke * (1.0 - s.relax)
}

// Advance progresses the softness relaxation and applies the breaking
// criterion. It returns true when the spring transitions to Split.
func (s *Spring) Advance(dt, maxStretch float64, positions []mgl64.Vec3) bool {
	if s.state == StateSplit {
		return false
	}

	if s.Params.Softness > 0 {
		s.relax += s.Params.Softness * dt
		if s.relax >= 1 {
			s.relax = 1
			s.state = StateSplit
			return true
		}
	}

	if maxStretch > 0 {
		length := s.B.Position(positions).Sub(s.A.Position(positions)).Len()
		if length-s.Params.RestLength > maxStretch {
			s.relax = 1
			s.state = StateSplit
			return true
		}
	}

	return false
}

// Accumulate adds the spring's force pair into the per-particle force
// array. Each virtual point's force distributes to its parents by the
// barycentric weights.
func (s *Spring) Accumulate(forces, positions, velocities []mgl64.Vec3) {
	if s.state == StateSplit {
		return
	}

	pa := s.A.Position(positions)
	pb := s.B.Position(positions)

	delta := pa.Sub(pb)
	length := delta.Len()
	if length < 1e-12 {
		return
	}
	dir := delta.Mul(1.0 / length)

	rate := s.A.Velocity(velocities).Sub(s.B.Velocity(velocities)).Dot(dir)

	magnitude := s.EffectiveStiffness()*(length-s.Params.RestLength) + s.Params.Kd*rate
	force := dir.Mul(-magnitude)

	// pull A toward B, reaction on B's parents
	forces[s.A.I] = forces[s.A.I].Add(force.Mul(1.0 - s.A.T))
	forces[s.A.J] = forces[s.A.J].Add(force.Mul(s.A.T))
	forces[s.B.I] = forces[s.B.I].Sub(force.Mul(1.0 - s.B.T))
	forces[s.B.J] = forces[s.B.J].Sub(force.Mul(s.B.T))
}
