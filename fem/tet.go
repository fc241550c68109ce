package fem

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/mesh"
)

// VolumeFloor is the relative volume below which an element counts as
// degenerate. Elastic forces fade to zero as the element collapses past it
// instead of blowing up.
const VolumeFloor = 0.05

// TetForces evaluates the St.Venant-Kirchhoff nodal forces of one element
// from the current particle positions and velocities. The returned forces
// are ordered like tet.Nodes; their sum is exactly zero, so internal forces
// never change linear momentum. degenerate reports a clamped element.
func TetForces(positions, velocities []mgl64.Vec3, tet mesh.Tet) (forces [4]mgl64.Vec3, degenerate bool) {
	n := tet.Nodes
	x0 := positions[n[0]]

	ds := mgl64.Mat3FromCols(
		positions[n[1]].Sub(x0),
		positions[n[2]].Sub(x0),
		positions[n[3]].Sub(x0),
	)

	// deformation gradient
	f := ds.Mul3(tet.RestPose)

	jacobian := f.Det()
	scale := 1.0
	if jacobian < VolumeFloor {
		degenerate = true
		scale = math.Max(0, jacobian/VolumeFloor)
	}

	// Green strain E = (F^T F - I) / 2
	e := f.Transpose().Mul3(f).Sub(mgl64.Ident3()).Mul(0.5)

	// second Piola-Kirchhoff stress S = 2 mu E + lambda tr(E) I
	s := e.Mul(2.0 * tet.Mu).Add(mgl64.Ident3().Mul(tet.Lambda * e.Trace()))

	// first Piola-Kirchhoff stress
	p := f.Mul3(s)

	if tet.Damping > 0 {
		v0 := velocities[n[0]]
		dsDot := mgl64.Mat3FromCols(
			velocities[n[1]].Sub(v0),
			velocities[n[2]].Sub(v0),
			velocities[n[3]].Sub(v0),
		)
		fDot := dsDot.Mul3(tet.RestPose)
		p = p.Add(fDot.Mul(tet.Damping))
	}

	// virtual work assembly: H = -V0 * P * invDm^T
	h := p.Mul3(tet.RestPose.Transpose()).Mul(-tet.Volume * scale)

	forces[1] = h.Col(0)
	forces[2] = h.Col(1)
	forces[3] = h.Col(2)
	forces[0] = forces[1].Add(forces[2]).Add(forces[3]).Mul(-1)

	for i := range forces {
		if !finiteVec(forces[i]) {
			// non-finite state, drop the whole contribution
			return [4]mgl64.Vec3{}, true
		}
	}

	return forces, degenerate
}

// SpringForce evaluates the force a distance spring applies to particle I;
// particle J receives the negation
func SpringForce(positions, velocities []mgl64.Vec3, s mesh.Spring) mgl64.Vec3 {
	delta := positions[s.I].Sub(positions[s.J])
	length := delta.Len()
	if length == 0 {
		return mgl64.Vec3{}
	}
	dir := delta.Mul(1.0 / length)

	rest := s.RestLength * (1.0 - s.Control)
	stretch := length - rest
	rate := velocities[s.I].Sub(velocities[s.J]).Dot(dir)

	return dir.Mul(-(s.Ke*stretch + s.Kd*rate))
}

// StiffnessEstimate bounds the local stiffness of an element, used for
// stable timestep checks
func StiffnessEstimate(tet mesh.Tet) float64 {
	return 2.0*tet.Mu + tet.Lambda
}

// StableTimestep estimates an upper bound on the explicit timestep for the
// whole mesh from the stiffest element and the lightest adjacent particle.
func StableTimestep(m *mesh.Mesh) float64 {
	dt := math.Inf(1)
	for _, tet := range m.Tets {
		if !tet.Active {
			continue
		}
		k := StiffnessEstimate(tet) * tet.Volume
		if k <= 0 {
			continue
		}
		for _, ni := range tet.Nodes {
			if m.InvMass[ni] == 0 {
				continue
			}
			candidate := 2.0 * math.Sqrt(1.0/(m.InvMass[ni]*k))
			if candidate < dt {
				dt = candidate
			}
		}
	}
	return dt
}

func finiteVec(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}
