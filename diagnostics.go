package disect

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
)

// Diagnostics summarizes the mechanical state of the body, used by the
// conservation tests and by callers watching a run for drift
type Diagnostics struct {
	Time           float64
	TotalMass      float64
	LinearMomentum mgl64.Vec3
	KineticEnergy  float64
	MaxSpeed       float64
	PinnedCount    int
	LiveCutSprings int
}

// Diagnostics computes the current summary
func (s *Simulator) Diagnostics() Diagnostics {
	d := Diagnostics{
		Time:      s.time,
		TotalMass: floats.Sum(s.mesh.Mass),
	}

	speeds := make([]float64, s.mesh.NodeCount())
	for i, v := range s.mesh.Velocities {
		m := s.mesh.Mass[i]
		d.LinearMomentum = d.LinearMomentum.Add(v.Mul(m))
		d.KineticEnergy += 0.5 * m * v.Dot(v)
		speeds[i] = v.Len()

		if s.mesh.Pinned[i] {
			d.PinnedCount++
		}
	}
	if len(speeds) > 0 {
		d.MaxSpeed = floats.Max(speeds)
	}

	if s.cutter != nil {
		d.LiveCutSprings = s.cutter.LiveSprings()
	}

	return d
}
