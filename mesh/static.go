package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
)

// StaticRegion selects the particles to pin from inclusion and exclusion
// boxes. A particle is pinned iff it lies inside the union of the include
// boxes and outside the union of the exclude boxes.
type StaticRegion struct {
	Include []geom.AABB `json:"include"`
	Exclude []geom.AABB `json:"exclude"`
}

// Mask evaluates the region once against a particle configuration
func (r StaticRegion) Mask(positions []mgl64.Vec3) []bool {
	pinned := make([]bool, len(positions))

	for i, p := range positions {
		inside := false
		for _, box := range r.Include {
			if box.ContainsPoint(p) {
				inside = true
				break
			}
		}
		if !inside {
			continue
		}
		for _, box := range r.Exclude {
			if box.ContainsPoint(p) {
				inside = false
				break
			}
		}
		pinned[i] = inside
	}

	return pinned
}

// Apply pins the selected particles on a finalized mesh. Pinned particles
// get infinite effective mass so force accumulation cannot move them.
func (r StaticRegion) Apply(m *Mesh) int {
	mask := r.Mask(m.Positions)

	count := 0
	for i, pin := range mask {
		if !pin {
			continue
		}
		m.Pinned[i] = true
		m.InvMass[i] = 0
		m.Velocities[i] = mgl64.Vec3{}
		count++
	}
	return count
}
