package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
)

// Tet is a tetrahedral FEM element. The rest pose stores the inverse of the
// initial deformation matrix Dm, so the deformation gradient at runtime is
// F = Ds * RestPose.
type Tet struct {
	Nodes    [4]int
	RestPose mgl64.Mat3
	Volume   float64

	// Lame parameters and damping, per element
	Mu      float64
	Lambda  float64
	Damping float64

	// Inactive elements are skipped by force assembly once fully severed
	Active bool
}

// Spring is a distance constraint between two particles
type Spring struct {
	I, J       int
	Ke, Kd     float64
	RestLength float64
	Control    float64
}

// Mesh holds the deformable body as index-aligned particle arrays plus
// element tables. Indices are stable: cutting appends duplicated particles
// and elements, it never reorders existing ones.
type Mesh struct {
	Positions  []mgl64.Vec3
	Velocities []mgl64.Vec3
	Mass       []float64
	InvMass    []float64
	Pinned     []bool

	// NoContact marks particles excluded from knife contact, i.e. the
	// duplicates created by cutting. Without it the blade would push apart
	// the faces it just exposed.
	NoContact []bool

	// CutExposed marks particles sitting on a surface created by a cut;
	// contact against them uses the surface constant variants.
	CutExposed []bool

	Tets    []Tet
	Springs []Spring

	// Faces are the surface triangles of the body, with outward winding
	Faces [][3]int
}

// NodeCount returns the number of particles
func (m *Mesh) NodeCount() int { return len(m.Positions) }

// TetCount returns the number of tetrahedral elements
func (m *Mesh) TetCount() int { return len(m.Tets) }

// TotalMass sums the particle masses
func (m *Mesh) TotalMass() float64 {
	total := 0.0
	for _, mass := range m.Mass {
		total += mass
	}
	return total
}

// AABB computes the bounding box of the current particle positions
func (m *Mesh) AABB() geom.AABB {
	if len(m.Positions) == 0 {
		return geom.AABB{}
	}
	return geom.FromPoints(m.Positions...)
}

// DuplicateNode appends a coincident copy of particle i and returns its
// index. The source's mass is split equally between the two copies so a cut
// never changes the total mass. Both copies are excluded from knife contact
// and flagged as cut-exposed.
func (m *Mesh) DuplicateNode(i int) int {
	id := len(m.Positions)

	if m.Mass[i] > 0 {
		m.Mass[i] /= 2
		// pinned particles keep their zero inverse mass
		if m.InvMass[i] > 0 {
			m.InvMass[i] = 1.0 / m.Mass[i]
		}
	}

	m.Positions = append(m.Positions, m.Positions[i])
	m.Velocities = append(m.Velocities, m.Velocities[i])
	m.Mass = append(m.Mass, m.Mass[i])
	m.InvMass = append(m.InvMass, m.InvMass[i])
	m.Pinned = append(m.Pinned, m.Pinned[i])
	// only the fresh copy is excluded from knife contact; both faces of the
	// cut are exposed surface
	m.NoContact = append(m.NoContact, true)
	m.CutExposed = append(m.CutExposed, true)
	m.CutExposed[i] = true

	return id
}

// DuplicateTet appends a copy of element id with rewired corner indices and
// returns the new element index
func (m *Mesh) DuplicateTet(id int, nodes [4]int) int {
	tet := m.Tets[id]
	tet.Nodes = nodes
	m.Tets = append(m.Tets, tet)
	return len(m.Tets) - 1
}
