package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
)

// Source produces the node/element arrays of a deformable body. The engine
// never parses mesh files itself; solver exports (ANSYS, meshio) are
// external collaborators that satisfy this interface by handing over
// already-decoded vertex and tetrahedron arrays.
type Source interface {
	Build(b *Builder) error
}

// GridSource procedurally generates a rectangular tetrahedral grid
type GridSource struct {
	Dim  [3]int
	Cell [3]float64

	Placement geom.Transform
	Velocity  mgl64.Vec3

	Density float64
	Mu      float64
	Lambda  float64
	Damping float64
}

func (g GridSource) Build(b *Builder) error {
	b.AddSoftGrid(g.Placement, g.Velocity,
		g.Dim[0], g.Dim[1], g.Dim[2],
		g.Cell[0], g.Cell[1], g.Cell[2],
		g.Density, g.Mu, g.Lambda, g.Damping)
	return nil
}

// TetSource wraps an externally produced tetrahedral mesh, e.g. the decoded
// output of an ANSYS export or a meshio conversion
type TetSource struct {
	Vertices []mgl64.Vec3
	Indices  []int

	Placement geom.Transform
	Scale     float64
	Velocity  mgl64.Vec3

	Density float64
	Mu      float64
	Lambda  float64
	Damping float64
}

func (s TetSource) Build(b *Builder) error {
	return b.AddSoftMesh(s.Placement, s.Scale, s.Velocity,
		s.Vertices, s.Indices,
		s.Density, s.Mu, s.Lambda, s.Damping)
}
