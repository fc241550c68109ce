package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
)

// Builder incrementally assembles a deformable body. Elements are created
// with rest shapes taken from the particle positions at the time they are
// added, so placement transforms must be applied to particles first (the
// AddSoft* helpers do this).
type Builder struct {
	positions  []mgl64.Vec3
	velocities []mgl64.Vec3
	mass       []float64

	tets    []Tet
	springs []Spring

	// open faces keyed by sorted corner indices; a face seen twice is
	// interior and removed, what remains is the surface
	openFaces map[[3]int][3]int

	// degenerate element reports, surfaced at Finalize
	degenerate []int
}

// NewBuilder creates an empty mesh builder
func NewBuilder() *Builder {
	return &Builder{
		openFaces: make(map[[3]int][3]int),
	}
}

// AddParticle adds a single particle and returns its index.
// A zero mass creates a kinematic particle not subject to dynamics.
func (b *Builder) AddParticle(pos, vel mgl64.Vec3, mass float64) int {
	b.positions = append(b.positions, pos)
	b.velocities = append(b.velocities, vel)
	b.mass = append(b.mass, mass)

	return len(b.positions) - 1
}

// AddSpring adds a distance spring between two particles. The rest length
// is taken from the current particle configuration.
func (b *Builder) AddSpring(i, j int, ke, kd, control float64) {
	rest := b.positions[i].Sub(b.positions[j]).Len()

	b.springs = append(b.springs, Spring{
		I: i, J: j,
		Ke: ke, Kd: kd,
		RestLength: rest,
		Control:    control,
	})
}

// AddTetrahedron adds a tetrahedral FEM element between four particles and
// returns its signed rest volume. Elements with non-positive volume are
// recorded as degenerate and skipped.
func (b *Builder) AddTetrahedron(i, j, k, l int, mu, lambda, damping float64) float64 {
	p := b.positions[i]
	q := b.positions[j]
	r := b.positions[k]
	s := b.positions[l]

	dm := mgl64.Mat3FromCols(q.Sub(p), r.Sub(p), s.Sub(p))
	volume := dm.Det() / 6.0

	if volume <= 0 {
		b.degenerate = append(b.degenerate, len(b.tets))
		return volume
	}

	b.tets = append(b.tets, Tet{
		Nodes:    [4]int{i, j, k, l},
		RestPose: dm.Inv(),
		Volume:   volume,
		Mu:       mu,
		Lambda:   lambda,
		Damping:  damping,
		Active:   true,
	})

	b.addFace(i, k, j)
	b.addFace(j, k, l)
	b.addFace(i, j, l)
	b.addFace(i, l, k)

	return volume
}

func (b *Builder) addFace(i, j, k int) {
	key := faceKey(i, j, k)
	if _, seen := b.openFaces[key]; seen {
		delete(b.openFaces, key)
	} else {
		b.openFaces[key] = [3]int{i, j, k}
	}
}

func faceKey(i, j, k int) [3]int {
	key := [3]int{i, j, k}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	if key[1] > key[2] {
		key[1], key[2] = key[2], key[1]
	}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	return key
}

// AddSoftGrid creates a rectangular tetrahedral grid. Each hexahedral cell
// decomposes into 5 tetrahedra, flipped by cell parity so neighbouring cells
// share diagonals. Surface triangles are collected from the open faces.
func (b *Builder) AddSoftGrid(placement geom.Transform, vel mgl64.Vec3, dimX, dimY, dimZ int, cellX, cellY, cellZ float64, density, mu, lambda, damping float64) {
	start := len(b.positions)

	mass := cellX * cellY * cellZ * density

	for z := 0; z <= dimZ; z++ {
		for y := 0; y <= dimY; y++ {
			for x := 0; x <= dimX; x++ {
				local := mgl64.Vec3{float64(x) * cellX, float64(y) * cellY, float64(z) * cellZ}
				b.AddParticle(placement.Apply(local), vel, mass)
			}
		}
	}

	gridIndex := func(x, y, z int) int {
		return start + (dimX+1)*(dimY+1)*z + (dimX+1)*y + x
	}

	addTet := func(i, j, k, l int) {
		b.AddTetrahedron(i, j, k, l, mu, lambda, damping)
	}

	for z := 0; z < dimZ; z++ {
		for y := 0; y < dimY; y++ {
			for x := 0; x < dimX; x++ {
				v0 := gridIndex(x, y, z)
				v1 := gridIndex(x+1, y, z)
				v2 := gridIndex(x+1, y, z+1)
				v3 := gridIndex(x, y, z+1)
				v4 := gridIndex(x, y+1, z)
				v5 := gridIndex(x+1, y+1, z)
				v6 := gridIndex(x+1, y+1, z+1)
				v7 := gridIndex(x, y+1, z+1)

				if (x&1)^(y&1)^(z&1) != 0 {
					addTet(v0, v1, v4, v3)
					addTet(v2, v3, v6, v1)
					addTet(v5, v4, v1, v6)
					addTet(v7, v6, v3, v4)
					addTet(v4, v1, v6, v3)
				} else {
					addTet(v1, v2, v5, v0)
					addTet(v3, v0, v7, v2)
					addTet(v4, v7, v0, v5)
					addTet(v6, v5, v2, v7)
					addTet(v5, v2, v7, v0)
				}
			}
		}
	}
}

// AddSoftMesh creates elements from an externally generated tetrahedral
// mesh (vertices plus 4 indices per element). Particle masses are
// volume-weighted: each element distributes density*volume/4 to its corners.
func (b *Builder) AddSoftMesh(placement geom.Transform, scale float64, vel mgl64.Vec3, vertices []mgl64.Vec3, indices []int, density, mu, lambda, damping float64) error {
	if len(indices)%4 != 0 {
		return fmt.Errorf("soft mesh: index count %d is not a multiple of 4", len(indices))
	}
	if scale == 0 {
		scale = 1
	}

	start := len(b.positions)

	for _, v := range vertices {
		b.AddParticle(placement.Apply(v.Mul(scale)), vel, 0)
	}

	for t := 0; t < len(indices)/4; t++ {
		v0 := start + indices[t*4+0]
		v1 := start + indices[t*4+1]
		v2 := start + indices[t*4+2]
		v3 := start + indices[t*4+3]

		volume := b.AddTetrahedron(v0, v1, v2, v3, mu, lambda, damping)
		if volume <= 0 {
			continue
		}

		share := density * volume / 4.0
		b.mass[v0] += share
		b.mass[v1] += share
		b.mass[v2] += share
		b.mass[v3] += share
	}

	return nil
}

// DegenerateElements returns the indices of elements rejected for
// non-positive rest volume
func (b *Builder) DegenerateElements() []int { return b.degenerate }

// Finalize validates the built body and produces the simulation mesh.
// Positive masses are clamped to minimumMass; zero-mass particles stay
// kinematic (infinite effective mass).
func (b *Builder) Finalize(minimumMass float64) (*Mesh, error) {
	n := len(b.positions)
	if n == 0 {
		return nil, fmt.Errorf("finalize: empty mesh")
	}
	if len(b.tets) == 0 {
		return nil, fmt.Errorf("finalize: mesh has no elements")
	}

	m := &Mesh{
		Positions:  append([]mgl64.Vec3(nil), b.positions...),
		Velocities: append([]mgl64.Vec3(nil), b.velocities...),
		Mass:       append([]float64(nil), b.mass...),
		InvMass:    make([]float64, n),
		Pinned:     make([]bool, n),
		NoContact:  make([]bool, n),
		CutExposed: make([]bool, n),
		Tets:       append([]Tet(nil), b.tets...),
		Springs:    append([]Spring(nil), b.springs...),
	}

	for i, mass := range m.Mass {
		if mass < 0 || math.IsNaN(mass) {
			return nil, fmt.Errorf("finalize: particle %d has invalid mass %v", i, mass)
		}
		if mass > 0 && mass < minimumMass {
			m.Mass[i] = minimumMass
			mass = minimumMass
		}
		if mass > 0 {
			m.InvMass[i] = 1.0 / mass
		}
	}

	// surface triangles in deterministic order
	keys := make([][3]int, 0, len(b.openFaces))
	for key := range b.openFaces {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, c int) bool {
		if keys[a][0] != keys[c][0] {
			return keys[a][0] < keys[c][0]
		}
		if keys[a][1] != keys[c][1] {
			return keys[a][1] < keys[c][1]
		}
		return keys[a][2] < keys[c][2]
	})
	for _, key := range keys {
		m.Faces = append(m.Faces, b.openFaces[key])
	}

	return m, nil
}
