// Package cut mutates mesh topology at runtime as the knife sweeps through
// the body: it detects edge/blade crossings, duplicates the affected
// particles, rewires elements to either side of the cut and bridges the
// halves with relaxing cut springs.
package cut

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
	"github.com/DanielTakeshi/DiSECt/knife"
	"github.com/DanielTakeshi/DiSECt/mesh"
)

// Mode selects how split elements keep generating forces
type Mode string

const (
	// ModeFEM keeps full finite-element forces on both halves of a split
	// element
	ModeFEM Mode = "fem"
	// ModeSpring drops split elements to free point masses held only by
	// their cut springs until those relax
	ModeSpring Mode = "spring"
)

// EdgeState is the lifecycle of a mesh edge under the advancing knife
type EdgeState int

const (
	// EdgeIntact edges are candidates for cutting
	EdgeIntact EdgeState = iota
	// EdgeSplitting edges have been severed and still carry a live spring
	EdgeSplitting
	// EdgeSplit edges are fully separated, re-splitting them is a no-op
	EdgeSplit
)

// Params configure the cutting engine
type Params struct {
	Interior SpringParams
	Surface  SpringParams

	Mode Mode

	// MaxStretch breaks a spring stretched this far past rest length
	MaxStretch float64
	// Tolerance for the exact edge/facet intersection test
	Tolerance float64
	// GridCell is the culling grid cell size, typically a small multiple
	// of the mean edge length
	GridCell float64
}

// Report summarizes what one engine step changed
type Report struct {
	SpringsCreated  int
	SpringsReleased int
	TetsRewired     int
}

// Engine owns the cut state of one mesh. Topology mutations are staged
// during detection and committed by a single writer before any force pass
// reads connectivity again.
type Engine struct {
	params Params
	mesh   *mesh.Mesh

	top   *mesh.Topology
	grid  *spatialGrid
	dirty bool

	states map[mesh.Edge]EdgeState
	dup    map[int]int
	above  map[int]bool

	// cut edges per element, for the >=3 rewiring threshold
	cutEdgesPerTet map[int]int
	rewiredTets    map[int]bool

	Springs []*Spring
}

// staged is one detected edge/facet crossing awaiting commit
type staged struct {
	edgeID int
	edge   mesh.Edge
	t      float64
	normal mgl64.Vec3
	aAbove bool
}

// NewEngine prepares the cutting state for a finalized mesh
func NewEngine(params Params, m *mesh.Mesh) *Engine {
	if params.Mode == "" {
		params.Mode = ModeFEM
	}
	if params.Tolerance == 0 {
		params.Tolerance = 1e-8
	}

	e := &Engine{
		params:         params,
		mesh:           m,
		states:         make(map[mesh.Edge]EdgeState),
		dup:            make(map[int]int),
		above:          make(map[int]bool),
		cutEdgesPerTet: make(map[int]int),
		rewiredTets:    make(map[int]bool),
	}
	e.rebuild()
	return e
}

// rebuild refreshes the derived topology and the culling grid after a
// committed mutation
func (e *Engine) rebuild() {
	e.top = mesh.NewTopology(e.mesh.Tets, e.mesh.Faces)

	cellSize := e.params.GridCell
	if cellSize == 0 {
		cellSize = e.meanEdgeLength() * 2
		if cellSize == 0 {
			cellSize = 1
		}
	}

	e.grid = newSpatialGrid(cellSize, e.top.EdgeCount()*2)
	for id, edge := range e.top.Edges {
		if e.states[edge] != EdgeIntact {
			continue
		}
		box := geom.FromPoints(e.mesh.Positions[edge[0]], e.mesh.Positions[edge[1]])
		e.grid.insert(id, box)
	}

	e.dirty = false
}

func (e *Engine) meanEdgeLength() float64 {
	if e.top.EdgeCount() == 0 {
		return 0
	}
	total := 0.0
	for _, edge := range e.top.Edges {
		total += e.mesh.Positions[edge[1]].Sub(e.mesh.Positions[edge[0]]).Len()
	}
	return total / float64(e.top.EdgeCount())
}

// Step runs one detection/commit cycle against the knife's swept cutting
// facets, then advances the live springs. workers bounds the detection
// parallelism; results are independent of it.
func (e *Engine) Step(k *knife.Knife, previous geom.Transform, dt float64, workers int) Report {
	var report Report

	triangles := k.SweptTriangles(previous)
	if len(triangles) > 0 {
		if e.dirty {
			e.rebuild()
		}

		hits := e.detect(triangles, workers)
		report = e.commit(hits)
	}

	for _, s := range e.Springs {
		if s.Advance(dt, e.params.MaxStretch, e.mesh.Positions) {
			edge := mesh.MakeEdge(s.A.I, s.B.J)
			e.states[edge] = EdgeSplit
			report.SpringsReleased++
		}
	}

	return report
}

// detect finds all intact edges crossed by the cutting facets. Candidates
// come pre-sorted from the grid; the parallel fan-out keeps per-worker
// order and the merge re-sorts, so the result is deterministic.
func (e *Engine) detect(triangles [][3]mgl64.Vec3, workers int) []staged {
	candidateSet := make(map[int][]int) // edge id -> triangle ids
	var candidates []int

	for triID, tri := range triangles {
		box := geom.FromPoints(tri[0], tri[1], tri[2])
		for _, edgeID := range e.grid.query(box) {
			if _, seen := candidateSet[edgeID]; !seen {
				candidates = append(candidates, edgeID)
			}
			candidateSet[edgeID] = append(candidateSet[edgeID], triID)
		}
	}
	sort.Ints(candidates)

	if workers < 1 {
		workers = 1
	}

	results := make([][]staged, workers)
	chunk := (len(candidates) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, len(candidates))
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			for _, edgeID := range candidates[start:end] {
				edge := e.top.Edges[edgeID]
				if e.states[edge] != EdgeIntact {
					continue
				}

				p0 := e.mesh.Positions[edge[0]]
				p1 := e.mesh.Positions[edge[1]]

				for _, triID := range candidateSet[edgeID] {
					tri := triangles[triID]
					t, ok := segmentTriangle(p0, p1, tri[0], tri[1], tri[2], e.params.Tolerance)
					if !ok {
						continue
					}

					results[worker] = append(results[worker], staged{
						edgeID: edgeID,
						edge:   edge,
						t:      t,
						normal: triangleNormal(tri[0], tri[1], tri[2]).Normalize(),
						aAbove: isAbove(p0, tri[0], tri[1], tri[2]),
					})
					// first crossing wins for this edge
					break
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	var hits []staged
	for _, r := range results {
		hits = append(hits, r...)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].edgeID < hits[j].edgeID })

	return hits
}

// commit applies staged splits in increasing edge order: duplicate the
// endpoints, install the bridging spring, rewire elements that have enough
// cut edges, and mark the derived half-edges split so they are never
// re-cut.
func (e *Engine) commit(hits []staged) Report {
	var report Report
	if len(hits) == 0 {
		return report
	}

	touchedTets := make(map[int]bool)

	for _, hit := range hits {
		if e.states[hit.edge] != EdgeIntact {
			continue
		}

		a, b := hit.edge[0], hit.edge[1]
		dupA := e.duplicate(a)
		dupB := e.duplicate(b)

		// classify the above side; the duplicate inherits its source's side
		if hit.aAbove {
			e.above[a] = true
			e.above[dupA] = true
		} else {
			e.above[b] = true
			e.above[dupB] = true
		}

		// the spring connects the two virtual intersection points, one on
		// each half of the severed edge, oriented base-to-tip from the
		// above side
		var springA, springB VirtualPoint
		if hit.aAbove {
			springA = VirtualPoint{I: a, J: dupB, T: hit.t}
			springB = VirtualPoint{I: dupA, J: b, T: hit.t}
		} else {
			springA = VirtualPoint{I: b, J: dupA, T: 1 - hit.t}
			springB = VirtualPoint{I: dupB, J: a, T: 1 - hit.t}
		}

		params := e.params.Interior
		surface := e.top.IsSurfaceEdge(hit.edge)
		if surface {
			params = e.params.Surface
		}

		e.Springs = append(e.Springs, &Spring{
			A:       springA,
			B:       springB,
			Params:  params,
			Normal:  hit.normal,
			Surface: surface,
		})
		report.SpringsCreated++

		e.states[hit.edge] = EdgeSplitting
		e.states[mesh.MakeEdge(a, dupB)] = EdgeSplit
		e.states[mesh.MakeEdge(dupA, b)] = EdgeSplit
		e.states[mesh.MakeEdge(dupA, dupB)] = EdgeSplit

		for _, tetID := range e.top.TetsPerEdge(hit.edge) {
			e.cutEdgesPerTet[tetID]++
			touchedTets[tetID] = true
		}
	}

	report.TetsRewired = e.rewire(touchedTets)

	if report.SpringsCreated > 0 || report.TetsRewired > 0 {
		e.dirty = true
	}

	return report
}

// duplicate returns the cut copy of a particle, creating it on first use
func (e *Engine) duplicate(node int) int {
	if id, ok := e.dup[node]; ok {
		return id
	}
	id := e.mesh.DuplicateNode(node)
	e.dup[node] = id
	// the copy starts on the same side as its source
	if e.above[node] {
		e.above[id] = true
	}
	return id
}

// rewire splits every touched element with at least 3 cut edges into an
// above copy and a below copy. Elements with fewer cut edges stay partially
// cut until later steps sever more of their edges.
func (e *Engine) rewire(touched map[int]bool) int {
	ids := make([]int, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	count := 0
	for _, tetID := range ids {
		if e.rewiredTets[tetID] || e.cutEdgesPerTet[tetID] < 3 {
			continue
		}

		nodes := e.mesh.Tets[tetID].Nodes

		// every corner needs a duplicate before the element can split
		ready := true
		for _, n := range nodes {
			if _, ok := e.dup[n]; !ok {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}

		var aboveNodes, belowNodes [4]int
		for i, n := range nodes {
			if e.above[n] {
				aboveNodes[i] = n
				belowNodes[i] = e.dup[n]
			} else {
				aboveNodes[i] = e.dup[n]
				belowNodes[i] = n
			}
		}

		// seal every crossing corner pair; an uncut crossing edge no
		// longer exists after the rewire and must never be cut later
		for p := 0; p < 4; p++ {
			for q := p + 1; q < 4; q++ {
				if e.above[nodes[p]] == e.above[nodes[q]] {
					continue
				}
				for _, edge := range []mesh.Edge{
					mesh.MakeEdge(nodes[p], nodes[q]),
					mesh.MakeEdge(nodes[p], e.dup[nodes[q]]),
					mesh.MakeEdge(e.dup[nodes[p]], nodes[q]),
					mesh.MakeEdge(e.dup[nodes[p]], e.dup[nodes[q]]),
				} {
					if e.states[edge] == EdgeIntact {
						e.states[edge] = EdgeSplit
					}
				}
			}
		}

		e.mesh.Tets[tetID].Nodes = aboveNodes
		belowID := e.mesh.DuplicateTet(tetID, belowNodes)

		e.rewiredTets[tetID] = true
		e.rewiredTets[belowID] = true
		count++

		if e.params.Mode == ModeSpring {
			e.mesh.Tets[tetID].Active = false
			e.mesh.Tets[belowID].Active = false
		}
	}

	return count
}

// Accumulate adds all live cut-spring forces into the per-particle array
func (e *Engine) Accumulate(forces []mgl64.Vec3) {
	for _, s := range e.Springs {
		s.Accumulate(forces, e.mesh.Positions, e.mesh.Velocities)
	}
}

// LiveSprings counts springs still bridging the cut
func (e *Engine) LiveSprings() int {
	count := 0
	for _, s := range e.Springs {
		if s.State() == StateSplitting {
			count++
		}
	}
	return count
}

// EdgeStateOf reports the cut state of an edge
func (e *Engine) EdgeStateOf(i, j int) EdgeState {
	return e.states[mesh.MakeEdge(i, j)]
}

// Duplicates exposes the original→copy particle mapping
func (e *Engine) Duplicates() map[int]int { return e.dup }
