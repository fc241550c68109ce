package mesh

import "sort"

// Edge identifies a tet edge by its sorted particle indices
type Edge [2]int

// MakeEdge builds the canonical (sorted) edge key for two particles
func MakeEdge(i, j int) Edge {
	if j < i {
		i, j = j, i
	}
	return Edge{i, j}
}

// Topology is the edge/face connectivity derived from the element table.
// It is rebuilt after every committed cut, never mutated in place.
type Topology struct {
	// Edges in increasing lexicographic order; this ordering is the
	// deterministic processing order for cut detection
	Edges []Edge

	edgeIndex    map[Edge]int
	tetsPerEdge  map[Edge][]int
	surfaceEdges map[Edge]bool
}

// NewTopology derives connectivity from active elements and the current
// surface triangles
func NewTopology(tets []Tet, faces [][3]int) *Topology {
	t := &Topology{
		edgeIndex:    make(map[Edge]int),
		tetsPerEdge:  make(map[Edge][]int),
		surfaceEdges: make(map[Edge]bool),
	}

	for tetID, tet := range tets {
		if !tet.Active {
			continue
		}
		n := tet.Nodes
		pairs := [6][2]int{
			{n[0], n[1]}, {n[0], n[2]}, {n[0], n[3]},
			{n[1], n[2]}, {n[1], n[3]}, {n[2], n[3]},
		}
		for _, pair := range pairs {
			edge := MakeEdge(pair[0], pair[1])
			if _, seen := t.edgeIndex[edge]; !seen {
				t.edgeIndex[edge] = len(t.Edges)
				t.Edges = append(t.Edges, edge)
			}
			t.tetsPerEdge[edge] = append(t.tetsPerEdge[edge], tetID)
		}
	}

	sort.Slice(t.Edges, func(a, b int) bool {
		if t.Edges[a][0] != t.Edges[b][0] {
			return t.Edges[a][0] < t.Edges[b][0]
		}
		return t.Edges[a][1] < t.Edges[b][1]
	})
	for i, edge := range t.Edges {
		t.edgeIndex[edge] = i
	}

	for _, face := range faces {
		t.surfaceEdges[MakeEdge(face[0], face[1])] = true
		t.surfaceEdges[MakeEdge(face[1], face[2])] = true
		t.surfaceEdges[MakeEdge(face[2], face[0])] = true
	}

	return t
}

// EdgeID returns the index of an edge, if present
func (t *Topology) EdgeID(i, j int) (int, bool) {
	id, ok := t.edgeIndex[MakeEdge(i, j)]
	return id, ok
}

// TetsPerEdge returns the element indices sharing an edge
func (t *Topology) TetsPerEdge(edge Edge) []int {
	return t.tetsPerEdge[edge]
}

// IsSurfaceEdge reports whether the edge lies on the mesh boundary
func (t *Topology) IsSurfaceEdge(edge Edge) bool {
	return t.surfaceEdges[edge]
}

// EdgeCount returns the number of unique edges
func (t *Topology) EdgeCount() int { return len(t.Edges) }
