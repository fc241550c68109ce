package cut

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
)

// cellKey addresses a cell of the uniform spatial grid
type cellKey struct {
	X, Y, Z int
}

// spatialGrid is a uniform hashed grid over mesh-edge bounding boxes. It
// culls the edge set before the exact knife-facet intersection tests.
type spatialGrid struct {
	cellSize float64
	cells    []cell
	cellMask int
}

type cell struct {
	edgeIDs []int
}

func newSpatialGrid(cellSize float64, numCells int) *spatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]cell, numCells)
	for i := range cells {
		cells[i].edgeIDs = make([]int, 0, 8)
	}

	return &spatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// insert registers an edge in every cell its bounding box touches
func (sg *spatialGrid) insert(edgeID int, box geom.AABB) {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				idx := sg.hashCell(cellKey{x, y, z})
				sg.cells[idx].edgeIDs = append(sg.cells[idx].edgeIDs, edgeID)
			}
		}
	}
}

func (sg *spatialGrid) clear() {
	for i := range sg.cells {
		sg.cells[i].edgeIDs = sg.cells[i].edgeIDs[:0]
	}
}

// query returns the edge ids whose cells overlap the box, deduplicated and
// in increasing order so downstream processing stays deterministic
func (sg *spatialGrid) query(box geom.AABB) []int {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	seen := make(map[int]bool)
	var ids []int

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				idx := sg.hashCell(cellKey{x, y, z})
				for _, id := range sg.cells[idx].edgeIDs {
					if !seen[id] {
						seen[id] = true
						ids = append(ids, id)
					}
				}
			}
		}
	}

	sort.Ints(ids)
	return ids
}

func (sg *spatialGrid) worldToCell(pos mgl64.Vec3) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *spatialGrid) hashCell(key cellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
