package knife

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DanielTakeshi/DiSECt/sdf"
)

// Type selects the blade geometry and cutting behaviour
type Type string

const (
	// TypeSlicing is a thin wedge blade whose midplane facets sever mesh
	// edges as they sweep through
	TypeSlicing Type = "slicing"
	// TypeBlunt is a rounded bar that only pushes on the body through
	// contact, it never cuts
	TypeBlunt Type = "blunt"
)

// Profile is the capability interface behind the knife_type selector
type Profile interface {
	// Solid is the rigid collider in the knife's local frame
	Solid() sdf.SDF3
	// CuttingTriangles returns the local-space cutting facets, empty for
	// profiles that cannot cut
	CuttingTriangles() [][3]r3.Vec
}

// BladeParams are the blade profile dimensions
type BladeParams struct {
	SpineDim    float64 `json:"spine_dim"`
	SpineHeight float64 `json:"spine_height"`
	EdgeDim     float64 `json:"edge_dim"`
	TipHeight   float64 `json:"tip_height"`
	Depth       float64 `json:"depth"`
}

// DefaultBladeParams matches a small paring blade
func DefaultBladeParams() BladeParams {
	return BladeParams{
		SpineDim:    0.002,
		SpineHeight: 0.04,
		EdgeDim:     0.0005,
		TipHeight:   0.01,
		Depth:       0.15,
	}
}

// NewProfile dispatches the knife type string to a concrete profile
func NewProfile(kind Type, params BladeParams) (Profile, error) {
	switch kind {
	case TypeSlicing:
		return slicingProfile{blade: sdf.NewBlade(params.SpineDim, params.SpineHeight, params.EdgeDim, params.TipHeight, params.Depth)}, nil
	case TypeBlunt:
		return bluntProfile{params: params}, nil
	default:
		return nil, fmt.Errorf("unknown knife type %q", kind)
	}
}

type slicingProfile struct {
	blade *sdf.Blade
}

func (p slicingProfile) Solid() sdf.SDF3 { return p.blade }

func (p slicingProfile) CuttingTriangles() [][3]r3.Vec {
	return p.blade.SurfaceTriangles()
}

type bluntProfile struct {
	params BladeParams
}

func (p bluntProfile) Solid() sdf.SDF3 {
	half := p.params.Depth / 2
	// SpineDim is the full bar thickness, matching the wedge profile
	return sdf.Capsule(r3.Vec{Z: -half}, r3.Vec{Z: half}, p.params.SpineDim/2)
}

func (p bluntProfile) CuttingTriangles() [][3]r3.Vec { return nil }
