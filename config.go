// Package disect is an explicit finite-element cutting simulator: a
// deformable tetrahedral body advances under gravity and penalty contact
// while a rigid knife sweeps through it, severing mesh connectivity through
// relaxing cut springs.
package disect

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/contact"
	"github.com/DanielTakeshi/DiSECt/geom"
	"github.com/DanielTakeshi/DiSECt/cut"
	"github.com/DanielTakeshi/DiSECt/fem"
	"github.com/DanielTakeshi/DiSECt/knife"
	"github.com/DanielTakeshi/DiSECt/mesh"
)

// Integrator selects the time integration scheme. Only the explicit
// symplectic-Euler scheme is implemented.
type Integrator string

const INTEGRATOR_EXPLICIT Integrator = "explicit"

// GeneratorKind selects the mesh-building collaborator. Only the procedural
// grid runs in-engine; solver exports hand over decoded arrays through
// mesh.Source.
type GeneratorKind string

const (
	GENERATOR_GRID   GeneratorKind = "grid"
	GENERATOR_ANSYS  GeneratorKind = "ansys"
	GENERATOR_MESHIO GeneratorKind = "meshio"
)

// CuttingConfig enables cutting and selects the split-element force model
type CuttingConfig struct {
	Active     bool     `json:"active"`
	Mode       cut.Mode `json:"mode"`
	MaxStretch float64  `json:"max_stretch"`
}

// Geometry is the initial rigid placement of the imported body
type Geometry struct {
	Position mgl64.Vec3 `json:"position"`
	Axis     mgl64.Vec3 `json:"axis"`
	Angle    float64    `json:"angle"`
	Scale    float64    `json:"scale"`
}

// GridParams parameterize the procedural grid generator
type GridParams struct {
	Dim  [3]int     `json:"dim"`
	Cell [3]float64 `json:"cell"`
}

// Config is the immutable simulation record. The engine never parses
// files; the JSON tags only let a wrapper unmarshal stored presets into it.
type Config struct {
	Integrator  Integrator `json:"integrator"`
	SimDT       float64    `json:"sim_dt"`
	SimSubsteps int        `json:"sim_substeps"`
	SimDuration float64    `json:"sim_duration"`
	Seed        int64      `json:"seed"`
	Workers     int        `json:"workers"`

	Gravity mgl64.Vec3 `json:"gravity"`

	// material constants; Mu/Lambda override the Young/Poisson derivation
	// when set
	Young               float64 `json:"young"`
	Poisson             float64 `json:"poisson"`
	Density             float64 `json:"density"`
	Mu                  float64 `json:"mu"`
	Lambda              float64 `json:"lambda"`
	MinimumParticleMass float64 `json:"minimum_particle_mass"`

	// integrator constants
	Damping    float64 `json:"damping"`
	Relaxation float64 `json:"relaxation"`

	GroundActive bool           `json:"ground"`
	Ground       contact.Params `json:"ground_contact"`
	SDF          contact.Params `json:"sdf"`
	SurfaceSDF   contact.Params `json:"surface_sdf"`

	CutSpring        cut.SpringParams `json:"cut_spring"`
	SurfaceCutSpring cut.SpringParams `json:"surface_cut_spring"`
	Cutting          CuttingConfig    `json:"cutting"`

	KnifeType knife.Type        `json:"knife_type"`
	Blade     knife.BladeParams `json:"knife_params"`

	// trajectory: keyframes when present, otherwise the vertical drop
	KnifeMotion []knife.Keyframe `json:"knife_motion"`
	InitialY    float64          `json:"initial_y"`
	VelocityY   float64          `json:"velocity_y"`

	Generator GeneratorKind `json:"generator"`
	Grid      GridParams    `json:"grid"`
	Geometry  Geometry      `json:"geometry"`

	StaticVertices mesh.StaticRegion `json:"static_vertices"`
}

// DefaultConfig returns the slicing preset: a soft grid block on the ground
// plane with a thin blade dropping through it.
func DefaultConfig() Config {
	return Config{
		Integrator:  INTEGRATOR_EXPLICIT,
		SimDT:       1e-5,
		SimSubsteps: 100,
		SimDuration: 1.0,
		Workers:     1,

		Gravity: mgl64.Vec3{0, -9.81, 0},

		Young:               1e5,
		Poisson:             0.45,
		Density:             1000,
		MinimumParticleMass: 1e-8,

		Damping:    10,
		Relaxation: 0.9,

		GroundActive: true,
		Ground:       contact.Params{Ke: 100, Kd: 1, Kf: 10, Mu: 0.5, Radius: 0.005},
		SDF:          contact.Params{Ke: 500, Kd: 1, Kf: 0.01, Mu: 0.5, Radius: 0.001},
		SurfaceSDF:   contact.Params{Ke: 500, Kd: 1, Kf: 0.01, Mu: 0.5, Radius: 0.001},

		CutSpring:        cut.SpringParams{Ke: 500, Kd: 0.1, Softness: 50},
		SurfaceCutSpring: cut.SpringParams{Ke: 2000, Kd: 0.1, Softness: 50},
		Cutting:          CuttingConfig{Active: true, Mode: cut.ModeFEM, MaxStretch: 0.01},

		KnifeType: knife.TypeSlicing,
		Blade:     knife.DefaultBladeParams(),
		InitialY:  0.08,
		VelocityY: -0.05,

		Generator: GENERATOR_GRID,
		Grid:      GridParams{Dim: [3]int{8, 2, 8}, Cell: [3]float64{0.01, 0.01, 0.01}},
		Geometry:  Geometry{Scale: 1},
	}
}

// Material bundles the configured elasticity constants
func (c Config) Material() fem.Material {
	return fem.Material{Young: c.Young, Poisson: c.Poisson, Density: c.Density}
}

// Lame returns the configured Lame parameters, honoring explicit overrides
func (c Config) Lame() (mu, lambda float64) {
	if c.Mu > 0 || c.Lambda > 0 {
		return c.Mu, c.Lambda
	}
	return fem.Lame(c.Young, c.Poisson)
}

// Frames is the number of reported frames during the configured duration;
// a trailing partial frame is truncated
func (c Config) Frames() int {
	return int(c.SimDuration / (c.SimDT * float64(c.SimSubsteps)))
}

// Validate checks the whole record before the simulation starts
func (c Config) Validate() error {
	if c.Integrator != INTEGRATOR_EXPLICIT {
		return &ConfigError{Field: "integrator", Reason: "only \"explicit\" is supported"}
	}
	if c.SimDT <= 0 {
		return &ConfigError{Field: "sim_dt", Reason: "must be positive"}
	}
	if c.SimSubsteps < 1 {
		return &ConfigError{Field: "sim_substeps", Reason: "must be at least 1"}
	}
	if c.SimDuration <= 0 {
		return &ConfigError{Field: "sim_duration", Reason: "must be positive"}
	}
	if c.Damping < 0 {
		return &ConfigError{Field: "damping", Reason: "must be non-negative"}
	}
	if c.Relaxation <= 0 || c.Relaxation > 1 {
		return &ConfigError{Field: "relaxation", Reason: "must be in (0, 1]"}
	}
	if c.MinimumParticleMass < 0 {
		return &ConfigError{Field: "minimum_particle_mass", Reason: "must be non-negative"}
	}

	if c.Mu == 0 && c.Lambda == 0 {
		if err := c.Material().Validate(); err != nil {
			return &ConfigError{Field: "material", Reason: err.Error()}
		}
	} else if c.Mu < 0 || c.Lambda < 0 {
		return &ConfigError{Field: "mu/lambda", Reason: "must be non-negative"}
	}

	if err := c.Ground.Validate(); err != nil {
		return &ConfigError{Field: "ground_contact", Reason: err.Error()}
	}
	if err := c.SDF.Validate(); err != nil {
		return &ConfigError{Field: "sdf", Reason: err.Error()}
	}
	if err := c.SurfaceSDF.Validate(); err != nil {
		return &ConfigError{Field: "surface_sdf", Reason: err.Error()}
	}

	for _, s := range []struct {
		field  string
		params cut.SpringParams
	}{
		{"cut_spring", c.CutSpring},
		{"surface_cut_spring", c.SurfaceCutSpring},
	} {
		if s.params.Ke < 0 || s.params.Kd < 0 || s.params.Softness < 0 || s.params.RestLength < 0 {
			return &ConfigError{Field: s.field, Reason: "constants must be non-negative"}
		}
	}

	if c.Cutting.Active {
		switch c.Cutting.Mode {
		case cut.ModeFEM, cut.ModeSpring:
		default:
			return &ConfigError{Field: "cutting.mode", Reason: "unknown mode"}
		}
	}

	switch c.KnifeType {
	case knife.TypeSlicing, knife.TypeBlunt:
	default:
		return &ConfigError{Field: "knife_type", Reason: "unknown knife type"}
	}

	if len(c.KnifeMotion) > 0 {
		if err := (knife.Track{Frames: c.KnifeMotion}).Validate(); err != nil {
			return &ConfigError{Field: "knife_motion", Reason: err.Error()}
		}
	}

	switch c.Generator {
	case GENERATOR_GRID, GENERATOR_ANSYS, GENERATOR_MESHIO:
	default:
		return &ConfigError{Field: "generator", Reason: "unknown generator"}
	}

	if c.Geometry.Scale <= 0 {
		return &ConfigError{Field: "geometry.scale", Reason: "must be positive"}
	}

	return nil
}

// GridSource builds the procedural-grid collaborator from the configured
// generator parameters and material
func (c Config) GridSource() mesh.GridSource {
	mu, lambda := c.Lame()
	placement := geomPlacement(c.Geometry)

	// the uniform geometry scale acts on the cell size
	cell := c.Grid.Cell
	for i := range cell {
		cell[i] *= c.Geometry.Scale
	}

	return mesh.GridSource{
		Dim:       c.Grid.Dim,
		Cell:      cell,
		Placement: placement,
		Density:   c.Density,
		Mu:        mu,
		Lambda:    lambda,
	}
}

// geomPlacement converts the configured placement into a rigid transform
func geomPlacement(g Geometry) geom.Transform {
	return geom.FromAxisAngle(g.Position, g.Axis, g.Angle)
}

// BuildMesh runs a mesh source, finalizes the body and applies the static
// pin mask
func BuildMesh(c Config, source mesh.Source) (*mesh.Mesh, error) {
	b := mesh.NewBuilder()
	if err := source.Build(b); err != nil {
		return nil, &MeshError{Stage: "import", Err: err}
	}

	m, err := b.Finalize(c.MinimumParticleMass)
	if err != nil {
		return nil, &MeshError{Stage: "finalize", Err: err}
	}

	c.StaticVertices.Apply(m)
	return m, nil
}
