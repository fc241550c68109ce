package disect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielTakeshi/DiSECt/fem"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown integrator", func(c *Config) { c.Integrator = "implicit" }, "integrator"},
		{"non-positive dt", func(c *Config) { c.SimDT = 0 }, "sim_dt"},
		{"zero substeps", func(c *Config) { c.SimSubsteps = 0 }, "sim_substeps"},
		{"negative duration", func(c *Config) { c.SimDuration = -1 }, "sim_duration"},
		{"negative damping", func(c *Config) { c.Damping = -1 }, "damping"},
		{"zero relaxation", func(c *Config) { c.Relaxation = 0 }, "relaxation"},
		{"incompressible poisson", func(c *Config) { c.Poisson = 0.5 }, "material"},
		{"negative ground stiffness", func(c *Config) { c.Ground.Ke = -1 }, "ground_contact"},
		{"negative cut spring", func(c *Config) { c.CutSpring.Ke = -1 }, "cut_spring"},
		{"unknown cut mode", func(c *Config) { c.Cutting.Mode = "xpbd" }, "cutting.mode"},
		{"unknown knife type", func(c *Config) { c.KnifeType = "serrated" }, "knife_type"},
		{"unknown generator", func(c *Config) { c.Generator = "tetgen" }, "generator"},
		{"zero geometry scale", func(c *Config) { c.Geometry.Scale = 0 }, "geometry.scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var configErr *ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.field, configErr.Field)
		})
	}
}

func TestGridSourceAppliesScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.Scale = 2.5

	src := cfg.GridSource()
	for i := range src.Cell {
		assert.InDelta(t, cfg.Grid.Cell[i]*2.5, src.Cell[i], 1e-15)
	}
}

func TestConfigLame(t *testing.T) {
	cfg := DefaultConfig()

	mu, lambda := cfg.Lame()
	wantMu, wantLambda := fem.Lame(cfg.Young, cfg.Poisson)
	assert.Equal(t, wantMu, mu)
	assert.Equal(t, wantLambda, lambda)

	// explicit overrides win over the derivation
	cfg.Mu = 123
	cfg.Lambda = 456
	mu, lambda = cfg.Lame()
	assert.Equal(t, 123.0, mu)
	assert.Equal(t, 456.0, lambda)
}

func TestConfigFramesTruncates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimDT = 1e-3
	cfg.SimSubsteps = 10
	cfg.SimDuration = 0.095

	// 9.5 frames truncate to 9
	assert.Equal(t, 9, cfg.Frames())
}

func TestBuildMeshAppliesStaticMask(t *testing.T) {
	cfg := slicingConfig()

	m, err := BuildMesh(cfg, cfg.GridSource())
	require.NoError(t, err)

	pinned := 0
	for i, p := range m.Positions {
		if m.Pinned[i] {
			pinned++
			assert.InDelta(t, -0.01, p.Y(), 1e-9)
		}
	}
	// the 3x3 bottom layer
	assert.Equal(t, 9, pinned)
}
