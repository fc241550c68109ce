package cut

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielTakeshi/DiSECt/geom"
	"github.com/DanielTakeshi/DiSECt/knife"
	"github.com/DanielTakeshi/DiSECt/mesh"
)

type meshFixture struct {
	mesh   *mesh.Mesh
	corner int
}

// straddlingTet builds a single tetrahedron with one corner on the negative
// x side and three on the positive side, so a blade mid-plane at x=0 severs
// exactly the three edges meeting at the lone corner.
func straddlingTet(t *testing.T) *meshFixture {
	t.Helper()

	b := mesh.NewBuilder()
	a := b.AddParticle(mgl64.Vec3{-0.01, 0.005, 0}, mgl64.Vec3{}, 1)
	c := b.AddParticle(mgl64.Vec3{0.01, 0.004, 0.005}, mgl64.Vec3{}, 1)
	d := b.AddParticle(mgl64.Vec3{0.01, 0.006, -0.005}, mgl64.Vec3{}, 1)
	e := b.AddParticle(mgl64.Vec3{0.01, 0.015, 0.001}, mgl64.Vec3{}, 1)
	b.AddTetrahedron(a, c, d, e, 1e4, 1e4, 0)

	m, err := b.Finalize(0)
	require.NoError(t, err)

	return &meshFixture{mesh: m, corner: a}
}

func testKnife(t *testing.T) *knife.Knife {
	t.Helper()

	profile, err := knife.NewProfile(knife.TypeSlicing, knife.DefaultBladeParams())
	require.NoError(t, err)

	return knife.NewDropping(profile, 0, 0)
}

func testParams() Params {
	return Params{
		Interior:   SpringParams{Ke: 500, Kd: 0.1, Softness: 50},
		Surface:    SpringParams{Ke: 2000, Kd: 0.1, Softness: 50},
		MaxStretch: 0.02,
	}
}

func TestEngineSplitsStraddlingElement(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)

	engine := NewEngine(testParams(), fix.mesh)
	massBefore := fix.mesh.TotalMass()

	report := engine.Step(k, k.Pose, 1e-5, 2)

	assert.Equal(t, 3, report.SpringsCreated)
	assert.Equal(t, 1, report.TetsRewired)

	// every particle sat on a cut edge, so all four were duplicated
	assert.Equal(t, 8, fix.mesh.NodeCount())
	assert.Equal(t, 2, fix.mesh.TetCount())
	assert.InDelta(t, massBefore, fix.mesh.TotalMass(), 1e-12)

	// only the duplicated copies become contactless; the originals still
	// collide with the knife
	for i := 0; i < 4; i++ {
		assert.False(t, fix.mesh.NoContact[i])
		assert.True(t, fix.mesh.CutExposed[i])
	}
	for i := 4; i < 8; i++ {
		assert.True(t, fix.mesh.NoContact[i])
	}

	// the two halves share no particles
	seen := map[int]bool{}
	for _, n := range fix.mesh.Tets[0].Nodes {
		seen[n] = true
	}
	for _, n := range fix.mesh.Tets[1].Nodes {
		assert.False(t, seen[n], "rewired halves must be disjoint")
	}
}

func TestEngineResplitIsNoOp(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)

	engine := NewEngine(testParams(), fix.mesh)
	first := engine.Step(k, k.Pose, 1e-5, 1)
	require.Equal(t, 3, first.SpringsCreated)

	second := engine.Step(k, k.Pose, 1e-5, 1)
	assert.Zero(t, second.SpringsCreated)
	assert.Zero(t, second.TetsRewired)
	assert.Equal(t, 8, fix.mesh.NodeCount())
}

func TestEngineDeterministicAcrossWorkers(t *testing.T) {
	runOnce := func(workers int) (Report, map[int]int) {
		fix := straddlingTet(t)
		k := testKnife(t)
		engine := NewEngine(testParams(), fix.mesh)
		report := engine.Step(k, k.Pose, 1e-5, workers)
		return report, engine.Duplicates()
	}

	serialReport, serialDup := runOnce(1)
	parallelReport, parallelDup := runOnce(8)

	assert.Equal(t, serialReport, parallelReport)
	assert.Equal(t, serialDup, parallelDup)
}

func TestEngineSpringModeDeactivatesSplitElements(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)

	params := testParams()
	params.Mode = ModeSpring
	engine := NewEngine(params, fix.mesh)

	engine.Step(k, k.Pose, 1e-5, 1)

	require.Equal(t, 2, fix.mesh.TetCount())
	assert.False(t, fix.mesh.Tets[0].Active)
	assert.False(t, fix.mesh.Tets[1].Active)
}

func TestEngineFEMModeKeepsSplitElementsActive(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)

	engine := NewEngine(testParams(), fix.mesh)
	engine.Step(k, k.Pose, 1e-5, 1)

	require.Equal(t, 2, fix.mesh.TetCount())
	assert.True(t, fix.mesh.Tets[0].Active)
	assert.True(t, fix.mesh.Tets[1].Active)
}

func TestEngineSpringsRelaxAndRelease(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)

	params := testParams()
	params.Interior.Softness = 100
	params.Surface.Softness = 100
	engine := NewEngine(params, fix.mesh)

	engine.Step(k, k.Pose, 1e-5, 1)
	require.Equal(t, 3, engine.LiveSprings())

	// softness 100 relaxes a spring to zero over 1/100 s of advancing
	released := 0
	for i := 0; i < 2000; i++ {
		report := engine.Step(k, k.Pose, 1e-5, 1)
		released += report.SpringsReleased
	}

	assert.Equal(t, 3, released)
	assert.Zero(t, engine.LiveSprings())

	// a fully released edge reports split
	state := engine.EdgeStateOf(0, 1)
	assert.Equal(t, EdgeSplit, state)
}

func TestEngineSpringForcesPullHalvesTogether(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)

	engine := NewEngine(testParams(), fix.mesh)
	engine.Step(k, k.Pose, 1e-5, 1)

	// pull the lone corner and its duplicate apart across the cut
	dup := engine.Duplicates()[fix.corner]
	fix.mesh.Positions[fix.corner] = fix.mesh.Positions[fix.corner].Add(mgl64.Vec3{-0.002, 0, 0})
	fix.mesh.Positions[dup] = fix.mesh.Positions[dup].Add(mgl64.Vec3{0.002, 0, 0})

	forces := make([]mgl64.Vec3, fix.mesh.NodeCount())
	engine.Accumulate(forces)

	// momentum free: forces sum to zero
	var total mgl64.Vec3
	for _, f := range forces {
		total = total.Add(f)
	}
	assert.InDelta(t, 0, total.Len(), 1e-9)

	// the displaced corner is pulled back toward the cut plane
	assert.Greater(t, forces[fix.corner].X(), 0.0)
	assert.Less(t, forces[dup].X(), 0.0)
}

func TestEngineBluntKnifeNeverCuts(t *testing.T) {
	fix := straddlingTet(t)

	profile, err := knife.NewProfile(knife.TypeBlunt, knife.DefaultBladeParams())
	require.NoError(t, err)
	k := knife.NewDropping(profile, 0, 0)

	engine := NewEngine(testParams(), fix.mesh)
	report := engine.Step(k, k.Pose, 1e-5, 1)

	assert.Zero(t, report.SpringsCreated)
	assert.Equal(t, 4, fix.mesh.NodeCount())
}

func TestEngineMissesOffsetKnife(t *testing.T) {
	fix := straddlingTet(t)
	k := testKnife(t)
	// shift the blade well past the body
	k.Pose = geom.FromAxisAngle(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, 0)

	engine := NewEngine(testParams(), fix.mesh)
	report := engine.Step(k, k.Pose, 1e-5, 1)

	assert.Zero(t, report.SpringsCreated)
}
