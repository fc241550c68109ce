package knife

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DanielTakeshi/DiSECt/geom"
)

func TestNewDroppingAdvance(t *testing.T) {
	profile, err := NewProfile(TypeSlicing, DefaultBladeParams())
	require.NoError(t, err)

	k := NewDropping(profile, 0.08, -0.05)
	assert.Equal(t, mgl64.Vec3{0, 0.08, 0}, k.Pose.Position)

	for i := 0; i < 10; i++ {
		k.Advance(0.1)
	}

	// one second at -0.05 m/s
	assert.InDelta(t, 0.03, k.Pose.Position.Y(), 1e-12)
	assert.InDelta(t, 1.0, k.Time(), 1e-12)
}

func TestAdvanceRotation(t *testing.T) {
	profile, err := NewProfile(TypeBlunt, DefaultBladeParams())
	require.NoError(t, err)

	omega := mgl64.Vec3{0, 0, math.Pi / 2}
	k := New(profile, geom.NewTransform(), mgl64.Vec3{}, omega)

	// many small steps approximate a quarter turn about z
	steps := 10000
	for i := 0; i < steps; i++ {
		k.Advance(1.0 / float64(steps))
	}

	rotated := k.Pose.RotateDirection(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 0.0, rotated.X(), 1e-2)
	assert.InDelta(t, 1.0, rotated.Y(), 1e-2)
}

func TestTrackSampling(t *testing.T) {
	poseA := geom.NewTransform()
	poseB := geom.NewTransform()
	poseB.Position = mgl64.Vec3{0, -0.05, 0}

	track := Track{Frames: []Keyframe{
		{Pose: poseA, Velocity: mgl64.Vec3{0, -0.05, 0}, Duration: 1},
		{Pose: poseB, Velocity: mgl64.Vec3{0.1, 0, 0}, Duration: 2},
	}}
	require.NoError(t, track.Validate())

	pose, vel, _ := track.At(0.5)
	assert.InDelta(t, -0.025, pose.Position.Y(), 1e-12)
	assert.Equal(t, mgl64.Vec3{0, -0.05, 0}, vel)

	// second segment, 1s in
	pose, vel, _ = track.At(2.0)
	assert.InDelta(t, 0.1, pose.Position.X(), 1e-12)
	assert.InDelta(t, -0.05, pose.Position.Y(), 1e-12)
	assert.Equal(t, mgl64.Vec3{0.1, 0, 0}, vel)

	// past the end the final velocity keeps applying
	pose, _, _ = track.At(4.0)
	assert.InDelta(t, 0.3, pose.Position.X(), 1e-12)
}

func TestTrackValidate(t *testing.T) {
	assert.Error(t, Track{}.Validate())
	assert.Error(t, Track{Frames: []Keyframe{{Duration: 0}}}.Validate())
}

func TestKeyframedKnife(t *testing.T) {
	profile, err := NewProfile(TypeSlicing, DefaultBladeParams())
	require.NoError(t, err)

	pose := geom.NewTransform()
	pose.Position = mgl64.Vec3{0, 0.1, 0}
	k, err := NewKeyframed(profile, Track{Frames: []Keyframe{
		{Pose: pose, Velocity: mgl64.Vec3{0, -0.1, 0}, Duration: 1},
	}})
	require.NoError(t, err)

	k.Advance(0.5)
	assert.InDelta(t, 0.05, k.Pose.Position.Y(), 1e-12)
}

func TestDistanceFollowsPose(t *testing.T) {
	profile, err := NewProfile(TypeSlicing, DefaultBladeParams())
	require.NoError(t, err)

	k := NewDropping(profile, 0.08, -0.05)

	// a point just above the blade tip is outside before contact
	p := mgl64.Vec3{0, 0.01, 0}
	before := k.Distance(p)
	assert.Positive(t, before)

	// drop for 1.5s: tip moves to y = 0.005, the point enters the blade
	for i := 0; i < 15; i++ {
		k.Advance(0.1)
	}
	after := k.Distance(p)
	assert.Less(t, after, before)
}

func TestBluntBarThickness(t *testing.T) {
	params := DefaultBladeParams()
	profile, err := NewProfile(TypeBlunt, params)
	require.NoError(t, err)

	solid := profile.Solid()
	// the bar surface sits half the spine thickness off the axis, the same
	// girth as the wedge blade's spine
	assert.InDelta(t, 0.0, solid.Evaluate(r3.Vec{X: params.SpineDim / 2}), 1e-12)
	assert.Positive(t, solid.Evaluate(r3.Vec{X: params.SpineDim}))
}

func TestSurfaceVelocity(t *testing.T) {
	profile, err := NewProfile(TypeBlunt, DefaultBladeParams())
	require.NoError(t, err)

	k := New(profile, geom.NewTransform(), mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 0, 1})

	v := k.SurfaceVelocity(mgl64.Vec3{1, 0, 0})
	// linear plus omega cross r
	assert.InDelta(t, 0.0, v.X(), 1e-12)
	assert.InDelta(t, 0.0, v.Y(), 1e-12) // -1 + 1
}

func TestCuttingTriangles(t *testing.T) {
	slicing, err := NewProfile(TypeSlicing, DefaultBladeParams())
	require.NoError(t, err)
	blunt, err := NewProfile(TypeBlunt, DefaultBladeParams())
	require.NoError(t, err)

	k := NewDropping(slicing, 0.05, -0.05)
	assert.NotEmpty(t, k.CuttingTriangles())

	prev := k.Pose
	k.Advance(0.1)
	swept := k.SweptTriangles(prev)
	assert.Len(t, swept, 4)

	b := NewDropping(blunt, 0.05, -0.05)
	assert.Nil(t, b.CuttingTriangles())
}
