package knife

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/geom"
)

// Keyframe is one segment of a prescribed knife trajectory: a starting pose
// advanced by a constant linear and angular velocity for a duration
type Keyframe struct {
	Pose     geom.Transform `json:"pose"`
	Velocity mgl64.Vec3     `json:"velocity"`
	Omega    mgl64.Vec3     `json:"omega"`
	Duration float64        `json:"duration"`
}

// Track is a keyframed rigid trajectory. After the final segment expires
// the knife keeps moving with the final segment's velocities.
type Track struct {
	Frames []Keyframe
}

// Validate rejects empty tracks and non-positive segment durations
func (t Track) Validate() error {
	if len(t.Frames) == 0 {
		return fmt.Errorf("knife track has no keyframes")
	}
	for i, frame := range t.Frames {
		if frame.Duration <= 0 {
			return fmt.Errorf("keyframe %d has non-positive duration %v", i, frame.Duration)
		}
	}
	return nil
}

// At samples the trajectory at an absolute time
func (t Track) At(time float64) (pose geom.Transform, velocity, omega mgl64.Vec3) {
	if len(t.Frames) == 0 {
		return geom.NewTransform(), mgl64.Vec3{}, mgl64.Vec3{}
	}

	remaining := time
	for i, frame := range t.Frames {
		last := i == len(t.Frames)-1
		if remaining <= frame.Duration || last {
			return advancePose(frame.Pose, frame.Velocity, frame.Omega, remaining), frame.Velocity, frame.Omega
		}
		remaining -= frame.Duration
	}

	// unreachable, the final frame absorbs any remainder
	final := t.Frames[len(t.Frames)-1]
	return final.Pose, final.Velocity, final.Omega
}

// advancePose integrates a constant rigid motion over an interval
func advancePose(pose geom.Transform, velocity, omega mgl64.Vec3, dt float64) geom.Transform {
	out := pose
	out.Position = pose.Position.Add(velocity.Mul(dt))

	if omega.Len() > 0 {
		omegaQuat := mgl64.Quat{W: 0, V: omega}
		qDot := omegaQuat.Mul(pose.Rotation).Scale(0.5)
		out.Rotation = pose.Rotation.Add(qDot.Scale(dt)).Normalize()
		out.InverseRotation = out.Rotation.Inverse()
	}

	return out
}
