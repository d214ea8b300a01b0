package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

func referenceState() trajectory.State {
	return trajectory.State{
		Time:          1.2,
		Velocity:      1.5,
		Pose:          geometry.NewPose2d(1, 2, geometry.FromDegrees(45).Radians),
		TravelHeading: geometry.FromDegrees(30),
	}
}

func zeroFeedbackConfig() FollowerConfig {
	cfg := DefaultFollowerConfig(math.Pi, 2*math.Pi)
	cfg.Translation = Gains{}
	return cfg
}

// expectedOmega runs a fresh heading controller through the same first step
// a follower takes.
func expectedOmega(cfg FollowerConfig, current, target float64) float64 {
	theta := NewProfiledPIDWithPeriod(cfg.Rotation.P, cfg.Rotation.I, cfg.Rotation.D, TrapezoidConstraints{
		MaxVelocity:     cfg.MaxAngularVelocity,
		MaxAcceleration: cfg.MaxAngularAcceleration,
	}, cfg.Period)
	theta.EnableContinuousInput(-math.Pi, math.Pi)
	theta.Reset(current)
	return theta.Calculate(current, target)
}

func TestFollower_FeedforwardWithZeroFeedbackGains(t *testing.T) {
	cfg := zeroFeedbackConfig()
	f := cfg.NewFollower()
	state := referenceState()

	got := f.CalculateFieldRelative(state.Pose, state)

	assert.Equal(t, 1.5*math.Cos(state.TravelHeading.Radians), got.VX)
	assert.Equal(t, 1.5*math.Sin(state.TravelHeading.Radians), got.VY)
	assert.Equal(t, expectedOmega(cfg, state.Pose.Rotation.Radians, state.Pose.Rotation.Radians), got.Omega)
}

func TestFollower_RobotRelativeOutput(t *testing.T) {
	f := zeroFeedbackConfig().NewFollower()
	state := referenceState()

	got := f.Calculate(state.Pose, state)
	field := geometry.ToFieldRelativeSpeeds(got, state.Pose.Rotation)

	assert.InDelta(t, 1.5*math.Cos(state.TravelHeading.Radians), field.VX, 1e-12)
	assert.InDelta(t, 1.5*math.Sin(state.TravelHeading.Radians), field.VY, 1e-12)
	// Travel is 15° clockwise of where the robot faces.
	assert.InDelta(t, 1.5*math.Cos(geometry.FromDegrees(-15).Radians), got.VX, 1e-12)
	assert.InDelta(t, 1.5*math.Sin(geometry.FromDegrees(-15).Radians), got.VY, 1e-12)
}

func TestFollower_FeedbackCorrectsPositionError(t *testing.T) {
	cfg := DefaultFollowerConfig(math.Pi, 2*math.Pi)
	cfg.Translation = Gains{P: 2}
	f := cfg.NewFollower()
	state := referenceState()
	current := geometry.NewPose2d(0.9, 2.2, state.Pose.Rotation.Radians)

	got := f.CalculateFieldRelative(current, state)
	assert.InDelta(t, 1.5*math.Cos(state.TravelHeading.Radians)+2*0.1, got.VX, 1e-9)
	assert.InDelta(t, 1.5*math.Sin(state.TravelHeading.Radians)-2*0.2, got.VY, 1e-9)
}

func TestFollower_DisabledReturnsFeedforward(t *testing.T) {
	cfg := DefaultFollowerConfig(math.Pi, 2*math.Pi)
	cfg.Translation = Gains{P: 5, D: 0.3}
	f := cfg.NewFollower()
	f.SetEnabled(false)
	require.False(t, f.Enabled())

	state := referenceState()
	current := geometry.NewPose2d(-20, 40, 0)

	got := f.CalculateFieldRelative(current, state)
	assert.Equal(t, 1.5*math.Cos(state.TravelHeading.Radians), got.VX)
	assert.Equal(t, 1.5*math.Sin(state.TravelHeading.Radians), got.VY)
	assert.Equal(t, expectedOmega(cfg, 0, state.Pose.Rotation.Radians), got.Omega)
}

func TestFollower_AtReference(t *testing.T) {
	cfg := DefaultFollowerConfig(math.Pi, 2*math.Pi)
	cfg.Tolerance = geometry.NewPose2d(0.05, 0.05, geometry.FromDegrees(2).Radians)
	f := cfg.NewFollower()
	state := referenceState()

	f.Calculate(geometry.NewPose2d(1.02, 1.97, state.Pose.Rotation.Radians+0.01), state)
	assert.True(t, f.AtReference())

	f.Calculate(geometry.NewPose2d(1.2, 2, state.Pose.Rotation.Radians), state)
	assert.False(t, f.AtReference())
	assert.InDelta(t, -0.2, f.PoseError().X()*math.Cos(state.Pose.Rotation.Radians)-
		f.PoseError().Y()*math.Sin(state.Pose.Rotation.Radians), 1e-9)

	f.Calculate(geometry.NewPose2d(1, 2, state.Pose.Rotation.Radians+0.1), state)
	assert.False(t, f.AtReference())
	assert.InDelta(t, -0.1, f.RotationError().Radians, 1e-12)
}

func TestFollower_FirstRunStartsFromCurrentHeading(t *testing.T) {
	cfg := DefaultFollowerConfig(math.Pi, 2*math.Pi)
	f := cfg.NewFollower()
	state := referenceState()

	// Robot already faces the target: the heading controller starts there
	// and has nothing to do.
	got := f.CalculateFieldRelative(state.Pose, state)
	assert.InDelta(t, 0, got.Omega, 1e-12)

	// Drive the controller somewhere else, then restart at the target.
	for i := 0; i < 10; i++ {
		f.CalculateFieldRelative(geometry.NewPose2d(1, 2, -2), state)
	}
	f.Reset()
	got = f.CalculateFieldRelative(state.Pose, state)
	assert.InDelta(t, 0, got.Omega, 1e-12)
}

func TestFollower_HeadingAcrossWrap(t *testing.T) {
	cfg := DefaultFollowerConfig(math.Pi, 2*math.Pi)
	f := cfg.NewFollower()
	state := referenceState()
	state.Pose = state.Pose.WithRotation(geometry.FromDegrees(350))

	// From 10° the short way to 350° is clockwise.
	current := state.Pose.WithRotation(geometry.FromDegrees(10))
	f.CalculateFieldRelative(current, state)
	got := f.CalculateFieldRelative(current, state)
	assert.Less(t, got.Omega, 0.0)
}
