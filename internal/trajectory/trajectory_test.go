package trajectory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/holonomic/internal/geometry"
)

func sampleTrajectory(t *testing.T) *Trajectory {
	t.Helper()
	traj, err := Parameterize(straightLine(4, 0.05), nil, NewConfig(2, 1))
	require.NoError(t, err)
	return traj
}

func TestSample_ClampsToEnds(t *testing.T) {
	traj := sampleTrajectory(t)
	states := traj.States()

	if diff := cmp.Diff(states[0], traj.Sample(-1)); diff != "" {
		t.Errorf("Sample(-1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(states[len(states)-1], traj.Sample(traj.TotalTime()+10)); diff != "" {
		t.Errorf("Sample(past end) mismatch (-want +got):\n%s", diff)
	}
}

func TestSample_IsDeterministic(t *testing.T) {
	traj := sampleTrajectory(t)
	for _, at := range []float64{0.013, 1.5, 2.0, 3.77} {
		first := traj.Sample(at)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, traj.Sample(at))
		}
	}
}

func TestSample_InterpolatesKinematically(t *testing.T) {
	traj := sampleTrajectory(t)
	prev := traj.Sample(0)
	for at := 0.1; at <= traj.TotalTime(); at += 0.1 {
		s := traj.Sample(at)
		assert.InDelta(t, at, s.Time, 1e-9)
		assert.GreaterOrEqual(t, s.Pose.X(), prev.Pose.X())
		prev = s
	}
	// x(t) = t²/2 while accelerating.
	assert.InDelta(t, 0.5*1.234*1.234, traj.Sample(1.234).Pose.X(), 1e-6)
}

func TestSample_ExactStateTimes(t *testing.T) {
	traj := sampleTrajectory(t)
	for i := 0; i < traj.Len(); i += 7 {
		want := traj.State(i)
		got := traj.Sample(want.Time)
		assert.InDelta(t, want.Pose.X(), got.Pose.X(), 1e-9)
		assert.InDelta(t, want.Velocity, got.Velocity, 1e-9)
	}
}

func TestNewCopiesStates(t *testing.T) {
	states := []State{{Time: 0}, {Time: 1, Pose: geometry.NewPose2d(1, 0, 0)}}
	traj := New(states)
	states[1].Time = 99
	assert.Equal(t, 1.0, traj.TotalTime())

	out := traj.States()
	out[0].Velocity = 5
	assert.Equal(t, 0.0, traj.State(0).Velocity)
}

func TestDoNothing(t *testing.T) {
	traj := DoNothing()
	assert.Equal(t, 1, traj.Len())
	assert.Equal(t, 0.0, traj.TotalTime())
	assert.Equal(t, State{}, traj.Sample(3))
	assert.Equal(t, geometry.Pose2d{}, traj.InitialPose())
}

func TestEmptyTrajectory(t *testing.T) {
	traj := New(nil)
	assert.Equal(t, State{}, traj.Sample(1))
	assert.Equal(t, geometry.Pose2d{}, traj.InitialPose())
}
