package trajectory

import (
	"math"
	"sort"

	"github.com/banshee-data/holonomic/internal/geometry"
)

// State is one time-indexed point of a trajectory.
type State struct {
	Time          float64             `json:"time"`         // seconds since start
	Velocity      float64             `json:"velocity"`     // m/s, negative when reversed
	Acceleration  float64             `json:"acceleration"` // m/s², negative when reversed
	Pose          geometry.Pose2d     `json:"pose"`         // position + robot heading
	TravelHeading geometry.Rotation2d `json:"travel_heading"`
	Curvature     float64             `json:"curvature"` // rad/m
}

// interpolate returns the state a fraction f of the way from s to end,
// advancing kinematically rather than linearly in velocity.
func (s State) interpolate(end State, f float64) State {
	newT := s.Time + (end.Time-s.Time)*f
	deltaT := newT - s.Time
	if deltaT < 0 {
		return end.interpolate(s, 1-f)
	}

	reversing := s.Velocity < 0 || (math.Abs(s.Velocity) < 1e-9 && s.Acceleration < 0)
	newV := s.Velocity + s.Acceleration*deltaT
	newS := s.Velocity*deltaT + 0.5*s.Acceleration*deltaT*deltaT
	if reversing {
		newS = -newS
	}

	frac := f
	if d := end.Pose.Translation.Distance(s.Pose.Translation); d > 1e-9 {
		frac = newS / d
	}

	pose := s.Pose.Interpolate(end.Pose, frac)
	pose.Rotation = geometry.NewRotation2d(geometry.NormalizeAngle(pose.Rotation.Radians))

	return State{
		Time:          newT,
		Velocity:      newV,
		Acceleration:  s.Acceleration,
		Pose:          pose,
		TravelHeading: s.TravelHeading.Interpolate(end.TravelHeading, frac),
		Curvature:     s.Curvature + (end.Curvature-s.Curvature)*frac,
	}
}

// Trajectory is an immutable, time-ordered sequence of states.
type Trajectory struct {
	states    []State
	totalTime float64
}

// New builds a trajectory from states ordered by nondecreasing time. The
// slice is copied.
func New(states []State) *Trajectory {
	cp := make([]State, len(states))
	copy(cp, states)
	t := &Trajectory{states: cp}
	if len(cp) > 0 {
		t.totalTime = cp[len(cp)-1].Time
	}
	return t
}

// DoNothing returns the single zero-state trajectory used when generation
// input was malformed: zero velocity, zero duration, no motion.
func DoNothing() *Trajectory {
	return New([]State{{}})
}

// TotalTime is the time of the final state.
func (t *Trajectory) TotalTime() float64 { return t.totalTime }

// Len returns the number of states.
func (t *Trajectory) Len() int { return len(t.states) }

// States returns a copy of the states.
func (t *Trajectory) States() []State {
	cp := make([]State, len(t.states))
	copy(cp, t.states)
	return cp
}

// State returns the i'th state.
func (t *Trajectory) State(i int) State { return t.states[i] }

// InitialPose returns the pose of the first state.
func (t *Trajectory) InitialPose() geometry.Pose2d {
	if len(t.states) == 0 {
		return geometry.Pose2d{}
	}
	return t.states[0].Pose
}

// Sample returns the interpolated state at time seconds, clamped to
// [0, TotalTime].
func (t *Trajectory) Sample(seconds float64) State {
	if len(t.states) == 0 {
		return State{}
	}
	if seconds <= t.states[0].Time {
		return t.states[0]
	}
	if seconds >= t.totalTime {
		return t.states[len(t.states)-1]
	}

	i := sort.Search(len(t.states), func(i int) bool { return t.states[i].Time >= seconds })
	if i == 0 {
		return t.states[0]
	}
	if i >= len(t.states) {
		return t.states[len(t.states)-1]
	}

	prev := t.states[i-1]
	next := t.states[i]
	if math.Abs(next.Time-prev.Time) < 1e-9 {
		return next
	}
	return prev.interpolate(next, (seconds-prev.Time)/(next.Time-prev.Time))
}
