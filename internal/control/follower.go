package control

import (
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// Gains are PID coefficients.
type Gains struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

// FollowerConfig describes the controllers a Follower is built from.
type FollowerConfig struct {
	Translation Gains // shared by the x and y controllers
	Rotation    Gains

	MaxAngularVelocity     float64 // rad/s
	MaxAngularAcceleration float64 // rad/s²

	// Tolerance holds the x, y (m) and heading (rad) errors within which
	// AtReference reports true.
	Tolerance geometry.Pose2d

	Period float64 // s
}

// DefaultFollowerConfig uses unit proportional gains everywhere.
func DefaultFollowerConfig(maxAngularVelocity, maxAngularAcceleration float64) FollowerConfig {
	return FollowerConfig{
		Translation:            Gains{P: 1},
		Rotation:               Gains{P: 1},
		MaxAngularVelocity:     maxAngularVelocity,
		MaxAngularAcceleration: maxAngularAcceleration,
		Period:                 DefaultPeriod,
	}
}

// NewFollower builds the x, y and heading controllers described by cfg.
func (cfg FollowerConfig) NewFollower() *Follower {
	x := NewPIDWithPeriod(cfg.Translation.P, cfg.Translation.I, cfg.Translation.D, cfg.Period)
	y := NewPIDWithPeriod(cfg.Translation.P, cfg.Translation.I, cfg.Translation.D, cfg.Period)
	theta := NewProfiledPIDWithPeriod(cfg.Rotation.P, cfg.Rotation.I, cfg.Rotation.D, TrapezoidConstraints{
		MaxVelocity:     cfg.MaxAngularVelocity,
		MaxAcceleration: cfg.MaxAngularAcceleration,
	}, cfg.Period)
	f := NewFollower(x, y, theta)
	f.SetTolerance(cfg.Tolerance)
	return f
}

// Follower turns trajectory states and measured poses into chassis speeds
// for a holonomic drivetrain. Translation follows the profiled velocity
// along the direction of travel plus x/y position feedback; rotation chases
// the planned heading through a profiled controller. It is called once per
// control tick from a single goroutine.
type Follower struct {
	x     *PID
	y     *PID
	theta *ProfiledPID

	tolerance     geometry.Pose2d
	poseError     geometry.Pose2d
	rotationError geometry.Rotation2d

	enabled  bool
	firstRun bool
}

// NewFollower wires existing controllers into a follower. The heading
// controller is switched to continuous input over [-π, π).
func NewFollower(x, y *PID, theta *ProfiledPID) *Follower {
	theta.EnableContinuousInput(-math.Pi, math.Pi)
	return &Follower{
		x:        x,
		y:        y,
		theta:    theta,
		enabled:  true,
		firstRun: true,
	}
}

// SetTolerance sets the errors within which AtReference reports true.
func (f *Follower) SetTolerance(tolerance geometry.Pose2d) { f.tolerance = tolerance }

// SetEnabled switches feedback on or off. Disabled, the follower returns
// only the feedforward terms.
func (f *Follower) SetEnabled(enabled bool) { f.enabled = enabled }

// Enabled reports whether feedback is applied.
func (f *Follower) Enabled() bool { return f.enabled }

// Reset makes the next Calculate restart the controllers from the robot's
// pose at that moment.
func (f *Follower) Reset() { f.firstRun = true }

// AtReference reports whether the last computed errors are within
// tolerance.
func (f *Follower) AtReference() bool {
	return math.Abs(f.poseError.X()) < f.tolerance.X() &&
		math.Abs(f.poseError.Y()) < f.tolerance.Y() &&
		math.Abs(f.rotationError.Radians) < math.Abs(f.tolerance.Rotation.Radians)
}

// PoseError returns the last reference pose expressed in the robot frame.
func (f *Follower) PoseError() geometry.Pose2d { return f.poseError }

// RotationError returns the last heading error.
func (f *Follower) RotationError() geometry.Rotation2d { return f.rotationError }

// CalculateFieldRelative returns the field-relative command for following
// state from current.
func (f *Follower) CalculateFieldRelative(current geometry.Pose2d, state trajectory.State) geometry.ChassisSpeeds {
	if f.firstRun {
		f.theta.Reset(current.Rotation.Radians)
		f.x.Reset()
		f.y.Reset()
		f.firstRun = false
	}

	vxFF := state.Velocity * state.TravelHeading.Cos()
	vyFF := state.Velocity * state.TravelHeading.Sin()
	omegaFF := f.theta.Calculate(current.Rotation.Radians, state.Pose.Rotation.Radians)

	f.poseError = state.Pose.RelativeTo(current)
	f.rotationError = state.Pose.Rotation.Minus(current.Rotation)

	if !f.enabled {
		return geometry.ChassisSpeeds{VX: vxFF, VY: vyFF, Omega: omegaFF}
	}

	vx := vxFF + f.x.Calculate(current.X(), state.Pose.X())
	vy := vyFF + f.y.Calculate(current.Y(), state.Pose.Y())
	return geometry.ChassisSpeeds{VX: vx, VY: vy, Omega: omegaFF}
}

// Calculate returns the robot-relative command for following state from
// current.
func (f *Follower) Calculate(current geometry.Pose2d, state trajectory.State) geometry.ChassisSpeeds {
	return geometry.FromFieldRelativeSpeeds(f.CalculateFieldRelative(current, state), current.Rotation)
}
