package trajectory

import (
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
)

// MinMax is an acceleration window in m/s².
type MinMax struct {
	Min float64
	Max float64
}

// Constraint limits velocity and acceleration along the path. The profiler
// applies the tightest bound across every active constraint.
type Constraint interface {
	// MaxVelocity returns the highest velocity allowed at pose given the
	// candidate velocity the profiler is currently proposing.
	MaxVelocity(pose geometry.Pose2d, curvature, velocity float64) float64

	// MinMaxAcceleration returns the acceleration window at pose when
	// travelling at velocity.
	MinMaxAcceleration(pose geometry.Pose2d, curvature, velocity float64) MinMax
}

// MaxVelocityConstraint caps velocity everywhere it applies.
type MaxVelocityConstraint struct {
	Limit float64 // m/s
}

// NewMaxVelocityConstraint returns a constraint capping speed at maxVelocity m/s.
func NewMaxVelocityConstraint(maxVelocity float64) MaxVelocityConstraint {
	return MaxVelocityConstraint{Limit: math.Abs(maxVelocity)}
}

func (c MaxVelocityConstraint) MaxVelocity(_ geometry.Pose2d, _, _ float64) float64 {
	return c.Limit
}

func (c MaxVelocityConstraint) MinMaxAcceleration(_ geometry.Pose2d, _, _ float64) MinMax {
	return MinMax{Min: math.Inf(-1), Max: math.Inf(1)}
}

// CentripetalAccelerationConstraint bounds v²·|κ| so the chassis does not
// slide through tight turns.
type CentripetalAccelerationConstraint struct {
	MaxCentripetalAcceleration float64 // m/s²
}

func (c CentripetalAccelerationConstraint) MaxVelocity(_ geometry.Pose2d, curvature, _ float64) float64 {
	if math.Abs(curvature) < 1e-12 {
		return math.Inf(1)
	}
	return math.Sqrt(c.MaxCentripetalAcceleration / math.Abs(curvature))
}

func (c CentripetalAccelerationConstraint) MinMaxAcceleration(_ geometry.Pose2d, _, _ float64) MinMax {
	// Centripetal load only depends on speed, which MaxVelocity already bounds.
	return MinMax{Min: math.Inf(-1), Max: math.Inf(1)}
}

// RectangularRegionConstraint applies Inner only while the pose lies
// inside the axis-aligned rectangle spanned by BottomLeft and TopRight.
type RectangularRegionConstraint struct {
	BottomLeft geometry.Translation2d
	TopRight   geometry.Translation2d
	Inner      Constraint
}

func (c RectangularRegionConstraint) contains(p geometry.Translation2d) bool {
	return p.X >= c.BottomLeft.X && p.X <= c.TopRight.X &&
		p.Y >= c.BottomLeft.Y && p.Y <= c.TopRight.Y
}

func (c RectangularRegionConstraint) MaxVelocity(pose geometry.Pose2d, curvature, velocity float64) float64 {
	if c.contains(pose.Translation) {
		return c.Inner.MaxVelocity(pose, curvature, velocity)
	}
	return math.Inf(1)
}

func (c RectangularRegionConstraint) MinMaxAcceleration(pose geometry.Pose2d, curvature, velocity float64) MinMax {
	if c.contains(pose.Translation) {
		return c.Inner.MinMaxAcceleration(pose, curvature, velocity)
	}
	return MinMax{Min: math.Inf(-1), Max: math.Inf(1)}
}

// ConstraintFuncs adapts a pair of functions to Constraint. A nil function
// imposes no limit.
type ConstraintFuncs struct {
	Name         string
	Velocity     func(pose geometry.Pose2d, curvature, velocity float64) float64
	Acceleration func(pose geometry.Pose2d, curvature, velocity float64) MinMax
}

func (c ConstraintFuncs) MaxVelocity(pose geometry.Pose2d, curvature, velocity float64) float64 {
	if c.Velocity == nil {
		return math.Inf(1)
	}
	return c.Velocity(pose, curvature, velocity)
}

func (c ConstraintFuncs) MinMaxAcceleration(pose geometry.Pose2d, curvature, velocity float64) MinMax {
	if c.Acceleration == nil {
		return MinMax{Min: math.Inf(-1), Max: math.Inf(1)}
	}
	return c.Acceleration(pose, curvature, velocity)
}

func (c ConstraintFuncs) String() string {
	if c.Name == "" {
		return "ConstraintFuncs"
	}
	return c.Name
}
