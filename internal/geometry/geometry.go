// Package geometry provides the planar pose types shared by trajectory
// generation and following. All distances are metres, all angles radians,
// measured counter-clockwise from the field +X axis.
package geometry

import "math"

// Translation2d is a point or displacement in the field plane.
type Translation2d struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to other.
func (t Translation2d) Distance(other Translation2d) float64 {
	return math.Hypot(other.X-t.X, other.Y-t.Y)
}

// Norm returns the distance from the origin.
func (t Translation2d) Norm() float64 {
	return math.Hypot(t.X, t.Y)
}

func (t Translation2d) Plus(other Translation2d) Translation2d {
	return Translation2d{X: t.X + other.X, Y: t.Y + other.Y}
}

func (t Translation2d) Minus(other Translation2d) Translation2d {
	return Translation2d{X: t.X - other.X, Y: t.Y - other.Y}
}

func (t Translation2d) Times(s float64) Translation2d {
	return Translation2d{X: t.X * s, Y: t.Y * s}
}

// RotateBy rotates the translation about the origin.
func (t Translation2d) RotateBy(r Rotation2d) Translation2d {
	c, s := r.Cos(), r.Sin()
	return Translation2d{X: t.X*c - t.Y*s, Y: t.X*s + t.Y*c}
}

// Angle returns the direction of the translation from the origin.
func (t Translation2d) Angle() Rotation2d {
	return NewRotation2d(math.Atan2(t.Y, t.X))
}

// Interpolate linearly blends toward end by fraction f in [0, 1].
func (t Translation2d) Interpolate(end Translation2d, f float64) Translation2d {
	f = clamp(f, 0, 1)
	return Translation2d{X: t.X + (end.X-t.X)*f, Y: t.Y + (end.Y-t.Y)*f}
}

// Rotation2d is a planar rotation. The zero value is a zero rotation.
type Rotation2d struct {
	Radians float64 `json:"radians"`
}

// NewRotation2d wraps an angle in radians without normalizing it.
func NewRotation2d(radians float64) Rotation2d {
	return Rotation2d{Radians: radians}
}

// FromDegrees builds a rotation from degrees.
func FromDegrees(deg float64) Rotation2d {
	return Rotation2d{Radians: deg * math.Pi / 180}
}

func (r Rotation2d) Degrees() float64 { return r.Radians * 180 / math.Pi }
func (r Rotation2d) Cos() float64     { return math.Cos(r.Radians) }
func (r Rotation2d) Sin() float64     { return math.Sin(r.Radians) }

// Plus composes two rotations, wrapping the result into [-π, π).
func (r Rotation2d) Plus(other Rotation2d) Rotation2d {
	return Rotation2d{Radians: AngleModulus(r.Radians + other.Radians)}
}

// Minus returns r - other wrapped into [-π, π).
func (r Rotation2d) Minus(other Rotation2d) Rotation2d {
	return Rotation2d{Radians: AngleModulus(r.Radians - other.Radians)}
}

// Interpolate moves from r toward end by fraction f along the shorter arc.
func (r Rotation2d) Interpolate(end Rotation2d, f float64) Rotation2d {
	f = clamp(f, 0, 1)
	delta := AngleModulus(end.Radians - r.Radians)
	return Rotation2d{Radians: AngleModulus(r.Radians + delta*f)}
}

// Pose2d is a position plus an orientation.
type Pose2d struct {
	Translation Translation2d `json:"translation"`
	Rotation    Rotation2d    `json:"rotation"`
}

// NewPose2d builds a pose from coordinates and a heading in radians.
func NewPose2d(x, y, radians float64) Pose2d {
	return Pose2d{Translation: Translation2d{X: x, Y: y}, Rotation: NewRotation2d(radians)}
}

func (p Pose2d) X() float64 { return p.Translation.X }
func (p Pose2d) Y() float64 { return p.Translation.Y }

// WithRotation returns p with its orientation replaced.
func (p Pose2d) WithRotation(r Rotation2d) Pose2d {
	return Pose2d{Translation: p.Translation, Rotation: r}
}

// RelativeTo expresses p in the frame of other.
func (p Pose2d) RelativeTo(other Pose2d) Pose2d {
	delta := p.Translation.Minus(other.Translation).RotateBy(NewRotation2d(-other.Rotation.Radians))
	return Pose2d{Translation: delta, Rotation: p.Rotation.Minus(other.Rotation)}
}

// Flip rotates the pose by half a turn in place, leaving its position alone.
func (p Pose2d) Flip() Pose2d {
	return Pose2d{Translation: p.Translation, Rotation: p.Rotation.Plus(NewRotation2d(math.Pi))}
}

// Twist2d is a displacement along a constant-curvature arc in a pose's own frame.
type Twist2d struct {
	DX     float64
	DY     float64
	DTheta float64
}

// Log returns the twist that moves p onto end.
func (p Pose2d) Log(end Pose2d) Twist2d {
	transform := end.RelativeTo(p)
	dtheta := transform.Rotation.Radians
	halfDtheta := dtheta / 2

	cosMinusOne := math.Cos(dtheta) - 1
	var halfThetaByTanOfHalfDtheta float64
	if math.Abs(cosMinusOne) < 1e-9 {
		halfThetaByTanOfHalfDtheta = 1 - dtheta*dtheta/12
	} else {
		halfThetaByTanOfHalfDtheta = -(halfDtheta * math.Sin(dtheta)) / cosMinusOne
	}

	rot := math.Atan2(-halfDtheta, halfThetaByTanOfHalfDtheta)
	scale := math.Hypot(halfThetaByTanOfHalfDtheta, halfDtheta)
	translation := transform.Translation.RotateBy(NewRotation2d(rot)).Times(scale)
	return Twist2d{DX: translation.X, DY: translation.Y, DTheta: dtheta}
}

// Exp returns the pose reached by following twist from p along a
// constant-curvature arc.
func (p Pose2d) Exp(twist Twist2d) Pose2d {
	sinTheta := math.Sin(twist.DTheta)
	cosTheta := math.Cos(twist.DTheta)

	var s, c float64
	if math.Abs(twist.DTheta) < 1e-9 {
		s = 1 - twist.DTheta*twist.DTheta/6
		c = twist.DTheta / 2
	} else {
		s = sinTheta / twist.DTheta
		c = (1 - cosTheta) / twist.DTheta
	}

	local := Translation2d{X: twist.DX*s - twist.DY*c, Y: twist.DX*c + twist.DY*s}
	return Pose2d{
		Translation: p.Translation.Plus(local.RotateBy(p.Rotation)),
		Rotation:    NewRotation2d(math.Atan2(math.Sin(p.Rotation.Radians+twist.DTheta), math.Cos(p.Rotation.Radians+twist.DTheta))),
	}
}

// Interpolate blends position linearly and orientation along the shorter arc.
func (p Pose2d) Interpolate(end Pose2d, f float64) Pose2d {
	return Pose2d{
		Translation: p.Translation.Interpolate(end.Translation, f),
		Rotation:    p.Rotation.Interpolate(end.Rotation, f),
	}
}

// ChassisSpeeds is a holonomic velocity command. VX/VY are m/s, Omega rad/s.
// Whether the frame is field or robot relative depends on the producer.
type ChassisSpeeds struct {
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}

// FromFieldRelativeSpeeds rotates field-relative speeds into the frame of a
// robot whose heading is robotAngle.
func FromFieldRelativeSpeeds(field ChassisSpeeds, robotAngle Rotation2d) ChassisSpeeds {
	v := Translation2d{X: field.VX, Y: field.VY}.RotateBy(NewRotation2d(-robotAngle.Radians))
	return ChassisSpeeds{VX: v.X, VY: v.Y, Omega: field.Omega}
}

// ToFieldRelativeSpeeds is the inverse of FromFieldRelativeSpeeds.
func ToFieldRelativeSpeeds(robot ChassisSpeeds, robotAngle Rotation2d) ChassisSpeeds {
	v := Translation2d{X: robot.VX, Y: robot.VY}.RotateBy(robotAngle)
	return ChassisSpeeds{VX: v.X, VY: v.Y, Omega: robot.Omega}
}

// AngleModulus wraps an angle into [-π, π).
func AngleModulus(radians float64) float64 {
	return InputModulus(radians, -math.Pi, math.Pi)
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(radians float64) float64 {
	a := math.Mod(radians, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// InputModulus wraps input into [min, max).
func InputModulus(input, min, max float64) float64 {
	modulus := max - min
	n := math.Floor((input - min) / modulus)
	v := input - n*modulus
	if v >= max {
		v -= modulus
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
