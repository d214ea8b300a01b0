// Package drive connects the follower to something that moves: a kinematic
// simulator for offline runs and tests, or a serial bridge to a drivetrain
// controller.
package drive

import (
	"github.com/banshee-data/holonomic/internal/geometry"
)

// Drivetrain accepts robot-relative velocity commands and reports the
// robot's field pose.
type Drivetrain interface {
	// Pose returns the latest field-relative pose estimate.
	Pose() geometry.Pose2d

	// ResetPose overrides the odometry with pose.
	ResetPose(pose geometry.Pose2d) error

	// Drive commands robot-relative chassis speeds until the next call.
	Drive(speeds geometry.ChassisSpeeds) error
}
