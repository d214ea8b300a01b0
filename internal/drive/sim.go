package drive

import (
	"math"
	"sync"
	"time"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/timeutil"
)

// Sim is a perfect holonomic drivetrain: it moves exactly as commanded.
// The pose is integrated lazily whenever it is read or a new command
// arrives, using elapsed time on the clock.
type Sim struct {
	clock timeutil.Clock

	// MaxSpeed and MaxAngularSpeed clamp commands when positive.
	MaxSpeed        float64 // m/s
	MaxAngularSpeed float64 // rad/s

	mu       sync.Mutex
	pose     geometry.Pose2d
	speeds   geometry.ChassisSpeeds
	updated  time.Time
	commands int
}

// NewSim returns a simulator at rest at pose.
func NewSim(clock timeutil.Clock, pose geometry.Pose2d) *Sim {
	return &Sim{clock: clock, pose: pose, updated: clock.Now()}
}

// advance integrates the current command up to now. Caller holds mu.
func (s *Sim) advance() {
	now := s.clock.Now()
	dt := now.Sub(s.updated).Seconds()
	s.updated = now
	if dt <= 0 {
		return
	}
	s.pose = s.pose.Exp(geometry.Twist2d{
		DX:     s.speeds.VX * dt,
		DY:     s.speeds.VY * dt,
		DTheta: s.speeds.Omega * dt,
	})
}

func (s *Sim) Pose() geometry.Pose2d {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.pose
}

func (s *Sim) ResetPose(pose geometry.Pose2d) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	s.pose = pose
	return nil
}

func (s *Sim) Drive(speeds geometry.ChassisSpeeds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	s.speeds = s.clamp(speeds)
	s.commands++
	return nil
}

// Speeds returns the command currently being executed.
func (s *Sim) Speeds() geometry.ChassisSpeeds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speeds
}

// Commands returns how many commands have been received.
func (s *Sim) Commands() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands
}

func (s *Sim) clamp(speeds geometry.ChassisSpeeds) geometry.ChassisSpeeds {
	if s.MaxSpeed > 0 {
		if v := math.Hypot(speeds.VX, speeds.VY); v > s.MaxSpeed {
			speeds.VX *= s.MaxSpeed / v
			speeds.VY *= s.MaxSpeed / v
		}
	}
	if s.MaxAngularSpeed > 0 {
		speeds.Omega = math.Max(-s.MaxAngularSpeed, math.Min(s.MaxAngularSpeed, speeds.Omega))
	}
	return speeds
}
