// Package follow runs a trajectory follower against a drivetrain on a
// fixed control period.
package follow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/holonomic/internal/control"
	"github.com/banshee-data/holonomic/internal/drive"
	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/monitoring"
	"github.com/banshee-data/holonomic/internal/timeutil"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// ErrNotStarted is returned by Step before Start.
var ErrNotStarted = errors.New("runner not started")

// TickSample records one control tick.
type TickSample struct {
	Time      float64                `json:"time"` // seconds since Start
	Reference trajectory.State       `json:"reference"`
	Measured  geometry.Pose2d        `json:"measured"`
	Command   geometry.ChassisSpeeds `json:"command"`
	PoseError geometry.Pose2d        `json:"pose_error"`
}

// RunResult summarizes a run.
type RunResult struct {
	Samples  []TickSample
	Finished bool // false when the run was cancelled
	Elapsed  time.Duration
}

// FinalPose is the last measured pose, or the zero pose for an empty run.
func (r RunResult) FinalPose() geometry.Pose2d {
	if len(r.Samples) == 0 {
		return geometry.Pose2d{}
	}
	return r.Samples[len(r.Samples)-1].Measured
}

type Option func(*Runner)

// WithClock replaces the real clock.
func WithClock(c timeutil.Clock) Option { return func(r *Runner) { r.clock = c } }

// WithPeriod sets the control period. Non-positive periods are ignored.
func WithPeriod(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.period = d
		}
	}
}

// WithStopOnFinish controls whether a zero command is sent when the run
// ends. Enabled by default.
func WithStopOnFinish(stop bool) Option { return func(r *Runner) { r.stopOnFinish = stop } }

// WithResetPose resets drivetrain odometry to the trajectory's initial pose
// on Start.
func WithResetPose(reset bool) Option { return func(r *Runner) { r.resetPose = reset } }

// Runner drives one trajectory to completion. It is not safe for
// concurrent use.
type Runner struct {
	traj     *trajectory.Trajectory
	follower *control.Follower
	drive    drive.Drivetrain

	clock        timeutil.Clock
	period       time.Duration
	stopOnFinish bool
	resetPose    bool

	started bool
	start   time.Time
	samples []TickSample
}

func NewRunner(traj *trajectory.Trajectory, follower *control.Follower, dt drive.Drivetrain, opts ...Option) *Runner {
	r := &Runner{
		traj:         traj,
		follower:     follower,
		drive:        dt,
		clock:        timeutil.RealClock{},
		period:       time.Duration(control.DefaultPeriod * float64(time.Second)),
		stopOnFinish: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start resets the follower and begins timing.
func (r *Runner) Start() error {
	if r.resetPose {
		if err := r.drive.ResetPose(r.traj.InitialPose()); err != nil {
			return fmt.Errorf("reset pose: %w", err)
		}
	}
	r.follower.Reset()
	r.samples = r.samples[:0]
	r.start = r.clock.Now()
	r.started = true
	monitoring.Logf("follow: starting %.2fs trajectory (%d states)", r.traj.TotalTime(), r.traj.Len())
	return nil
}

// Step runs one control tick and reports whether the trajectory's duration
// has elapsed.
func (r *Runner) Step() (bool, error) {
	if !r.started {
		return false, ErrNotStarted
	}
	elapsed := r.clock.Since(r.start).Seconds()
	reference := r.traj.Sample(elapsed)
	measured := r.drive.Pose()

	command := r.follower.Calculate(measured, reference)
	if err := r.drive.Drive(command); err != nil {
		return false, fmt.Errorf("drive: %w", err)
	}

	r.samples = append(r.samples, TickSample{
		Time:      elapsed,
		Reference: reference,
		Measured:  measured,
		Command:   command,
		PoseError: r.follower.PoseError(),
	})
	return elapsed >= r.traj.TotalTime(), nil
}

// Samples returns the ticks recorded since Start.
func (r *Runner) Samples() []TickSample {
	out := make([]TickSample, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *Runner) stop() error {
	if !r.stopOnFinish {
		return nil
	}
	if err := r.drive.Drive(geometry.ChassisSpeeds{}); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Run starts the runner and steps it every period until the trajectory
// finishes, a drive command fails, or ctx is cancelled. The result holds
// every recorded tick in all cases.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	if err := r.Start(); err != nil {
		return RunResult{}, err
	}

	ticker := r.clock.NewTicker(r.period)
	defer ticker.Stop()

	result := func(finished bool) RunResult {
		return RunResult{Samples: r.Samples(), Finished: finished, Elapsed: r.clock.Since(r.start)}
	}

	for {
		done, err := r.Step()
		if err != nil {
			return result(false), errors.Join(err, r.stop())
		}
		if done {
			res := result(true)
			final := res.FinalPose()
			monitoring.Logf("follow: finished after %d ticks at (%.3f, %.3f, %.1f°)",
				len(res.Samples), final.X(), final.Y(), final.Rotation.Degrees())
			return res, r.stop()
		}

		select {
		case <-ctx.Done():
			monitoring.Logf("follow: cancelled after %d ticks", len(r.samples))
			return result(false), errors.Join(ctx.Err(), r.stop())
		case <-ticker.C():
		}
	}
}
