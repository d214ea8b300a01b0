package trajectory

import (
	"errors"
	"fmt"
)

var (
	// ErrTrajectoryGeneration marks unrecoverable generation failures:
	// contradictory constraints or a profile that cannot advance in time.
	ErrTrajectoryGeneration = errors.New("trajectory generation failed")

	// ErrMalformedPath is returned by path services for degenerate waypoints.
	ErrMalformedPath = errors.New("malformed path")

	// ErrInvalidKeyframes is returned when heading keyframes do not cover the
	// path from its first to its last sample with increasing indices.
	ErrInvalidKeyframes = errors.New("invalid heading keyframes")
)

// ConstraintError reports a constraint whose minimum acceleration exceeded
// its maximum at a sample.
type ConstraintError struct {
	Constraint string
	Index      int
	Min        float64
	Max        float64
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s at sample %d: min acceleration %.6g exceeds max acceleration %.6g",
		e.Constraint, e.Index, e.Min, e.Max)
}

func (e *ConstraintError) Unwrap() error { return ErrTrajectoryGeneration }

// StallError reports a sample the time integrator could not reach because
// both velocity and acceleration were zero on the way to it.
type StallError struct {
	Index int
}

func (e *StallError) Error() string {
	return fmt.Sprintf("time parameterization stalled at sample %d: zero velocity and zero acceleration", e.Index)
}

func (e *StallError) Unwrap() error { return ErrTrajectoryGeneration }

// IsRecoverable reports whether err describes bad geometric input rather
// than a programming or tuning mistake.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMalformedPath) || errors.Is(err, ErrInvalidKeyframes)
}
