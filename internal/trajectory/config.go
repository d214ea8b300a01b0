package trajectory

import (
	"fmt"
	"math"
)

// Config holds the global limits and constraints for one generation.
type Config struct {
	MaxVelocity     float64 // m/s
	MaxAcceleration float64 // m/s²
	StartVelocity   float64 // m/s
	EndVelocity     float64 // m/s

	// Reversed drives the path backwards: the robot still visits the
	// waypoints in order, but its velocity along the path is negative.
	Reversed bool

	Constraints []Constraint
}

// NewConfig returns a config with the given global limits, starting and
// ending at rest.
func NewConfig(maxVelocity, maxAcceleration float64) Config {
	return Config{MaxVelocity: maxVelocity, MaxAcceleration: maxAcceleration}
}

// AddConstraint appends a constraint and returns the updated config.
func (c Config) AddConstraint(constraints ...Constraint) Config {
	c.Constraints = append(append([]Constraint(nil), c.Constraints...), constraints...)
	return c
}

// Validate checks the global limits.
func (c Config) Validate() error {
	if !(c.MaxVelocity > 0) || math.IsInf(c.MaxVelocity, 0) {
		return fmt.Errorf("max velocity must be positive and finite, got %g", c.MaxVelocity)
	}
	if !(c.MaxAcceleration > 0) || math.IsInf(c.MaxAcceleration, 0) {
		return fmt.Errorf("max acceleration must be positive and finite, got %g", c.MaxAcceleration)
	}
	if c.StartVelocity < 0 || c.EndVelocity < 0 {
		return fmt.Errorf("start and end velocity must be non-negative magnitudes, got %g and %g",
			c.StartVelocity, c.EndVelocity)
	}
	return nil
}
