// Package trajectory owns holonomic trajectory generation.
//
// Responsibilities: velocity profiling of dense path samples against
// global and custom constraints, heading keyframe interpolation
// independent of the direction of travel, time integration into an
// immutable Trajectory, and the generator entry points that tie a
// PathService to that pipeline.
// Key types: Waypoint, PathPoint, HeadingKeyframe, State, Trajectory,
// Constraint, Config, Generator.
//
// Generation is a pure, single-threaded batch computation. A built
// Trajectory is never mutated and may be sampled from any goroutine.
// Dependency rule: this package never imports a concrete path fitter,
// drivetrain or storage package.
package trajectory
