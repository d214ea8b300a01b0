// Package path fits smooth curves through waypoints and samples them densely
// enough for velocity profiling.
//
// Two fitters are provided. QuinticService joins consecutive waypoints with
// quintic Hermite segments whose end tangents are the waypoint tangents (or
// an estimate from the neighbouring waypoints) and whose second derivatives
// are zero at every waypoint. CubicService fits natural cubic splines of x and
// y over cumulative chord length using gonum's interp package, or Hermite
// cubics when tangents are given.
//
// Both hand each fitted segment to a Sampler, which subdivides the segment's
// parameter interval until the pose change across every sub-interval is
// small, and both emit each waypoint exactly as a sample so headings attached
// to waypoints can be bound to sample indices.
package path
