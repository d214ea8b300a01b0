package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/holonomic/internal/control"
	"github.com/banshee-data/holonomic/internal/drive"
	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/path"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/trajectory.defaults.json"

// Spline names accepted by the spline field.
const (
	SplineQuintic = "quintic"
	SplineCubic   = "cubic"
)

// TuningConfig holds drivetrain limits, follower gains and runtime
// settings. Every field is optional; the Get* methods supply defaults for
// anything left out, so partial files are safe.
type TuningConfig struct {
	// Profile limits
	MaxVelocity                *float64 `json:"max_velocity,omitempty"`     // m/s
	MaxAcceleration            *float64 `json:"max_acceleration,omitempty"` // m/s²
	StartVelocity              *float64 `json:"start_velocity,omitempty"`
	EndVelocity                *float64 `json:"end_velocity,omitempty"`
	MaxCentripetalAcceleration *float64 `json:"max_centripetal_acceleration,omitempty"` // 0 disables
	Reversed                   *bool    `json:"reversed,omitempty"`
	Spline                     *string  `json:"spline,omitempty"` // "quintic" or "cubic"

	// Heading controller limits
	MaxAngularVelocity     *float64 `json:"max_angular_velocity,omitempty"`     // rad/s
	MaxAngularAcceleration *float64 `json:"max_angular_acceleration,omitempty"` // rad/s²

	// Follower gains
	TranslationGains *control.Gains `json:"translation_gains,omitempty"`
	RotationGains    *control.Gains `json:"rotation_gains,omitempty"`

	// Follower tolerances
	ToleranceX          *float64 `json:"tolerance_x,omitempty"` // m
	ToleranceY          *float64 `json:"tolerance_y,omitempty"` // m
	ToleranceHeadingDeg *float64 `json:"tolerance_heading_deg,omitempty"`

	// Runtime
	ControlPeriod  *string `json:"control_period,omitempty"` // duration string like "20ms"
	StopOnFinish   *bool   `json:"stop_on_finish,omitempty"`
	ResetPose      *bool   `json:"reset_pose,omitempty"`
	SerialPort     *string `json:"serial_port,omitempty"`
	SerialBaud     *int    `json:"serial_baud,omitempty"`
	SerialParity   *string `json:"serial_parity,omitempty"` // N, E or O
	SerialStopBits *int    `json:"serial_stop_bits,omitempty"`
	DatabasePath   *string `json:"database_path,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1 MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or one of its parents. It panics when the file cannot be found, and is
// intended for tests and tools run from inside the repository.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/trajgen/ and friends
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from the repository root")
}

func positive(name string, v *float64) error {
	if v != nil && (!(*v > 0) || math.IsInf(*v, 0)) {
		return fmt.Errorf("%s must be positive and finite, got %g", name, *v)
	}
	return nil
}

func nonNegative(name string, v *float64) error {
	if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return fmt.Errorf("%s must be non-negative, got %g", name, *v)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	checks := []error{
		positive("max_velocity", c.MaxVelocity),
		positive("max_acceleration", c.MaxAcceleration),
		positive("max_angular_velocity", c.MaxAngularVelocity),
		positive("max_angular_acceleration", c.MaxAngularAcceleration),
		nonNegative("start_velocity", c.StartVelocity),
		nonNegative("end_velocity", c.EndVelocity),
		nonNegative("max_centripetal_acceleration", c.MaxCentripetalAcceleration),
		nonNegative("tolerance_x", c.ToleranceX),
		nonNegative("tolerance_y", c.ToleranceY),
		nonNegative("tolerance_heading_deg", c.ToleranceHeadingDeg),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if c.Spline != nil && *c.Spline != SplineQuintic && *c.Spline != SplineCubic {
		return fmt.Errorf("spline must be %q or %q, got %q", SplineQuintic, SplineCubic, *c.Spline)
	}

	if c.ControlPeriod != nil && *c.ControlPeriod != "" {
		d, err := time.ParseDuration(*c.ControlPeriod)
		if err != nil {
			return fmt.Errorf("invalid control_period '%s': %w", *c.ControlPeriod, err)
		}
		if d <= 0 {
			return fmt.Errorf("control_period must be positive, got %s", d)
		}
	}

	if c.SerialBaud != nil && *c.SerialBaud <= 0 {
		return fmt.Errorf("serial_baud must be positive, got %d", *c.SerialBaud)
	}
	if _, err := c.PortOptions().Normalize(); err != nil {
		return fmt.Errorf("serial options: %w", err)
	}
	return nil
}

func getFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func getBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func getString(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

// GetMaxVelocity returns max_velocity or 3 m/s.
func (c *TuningConfig) GetMaxVelocity() float64 { return getFloat(c.MaxVelocity, 3) }

// GetMaxAcceleration returns max_acceleration or 2 m/s².
func (c *TuningConfig) GetMaxAcceleration() float64 { return getFloat(c.MaxAcceleration, 2) }

func (c *TuningConfig) GetStartVelocity() float64 { return getFloat(c.StartVelocity, 0) }
func (c *TuningConfig) GetEndVelocity() float64   { return getFloat(c.EndVelocity, 0) }

// GetMaxCentripetalAcceleration returns the centripetal limit; 0 means none.
func (c *TuningConfig) GetMaxCentripetalAcceleration() float64 {
	return getFloat(c.MaxCentripetalAcceleration, 0)
}

func (c *TuningConfig) GetReversed() bool { return getBool(c.Reversed, false) }

// GetSpline returns the spline family, quintic by default.
func (c *TuningConfig) GetSpline() string { return getString(c.Spline, SplineQuintic) }

// GetMaxAngularVelocity returns max_angular_velocity or π rad/s.
func (c *TuningConfig) GetMaxAngularVelocity() float64 {
	return getFloat(c.MaxAngularVelocity, math.Pi)
}

// GetMaxAngularAcceleration returns max_angular_acceleration or 2π rad/s².
func (c *TuningConfig) GetMaxAngularAcceleration() float64 {
	return getFloat(c.MaxAngularAcceleration, 2*math.Pi)
}

// GetTranslationGains returns the x/y controller gains, P=1 by default.
func (c *TuningConfig) GetTranslationGains() control.Gains {
	if c.TranslationGains == nil {
		return control.Gains{P: 1}
	}
	return *c.TranslationGains
}

// GetRotationGains returns the heading controller gains, P=1 by default.
func (c *TuningConfig) GetRotationGains() control.Gains {
	if c.RotationGains == nil {
		return control.Gains{P: 1}
	}
	return *c.RotationGains
}

// GetTolerance returns the follower tolerance as a pose of x, y and
// heading errors.
func (c *TuningConfig) GetTolerance() geometry.Pose2d {
	return geometry.Pose2d{
		Translation: geometry.Translation2d{X: getFloat(c.ToleranceX, 0.05), Y: getFloat(c.ToleranceY, 0.05)},
		Rotation:    geometry.FromDegrees(getFloat(c.ToleranceHeadingDeg, 2)),
	}
}

// GetControlPeriod parses control_period, defaulting to 20ms.
func (c *TuningConfig) GetControlPeriod() time.Duration {
	const def = 20 * time.Millisecond
	if c.ControlPeriod == nil || *c.ControlPeriod == "" {
		return def
	}
	d, err := time.ParseDuration(*c.ControlPeriod)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (c *TuningConfig) GetStopOnFinish() bool { return getBool(c.StopOnFinish, true) }
func (c *TuningConfig) GetResetPose() bool    { return getBool(c.ResetPose, false) }

// GetSerialPort returns the drivetrain bridge port, empty when unset.
func (c *TuningConfig) GetSerialPort() string { return getString(c.SerialPort, "") }

// GetSerialBaud returns serial_baud or 115200.
func (c *TuningConfig) GetSerialBaud() int {
	if c.SerialBaud == nil {
		return 115200
	}
	return *c.SerialBaud
}

// PortOptions returns the serial settings for the drivetrain bridge.
func (c *TuningConfig) PortOptions() drive.PortOptions {
	opts := drive.PortOptions{BaudRate: c.GetSerialBaud(), Parity: getString(c.SerialParity, "N")}
	if c.SerialStopBits != nil {
		opts.StopBits = *c.SerialStopBits
	}
	return opts
}

// GetDatabasePath returns database_path or trajectories.db.
func (c *TuningConfig) GetDatabasePath() string { return getString(c.DatabasePath, "trajectories.db") }

// TrajectoryConfig builds the generation config, adding a centripetal
// constraint when one is configured.
func (c *TuningConfig) TrajectoryConfig() trajectory.Config {
	cfg := trajectory.NewConfig(c.GetMaxVelocity(), c.GetMaxAcceleration())
	cfg.StartVelocity = c.GetStartVelocity()
	cfg.EndVelocity = c.GetEndVelocity()
	cfg.Reversed = c.GetReversed()
	if a := c.GetMaxCentripetalAcceleration(); a > 0 {
		cfg = cfg.AddConstraint(trajectory.CentripetalAccelerationConstraint{MaxCentripetalAcceleration: a})
	}
	return cfg
}

// PathService returns the spline fitter named by spline.
func (c *TuningConfig) PathService() trajectory.PathService {
	if c.GetSpline() == SplineCubic {
		return path.CubicService{}
	}
	return path.QuinticService{}
}

// FollowerConfig builds the follower's controller description.
func (c *TuningConfig) FollowerConfig() control.FollowerConfig {
	return control.FollowerConfig{
		Translation:            c.GetTranslationGains(),
		Rotation:               c.GetRotationGains(),
		MaxAngularVelocity:     c.GetMaxAngularVelocity(),
		MaxAngularAcceleration: c.GetMaxAngularAcceleration(),
		Tolerance:              c.GetTolerance(),
		Period:                 c.GetControlPeriod().Seconds(),
	}
}
