package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StepperConfig holds the hardware configuration for one joint motor.
type StepperConfig struct {
	StepPin       int `yaml:"step_pin"`
	DirPin        int `yaml:"dir_pin"`
	EnablePin     int `yaml:"enable_pin"` // A4988 ENABLE pin (BCM). 0 = not used. Active LOW.
	StepsPerRev   int `yaml:"steps_per_rev"`
	Microstepping int `yaml:"microstepping"`
	MoveSpeedMs   int `yaml:"move_speed_ms"` // per-joint inter-step delay; 0 = use defaults.move_speed_ms
}

// ArmConfig describes the two-link geometry of the arm.
// The shoulder joint sits at the origin; the elbow bounding box keeps the
// elbow in the physically valid half-plane when two solutions exist.
type ArmConfig struct {
	UpperArmMm float64 `yaml:"upper_arm_mm"` // shoulder to elbow
	LowerArmMm float64 `yaml:"lower_arm_mm"` // elbow to hand

	// Optional elbow bounding box. Unset values default to
	// x in [-upper_arm_mm, upper_arm_mm], y in [0, upper_arm_mm].
	ElbowXMinMm *float64 `yaml:"elbow_x_min_mm,omitempty"`
	ElbowXMaxMm *float64 `yaml:"elbow_x_max_mm,omitempty"`
	ElbowYMinMm *float64 `yaml:"elbow_y_min_mm,omitempty"`
	ElbowYMaxMm *float64 `yaml:"elbow_y_max_mm,omitempty"`
}

// InputConfig selects where target coordinates come from.
// Type selects a concrete implementation ("console" or "serial").
type InputConfig struct {
	Type   string `yaml:"type"`   // "console" (default) or "serial"
	Device string `yaml:"device"` // serial device path, e.g. /dev/ttyUSB0
	Baud   int    `yaml:"baud"`   // serial baud rate
}

// DefaultsConfig contains generic parameters (speed, debug, etc.).
type DefaultsConfig struct {
	MoveSpeedMs int  `yaml:"move_speed_ms"` // delay between motor steps
	DebugLevel  int  `yaml:"debug_level"`   // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO    bool `yaml:"mock_gpio"`     // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	ShoulderStepper StepperConfig  `yaml:"shoulder_stepper"`
	ElbowStepper    StepperConfig  `yaml:"elbow_stepper"`
	Arm             ArmConfig      `yaml:"arm"`
	Input           InputConfig    `yaml:"input"`
	Defaults        DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Arm.UpperArmMm <= 0 {
		return nil, fmt.Errorf("arm.upper_arm_mm must be > 0, got %.2f", cfg.Arm.UpperArmMm)
	}
	if cfg.Arm.LowerArmMm <= 0 {
		return nil, fmt.Errorf("arm.lower_arm_mm must be > 0, got %.2f", cfg.Arm.LowerArmMm)
	}
	for name, sc := range map[string]StepperConfig{
		"shoulder_stepper": cfg.ShoulderStepper,
		"elbow_stepper":    cfg.ElbowStepper,
	} {
		if sc.StepsPerRev <= 0 {
			return nil, fmt.Errorf("%s.steps_per_rev must be > 0, got %d", name, sc.StepsPerRev)
		}
		if sc.Microstepping <= 0 {
			return nil, fmt.Errorf("%s.microstepping must be > 0, got %d", name, sc.Microstepping)
		}
	}
	if cfg.Defaults.MoveSpeedMs <= 0 {
		cfg.Defaults.MoveSpeedMs = 2 // reasonable default
	}
	switch cfg.Input.Type {
	case "":
		cfg.Input.Type = "console"
	case "console":
	case "serial":
		if cfg.Input.Device == "" {
			return nil, fmt.Errorf("input.device is required for serial input")
		}
		if cfg.Input.Baud <= 0 {
			cfg.Input.Baud = 9600
		}
	default:
		return nil, fmt.Errorf("unsupported input.type: %s", cfg.Input.Type)
	}

	return &cfg, nil
}

// ValidateConfigPath restricts config files to *.yaml under a configs/ directory.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("config path must not traverse directories: %s", path)
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have .yaml extension: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must live under a configs/ directory: %s", path)
	}
	return nil
}

// MoveSpeed returns the default duration between two motor steps.
func (c *Config) MoveSpeed() time.Duration {
	return time.Duration(c.Defaults.MoveSpeedMs) * time.Millisecond
}

// StepperMoveSpeed returns the inter-step delay for one stepper block,
// falling back to the global default when the block does not set one.
func (c *Config) StepperMoveSpeed(sc StepperConfig) time.Duration {
	if sc.MoveSpeedMs > 0 {
		return time.Duration(sc.MoveSpeedMs) * time.Millisecond
	}
	return c.MoveSpeed()
}

// Reach returns the full extension of the arm (upper + lower link).
func (c *Config) Reach() float64 {
	return c.Arm.UpperArmMm + c.Arm.LowerArmMm
}

// ElbowXMin returns the configured elbow x lower bound, or -upper_arm_mm.
func (c *Config) ElbowXMin() float64 {
	if c.Arm.ElbowXMinMm != nil {
		return *c.Arm.ElbowXMinMm
	}
	return -c.Arm.UpperArmMm
}

// ElbowXMax returns the configured elbow x upper bound, or upper_arm_mm.
func (c *Config) ElbowXMax() float64 {
	if c.Arm.ElbowXMaxMm != nil {
		return *c.Arm.ElbowXMaxMm
	}
	return c.Arm.UpperArmMm
}

// ElbowYMin returns the configured elbow y lower bound, or 0.
func (c *Config) ElbowYMin() float64 {
	if c.Arm.ElbowYMinMm != nil {
		return *c.Arm.ElbowYMinMm
	}
	return 0
}

// ElbowYMax returns the configured elbow y upper bound, or upper_arm_mm.
func (c *Config) ElbowYMax() float64 {
	if c.Arm.ElbowYMaxMm != nil {
		return *c.Arm.ElbowYMaxMm
	}
	return c.Arm.UpperArmMm
}
