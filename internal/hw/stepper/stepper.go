package stepper

import (
	"time"

	"github.com/cjeanneret/ScaraGo/internal/debug"
	"github.com/cjeanneret/ScaraGo/internal/hw/gpio"
)

// Direction is the rotational direction of a joint motor as seen from
// above the arm.
type Direction int

const (
	CW Direction = iota
	CCW
)

func (d Direction) String() string {
	if d == CW {
		return "CW"
	}
	return "CCW"
}

// Config holds the hardware configuration for a stepper motor.
type Config struct {
	StepPin       int
	DirPin        int
	EnablePin     int           // A4988 ENABLE pin (BCM). 0 = not used. Active LOW (LOW=enabled).
	StepsPerRev   int
	Microstepping int
	StepDelay     time.Duration // delay per half-cycle of STEP pulse. Total step = 2*StepDelay.
}

// Stepper drives one joint motor through SetDirection and Pulse primitives.
// The caller owns step counting; the stepper has no notion of position.
type Stepper struct {
	gpio  gpio.Driver
	cfg   Config
	delay time.Duration // delay between STEP pulse half-cycles
}

// New creates a new stepper motor controller.
// cfg.StepDelay: if 0, defaults to 1ms. For A4988, use half the desired
// inter-step interval per half-cycle.
func New(g gpio.Driver, cfg Config) *Stepper {
	_ = g.SetupPin(cfg.StepPin, gpio.Output)
	_ = g.SetupPin(cfg.DirPin, gpio.Output)

	delay := cfg.StepDelay
	if delay <= 0 {
		delay = 1 * time.Millisecond
	}

	s := &Stepper{
		gpio:  g,
		cfg:   cfg,
		delay: delay,
	}

	// A4988 ENABLE: active LOW. LOW = enabled, HIGH = disabled.
	if cfg.EnablePin > 0 {
		_ = g.SetupPin(cfg.EnablePin, gpio.Output)
		_ = g.WritePin(cfg.EnablePin, gpio.Low) // enable by default
	}

	return s
}

// StepsPerDegree returns the microstep resolution of this motor.
func (s *Stepper) StepsPerDegree() float64 {
	return float64(s.cfg.StepsPerRev*s.cfg.Microstepping) / 360.0
}

// SetDirection latches the DIR line for subsequent pulses.
// Wiring convention: CW = DIR high, CCW = DIR low.
func (s *Stepper) SetDirection(d Direction) error {
	level := gpio.High
	if d == CCW {
		level = gpio.Low
	}
	return s.gpio.WritePin(s.cfg.DirPin, level)
}

// Pulse issues a single STEP pulse (high, delay, low, delay).
func (s *Stepper) Pulse() error {
	if err := s.gpio.WritePin(s.cfg.StepPin, gpio.High); err != nil {
		return err
	}
	time.Sleep(s.delay)
	if err := s.gpio.WritePin(s.cfg.StepPin, gpio.Low); err != nil {
		return err
	}
	time.Sleep(s.delay)
	return nil
}

// Move sets the direction once, then issues the given number of pulses.
func (s *Stepper) Move(d Direction, steps int) error {
	if steps <= 0 {
		return nil
	}

	debug.Printf("Stepper: moving %d steps (%s) on pin %d", steps, d, s.cfg.StepPin)

	if err := s.SetDirection(d); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := s.Pulse(); err != nil {
			return err
		}
	}
	return nil
}

// Enable turns on the motor driver (A4988 ENABLE=LOW). Motors hold position.
func (s *Stepper) Enable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.Low)
}

// Disable turns off the motor driver (A4988 ENABLE=HIGH). Motors freewheel,
// no holding torque.
func (s *Stepper) Disable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.High)
}
