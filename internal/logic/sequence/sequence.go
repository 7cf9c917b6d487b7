// Package sequence runs motion cycles: single targets from an input source
// or scripted target lists loaded from YAML.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/ScaraGo/internal/debug"
	"github.com/cjeanneret/ScaraGo/internal/logic/motion"
)

// Runner owns the planning/execution cycle for one arm.
// The pose is read from the web handlers while a move runs in another
// goroutine, so every access goes through mu.
type Runner struct {
	planner *motion.Planner
	ctrl    *motion.Controller

	mu    sync.Mutex
	state motion.ArmState
}

func NewRunner(planner *motion.Planner, ctrl *motion.Controller, state motion.ArmState) *Runner {
	return &Runner{
		planner: planner,
		ctrl:    ctrl,
		state:   state,
	}
}

// State returns a copy of the current arm pose. Safe to call while a move
// is executing.
func (r *Runner) State() motion.ArmState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// MoveTo runs one full motion cycle for the given target: plan, then drive
// the shoulder and elbow serially. Rejected targets skip the cycle and leave
// the arm ready for the next one.
//
// The lock covers only the pose update; it is never held across the pulse
// train, so State stays responsive during long moves.
func (r *Runner) MoveTo(x, y float64) error {
	target := mgl64.Vec2{x, y}
	debug.Target(x, y)

	r.mu.Lock()
	shoulderCmd, elbowCmd, err := r.planner.PlanMotion(&r.state, target)
	pose := r.state
	r.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, motion.ErrOutOfRange):
			debug.Info("Target out of range")
		case errors.Is(err, motion.ErrUnreachable):
			debug.Info("Error, position impossible")
		}
		return err
	}

	if err := r.ctrl.ExecuteCycle(shoulderCmd, elbowCmd); err != nil {
		return err
	}

	debug.Pose("Hand", pose.Hand.X(), pose.Hand.Y())
	debug.Pose("Elbow", pose.Elbow.X(), pose.Elbow.Y())
	return nil
}

// Target is one scripted waypoint.
type Target struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Script is a list of waypoints with an optional pause between moves.
type Script struct {
	DelayMs int      `yaml:"delay_ms"`
	Targets []Target `yaml:"targets"`
}

// LoadScript reads a YAML target script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if len(s.Targets) == 0 {
		return nil, fmt.Errorf("script contains no targets")
	}
	return &s, nil
}

// Run drives the arm through every waypoint of the script. Rejected targets
// are reported and skipped; the run continues with the next waypoint.
// Cancellation is honored between moves, never mid-pulse-train.
func (r *Runner) Run(ctx context.Context, script *Script) error {
	_ = r.ctrl.EnableMotors()

	delay := time.Duration(script.DelayMs) * time.Millisecond

	for i, t := range script.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		debug.Live("Waypoint %d/%d: (%.2f, %.2f)", i+1, len(script.Targets), t.X, t.Y)
		if err := r.MoveTo(t.X, t.Y); err != nil {
			if errors.Is(err, motion.ErrOutOfRange) || errors.Is(err, motion.ErrUnreachable) {
				continue
			}
			return err
		}

		if delay > 0 && i < len(script.Targets)-1 {
			time.Sleep(delay)
		}
	}

	return nil
}
