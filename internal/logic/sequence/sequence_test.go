package sequence

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cjeanneret/ScaraGo/internal/hw/gpio"
	"github.com/cjeanneret/ScaraGo/internal/hw/stepper"
	"github.com/cjeanneret/ScaraGo/internal/logic/kinematics"
	"github.com/cjeanneret/ScaraGo/internal/logic/motion"
)

func newTestRunner() *Runner {
	geom := kinematics.Geometry{
		UpperArm:  125,
		LowerArm:  125,
		ElbowXMin: -125,
		ElbowXMax: 125,
		ElbowYMin: 0,
		ElbowYMax: 125,
	}

	newMotor := func() *stepper.Stepper {
		return stepper.New(&gpio.MockDriver{}, stepper.Config{
			StepPin:       1,
			DirPin:        2,
			StepsPerRev:   200,
			Microstepping: 1, // coarse steps keep mock moves fast
			StepDelay:     1 * time.Microsecond,
		})
	}
	shoulder := newMotor()
	elbow := newMotor()

	planner := motion.NewPlanner(geom, shoulder.StepsPerDegree(), elbow.StepsPerDegree())
	ctrl := motion.NewController(shoulder, elbow)
	return NewRunner(planner, ctrl, motion.NewArmState(geom))
}

func TestRunner_MoveTo(t *testing.T) {
	r := newTestRunner()

	if err := r.MoveTo(125, 125); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}

	state := r.State()
	if math.Abs(state.Hand.X()-125) > 1e-6 || math.Abs(state.Hand.Y()-125) > 1e-6 {
		t.Errorf("hand = %v, want (125, 125)", state.Hand)
	}
	if !state.Reachable {
		t.Error("reachable should be true after a successful move")
	}
}

func TestRunner_MoveToOutOfRange(t *testing.T) {
	r := newTestRunner()
	before := r.State()

	err := r.MoveTo(-250, -10)
	if err == nil {
		t.Fatal("expected error for out-of-range target")
	}

	state := r.State()
	if state.Hand != before.Hand || state.Elbow != before.Elbow {
		t.Error("rejected target must not move the pose")
	}
}

func TestRunner_StateDuringMove(t *testing.T) {
	// Mirrors web mode: a move runs in its own goroutine while the pose is
	// polled concurrently. Run with -race to catch unguarded state access.
	r := newTestRunner()

	done := make(chan error, 1)
	go func() {
		done <- r.MoveTo(60, 160)
	}()

	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("MoveTo: %v", err)
			}
			state := r.State()
			if math.Abs(state.Hand.X()-60) > 1e-6 || math.Abs(state.Hand.Y()-160) > 1e-6 {
				t.Errorf("hand = %v, want (60, 160)", state.Hand)
			}
			return
		default:
			_ = r.State()
		}
	}
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScript(t *testing.T) {
	path := writeScript(t, `
delay_ms: 10
targets:
  - {x: 0, y: 250}
  - {x: 125, y: 125}
`)
	script, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if script.DelayMs != 10 {
		t.Errorf("DelayMs = %d, want 10", script.DelayMs)
	}
	if len(script.Targets) != 2 {
		t.Fatalf("targets = %d, want 2", len(script.Targets))
	}
	if script.Targets[1].X != 125 || script.Targets[1].Y != 125 {
		t.Errorf("second target = %+v", script.Targets[1])
	}
}

func TestLoadScript_Empty(t *testing.T) {
	path := writeScript(t, "delay_ms: 10\ntargets: []\n")
	if _, err := LoadScript(path); err == nil {
		t.Error("expected error for empty script")
	}
}

func TestLoadScript_MissingFile(t *testing.T) {
	if _, err := LoadScript(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadScript_BadYAML(t *testing.T) {
	path := writeScript(t, "targets: [not a mapping")
	if _, err := LoadScript(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestRunner_RunScript(t *testing.T) {
	r := newTestRunner()
	script := &Script{
		Targets: []Target{
			{X: 125, Y: 125},
			{X: 0, Y: 250},
		},
	}

	if err := r.Run(context.Background(), script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state := r.State()
	if math.Abs(state.Hand.X()) > 1e-6 || math.Abs(state.Hand.Y()-250) > 1e-6 {
		t.Errorf("hand = %v, want (0, 250)", state.Hand)
	}
}

func TestRunner_RunSkipsRejectedWaypoints(t *testing.T) {
	r := newTestRunner()
	script := &Script{
		Targets: []Target{
			{X: -250, Y: -10}, // out of range, skipped
			{X: 300, Y: 0},    // out of range, skipped
			{X: 125, Y: 125},  // valid
		},
	}

	if err := r.Run(context.Background(), script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state := r.State()
	if math.Abs(state.Hand.X()-125) > 1e-6 || math.Abs(state.Hand.Y()-125) > 1e-6 {
		t.Errorf("hand = %v, want (125, 125)", state.Hand)
	}
}

func TestRunner_RunHonorsCancellation(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	script := &Script{Targets: []Target{{X: 125, Y: 125}}}
	err := r.Run(ctx, script)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	state := r.State()
	if state.Hand.X() != 0 || state.Hand.Y() != 250 {
		t.Errorf("cancelled run must not move the arm, hand = %v", state.Hand)
	}
}
