package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cjeanneret/ScaraGo/internal/config"
	"github.com/cjeanneret/ScaraGo/internal/debug"
	"github.com/cjeanneret/ScaraGo/internal/hw/gpio"
	"github.com/cjeanneret/ScaraGo/internal/hw/stepper"
	"github.com/cjeanneret/ScaraGo/internal/input"
	"github.com/cjeanneret/ScaraGo/internal/logic/kinematics"
	"github.com/cjeanneret/ScaraGo/internal/logic/motion"
	"github.com/cjeanneret/ScaraGo/internal/logic/sequence"
	"github.com/cjeanneret/ScaraGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	target := flag.String("target", "", `move once to "x,y" and exit`)
	scriptPath := flag.String("script", "", "run a YAML target script and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize joint motors
	debug.Step(2, "Initializing joint motors")
	shoulderMotor := stepper.New(gpioDriver, stepper.Config{
		StepPin:       cfg.ShoulderStepper.StepPin,
		DirPin:        cfg.ShoulderStepper.DirPin,
		EnablePin:     cfg.ShoulderStepper.EnablePin,
		StepsPerRev:   cfg.ShoulderStepper.StepsPerRev,
		Microstepping: cfg.ShoulderStepper.Microstepping,
		StepDelay:     cfg.StepperMoveSpeed(cfg.ShoulderStepper) / 2,
	})
	debug.PrintStruct("Shoulder stepper config", cfg.ShoulderStepper)
	elbowMotor := stepper.New(gpioDriver, stepper.Config{
		StepPin:       cfg.ElbowStepper.StepPin,
		DirPin:        cfg.ElbowStepper.DirPin,
		EnablePin:     cfg.ElbowStepper.EnablePin,
		StepsPerRev:   cfg.ElbowStepper.StepsPerRev,
		Microstepping: cfg.ElbowStepper.Microstepping,
		StepDelay:     cfg.StepperMoveSpeed(cfg.ElbowStepper) / 2,
	})
	debug.PrintStruct("Elbow stepper config", cfg.ElbowStepper)

	// Geometry, planner and controller
	debug.Step(3, "Initializing kinematics")
	geom := kinematics.NewGeometry(cfg)
	debug.Value("Upper arm (mm)", geom.UpperArm)
	debug.Value("Lower arm (mm)", geom.LowerArm)
	debug.Value("Reach (mm)", geom.Reach())

	planner := motion.NewPlanner(geom, shoulderMotor.StepsPerDegree(), elbowMotor.StepsPerDegree())
	ctrl := motion.NewController(shoulderMotor, elbowMotor)
	runner := sequence.NewRunner(planner, ctrl, motion.NewArmState(geom))

	startPose := runner.State()
	debug.Pose("Hand", startPose.Hand.X(), startPose.Hand.Y())
	debug.Pose("Elbow", startPose.Elbow.X(), startPose.Elbow.Y())

	if port := webPort.port(); port > 0 {
		runWeb(ctx, fmt.Sprintf(":%d", port), runner, geom)
		return
	}

	if *scriptPath != "" {
		script, err := sequence.LoadScript(*scriptPath)
		if err != nil {
			log.Fatalf("load script failed: %v", err)
		}
		debug.Section("Running Script")
		if err := runner.Run(ctx, script); err != nil {
			log.Fatalf("script failed: %v", err)
		}
		debug.Section("Script Complete")
		return
	}

	if *target != "" {
		x, y, err := input.ParsePair(*target)
		if err != nil {
			log.Fatalf("invalid -target: %v", err)
		}
		if err := runner.MoveTo(x, y); err != nil {
			log.Fatalf("move failed: %v", err)
		}
		return
	}

	// Default: interactive loop on the configured input source
	runInputLoop(ctx, cfg, runner)
}

// runWeb serves the jog page until the context is cancelled.
func runWeb(ctx context.Context, addr string, runner *sequence.Runner, geom kinematics.Geometry) {
	broadcaster := web.NewStatusBroadcaster()
	debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

	info := web.ArmInfo{
		UpperArmMm: geom.UpperArm,
		LowerArmMm: geom.LowerArm,
		ReachMm:    geom.Reach(),
	}
	state := func() web.StateResponse {
		s := runner.State()
		return web.StateResponse{
			Hand:      [2]float64{s.Hand.X(), s.Hand.Y()},
			Elbow:     [2]float64{s.Elbow.X(), s.Elbow.Y()},
			Target:    [2]float64{s.Target.X(), s.Target.Y()},
			Reachable: s.Reachable,
		}
	}

	srv := web.NewServer(addr, broadcaster, runner.MoveTo, state, info)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("web server: %v", err)
	}
}

// runInputLoop accepts targets one at a time until EOF or cancellation.
// Every rejected target is reported and skipped; the loop never halts on a
// bad coordinate.
func runInputLoop(ctx context.Context, cfg *config.Config, runner *sequence.Runner) {
	src, err := input.New(cfg.Input, os.Stdin)
	if err != nil {
		log.Fatalf("init input failed: %v", err)
	}
	defer src.Close()

	debug.Section("Awaiting Targets")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		x, y, err := src.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			debug.Error(err)
			continue
		}

		if err := runner.MoveTo(x, y); err != nil {
			// Reported inside the cycle; stay ready for the next target.
			continue
		}
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
