package motion

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cjeanneret/ScaraGo/internal/debug"
	"github.com/cjeanneret/ScaraGo/internal/hw/stepper"
	"github.com/cjeanneret/ScaraGo/internal/logic/kinematics"
)

// Joint identifies one of the two arm actuators.
type Joint int

const (
	Shoulder Joint = iota
	Elbow
)

func (j Joint) String() string {
	switch j {
	case Shoulder:
		return "shoulder"
	case Elbow:
		return "elbow"
	default:
		return "unknown"
	}
}

// JointCommand is one rotation order for one joint: direction plus a
// non-negative pulse count. Produced and consumed per motion cycle.
type JointCommand struct {
	Joint     Joint
	Direction stepper.Direction
	Steps     int
}

var (
	// ErrOutOfRange means the target failed the working-area check; the
	// effective target is reset to the current hand position.
	ErrOutOfRange = errors.New("target out of range")

	// ErrUnreachable means the target passed the working-area check but no
	// valid elbow solution exists; the pose is left untouched.
	ErrUnreachable = errors.New("position impossible")

	// ErrUnknownJoint means a command named a joint the controller does not
	// drive; no pulses are issued.
	ErrUnknownJoint = errors.New("unknown joint")
)

// Planner converts consecutive poses into joint commands.
type Planner struct {
	geom kinematics.Geometry

	shoulderStepsPerDeg float64
	elbowStepsPerDeg    float64
}

// NewPlanner creates a planner for the given geometry and per-joint
// microstep resolutions.
func NewPlanner(geom kinematics.Geometry, shoulderStepsPerDeg, elbowStepsPerDeg float64) *Planner {
	return &Planner{
		geom:                geom,
		shoulderStepsPerDeg: shoulderStepsPerDeg,
		elbowStepsPerDeg:    elbowStepsPerDeg,
	}
}

// PlanMotion runs one full planning cycle: gate the target, solve the elbow
// position, derive both joint deltas, and update the pose. It is the single
// entry point; callers never sequence the phases themselves.
//
// On ErrOutOfRange the target is reset to the current hand position and no
// commands are produced. On ErrUnreachable the state is unchanged. In both
// cases the cycle is skipped and the arm stays ready for the next target.
func (p *Planner) PlanMotion(state *ArmState, target mgl64.Vec2) (shoulderCmd, elbowCmd JointCommand, err error) {
	shoulderCmd = JointCommand{Joint: Shoulder}
	elbowCmd = JointCommand{Joint: Elbow}

	if !kinematics.Validate(target, p.geom) {
		state.Target = state.Hand
		state.Reachable = false
		return shoulderCmd, elbowCmd, ErrOutOfRange
	}
	state.Target = target

	newElbow, ok := kinematics.Solve(target, p.geom, state.Elbow)
	if !ok {
		state.Reachable = false
		return shoulderCmd, elbowCmd, ErrUnreachable
	}
	state.Reachable = true

	// Shoulder: rotate the upper arm from the old elbow bearing to the new
	// one, taking the short way around.
	shoulderDeg := wrapDeg180(angleDeg(newElbow) - angleDeg(state.Elbow))
	shoulderCmd.Direction = stepper.CCW
	if shoulderDeg < 0 {
		shoulderCmd.Direction = stepper.CW
	}
	shoulderCmd.Steps = int(math.Round(math.Abs(shoulderDeg) * p.shoulderStepsPerDeg))
	debug.Verbose("Shoulder delta: %.3f° → %d steps %s", shoulderDeg, shoulderCmd.Steps, shoulderCmd.Direction)

	// The hand rides along with the elbow during the shoulder rotation.
	hand := state.Hand.Add(newElbow.Sub(state.Elbow))

	// Elbow: rotate the lower arm from where the hand ended up onto the
	// target, re-expressed relative to the new elbow.
	elbowDeg := elbowRotationDeg(hand.Sub(newElbow), target.Sub(newElbow), newElbow.Mul(-1))
	elbowCmd.Direction = stepper.CW
	if elbowDeg < 0 {
		elbowCmd.Direction = stepper.CCW
	}
	elbowCmd.Steps = int(math.Round(math.Abs(elbowDeg) * p.elbowStepsPerDeg))
	debug.Verbose("Elbow delta: %.3f° → %d steps %s", elbowDeg, elbowCmd.Steps, elbowCmd.Direction)

	// Open loop: the move is assumed to land exactly on target.
	state.HandPrev = state.Hand
	state.ElbowPrev = state.Elbow
	state.Elbow = newElbow
	state.Hand = target

	return shoulderCmd, elbowCmd, nil
}

// elbowRotationDeg returns the signed lower-arm rotation (positive = CW)
// that brings the hand onto the target without sweeping the lower arm
// across the upper arm.
//
// hand and target are relative to the elbow; toShoulder points from the
// elbow back along the upper arm. The direct rotation is taken when the
// target sits inside the sweep before the lower arm would hit the upper
// arm; otherwise the complementary long way around is taken.
func elbowRotationDeg(hand, target, toShoulder mgl64.Vec2) float64 {
	deg := angleDeg(hand) - angleDeg(target)
	if deg == 0 {
		// Already on target; a zero rotation sweeps nothing.
		return 0
	}

	// Current bend angle between the lower arm and the upper arm, measured
	// in the direction of the planned rotation.
	bend := angleDeg(hand) - angleDeg(toShoulder)

	if deg >= 0 {
		for bend < 0 {
			bend += 360
		}
		for bend >= 360 {
			bend -= 360
		}
		if deg < bend {
			return deg
		}
		return deg - 360
	}

	for bend > 0 {
		bend -= 360
	}
	for bend <= -360 {
		bend += 360
	}
	if deg > bend {
		return deg
	}
	return deg + 360
}

// wrapDeg180 wraps an angle into (-180, 180].
func wrapDeg180(deg float64) float64 {
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// angleDeg returns the bearing of v in degrees.
func angleDeg(v mgl64.Vec2) float64 {
	return mgl64.RadToDeg(math.Atan2(v.Y(), v.X()))
}
