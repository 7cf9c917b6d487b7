package motion

import (
	"fmt"

	"github.com/cjeanneret/ScaraGo/internal/debug"
	"github.com/cjeanneret/ScaraGo/internal/hw/stepper"
)

// Controller executes joint commands on the two stepper motors.
// It's an intermediate layer between planning and low-level (GPIO).
type Controller struct {
	shoulder *stepper.Stepper
	elbow    *stepper.Stepper
}

func NewController(shoulder, elbow *stepper.Stepper) *Controller {
	return &Controller{
		shoulder: shoulder,
		elbow:    elbow,
	}
}

// Execute runs a single joint command: direction first, then the pulses.
// An unknown joint id issues no pulses and reports an error.
func (c *Controller) Execute(cmd JointCommand) error {
	var s *stepper.Stepper
	switch cmd.Joint {
	case Shoulder:
		s = c.shoulder
	case Elbow:
		s = c.elbow
	default:
		return fmt.Errorf("%w: %d", ErrUnknownJoint, cmd.Joint)
	}

	debug.Move(cmd.Joint.String(), cmd.Steps, cmd.Direction.String())
	return s.Move(cmd.Direction, cmd.Steps)
}

// ExecuteCycle drives one motion cycle: the shoulder runs to completion
// before the elbow starts.
func (c *Controller) ExecuteCycle(shoulderCmd, elbowCmd JointCommand) error {
	if err := c.Execute(shoulderCmd); err != nil {
		return err
	}
	return c.Execute(elbowCmd)
}

// EnableMotors powers both joint drivers (holding torque on).
func (c *Controller) EnableMotors() error {
	if err := c.shoulder.Enable(); err != nil {
		return err
	}
	return c.elbow.Enable()
}

// DisableMotors releases both joint drivers (motors freewheel).
func (c *Controller) DisableMotors() error {
	if err := c.shoulder.Disable(); err != nil {
		return err
	}
	return c.elbow.Disable()
}
