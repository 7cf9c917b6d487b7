package motion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cjeanneret/ScaraGo/internal/logic/kinematics"
)

// ArmState is the pose of the arm threaded explicitly through each planning
// cycle. Hand and Elbow stay mutually consistent with the link lengths:
// |Elbow| == UpperArm and |Hand-Elbow| == LowerArm, except transiently
// inside a planning call.
type ArmState struct {
	HandPrev  mgl64.Vec2
	Hand      mgl64.Vec2
	ElbowPrev mgl64.Vec2
	Elbow     mgl64.Vec2
	Target    mgl64.Vec2
	Reachable bool
}

// NewArmState returns the calibrated startup pose: arm fully extended
// straight up, hand at (0, upper+lower), elbow at (0, upper).
func NewArmState(geom kinematics.Geometry) ArmState {
	hand := mgl64.Vec2{0, geom.Reach()}
	elbow := mgl64.Vec2{0, geom.UpperArm}
	return ArmState{
		HandPrev:  hand,
		Hand:      hand,
		ElbowPrev: elbow,
		Elbow:     elbow,
		Target:    hand,
		Reachable: true,
	}
}
