// Package kinematics computes elbow positions for a two-link planar arm.
//
// The shoulder joint is fixed at the origin. For a given hand target the
// elbow must lie on the circle of radius UpperArm around the origin and on
// the circle of radius LowerArm around the target; the solver intersects
// the two circles and picks the branch closest to the previous elbow pose.
package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cjeanneret/ScaraGo/internal/config"
)

// Geometry is the fixed mechanical configuration of the arm.
type Geometry struct {
	UpperArm float64 // shoulder to elbow length
	LowerArm float64 // elbow to hand length

	// Elbow bounding box; solutions outside it are discarded so the arm
	// stays in its valid physical half-plane.
	ElbowXMin, ElbowXMax float64
	ElbowYMin, ElbowYMax float64
}

// NewGeometry builds the arm geometry from configuration.
func NewGeometry(cfg *config.Config) Geometry {
	return Geometry{
		UpperArm:  cfg.Arm.UpperArmMm,
		LowerArm:  cfg.Arm.LowerArmMm,
		ElbowXMin: cfg.ElbowXMin(),
		ElbowXMax: cfg.ElbowXMax(),
		ElbowYMin: cfg.ElbowYMin(),
		ElbowYMax: cfg.ElbowYMax(),
	}
}

// Reach returns the outer radius of the reachable envelope.
func (g Geometry) Reach() float64 {
	return g.UpperArm + g.LowerArm
}

// InnerReach returns the inner radius of the reachable envelope
// (arm fully folded).
func (g Geometry) InnerReach() float64 {
	return math.Abs(g.LowerArm - g.UpperArm)
}

// Validate gates a target against the working-area bounding box before any
// solving happens: y must be in [0, reach] and x in [-reach, reach].
// It has no side effects; on rejection the caller keeps the current pose.
func Validate(target mgl64.Vec2, geom Geometry) bool {
	reach := geom.Reach()
	if target.Y() < 0 || target.Y() > reach {
		return false
	}
	if target.X() < -reach || target.X() > reach {
		return false
	}
	return true
}

// Solve computes the elbow position for the given hand target using the
// two-circle intersection. It returns the previous elbow and ok=false when
// the target is outside the annulus [InnerReach, Reach], coincides with the
// shoulder origin, or when no candidate lies inside the elbow bounding box.
func Solve(target mgl64.Vec2, geom Geometry, prevElbow mgl64.Vec2) (mgl64.Vec2, bool) {
	dist := target.Len()
	if dist == 0 || dist > geom.Reach() || dist < geom.InnerReach() {
		return prevElbow, false
	}

	// Signed distance from the origin along the origin→target axis to the
	// radical line, and the half-chord of the intersection. The annulus
	// check above keeps the radicand non-negative up to rounding.
	a := (geom.UpperArm*geom.UpperArm - geom.LowerArm*geom.LowerArm + dist*dist) / (2 * dist)
	h := math.Sqrt(math.Max(0, geom.UpperArm*geom.UpperArm-a*a))

	foot := target.Mul(a / dist)
	offset := perp(target).Mul(h / dist)

	cand1 := foot.Add(offset)
	cand2 := foot.Sub(offset)

	return selectBranch(cand1, cand2, prevElbow, geom)
}

// selectBranch picks the candidate closest to the previous elbow to
// minimize joint travel, discarding candidates outside the elbow bounding
// box. If neither candidate is in bounds there is no safe branch.
func selectBranch(cand1, cand2, prevElbow mgl64.Vec2, geom Geometry) (mgl64.Vec2, bool) {
	in1 := geom.elbowInBounds(cand1)
	in2 := geom.elbowInBounds(cand2)

	switch {
	case in1 && in2:
		if cand2.Sub(prevElbow).Len() < cand1.Sub(prevElbow).Len() {
			return cand2, true
		}
		return cand1, true
	case in1:
		return cand1, true
	case in2:
		return cand2, true
	default:
		return prevElbow, false
	}
}

func (g Geometry) elbowInBounds(e mgl64.Vec2) bool {
	return e.X() >= g.ElbowXMin && e.X() <= g.ElbowXMax &&
		e.Y() >= g.ElbowYMin && e.Y() <= g.ElbowYMax
}

// perp returns the clockwise perpendicular of v: (y, -x).
func perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{v.Y(), -v.X()}
}
