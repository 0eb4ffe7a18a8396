package constraint

import (
	"math"

	"github.com/bulmanator/cluster/actor"
)

const (
	// PenetrationSlop is the overlap left alone by position correction,
	// so resting contacts do not jitter.
	PenetrationSlop = 0.01

	// CorrectionPercent is the share of the remaining overlap removed per step.
	CorrectionPercent = 0.2
)

// Constraint is solved by the world in two stages: Apply during the velocity
// passes, then CorrectPosition once after integration.
type Constraint interface {
	Apply()
	CorrectPosition()
}

// ComputeRestitution keeps the least bouncy of the two materials.
func ComputeRestitution(matA, matB actor.Material) float64 {
	return math.Min(matA.Restitution, matB.Restitution)
}

func ComputeStaticFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.StaticFriction*matA.StaticFriction + matB.StaticFriction*matB.StaticFriction)
}

func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction*matA.DynamicFriction + matB.DynamicFriction*matB.DynamicFriction)
}
