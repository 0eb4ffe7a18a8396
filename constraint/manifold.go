package constraint

import (
	"math"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/collision"
	"github.com/go-gl/mathgl/mgl64"
)

// Manifold is the contact between two bodies for a single step.
// Normal points from BodyA toward BodyB and Overlap is the penetration
// depth along it.
type Manifold struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	Collided bool
	Normal   mgl64.Vec2
	Overlap  float64
}

var _ Constraint = (*Manifold)(nil)

func NewManifold(a, b *actor.RigidBody) *Manifold {
	return &Manifold{BodyA: a, BodyB: b}
}

// Solve fills the manifold: bounding boxes first, then the narrow-phase test
// for the pair's shape types. A degenerate narrow phase is returned as the
// error while the manifold reports no collision.
func (m *Manifold) Solve() error {
	m.Collided = false
	m.Normal = mgl64.Vec2{0, 0}
	m.Overlap = 0

	if !m.BodyA.AABB().Overlaps(m.BodyB.AABB()) {
		return nil
	}

	result := collision.Collide(m.BodyA, m.BodyB)
	if !result.Collided {
		return result.Err
	}

	m.Collided = true
	m.Normal = result.Normal
	m.Overlap = result.Overlap

	return nil
}

func (m *Manifold) inverseMassSum() float64 {
	return m.BodyA.InverseMass() + m.BodyB.InverseMass()
}

// Apply resolves the relative velocity along the normal with restitution,
// then applies Coulomb friction along the tangent.
func (m *Manifold) Apply() {
	if !m.Collided || actor.IsZero(m.Normal) {
		return
	}
	invMassSum := m.inverseMassSum()
	if invMassSum == 0 {
		return
	}

	a := m.BodyA
	b := m.BodyB

	if a.Transform.Position.Sub(b.Transform.Position).Dot(m.Normal) > 0 {
		m.Normal = m.Normal.Mul(-1)
	}
	normal := m.Normal

	relativeVelocity := b.Velocity.Sub(a.Velocity)
	velocityAlongNormal := relativeVelocity.Dot(normal)
	// Already separating
	if velocityAlongNormal >= 0 {
		return
	}

	e := ComputeRestitution(a.Material, b.Material)
	j := -(1 + e) * velocityAlongNormal / invMassSum

	impulse := normal.Mul(j)
	a.ApplyImpulse(impulse.Mul(-1))
	b.ApplyImpulse(impulse)

	// Friction
	relativeVelocity = b.Velocity.Sub(a.Velocity)
	tangent := actor.NormalizeOrZero(relativeVelocity.Sub(normal.Mul(relativeVelocity.Dot(normal))))
	if actor.IsZero(tangent) {
		return
	}

	jt := -relativeVelocity.Dot(tangent) / invMassSum
	mu := ComputeStaticFriction(a.Material, b.Material)

	var frictionImpulse mgl64.Vec2
	if math.Abs(jt) < j*mu {
		frictionImpulse = tangent.Mul(jt)
	} else {
		frictionImpulse = tangent.Mul(-j * ComputeDynamicFriction(a.Material, b.Material))
	}

	a.ApplyImpulse(frictionImpulse.Mul(-1))
	b.ApplyImpulse(frictionImpulse)
}

// CorrectPosition pushes the bodies apart along the normal in proportion to
// their inverse masses. Overlap under PenetrationSlop is left in place.
func (m *Manifold) CorrectPosition() {
	if !m.Collided || actor.IsZero(m.Normal) {
		return
	}
	invMassSum := m.inverseMassSum()
	if invMassSum == 0 {
		return
	}

	a := m.BodyA
	b := m.BodyB

	correction := math.Max(m.Overlap-PenetrationSlop, 0) / invMassSum * CorrectionPercent
	if correction == 0 {
		return
	}
	c := m.Normal.Mul(correction)

	if !a.IsStatic() {
		a.Transform.Move(c.Mul(-a.InverseMass()))
	}
	if !b.IsStatic() {
		b.Transform.Move(c.Mul(b.InverseMass()))
	}
}

// Contact returns an approximate contact point, halfway between the deepest
// points of each body along the normal. Meant for debug drawing.
func (m *Manifold) Contact() mgl64.Vec2 {
	if actor.IsZero(m.Normal) {
		return m.BodyA.Transform.Position.Add(m.BodyB.Transform.Position).Mul(0.5)
	}

	onA := m.BodyA.SupportWorld(m.Normal)
	onB := m.BodyB.SupportWorld(m.Normal.Mul(-1))

	return onA.Add(onB).Mul(0.5)
}
