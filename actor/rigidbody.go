package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

const (
	DefaultRestitution     = 0.2
	DefaultDensity         = 0.5
	DefaultStaticFriction  = 0.1
	DefaultDynamicFriction = 0.1
	DefaultMask            = 0xFFFF
	DefaultCategory        = 0x0001
)

// BodyConfig gathers everything needed to build a RigidBody.
// Start from DefaultBodyConfig and override what differs.
type BodyConfig struct {
	Shape           Shape
	Position        mgl64.Vec2
	Angle           float64
	Velocity        mgl64.Vec2
	AngularVelocity float64

	Restitution     float64
	Density         float64
	StaticFriction  float64
	DynamicFriction float64

	// Two bodies only collide when each one's Category intersects the other's Mask
	Mask     uint32
	Category uint32

	BodyType BodyType
	// Disabled bodies are skipped by the world until SetAlive(true) or Attach
	Disabled bool
}

func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		Restitution:     DefaultRestitution,
		Density:         DefaultDensity,
		StaticFriction:  DefaultStaticFriction,
		DynamicFriction: DefaultDynamicFriction,
		Mask:            DefaultMask,
		Category:        DefaultCategory,
		BodyType:        BodyTypeDynamic,
	}
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Transform Transform

	Velocity        mgl64.Vec2 // Linear velocity (m/s)
	AngularVelocity float64    // rad/s, counter-clockwise

	accumulatedForce  mgl64.Vec2
	accumulatedTorque float64

	Material Material
	massData MassData
	BodyType BodyType

	// Collision shape
	Shape Shape

	Mask     uint32
	Category uint32

	alive bool
	owner any
}

// NewRigidBody creates a new rigid body from config.
// Static bodies get zero mass, zero inertia and zero velocity whatever the
// config says.
func NewRigidBody(config BodyConfig) (*RigidBody, error) {
	if config.Shape == nil {
		return nil, fmt.Errorf("%w: body has no shape", ErrConfiguration)
	}

	rb := &RigidBody{
		Transform:       NewTransformAt(config.Position, config.Angle),
		Velocity:        config.Velocity,
		AngularVelocity: config.AngularVelocity,
		Shape:           config.Shape,
		BodyType:        config.BodyType,
		Mask:            config.Mask,
		Category:        config.Category,
		alive:           !config.Disabled,
		Material: Material{
			Restitution:     config.Restitution,
			Density:         config.Density,
			StaticFriction:  config.StaticFriction,
			DynamicFriction: config.DynamicFriction,
		},
	}

	if rb.BodyType == BodyTypeStatic {
		rb.Material.Density = 0
		rb.Velocity = mgl64.Vec2{0, 0}
		rb.AngularVelocity = 0

		return rb, nil
	}

	if config.Density <= 0 {
		return nil, fmt.Errorf("%w: dynamic body density must be positive, got %v", ErrConfiguration, config.Density)
	}
	mass := rb.Shape.ComputeMass(config.Density)
	rb.massData = NewMassData(mass, rb.Shape.ComputeInertia(mass))

	return rb, nil
}

func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic
}

func (rb *RigidBody) MassData() MassData {
	return rb.massData
}

func (rb *RigidBody) Mass() float64 {
	return rb.massData.mass
}

func (rb *RigidBody) InverseMass() float64 {
	return rb.massData.inverseMass
}

func (rb *RigidBody) InverseInertia() float64 {
	return rb.massData.inverseInertia
}

// Alive reports whether the world should simulate this body
func (rb *RigidBody) Alive() bool {
	return rb.alive
}

func (rb *RigidBody) SetAlive(alive bool) {
	rb.alive = alive
}

// Attach binds the body to an owner (usually a game entity) and wakes it
func (rb *RigidBody) Attach(owner any) {
	rb.owner = owner
	rb.alive = true
}

// Detach drops the owner and takes the body out of the simulation
func (rb *RigidBody) Detach() {
	rb.owner = nil
	rb.alive = false
}

func (rb *RigidBody) Owner() any {
	return rb.owner
}

func (rb *RigidBody) SetTransform(position mgl64.Vec2, angle float64) {
	rb.Transform.Position = position
	rb.Transform.SetAngle(angle)
}

// SetVelocity is ignored for static bodies, which always stay at rest
func (rb *RigidBody) SetVelocity(velocity mgl64.Vec2) {
	if rb.BodyType != BodyTypeStatic {
		rb.Velocity = velocity
	}
}

func (rb *RigidBody) SetAngularVelocity(angularVelocity float64) {
	if rb.BodyType != BodyTypeStatic {
		rb.AngularVelocity = angularVelocity
	}
}

func (rb *RigidBody) ApplyForce(force mgl64.Vec2) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

func (rb *RigidBody) ApplyTorque(torque float64) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedTorque += torque
	}
}

// ApplyImpulse changes the velocity by impulse / mass
func (rb *RigidBody) ApplyImpulse(impulse mgl64.Vec2) {
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.massData.inverseMass))
}

func (rb *RigidBody) ApplyAngularImpulse(impulse float64) {
	rb.AngularVelocity += impulse * rb.massData.inverseInertia
}

func (rb *RigidBody) Force() mgl64.Vec2 {
	return rb.accumulatedForce
}

func (rb *RigidBody) Torque() float64 {
	return rb.accumulatedTorque
}

func (rb *RigidBody) ResetForces() {
	rb.accumulatedForce = mgl64.Vec2{0, 0}
	rb.accumulatedTorque = 0
}

// Integrate advances the body by dt with a symplectic scheme: half of the
// linear acceleration is applied before the position update and the other
// half after it.
func (rb *RigidBody) Integrate(dt float64) {
	if rb.BodyType == BodyTypeStatic || !rb.alive {
		return
	}

	halfDt := dt * 0.5
	acceleration := rb.accumulatedForce.Mul(rb.massData.inverseMass)

	rb.Velocity = rb.Velocity.Add(acceleration.Mul(halfDt))
	rb.AngularVelocity += rb.accumulatedTorque * rb.massData.inverseInertia * dt

	rb.Transform.Move(rb.Velocity.Mul(dt))
	rb.Transform.Rotate(rb.AngularVelocity * dt)

	rb.Velocity = rb.Velocity.Add(acceleration.Mul(halfDt))
}

// SupportWorld returns the world-space point of the shape farthest along
// a world-space direction.
func (rb *RigidBody) SupportWorld(direction mgl64.Vec2) mgl64.Vec2 {
	localDirection := rb.Transform.ApplyInverseRotation(direction)
	if rb.Shape.Type() == ShapeTypeCircle {
		localDirection = NormalizeOrZero(localDirection)
	}

	return rb.Transform.Apply(rb.Shape.FarthestPoint(localDirection))
}

func (rb *RigidBody) AABB() AABB {
	return rb.Shape.ComputeAABB(rb.Transform)
}

func (rb *RigidBody) Speed() float64 {
	return rb.Velocity.Len()
}
