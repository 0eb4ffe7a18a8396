package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a position and an orientation in 2D space.
// The rotation matrix holds the cosine and sine of the angle, it is only
// rebuilt by SetAngle so the two can never disagree.
type Transform struct {
	Position mgl64.Vec2
	angle    float64
	rotation mgl64.Mat2
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return NewTransformAt(mgl64.Vec2{0, 0}, 0)
}

// NewTransformAt creates a transform at position, rotated by angle radians
func NewTransformAt(position mgl64.Vec2, angle float64) Transform {
	t := Transform{Position: position}
	t.SetAngle(angle)

	return t
}

func (t *Transform) SetAngle(angle float64) {
	t.angle = angle
	t.rotation = mgl64.Rotate2D(angle)
}

// Rotate adds delta radians to the current angle
func (t *Transform) Rotate(delta float64) {
	t.SetAngle(t.angle + delta)
}

// Move translates the transform by delta
func (t *Transform) Move(delta mgl64.Vec2) {
	t.Position = t.Position.Add(delta)
}

func (t Transform) Angle() float64 {
	return t.angle
}

func (t Transform) Cos() float64 {
	return t.rotation[0]
}

func (t Transform) Sin() float64 {
	return t.rotation[1]
}

// Rotation returns the cached rotation matrix
func (t Transform) Rotation() mgl64.Mat2 {
	return t.rotation
}

// Apply maps a local point to world space: rotate, then translate.
func (t Transform) Apply(point mgl64.Vec2) mgl64.Vec2 {
	return t.rotation.Mul2x1(point).Add(t.Position)
}

// ApplyInverse maps a world point back to local space.
func (t Transform) ApplyInverse(point mgl64.Vec2) mgl64.Vec2 {
	return t.rotation.Transpose().Mul2x1(point.Sub(t.Position))
}

// ApplyRotation rotates a direction without translating it
func (t Transform) ApplyRotation(direction mgl64.Vec2) mgl64.Vec2 {
	return t.rotation.Mul2x1(direction)
}

func (t Transform) ApplyInverseRotation(direction mgl64.Vec2) mgl64.Vec2 {
	return t.rotation.Transpose().Mul2x1(direction)
}
