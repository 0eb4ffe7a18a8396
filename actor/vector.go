package actor

import "github.com/go-gl/mathgl/mgl64"

// Epsilon is the tolerance below which a length or a dot product is zero.
const Epsilon = 1e-9

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// TripleProduct computes (a x b) x c for vectors lying in the plane,
// which is b*(a.c) - a*(b.c).
func TripleProduct(a, b, c mgl64.Vec2) mgl64.Vec2 {
	ac := a.Dot(c)
	bc := b.Dot(c)

	return b.Mul(ac).Sub(a.Mul(bc))
}

// NormalizeOrZero is Normalize without the NaN on zero-length input.
func NormalizeOrZero(v mgl64.Vec2) mgl64.Vec2 {
	length := v.Len()
	if length < Epsilon {
		return mgl64.Vec2{0, 0}
	}

	return v.Mul(1.0 / length)
}

// IsZero reports whether both components are within Epsilon of zero
func IsZero(v mgl64.Vec2) bool {
	return v.LenSqr() < Epsilon*Epsilon
}
