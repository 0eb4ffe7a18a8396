package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec2AlmostEqual(a, b mgl64.Vec2, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) && almostEqual(a.Y(), b.Y(), epsilon)
}

func TestNewTransform_Identity(t *testing.T) {
	tr := NewTransform()
	p := mgl64.Vec2{3, -4}

	if got := tr.Apply(p); got != p {
		t.Errorf("Identity transform should not move points, got %v", got)
	}
	if tr.Cos() != 1 || tr.Sin() != 0 {
		t.Errorf("Expected cos=1 sin=0, got cos=%v sin=%v", tr.Cos(), tr.Sin())
	}
}

func TestTransform_SetAngleKeepsTrigInSync(t *testing.T) {
	tr := NewTransform()

	for _, angle := range []float64{0, math.Pi / 6, math.Pi / 2, -2.5, 10} {
		tr.SetAngle(angle)

		if !almostEqual(tr.Cos(), math.Cos(angle), 1e-12) {
			t.Errorf("angle %v: cos = %v, want %v", angle, tr.Cos(), math.Cos(angle))
		}
		if !almostEqual(tr.Sin(), math.Sin(angle), 1e-12) {
			t.Errorf("angle %v: sin = %v, want %v", angle, tr.Sin(), math.Sin(angle))
		}
		if tr.Angle() != angle {
			t.Errorf("Angle() = %v, want %v", tr.Angle(), angle)
		}
	}
}

func TestTransform_Apply(t *testing.T) {
	tr := NewTransformAt(mgl64.Vec2{10, 5}, math.Pi/2)

	// (1, 0) rotated a quarter turn is (0, 1), then translated
	got := tr.Apply(mgl64.Vec2{1, 0})
	if !vec2AlmostEqual(got, mgl64.Vec2{10, 6}, 1e-12) {
		t.Errorf("Expected (10, 6), got %v", got)
	}

	dir := tr.ApplyRotation(mgl64.Vec2{1, 0})
	if !vec2AlmostEqual(dir, mgl64.Vec2{0, 1}, 1e-12) {
		t.Errorf("Rotation should ignore translation, got %v", dir)
	}
}

func TestTransform_ApplyInverseRoundTrip(t *testing.T) {
	tr := NewTransformAt(mgl64.Vec2{-2, 7}, 0.7)
	points := []mgl64.Vec2{{0, 0}, {1, 2}, {-5, 3.5}, {100, -40}}

	for _, p := range points {
		back := tr.ApplyInverse(tr.Apply(p))
		if !vec2AlmostEqual(back, p, 1e-9) {
			t.Errorf("ApplyInverse(Apply(%v)) = %v", p, back)
		}

		dir := tr.ApplyInverseRotation(tr.ApplyRotation(p))
		if !vec2AlmostEqual(dir, p, 1e-9) {
			t.Errorf("inverse rotation round trip of %v = %v", p, dir)
		}
	}
}

func TestTransform_RotateAndMove(t *testing.T) {
	tr := NewTransform()
	tr.Rotate(0.25)
	tr.Rotate(0.5)
	tr.Move(mgl64.Vec2{1, 1})
	tr.Move(mgl64.Vec2{2, -3})

	if !almostEqual(tr.Angle(), 0.75, 1e-12) {
		t.Errorf("Expected angle 0.75, got %v", tr.Angle())
	}
	if !almostEqual(tr.Sin(), math.Sin(0.75), 1e-12) {
		t.Errorf("Sin out of sync after Rotate: %v", tr.Sin())
	}
	if tr.Position != (mgl64.Vec2{3, -2}) {
		t.Errorf("Expected position (3, -2), got %v", tr.Position)
	}
}

func TestCrossAndTripleProduct(t *testing.T) {
	if got := Cross(mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}); got != 1 {
		t.Errorf("Cross(x, y) = %v, want 1", got)
	}
	if got := Cross(mgl64.Vec2{0, 1}, mgl64.Vec2{1, 0}); got != -1 {
		t.Errorf("Cross(y, x) = %v, want -1", got)
	}

	// Perpendicular to ab, pointing towards the origin
	ab := mgl64.Vec2{2, 0}
	ao := mgl64.Vec2{-1, -1}
	perp := TripleProduct(ab, ao, ab)
	if perp.X() != 0 || perp.Y() >= 0 {
		t.Errorf("Expected a vector along -Y, got %v", perp)
	}
}

func TestNormalizeOrZero(t *testing.T) {
	if got := NormalizeOrZero(mgl64.Vec2{0, 0}); got != (mgl64.Vec2{0, 0}) {
		t.Errorf("Expected zero vector, got %v", got)
	}
	if got := NormalizeOrZero(mgl64.Vec2{3, 4}); !vec2AlmostEqual(got, mgl64.Vec2{0.6, 0.8}, 1e-12) {
		t.Errorf("Expected (0.6, 0.8), got %v", got)
	}
	if !IsZero(mgl64.Vec2{1e-12, -1e-12}) {
		t.Error("Tiny vector should be zero")
	}
}
