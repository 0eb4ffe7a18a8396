// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for collision detection.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski difference
// contains the origin. In the plane the simplex grows from a point to a segment to a
// triangle, and a triangle enclosing the origin proves the overlap.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"math"
	"sync"

	"github.com/bulmanator/cluster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxIterations caps the number of support points added before giving up.
const MaxIterations = 30

// Simplex represents a set of 1-3 points in the Minkowski difference space.
// Points[Count-1] is always the most recent support point.
type Simplex struct {
	Points [3]mgl64.Vec2
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) push(p mgl64.Vec2) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) set(points ...mgl64.Vec2) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport computes a support point in the Minkowski difference (A - B):
// furthestPoint(A, direction) - furthestPoint(B, -direction).
func MinkowskiSupport(a, b *actor.RigidBody, direction mgl64.Vec2) mgl64.Vec2 {
	supportA := a.SupportWorld(direction)
	supportB := b.SupportWorld(direction.Mul(-1))
	return supportA.Sub(supportB)
}

// GJK performs collision detection between two convex rigid bodies.
//
// The search starts along the line joining the two centers. Each iteration adds
// the support point along the current direction. If that point does not pass
// the origin the shapes are separated; otherwise the simplex is reduced to the
// feature closest to the origin and the direction updated.
//
// On a hit the simplex holds a triangle enclosing the origin, which EPA uses as
// its initial polytope. Running out of iterations counts as no collision.
func GJK(a, b *actor.RigidBody, simplex *Simplex) bool {
	simplex.Reset()

	direction := b.Transform.Position.Sub(a.Transform.Position)
	if actor.IsZero(direction) {
		direction = mgl64.Vec2{1, 0}
	}

	first := MinkowskiSupport(a, b, direction)
	if first.Dot(direction) < 0 {
		return false
	}
	simplex.push(first)

	direction = first.Mul(-1)
	if actor.IsZero(direction) {
		// The origin sits on the boundary: touching only
		return false
	}

	for i := 0; i < MaxIterations; i++ {
		support := MinkowskiSupport(a, b, direction)
		if support.Dot(direction) <= 0 {
			return false
		}
		simplex.push(support)

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

// containsOrigin reduces the simplex and updates the search direction.
// It returns true only once a triangle encloses the origin.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec2) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	}

	return false
}

func line(simplex *Simplex, direction *mgl64.Vec2) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]

	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perp := actor.TripleProduct(ab, ao, ab)
	if actor.IsZero(perp) {
		// Origin lies on the segment; any side of it will do to build a triangle
		perp = mgl64.Vec2{-ab.Y(), ab.X()}
	}
	*direction = perp

	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec2) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	if math.Abs(actor.Cross(ab, ac)) < actor.Epsilon {
		// Collinear points: drop the oldest and treat as a segment
		simplex.set(b, a)
		return line(simplex, direction)
	}

	abPerp := actor.TripleProduct(ac, ab, ab)
	if abPerp.Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = abPerp
		return false
	}

	acPerp := actor.TripleProduct(ab, ac, ac)
	if acPerp.Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = acPerp
		return false
	}

	return true
}
