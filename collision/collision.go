// Package collision holds the narrow-phase tests, one per pair of shape
// types, and the table dispatching a pair of bodies to the right one.
package collision

import (
	"math"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/epa"
	"github.com/bulmanator/cluster/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Result of a narrow-phase test. Normal points from A toward B and Overlap
// is the penetration depth along it. Err explains a degenerate case that
// was reported as no collision.
type Result struct {
	Collided bool
	Normal   mgl64.Vec2
	Overlap  float64
	Err      error
}

// Handler tests two bodies whose shapes match its slot in the table.
type Handler func(a, b *actor.RigidBody) Result

var handlers = [actor.ShapeTypeCount][actor.ShapeTypeCount]Handler{
	actor.ShapeTypePolygon: {
		actor.ShapeTypePolygon: PolygonPolygon,
		actor.ShapeTypeCircle:  PolygonCircle,
	},
	actor.ShapeTypeCircle: {
		actor.ShapeTypePolygon: CirclePolygon,
		actor.ShapeTypeCircle:  CircleCircle,
	},
}

// HandlerFor returns the test for a pair of shape types.
func HandlerFor(a, b actor.ShapeType) Handler {
	return handlers[a][b]
}

// Collide dispatches on the shape types of a and b.
func Collide(a, b *actor.RigidBody) Result {
	return handlers[a.Shape.Type()][b.Shape.Type()](a, b)
}

// CircleCircle compares the center distance to the sum of the radii.
// Touching circles collide with zero overlap. Coincident centers collide
// with a zero normal, which the solver leaves alone.
func CircleCircle(a, b *actor.RigidBody) Result {
	ca := a.Shape.(*actor.Circle)
	cb := b.Shape.(*actor.Circle)

	delta := b.Transform.Position.Sub(a.Transform.Position)
	radii := ca.Radius + cb.Radius
	distSqr := delta.LenSqr()
	if distSqr > radii*radii {
		return Result{}
	}

	return Result{
		Collided: true,
		Normal:   actor.NormalizeOrZero(delta),
		Overlap:  radii - math.Sqrt(distSqr),
	}
}

// CirclePolygon moves the circle center into the polygon's local space,
// finds the face of greatest separation and resolves against that face or
// against one of its vertices.
func CirclePolygon(a, b *actor.RigidBody) Result {
	circle := a.Shape.(*actor.Circle)
	polygon := b.Shape.(*actor.Polygon)

	center := b.Transform.ApplyInverse(a.Transform.Position)
	radius := circle.Radius

	separation := math.Inf(-1)
	face := 0
	for i := 0; i < polygon.VertexCount(); i++ {
		s := polygon.Normal(i).Dot(center.Sub(polygon.Vertex(i)))
		if s > radius {
			return Result{}
		}
		if s > separation {
			separation = s
			face = i
		}
	}

	v1 := polygon.Vertex(face)
	v2 := polygon.Vertex((face + 1) % polygon.VertexCount())

	// Center inside the polygon: push out through the closest face
	if separation < actor.Epsilon {
		return Result{
			Collided: true,
			Normal:   b.Transform.ApplyRotation(polygon.Normal(face)).Mul(-1),
			Overlap:  radius - separation,
		}
	}

	dot1 := center.Sub(v1).Dot(v2.Sub(v1))
	dot2 := center.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case dot1 <= 0:
		return circleVertex(b, center, radius, v1)
	case dot2 <= 0:
		return circleVertex(b, center, radius, v2)
	default:
		return Result{
			Collided: true,
			Normal:   b.Transform.ApplyRotation(polygon.Normal(face)).Mul(-1),
			Overlap:  radius - separation,
		}
	}
}

// circleVertex resolves a circle against a single polygon corner, all in
// the polygon's local space.
func circleVertex(polygonBody *actor.RigidBody, center mgl64.Vec2, radius float64, vertex mgl64.Vec2) Result {
	toVertex := vertex.Sub(center)
	distSqr := toVertex.LenSqr()
	if distSqr > radius*radius {
		return Result{}
	}

	normal := actor.NormalizeOrZero(toVertex)
	if actor.IsZero(normal) {
		return Result{}
	}

	return Result{
		Collided: true,
		Normal:   polygonBody.Transform.ApplyRotation(normal),
		Overlap:  radius - math.Sqrt(distSqr),
	}
}

// PolygonCircle runs CirclePolygon with the bodies swapped and flips the
// normal back so it points from A to B.
func PolygonCircle(a, b *actor.RigidBody) Result {
	result := CirclePolygon(b, a)
	result.Normal = result.Normal.Mul(-1)

	return result
}

// PolygonPolygon runs GJK and, on a hit, EPA for the penetration.
// EPA failures are reported as no collision.
func PolygonPolygon(a, b *actor.RigidBody) Result {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)

	if !gjk.GJK(a, b, simplex) {
		return Result{}
	}

	penetration, err := epa.EPA(a, b, simplex)
	if err != nil {
		return Result{Err: err}
	}

	return Result{
		Collided: true,
		Normal:   penetration.Normal,
		Overlap:  penetration.Depth,
	}
}
