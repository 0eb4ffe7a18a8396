// Package epa implements the Expanding Polygon Algorithm for computing penetration depth.
//
// EPA is run after GJK detects a collision to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//
// The algorithm expands a polygon (starting from GJK's final triangle) toward the
// boundary of the Minkowski difference, until the edge closest to the origin can no
// longer be pushed outwards. That edge gives the Minimum Translation Vector.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"
	"math"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations limits polygon expansion to prevent infinite loops.
	// If this limit is reached, EPA returns ErrNoConvergence.
	MaxIterations = 30

	// Tolerance defines when EPA has converged: the support point found along
	// the closest edge normal lies within Tolerance of that edge.
	Tolerance = 1e-5

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	// This helps with numerical stability and axis-aligned collisions.
	NormalSnapThreshold = 1e-8
)

var (
	// ErrDegenerate is returned when the polygon collapses: no usable edge,
	// a zero-length normal or a support point on the origin.
	ErrDegenerate = errors.New("epa: degenerate polytope")

	// ErrNoConvergence is returned when MaxIterations is exhausted.
	ErrNoConvergence = errors.New("epa: no convergence")
)

// Penetration is the minimum translation separating two overlapping shapes.
// Normal points from body A toward body B and has unit length.
type Penetration struct {
	Normal mgl64.Vec2
	Depth  float64
}

// EPA computes penetration depth and normal for overlapping convex shapes.
//
// Algorithm overview:
//  1. Start with the triangle from GJK (encloses the origin)
//  2. Find the edge closest to the origin
//  3. Get the support point along that edge's outward normal
//  4. If the support point is no farther than the edge → done
//  5. Otherwise insert the support point between the edge's endpoints
//  6. Repeat from step 2
func EPA(a, b *actor.RigidBody, simplex *gjk.Simplex) (Penetration, error) {
	if simplex.Count < 3 {
		return Penetration{}, fmt.Errorf("%w: simplex has %d points", ErrDegenerate, simplex.Count)
	}

	polytope := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(polytope)

	if err := polytope.Reset(simplex); err != nil {
		return Penetration{}, err
	}

	for i := 0; i < MaxIterations; i++ {
		edge, ok := polytope.ClosestEdge()
		if !ok {
			return Penetration{}, fmt.Errorf("%w: no edge with a usable normal", ErrDegenerate)
		}

		support := gjk.MinkowskiSupport(a, b, edge.Normal)
		distance := support.Dot(edge.Normal)
		if math.Abs(distance) < actor.Epsilon {
			return Penetration{}, fmt.Errorf("%w: support point on the origin", ErrDegenerate)
		}

		if math.Abs(distance-edge.Distance) <= Tolerance {
			return Penetration{
				Normal: snapNormalToAxis(edge.Normal),
				Depth:  edge.Distance,
			}, nil
		}

		polytope.Insert(edge.Index+1, support)
	}

	return Penetration{}, fmt.Errorf("%w after %d iterations", ErrNoConvergence, MaxIterations)
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero.
//
// This improves numerical stability for axis-aligned collisions (box on ground)
// by preventing tiny floating-point errors from causing jitter in tangent directions.
func snapNormalToAxis(normal mgl64.Vec2) mgl64.Vec2 {
	x := normal[0]
	y := normal[1]

	if math.Abs(x) < NormalSnapThreshold {
		x = 0
	}
	if math.Abs(y) < NormalSnapThreshold {
		y = 0
	}

	clamped := actor.NormalizeOrZero(mgl64.Vec2{x, y})
	if actor.IsZero(clamped) {
		return normal
	}

	return clamped
}
