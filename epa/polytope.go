package epa

import (
	"fmt"
	"math"
	"sync"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Edge of the expanding polygon: the segment from point Index to Index+1.
type Edge struct {
	Normal   mgl64.Vec2 // Outward unit normal
	Distance float64    // Distance from the origin along Normal
	Index    int
}

// Polytope is the convex polygon grown by EPA. Its winding is fixed by the
// initial triangle and kept by every insertion.
type Polytope struct {
	points    []mgl64.Vec2
	clockwise bool
}

// One GJK triangle plus one point per iteration
const polytopeInitialCapacity = 3 + MaxIterations

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &Polytope{points: make([]mgl64.Vec2, 0, polytopeInitialCapacity)}
	},
}

// Reset loads the GJK triangle into the polytope.
func (p *Polytope) Reset(simplex *gjk.Simplex) error {
	p.points = append(p.points[:0], simplex.Points[:simplex.Count]...)

	if len(p.points) < 3 {
		return fmt.Errorf("%w: polytope needs 3 points, got %d", ErrDegenerate, len(p.points))
	}

	winding := actor.Cross(p.points[1].Sub(p.points[0]), p.points[2].Sub(p.points[0]))
	if math.Abs(winding) < actor.Epsilon {
		return fmt.Errorf("%w: flat initial triangle", ErrDegenerate)
	}
	p.clockwise = winding < 0

	return nil
}

func (p *Polytope) Points() []mgl64.Vec2 {
	return p.points
}

// ClosestEdge returns the edge nearest to the origin. Zero-length edges
// are skipped; ok is false if none is left.
func (p *Polytope) ClosestEdge() (Edge, bool) {
	closest := Edge{Distance: math.Inf(1), Index: -1}

	for i := range p.points {
		a := p.points[i]
		b := p.points[(i+1)%len(p.points)]

		e := b.Sub(a)
		if actor.IsZero(e) {
			continue
		}

		normal := mgl64.Vec2{e.Y(), -e.X()}
		if p.clockwise {
			normal = normal.Mul(-1)
		}
		normal = actor.NormalizeOrZero(normal)
		if actor.IsZero(normal) {
			continue
		}

		distance := normal.Dot(a)
		if distance < closest.Distance {
			closest = Edge{Normal: normal, Distance: distance, Index: i}
		}
	}

	return closest, closest.Index >= 0
}

// Insert places point at index, shifting the following points.
func (p *Polytope) Insert(index int, point mgl64.Vec2) {
	p.points = append(p.points, mgl64.Vec2{})
	copy(p.points[index+1:], p.points[index:])
	p.points[index] = point
}
