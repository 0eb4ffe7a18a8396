// Package debugdraw renders a read-only view of the world's bodies onto a Canvas.
package debugdraw

import (
	"github.com/bulmanator/cluster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Options selects which layers Render draws. The zero value draws nothing.
type Options struct {
	Bodies     bool
	AABBs      bool
	Velocities bool
}

// Any reports whether at least one layer is enabled
func (o Options) Any() bool {
	return o.Bodies || o.AABBs || o.Velocities
}

// Canvas receives world-space primitives
type Canvas interface {
	DrawLine(a, b mgl64.Vec2)
	DrawCircle(center mgl64.Vec2, radius float64)
}

// Render draws every body according to opts. Bodies are only read.
func Render(canvas Canvas, bodies []*actor.RigidBody, opts Options) {
	if !opts.Any() {
		return
	}

	var points [actor.MaxPolygonVertices]mgl64.Vec2
	for _, body := range bodies {
		if opts.Bodies {
			drawBody(canvas, body, points[:0])
		}
		if opts.AABBs {
			corners := body.AABB().Corners()
			DrawPolygon(canvas, corners[:])
		}
		if opts.Velocities {
			position := body.Transform.Position
			canvas.DrawLine(position, position.Add(body.Velocity))
		}
	}
}

func drawBody(canvas Canvas, body *actor.RigidBody, buf []mgl64.Vec2) {
	switch shape := body.Shape.(type) {
	case *actor.Polygon:
		for i := 0; i < shape.VertexCount(); i++ {
			buf = append(buf, body.Transform.Apply(shape.Vertex(i)))
		}
		DrawPolygon(canvas, buf)
	case *actor.Circle:
		center := body.Transform.Position
		canvas.DrawCircle(center, shape.Radius)
		// radius line so the rotation is visible
		canvas.DrawLine(center, body.Transform.Apply(mgl64.Vec2{shape.Radius, 0}))
	}
}

// DrawPolygon draws the closed outline through points
func DrawPolygon(canvas Canvas, points []mgl64.Vec2) {
	if len(points) < 2 {
		return
	}
	n := len(points)
	for i := 0; i < n; i++ {
		canvas.DrawLine(points[i], points[(i+1)%n])
	}
}

// DrawRect draws an axis-aligned rectangle spanning lo and hi
func DrawRect(canvas Canvas, lo, hi mgl64.Vec2) {
	corners := actor.AABB{Min: lo, Max: hi}.Corners()
	DrawPolygon(canvas, corners[:])
}
