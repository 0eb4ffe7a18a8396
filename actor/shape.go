package actor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxPolygonVertices is the hard cap on polygon vertices.
const MaxPolygonVertices = 8

// ErrConfiguration is returned when a shape or a body is built from
// invalid parameters.
var ErrConfiguration = errors.New("invalid configuration")

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypePolygon ShapeType = iota
	ShapeTypeCircle

	// ShapeTypeCount is the number of shape types, used to size dispatch tables
	ShapeTypeCount
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypePolygon:
		return "polygon"
	case ShapeTypeCircle:
		return "circle"
	default:
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
}

// Shape is the interface that all collision shapes must implement.
// Shapes are described in local space, centered on the body's origin.
type Shape interface {
	Type() ShapeType
	// FarthestPoint returns the local point farthest along direction
	FarthestPoint(direction mgl64.Vec2) mgl64.Vec2
	BoundingRadius() float64
	ComputeAABB(transform Transform) AABB
	// ComputeMass calculates mass for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) float64
}

// Polygon is a convex polygon with between 3 and MaxPolygonVertices
// vertices, wound counter-clockwise around its centroid.
type Polygon struct {
	vertices [MaxPolygonVertices]mgl64.Vec2
	normals  [MaxPolygonVertices]mgl64.Vec2
	count    int
	radius   float64
	area     float64
}

// NewPolygon builds a polygon from a vertex list. The vertices are
// recentered so that the area centroid sits on the local origin and
// clockwise input is reversed.
func NewPolygon(vertices []mgl64.Vec2) (*Polygon, error) {
	if len(vertices) > MaxPolygonVertices {
		return nil, fmt.Errorf("%w: polygon has %d vertices, at most %d are allowed", ErrConfiguration, len(vertices), MaxPolygonVertices)
	}
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: polygon has %d vertices, at least 3 are required", ErrConfiguration, len(vertices))
	}

	// Shoelace area and centroid
	var area float64
	var centroid mgl64.Vec2
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		cross := Cross(a, b)
		area += cross
		centroid = centroid.Add(a.Add(b).Mul(cross))
	}
	area *= 0.5
	if math.Abs(area) < Epsilon {
		return nil, fmt.Errorf("%w: polygon has zero area", ErrConfiguration)
	}
	centroid = centroid.Mul(1.0 / (6.0 * area))

	p := &Polygon{count: len(vertices), area: math.Abs(area)}
	for i, v := range vertices {
		j := i
		if area < 0 {
			j = len(vertices) - 1 - i
		}
		p.vertices[j] = v.Sub(centroid)
	}

	for i := 0; i < p.count; i++ {
		v := p.vertices[i]
		p.radius = math.Max(p.radius, v.Len())

		edge := p.vertices[(i+1)%p.count].Sub(v)
		p.normals[i] = NormalizeOrZero(mgl64.Vec2{edge.Y(), -edge.X()})
	}

	return p, nil
}

// NewBox builds a rectangle from its half extents
func NewBox(halfWidth, halfHeight float64) (*Polygon, error) {
	if halfWidth <= 0 || halfHeight <= 0 {
		return nil, fmt.Errorf("%w: box half extents must be positive, got %vx%v", ErrConfiguration, halfWidth, halfHeight)
	}

	return NewPolygon([]mgl64.Vec2{
		{-halfWidth, -halfHeight},
		{halfWidth, -halfHeight},
		{halfWidth, halfHeight},
		{-halfWidth, halfHeight},
	})
}

// NewRandomPolygon places vertices on a circle of the given radius,
// advancing the angle by a random 40 to 80 degrees each time until the
// circle is closed or MaxPolygonVertices is reached. Only the magnitude of
// radius is used; zero picks one in [10, 45). rng may be nil to use the
// global source.
func NewRandomPolygon(rng *rand.Rand, radius float64) *Polygon {
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	radius = math.Abs(radius)
	if radius == 0 {
		radius = 10 + float()*35
	}

	vertices := make([]mgl64.Vec2, 0, MaxPolygonVertices)
	for angle := 0.0; angle < 2*math.Pi && len(vertices) < MaxPolygonVertices; angle += mgl64.DegToRad(40 + float()*40) {
		vertices = append(vertices, mgl64.Vec2{radius * math.Cos(angle), radius * math.Sin(angle)})
	}

	// Steps of at most 80 degrees give at least five points on the circle,
	// so the polygon is always convex with a non-zero area.
	p, err := NewPolygon(vertices)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *Polygon) Type() ShapeType {
	return ShapeTypePolygon
}

func (p *Polygon) VertexCount() int {
	return p.count
}

// Vertex returns the i-th local vertex
func (p *Polygon) Vertex(i int) mgl64.Vec2 {
	return p.vertices[i]
}

// Vertices returns a copy of the local vertices
func (p *Polygon) Vertices() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, p.count)
	copy(out, p.vertices[:p.count])

	return out
}

// Normal returns the outward unit normal of the edge from vertex i to i+1
func (p *Polygon) Normal(i int) mgl64.Vec2 {
	return p.normals[i]
}

func (p *Polygon) Area() float64 {
	return p.area
}

func (p *Polygon) BoundingRadius() float64 {
	return p.radius
}

// FarthestPoint returns the vertex with the largest projection on
// direction. Ties keep the first vertex found.
func (p *Polygon) FarthestPoint(direction mgl64.Vec2) mgl64.Vec2 {
	best := p.vertices[0]
	bestDot := best.Dot(direction)
	for i := 1; i < p.count; i++ {
		d := p.vertices[i].Dot(direction)
		if d > bestDot {
			best = p.vertices[i]
			bestDot = d
		}
	}

	return best
}

func (p *Polygon) ComputeAABB(transform Transform) AABB {
	var world [MaxPolygonVertices]mgl64.Vec2
	for i := 0; i < p.count; i++ {
		world[i] = transform.Apply(p.vertices[i])
	}

	return NewAABBFromPoints(world[:p.count])
}

func (p *Polygon) ComputeMass(density float64) float64 {
	return density * p.area
}

// ComputeInertia returns the moment of inertia about the centroid,
// summed over the triangles fanning out from it.
func (p *Polygon) ComputeInertia(mass float64) float64 {
	var numerator, denominator float64
	for i := 0; i < p.count; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%p.count]
		cross := math.Abs(Cross(a, b))
		numerator += cross * (a.Dot(a) + a.Dot(b) + b.Dot(b))
		denominator += cross
	}
	if denominator == 0 {
		return 0
	}

	return mass * numerator / (6.0 * denominator)
}

// Circle represents a circle collision shape centered on the local origin
type Circle struct {
	Radius float64
}

func NewCircle(radius float64) (*Circle, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle radius must be positive, got %v", ErrConfiguration, radius)
	}

	return &Circle{Radius: radius}, nil
}

func (c *Circle) Type() ShapeType {
	return ShapeTypeCircle
}

// FarthestPoint expects a unit direction
func (c *Circle) FarthestPoint(direction mgl64.Vec2) mgl64.Vec2 {
	return direction.Mul(c.Radius)
}

func (c *Circle) BoundingRadius() float64 {
	return c.Radius
}

func (c *Circle) ComputeAABB(transform Transform) AABB {
	r := mgl64.Vec2{c.Radius, c.Radius}

	return AABB{
		Min: transform.Position.Sub(r),
		Max: transform.Position.Add(r),
	}
}

func (c *Circle) ComputeMass(density float64) float64 {
	return density * math.Pi * c.Radius * c.Radius
}

func (c *Circle) ComputeInertia(mass float64) float64 {
	return 0.5 * mass * c.Radius * c.Radius
}
