package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownKind = errors.New("unknown scene kind")

// Generated scene kinds
const (
	SceneDefault   = "default"
	ScenePyramid   = "pyramid"
	SceneRain      = "rain"
	SceneContainer = "container"
	SceneMixed     = "mixed"
)

// Kinds lists the scenes Generate knows, in a stable order
var Kinds = []string{SceneDefault, ScenePyramid, SceneRain, SceneContainer, SceneMixed}

// Template names shared by every generated scene
const (
	templateWall = "wall"
	templateBall = "ball"
	templateBox  = "crate"
)

// Generate builds a scene of the given kind with count dynamic bodies
// placed from rng. A nil rng uses a fixed seed.
func Generate(kind string, count int, rng *rand.Rand) (*Scene, error) {
	if count < 0 {
		return nil, fmt.Errorf("generate %s: negative body count %d", kind, count)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	s := &Scene{
		Gravity: ptr(DefaultGravity),
		Templates: map[string]BodySpec{
			templateWall: {Static: true, StaticFriction: ptr(0.4), DynamicFriction: ptr(0.3)},
			templateBall: {Shape: ShapeSpec{Kind: KindCircle, Radius: 0.5}, Restitution: ptr(0.5)},
			templateBox:  {Shape: ShapeSpec{Kind: KindBox, HalfWidth: 0.5, HalfHeight: 0.5}, Density: ptr(1.0)},
		},
	}

	switch kind {
	case SceneDefault:
		generateDefault(s, count, rng)
	case ScenePyramid:
		generatePyramid(s, count)
	case SceneRain:
		generateRain(s, count, rng)
	case SceneContainer:
		generateContainer(s, count, rng)
	case SceneMixed:
		generateMixed(s, count, rng)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}

	return s, nil
}

func (s *Scene) addWall(position mgl64.Vec2, halfWidth, halfHeight float64) {
	s.Bodies = append(s.Bodies, BodySpec{
		Template: templateWall,
		Shape:    ShapeSpec{Kind: KindBox, HalfWidth: halfWidth, HalfHeight: halfHeight},
		Position: position,
	})
}

func (s *Scene) addBall(position mgl64.Vec2, radius float64) {
	s.Bodies = append(s.Bodies, BodySpec{
		Template: templateBall,
		Shape:    ShapeSpec{Radius: radius},
		Position: position,
	})
}

func (s *Scene) addCrate(position mgl64.Vec2, halfWidth, halfHeight float64) {
	s.Bodies = append(s.Bodies, BodySpec{
		Template: templateBox,
		Shape:    ShapeSpec{HalfWidth: halfWidth, HalfHeight: halfHeight},
		Position: position,
	})
}

func generateDefault(s *Scene, count int, rng *rand.Rand) {
	s.addWall(mgl64.Vec2{0, -25}, 100, 5)

	for i := 0; i < count; i++ {
		position := mgl64.Vec2{(rng.Float64() - 0.5) * 150, rng.Float64()*50 + 10}

		if rng.Float64() < 0.6 {
			s.addBall(position, rng.Float64()+0.5)
		} else {
			size := rng.Float64()*1.5 + 0.5
			s.addCrate(position, size, size)
		}
	}
}

// generatePyramid stacks rows of crates, widest row at the bottom
func generatePyramid(s *Scene, count int) {
	s.addWall(mgl64.Vec2{0, -5}, 100, 2.5)

	const size = 1.0
	levels := int(math.Ceil((math.Sqrt(8*float64(count)+1) - 1) / 2))
	y := -2.5 + size/2

	placed := 0
	for level := levels; level > 0 && placed < count; level-- {
		left := -float64(level-1) * size / 2
		for i := 0; i < level && placed < count; i++ {
			s.addCrate(mgl64.Vec2{left + float64(i)*size, y}, size*0.45, size*0.45)
			placed++
		}
		y += size
	}
}

func generateRain(s *Scene, count int, rng *rand.Rand) {
	s.addWall(mgl64.Vec2{0, -25}, 150, 5)
	s.addWall(mgl64.Vec2{-75, 0}, 5, 50)
	s.addWall(mgl64.Vec2{75, 0}, 5, 50)

	for i := 0; i < count; i++ {
		position := mgl64.Vec2{(rng.Float64() - 0.5) * 125, rng.Float64()*100 + 50}

		if rng.Float64() < 0.7 {
			s.addBall(position, rng.Float64()+0.25)
		} else {
			s.addCrate(position, rng.Float64()*1.5+0.5, rng.Float64()*1.5+0.5)
		}
	}
}

func generateContainer(s *Scene, count int, rng *rand.Rand) {
	const (
		thickness = 2.5
		width     = 50.0
		height    = 40.0
	)

	s.addWall(mgl64.Vec2{0, -height / 2}, width/2, thickness)
	s.addWall(mgl64.Vec2{-width / 2, 0}, thickness, height/2)
	s.addWall(mgl64.Vec2{width / 2, 0}, thickness, height/2)

	for i := 0; i < count; i++ {
		position := mgl64.Vec2{(rng.Float64() - 0.5) * (width - 10), rng.Float64()*30 + 5}

		if rng.Float64() < 0.6 {
			s.addBall(position, rng.Float64()*0.75+0.25)
		} else {
			size := rng.Float64() + 0.5
			s.addCrate(position, size, size)
		}
	}
}

// generateMixed drops circles, boxes and random polygons onto platforms
func generateMixed(s *Scene, count int, rng *rand.Rand) {
	s.addWall(mgl64.Vec2{-37.5, -25}, 25, 5)
	s.addWall(mgl64.Vec2{37.5, -25}, 25, 5)

	for i := 0; i < 5; i++ {
		position := mgl64.Vec2{(rng.Float64() - 0.5) * 75, float64(i)*7.5 - 10}
		s.addWall(position, rng.Float64()*7.5+5, 0.75)
	}

	for i := 0; i < count; i++ {
		position := mgl64.Vec2{(rng.Float64() - 0.5) * 100, rng.Float64()*50 + 25}

		switch rng.Intn(3) {
		case 0:
			s.addBall(position, rng.Float64()+0.25)
			s.Bodies[len(s.Bodies)-1].Restitution = ptr(rng.Float64()*0.5 + 0.5)
		case 1:
			size := rng.Float64()*1.5 + 0.5
			s.addCrate(position, size, size)
			s.Bodies[len(s.Bodies)-1].StaticFriction = ptr(rng.Float64()*0.6 + 0.3)
		case 2:
			s.Bodies = append(s.Bodies, BodySpec{
				Shape:    ShapeSpec{Kind: KindRandom, Radius: rng.Float64()*1.5 + 0.5},
				Position: position,
				Angle:    rng.Float64() * 2 * math.Pi,
			})
		}
	}
}
