// Package scene describes worlds in YAML and builds them.
//
// A scene file looks like:
//
//	gravity: [0, -9.81]
//	templates:
//	  crate:
//	    shape: {kind: box, half_width: 1, half_height: 1}
//	    density: 2
//	bodies:
//	  - shape: {kind: box, half_width: 50, half_height: 1}
//	    static: true
//	  - template: crate
//	    position: [0, 10]
//	  - shape: {kind: circle, radius: 0.5}
//	    position: [3, 12]
//	    restitution: 0.8
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/bulmanator/cluster"
	"github.com/bulmanator/cluster/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownShape    = errors.New("unknown shape kind")
	ErrUnknownTemplate = errors.New("unknown template")
)

// Shape kinds
const (
	KindCircle  = "circle"
	KindPolygon = "polygon"
	KindBox     = "box"
	KindRandom  = "random"
)

// DefaultGravity is used when a scene does not set one
var DefaultGravity = mgl64.Vec2{0, -9.81}

type Scene struct {
	Gravity   *mgl64.Vec2         `yaml:"gravity,omitempty"`
	Templates map[string]BodySpec `yaml:"templates,omitempty"`
	Bodies    []BodySpec          `yaml:"bodies"`
}

type ShapeSpec struct {
	Kind       string       `yaml:"kind"`
	Radius     float64      `yaml:"radius,omitempty"`
	HalfWidth  float64      `yaml:"half_width,omitempty"`
	HalfHeight float64      `yaml:"half_height,omitempty"`
	Vertices   []mgl64.Vec2 `yaml:"vertices,omitempty"`
}

// BodySpec is one body entry. Material and filter fields are pointers so
// that an unset field falls back to the template, then to the defaults.
type BodySpec struct {
	Template string `yaml:"template,omitempty"`

	Shape           ShapeSpec  `yaml:"shape"`
	Position        mgl64.Vec2 `yaml:"position,omitempty"`
	Angle           float64    `yaml:"angle,omitempty"`
	Velocity        mgl64.Vec2 `yaml:"velocity,omitempty"`
	AngularVelocity float64    `yaml:"angular_velocity,omitempty"`

	Restitution     *float64 `yaml:"restitution,omitempty"`
	Density         *float64 `yaml:"density,omitempty"`
	StaticFriction  *float64 `yaml:"static_friction,omitempty"`
	DynamicFriction *float64 `yaml:"dynamic_friction,omitempty"`
	Mask            *uint32  `yaml:"mask,omitempty"`
	Category        *uint32  `yaml:"category,omitempty"`

	Static   bool `yaml:"static,omitempty"`
	Disabled bool `yaml:"disabled,omitempty"`
}

// Load reads and parses a scene file
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML scene. Unknown keys are rejected. An empty document is an empty scene.
func Parse(data []byte) (*Scene, error) {
	var s Scene

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	return &s, nil
}

// Marshal encodes the scene back to YAML
func (s *Scene) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return buf.Bytes(), nil
}

// GravityOr returns the scene gravity, or fallback when the scene has none
func (s *Scene) GravityOr(fallback mgl64.Vec2) mgl64.Vec2 {
	if s.Gravity == nil {
		return fallback
	}
	return *s.Gravity
}

// Resolve merges body over its template. Fields left empty in body keep
// the template's value. A shape with a kind replaces the template shape,
// a shape without one only overrides the sizes it sets.
func (s *Scene) Resolve(body BodySpec) (BodySpec, error) {
	if body.Template == "" {
		return body, nil
	}

	template, ok := s.Templates[body.Template]
	if !ok {
		return BodySpec{}, fmt.Errorf("%w %q", ErrUnknownTemplate, body.Template)
	}

	// deep copies so the merge never writes through the template's pointers
	var merged BodySpec
	if err := copier.CopyWithOption(&merged, &template, copier.Option{DeepCopy: true}); err != nil {
		return BodySpec{}, fmt.Errorf("template %q: %w", body.Template, err)
	}
	if err := copier.CopyWithOption(&merged, &body, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
		return BodySpec{}, fmt.Errorf("template %q: %w", body.Template, err)
	}

	if body.Shape.Kind != "" {
		merged.Shape = body.Shape
	} else {
		merged.Shape = template.Shape.override(body.Shape)
	}

	return merged, nil
}

// BodyConfigs resolves every body into a config, in file order.
// rng feeds random polygons and may be nil.
func (s *Scene) BodyConfigs(rng *rand.Rand) ([]actor.BodyConfig, error) {
	configs := make([]actor.BodyConfig, 0, len(s.Bodies))
	for i, body := range s.Bodies {
		resolved, err := s.Resolve(body)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}

		config, err := resolved.Config(rng)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		configs = append(configs, config)
	}

	return configs, nil
}

// Populate sets the world gravity when the scene has one and creates every body.
// Nothing is added to the world if any body is invalid.
func (s *Scene) Populate(world *cluster.World, rng *rand.Rand) ([]*actor.RigidBody, error) {
	configs, err := s.BodyConfigs(rng)
	if err != nil {
		return nil, err
	}

	// validate up front so a bad body leaves the world untouched
	for i, config := range configs {
		if _, err := actor.NewRigidBody(config); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}

	world.Gravity = s.GravityOr(world.Gravity)

	bodies := make([]*actor.RigidBody, 0, len(configs))
	for i, config := range configs {
		body, err := world.CreateBody(config)
		if err != nil {
			return bodies, fmt.Errorf("body %d: %w", i, err)
		}
		bodies = append(bodies, body)
	}

	return bodies, nil
}

// Config converts a resolved body into a body config
func (b BodySpec) Config(rng *rand.Rand) (actor.BodyConfig, error) {
	shape, err := b.Shape.Build(rng)
	if err != nil {
		return actor.BodyConfig{}, err
	}

	config := actor.DefaultBodyConfig()
	config.Shape = shape
	config.Position = b.Position
	config.Angle = b.Angle
	config.Velocity = b.Velocity
	config.AngularVelocity = b.AngularVelocity
	config.Disabled = b.Disabled

	if b.Restitution != nil {
		config.Restitution = *b.Restitution
	}
	if b.Density != nil {
		config.Density = *b.Density
	}
	if b.StaticFriction != nil {
		config.StaticFriction = *b.StaticFriction
	}
	if b.DynamicFriction != nil {
		config.DynamicFriction = *b.DynamicFriction
	}
	if b.Mask != nil {
		config.Mask = *b.Mask
	}
	if b.Category != nil {
		config.Category = *b.Category
	}
	if b.Static {
		config.BodyType = actor.BodyTypeStatic
	}

	return config, nil
}

// override returns s with every non-empty size of other applied
func (s ShapeSpec) override(other ShapeSpec) ShapeSpec {
	if other.Radius != 0 {
		s.Radius = other.Radius
	}
	if other.HalfWidth != 0 {
		s.HalfWidth = other.HalfWidth
	}
	if other.HalfHeight != 0 {
		s.HalfHeight = other.HalfHeight
	}
	if len(other.Vertices) > 0 {
		s.Vertices = other.Vertices
	}
	return s
}

// Build creates the shape. Random polygons draw from rng.
func (s ShapeSpec) Build(rng *rand.Rand) (actor.Shape, error) {
	var (
		shape actor.Shape
		err   error
	)

	switch s.Kind {
	case KindCircle:
		shape, err = actor.NewCircle(s.Radius)
	case KindBox:
		shape, err = actor.NewBox(s.HalfWidth, s.HalfHeight)
	case KindPolygon:
		shape, err = actor.NewPolygon(s.Vertices)
	case KindRandom:
		shape = actor.NewRandomPolygon(rng, s.Radius)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownShape, s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s shape: %w", s.Kind, err)
	}

	return shape, nil
}

func ptr[T any](v T) *T {
	return &v
}
