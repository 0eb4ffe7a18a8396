package main

import (
	"fmt"
	"os"

	"github.com/bulmanator/cluster"
	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/epa"
	"github.com/bulmanator/cluster/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionDebugger instruments the narrow phase of a single pair
type CollisionDebugger interface {
	DebugGJK(bodyA, bodyB *actor.RigidBody, collides bool, simplex *gjk.Simplex)
	DebugEPA(bodyA, bodyB *actor.RigidBody, penetration epa.Penetration, err error)
}

// SimpleDebugger prints everything to stdout
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugGJK(bodyA, bodyB *actor.RigidBody, collides bool, simplex *gjk.Simplex) {
	fmt.Printf("GJK: A=%v B=%v collides=%v\n", bodyA.Transform.Position, bodyB.Transform.Position, collides)
	for i := 0; i < simplex.Count; i++ {
		fmt.Printf("   Point %d: %v (distance: %.4f)\n", i, simplex.Points[i], simplex.Points[i].Len())
	}
}

func (d *SimpleDebugger) DebugEPA(bodyA, bodyB *actor.RigidBody, penetration epa.Penetration, err error) {
	if err != nil {
		fmt.Printf("EPA: %v\n", err)
		return
	}
	fmt.Printf("EPA: normal=%v depth=%.6f\n", penetration.Normal, penetration.Depth)
}

// SetupScene creates a static ground and a tilted box above it
func SetupScene() (*cluster.World, *actor.RigidBody, *actor.RigidBody, error) {
	world := cluster.NewWorld(mgl64.Vec2{0, -9.81})

	ground, err := actor.NewBox(10, 0.5)
	if err != nil {
		return nil, nil, nil, err
	}
	groundConfig := actor.DefaultBodyConfig()
	groundConfig.Shape = ground
	groundConfig.BodyType = actor.BodyTypeStatic
	groundBody, err := world.CreateBody(groundConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	box, err := actor.NewBox(1.5, 1.5)
	if err != nil {
		return nil, nil, nil, err
	}
	boxConfig := actor.DefaultBodyConfig()
	boxConfig.Shape = box
	boxConfig.Position = mgl64.Vec2{-5, 5}
	boxConfig.Angle = mgl64.DegToRad(20)
	boxConfig.AngularVelocity = 0.5
	boxConfig.Restitution = 0.8
	boxBody, err := world.CreateBody(boxConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	return world, groundBody, boxBody, nil
}

func run() error {
	world, groundBody, boxBody, err := SetupScene()
	if err != nil {
		return err
	}
	debugger := &SimpleDebugger{}

	fmt.Printf("Ground: position %v\n", groundBody.Transform.Position)
	fmt.Printf("Box: position %v, angle %.3f\n", boxBody.Transform.Position, boxBody.Transform.Angle())
	fmt.Printf("Gravity: %v\n\n", world.Gravity)

	world.Events.Subscribe(cluster.COLLISION_ENTER, func(event cluster.Event) {
		e := event.(cluster.CollisionEnterEvent)
		fmt.Printf("** contact: normal=%v overlap=%.4f\n", e.Normal, e.Overlap)
	})

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 200

	simplex := &gjk.Simplex{}
	for step := 0; step < maxSteps; step++ {
		fmt.Printf("--- STEP %d ---\n", step+1)

		collides := gjk.GJK(groundBody, boxBody, simplex)
		debugger.DebugGJK(groundBody, boxBody, collides, simplex)
		if collides {
			penetration, err := epa.EPA(groundBody, boxBody, simplex)
			debugger.DebugEPA(groundBody, boxBody, penetration, err)
		}

		world.Update(dt)

		fmt.Printf("  Position: %v\n", boxBody.Transform.Position)
		fmt.Printf("  Velocity: %v\n", boxBody.Velocity)
		fmt.Printf("  Angle: %.4f (w=%.3f)\n\n", boxBody.Transform.Angle(), boxBody.AngularVelocity)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
