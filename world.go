package cluster

import (
	"io"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/constraint"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// SolverIterations is the number of velocity passes over the manifolds per step.
const SolverIterations = 6

type World struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec2
	// Workers used for the narrow phase. Results do not depend on it.
	Workers int
	Logger  *log.Logger

	Events Events

	bodies    []*actor.RigidBody
	manifolds []*constraint.Manifold
	pairs     []bodyPair
	results   []*constraint.Manifold
}

// NewWorld creates an empty world with a silent logger
func NewWorld(gravity mgl64.Vec2) *World {
	return &World{
		Gravity: gravity,
		Workers: DEFAULT_WORKERS,
		Logger:  log.New(io.Discard),
		Events:  NewEvents(),
	}
}

func (w *World) logger() *log.Logger {
	if w.Logger == nil {
		w.Logger = log.New(io.Discard)
	}
	return w.Logger
}

// CreateBody builds a body from config and adds it to the world
func (w *World) CreateBody(config actor.BodyConfig) (*actor.RigidBody, error) {
	body, err := actor.NewRigidBody(config)
	if err != nil {
		return nil, err
	}

	w.bodies = append(w.bodies, body)
	w.logger().Debug("body created", "shape", body.Shape.Type(), "static", body.IsStatic(), "position", body.Transform.Position, "bodies", len(w.bodies))

	return body, nil
}

// RemoveBody removes a rigid body from the world.
// It returns false if the body was not in the world.
func (w *World) RemoveBody(body *actor.RigidBody) bool {
	k := -1
	for i, b := range w.bodies {
		if b == body {
			k = i
			break
		}
	}
	if k == -1 {
		return false
	}

	w.bodies = append(w.bodies[:k], w.bodies[k+1:]...)
	w.Events.forget(body)
	w.logger().Debug("body removed", "bodies", len(w.bodies))

	return true
}

// RemoveManifold drops a manifold from the current step.
// It returns false if the manifold is not there.
func (w *World) RemoveManifold(manifold *constraint.Manifold) bool {
	for i, m := range w.manifolds {
		if m == manifold {
			w.manifolds = append(w.manifolds[:i], w.manifolds[i+1:]...)
			return true
		}
	}

	return false
}

func (w *World) ClearBodies() {
	clear(w.bodies)
	w.bodies = w.bodies[:0]
	w.manifolds = w.manifolds[:0]
	w.Events.reset()
	w.logger().Debug("world cleared")
}

// Bodies returns a snapshot of the bodies, in insertion order
func (w *World) Bodies() []*actor.RigidBody {
	out := make([]*actor.RigidBody, len(w.bodies))
	copy(out, w.bodies)

	return out
}

func (w *World) BodyCount() int {
	return len(w.bodies)
}

// Manifolds returns a snapshot of the contacts of the step in progress.
// Between two steps it is empty.
func (w *World) Manifolds() []*constraint.Manifold {
	out := make([]*constraint.Manifold, len(w.manifolds))
	copy(out, w.manifolds)

	return out
}

// Update advances the simulation by dt:
//  1. collect a manifold for every colliding pair
//  2. run SolverIterations velocity passes over them
//  3. apply gravity, integrate, reset forces
//  4. correct positions once
//  5. send contact events and discard the manifolds
func (w *World) Update(dt float64) {
	if dt <= 0 {
		return
	}

	w.manifolds = w.detectCollisions()

	solveVelocities(w.manifolds)

	for _, body := range w.bodies {
		if !body.Alive() {
			continue
		}
		body.ApplyForce(w.Gravity.Mul(body.Mass()))
		body.Integrate(dt)
		body.ResetForces()
	}

	correctPositions(w.manifolds)

	w.Events.recordCollisions(w.manifolds)
	w.Events.flush()

	clear(w.manifolds)
	w.manifolds = w.manifolds[:0]
}

// solveVelocities runs SolverIterations passes of Apply over every constraint
func solveVelocities[C constraint.Constraint](constraints []C) {
	for i := 0; i < SolverIterations; i++ {
		for _, c := range constraints {
			c.Apply()
		}
	}
}

func correctPositions[C constraint.Constraint](constraints []C) {
	for _, c := range constraints {
		c.CorrectPosition()
	}
}
