package cluster

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/constraint"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec2AlmostEqual(a, b mgl64.Vec2, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) && almostEqual(a.Y(), b.Y(), epsilon)
}

// =============================================================================
// Body Management Tests
// =============================================================================

func TestWorld_CreateBody_NoShape(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -9.81})

	body, err := w.CreateBody(actor.DefaultBodyConfig())
	if !errors.Is(err, actor.ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration, got %v", err)
	}
	if body != nil || w.BodyCount() != 0 {
		t.Error("A failed creation should not add a body")
	}
}

func TestWorld_RemoveBody(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	a := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	b := createCircle(t, w, mgl64.Vec2{5, 0}, 1, actor.BodyTypeDynamic)

	if !w.RemoveBody(a) {
		t.Fatal("Expected RemoveBody to find the body")
	}
	if w.RemoveBody(a) {
		t.Error("Removing twice should report false")
	}
	if bodies := w.Bodies(); len(bodies) != 1 || bodies[0] != b {
		t.Errorf("Unexpected bodies left: %v", bodies)
	}
}

func TestWorld_ClearBodies(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	for i := 0; i < 5; i++ {
		createCircle(t, w, mgl64.Vec2{float64(i), 0}, 1, actor.BodyTypeDynamic)
	}

	w.ClearBodies()
	if w.BodyCount() != 0 {
		t.Errorf("Expected an empty world, got %d bodies", w.BodyCount())
	}
	w.Update(1.0 / 60)
}

func TestWorld_BodiesIsASnapshot(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)

	bodies := w.Bodies()
	bodies[0] = nil
	if w.Bodies()[0] == nil {
		t.Error("Mutating the snapshot changed the world")
	}
}

func TestWorld_RemoveManifold(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	if w.RemoveManifold(&constraint.Manifold{}) {
		t.Error("Removing an unknown manifold should report false")
	}

	createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	createCircle(t, w, mgl64.Vec2{1.5, 0}, 1, actor.BodyTypeDynamic)

	removed := false
	w.Events.Subscribe(COLLISION_ENTER, func(event Event) {
		manifolds := w.Manifolds()
		if len(manifolds) != 1 {
			t.Errorf("Expected 1 manifold during the step, got %d", len(manifolds))
			return
		}
		removed = w.RemoveManifold(manifolds[0])
	})
	w.Update(1.0 / 60)

	if !removed {
		t.Error("Expected the manifold of the running step to be removable")
	}
	if len(w.Manifolds()) != 0 {
		t.Error("Manifolds should be discarded between steps")
	}
}

func TestWorld_ManifoldsIsASnapshot(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	createCircle(t, w, mgl64.Vec2{1.5, 0}, 1, actor.BodyTypeDynamic)

	var kept []*constraint.Manifold
	w.Events.Subscribe(COLLISION_ENTER, func(event Event) {
		kept = w.Manifolds()
	})
	w.Update(1.0 / 60)

	if len(kept) != 1 {
		t.Fatalf("Expected 1 manifold in the snapshot, got %d", len(kept))
	}
	if kept[0] == nil || kept[0].BodyA == nil {
		t.Errorf("Snapshot was cleared by the world: %+v", kept[0])
	}
}

// countingConstraint records how often the solver stages call it
type countingConstraint struct {
	applied   int
	corrected int
}

func (c *countingConstraint) Apply()           { c.applied++ }
func (c *countingConstraint) CorrectPosition() { c.corrected++ }

func TestSolverStages(t *testing.T) {
	constraints := []constraint.Constraint{&countingConstraint{}, &countingConstraint{}}

	solveVelocities(constraints)
	correctPositions(constraints)

	for i, c := range constraints {
		cc := c.(*countingConstraint)
		if cc.applied != SolverIterations {
			t.Errorf("Constraint %d applied %d times, want %d", i, cc.applied, SolverIterations)
		}
		if cc.corrected != 1 {
			t.Errorf("Constraint %d corrected %d times, want 1", i, cc.corrected)
		}
	}
}

// =============================================================================
// Update Tests
// =============================================================================

func TestWorld_Update_Empty(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -9.81})
	w.Update(1.0 / 60)
	w.Update(0)

	if w.BodyCount() != 0 || len(w.Manifolds()) != 0 {
		t.Error("Empty world should stay empty")
	}
}

func TestWorld_Update_NonPositiveDt(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -10})
	ball := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)

	w.Update(0)
	w.Update(-1)
	if ball.Transform.Position != (mgl64.Vec2{0, 0}) || ball.Velocity != (mgl64.Vec2{0, 0}) {
		t.Error("dt <= 0 should not advance the simulation")
	}
}

func TestWorld_Update_FreeFall(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -10})
	ball := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)

	w.Update(0.1)

	// Gravity is scaled by mass, so the acceleration is g whatever the mass
	if !vec2AlmostEqual(ball.Velocity, mgl64.Vec2{0, -1}, 1e-12) {
		t.Errorf("Expected velocity (0, -1), got %v", ball.Velocity)
	}
	if !vec2AlmostEqual(ball.Transform.Position, mgl64.Vec2{0, -0.05}, 1e-12) {
		t.Errorf("Expected position (0, -0.05), got %v", ball.Transform.Position)
	}
	if ball.Force() != (mgl64.Vec2{0, 0}) {
		t.Error("Forces should be reset after the step")
	}
}

func TestWorld_Update_StaticBodyStays(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -10})
	ground := createBox(t, w, mgl64.Vec2{0, 0}, 10, 1, actor.BodyTypeStatic)
	createCircle(t, w, mgl64.Vec2{0, 1.5}, 1, actor.BodyTypeDynamic)

	for i := 0; i < 60; i++ {
		w.Update(1.0 / 60)
	}

	if ground.Transform.Position != (mgl64.Vec2{0, 0}) || ground.Velocity != (mgl64.Vec2{0, 0}) {
		t.Errorf("Static body moved: p=%v v=%v", ground.Transform.Position, ground.Velocity)
	}
}

func TestWorld_Update_DisabledBodyIgnored(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -10})
	ball := createCircle(t, w, mgl64.Vec2{0, 5}, 1, actor.BodyTypeDynamic)
	ball.Detach()

	w.Update(0.1)
	if ball.Transform.Position != (mgl64.Vec2{0, 5}) {
		t.Errorf("Detached body moved to %v", ball.Transform.Position)
	}

	ball.Attach("ball")
	w.Update(0.1)
	if ball.Transform.Position.Y() >= 5 {
		t.Error("Attached body should fall")
	}
}

func TestWorld_Update_CircleRestsOnGround(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -9.81})
	createBox(t, w, mgl64.Vec2{0, 0}, 10, 1, actor.BodyTypeStatic)
	ball := createCircle(t, w, mgl64.Vec2{0, 3}, 0.5, actor.BodyTypeDynamic)

	for i := 0; i < 300; i++ {
		w.Update(1.0 / 60)
	}

	y := ball.Transform.Position.Y()
	if y < 1.3 || y > 1.55 {
		t.Errorf("Expected the ball to rest on the ground near y=1.5, got %v", y)
	}
	if math.Abs(ball.Velocity.Y()) > 0.5 {
		t.Errorf("Expected the ball to settle, vy=%v", ball.Velocity.Y())
	}
}

func TestWorld_Update_BoxRestsOnGround(t *testing.T) {
	w := NewWorld(mgl64.Vec2{0, -9.81})
	createBox(t, w, mgl64.Vec2{0, 0}, 10, 1, actor.BodyTypeStatic)
	box := createBox(t, w, mgl64.Vec2{0, 2}, 0.5, 0.5, actor.BodyTypeDynamic)

	for i := 0; i < 300; i++ {
		w.Update(1.0 / 60)
	}

	y := box.Transform.Position.Y()
	if y < 1.3 || y > 1.55 {
		t.Errorf("Expected the box to rest on the ground near y=1.5, got %v", y)
	}
}

func TestWorld_Update_HeadOnCollision(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	a := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	b := createCircle(t, w, mgl64.Vec2{1.9, 0}, 1, actor.BodyTypeDynamic)
	a.Velocity = mgl64.Vec2{1, 0}
	b.Velocity = mgl64.Vec2{-1, 0}

	w.Update(1.0 / 60)

	if a.Velocity.X() >= 0 || b.Velocity.X() <= 0 {
		t.Errorf("Bodies should bounce apart, got %v and %v", a.Velocity, b.Velocity)
	}
	// Restitution 0.2 on both
	if !almostEqual(b.Velocity.X(), 0.2, 1e-9) {
		t.Errorf("Expected B to leave at 0.2, got %v", b.Velocity.X())
	}
}

func TestWorld_Update_FilteredPairPassesThrough(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	a := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	b := createCircle(t, w, mgl64.Vec2{1.5, 0}, 1, actor.BodyTypeDynamic)
	a.Velocity = mgl64.Vec2{1, 0}
	b.Category = 0x0002
	b.Mask = 0x0002

	entered := 0
	w.Events.Subscribe(COLLISION_ENTER, func(Event) { entered++ })
	w.Update(0.5)

	if entered != 0 {
		t.Error("Filtered pair should not produce contacts")
	}
	if !vec2AlmostEqual(a.Transform.Position, mgl64.Vec2{0.5, 0}, 1e-12) || a.Velocity != (mgl64.Vec2{1, 0}) {
		t.Errorf("A should move freely, got p=%v v=%v", a.Transform.Position, a.Velocity)
	}
}

func TestWorld_Update_Events(t *testing.T) {
	w := NewWorld(mgl64.Vec2{})
	a := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	b := createCircle(t, w, mgl64.Vec2{1, 0}, 1, actor.BodyTypeDynamic)

	capture := &eventCapture{}
	subscribeAll(&w.Events, capture)

	w.Update(1.0 / 60)
	if capture.count() != 1 || !capture.hasEventType(COLLISION_ENTER) {
		t.Fatalf("Step 1: expected enter, got %v", capture.events)
	}

	capture.reset()
	w.Update(1.0 / 60)
	if capture.count() != 1 || !capture.hasEventType(COLLISION_STAY) {
		t.Fatalf("Step 2: expected stay, got %v", capture.events)
	}

	capture.reset()
	b.Transform.Position = mgl64.Vec2{10, 0}
	w.Update(1.0 / 60)
	if capture.count() != 1 || !capture.hasEventType(COLLISION_EXIT) {
		t.Fatalf("Step 3: expected exit, got %v", capture.events)
	}

	capture.reset()
	b.Transform.Position = a.Transform.Position
	w.RemoveBody(b)
	w.Update(1.0 / 60)
	if capture.count() != 0 {
		t.Errorf("Step 4: expected no events, got %v", capture.events)
	}
}

func TestWorld_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	w := NewWorld(mgl64.Vec2{})
	w.Logger = logger
	body := createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	w.RemoveBody(body)

	out := buf.String()
	if !strings.Contains(out, "body created") || !strings.Contains(out, "body removed") {
		t.Errorf("Expected debug logs for body changes, got %q", out)
	}
}

func TestWorld_NilLogger(t *testing.T) {
	w := &World{Gravity: mgl64.Vec2{0, -1}}
	createCircle(t, w, mgl64.Vec2{0, 0}, 1, actor.BodyTypeDynamic)
	w.Update(0.1)
}

// =============================================================================
// Determinism Tests
// =============================================================================

func simulate(t *testing.T, workers int) string {
	t.Helper()

	w := NewWorld(mgl64.Vec2{0, -9.81})
	w.Workers = workers
	createBox(t, w, mgl64.Vec2{0, -1}, 20, 1, actor.BodyTypeStatic)

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 30; i++ {
		pos := mgl64.Vec2{rng.Float64()*16 - 8, 2 + rng.Float64()*20}
		if i%3 == 0 {
			createCircle(t, w, pos, 0.3+rng.Float64()*0.5, actor.BodyTypeDynamic)
			continue
		}

		config := actor.DefaultBodyConfig()
		config.Shape = actor.NewRandomPolygon(rng, 0.4+rng.Float64()*0.4)
		config.Position = pos
		if _, err := w.CreateBody(config); err != nil {
			t.Fatal(err)
		}
	}

	var trace strings.Builder
	for step := 0; step < 120; step++ {
		w.Update(1.0 / 60)
		if step%10 != 0 {
			continue
		}
		for i, body := range w.Bodies() {
			fmt.Fprintf(&trace, "%03d %02d %.9f %.9f %.9f\n", step, i,
				body.Transform.Position.X(), body.Transform.Position.Y(), body.Transform.Angle())
		}
	}

	return trace.String()
}

func TestWorld_Update_DeterministicAcrossWorkerCounts(t *testing.T) {
	serial := simulate(t, 1)
	parallel := simulate(t, 4)

	if serial == parallel {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(serial),
		B:        difflib.SplitLines(parallel),
		FromFile: "workers=1",
		ToFile:   "workers=4",
		Context:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Errorf("Simulation depends on the worker count:\n%s", diff)
}

func BenchmarkWorld_Update(b *testing.B) {
	w := NewWorld(mgl64.Vec2{0, -9.81})
	createBox(b, w, mgl64.Vec2{0, -1}, 50, 1, actor.BodyTypeStatic)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		createCircle(b, w, mgl64.Vec2{rng.Float64()*90 - 45, rng.Float64() * 50}, 0.5, actor.BodyTypeDynamic)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Update(1.0 / 60)
	}
}
