package cluster

import (
	"unsafe"

	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

func (p pairKey) involves(body *actor.RigidBody) bool {
	return p.bodyA == body || p.bodyB == body
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case COLLISION_ENTER:
		return "enter"
	case COLLISION_STAY:
		return "stay"
	case COLLISION_EXIT:
		return "exit"
	default:
		return "unknown"
	}
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEnterEvent is sent the first step a pair touches.
// Normal points from BodyA toward BodyB.
type CollisionEnterEvent struct {
	BodyA   *actor.RigidBody
	BodyB   *actor.RigidBody
	Normal  mgl64.Vec2
	Overlap float64
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA   *actor.RigidBody
	BodyB   *actor.RigidBody
	Normal  mgl64.Vec2
	Overlap float64
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

type activePair struct {
	key      pairKey
	manifold constraint.Manifold
}

// Events manager. Pairs are kept in detection order so listeners see the
// same sequence on every run.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousPairs []activePair
	currentPairs  []activePair
	previousIndex map[pairKey]bool
	currentIndex  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:     make(map[EventType][]EventListener),
		buffer:        make([]Event, 0, 256),
		previousIndex: make(map[pairKey]bool),
		currentIndex:  make(map[pairKey]bool),
	}
}

func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions stores the pairs touching during this step
func (e *Events) recordCollisions(manifolds []*constraint.Manifold) {
	e.init()

	for _, m := range manifolds {
		key := makePairKey(m.BodyA, m.BodyB)
		if e.currentIndex[key] {
			continue
		}
		e.currentIndex[key] = true
		e.currentPairs = append(e.currentPairs, activePair{key: key, manifold: *m})
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processCollisionEvents() {
	for _, pair := range e.currentPairs {
		m := pair.manifold
		if e.previousIndex[pair.key] {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: m.BodyA, BodyB: m.BodyB, Normal: m.Normal, Overlap: m.Overlap})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: m.BodyA, BodyB: m.BodyB, Normal: m.Normal, Overlap: m.Overlap})
		}
	}

	for _, pair := range e.previousPairs {
		if !e.currentIndex[pair.key] {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.manifold.BodyA, BodyB: pair.manifold.BodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousPairs, e.currentPairs = e.currentPairs, e.previousPairs[:0]
	e.previousIndex, e.currentIndex = e.currentIndex, e.previousIndex
	clear(e.currentIndex)
}

// forget drops every tracked pair involving body, so that removing it
// does not produce an exit event.
func (e *Events) forget(body *actor.RigidBody) {
	n := 0
	for _, pair := range e.previousPairs {
		if pair.key.involves(body) {
			delete(e.previousIndex, pair.key)
			continue
		}
		e.previousPairs[n] = pair
		n++
	}
	e.previousPairs = e.previousPairs[:n]
}

func (e *Events) reset() {
	e.previousPairs = e.previousPairs[:0]
	e.currentPairs = e.currentPairs[:0]
	clear(e.previousIndex)
	clear(e.currentIndex)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.init()
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
