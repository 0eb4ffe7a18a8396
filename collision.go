package cluster

import (
	"github.com/bulmanator/cluster/actor"
	"github.com/bulmanator/cluster/constraint"
)

// bodyPair is a candidate pair and its slot in the results
type bodyPair struct {
	index int
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// ShouldCollide applies the category/mask filter. Two static bodies never
// collide, and neither do bodies taken out of the simulation.
func ShouldCollide(a, b *actor.RigidBody) bool {
	if !a.Alive() || !b.Alive() {
		return false
	}
	if a.IsStatic() && b.IsStatic() {
		return false
	}

	return a.Category&b.Mask != 0 && b.Category&a.Mask != 0
}

// broadPhase lists every unordered pair passing the filter, in (i, j) order
// with i < j. This is the O(n²) brute-force approach.
func broadPhase(bodies []*actor.RigidBody, pairs []bodyPair) []bodyPair {
	pairs = pairs[:0]
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if ShouldCollide(bodies[i], bodies[j]) {
				pairs = append(pairs, bodyPair{index: len(pairs), bodyA: bodies[i], bodyB: bodies[j]})
			}
		}
	}

	return pairs
}

// detectCollisions runs the narrow phase over the broad-phase pairs. Each
// pair writes to its own slot so the manifold order does not depend on
// the number of workers.
func (w *World) detectCollisions() []*constraint.Manifold {
	w.pairs = broadPhase(w.bodies, w.pairs)

	if cap(w.results) < len(w.pairs) {
		w.results = make([]*constraint.Manifold, len(w.pairs))
	}
	results := w.results[:len(w.pairs)]
	logger := w.logger()

	task(max(DEFAULT_WORKERS, w.Workers), w.pairs, func(pair bodyPair) {
		m := constraint.NewManifold(pair.bodyA, pair.bodyB)
		if err := m.Solve(); err != nil {
			logger.Debug("narrow phase gave up", "err", err, "shapeA", pair.bodyA.Shape.Type(), "shapeB", pair.bodyB.Shape.Type())
		}

		if m.Collided {
			results[pair.index] = m
		} else {
			results[pair.index] = nil
		}
	})

	manifolds := w.manifolds[:0]
	for _, m := range results {
		if m != nil {
			manifolds = append(manifolds, m)
		}
	}
	clear(results)

	return manifolds
}
