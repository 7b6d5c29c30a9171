// Package physics is a small 2D rigid body engine built on sequential impulses.
//
// Each Step integrates forces, detects contacts between every pair of bodies, snapshots
// persistent and contact constraints into SolverData, runs the solver over velocities and
// finally advects positions with the solved velocities.
package physics

import (
	"errors"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/geometry"
)

const (
	DefaultSolverIterations = 10
	// StaticSpeedFactor scales |gravity|*dt into the speed below which a contact is resting.
	StaticSpeedFactor = 2.0
)

// StepStats summarises the last call to Step.
type StepStats struct {
	// Contacts is the number of contacts detected this step.
	Contacts int
	// Resting counts contacts solved without restitution.
	Resting int
	// Dropped counts contacts already separating fast enough to leave out.
	Dropped int
	// Constraints is the number of SolverData entries handed to the solver.
	Constraints int
	// Skipped counts ill-formed or degenerate constraints.
	Skipped int
}

// Engine owns the bodies and persistent constraints of one simulation. It holds no
// pointers between its parts, so Clone is a plain copy of the slices.
type Engine struct {
	Bodies           []Body
	Constraints      []Constraint
	Gravity          mgl64.Vec2
	SolverIterations int

	// Logger receives diagnostics; nil discards them.
	Logger Logger
	Stats  StepStats
}

// New returns an empty engine with zero gravity and DefaultSolverIterations.
func New() *Engine {
	return &Engine{SolverIterations: DefaultSolverIterations}
}

// AddBody appends b and returns its index.
func (e *Engine) AddBody(b Body) int {
	e.Bodies = append(e.Bodies, b)
	return len(e.Bodies) - 1
}

func (e *Engine) AddConstraint(c Constraint) {
	e.Constraints = append(e.Constraints, c)
}

func (e *Engine) logger() Logger {
	if e.Logger == nil {
		return nopLogger{}
	}
	return e.Logger
}

// Step advances the simulation by dt seconds. Non-positive dt is ignored.
func (e *Engine) Step(dt float64) {
	if dt <= 0 {
		e.logger().Warnf("step with non-positive dt %v ignored", dt)
		return
	}
	e.Stats = StepStats{}

	for i := range e.Bodies {
		e.Bodies[i].IntegrateForces(e.Gravity, dt)
	}

	contacts := e.DetectCollisions()
	e.Stats.Contacts = len(contacts)
	contacts = e.classifyContacts(contacts, dt)

	data := e.BuildSolverData(contacts, dt)
	solver := SequentialImpulseSolver{Iterations: e.SolverIterations, Logger: e.logger()}
	solver.Solve(e.Bodies, data)

	for i := range e.Bodies {
		e.Bodies[i].IntegratePosition(dt)
	}
}

// DetectCollisions returns one contact constraint per contact between every pair i < j,
// in pair order. Normals point from body i to body j.
func (e *Engine) DetectCollisions() []Constraint {
	shapes := make([]geometry.Shape, len(e.Bodies))
	for i := range e.Bodies {
		shapes[i] = e.Bodies[i].WorldShape()
	}

	var collisions []Constraint
	for i := range e.Bodies {
		for j := i + 1; j < len(e.Bodies); j++ {
			contacts := geometry.Overlap(shapes[i], shapes[j])
			if len(contacts) == 0 {
				e.traceConcentric(i, j)
				continue
			}
			for _, contact := range contacts {
				collisions = append(collisions, NewContactConstraint(i, j, contact))
			}
		}
	}
	return collisions
}

func (e *Engine) traceConcentric(i, j int) {
	a, b := &e.Bodies[i], &e.Bodies[j]
	if a.Shape.Kind != ShapeCircle || b.Shape.Kind != ShapeCircle {
		return
	}
	if a.Pos == b.Pos {
		e.logger().Debugf("concentric circles %d and %d have no contact normal", i, j)
	}
}

// classifyContacts treats slow contacts as resting and drops contacts that already separate.
//
// Below StaticSpeedFactor*|g|*dt a contact mostly carries the velocity gravity added during
// this step; reflecting it would pump energy into stacks, so its restitution is set to zero.
func (e *Engine) classifyContacts(contacts []Constraint, dt float64) []Constraint {
	limit := StaticSpeedFactor * e.Gravity.Len() * dt
	kept := contacts[:0]
	for _, c := range contacts {
		vRel := c.RelativeVelocity(&e.Bodies[c.IdA], &e.Bodies[c.IdB])
		if vRel >= limit {
			e.Stats.Dropped++
			continue
		}
		if math.Abs(vRel) < limit {
			c.Restitution = 0
			e.Stats.Resting++
		}
		kept = append(kept, c)
	}
	return kept
}

// BuildSolverData snapshots the persistent constraints, in insertion order, followed by
// contacts. Ill-formed and degenerate constraints are left out for this step.
func (e *Engine) BuildSolverData(contacts []Constraint, dt float64) []SolverData {
	data := make([]SolverData, 0, len(e.Constraints)+len(contacts))
	add := func(c Constraint, source int) {
		d, err := NewSolverData(c, source, e.Bodies, dt)
		if err != nil {
			e.Stats.Skipped++
			if errors.Is(err, ErrDegenerate) {
				e.logger().Debugf("constraint %d skipped: %v", source, err)
			} else {
				e.logger().Warnf("constraint %d skipped: %v", source, err)
			}
			return
		}
		data = append(data, d)
	}

	for i, c := range e.Constraints {
		add(c, i)
	}
	for i, c := range contacts {
		add(c, len(e.Constraints)+i)
	}
	e.Stats.Constraints = len(data)
	return data
}

// Clone returns an independent deep copy of the engine state. The logger is shared.
func (e *Engine) Clone() *Engine {
	clone := *e
	clone.Bodies = slices.Clone(e.Bodies)
	if e.Constraints != nil {
		clone.Constraints = make([]Constraint, len(e.Constraints))
		for i, c := range e.Constraints {
			clone.Constraints[i] = c.Clone()
		}
	}
	return &clone
}

func (e *Engine) KineticEnergy() float64 {
	var total float64
	for i := range e.Bodies {
		total += e.Bodies[i].KineticEnergy()
	}
	return total
}
