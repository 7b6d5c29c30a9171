package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SolverData is the per-step snapshot of one constraint. Jacobian and target velocity are
// frozen for the whole solve; only TotalImpulse and the body velocities change.
type SolverData struct {
	IdA, IdB       int
	JA, JB         mgl64.Vec3
	TargetVelocity float64
	// TotalImpulse accumulates the applied Lagrange multiplier over all iterations.
	TotalImpulse float64
	Inequality   bool
	// Source is the index of the originating constraint in the step's batch.
	Source int
}

// NewSolverData snapshots c against the current body state.
func NewSolverData(c Constraint, source int, bodies []Body, dt float64) (SolverData, error) {
	idA, idB := c.Ids()
	if !inRange(idA, bodies) || !inRange(idB, bodies) {
		return SolverData{}, fmt.Errorf("%w: %s constraint references bodies %d and %d of %d",
			ErrIllFormed, c.Kind, idA, idB, len(bodies))
	}
	a, b := &bodies[idA], &bodies[idB]
	ja, jb, ok := c.Jacobian(a, b)
	if !ok {
		return SolverData{}, fmt.Errorf("%w: %s constraint between bodies %d and %d",
			ErrDegenerate, c.Kind, idA, idB)
	}
	return SolverData{
		IdA:            idA,
		IdB:            idB,
		JA:             ja,
		JB:             jb,
		TargetVelocity: c.TargetVelocity(a, b, dt),
		Inequality:     c.Inequality(),
		Source:         source,
	}, nil
}

func inRange(id int, bodies []Body) bool {
	return id >= 0 && id < len(bodies)
}

type Solver interface {
	Solve(bodies []Body, data []SolverData)
}

// SequentialImpulseSolver visits every constraint in order, Iterations times, applying one
// velocity impulse per visit. Impulses accumulate per constraint; inequality constraints
// clamp the accumulated total at zero, not the increment.
type SequentialImpulseSolver struct {
	Iterations int
	Logger     Logger
}

func (s SequentialImpulseSolver) Solve(bodies []Body, data []SolverData) {
	log := s.Logger
	if log == nil {
		log = nopLogger{}
	}
	for iter := 0; iter < s.Iterations; iter++ {
		for i := range data {
			d := &data[i]
			if d.IdA == d.IdB {
				if iter == 0 {
					log.Warnf("constraint %d uses identical bodies %d, skipped", d.Source, d.IdA)
				}
				continue
			}
			if !inRange(d.IdA, bodies) || !inRange(d.IdB, bodies) {
				if iter == 0 {
					log.Warnf("constraint %d references bodies %d and %d of %d, skipped", d.Source, d.IdA, d.IdB, len(bodies))
				}
				continue
			}
			applyImpulse(&bodies[d.IdA], &bodies[d.IdB], d)
		}
	}
}

// applyImpulse does one sequential impulse update of d on the pair (a, b).
func applyImpulse(a, b *Body, d *SolverData) {
	ma := a.InvMassMatrix()
	mb := b.InvMassMatrix()
	wa := ma.Mul3x1(d.JA)
	wb := mb.Mul3x1(d.JB)

	k := d.JA.Dot(wa) + d.JB.Dot(wb)
	if k == 0 {
		// both ends immovable along the constraint
		return
	}

	vRel := relativeVelocity(d.JA, d.JB, a, b)
	lambda := (d.TargetVelocity - vRel) / k

	total := d.TotalImpulse + lambda
	if d.Inequality {
		total = math.Max(total, 0)
	}
	lambda = total - d.TotalImpulse
	d.TotalImpulse = total

	a.ApplyTwist(wa.Mul(lambda))
	b.ApplyTwist(wb.Mul(lambda))
}
