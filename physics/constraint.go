package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/geometry"
	"github.com/gekko3d/impulse/physics/vecmath"
)

const (
	// DefaultRestitution makes contacts fully elastic.
	DefaultRestitution = 1.0
	// ConstraintTolerance bounds |C| and the velocity error of a satisfied constraint.
	ConstraintTolerance = 1e-6
)

type ConstraintKind int

const (
	// KindDistance keeps two body centres at a fixed distance. Equality.
	KindDistance ConstraintKind = iota
	// KindContact keeps two bodies from interpenetrating. Inequality, C >= 0.
	KindContact
	// KindCustom delegates to a user supplied CustomConstraint.
	KindCustom
)

func (k ConstraintKind) String() string {
	switch k {
	case KindDistance:
		return "distance"
	case KindContact:
		return "contact"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// CustomConstraint lets callers add constraint kinds the engine does not know about.
// Implementations must not keep references to bodies between calls.
type CustomConstraint interface {
	Ids() (int, int)
	Value(a, b *Body) float64
	TargetVelocity(a, b *Body, dt float64) float64
	// Jacobian returns the two (d/dx, d/dy, d/dtheta) rows; ok is false when degenerate.
	Jacobian(a, b *Body) (ja, jb mgl64.Vec3, ok bool)
	Inequality() bool
	Clone() CustomConstraint
}

// Constraint is a scalar condition C(a, b) on two bodies, referenced by index.
// Only the fields of its Kind are meaningful.
type Constraint struct {
	Kind     ConstraintKind
	IdA, IdB int

	// Distance is the target length of a distance constraint.
	Distance float64

	Contact     geometry.Contact
	Restitution float64

	Custom CustomConstraint
}

func NewDistanceConstraint(idA, idB int, distance float64) Constraint {
	return Constraint{Kind: KindDistance, IdA: idA, IdB: idB, Distance: distance}
}

// NewContactConstraint expects the contact normal to point from idA towards idB.
func NewContactConstraint(idA, idB int, contact geometry.Contact) Constraint {
	return Constraint{
		Kind:        KindContact,
		IdA:         idA,
		IdB:         idB,
		Contact:     contact,
		Restitution: DefaultRestitution,
	}
}

func NewCustomConstraint(custom CustomConstraint) Constraint {
	a, b := custom.Ids()
	return Constraint{Kind: KindCustom, IdA: a, IdB: b, Custom: custom}
}

func (c Constraint) Ids() (int, int) {
	if c.Kind == KindCustom {
		return c.Custom.Ids()
	}
	return c.IdA, c.IdB
}

// Inequality reports whether the feasible region is C >= 0 rather than C = 0.
func (c Constraint) Inequality() bool {
	switch c.Kind {
	case KindContact:
		return true
	case KindCustom:
		return c.Custom.Inequality()
	}
	return false
}

// Value evaluates C(a, b).
func (c Constraint) Value(a, b *Body) float64 {
	switch c.Kind {
	case KindDistance:
		return b.Pos.Sub(a.Pos).Len() - c.Distance
	case KindContact:
		return c.Contact.Separation
	case KindCustom:
		return c.Custom.Value(a, b)
	}
	return 0
}

// TargetVelocity is the relative velocity along the constraint the solver aims for.
//
// Distance constraints ask for -C/dt so that the error vanishes to first order over one step.
// Contacts reflect the current normal velocity scaled by restitution.
func (c Constraint) TargetVelocity(a, b *Body, dt float64) float64 {
	switch c.Kind {
	case KindDistance:
		return -c.Value(a, b) / dt
	case KindContact:
		return -c.Restitution * c.RelativeVelocity(a, b)
	case KindCustom:
		return c.Custom.TargetVelocity(a, b, dt)
	}
	return 0
}

// Jacobian returns dC/d(x, y, theta) for a and for b. ok is false when the constraint has
// no well defined direction, for example a distance constraint between coinciding bodies.
func (c Constraint) Jacobian(a, b *Body) (ja, jb mgl64.Vec3, ok bool) {
	switch c.Kind {
	case KindDistance:
		u, ok := vecmath.TryNormalize(b.Pos.Sub(a.Pos))
		if !ok {
			return ja, jb, false
		}
		return mgl64.Vec3{-u.X(), -u.Y(), 0}, mgl64.Vec3{u.X(), u.Y(), 0}, true
	case KindContact:
		n := c.Contact.Normal
		if n.Len() < vecmath.Epsilon {
			return ja, jb, false
		}
		ra := c.Contact.Pos.Sub(a.Pos)
		rb := c.Contact.Pos.Sub(b.Pos)
		ja = mgl64.Vec3{-n.X(), -n.Y(), -vecmath.PerpDot(n, ra)}
		jb = mgl64.Vec3{n.X(), n.Y(), vecmath.PerpDot(n, rb)}
		return ja, jb, true
	case KindCustom:
		return c.Custom.Jacobian(a, b)
	}
	return ja, jb, false
}

// RelativeVelocity is J·V, the rate of change of C. Degenerate constraints report zero.
func (c Constraint) RelativeVelocity(a, b *Body) float64 {
	ja, jb, ok := c.Jacobian(a, b)
	if !ok {
		return 0
	}
	return relativeVelocity(ja, jb, a, b)
}

// Satisfied reports whether both the constraint value and its velocity error are within
// ConstraintTolerance.
func (c Constraint) Satisfied(a, b *Body, dt float64) bool {
	velocityErr := math.Abs(c.TargetVelocity(a, b, dt) - c.RelativeVelocity(a, b))
	if velocityErr >= ConstraintTolerance {
		return false
	}
	value := c.Value(a, b)
	if c.Inequality() {
		return value > -ConstraintTolerance
	}
	return math.Abs(value) < ConstraintTolerance
}

// Clone returns a copy that shares no state with c.
func (c Constraint) Clone() Constraint {
	if c.Custom != nil {
		c.Custom = c.Custom.Clone()
	}
	return c
}

func relativeVelocity(ja, jb mgl64.Vec3, a, b *Body) float64 {
	return ja.Dot(a.Twist()) + jb.Dot(b.Twist())
}
