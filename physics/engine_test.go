package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

func TestNew(t *testing.T) {
	e := New()
	assert.Empty(t, e.Bodies)
	assert.Empty(t, e.Constraints)
	assert.Equal(t, mgl64.Vec2{}, e.Gravity)
	assert.Equal(t, 10, e.SolverIterations)
}

func TestStep_StaticBodiesNeverMove(t *testing.T) {
	e := New()
	e.Gravity = mgl64.Vec2{0, -1000}
	floor := e.AddBody(StaticBody(mgl64.Vec2{0, -100}, HalfPlaneShape(math.Pi/2)))
	post := e.AddBody(StaticBody(mgl64.Vec2{0, 0}, CircleShape(20)))
	ball := circleAt(5, 60, 10)
	ball.Vel = mgl64.Vec2{0, -200}
	e.AddBody(ball)
	e.Bodies[post].Force = mgl64.Vec2{1000, 1000}
	e.Bodies[post].Torque = 50

	before := []Body{e.Bodies[floor], e.Bodies[post]}
	for i := 0; i < 240; i++ {
		e.Step(dt)
	}

	for i, idx := range []int{floor, post} {
		b := e.Bodies[idx]
		assert.Equal(t, before[i].Pos, b.Pos)
		assert.Equal(t, before[i].Angle, b.Angle)
		assert.Equal(t, before[i].Vel, b.Vel)
		assert.Equal(t, before[i].Omega, b.Omega)
	}
}

func TestStep_FreeMotion(t *testing.T) {
	e := New()
	a := circleAt(0, 0, 1)
	a.Vel = mgl64.Vec2{3, -4}
	a.Omega = 0.5
	b := circleAt(100, 100, 1)
	b.Vel = mgl64.Vec2{-1, 2}
	e.AddBody(a)
	e.AddBody(b)

	e.Step(dt)

	assert.InDelta(t, 3*dt, e.Bodies[0].Pos.X(), 1e-12)
	assert.InDelta(t, -4*dt, e.Bodies[0].Pos.Y(), 1e-12)
	assert.InDelta(t, 0.5*dt, e.Bodies[0].Angle, 1e-12)
	assert.InDelta(t, 100-dt, e.Bodies[1].Pos.X(), 1e-12)
	assert.InDelta(t, 100+2*dt, e.Bodies[1].Pos.Y(), 1e-12)
	assert.Equal(t, a.Vel, e.Bodies[0].Vel)
	assert.Equal(t, b.Vel, e.Bodies[1].Vel)
	assert.Equal(t, a.Omega, e.Bodies[0].Omega)
}

func TestStep_ElasticHeadOn(t *testing.T) {
	e := New()
	a := circleAt(0, 0, 10)
	a.Vel = mgl64.Vec2{30, 0}
	b := circleAt(19.5, 0, 10)
	b.Vel = mgl64.Vec2{-30, 0}
	e.AddBody(a)
	e.AddBody(b)

	e.Step(dt)

	assert.InDelta(t, -30, e.Bodies[0].Vel.X(), 1e-9)
	assert.InDelta(t, 30, e.Bodies[1].Vel.X(), 1e-9)
	assert.InDelta(t, 0, e.Bodies[0].Vel.Y(), 1e-9)
	assert.Equal(t, 1, e.Stats.Contacts)
	assert.Equal(t, 0, e.Stats.Resting)
}

func TestStep_DistanceConverges(t *testing.T) {
	e := New()
	e.AddBody(circleAt(0, 0, 1))
	e.AddBody(circleAt(120, 0, 1))
	e.AddConstraint(NewDistanceConstraint(0, 1, 100))

	e.Step(dt)
	dist := e.Bodies[1].Pos.Sub(e.Bodies[0].Pos).Len()
	assert.InDelta(t, 100, dist, 1e-9, "a straight stretch is fixed in one step")

	for i := 0; i < 10; i++ {
		e.Step(dt)
	}
	dist = e.Bodies[1].Pos.Sub(e.Bodies[0].Pos).Len()
	assert.InDelta(t, 100, dist, 1e-9)
}

func TestStep_DistanceDriftBoundedWhileSpinning(t *testing.T) {
	e := New()
	a := circleAt(0, 0, 1)
	b := circleAt(100, 0, 1)
	a.Vel = mgl64.Vec2{0, -100}
	b.Vel = mgl64.Vec2{0, 100}
	e.AddBody(a)
	e.AddBody(b)
	e.AddConstraint(NewDistanceConstraint(0, 1, 100))

	maxErr := 0.0
	for i := 0; i < 600; i++ {
		e.Step(dt)
		dist := e.Bodies[1].Pos.Sub(e.Bodies[0].Pos).Len()
		maxErr = math.Max(maxErr, math.Abs(dist-100))
	}
	assert.Less(t, maxErr, 1.0)
}

func TestDetectCollisions_EveryPairOnce(t *testing.T) {
	e := New()
	const n = 6
	for i := 0; i < n; i++ {
		e.AddBody(circleAt(float64(i), 0.5*float64(i), 100))
	}

	collisions := e.DetectCollisions()
	require.Len(t, collisions, n*(n-1)/2)

	seen := map[[2]int]bool{}
	for _, c := range collisions {
		assert.Less(t, c.IdA, c.IdB)
		key := [2]int{c.IdA, c.IdB}
		assert.False(t, seen[key], "pair %v reported twice", key)
		seen[key] = true
		assert.LessOrEqual(t, c.Contact.Separation, 0.0)
	}
}

func TestDetectCollisions_NormalFromLowerIndex(t *testing.T) {
	e := New()
	e.AddBody(circleAt(0, 5, 10))
	e.AddBody(StaticBody(mgl64.Vec2{0, 0}, HalfPlaneShape(math.Pi/2)))

	collisions := e.DetectCollisions()
	require.Len(t, collisions, 1)
	assert.InDelta(t, -1, collisions[0].Contact.Normal.Y(), 1e-12, "normal points from the circle into the plane")
}

func TestDetectCollisions_ConcentricLogged(t *testing.T) {
	log := &recordingLogger{}
	e := New()
	e.Logger = log
	e.AddBody(circleAt(1, 1, 10))
	e.AddBody(circleAt(1, 1, 5))

	assert.Empty(t, e.DetectCollisions())
	assert.Len(t, log.debug, 1)
}

func TestStep_RestingContact(t *testing.T) {
	e := New()
	e.Gravity = mgl64.Vec2{0, -1000}
	e.SolverIterations = 2
	e.AddBody(circleAt(0, 0, 50))
	e.AddBody(StaticBody(mgl64.Vec2{0, -50}, HalfPlaneShape(math.Pi/2)))

	e.Step(dt)

	assert.Equal(t, 1, e.Stats.Resting)
	assert.InDelta(t, 0, e.Bodies[0].Vel.Y(), 1e-9)
	assert.InDelta(t, 0, e.Bodies[0].Pos.Y(), 1e-9)
}

func TestStep_SeparatingContactDropped(t *testing.T) {
	e := New()
	a := circleAt(0, 0, 10)
	a.Vel = mgl64.Vec2{-5, 0}
	b := circleAt(15, 0, 10)
	b.Vel = mgl64.Vec2{5, 0}
	e.AddBody(a)
	e.AddBody(b)

	e.Step(dt)

	assert.Equal(t, 1, e.Stats.Contacts)
	assert.Equal(t, 1, e.Stats.Dropped)
	assert.Equal(t, 0, e.Stats.Constraints)
	assert.Equal(t, mgl64.Vec2{-5, 0}, e.Bodies[0].Vel)
}

func TestStep_IllFormedConstraintSkipped(t *testing.T) {
	log := &recordingLogger{}
	e := New()
	e.Logger = log
	e.AddBody(circleAt(0, 0, 1))
	e.AddConstraint(NewDistanceConstraint(0, 4, 10))

	e.Step(dt)

	assert.Equal(t, 1, e.Stats.Skipped)
	require.Len(t, log.warn, 1)
	assert.Contains(t, log.warn[0], "ill-formed")
}

func TestStep_DegenerateConstraintSkipped(t *testing.T) {
	log := &recordingLogger{}
	e := New()
	e.Logger = log
	e.AddBody(StaticBody(mgl64.Vec2{}, CircleShape(1)))
	e.AddBody(StaticBody(mgl64.Vec2{}, CircleShape(1)))
	e.AddConstraint(NewDistanceConstraint(0, 1, 10))

	e.Step(dt)

	assert.Equal(t, 1, e.Stats.Skipped)
	assert.Empty(t, log.warn)
	assert.NotEmpty(t, log.debug)
}

func TestStep_NonPositiveDtIgnored(t *testing.T) {
	log := &recordingLogger{}
	e := New()
	e.Logger = log
	b := circleAt(0, 0, 1)
	b.Vel = mgl64.Vec2{1, 1}
	e.AddBody(b)

	e.Step(0)
	e.Step(-1)

	assert.Equal(t, mgl64.Vec2{}, e.Bodies[0].Pos)
	assert.Len(t, log.warn, 2)
}

func TestClone_Independent(t *testing.T) {
	e := New()
	e.Gravity = mgl64.Vec2{0, -10}
	e.AddBody(circleAt(0, 0, 1))
	e.AddBody(circleAt(10, 0, 1))
	e.AddConstraint(NewDistanceConstraint(0, 1, 10))
	e.AddConstraint(NewCustomConstraint(&angleLock{a: 0, b: 1}))

	clone := e.Clone()
	require.Equal(t, e, clone)

	clone.Bodies[0].Pos = mgl64.Vec2{99, 99}
	clone.Constraints[0].Distance = 1
	clone.Constraints[1].Custom.(*angleLock).b = 0
	clone.Gravity = mgl64.Vec2{}
	clone.AddBody(DefaultBody())
	clone.Step(dt)

	assert.Equal(t, mgl64.Vec2{0, 0}, e.Bodies[0].Pos)
	assert.Equal(t, 10.0, e.Constraints[0].Distance)
	assert.Equal(t, 1, e.Constraints[1].Custom.(*angleLock).b)
	assert.Equal(t, mgl64.Vec2{0, -10}, e.Gravity)
	assert.Len(t, e.Bodies, 2)
}

func TestClone_StepsIdentically(t *testing.T) {
	e := New()
	e.Gravity = mgl64.Vec2{0, -100}
	e.AddBody(StaticBody(mgl64.Vec2{0, -20}, HalfPlaneShape(math.Pi/2)))
	for i := 0; i < 5; i++ {
		b := circleAt(float64(i)*15, float64(i)*25, 10)
		b.Vel = mgl64.Vec2{float64(i), 0}
		e.AddBody(b)
	}
	clone := e.Clone()

	for i := 0; i < 60; i++ {
		e.Step(dt)
		clone.Step(dt)
	}
	assert.Equal(t, e.Bodies, clone.Bodies, "stepping is deterministic")
}

func TestKineticEnergy(t *testing.T) {
	e := New()
	b := circleAt(0, 0, 1)
	b.Vel = mgl64.Vec2{2, 0}
	e.AddBody(b)
	e.AddBody(b)
	assert.InDelta(t, 4, e.KineticEnergy(), 1e-12)
}
