package scenarios

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics"
)

func circle(x, y, radius float64) physics.Body {
	b := physics.DefaultBody()
	b.Pos = mgl64.Vec2{x, y}
	b.Shape = physics.CircleShape(radius)
	return b
}

func wall(x, y, normalAngle float64) physics.Body {
	return physics.StaticBody(mgl64.Vec2{x, y}, physics.HalfPlaneShape(normalAngle))
}

// Collision sends two circles of different mass into an off-centre elastic collision.
type Collision struct{ Base }

func (Collision) Name() string { return "Collision" }

func (Collision) Create() *physics.Engine {
	const halfWidth = 100.0
	e := physics.New()

	a := circle(-halfWidth, 0, 40)
	a.Vel = mgl64.Vec2{100, 0}
	b := circle(halfWidth, -30, 60)
	b.InvMass = 0.1
	b.Vel = mgl64.Vec2{-50, 0}

	e.AddBody(a)
	e.AddBody(b)
	return e
}

// SimpleFall drops one circle with no floor under Earth gravity.
type SimpleFall struct{ Base }

func (SimpleFall) Name() string { return "Simple Fall" }

func (SimpleFall) Create() *physics.Engine {
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -9.81}
	e.AddBody(circle(0, 0, 50))
	return e
}

// InclinedFall drops a circle onto a tilted floor.
type InclinedFall struct{ Base }

func (InclinedFall) Name() string { return "Inclined Fall" }

func (InclinedFall) Create() *physics.Engine {
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -100}
	e.AddBody(circle(0, 50, 50))
	e.AddBody(wall(0, -50, 1.0))
	return e
}

const (
	DefaultSeed        = 1
	manyParticlesCount = 100
	boxHalfSize        = 500.0
	particleSpeed      = 50.0
	ParticleRadius     = 10.0
)

// ManyParticles scatters circles with random positions and velocities inside a walled box.
// The same seed always produces the same scene.
type ManyParticles struct {
	Base
	Seed  uint64
	Count int
}

func NewManyParticles(seed uint64) ManyParticles {
	return ManyParticles{Seed: seed, Count: manyParticlesCount}
}

func (ManyParticles) Name() string { return "Many Particles" }

func (m ManyParticles) Create() *physics.Engine {
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -9.81}

	rng := rand.New(rand.NewPCG(m.Seed, m.Seed^0x9e3779b97f4a7c15))
	uniform := func(lo, hi float64) float64 {
		return lo + (hi-lo)*rng.Float64()
	}

	for i := 0; i < m.Count; i++ {
		b := circle(uniform(-boxHalfSize, boxHalfSize), uniform(-boxHalfSize, boxHalfSize), ParticleRadius)
		b.InvMass = uniform(1, 3)
		b.Vel = mgl64.Vec2{uniform(-particleSpeed, particleSpeed), uniform(-particleSpeed, particleSpeed)}
		e.AddBody(b)
	}

	e.AddBody(wall(0, boxHalfSize, -math.Pi/2))
	e.AddBody(wall(0, -boxHalfSize, math.Pi/2))
	e.AddBody(wall(boxHalfSize, 0, -math.Pi))
	e.AddBody(wall(-boxHalfSize, 0, 0))
	return e
}

// Pendulum hangs two masses from a fixed anchor with distance constraints.
type Pendulum struct{ Base }

func (Pendulum) Name() string { return "Pendulum" }

func (Pendulum) Create() *physics.Engine {
	const link = 100.0
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -1000}

	anchor := e.AddBody(physics.StaticBody(mgl64.Vec2{0, 100}, physics.CircleShape(10)))
	first := e.AddBody(circle(100, 100, 20))
	second := e.AddBody(circle(200, 100, 20))

	e.AddConstraint(physics.NewDistanceConstraint(anchor, first, link))
	e.AddConstraint(physics.NewDistanceConstraint(first, second, link))
	return e
}

// Penetration starts a stack of circles already overlapping each other and the floor.
type Penetration struct{ Base }

func (Penetration) Name() string { return "Penetration" }

func (Penetration) Create() *physics.Engine {
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -1000}
	e.AddBody(circle(0, -10, 50))
	e.AddBody(circle(5, 75, 50))
	e.AddBody(circle(-5, 160, 50))
	e.AddBody(circle(0, 245, 50))
	e.AddBody(wall(0, -50, math.Pi/2))
	return e
}

// Resting piles circles into small columns on a floor. Two solver iterations are
// enough for scenes made of resting contacts.
type Resting struct{ Base }

func (Resting) Name() string { return "Resting" }

func (Resting) Create() *physics.Engine {
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -1000}
	e.SolverIterations = 2
	e.Bodies = []physics.Body{
		circle(-200, 0, 50),
		circle(0, 0, 50),
		circle(0, 100, 50),
		circle(200, 0, 50),
		circle(200, 100, 50),
		circle(200, 200, 50),
		wall(0, -50, math.Pi/2),
	}
	return e
}

const (
	SpringStiffness        = 50.0
	AngularSpringStiffness = 20.0
)

// Springs drives one circle with a linear spring towards y = 0 and spins another with an
// angular spring towards angle 0. Both are applied as forces from Update.
type Springs struct{}

func (Springs) Name() string { return "Springs" }

func (Springs) Create() *physics.Engine {
	e := physics.New()
	e.AddBody(circle(-100, 50, 50))

	spinner := circle(100, 0, 50)
	spinner.InvMass = 0.1
	spinner.Angle = 1
	e.AddBody(spinner)
	return e
}

func (Springs) Update(e *physics.Engine) {
	if len(e.Bodies) < 2 {
		return
	}
	linear := &e.Bodies[0]
	linear.Force = mgl64.Vec2{0, -SpringStiffness * linear.Pos.Y()}

	angular := &e.Bodies[1]
	angular.Torque = -AngularSpringStiffness * angular.Angle
}

// CapsuleDrop tips a nearly upright capsule over onto a floor.
type CapsuleDrop struct{ Base }

func (CapsuleDrop) Name() string { return "Capsule" }

func (CapsuleDrop) Create() *physics.Engine {
	const (
		length = 100.0
		radius = 50.0
	)
	e := physics.New()
	e.Gravity = mgl64.Vec2{0, -100}

	capsule := physics.DefaultBody()
	capsule.Pos = mgl64.Vec2{0, 100}
	capsule.Angle = math.Pi/2 + 0.1
	capsule.Shape = physics.CapsuleShape(length, radius)
	capsule.InvInertia = physics.InverseOf(physics.CapsuleInertia(1, length, radius))

	e.AddBody(capsule)
	e.AddBody(wall(0, 0, math.Pi/2))
	return e
}
