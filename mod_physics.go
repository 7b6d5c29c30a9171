package impulse

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics"
	"github.com/gekko3d/impulse/physics/scenarios"
)

// PhysicsWorld holds the running engine and the scenario driving it.
type PhysicsWorld struct {
	Engine   *physics.Engine
	Scenario scenarios.Scenario

	// Iterations and Gravity override what a scenario sets up when non-zero/non-nil.
	Iterations int
	Gravity    *mgl64.Vec2

	// Steps and Time count simulated steps and seconds since the scenario was loaded.
	Steps int
	Time  float64
	// Stepped is true for the frame in which the engine advanced.
	Stepped bool
	// Generation increases whenever a scenario is loaded.
	Generation int
	// Revision increases on every change to the engine state.
	Revision int

	stepOnce bool
	logger   Logger
}

func NewPhysicsWorld(logger Logger) *PhysicsWorld {
	if logger == nil {
		logger = NewNopLogger()
	}
	logger = logger.Component("physics")
	return &PhysicsWorld{logger: logger}
}

// Load replaces the engine with a fresh one from s.
func (w *PhysicsWorld) Load(s scenarios.Scenario) {
	e := s.Create()
	if w.Iterations > 0 {
		e.SolverIterations = w.Iterations
	}
	if w.Gravity != nil {
		e.Gravity = *w.Gravity
	}
	e.Logger = w.log()

	w.Engine = e
	w.Scenario = s
	w.Steps = 0
	w.Time = 0
	w.Generation++
	w.Revision++
	w.log().Infof("loaded scenario %q: %d bodies, %d constraints", s.Name(), len(e.Bodies), len(e.Constraints))
}

// Restore rewinds the engine to a recorded frame.
func (w *PhysicsWorld) Restore(f Frame) {
	w.Engine = f.Engine.Clone()
	w.Engine.Logger = w.log()
	w.Steps = f.Step
	w.Time = f.Time
	w.Revision++
}

func (w *PhysicsWorld) log() Logger {
	if w.logger == nil {
		return NewNopLogger()
	}
	return w.logger
}

// RequestStep advances one step on the next frame even while paused.
func (w *PhysicsWorld) RequestStep() {
	w.stepOnce = true
}

func (w *PhysicsWorld) ScenarioName() string {
	if w.Scenario == nil {
		return ""
	}
	return w.Scenario.Name()
}

type PhysicsModule struct {
	Iterations int
	Gravity    *mgl64.Vec2
}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	world := NewPhysicsWorld(app.Logger())
	world.Iterations = m.Iterations
	world.Gravity = m.Gravity
	cmd.AddResources(world)

	app.UseSystem(
		System(PhysicsStepSystem).
			InStage(Update).
			RunAlways(),
	)
}

// PhysicsStepSystem runs the scenario hook and then steps the engine by the frame dt.
func PhysicsStepSystem(cmd *Commands, t *Time, world *PhysicsWorld) {
	world.Stepped = false
	if world.Engine == nil || t.Dt <= 0 {
		return
	}
	if cmd.State() == StatePaused && !world.stepOnce {
		return
	}
	world.stepOnce = false

	if world.Scenario != nil {
		world.Scenario.Update(world.Engine)
	}
	world.Engine.Step(t.Dt)

	world.Steps++
	world.Time += t.Dt
	world.Stepped = true
	world.Revision++
}
