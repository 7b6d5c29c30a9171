package impulse

import (
	"github.com/gekko3d/impulse/physics/scenarios"
)

// ScenarioSelection names the scenario to run. Selecting a scenario takes effect at the
// start of the next frame.
type ScenarioSelection struct {
	Registry *scenarios.Registry
	Current  string

	pending string
}

func (s *ScenarioSelection) Select(name string) {
	s.pending = name
}

func (s *ScenarioSelection) Pending() string {
	return s.pending
}

// ScenarioModule needs PhysicsModule installed before it.
type ScenarioModule struct {
	Registry *scenarios.Registry
	// Initial is loaded on the first frame; empty picks the first registered scenario.
	Initial string
}

func (m ScenarioModule) Install(app *App, cmd *Commands) {
	registry := m.Registry
	if registry == nil {
		registry = scenarios.DefaultRegistry()
	}
	initial := m.Initial
	if initial == "" {
		if names := registry.Names(); len(names) > 0 {
			initial = names[0]
		}
	}

	cmd.AddResources(&ScenarioSelection{Registry: registry, pending: initial})
	app.UseSystem(
		System(ScenarioSwitchSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func ScenarioSwitchSystem(cmd *Commands, sel *ScenarioSelection, world *PhysicsWorld) {
	if sel.pending == "" {
		return
	}
	name := sel.pending
	sel.pending = ""

	s, err := sel.Registry.Lookup(name)
	if err != nil {
		cmd.Logger().Errorf("switching scenario: %v", err)
		return
	}
	world.Load(s)
	sel.Current = s.Name()
}
