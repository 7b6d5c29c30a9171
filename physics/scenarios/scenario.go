// Package scenarios holds named simulation presets and the contract hosts use to drive them.
package scenarios

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gekko3d/impulse/physics"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario installs the initial state of a simulation and may drive it between steps.
//
// Hosts call Update right before every Engine.Step; forces and torques written by Update are
// consumed by that step and cleared at its end.
type Scenario interface {
	Name() string
	Create() *physics.Engine
	Update(e *physics.Engine)
}

// Base gives scenarios a no-op Update.
type Base struct{}

func (Base) Update(*physics.Engine) {}

// Registry is an ordered set of scenarios, looked up by name.
type Registry struct {
	scenarios []Scenario
}

func NewRegistry(scenarios ...Scenario) *Registry {
	r := &Registry{}
	for _, s := range scenarios {
		r.Register(s)
	}
	return r
}

// DefaultRegistry lists every preset shipped with the engine.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Collision{},
		InclinedFall{},
		NewManyParticles(DefaultSeed),
		Pendulum{},
		Penetration{},
		Resting{},
		SimpleFall{},
		Springs{},
		CapsuleDrop{},
	)
}

// Register appends s. A scenario with the same name replaces the earlier one in place.
func (r *Registry) Register(s Scenario) {
	for i, existing := range r.scenarios {
		if Slug(existing.Name()) == Slug(s.Name()) {
			r.scenarios[i] = s
			return
		}
	}
	r.scenarios = append(r.scenarios, s)
}

func (r *Registry) All() []Scenario {
	return append([]Scenario(nil), r.scenarios...)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.scenarios))
	for i, s := range r.scenarios {
		names[i] = s.Name()
	}
	return names
}

// Lookup finds a scenario by display name or slug, ignoring case.
func (r *Registry) Lookup(name string) (Scenario, error) {
	slug := Slug(name)
	for _, s := range r.scenarios {
		if Slug(s.Name()) == slug {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Slug turns "Many Particles" into "many-particles".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
