package impulse

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics"
	"github.com/gekko3d/impulse/physics/geometry"
	"github.com/gekko3d/impulse/physics/scenarios"
)

var ErrInvalidState = errors.New("invalid state")

type ShapeData struct {
	Kind        string  `json:"kind"`
	Radius      float64 `json:"radius,omitempty"`
	Length      float64 `json:"length,omitempty"`
	NormalAngle float64 `json:"normal_angle,omitempty"`
}

type BodyData struct {
	InvMass    float64    `json:"inv_mass"`
	InvInertia float64    `json:"inv_inertia"`
	Position   mgl64.Vec2 `json:"position"`
	Velocity   mgl64.Vec2 `json:"velocity"`
	Angle      float64    `json:"angle"`
	Omega      float64    `json:"omega"`
	Shape      ShapeData  `json:"shape"`
}

type ConstraintData struct {
	Kind        string            `json:"kind"`
	A           int               `json:"a"`
	B           int               `json:"b"`
	Distance    float64           `json:"distance,omitempty"`
	Contact     *geometry.Contact `json:"contact,omitempty"`
	Restitution float64           `json:"restitution,omitempty"`
}

// StateData is the on-disk form of an engine. Custom constraints have no generic
// encoding and are left out.
type StateData struct {
	Scenario    string           `json:"scenario,omitempty"`
	Step        int              `json:"step"`
	Time        float64          `json:"time"`
	Gravity     mgl64.Vec2       `json:"gravity"`
	Iterations  int              `json:"iterations"`
	Bodies      []BodyData       `json:"bodies"`
	Constraints []ConstraintData `json:"constraints,omitempty"`
}

// NewStateData captures the world's engine. It also returns the number of custom
// constraints that could not be captured.
func NewStateData(world *PhysicsWorld) (StateData, int) {
	e := world.Engine
	data := StateData{
		Scenario:   world.ScenarioName(),
		Step:       world.Steps,
		Time:       world.Time,
		Gravity:    e.Gravity,
		Iterations: e.SolverIterations,
	}

	for _, b := range e.Bodies {
		data.Bodies = append(data.Bodies, BodyData{
			InvMass:    b.InvMass,
			InvInertia: b.InvInertia,
			Position:   b.Pos,
			Velocity:   b.Vel,
			Angle:      b.Angle,
			Omega:      b.Omega,
			Shape: ShapeData{
				Kind:        b.Shape.Kind.String(),
				Radius:      b.Shape.Radius,
				Length:      b.Shape.Length,
				NormalAngle: b.Shape.NormalAngle,
			},
		})
	}

	skipped := 0
	for _, c := range e.Constraints {
		switch c.Kind {
		case physics.KindDistance:
			data.Constraints = append(data.Constraints, ConstraintData{
				Kind: c.Kind.String(), A: c.IdA, B: c.IdB, Distance: c.Distance,
			})
		case physics.KindContact:
			contact := c.Contact
			data.Constraints = append(data.Constraints, ConstraintData{
				Kind: c.Kind.String(), A: c.IdA, B: c.IdB, Contact: &contact, Restitution: c.Restitution,
			})
		default:
			skipped++
		}
	}
	return data, skipped
}

// Engine rebuilds an engine from the data.
func (d StateData) Engine() (*physics.Engine, error) {
	e := physics.New()
	e.Gravity = d.Gravity
	if d.Iterations > 0 {
		e.SolverIterations = d.Iterations
	}

	for i, bd := range d.Bodies {
		if bd.InvMass < 0 || bd.InvInertia < 0 {
			return nil, fmt.Errorf("%w: body %d has negative inverse mass", ErrInvalidState, i)
		}
		kind, ok := physics.ParseShapeKind(bd.Shape.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: body %d has unknown shape %q", ErrInvalidState, i, bd.Shape.Kind)
		}
		e.AddBody(physics.Body{
			InvMass:    bd.InvMass,
			InvInertia: bd.InvInertia,
			Pos:        bd.Position,
			Vel:        bd.Velocity,
			Angle:      bd.Angle,
			Omega:      bd.Omega,
			Shape: physics.Shape{
				Kind:        kind,
				Radius:      bd.Shape.Radius,
				Length:      bd.Shape.Length,
				NormalAngle: bd.Shape.NormalAngle,
			},
		})
	}

	for i, cd := range d.Constraints {
		if cd.A < 0 || cd.A >= len(e.Bodies) || cd.B < 0 || cd.B >= len(e.Bodies) {
			return nil, fmt.Errorf("%w: constraint %d references bodies %d and %d of %d", ErrInvalidState, i, cd.A, cd.B, len(e.Bodies))
		}
		switch cd.Kind {
		case physics.KindDistance.String():
			e.AddConstraint(physics.NewDistanceConstraint(cd.A, cd.B, cd.Distance))
		case physics.KindContact.String():
			if cd.Contact == nil {
				return nil, fmt.Errorf("%w: contact constraint %d has no contact", ErrInvalidState, i)
			}
			c := physics.NewContactConstraint(cd.A, cd.B, *cd.Contact)
			c.Restitution = cd.Restitution
			e.AddConstraint(c)
		default:
			return nil, fmt.Errorf("%w: constraint %d has unknown kind %q", ErrInvalidState, i, cd.Kind)
		}
	}
	return e, nil
}

// SaveState writes the world's engine to filename as JSON.
func SaveState(world *PhysicsWorld, filename string) error {
	if world.Engine == nil {
		return fmt.Errorf("%w: no engine loaded", ErrInvalidState)
	}
	data, skipped := NewStateData(world)
	if skipped > 0 {
		world.log().Warnf("saving %s: %d custom constraints left out", filename, skipped)
	}

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

func LoadState(filename string) (StateData, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return StateData{}, err
	}

	var data StateData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return StateData{}, fmt.Errorf("%w: %s: %v", ErrInvalidState, filename, err)
	}
	if _, err := data.Engine(); err != nil {
		return StateData{}, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// StateScenario replays a saved state. When Hook is set its Update drives the state,
// so a saved spring scene keeps its springs.
type StateScenario struct {
	Label string
	Data  StateData
	Hook  scenarios.Scenario
}

// NewStateScenario names the scenario after the file and borrows the Update hook of the
// scenario the state was saved from, if the registry knows it. Data that cannot build an
// engine is rejected with ErrInvalidState.
func NewStateScenario(label string, data StateData, registry *scenarios.Registry) (StateScenario, error) {
	if _, err := data.Engine(); err != nil {
		return StateScenario{}, err
	}
	s := StateScenario{Label: label, Data: data}
	if registry != nil && data.Scenario != "" {
		if hook, err := registry.Lookup(data.Scenario); err == nil {
			s.Hook = hook
		}
	}
	return s, nil
}

func (s StateScenario) Name() string {
	return s.Label
}

// Create builds the saved state. A StateScenario assembled by hand around invalid data
// yields an empty engine; NewStateScenario reports the error up front.
func (s StateScenario) Create() *physics.Engine {
	e, err := s.Data.Engine()
	if err != nil {
		return physics.New()
	}
	return e
}

func (s StateScenario) Update(e *physics.Engine) {
	if s.Hook != nil {
		s.Hook.Update(e)
	}
}
