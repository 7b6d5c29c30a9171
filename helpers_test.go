package impulse

import (
	"bytes"
	"testing"

	"github.com/gekko3d/impulse/physics/scenarios"
)

const testDt = 1.0 / 60

// simApp builds a stateless host around scenario, logging into buffers.
func simApp(t *testing.T, scenario string, extra ...Module) (*App, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	logger := NewLoggerTo("test", true, &out, &errOut)

	modules := []Module{
		LoggingModule{Logger: logger},
		TimeModule{FixedDt: testDt},
		PhysicsModule{},
		ScenarioModule{Registry: scenarios.DefaultRegistry(), Initial: scenario},
		HistoryModule{},
	}
	app := NewAppBuilder().UseModule(append(modules, extra...)...).Build()
	return app, &errOut
}

func mustResource[T any](t *testing.T, app *App) *T {
	t.Helper()
	r, ok := Resource[T](app)
	if !ok {
		t.Fatalf("resource %T not installed", r)
	}
	return r
}
