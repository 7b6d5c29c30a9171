package impulse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo("sim", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("loaded %s", "Pendulum")
	l.Warnf("skipped %d", 2)
	l.Errorf("failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[sim] INFO: loaded Pendulum")
	assert.Contains(t, errOut.String(), "[sim] WARN: skipped 2")
	assert.Contains(t, errOut.String(), "[sim] ERROR: failed")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 3)
	assert.Contains(t, out.String(), "[sim] DEBUG: shown 3")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo("", false, &out, &out)
	l.Infof("plain")

	assert.Contains(t, out.String(), "INFO: plain")
	assert.NotContains(t, out.String(), "[")
}

func TestDefaultLogger_Components(t *testing.T) {
	var out, errOut bytes.Buffer
	root := NewLoggerTo("impulse", false, &out, &errOut)
	physicsLog := root.Component("physics")

	physicsLog.Warnf("skipping constraint %d", 4)
	assert.Contains(t, errOut.String(), "[impulse/physics] WARN: skipping constraint 4")

	physicsLog.Debugf("degenerate pair")
	assert.NotContains(t, out.String(), "degenerate")

	root.SetDebug(true)
	assert.True(t, physicsLog.DebugEnabled(), "components follow the root debug switch")
	physicsLog.Debugf("degenerate pair")
	assert.Contains(t, out.String(), "[impulse/physics] DEBUG: degenerate pair")

	bare := NewLoggerTo("", false, &out, &out).Component("stream")
	bare.Infof("listening")
	assert.Contains(t, out.String(), "[stream] INFO: listening")

	assert.NotNil(t, NewNopLogger().Component("physics"))
}

func TestPhysicsWorld_LogsAsPhysicsComponent(t *testing.T) {
	app, errOut := simApp(t, "Collision")
	app.RunFrames(1)

	world := mustResource[PhysicsWorld](t, app)
	world.Engine.Logger.Warnf("engine says %d", 7)
	assert.Contains(t, errOut.String(), "[test/physics] WARN: engine says 7")
}

func TestApp_LoggerFallsBackToNop(t *testing.T) {
	var app *App
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, NewAppBuilder().Build().Logger())

	logger := NewLoggerTo("x", false, &bytes.Buffer{}, &bytes.Buffer{})
	withLogger := NewAppBuilder().UseModule(LoggingModule{Logger: logger}).Build()
	assert.Same(t, logger, withLogger.Logger())
}
