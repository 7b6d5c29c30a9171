package impulse

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/impulse/physics"
)

func movingEngine() *physics.Engine {
	e := physics.New()
	b := physics.DefaultBody()
	b.Vel = mgl64.Vec2{60, 0}
	e.AddBody(b)
	return e
}

func recordSteps(h *History, e *physics.Engine, from, n int) {
	for i := from; i < from+n; i++ {
		e.Step(testDt)
		h.Record(i+1, float64(i+1)*testDt, e)
	}
}

func TestHistory_RecordKeepsIndependentCopies(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, -1, h.Cursor())
	_, ok := h.Current()
	assert.False(t, ok)

	e := movingEngine()
	h.Reset(0, 0, e)
	recordSteps(h, e, 0, 3)

	require.Equal(t, 4, h.Len())
	assert.True(t, h.IsLastFrame())

	frames := h.Frames()
	for i, f := range frames {
		assert.Equal(t, i, f.Step)
		assert.InDelta(t, float64(i), f.Engine.Bodies[0].Pos.X(), 1e-9)
		assert.NotEqual(t, uuid.Nil, f.ID)
	}
	assert.NotEqual(t, frames[0].ID, frames[1].ID)

	e.Bodies[0].Pos = mgl64.Vec2{-1, -1}
	assert.InDelta(t, 3, frames[3].Engine.Bodies[0].Pos.X(), 1e-9)
}

func TestHistory_SeekAndResumeTruncates(t *testing.T) {
	h := NewHistory(0)
	e := movingEngine()
	h.Reset(0, 0, e)
	recordSteps(h, e, 0, 5)

	f, err := h.Seek(2)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Step)
	assert.Equal(t, 2, h.Cursor())
	assert.False(t, h.IsLastFrame())
	assert.Equal(t, 6, h.Len(), "seeking alone keeps the future")

	restored := f.Engine.Clone()
	recordSteps(h, restored, 2, 1)
	assert.Equal(t, 4, h.Len())
	assert.True(t, h.IsLastFrame())
	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, 3, current.Step)

	_, err = h.Seek(4)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
	_, err = h.Seek(-1)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
}

func TestHistory_ResumeWithoutRecording(t *testing.T) {
	h := NewHistory(0)
	e := movingEngine()
	h.Reset(0, 0, e)
	recordSteps(h, e, 0, 3)

	_, err := h.Seek(1)
	require.NoError(t, err)
	h.Resume()
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.IsLastFrame())
}

func TestHistory_LimitDropsOldest(t *testing.T) {
	h := NewHistory(3)
	e := movingEngine()
	h.Reset(0, 0, e)
	recordSteps(h, e, 0, 4)

	require.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Frames()[0].Step)
	assert.Equal(t, 2, h.Cursor())
}

func TestHistoryModule_RecordsEveryStep(t *testing.T) {
	app, _ := simApp(t, "Collision")
	app.RunFrames(10)

	history := mustResource[History](t, app)
	require.Equal(t, 11, history.Len())
	assert.Equal(t, 0, history.Frames()[0].Step)
	assert.Equal(t, 10, history.Frames()[10].Step)
}

func TestHistoryModule_SeekWorldThenStepReplays(t *testing.T) {
	app, _ := simApp(t, "Collision")
	app.RunFrames(10)

	world := mustResource[PhysicsWorld](t, app)
	history := mustResource[History](t, app)
	original := history.Frames()

	require.NoError(t, history.SeekWorld(world, 5))
	assert.Equal(t, 5, world.Steps)
	assert.Equal(t, original[5].Engine.Bodies, world.Engine.Bodies)

	app.Tick()
	assert.Equal(t, 6, world.Steps)
	assert.Equal(t, 7, history.Len())
	assert.True(t, history.IsLastFrame())
	assert.Equal(t, original[6].Engine.Bodies, world.Engine.Bodies)

	assert.ErrorIs(t, history.SeekWorld(world, 99), ErrFrameOutOfRange)
}

func TestHistoryModule_ResetsOnScenarioSwitch(t *testing.T) {
	app, _ := simApp(t, "Collision")
	app.RunFrames(10)

	mustResource[ScenarioSelection](t, app).Select("Pendulum")
	app.Tick()

	history := mustResource[History](t, app)
	require.Equal(t, 2, history.Len())
	assert.Equal(t, 0, history.Frames()[0].Step)
	assert.Len(t, history.Frames()[0].Engine.Constraints, 2)
}
