package impulse

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gekko3d/impulse/physics"
)

var ErrFrameOutOfRange = errors.New("frame out of range")

// Frame is a recorded engine state after Step steps.
type Frame struct {
	ID     uuid.UUID
	Step   int
	Time   float64
	Engine *physics.Engine
}

// History keeps engine snapshots for stepping back and forth through a run. Recording
// while the cursor is not on the last frame discards the frames after it.
type History struct {
	// Limit caps the number of frames; the oldest are dropped first. Zero keeps all.
	Limit int

	frames     []Frame
	cursor     int
	generation int
}

func NewHistory(limit int) *History {
	return &History{Limit: limit, cursor: -1}
}

func (h *History) Len() int {
	return len(h.frames)
}

// Cursor is the index of the current frame, or -1 when empty.
func (h *History) Cursor() int {
	return h.cursor
}

func (h *History) Frames() []Frame {
	return append([]Frame(nil), h.frames...)
}

// Reset drops every frame and records e as the first one.
func (h *History) Reset(step int, t float64, e *physics.Engine) Frame {
	h.frames = h.frames[:0]
	h.cursor = -1
	return h.Record(step, t, e)
}

// Record appends a copy of e and moves the cursor onto it.
func (h *History) Record(step int, t float64, e *physics.Engine) Frame {
	h.Resume()

	f := Frame{
		ID:     uuid.New(),
		Step:   step,
		Time:   t,
		Engine: e.Clone(),
	}
	h.frames = append(h.frames, f)

	if h.Limit > 0 && len(h.frames) > h.Limit {
		drop := len(h.frames) - h.Limit
		h.frames = append(h.frames[:0], h.frames[drop:]...)
	}
	h.cursor = len(h.frames) - 1
	return f
}

// Seek moves the cursor to frame i.
func (h *History) Seek(i int) (Frame, error) {
	if i < 0 || i >= len(h.frames) {
		return Frame{}, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, i, len(h.frames))
	}
	h.cursor = i
	return h.frames[i], nil
}

func (h *History) Current() (Frame, bool) {
	if h.cursor < 0 {
		return Frame{}, false
	}
	return h.frames[h.cursor], true
}

func (h *History) IsLastFrame() bool {
	return h.cursor == len(h.frames)-1
}

// Resume discards the frames after the cursor.
func (h *History) Resume() {
	if h.cursor >= 0 && !h.IsLastFrame() {
		clear(h.frames[h.cursor+1:])
		h.frames = h.frames[:h.cursor+1]
	}
}

// SeekWorld rewinds world to frame i.
func (h *History) SeekWorld(world *PhysicsWorld, i int) error {
	f, err := h.Seek(i)
	if err != nil {
		return err
	}
	world.Restore(f)
	return nil
}

// HistoryModule needs PhysicsModule installed before it, and ScenarioModule too when
// present, so the first frame of a freshly loaded scenario is recorded before it steps.
type HistoryModule struct {
	Limit int
}

func (m HistoryModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewHistory(m.Limit))
	app.UseSystem(
		System(HistoryResetSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(HistoryRecordSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// HistoryResetSystem restarts the history when a new scenario is loaded.
func HistoryResetSystem(world *PhysicsWorld, history *History) {
	if world.Engine == nil || history.generation == world.Generation {
		return
	}
	history.generation = world.Generation
	history.Reset(world.Steps, world.Time, world.Engine)
}

// HistoryRecordSystem records every stepped frame.
func HistoryRecordSystem(world *PhysicsWorld, history *History) {
	if world.Engine == nil || !world.Stepped {
		return
	}
	if history.generation != world.Generation {
		HistoryResetSystem(world, history)
		return
	}
	history.Record(world.Steps, world.Time, world.Engine)
}
