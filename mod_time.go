package impulse

import (
	"time"
)

// Time is the frame clock. Dt is in seconds.
type Time struct {
	Dt      float64
	Elapsed float64
	Frame   int

	// Fixed, when positive, replaces the wall clock delta.
	Fixed float64
	// Paced sleeps so fixed frames do not run faster than real time.
	Paced bool

	last time.Time
}

// TimeModule installs the Time resource. With FixedDt set every frame advances by
// exactly FixedDt, which keeps runs reproducible.
type TimeModule struct {
	FixedDt float64
	Paced   bool
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Fixed: mod.FixedDt,
		Paced: mod.Paced,
	})
	app.UseSystem(
		System(TimeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func TimeSystem(t *Time) {
	now := time.Now()

	switch {
	case t.Fixed > 0:
		if t.Paced && !t.last.IsZero() {
			next := t.last.Add(time.Duration(t.Fixed * float64(time.Second)))
			if wait := next.Sub(now); wait > 0 {
				time.Sleep(wait)
				now = next
			}
		}
		t.Dt = t.Fixed
	case t.last.IsZero():
		t.Dt = 0
	default:
		t.Dt = now.Sub(t.last).Seconds()
	}

	t.last = now
	t.Elapsed += t.Dt
	t.Frame++
}
