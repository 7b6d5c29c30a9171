package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gekko3d/impulse"
	"github.com/gekko3d/impulse/physics/scenarios"
)

func main() {
	configPath := flag.String("config", impulse.DefaultConfigPath, "JSON run config; missing files fall back to defaults")
	scenario := flag.String("scenario", "", "scenario to run (name or slug)")
	steps := flag.Int("steps", 0, "number of steps to simulate")
	dt := flag.Float64("dt", 0, "fixed time step in seconds")
	iterations := flag.Int("iterations", 0, "solver iterations, overriding the scenario")
	serve := flag.String("serve", "", "stream frames over websocket on this address, e.g. :8080")
	realtime := flag.Bool("realtime", false, "pace fixed steps to wall clock time")
	debug := flag.Bool("debug", false, "enable debug logging")
	list := flag.Bool("list", false, "list scenarios and exit")
	save := flag.String("save", "", "write the final state to this JSON file")
	load := flag.String("load", "", "run a state saved with -save")
	flag.Parse()

	cfg, err := impulse.LoadSimConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scenario":
			cfg.Scenario = *scenario
		case "steps":
			cfg.Steps = *steps
		case "dt":
			cfg.Dt = *dt
		case "iterations":
			cfg.Iterations = *iterations
		case "serve":
			cfg.Serve = *serve
		case "realtime":
			cfg.Realtime = *realtime
		case "debug":
			cfg.Debug = *debug
		}
	})

	registry := scenarios.DefaultRegistry()
	if *list {
		for _, name := range registry.Names() {
			fmt.Printf("%-16s %s\n", scenarios.Slug(name), name)
		}
		return
	}

	logger := impulse.NewDefaultLogger("impulse", cfg.Debug)

	if *load != "" {
		data, err := impulse.LoadState(*load)
		if err != nil {
			logger.Errorf("loading state: %v", err)
			os.Exit(1)
		}
		label := strings.TrimSuffix(filepath.Base(*load), filepath.Ext(*load))
		replay, err := impulse.NewStateScenario(label, data, registry)
		if err != nil {
			logger.Errorf("loading state: %v", err)
			os.Exit(1)
		}
		registry.Register(replay)
		cfg.Scenario = label
	}

	if err := cfg.Validate(); err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(2)
	}
	if _, err := registry.Lookup(cfg.Scenario); err != nil {
		logger.Errorf("%v (try -list)", err)
		os.Exit(2)
	}

	builder := impulse.NewAppBuilder()
	if cfg.Serve != "" {
		// Clients watch in real time and may pause.
		cfg.Realtime = true
		builder.UseStates(impulse.StateRunning, impulse.StateStopped)
	}
	app := builder.UseModule(cfg.Modules(logger, registry)...).Build()

	if cfg.Serve != "" {
		runServed(app, logger)
	} else {
		app.RunFrames(cfg.Steps)
	}

	world, _ := impulse.Resource[impulse.PhysicsWorld](app)
	summarize(logger, world)

	if *save != "" {
		if err := impulse.SaveState(world, *save); err != nil {
			logger.Errorf("saving state: %v", err)
			os.Exit(1)
		}
		logger.Infof("state written to %s", *save)
	}
}

// runServed ticks until a client stops the app or the process is interrupted.
func runServed(app *impulse.App, logger impulse.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if hub, ok := impulse.Resource[impulse.StreamHub](app); ok {
		defer hub.Close()
	}

	for !app.Tick() {
		if ctx.Err() != nil {
			logger.Infof("interrupted")
			return
		}
	}
}

func summarize(logger impulse.Logger, world *impulse.PhysicsWorld) {
	if world == nil || world.Engine == nil {
		logger.Warnf("no scenario was loaded")
		return
	}
	e := world.Engine
	logger.Infof("%s: %d steps, %.3fs simulated, kinetic energy %.4f", world.ScenarioName(), world.Steps, world.Time, e.KineticEnergy())
	logger.Infof("last step: %d contacts (%d resting, %d dropped), %d constraints solved, %d skipped",
		e.Stats.Contacts, e.Stats.Resting, e.Stats.Dropped, e.Stats.Constraints, e.Stats.Skipped)

	for i, b := range e.Bodies {
		if b.IsStatic() {
			continue
		}
		logger.Debugf("body %d: pos (%.3f, %.3f) vel (%.3f, %.3f) angle %.3f omega %.3f",
			i, b.Pos.X(), b.Pos.Y(), b.Vel.X(), b.Vel.Y(), b.Angle, b.Omega)
	}
}
