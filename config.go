package impulse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/scenarios"
)

// DefaultConfigPath is where the CLI looks for a config when none is given.
const DefaultConfigPath = "config/impulse.json"

// SimConfig holds run settings. Command line flags override it.
type SimConfig struct {
	Scenario   string  `json:"scenario"`
	Dt         float64 `json:"dt"`
	Steps      int     `json:"steps"`
	Iterations int     `json:"iterations,omitempty"`
	// Gravity overrides the scenario gravity when set.
	Gravity      *mgl64.Vec2 `json:"gravity,omitempty"`
	Serve        string      `json:"serve,omitempty"`
	Realtime     bool        `json:"realtime,omitempty"`
	HistoryLimit int         `json:"history_limit,omitempty"`
	Debug        bool        `json:"debug,omitempty"`
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		Scenario:     "Collision",
		Dt:           1.0 / 60,
		Steps:        600,
		HistoryLimit: 3600,
	}
}

// LoadSimConfig reads path over the defaults. A missing file yields the defaults.
func LoadSimConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultSimConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func SaveSimConfig(path string, cfg SimConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c SimConfig) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.Steps)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	return nil
}

// Modules returns the host modules for this config, in install order. A nil logger or
// registry falls back to the defaults.
func (c SimConfig) Modules(logger *DefaultLogger, registry *scenarios.Registry) []Module {
	modules := []Module{
		LoggingModule{Prefix: "impulse", Debug: c.Debug, Logger: logger},
		TimeModule{FixedDt: c.Dt, Paced: c.Realtime},
		PhysicsModule{Iterations: c.Iterations, Gravity: c.Gravity},
		ScenarioModule{Registry: registry, Initial: c.Scenario},
		HistoryModule{Limit: c.HistoryLimit},
	}
	if c.Serve != "" {
		modules = append(modules, StreamModule{Addr: c.Serve})
	}
	return modules
}
