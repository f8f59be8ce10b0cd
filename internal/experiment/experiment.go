package experiment

import (
	"fmt"
	"path/filepath"

	"github.com/san-kum/turbosim/internal/config"
	"github.com/san-kum/turbosim/internal/sim"
	"github.com/san-kum/turbosim/internal/storage"
)

// Experiment builds a simulation from a configuration, runs it to completion
// and records a manifest next to its outputs.
type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	simulation *sim.Simulation
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

func (e *Experiment) Setup() error {
	s, err := sim.New(e.cfg, e.registry)
	if err != nil {
		return err
	}
	e.simulation = s
	return nil
}

// Run drives the simulation to Finalized and saves the run manifest in the
// output directory and in every directory a diagnostic overrode it with.
func (e *Experiment) Run() (*storage.RunManifest, error) {
	if e.simulation == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}
	s := e.simulation

	if err := s.Run(); err != nil {
		return nil, err
	}

	clock := s.Clock()
	m := &storage.RunManifest{
		StartTime:  clock.StartTime,
		EndTime:    clock.EndTime,
		Dt:         clock.Dt,
		NumSteps:   clock.NumSteps,
		StepsTaken: clock.Step,
		Elapsed:    s.Elapsed(),
		Tools:      s.ToolNames(),
		Modules:    s.ModuleNames(),
		Outputs:    s.Outputs(),
	}
	for _, dir := range manifestDirs(e.OutputDir(), m.Outputs) {
		if _, err := storage.New(dir).SaveManifest(m); err != nil {
			return m, fmt.Errorf("saving manifest in %s: %w", dir, err)
		}
	}
	return m, nil
}

// manifestDirs lists the default output directory followed by every other
// directory an output was written to, so each holds a manifest.
func manifestDirs(base string, outputs []storage.OutputRecord) []string {
	dirs := []string{filepath.Clean(base)}
	seen := map[string]bool{filepath.Clean(base): true}
	for _, out := range outputs {
		dir := filepath.Clean(filepath.Dir(out.Path))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// OutputDir is the directory diagnostics write to by default.
func (e *Experiment) OutputDir() string {
	if e.cfg.Diagnostics.Directory != "" {
		return e.cfg.Diagnostics.Directory
	}
	return config.DefaultDirectory
}

// Simulation returns the simulation, or nil before Setup.
func (e *Experiment) Simulation() *sim.Simulation {
	return e.simulation
}
