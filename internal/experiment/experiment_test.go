package experiment

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/turbosim/internal/config"
	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/storage"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	types := r.Types()
	assert.Equal(t, []string{"BorisPush", "ForwardEuler", "RK4Push"}, types["compute tool"])
	assert.Equal(t, []string{"ChargedParticle", "EMWave"}, types["physics module"])
	assert.Equal(t, []string{"clock", "energy", "field", "grid", "point"}, types["diagnostic"])
}

type quietWave struct {
	dynamo.Module
}

func TestRegistryOverride(t *testing.T) {
	r := NewDefaultRegistry()
	r.PhysicsModules.Register("EMWave", func(owner dynamo.Owner, cfg dynamo.Config) (dynamo.PhysicsModule, error) {
		return &quietWave{Module: dynamo.NewModule(owner, cfg)}, nil
	})

	m, err := r.NewPhysicsModule("EMWave", nil, dynamo.Config{})
	require.NoError(t, err)
	_, ok := m.(*quietWave)
	assert.True(t, ok, "the last registration replaces the built-in")
}

func TestRegistryReset(t *testing.T) {
	r := NewDefaultRegistry()
	r.Reset()

	_, err := r.NewTool("ForwardEuler", nil, nil)
	assert.True(t, errors.Is(err, dynamo.ErrNotRegistered))
	_, err = r.NewDiagnostic("field", nil, nil)
	assert.True(t, errors.Is(err, dynamo.ErrNotRegistered))

	fresh := NewRegistry()
	assert.Zero(t, fresh.PhysicsModules.Len())
}

func TestExperimentRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "em_wave")
	cfg := config.GetPreset("em_wave")
	cfg.Diagnostics.Directory = dir

	e := New(cfg, nil)
	assert.Nil(t, e.Simulation())

	m, err := e.Run()
	require.NoError(t, err)
	require.NotNil(t, e.Simulation())

	assert.Equal(t, 200, m.NumSteps)
	assert.Equal(t, 201, m.StepsTaken)
	assert.Equal(t, []string{"EMWave"}, m.Modules)
	assert.Empty(t, m.Tools)
	require.Len(t, m.Outputs, 4)

	loaded, err := storage.New(dir).LoadManifest()
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Len(t, loaded.Outputs, 4)

	grid, err := storage.ReadFile(filepath.Join(dir, "grid.csv"))
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Len(t, grid[0], 64)

	field, err := storage.ReadFile(filepath.Join(dir, "e.npy"))
	require.NoError(t, err)
	require.NotEmpty(t, field)
	for _, row := range field {
		require.Len(t, row, 64)
		for _, v := range row {
			assert.LessOrEqual(t, v, 100.0+1e-9)
			assert.GreaterOrEqual(t, v, -100.0-1e-9)
		}
	}

	energy, err := storage.ReadFile(filepath.Join(dir, "energy.csv"))
	require.NoError(t, err)
	require.NotEmpty(t, energy)
	assert.Zero(t, energy[0][1])
	for _, row := range energy {
		require.Len(t, row, 2)
		assert.Greater(t, row[0], 0.0)
	}
}

func TestExperimentManifestFollowsOutputs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "main")
	other := filepath.Join(t.TempDir(), "elsewhere")
	cfg := config.GetPreset("em_wave")
	cfg.Clock.Dt = 0
	cfg.Clock.NumSteps = 20
	cfg.Diagnostics.Directory = base
	cfg.Diagnostics.Entries = append(cfg.Diagnostics.Entries, config.Entry{
		Name:   "clock",
		Config: dynamo.Config{"filename": "t.csv", "directory": other, "dump_interval": 5e-10},
	})

	m, err := New(cfg, nil).Run()
	require.NoError(t, err)
	require.Len(t, m.Outputs, 5)

	for _, dir := range []string{base, other} {
		loaded, err := storage.New(dir).LoadManifest()
		require.NoError(t, err, dir)
		assert.Equal(t, m.ID, loaded.ID)
		assert.Len(t, loaded.Outputs, 5)
	}
	assert.FileExists(t, filepath.Join(other, "t.csv"))
}

func TestManifestDirs(t *testing.T) {
	outputs := []storage.OutputRecord{
		{Path: "out/a.csv"},
		{Path: "out/b.npy"},
		{Path: "other/c.csv"},
	}
	assert.Equal(t, []string{"out", "other"}, manifestDirs("out/", outputs))
	assert.Equal(t, []string{"base"}, manifestDirs("base", nil))
}

func TestExperimentSetupFails(t *testing.T) {
	cfg := config.GetPreset("em_wave")
	cfg.PhysicsModules = append(cfg.PhysicsModules, config.Entry{Name: "Plasma"})

	_, err := New(cfg, nil).Run()
	assert.True(t, errors.Is(err, dynamo.ErrNotRegistered))
}

func TestExperimentDefaultOutputDir(t *testing.T) {
	cfg := config.GetPreset("em_wave")
	cfg.Diagnostics.Directory = ""
	assert.Equal(t, config.DefaultDirectory, New(cfg, nil).OutputDir())
}
