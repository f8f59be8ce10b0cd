package config

import (
	"sort"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/grid"
)

var Presets = map[string]*Config{
	"particle_in_field": {
		Grid:  &grid.Config{N: 101, RMin: 0, RMax: 1},
		Clock: dynamo.ClockConfig{StartTime: 0, EndTime: 1e-8, NumSteps: 1000},
		Tools: Section{
			{Name: "ForwardEuler", Config: dynamo.Config{}},
		},
		PhysicsModules: Section{
			{Name: "EMWave", Config: dynamo.Config{"amplitude": 1.0, "omega": 2e8}},
			{Name: "ChargedParticle", Config: dynamo.Config{"position": 0.5, "pusher": "ForwardEuler"}},
		},
		Diagnostics: Diagnostics{
			Directory: "output/particle_in_field",
			Entries: Section{
				{Name: "clock", Config: dynamo.Config{"filename": "time.csv", "dump_interval": 1e-10}},
				{Name: "field", Config: dynamo.Config{
					"field": "ChargedParticle", "component": "position",
					"output_type": "csv", "filename": "position.csv", "dump_interval": 1e-10,
				}},
				{Name: "field", Config: dynamo.Config{
					"field": "ChargedParticle", "component": "momentum",
					"output_type": "csv", "filename": "momentum.csv", "dump_interval": 1e-10,
				}},
				{Name: "point", Config: dynamo.Config{
					"field": "EMField", "component": "E", "location": 0.5,
					"output_type": "csv", "filename": "e_at_center.csv", "dump_interval": 1e-10,
				}},
			},
		},
	},
	"em_wave": {
		Grid:  &grid.Config{N: 64, RMin: 0, RMax: 1},
		Clock: dynamo.ClockConfig{StartTime: 0, EndTime: 1e-8, Dt: 5e-11},
		PhysicsModules: Section{
			{Name: "EMWave", Config: dynamo.Config{"amplitude": 100.0, "omega": 2.998e8}},
		},
		Diagnostics: Diagnostics{
			Directory: "output/em_wave",
			Entries: Section{
				{Name: "grid", Config: dynamo.Config{"filename": "grid.csv"}},
				{Name: "clock", Config: dynamo.Config{"filename": "time.csv", "dump_interval": 5e-10}},
				{Name: "field", Config: dynamo.Config{
					"field": "EMField", "component": "E",
					"output_type": "npy", "filename": "e.npy", "dump_interval": 5e-10,
				}},
				{Name: "energy", Config: dynamo.Config{
					"field": "EMField", "component": "E",
					"output_type": "csv", "filename": "energy.csv", "dump_interval": 5e-10,
				}},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
