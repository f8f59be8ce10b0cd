package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/turbosim/internal/dynamo"
)

const SpeedOfLight = 2.998e8

// EMWave fills E(r, t) = E0 cos(2 pi (k (r - 0.5) - omega t)) with k = omega / c.
type EMWave struct {
	dynamo.Module

	Amplitude, Omega, K float64

	r []float64
	E *dynamo.Array
}

func NewEMWave(owner dynamo.Owner, cfg dynamo.Config) (dynamo.PhysicsModule, error) {
	g := owner.Grid()
	if g == nil {
		return nil, fmt.Errorf("EMWave: %w", dynamo.ErrNoGrid)
	}
	amplitude, err := cfg.Float("amplitude")
	if err != nil {
		return nil, err
	}
	omega, err := cfg.Float("omega")
	if err != nil {
		return nil, err
	}

	return &EMWave{
		Module:    dynamo.NewModule(owner, cfg),
		Amplitude: amplitude,
		Omega:     omega,
		K:         omega / SpeedOfLight,
		r:         g.Coordinates(),
		E:         g.GenerateField(),
	}, nil
}

func (w *EMWave) ExchangeResources(pub dynamo.Publisher) {
	pub.Publish("EMField:E", w.E)
}

func (w *EMWave) Initialize() error {
	w.fill(0)
	return nil
}

func (w *EMWave) Update() error {
	w.fill(w.Owner().Clock().Time)
	return nil
}

func (w *EMWave) fill(t float64) {
	e := w.E.Data()
	for i, r := range w.r {
		e[i] = w.Amplitude * math.Cos(2*math.Pi*(w.K*(r-0.5)-w.Omega*t))
	}
}
