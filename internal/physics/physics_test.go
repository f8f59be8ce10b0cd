package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/grid"
	"github.com/san-kum/turbosim/internal/integrators"
)

type testOwner struct {
	clock *dynamo.Clock
	grid  dynamo.Grid
	tools map[string]dynamo.ComputeTool
}

func (o *testOwner) Clock() *dynamo.Clock { return o.clock }
func (o *testOwner) Grid() dynamo.Grid    { return o.grid }

func (o *testOwner) FindTool(name string) (dynamo.ComputeTool, error) {
	if t, ok := o.tools[name]; ok {
		return t, nil
	}
	return nil, dynamo.ErrToolNotFound
}

func newOwner(t *testing.T) *testOwner {
	t.Helper()
	clock, err := dynamo.NewClock(dynamo.ClockConfig{EndTime: 1e-8, NumSteps: 100})
	require.NoError(t, err)
	g, err := grid.New(grid.Config{N: 5, RMin: 0, RMax: 1})
	require.NoError(t, err)

	o := &testOwner{clock: clock, grid: g, tools: map[string]dynamo.ComputeTool{}}
	euler, err := integrators.NewForwardEuler(o, dynamo.Config{})
	require.NoError(t, err)
	require.NoError(t, euler.Initialize())
	o.tools["ForwardEuler"] = euler
	return o
}

func TestEMWave(t *testing.T) {
	owner := newOwner(t)
	m, err := NewEMWave(owner, dynamo.Config{"amplitude": 2.0, "omega": SpeedOfLight})
	require.NoError(t, err)
	w := m.(*EMWave)
	assert.InDelta(t, 1.0, w.K, 1e-15)

	rs := dynamo.NewResources()
	w.ExchangeResources(rs.PublisherFor(0))
	h, ok := dynamo.Find[*dynamo.Array](rs, "EMField:E")
	require.True(t, ok)

	require.NoError(t, w.Initialize())
	e, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, w.E, e)
	// one wavelength across the grid, peak at r = 0.5
	assert.InDeltaSlice(t, []float64{-2, 0, 2, 0, -2}, e.Data(), 1e-12)

	owner.clock.Time = 0.25 / SpeedOfLight
	require.NoError(t, w.Update())
	assert.InDeltaSlice(t, []float64{0, -2, 0, 2, 0}, e.Data(), 1e-9)
}

func TestEMWave_Errors(t *testing.T) {
	owner := newOwner(t)

	_, err := NewEMWave(owner, dynamo.Config{"omega": 1.0})
	assert.True(t, errors.Is(err, dynamo.ErrMissingKey))

	owner.grid = nil
	_, err = NewEMWave(owner, dynamo.Config{"amplitude": 1.0, "omega": 1.0})
	assert.True(t, errors.Is(err, dynamo.ErrNoGrid))
}

func TestChargedParticle(t *testing.T) {
	owner := newOwner(t)
	m, err := NewChargedParticle(owner, dynamo.Config{
		"position": 0.5, "pusher": "ForwardEuler", "charge": 1.0, "mass": 2.0,
	})
	require.NoError(t, err)
	p := m.(*ChargedParticle)

	assert.Equal(t, 1, p.Position.Rows())
	assert.Equal(t, 3, p.Position.RowWidth())
	assert.Equal(t, []float64{0.5, 0, 0}, p.Position.Data())

	err = p.Initialize()
	assert.True(t, errors.Is(err, dynamo.ErrUnboundResource))

	field := dynamo.NewArray(5)
	field.CopyFrom([]float64{3, 3, 3, 3, 3})
	rs := dynamo.NewResources()
	rs.Publish("EMField:E", field)
	p.ExchangeResources(rs.PublisherFor(1))
	p.InspectResource(rs)
	require.NoError(t, p.Initialize())
	assert.Equal(t, []string{"EMField:E"}, p.Consumes())
	assert.True(t, rs.Has("ChargedParticle:position"))
	assert.True(t, rs.Has("ChargedParticle:momentum"))

	require.NoError(t, p.Update())
	dt := owner.clock.Dt
	assert.InDeltaSlice(t, []float64{0, 3 * dt, 0}, p.Momentum.Data(), 1e-30)
	assert.Equal(t, []float64{0.5, 0, 0}, p.Position.Data())

	require.NoError(t, p.Update())
	assert.InDelta(t, 3*dt*dt/2, p.Position.Data()[1], 1e-30)
}

func TestChargedParticle_Defaults(t *testing.T) {
	m, err := NewChargedParticle(newOwner(t), dynamo.Config{"position": 0.1, "pusher": "ForwardEuler"})
	require.NoError(t, err)
	p := m.(*ChargedParticle)

	assert.Equal(t, ElementaryCharge, p.Charge)
	assert.Equal(t, ElectronMass, p.Mass)
	assert.False(t, math.IsNaN(p.sample(make([]float64, 5))))
}

func TestChargedParticle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    dynamo.Config
		target error
	}{
		{"missing position", dynamo.Config{"pusher": "ForwardEuler"}, dynamo.ErrMissingKey},
		{"missing pusher", dynamo.Config{"position": 0.5}, dynamo.ErrMissingKey},
		{"unknown pusher", dynamo.Config{"position": 0.5, "pusher": "Leapfrog"}, dynamo.ErrToolNotFound},
		{"bad mass", dynamo.Config{"position": 0.5, "pusher": "ForwardEuler", "mass": 0.0}, dynamo.ErrInvalidConfig},
		{"position off grid", dynamo.Config{"position": 1.5, "pusher": "ForwardEuler"}, dynamo.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChargedParticle(newOwner(t), tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestRegister(t *testing.T) {
	f := dynamo.NewFamily[dynamo.PhysicsModule]("physics module")
	Register(f)
	assert.Equal(t, []string{"ChargedParticle", "EMWave"}, f.Names())
}
