package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/grid"
)

type testOwner struct {
	clock *dynamo.Clock
	grid  dynamo.Grid
}

func (o *testOwner) Clock() *dynamo.Clock { return o.clock }
func (o *testOwner) Grid() dynamo.Grid    { return o.grid }

func (o *testOwner) FindTool(name string) (dynamo.ComputeTool, error) {
	return nil, dynamo.ErrToolNotFound
}

// newTestOwner returns an owner with a 2 point grid on [0, 1] and a clock
// running from 0 to 10 in 100 steps.
func newTestOwner(t *testing.T) *testOwner {
	t.Helper()
	return newOwnerWith(t, grid.Config{N: 2, RMin: 0, RMax: 1}, dynamo.ClockConfig{StartTime: 0, EndTime: 10, NumSteps: 100})
}

func newOwnerWith(t *testing.T, gc grid.Config, cc dynamo.ClockConfig) *testOwner {
	t.Helper()
	clock, err := dynamo.NewClock(cc)
	require.NoError(t, err)
	g, err := grid.New(gc)
	require.NoError(t, err)
	return &testOwner{clock: clock, grid: g}
}

// scalar is a single published number.
type scalar struct {
	value float64
}

func (s *scalar) Rows() int         { return 1 }
func (s *scalar) RowWidth() int     { return 1 }
func (s *scalar) Row(int) []float64 { return []float64{s.value} }

func publish(values map[string]any) *dynamo.Resources {
	rs := dynamo.NewResources()
	for name, v := range values {
		rs.Publish(name, v)
	}
	return rs
}

// runLoop drives d the way the simulation loop does, then finalizes it.
func runLoop(t *testing.T, owner *testOwner, d dynamo.Diagnostic) {
	t.Helper()
	for owner.clock.IsRunning() {
		require.NoError(t, d.CheckStep())
		owner.clock.Advance()
	}
	require.NoError(t, d.Finalize())
}
