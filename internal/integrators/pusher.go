// Package integrators provides particle pushers as compute tools. A physics
// module finds its pusher by name through the simulation and calls Push once
// per step.
package integrators

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
)

// stepper is the shared base of every pusher: it reads the step size from
// the clock at initialize.
type stepper struct {
	dynamo.Module
	dt float64
}

func newStepper(owner dynamo.Owner, cfg dynamo.Config) stepper {
	return stepper{Module: dynamo.NewModule(owner, cfg)}
}

func (s *stepper) Initialize() error {
	s.dt = s.Owner().Clock().Dt
	if !(s.dt > 0) {
		return fmt.Errorf("%w: pusher needs a positive time step, got %g", dynamo.ErrInvalidConfig, s.dt)
	}
	return nil
}

// Dt is the step size, zero before initialize.
func (s *stepper) Dt() float64 { return s.dt }

func fieldAt(f []float64, i int) float64 {
	if i < len(f) {
		return f[i]
	}
	return 0
}

func cross(dst, a, b []float64) {
	x := a[1]*b[2] - a[2]*b[1]
	y := a[2]*b[0] - a[0]*b[2]
	z := a[0]*b[1] - a[1]*b[0]
	dst[0], dst[1], dst[2] = x, y, z
}

// Register adds the built-in pushers to f.
func Register(f *dynamo.Family[dynamo.ComputeTool]) {
	f.Register("ForwardEuler", NewForwardEuler)
	f.Register("BorisPush", NewBoris)
	f.Register("RK4Push", NewRK4)
}

// AsPusher finds the named compute tool and checks that it pushes particles.
func AsPusher(owner dynamo.Owner, name string) (dynamo.Pusher, error) {
	tool, err := owner.FindTool(name)
	if err != nil {
		return nil, err
	}
	p, ok := tool.(dynamo.Pusher)
	if !ok {
		return nil, fmt.Errorf("%w: compute tool %q is not a pusher", dynamo.ErrInvalidConfig, name)
	}
	return p, nil
}
