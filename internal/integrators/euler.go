package integrators

import "github.com/san-kum/turbosim/internal/dynamo"

// ForwardEuler advances momentum by the electric force and position by the
// momentum from the start of the step. The magnetic field is ignored.
type ForwardEuler struct {
	stepper
	p0 [3]float64
}

func NewForwardEuler(owner dynamo.Owner, cfg dynamo.Config) (dynamo.ComputeTool, error) {
	return &ForwardEuler{stepper: newStepper(owner, cfg)}, nil
}

func (f *ForwardEuler) Push(position, momentum []float64, charge, mass float64, e, _ []float64) {
	copy(f.p0[:], momentum)
	for i := range momentum {
		momentum[i] += f.dt * fieldAt(e, i) * charge
	}
	for i := range position {
		position[i] += f.dt * f.p0[i] / mass
	}
}
