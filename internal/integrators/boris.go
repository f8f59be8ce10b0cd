package integrators

import "github.com/san-kum/turbosim/internal/dynamo"

// Boris is the non-relativistic Boris pusher: half electric kick, magnetic
// rotation, half electric kick, then a drift with the new velocity.
type Boris struct {
	stepper
	v, vp, t, s [3]float64
}

func NewBoris(owner dynamo.Owner, cfg dynamo.Config) (dynamo.ComputeTool, error) {
	return &Boris{stepper: newStepper(owner, cfg)}, nil
}

func (b *Boris) Push(position, momentum []float64, charge, mass float64, e, bf []float64) {
	h := 0.5 * b.dt * charge / mass

	for i := 0; i < 3; i++ {
		b.v[i] = momentum[i]/mass + h*fieldAt(e, i)
		b.t[i] = h * fieldAt(bf, i)
	}

	t2 := b.t[0]*b.t[0] + b.t[1]*b.t[1] + b.t[2]*b.t[2]
	for i := 0; i < 3; i++ {
		b.s[i] = 2 * b.t[i] / (1 + t2)
	}

	cross(b.vp[:], b.v[:], b.t[:])
	for i := 0; i < 3; i++ {
		b.vp[i] += b.v[i]
	}
	cross(b.vp[:], b.vp[:], b.s[:])
	for i := 0; i < 3; i++ {
		b.v[i] += b.vp[i] + h*fieldAt(e, i)
		momentum[i] = mass * b.v[i]
		position[i] += b.dt * b.v[i]
	}
}
