package integrators

import "github.com/san-kum/turbosim/internal/dynamo"

// RK4 integrates dx/dt = p/m, dp/dt = q(E + p/m x B) with the classic
// fourth-order Runge-Kutta scheme, holding the fields fixed over the step.
type RK4 struct {
	stepper
	k1, k2, k3, k4 [6]float64
	y, scratch     [6]float64
	e, b           [3]float64
}

func NewRK4(owner dynamo.Owner, cfg dynamo.Config) (dynamo.ComputeTool, error) {
	return &RK4{stepper: newStepper(owner, cfg)}, nil
}

func (r *RK4) derive(dy, y *[6]float64, charge, mass float64) {
	var v, vxb [3]float64
	for i := 0; i < 3; i++ {
		v[i] = y[3+i] / mass
	}
	cross(vxb[:], v[:], r.b[:])
	for i := 0; i < 3; i++ {
		dy[i] = v[i]
		dy[3+i] = charge * (r.e[i] + vxb[i])
	}
}

func (r *RK4) Push(position, momentum []float64, charge, mass float64, e, b []float64) {
	dt := r.dt
	for i := 0; i < 3; i++ {
		r.e[i], r.b[i] = fieldAt(e, i), fieldAt(b, i)
		r.y[i], r.y[3+i] = position[i], momentum[i]
	}

	r.derive(&r.k1, &r.y, charge, mass)

	for i := range r.y {
		r.scratch[i] = r.y[i] + dt*0.5*r.k1[i]
	}
	r.derive(&r.k2, &r.scratch, charge, mass)

	for i := range r.y {
		r.scratch[i] = r.y[i] + dt*0.5*r.k2[i]
	}
	r.derive(&r.k3, &r.scratch, charge, mass)

	for i := range r.y {
		r.scratch[i] = r.y[i] + dt*r.k3[i]
	}
	r.derive(&r.k4, &r.scratch, charge, mass)

	dt6 := dt / 6.0
	for i := 0; i < 3; i++ {
		position[i] = r.y[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
		momentum[i] = r.y[3+i] + dt6*(r.k1[3+i]+2*r.k2[3+i]+2*r.k3[3+i]+r.k4[3+i])
	}
}
