package physics

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/integrators"
)

const (
	ElementaryCharge = 1.6022e-19
	ElectronMass     = 9.1094e-31
)

// ChargedParticle is one particle pushed by the y component of "EMField:E".
// The field is sampled at the configured starting position.
type ChargedParticle struct {
	dynamo.Module

	Charge, Mass float64

	Position *dynamo.Array
	Momentum *dynamo.Array

	sample dynamo.Interpolator
	pusher dynamo.Pusher
	field  dynamo.Handle[*dynamo.Array]
	e      [3]float64
}

func NewChargedParticle(owner dynamo.Owner, cfg dynamo.Config) (dynamo.PhysicsModule, error) {
	g := owner.Grid()
	if g == nil {
		return nil, fmt.Errorf("ChargedParticle: %w", dynamo.ErrNoGrid)
	}
	x, err := cfg.Float("position")
	if err != nil {
		return nil, err
	}
	if !g.Contains(x) {
		return nil, fmt.Errorf("%w: ChargedParticle position %g is outside the grid", dynamo.ErrInvalidConfig, x)
	}
	pusherName, err := cfg.String("pusher")
	if err != nil {
		return nil, err
	}
	charge, err := cfg.FloatOr("charge", ElementaryCharge)
	if err != nil {
		return nil, err
	}
	mass, err := cfg.FloatOr("mass", ElectronMass)
	if err != nil {
		return nil, err
	}
	if !(mass > 0) {
		return nil, fmt.Errorf("%w: ChargedParticle mass must be positive", dynamo.ErrInvalidConfig)
	}

	pusher, err := integrators.AsPusher(owner, pusherName)
	if err != nil {
		return nil, fmt.Errorf("ChargedParticle: %w", err)
	}

	p := &ChargedParticle{
		Module:   dynamo.NewModule(owner, cfg),
		Charge:   charge,
		Mass:     mass,
		Position: dynamo.NewArray(1, 3),
		Momentum: dynamo.NewArray(1, 3),
		sample:   g.CreateInterpolator(x),
		pusher:   pusher,
	}
	p.Position.CopyFrom([]float64{x, 0, 0})
	return p, nil
}

func (p *ChargedParticle) ExchangeResources(pub dynamo.Publisher) {
	pub.Publish("ChargedParticle:position", p.Position)
	pub.Publish("ChargedParticle:momentum", p.Momentum)
}

func (p *ChargedParticle) Consumes() []string { return []string{"EMField:E"} }

func (p *ChargedParticle) InspectResource(rs *dynamo.Resources) {
	p.field, _ = dynamo.Find[*dynamo.Array](rs, "EMField:E")
}

func (p *ChargedParticle) Initialize() error {
	if !p.field.Bound() {
		return fmt.Errorf("%w: %q", dynamo.ErrUnboundResource, "EMField:E")
	}
	return nil
}

func (p *ChargedParticle) Update() error {
	e, err := p.field.Get()
	if err != nil {
		return err
	}
	p.e[1] = p.sample(e.Data())
	p.pusher.Push(p.Position.Row(0), p.Momentum.Row(0), p.Charge, p.Mass, p.e[:], nil)
	return nil
}
