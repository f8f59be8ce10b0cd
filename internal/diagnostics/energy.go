package diagnostics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/turbosim/internal/dynamo"
)

// EnergyDiagnostic records scale * 1/2 * integral(v^2 dr) of a grid field
// together with its relative drift from the first recorded value.
type EnergyDiagnostic struct {
	recorder

	fieldName string
	component string
	scale     float64
	field     dynamo.Handle[dynamo.Recordable]

	squared []float64
	initial float64
	samples int
}

func NewEnergyDiagnostic(owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error) {
	field, err := cfg.String("field")
	if err != nil {
		return nil, fmt.Errorf("energy diagnostic: %w", err)
	}
	component, err := cfg.StringOr("component", "")
	if err != nil {
		return nil, err
	}
	scale, err := cfg.FloatOr("scale", 1)
	if err != nil {
		return nil, err
	}
	if owner.Grid() == nil {
		return nil, fmt.Errorf("energy diagnostic: %w", dynamo.ErrNoGrid)
	}

	rec, err := newRecorder(owner, "energy", cfg, "")
	if err != nil {
		return nil, err
	}
	return &EnergyDiagnostic{recorder: rec, fieldName: field, component: component, scale: scale}, nil
}

func (d *EnergyDiagnostic) Consumes() []string {
	return []string{resourceName(d.fieldName, d.component)}
}

func (d *EnergyDiagnostic) InspectResource(rs *dynamo.Resources) {
	d.field = findField(rs, d.fieldName, d.component)
}

func (d *EnergyDiagnostic) Initialize() error {
	v, err := d.field.Get()
	if err != nil {
		return fmt.Errorf("field %q: %w", resourceName(d.fieldName, d.component), err)
	}
	n := d.owner.Grid().Len()
	if v.RowWidth() != n {
		return fmt.Errorf("%w: %q has %d values but the grid has %d points", dynamo.ErrInvalidConfig, d.field.Name(), v.RowWidth(), n)
	}
	d.squared = make([]float64, n)
	d.samples = 0
	return d.open(2)
}

func (d *EnergyDiagnostic) CheckStep() error { return d.check(d.DoDiagnostic) }

func (d *EnergyDiagnostic) DoDiagnostic() error {
	v, err := d.field.Get()
	if err != nil {
		return err
	}
	energy := d.Energy(v.Row(0))

	if d.samples == 0 {
		d.initial = energy
	}
	d.samples++

	drift := 0.0
	if d.initial != 0 {
		drift = math.Abs(energy-d.initial) / math.Abs(d.initial)
	}
	return d.write([]float64{energy, drift})
}

// Energy integrates the field over the grid with the trapezoidal rule.
func (d *EnergyDiagnostic) Energy(values []float64) float64 {
	if len(d.squared) != len(values) {
		d.squared = make([]float64, len(values))
	}
	floats.MulTo(d.squared, values, values)
	return 0.5 * d.scale * integrate.Trapezoidal(d.owner.Grid().Coordinates(), d.squared)
}

func (d *EnergyDiagnostic) Finalize() error { return d.finish(d.DoDiagnostic) }
