package diagnostics

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
)

// PointDiagnostic records a grid field interpolated at a fixed location.
type PointDiagnostic struct {
	recorder

	fieldName string
	component string
	field     dynamo.Handle[dynamo.Recordable]
	at        dynamo.Interpolator
}

func NewPointDiagnostic(owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error) {
	field, err := cfg.String("field")
	if err != nil {
		return nil, fmt.Errorf("point diagnostic: %w", err)
	}
	component, err := cfg.StringOr("component", "")
	if err != nil {
		return nil, err
	}
	location, err := cfg.Float("location")
	if err != nil {
		return nil, fmt.Errorf("point diagnostic: %w", err)
	}

	g := owner.Grid()
	if g == nil {
		return nil, fmt.Errorf("point diagnostic: %w", dynamo.ErrNoGrid)
	}
	if !g.Contains(location) {
		return nil, fmt.Errorf("%w: point diagnostic location %g is outside the grid", dynamo.ErrInvalidConfig, location)
	}

	rec, err := newRecorder(owner, "point", cfg, "")
	if err != nil {
		return nil, err
	}
	return &PointDiagnostic{
		recorder:  rec,
		fieldName: field,
		component: component,
		at:        g.CreateInterpolator(location),
	}, nil
}

func (d *PointDiagnostic) Consumes() []string {
	return []string{resourceName(d.fieldName, d.component)}
}

func (d *PointDiagnostic) InspectResource(rs *dynamo.Resources) {
	d.field = findField(rs, d.fieldName, d.component)
}

func (d *PointDiagnostic) Initialize() error {
	v, err := d.field.Get()
	if err != nil {
		return fmt.Errorf("field %q: %w", resourceName(d.fieldName, d.component), err)
	}
	if n := d.owner.Grid().Len(); v.RowWidth() != n {
		return fmt.Errorf("%w: %q has %d values but the grid has %d points", dynamo.ErrInvalidConfig, d.field.Name(), v.RowWidth(), n)
	}
	return d.open(1)
}

func (d *PointDiagnostic) CheckStep() error { return d.check(d.DoDiagnostic) }

func (d *PointDiagnostic) DoDiagnostic() error {
	v, err := d.field.Get()
	if err != nil {
		return err
	}
	return d.write([]float64{d.at(v.Row(0))})
}

func (d *PointDiagnostic) Finalize() error { return d.finish(d.DoDiagnostic) }
