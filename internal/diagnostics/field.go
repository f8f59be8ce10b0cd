package diagnostics

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
)

// FieldDiagnostic records one row of a published field at every dump.
// It binds "<field>:<component>" when that name is published, else "<field>".
type FieldDiagnostic struct {
	recorder

	fieldName string
	component string
	row       int
	field     dynamo.Handle[dynamo.Recordable]
}

func NewFieldDiagnostic(owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error) {
	field, err := cfg.String("field")
	if err != nil {
		return nil, fmt.Errorf("field diagnostic: %w", err)
	}
	component, err := cfg.StringOr("component", "")
	if err != nil {
		return nil, err
	}
	row, err := cfg.IntOr("row", 0)
	if err != nil {
		return nil, err
	}
	if row < 0 {
		return nil, fmt.Errorf("%w: field diagnostic row must not be negative", dynamo.ErrInvalidConfig)
	}

	rec, err := newRecorder(owner, "field", cfg, "")
	if err != nil {
		return nil, err
	}
	return &FieldDiagnostic{recorder: rec, fieldName: field, component: component, row: row}, nil
}

func (d *FieldDiagnostic) FieldName() string { return d.fieldName }
func (d *FieldDiagnostic) Component() string { return d.component }

// Bound reports whether inspection found the field.
func (d *FieldDiagnostic) Bound() bool { return d.field.Bound() }

// Field returns the bound value, or nil.
func (d *FieldDiagnostic) Field() dynamo.Recordable {
	v, err := d.field.Get()
	if err != nil {
		return nil
	}
	return v
}

func (d *FieldDiagnostic) Consumes() []string {
	if d.field.Bound() {
		return []string{d.field.Name()}
	}
	return []string{resourceName(d.fieldName, d.component)}
}

func (d *FieldDiagnostic) InspectResource(rs *dynamo.Resources) {
	d.field = findField(rs, d.fieldName, d.component)
}

func (d *FieldDiagnostic) Initialize() error {
	v, err := d.field.Get()
	if err != nil {
		return fmt.Errorf("field %q: %w", resourceName(d.fieldName, d.component), err)
	}
	if d.row >= v.Rows() {
		return fmt.Errorf("%w: row %d of %q which has %d rows", dynamo.ErrInvalidConfig, d.row, d.field.Name(), v.Rows())
	}
	return d.open(v.RowWidth())
}

func (d *FieldDiagnostic) CheckStep() error { return d.check(d.DoDiagnostic) }

// DoDiagnostic appends the current field row to the output.
func (d *FieldDiagnostic) DoDiagnostic() error {
	v, err := d.field.Get()
	if err != nil {
		return err
	}
	return d.write(v.Row(d.row))
}

func (d *FieldDiagnostic) Finalize() error { return d.finish(d.DoDiagnostic) }

func resourceName(field, component string) string {
	if component == "" {
		return field
	}
	return field + ":" + component
}

func findField(rs *dynamo.Resources, field, component string) dynamo.Handle[dynamo.Recordable] {
	if component != "" {
		if h, ok := dynamo.Find[dynamo.Recordable](rs, resourceName(field, component)); ok {
			return h
		}
	}
	h, _ := dynamo.Find[dynamo.Recordable](rs, field)
	return h
}
