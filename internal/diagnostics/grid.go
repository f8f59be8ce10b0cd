package diagnostics

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/storage"
)

// GridDiagnostic writes the grid coordinates as a single row.
type GridDiagnostic struct {
	owner  dynamo.Owner
	out    output
	buffer *storage.OutputBuffer
}

func NewGridDiagnostic(owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error) {
	if owner.Grid() == nil {
		return nil, fmt.Errorf("grid diagnostic: %w", dynamo.ErrNoGrid)
	}
	out, err := parseOutput("grid", cfg, "grid.csv")
	if err != nil {
		return nil, err
	}
	if out.format == OutputStdout {
		return nil, fmt.Errorf("%w: grid diagnostic needs a file output", dynamo.ErrInvalidConfig)
	}
	return &GridDiagnostic{owner: owner, out: out}, nil
}

func (d *GridDiagnostic) InspectResource(*dynamo.Resources) {}
func (d *GridDiagnostic) CheckStep() error                  { return nil }

func (d *GridDiagnostic) Initialize() error {
	r := d.owner.Grid().Coordinates()
	_, buf, err := d.out.open(1, len(r))
	if err != nil {
		return err
	}
	d.buffer = buf
	return d.DoDiagnostic()
}

func (d *GridDiagnostic) DoDiagnostic() error {
	if d.buffer == nil {
		return fmt.Errorf("%w: grid diagnostic written before initialize", dynamo.ErrInvalidPhase)
	}
	if d.buffer.Index() > 0 {
		return nil
	}
	return d.buffer.WriteRow(d.owner.Grid().Coordinates())
}

func (d *GridDiagnostic) Finalize() error {
	if d.buffer == nil {
		return nil
	}
	return d.buffer.Flush()
}

func (d *GridDiagnostic) Outputs() []storage.OutputRecord { return d.out.records(d.buffer) }
