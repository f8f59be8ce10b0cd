package diagnostics

import "github.com/san-kum/turbosim/internal/dynamo"

// ClockDiagnostic records the simulation time.
type ClockDiagnostic struct {
	recorder
}

func NewClockDiagnostic(owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error) {
	rec, err := newRecorder(owner, "clock", cfg, "time.csv")
	if err != nil {
		return nil, err
	}
	return &ClockDiagnostic{recorder: rec}, nil
}

func (d *ClockDiagnostic) InspectResource(*dynamo.Resources) {}

func (d *ClockDiagnostic) Initialize() error { return d.open(1) }
func (d *ClockDiagnostic) CheckStep() error  { return d.check(d.DoDiagnostic) }
func (d *ClockDiagnostic) Finalize() error   { return d.finish(d.DoDiagnostic) }

func (d *ClockDiagnostic) DoDiagnostic() error {
	return d.write([]float64{d.owner.Clock().Time})
}
