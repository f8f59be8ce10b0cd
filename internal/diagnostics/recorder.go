package diagnostics

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/storage"
)

// recorder carries the schedule and sink shared by the interval driven
// diagnostics. The embedding type supplies the row to write.
type recorder struct {
	owner    dynamo.Owner
	out      output
	interval float64
	schedule Schedule
	rows     int
	width    int
	sink     sink
	buffer   *storage.OutputBuffer
	ready    bool
}

func newRecorder(owner dynamo.Owner, kind string, cfg dynamo.Config, defaultFilename string) (recorder, error) {
	out, err := parseOutput(kind, cfg, defaultFilename)
	if err != nil {
		return recorder{}, err
	}
	interval, err := parseInterval(cfg)
	if err != nil {
		return recorder{}, fmt.Errorf("%s diagnostic: %w", kind, err)
	}
	return recorder{owner: owner, out: out, interval: interval}, nil
}

// open sizes the output for the remaining run and arms the schedule at the
// current clock time.
func (r *recorder) open(width int) error {
	clock := r.owner.Clock()
	s, buf, err := r.out.open(clock.NumSteps+1, width)
	if err != nil {
		return err
	}
	r.sink, r.buffer = s, buf
	r.rows, r.width = clock.NumSteps+1, width
	r.schedule.Start(r.interval, clock.Time)
	r.ready = true
	return nil
}

func (r *recorder) check(dump func() error) error {
	if !r.ready {
		return fmt.Errorf("%w: %s diagnostic checked before initialize", dynamo.ErrInvalidPhase, r.out.kind)
	}
	if !r.schedule.Check(r.owner.Clock().Time) {
		return nil
	}
	return dump()
}

func (r *recorder) write(row []float64) error {
	if r.sink == nil {
		return fmt.Errorf("%w: %s diagnostic written before initialize", dynamo.ErrInvalidPhase, r.out.kind)
	}
	return r.sink.WriteRow(row)
}

func (r *recorder) finish(dump func() error) error {
	if !r.ready {
		return nil
	}
	if err := dump(); err != nil {
		return err
	}
	return r.sink.Flush()
}

// DumpInterval is zero until the diagnostic is initialized.
func (r *recorder) DumpInterval() float64 {
	if !r.ready {
		return 0
	}
	return r.schedule.Interval
}

func (r *recorder) LastDump() float64 { return r.schedule.LastDump }

// DiagnosticSize is the (rows, width) of the output, zero until initialized.
func (r *recorder) DiagnosticSize() (int, int) { return r.rows, r.width }

func (r *recorder) OutputType() string { return r.out.format }
func (r *recorder) Path() string       { return r.out.Path() }

// Buffer is the output buffer, or nil before initialize and for stdout output.
func (r *recorder) Buffer() *storage.OutputBuffer { return r.buffer }

func (r *recorder) Outputs() []storage.OutputRecord { return r.out.records(r.buffer) }
