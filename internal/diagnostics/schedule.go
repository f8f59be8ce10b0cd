package diagnostics

import (
	"fmt"

	"github.com/san-kum/turbosim/internal/dynamo"
)

// Schedule fires when simulation time has advanced at least Interval past the
// last dump. It is driven by time, not step count.
type Schedule struct {
	Interval float64
	LastDump float64
}

// Start arms the schedule at time t. Nothing fires at t itself.
func (s *Schedule) Start(interval, t float64) {
	s.Interval = interval
	s.LastDump = t
}

func (s *Schedule) Due(t float64) bool {
	return t >= s.LastDump+s.Interval
}

// Check marks t as the last dump and reports true when a dump is due.
func (s *Schedule) Check(t float64) bool {
	if !s.Due(t) {
		return false
	}
	s.LastDump = t
	return true
}

func parseInterval(cfg dynamo.Config) (float64, error) {
	interval, err := cfg.Float("dump_interval")
	if err != nil {
		return 0, err
	}
	if !(interval > 0) {
		return 0, fmt.Errorf("%w: dump_interval must be positive, got %g", dynamo.ErrInvalidConfig, interval)
	}
	return interval, nil
}
