package dynamo

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ClockConfig is the Clock section of a simulation configuration.
// NumSteps takes precedence over Dt when both are set.
type ClockConfig struct {
	StartTime float64 `yaml:"start_time"`
	EndTime   float64 `yaml:"end_time"`
	NumSteps  int     `yaml:"num_steps,omitempty"`
	Dt        float64 `yaml:"dt,omitempty"`
	PrintTime bool    `yaml:"print_time,omitempty"`
}

// Clock is the passive simulation clock. Only the owning simulation advances it.
type Clock struct {
	StartTime float64
	EndTime   float64
	Dt        float64
	NumSteps  int
	PrintTime bool

	Time float64
	Step int
}

func NewClock(cfg ClockConfig) (*Clock, error) {
	span := cfg.EndTime - cfg.StartTime
	if !(span > 0) {
		return nil, fmt.Errorf("%w: clock end_time %g must be after start_time %g", ErrInvalidConfig, cfg.EndTime, cfg.StartTime)
	}

	c := &Clock{
		StartTime: cfg.StartTime,
		EndTime:   cfg.EndTime,
		PrintTime: cfg.PrintTime,
		Time:      cfg.StartTime,
	}

	switch {
	case cfg.NumSteps > 0:
		c.NumSteps = cfg.NumSteps
		c.Dt = span / float64(cfg.NumSteps)
	case cfg.NumSteps < 0:
		return nil, fmt.Errorf("%w: clock num_steps must be positive, got %d", ErrInvalidConfig, cfg.NumSteps)
	case cfg.Dt > 0:
		c.Dt = cfg.Dt
		c.NumSteps = StepsFor(span, cfg.Dt)
		if c.NumSteps < 1 {
			return nil, fmt.Errorf("%w: clock dt %g is larger than the simulated span %g", ErrInvalidConfig, cfg.Dt, span)
		}
		if ratio := span / cfg.Dt; math.Abs(ratio-math.Round(ratio)) > 1e-9*math.Max(1, ratio) {
			logrus.Warnf("clock span %g is not a multiple of dt %g; rounding to %d steps", span, cfg.Dt, c.NumSteps)
		}
	case cfg.Dt < 0:
		return nil, fmt.Errorf("%w: clock dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	default:
		return nil, fmt.Errorf("%w: clock needs num_steps or dt", ErrMissingKey)
	}

	return c, nil
}

// StepsFor returns the number of steps of size dt covering span, rounded to
// the nearest integer with halves rounded away from zero.
func StepsFor(span, dt float64) int {
	return int(math.Round(span / dt))
}

// Advance moves the clock forward exactly one step.
func (c *Clock) Advance() {
	c.Step++
	c.Time = c.StartTime + float64(c.Step)*c.Dt
	if c.PrintTime {
		logrus.Infof("t = %0.4e", c.Time)
	}
}

// IsRunning reports whether the step about to run is within the configured span.
func (c *Clock) IsRunning() bool {
	return c.Step <= c.NumSteps
}

// Progress returns the completed fraction of the run in [0, 1].
func (c *Clock) Progress() float64 {
	return math.Min(float64(c.Step)/float64(c.NumSteps+1), 1)
}
