package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/turbosim/internal/config"
	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/grid"
	"github.com/san-kum/turbosim/internal/storage"
)

// Factories builds components by registered type name.
type Factories interface {
	NewTool(name string, owner dynamo.Owner, cfg dynamo.Config) (dynamo.ComputeTool, error)
	NewPhysicsModule(name string, owner dynamo.Owner, cfg dynamo.Config) (dynamo.PhysicsModule, error)
	NewDiagnostic(name string, owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error)
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(clock *dynamo.Clock)
}

// Outputter is implemented by diagnostics that write files.
type Outputter interface {
	Outputs() []storage.OutputRecord
}

type component[T any] struct {
	name  string
	alias string
	value T
}

func (c component[T]) label() string {
	if c.alias != "" {
		return c.alias
	}
	return c.name
}

// Simulation owns the clock, the grid and every configured component, and
// drives them through the lifecycle. It is single-threaded; components run
// in the order they were configured.
type Simulation struct {
	clock *dynamo.Clock
	grid  *grid.Grid

	tools       []component[dynamo.ComputeTool]
	modules     []component[dynamo.PhysicsModule]
	diagnostics []component[dynamo.Diagnostic]

	resources *dynamo.Resources
	observers []Observer
	phase     Phase
	started   time.Time
	elapsed   time.Duration

	log *logrus.Entry
}

// New builds the clock, the grid, the compute tools, the physics modules and
// the diagnostics, in that order.
func New(cfg *config.Config, factories Factories) (*Simulation, error) {
	s := &Simulation{
		log: logrus.WithField("component", "sim"),
	}

	clock, err := dynamo.NewClock(cfg.Clock)
	if err != nil {
		return nil, err
	}
	s.clock = clock

	if cfg.Grid != nil {
		g, err := grid.New(*cfg.Grid)
		if err != nil {
			return nil, err
		}
		s.grid = g
	}

	for _, e := range cfg.Tools {
		tool, err := factories.NewTool(e.Name, s, e.Config)
		if err != nil {
			return nil, err
		}
		alias, err := e.Config.StringOr("custom_name", "")
		if err != nil {
			return nil, fmt.Errorf("compute tool %q: %w", e.Name, err)
		}
		s.tools = append(s.tools, component[dynamo.ComputeTool]{name: e.Name, alias: alias, value: tool})
	}

	for _, e := range cfg.PhysicsModules {
		m, err := factories.NewPhysicsModule(e.Name, s, e.Config)
		if err != nil {
			return nil, err
		}
		s.modules = append(s.modules, component[dynamo.PhysicsModule]{name: e.Name, value: m})
	}

	for _, e := range cfg.Diagnostics.Resolved() {
		d, err := factories.NewDiagnostic(e.Name, s, e.Config)
		if err != nil {
			return nil, err
		}
		s.diagnostics = append(s.diagnostics, component[dynamo.Diagnostic]{name: e.Name, value: d})
	}

	s.log.WithFields(logrus.Fields{
		"tools":       len(s.tools),
		"modules":     len(s.modules),
		"diagnostics": len(s.diagnostics),
		"num_steps":   s.clock.NumSteps,
		"dt":          s.clock.Dt,
	}).Debug("simulation constructed")
	return s, nil
}

func (s *Simulation) Clock() *dynamo.Clock { return s.clock }
func (s *Simulation) Phase() Phase         { return s.phase }

func (s *Simulation) Grid() dynamo.Grid {
	if s.grid == nil {
		return nil
	}
	return s.grid
}

// Resources returns the resource table, or nil before resources are exchanged.
func (s *Simulation) Resources() *dynamo.Resources { return s.resources }

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// FindTool returns the compute tool configured under name, matching custom
// names before type names.
func (s *Simulation) FindTool(name string) (dynamo.ComputeTool, error) {
	for _, t := range s.tools {
		if t.alias == name {
			return t.value, nil
		}
	}
	for _, t := range s.tools {
		if t.name == name {
			return t.value, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrToolNotFound, name)
}

func (s *Simulation) Tools() []dynamo.ComputeTool            { return values(s.tools) }
func (s *Simulation) PhysicsModules() []dynamo.PhysicsModule { return values(s.modules) }
func (s *Simulation) Diagnostics() []dynamo.Diagnostic       { return values(s.diagnostics) }

func (s *Simulation) ToolNames() []string       { return labels(s.tools) }
func (s *Simulation) ModuleNames() []string     { return labels(s.modules) }
func (s *Simulation) DiagnosticNames() []string { return labels(s.diagnostics) }

// Outputs lists the files the diagnostics write.
func (s *Simulation) Outputs() []storage.OutputRecord {
	var out []storage.OutputRecord
	for _, d := range s.diagnostics {
		if o, ok := d.value.(Outputter); ok {
			out = append(out, o.Outputs()...)
		}
	}
	return out
}

// Elapsed is the wall time spent between Initialize and Finalize.
func (s *Simulation) Elapsed() time.Duration { return s.elapsed }

func (s *Simulation) expect(op string, allowed ...Phase) error {
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s while %s", dynamo.ErrInvalidPhase, op, s.phase)
}

// ExchangeResources runs the publish pass over physics modules and compute
// tools, then the inspect pass over every component.
func (s *Simulation) ExchangeResources() error {
	if err := s.expect("exchange resources", Constructed); err != nil {
		return err
	}

	s.resources = dynamo.NewResources()
	owner := 0
	for _, m := range s.modules {
		m.value.ExchangeResources(s.resources.PublisherFor(owner))
		owner++
	}
	for _, t := range s.tools {
		t.value.ExchangeResources(s.resources.PublisherFor(owner))
		owner++
	}

	for _, m := range s.modules {
		m.value.InspectResource(s.resources)
	}
	for _, t := range s.tools {
		t.value.InspectResource(s.resources)
	}
	for _, d := range s.diagnostics {
		d.value.InspectResource(s.resources)
	}

	s.warnUnpublished()
	s.phase = ResourcesExchanged
	s.log.WithField("resources", s.resources.Names()).Debug("resources exchanged")
	return nil
}

func (s *Simulation) warnUnpublished() {
	check := func(label string, v any) {
		c, ok := v.(dynamo.Consumer)
		if !ok {
			return
		}
		for _, name := range c.Consumes() {
			if !s.resources.Has(name) {
				s.log.Warnf("%s consumes %q but nothing published it", label, name)
			}
		}
	}
	for _, m := range s.modules {
		check(m.label(), m.value)
	}
	for _, t := range s.tools {
		check(t.label(), t.value)
	}
	for _, d := range s.diagnostics {
		check(d.label(), d.value)
	}
}

// Initialize initializes compute tools, physics modules and diagnostics in
// configuration order. Missing required resources surface here.
func (s *Simulation) Initialize() error {
	if err := s.expect("initialize", ResourcesExchanged); err != nil {
		return err
	}

	for _, t := range s.tools {
		if err := t.value.Initialize(); err != nil {
			return fmt.Errorf("initializing compute tool %q: %w", t.label(), err)
		}
	}
	for _, m := range s.modules {
		if err := m.value.Initialize(); err != nil {
			return fmt.Errorf("initializing physics module %q: %w", m.label(), err)
		}
	}
	for _, d := range s.diagnostics {
		if err := d.value.Initialize(); err != nil {
			return fmt.Errorf("initializing diagnostic %q: %w", d.label(), err)
		}
	}

	s.phase = Initialized
	s.started = time.Now()
	s.log.Debug("simulation initialized")
	return nil
}

// Done reports whether the clock has passed its last step.
func (s *Simulation) Done() bool { return !s.clock.IsRunning() }

// Step runs one fundamental cycle: tool updates, physics resets and updates,
// diagnostic checks, then the clock advance.
func (s *Simulation) Step() error {
	if err := s.expect("step", Initialized, Running); err != nil {
		return err
	}
	if s.Done() {
		return fmt.Errorf("%w: clock finished after step %d", dynamo.ErrInvalidPhase, s.clock.NumSteps)
	}
	s.phase = Running

	for _, t := range s.tools {
		if err := t.value.Update(); err != nil {
			return s.stepError(t.label(), err)
		}
	}
	for _, m := range s.modules {
		m.value.Reset()
	}
	for _, m := range s.modules {
		if err := m.value.Update(); err != nil {
			return s.stepError(m.label(), err)
		}
	}
	for _, d := range s.diagnostics {
		if err := d.value.CheckStep(); err != nil {
			return s.stepError(d.label(), err)
		}
	}

	s.clock.Advance()
	for _, o := range s.observers {
		o.OnStep(s.clock)
	}
	return nil
}

func (s *Simulation) stepError(label string, err error) error {
	return &dynamo.StepError{Step: s.clock.Step, Time: s.clock.Time, Component: label, Wrapped: err}
}

// Finalize runs every diagnostic's final dump and flush, then closes the
// resource table. Every diagnostic is finalized even if an earlier one fails.
func (s *Simulation) Finalize() error {
	if err := s.expect("finalize", Initialized, Running); err != nil {
		return err
	}

	var errs []error
	for _, d := range s.diagnostics {
		if err := d.value.Finalize(); err != nil {
			errs = append(errs, fmt.Errorf("finalizing diagnostic %q: %w", d.label(), err))
		}
	}

	s.resources.Close()
	s.phase = Finalized
	s.elapsed = time.Since(s.started)
	s.log.WithFields(logrus.Fields{
		"steps":   s.clock.Step,
		"time":    s.clock.Time,
		"elapsed": s.elapsed,
	}).Info("simulation finalized")
	return errors.Join(errs...)
}

// Run drives the simulation from its current phase to Finalized. When a step
// fails the diagnostics are still finalized so partial output reaches disk.
func (s *Simulation) Run() error {
	if s.phase == Constructed {
		if err := s.ExchangeResources(); err != nil {
			return err
		}
	}
	if s.phase == ResourcesExchanged {
		if err := s.Initialize(); err != nil {
			return err
		}
	}
	if err := s.expect("run", Initialized, Running); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"start": s.clock.StartTime,
		"end":   s.clock.EndTime,
		"steps": s.clock.NumSteps,
	}).Info("simulation started")

	var stepErr error
	for !s.Done() {
		if stepErr = s.Step(); stepErr != nil {
			s.log.WithError(stepErr).Error("step failed")
			break
		}
	}
	return errors.Join(stepErr, s.Finalize())
}

func labels[T any](cs []component[T]) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.label()
	}
	return out
}

func values[T any](cs []component[T]) []T {
	out := make([]T, len(cs))
	for i, c := range cs {
		out[i] = c.value
	}
	return out
}
