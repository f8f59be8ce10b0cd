package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/sim"
)

const (
	historyCapacity = 600
	maxStepsPerTick = 1024
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

// trace observes the simulation and keeps the latest row of one field plus
// the history of its peak magnitude.
type trace struct {
	field dynamo.Handle[dynamo.Recordable]
	last  []float64
	peaks []float64
}

func (t *trace) OnStep(*dynamo.Clock) { t.sample() }

func (t *trace) sample() {
	v, err := t.field.Get()
	if err != nil {
		return
	}
	row := v.Row(0)
	t.last = append(t.last[:0], row...)
	t.peaks = append(t.peaks, floats.Norm(row, math.Inf(1)))
	if len(t.peaks) > historyCapacity {
		t.peaks = t.peaks[1:]
	}
}

// Model steps a simulation on every tick and renders one published field.
type Model struct {
	sim      *sim.Simulation
	trace    *trace
	title    string
	running  bool
	perTick  int
	finished bool
	showHelp bool
	err      error
}

// NewModel wraps an initialized simulation. field names the published
// resource to plot; when empty the first plottable resource is used.
func NewModel(s *sim.Simulation, field, title string) (Model, error) {
	if p := s.Phase(); p != sim.Initialized && p != sim.Running {
		return Model{}, fmt.Errorf("%w: live view needs an initialized simulation, got %s", dynamo.ErrInvalidPhase, p)
	}

	rs := s.Resources()
	if field == "" {
		for _, name := range rs.Names() {
			if _, ok := dynamo.Find[dynamo.Recordable](rs, name); ok {
				field = name
				break
			}
		}
	}
	h, ok := dynamo.Find[dynamo.Recordable](rs, field)
	if !ok {
		return Model{}, fmt.Errorf("%w: no plottable resource %q", dynamo.ErrUnboundResource, field)
	}

	t := &trace{field: h}
	t.sample()
	s.AddObserver(t)

	return Model{
		sim:     s,
		trace:   t,
		title:   title,
		running: true,
		perTick: 1,
	}, nil
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.finish()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.perTick = min(m.perTick*2, maxStepsPerTick)
		case "-", "_":
			m.perTick = max(m.perTick/2, 1)
		case "t":
			nextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.finished {
			return m, nil
		}
		if m.running {
			m.advance()
		}
		if m.finished {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to perTick steps and finalizes once the clock is done.
func (m *Model) advance() {
	for i := 0; i < m.perTick && !m.sim.Done(); i++ {
		if err := m.sim.Step(); err != nil {
			m.err = err
			m.finish()
			return
		}
	}
	if m.sim.Done() {
		m.finish()
	}
}

func (m *Model) finish() {
	if m.finished {
		return
	}
	m.finished = true
	m.running = false
	if m.sim.Phase() == sim.Finalized {
		return
	}
	m.err = errors.Join(m.err, m.sim.Finalize())
}

func (m Model) Err() error        { return m.err }
func (m Model) Finished() bool    { return m.finished }
func (m Model) StepsPerTick() int { return m.perTick }
func (m Model) Running() bool     { return m.running }

// View renders the field plot beside the run statistics.
func (m Model) View() string {
	st := themeStyles(CurrentTheme)
	clock := m.sim.Clock()

	var plot string
	if len(m.trace.last) > 1 {
		plot = st.graph.Render(asciigraph.Plot(m.trace.last,
			asciigraph.Height(12),
			asciigraph.Width(60),
			asciigraph.Caption(m.trace.field.Name()),
		))
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status(st) + "\n\n")
	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.4e", clock.Time)) + "\n")
	s.WriteString(st.label.Render("Step") + st.value.Render(fmt.Sprintf("%d / %d", clock.Step, clock.NumSteps)) + "\n")
	s.WriteString(st.label.Render("Progress") + st.value.Render(ProgressBar(clock.Progress(), 20)) + "\n")
	s.WriteString(st.label.Render("Steps/tick") + st.value.Render(fmt.Sprintf("%d", m.perTick)) + "\n")
	if n := len(m.trace.peaks); n > 0 {
		s.WriteString(st.label.Render("Peak") + st.value.Render(fmt.Sprintf("%.4g", m.trace.peaks[n-1])) + "\n")
		s.WriteString(st.label.Render("") + st.value.Render(SparklineChart(m.trace.peaks, 20)) + "\n")
	}

	s.WriteString("\nMODULES\n")
	for _, name := range m.sim.ModuleNames() {
		s.WriteString("  " + st.value.Render(name) + "\n")
	}
	if rs := m.sim.Resources(); rs != nil {
		s.WriteString("\nRESOURCES\n")
		for _, name := range rs.Names() {
			s.WriteString("  " + st.label.UnsetWidth().Render(name) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + st.failed.Render(m.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause +/-:Speed T:Theme ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, plot, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + view
	}
	return view
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.failed.Render("FAILED")
	case m.finished:
		return st.done.Render("FINISHED")
	case m.running:
		return st.running.Render("RUNNING")
	default:
		return st.paused.Render("PAUSED")
	}
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume stepping    ║
║  +        - Double steps per frame   ║
║  -        - Halve steps per frame    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Finalize and quit        ║
╚══════════════════════════════════════╝`

// Run shows the live view until the simulation finishes or the user quits.
func Run(s *sim.Simulation, field, title string) error {
	m, err := NewModel(s, field, title)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	return final.(Model).Err()
}
