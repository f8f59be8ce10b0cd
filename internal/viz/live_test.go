package viz

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/turbosim/internal/config"
	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/experiment"
	"github.com/san-kum/turbosim/internal/sim"
)

func newLiveSim(t *testing.T, steps int) *sim.Simulation {
	t.Helper()
	cfg := config.GetPreset("em_wave")
	cfg.Clock.Dt = 0
	cfg.Clock.NumSteps = steps
	cfg.Diagnostics.Directory = filepath.Join(t.TempDir(), "live")

	s, err := sim.New(cfg, experiment.NewDefaultRegistry())
	require.NoError(t, err)
	require.NoError(t, s.ExchangeResources())
	require.NoError(t, s.Initialize())
	return s
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestNewModel_PicksFirstField(t *testing.T) {
	s := newLiveSim(t, 10)
	m, err := NewModel(s, "", "em wave")
	require.NoError(t, err)
	assert.Equal(t, "EMField:E", m.trace.field.Name())
	assert.Len(t, m.trace.last, 64)
	assert.Len(t, m.trace.peaks, 1)
}

func TestNewModel_Errors(t *testing.T) {
	cfg := config.GetPreset("em_wave")
	cfg.Diagnostics.Directory = t.TempDir()
	s, err := sim.New(cfg, experiment.NewDefaultRegistry())
	require.NoError(t, err)

	_, err = NewModel(s, "", "")
	assert.ErrorIs(t, err, dynamo.ErrInvalidPhase)

	s = newLiveSim(t, 10)
	_, err = NewModel(s, "Nothing", "")
	assert.ErrorIs(t, err, dynamo.ErrUnboundResource)
}

func TestModel_TickSteps(t *testing.T) {
	s := newLiveSim(t, 10)
	m, err := NewModel(s, "EMField:E", "em wave")
	require.NoError(t, err)

	m, cmd := update(t, m, TickMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, s.Clock().Step)
	assert.Len(t, m.trace.peaks, 2)

	m, _ = update(t, m, key("+"))
	m, _ = update(t, m, key("+"))
	assert.Equal(t, 4, m.StepsPerTick())
	m, _ = update(t, m, TickMsg{})
	assert.Equal(t, 5, s.Clock().Step)

	m, _ = update(t, m, key(" "))
	assert.False(t, m.Running())
	m, _ = update(t, m, TickMsg{})
	assert.Equal(t, 5, s.Clock().Step)

	m, _ = update(t, m, key("-"))
	assert.Equal(t, 2, m.StepsPerTick())
	assert.Contains(t, m.View(), "PAUSED")
}

func TestModel_FinalizesWhenClockEnds(t *testing.T) {
	s := newLiveSim(t, 3)
	m, err := NewModel(s, "", "em wave")
	require.NoError(t, err)

	m, _ = update(t, m, key("="))
	m, _ = update(t, m, key("="))
	m, cmd := update(t, m, TickMsg{})

	assert.Nil(t, cmd)
	assert.True(t, m.Finished())
	assert.NoError(t, m.Err())
	assert.Equal(t, sim.Finalized, s.Phase())
	assert.Equal(t, 4, s.Clock().Step)
	assert.Contains(t, m.View(), "FINISHED")
}

func TestModel_QuitFinalizes(t *testing.T) {
	s := newLiveSim(t, 100)
	m, err := NewModel(s, "", "em wave")
	require.NoError(t, err)

	m, _ = update(t, m, TickMsg{})
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, m.Finished())
	assert.Equal(t, sim.Finalized, s.Phase())

	_, cmd = update(t, m, TickMsg{})
	assert.Nil(t, cmd)
}

func TestModel_ThemeAndHelp(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)
	s := newLiveSim(t, 10)
	m, err := NewModel(s, "", "em wave")
	require.NoError(t, err)

	m, _ = update(t, m, key("t"))
	assert.Equal(t, "retro", CurrentTheme.Name)
	m, _ = update(t, m, key("?"))
	assert.Contains(t, m.View(), "KEYBOARD SHORTCUTS")
}

func TestSparklineChart(t *testing.T) {
	assert.Equal(t, "───", SparklineChart(nil, 3))
	assert.Equal(t, "▁█", SparklineChart([]float64{0, 1}, 2))
	assert.Equal(t, "▁▁", SparklineChart([]float64{2, 2}, 2))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "██░░", ProgressBar(0.5, 4))
	assert.Equal(t, "████", ProgressBar(2, 4))
	assert.Equal(t, "░░░░", ProgressBar(-1, 4))
}
