package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hps-sequence/h2f"
	"hps-sequence/sequencer"
	"hps-sequence/theme"
	"hps-sequence/widgets"
)

// FrameRate of the display refresh.
const FrameRate = 30

// ButtonTap is how long a key press holds a simulated button down.
const ButtonTap = 200 * time.Millisecond

// liveKeys maps the home row to the 12 live keys, piano style.
const liveKeys = "awsedftgyhuj"

// Button indices, KEY[3:0].
const (
	buttonOctaveUp = iota
	buttonScrollForward
	buttonScrollBack
	buttonOctaveDown
)

// Model is the front panel of the simulated board. It only talks to the
// Sim; the sequencer runs on its own goroutine against the same registers.
type Model struct {
	Sim    *h2f.Sim
	Theme  *theme.Theme
	Rows   int
	Cancel context.CancelFunc

	snap     h2f.Snapshot
	showHelp bool
	quitting bool
}

type frameMsg time.Time

func NewModel(sim *h2f.Sim, th *theme.Theme, rows int, cancel context.CancelFunc) Model {
	return Model{
		Sim:    sim,
		Theme:  th,
		Rows:   rows,
		Cancel: cancel,
		snap:   sim.Snapshot(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/FrameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if i := strings.Index(liveKeys, key); i >= 0 && len(key) == 1 {
			m.Sim.ToggleKey(i)
			break
		}
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			if m.Cancel != nil {
				m.Cancel()
			}
			return m, tea.Quit

		case " ":
			m.Sim.TogglePlay()

		case "r":
			m.Sim.ToggleRecord()

		case "esc":
			m.Sim.SetKeys(0)

		case "z":
			m.Sim.PressButton(buttonOctaveDown, ButtonTap)
		case "x":
			m.Sim.PressButton(buttonOctaveUp, ButtonTap)
		case ",":
			m.Sim.PressButton(buttonScrollBack, ButtonTap)
		case ".":
			m.Sim.PressButton(buttonScrollForward, ButtonTap)

		// chords change the instrument
		case "c":
			m.Sim.PressButton(buttonOctaveDown, ButtonTap)
			m.Sim.PressButton(buttonScrollBack, ButtonTap)
		case "v":
			m.Sim.PressButton(buttonScrollForward, ButtonTap)
			m.Sim.PressButton(buttonOctaveUp, ButtonTap)

		case "?":
			m.showHelp = !m.showHelp
		}

	case frameMsg:
		m.snap = m.Sim.Snapshot()
		return m, tick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render("hps-sequence  " + m.status()))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderRoll(&m.snap, m.Rows, m.Theme))
	out.WriteString("\n")
	out.WriteString(widgets.RenderKeys(m.snap.Lamps, m.Theme))
	out.WriteString("\n")
	out.WriteString(widgets.RenderOctaves(m.snap.Octave, m.Theme))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(m.liveKeyLine()))
	out.WriteString("\n")

	if m.showHelp {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(helpSections)))
	} else {
		out.WriteString(dimStyle.Render("space:play  r:rec  awsedftgyhuj:keys  z/x:octave  c/v:inst  ,/.:scroll  ?:help  q:quit"))
	}
	return out.String()
}

func (m Model) status() string {
	transport := "STOP"
	switch {
	case m.snap.Play && m.snap.Record:
		transport = "REC "
	case m.snap.Play:
		transport = "PLAY"
	case m.snap.Record:
		transport = "ARM "
	}
	octave := fmt.Sprintf("oct:%d", m.snap.Octave)
	if m.snap.Octave == sequencer.DrumOctave {
		octave = "oct:DRUM"
	}
	return fmt.Sprintf("%s  %-8s inst:%d  grid:%02d sub:%02d  writes:%d",
		transport, octave, m.snap.Inst, m.snap.Grid, m.snap.Subtile, m.snap.Writes)
}

func (m Model) liveKeyLine() string {
	var b strings.Builder
	b.WriteString("keys ")
	for i := range len(liveKeys) {
		if m.snap.Keys&(1<<i) != 0 {
			b.WriteByte(liveKeys[i] - 'a' + 'A')
		} else {
			b.WriteByte(liveKeys[i])
		}
	}
	return b.String()
}

var helpSections = []widgets.KeySection{
	{
		Title: "transport",
		Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "play switch"},
			{Key: "r", Desc: "record switch"},
		},
	},
	{
		Title: "keys",
		Keys: []widgets.KeyBinding{
			{Key: "awsedftgyhuj", Desc: "toggle live keys C..B"},
			{Key: "esc", Desc: "release all keys"},
		},
	},
	{
		Title: "buttons",
		Keys: []widgets.KeyBinding{
			{Key: "z / x", Desc: "octave down / up"},
			{Key: "c / v", Desc: "instrument down / up"},
			{Key: ", / .", Desc: "scroll back / forward (stopped)"},
		},
	},
}
