// Package tui provides a terminal jukebox.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user-none/pisplay/jukebox"
	"github.com/user-none/pisplay/pis"
	"github.com/user-none/pisplay/player"
)

var (
	amber    = lipgloss.Color("#FFB000")
	cyan     = lipgloss.Color("#00D7FF")
	dimGray  = lipgloss.Color("#666666")
	darkGray = lipgloss.Color("#303030")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	tuneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C0C0C0")).
			PaddingLeft(2)

	highlightStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true).
			PaddingLeft(2)

	playingStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	voiceStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(1, 2)
)

// frameInterval matches the 50Hz jukebox frame rate.
const frameInterval = time.Second / jukebox.FrameRate

// Controls is the playback surface used by the TUI.
type Controls interface {
	Status() player.Status
	TogglePause() bool
	Stop()
}

// frameMsg advances the jukebox by one frame.
type frameMsg time.Time

// Model is the bubbletea model of the jukebox.
type Model struct {
	jukebox  *jukebox.Jukebox
	controls Controls

	state  jukebox.State
	status player.Status
	frames int

	progress progress.Model
	help     help.Model
	width    int
}

// New creates a model. The jukebox must already be started.
func New(jb *jukebox.Jukebox, controls Controls) Model {
	return Model{
		jukebox:  jb,
		controls: controls,
		state:    jb.State(),
		status:   controls.Status(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init starts the frame clock.
func (m Model) Init() tea.Cmd {
	return frameTick()
}

// Update handles input and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(60, max(10, msg.Width-20))
		return m, nil

	case frameMsg:
		m.jukebox.Frame()
		m.frames++
		m.refresh()
		return m, frameTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.jukebox.Up()
		case key.Matches(msg, keys.Down):
			m.jukebox.Down()
		case key.Matches(msg, keys.Play):
			// Errors are kept in the jukebox state and shown below the list
			_ = m.jukebox.Play(m.jukebox.State().Highlighted)
		case key.Matches(msg, keys.Pause):
			m.controls.TogglePause()
		case key.Matches(msg, keys.Stop):
			m.controls.Stop()
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m *Model) refresh() {
	m.state = m.jukebox.State()
	m.status = m.controls.Status()
}

// View renders the jukebox.
func (m Model) View() string {
	var s strings.Builder

	name := m.jukebox.Playlist().Name
	if name == "" {
		name = "pisplay"
	}
	s.WriteString(titleStyle.Render(" " + strings.ToUpper(name) + " "))
	s.WriteString("\n")

	for i, t := range m.jukebox.Tunes() {
		switch {
		case i == m.state.Highlighted && m.blink():
			s.WriteString(highlightStyle.Render("▸ " + t.Title))
		case i == m.state.Playing:
			s.WriteString(playingStyle.Render("♪ " + t.Title))
		default:
			s.WriteString(tuneStyle.Render("  " + t.Title))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.progress.ViewAs(m.playedFraction()))
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(m.statusLine()))
	s.WriteString("\n")
	s.WriteString(voiceStyle.Render(voiceLine(m.status.Voices)))

	if m.state.Err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("✗ " + m.state.Err.Error()))
	}

	out := boxStyle.Render(s.String())
	return out + "\n" + m.help.View(keys)
}

// blink flashes the highlight while it differs from the playing tune.
func (m Model) blink() bool {
	if m.state.Highlighted == m.state.Playing {
		return true
	}
	return (m.frames/8)%2 == 0
}

func (m Model) playedFraction() float64 {
	if m.state.MaxFrames <= 0 {
		return 0
	}
	return min(1, float64(m.state.PlayedFrames)/float64(m.state.MaxFrames))
}

func (m Model) statusLine() string {
	st := m.status
	state := "playing"
	switch {
	case st.Held:
		state = "paused"
	case !st.Playing:
		state = "stopped"
	}
	return fmt.Sprintf("%-7s pos %02d/%02d  row %02d  speed %d  %s  peak %3.0f%%",
		state, st.Position, st.OrderLength, st.Row, st.Speed,
		formatTime(st.Seconds), st.Peak*100)
}

func formatTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// noteName formats a voice's note, or "..." when it is silent.
func noteName(v player.VoiceStatus) string {
	if !v.KeyOn || v.Note < 0 || v.Note >= len(noteNames) {
		return "..."
	}
	return fmt.Sprintf("%s%d", noteNames[v.Note], v.Octave)
}

func voiceLine(voices [pis.Voices]player.VoiceStatus) string {
	parts := make([]string, len(voices))
	for i, v := range voices {
		parts[i] = noteName(v)
	}
	return strings.Join(parts, " ")
}

// Run starts the terminal jukebox and blocks until the user quits.
func Run(jb *jukebox.Jukebox, controls Controls) error {
	p := tea.NewProgram(New(jb, controls), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
