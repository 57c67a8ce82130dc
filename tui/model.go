// Package tui is the terminal front end: a piano-roll grid over the
// engine's snapshot. It holds no sequencer state of its own; every key
// maps to one engine command and the view re-renders from the snapshot.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grid-seq/sequencer"
)

const (
	gridCols = int(sequencer.LoopBeats * sequencer.QuantSteps) // 64 steps
	gridRows = 24                                              // visible pitches at a time
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

type Model struct {
	Engine *sequencer.Engine
	Ports  []string

	cursorPitch int // MIDI note under the cursor
	cursorStep  int // sixteenth-note column
	topPitch    int // highest pitch shown
	status      string
	quitting    bool

	savePath  string
	debounced func(func())
}

// refreshMsg redraws the playhead while the transport runs.
type refreshMsg struct{}

func refresh() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// NewModel builds the editor view. savePath, when set, receives a
// debounced autosave after every edit burst.
func NewModel(engine *sequencer.Engine, ports []string, savePath string) Model {
	return Model{
		Engine:      engine,
		Ports:       ports,
		cursorPitch: 60,                 // middle C
		topPitch:    60 + gridRows/2 - 1, // window centered on the cursor
		savePath:    savePath,
		debounced:   debounce.New(1500 * time.Millisecond),
	}
}

func (m Model) Init() tea.Cmd {
	return refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case refreshMsg:
		return m, refresh()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.Engine.Snapshot()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		return m, tea.Quit

	case "up", "k":
		if m.cursorPitch < sequencer.LowestNote+sequencer.NoteRange-1 {
			m.cursorPitch++
		}
	case "down", "j":
		if m.cursorPitch > sequencer.LowestNote {
			m.cursorPitch--
		}
	case "left", "h":
		if m.cursorStep > 0 {
			m.cursorStep--
		}
	case "right", "l":
		if m.cursorStep < gridCols-1 {
			m.cursorStep++
		}

	case " ", "enter":
		beat := float64(m.cursorStep) / sequencer.QuantSteps
		res := m.Engine.ToggleNote(snap.ActiveTrack, m.cursorPitch, beat)
		if res == sequencer.ToggleInserted {
			m.status = fmt.Sprintf("added %s at %.2f", pitchName(m.cursorPitch), beat)
		} else if res == sequencer.ToggleRemoved {
			m.status = fmt.Sprintf("removed %s at %.2f", pitchName(m.cursorPitch), beat)
		}
		m.autosave()

	case "1", "2", "3", "4":
		m.Engine.SetActiveTrack(int(msg.String()[0] - '1'))

	case "m":
		tr := snap.Tracks[snap.ActiveTrack]
		m.Engine.SetMuted(tr.ID, !tr.Muted)

	case "c":
		m.Engine.ClearTrack(snap.ActiveTrack)
		m.status = "cleared track"
		m.autosave()

	case "+", "=":
		m.Engine.SetBPM(snap.BPM + 5)
	case "-", "_":
		m.Engine.SetBPM(snap.BPM - 5)

	case "p":
		if snap.Playing {
			m.Engine.Stop()
		} else {
			m.Engine.Start()
		}

	case "o":
		m.cycleOutput(snap)

	case "i":
		m.Engine.SetInstrument(snap.ActiveTrack, snap.Tracks[snap.ActiveTrack].Instrument+1)
	case "I":
		m.Engine.SetInstrument(snap.ActiveTrack, snap.Tracks[snap.ActiveTrack].Instrument-1)

	case "s":
		if m.savePath != "" {
			if err := m.Engine.SaveFile(m.savePath); err != nil {
				m.status = "save failed: " + err.Error()
			} else {
				m.status = "saved " + m.savePath
			}
		}
	}

	m.followCursor()
	return m, nil
}

// cycleOutput routes the active track to the next available port.
func (m *Model) cycleOutput(snap sequencer.Snapshot) {
	if len(m.Ports) == 0 {
		m.status = "no MIDI outputs"
		return
	}
	tr := snap.Tracks[snap.ActiveTrack]
	next := 0
	for i, p := range m.Ports {
		if p == tr.SinkRef {
			next = (i + 1) % len(m.Ports)
			break
		}
	}
	m.Engine.SetSink(tr.ID, m.Ports[next])
	m.status = fmt.Sprintf("%s -> %s", tr.Name, m.Ports[next])
}

func (m *Model) autosave() {
	if m.savePath == "" {
		return
	}
	engine, path := m.Engine, m.savePath
	m.debounced(func() {
		engine.SaveFile(path)
	})
}

// followCursor keeps the cursor row inside the visible window.
func (m *Model) followCursor() {
	if m.cursorPitch > m.topPitch {
		m.topPitch = m.cursorPitch
	}
	if m.cursorPitch <= m.topPitch-gridRows {
		m.topPitch = m.cursorPitch + gridRows - 1
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	mutedStyle  = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(4)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.Engine.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderHeader(snap))
	b.WriteString("\n")
	b.WriteString(m.renderGrid(snap))
	b.WriteString(dimStyle.Render("space toggle · 1-4 track · m mute · o output · +/- bpm · p play · c clear · s save · q quit"))
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}

func (m Model) renderHeader(snap sequencer.Snapshot) string {
	parts := make([]string, 0, sequencer.NumTracks+2)
	parts = append(parts, headerStyle.Render(fmt.Sprintf("BPM %d", snap.BPM)))
	for _, tr := range snap.Tracks {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(tr.Color))
		if tr.ID == snap.ActiveTrack {
			style = style.Bold(true).Underline(true)
		}
		label := fmt.Sprintf("%s(%d)", tr.Name, len(tr.Notes))
		if tr.Muted {
			label = mutedStyle.Render(label)
		} else {
			label = style.Render(label)
		}
		parts = append(parts, label)
	}
	transport := "stopped"
	if snap.Playing {
		transport = fmt.Sprintf("playing %.2f", snap.Position)
	}
	parts = append(parts, dimStyle.Render(transport))
	return strings.Join(parts, "  ")
}

func (m Model) renderGrid(snap sequencer.Snapshot) string {
	playCol := -1
	if snap.Playing {
		playCol = int(snap.Position * sequencer.QuantSteps)
	}

	var b strings.Builder
	for row := 0; row < gridRows; row++ {
		pitch := m.topPitch - row
		b.WriteString(labelStyle.Render(pitchName(pitch)))
		for step := 0; step < gridCols; step++ {
			cell, owner := ".", -1
			beat := float64(step) / sequencer.QuantSteps
			for _, tr := range snap.Tracks {
				for _, n := range tr.Notes {
					if int(n.Pitch) == pitch && n.Start <= beat && beat < n.Start+n.Duration {
						owner = tr.ID
					}
				}
			}
			if owner >= 0 {
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(snap.Tracks[owner].Color))
				if owner != snap.ActiveTrack {
					style = style.Faint(true)
				}
				cell = style.Render("#")
			} else if step%sequencer.QuantSteps == 0 {
				cell = dimStyle.Render("|")
			}
			if step == playCol {
				cell = cursorStyle.Render("|")
			}
			if pitch == m.cursorPitch && step == m.cursorStep {
				cell = cursorStyle.Render("+")
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pitchName(pitch int) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}
