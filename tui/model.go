package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stepseq/engine"
	"stepseq/gen"
	"stepseq/pattern"
)

// Model is the terminal front end: transport header, drum grid with
// playhead, note and sample lanes, and generator controls. All sequencing
// state lives in the store; the model only keeps cursor and selector state.
type Model struct {
	Store      *pattern.PatternStore
	Dispatcher *engine.Dispatcher

	rng *rand.Rand

	// Editing state
	track  int // selected drum track row
	cursor int // step cursor

	// Generator selectors
	hits   int
	style  int
	scale  int
	root   int
	melody int // placement engine

	quitting bool
}

type UpdateMsg struct{ Step int }

func NewModel(store *pattern.PatternStore, d *engine.Dispatcher) Model {
	return Model{
		Store:      store,
		Dispatcher: d,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		hits:       4,
	}
}

// ListenForUpdates relays playhead movement into the bubbletea loop.
func ListenForUpdates(d *engine.Dispatcher) tea.Cmd {
	return func() tea.Msg {
		return UpdateMsg{Step: <-d.Updates}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Dispatcher)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case UpdateMsg:
		return m, ListenForUpdates(m.Dispatcher)
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	snap := m.Store.Snapshot()

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Dispatcher.Stop()
		return m, tea.Quit

	case "p":
		if m.Dispatcher.Running() {
			m.Dispatcher.Stop()
		} else {
			m.Dispatcher.Play()
		}

	case "+", "=":
		m.Store.SetBPM(snap.Transport.BPM + 5)
	case "-", "_":
		m.Store.SetBPM(snap.Transport.BPM - 5)
	case "s":
		m.Store.SetSwing(snap.Transport.Swing + 0.1)
	case "S":
		m.Store.SetSwing(snap.Transport.Swing - 0.1)
	case "a":
		m.Store.SetAccentInterval(nextAccent(snap.Transport.AccentInterval))

	case "h", "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "l", "right":
		if m.cursor < pattern.Steps-1 {
			m.cursor++
		}
	case "k", "up":
		if m.track > 0 {
			m.track--
		}
	case "j", "down":
		if m.track < len(pattern.DrumTracks)-1 {
			m.track++
		}
	case " ":
		m.Store.ToggleDrumStep(pattern.DrumTracks[m.track], m.cursor)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.hits = 2 * int(key[0]-'0') // 2..18, clamped by the generator
	case "0":
		m.hits = 16

	case "v":
		m.style = (m.style + 1) % len(gen.RhythmStyleNames)
	case "n":
		m.scale = (m.scale + 1) % len(gen.ScaleNames)
	case "N":
		m.root = (m.root + 1) % 12
	case "b":
		m.melody = (m.melody + 1) % len(gen.EngineNames)

	case "e":
		mask := gen.Rhythm(m.style, m.hits, m.rng)
		m.Store.SetDrumRow(pattern.DrumTracks[m.track], [pattern.Steps]bool(mask))

	case "g":
		mask := gen.Rhythm(m.style, m.hits, m.rng)
		roll := gen.Melody(gen.MelodyParams{
			Root:     m.root,
			Scale:    m.scale,
			JumpProb: 0.25,
			Engine:   m.melody,
		}, mask, m.rng)
		m.Store.SetNoteRoll(roll)

	case "x":
		mask := gen.Rhythm(m.style, m.hits, m.rng)
		roll := gen.Slices(len(snap.Markers), mask, true, m.rng)
		m.Store.SetSampleRoll(roll)

	case "c":
		m.Store.ClearPattern()
	}

	return m, nil
}

// nextAccent cycles through the legal accent intervals.
func nextAccent(cur int) int {
	order := []int{0, 2, 3, 4, 8}
	for i, a := range order {
		if a == cur {
			return order[(i+1)%len(order)]
		}
	}
	return 0
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Store.Snapshot()
	step := m.Dispatcher.Playhead()
	playing := m.Dispatcher.Running()

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	playState := "STOP"
	if playing {
		playState = "PLAY"
	}
	header := headerStyle.Render(fmt.Sprintf(
		"stepseq  %s  %3.0fbpm  swing:%.1f  accent:%d  step:%02d",
		playState, snap.Transport.BPM, snap.Transport.Swing,
		snap.Transport.AccentInterval, step+1))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	// Drum grid - single char per cell
	for t, track := range pattern.DrumTracks {
		out.WriteString(fmt.Sprintf("%-6s ", track))
		row := snap.Pattern.Drums[track]
		for s := 0; s < pattern.Steps; s++ {
			isCursor := t == m.track && s == m.cursor

			var char string
			if playing && s == step {
				if isCursor {
					char = "▷"
				} else {
					char = "▶"
				}
			} else if row[s] {
				if isCursor {
					char = "◉"
				} else {
					char = "●"
				}
			} else {
				if isCursor {
					char = "○"
				} else {
					char = "·"
				}
			}
			out.WriteString(char)
		}
		out.WriteString("\n")
	}

	// Note and sample lanes
	out.WriteString(fmt.Sprintf("%-7s", "synth"))
	for s := 0; s < pattern.Steps; s++ {
		if row, ok := snap.Pattern.NoteRoll[s].Get(); ok {
			out.WriteString(string(rune('a' + row)))
		} else {
			out.WriteString("·")
		}
	}
	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("%-7s", "slices"))
	for s := 0; s < pattern.Steps; s++ {
		if v, ok := snap.Pattern.SampleRoll[s].Get(); ok {
			out.WriteString(fmt.Sprintf("%x", v))
		} else {
			out.WriteString("·")
		}
	}
	out.WriteString(fmt.Sprintf("   markers:%d\n", len(snap.Markers)))

	out.WriteString("\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf(
		"gen: style=%s hits=%d scale=%s root=%d engine=%s",
		gen.RhythmStyleNames[m.style], m.hits, gen.ScaleNames[m.scale],
		m.root, gen.EngineNames[m.melody])))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(
		"hjkl:nav space:toggle p:play +/-:tempo s/S:swing a:accent"))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(
		"e:drum-fill g:melody x:slices v/n/N/b:selectors 1-0:hits c:clear q:quit"))
	out.WriteString("\n")

	return out.String()
}
