// Package tui is a terminal remote for a running voicepad server.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satindergrewal/voicepad/internal/api"
	"github.com/satindergrewal/voicepad/internal/musicpad"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff6fb5"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ee787"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

const requestTimeout = 3 * time.Second

// Controller is what the model needs from the server.
type Controller interface {
	Status(ctx context.Context) (api.Snapshot, error)
	Start(ctx context.Context) (musicpad.Status, error)
	Stop(ctx context.Context) (musicpad.Status, error)
}

type statusMsg struct {
	snap api.Snapshot
	err  error
}

type toggledMsg struct {
	status musicpad.Status
	err    error
}

type tickMsg time.Time

// Model is the Bubble Tea model for the pad remote.
type Model struct {
	ctl      Controller
	addr     string
	interval time.Duration

	snap     api.Snapshot
	loaded   bool
	busy     bool
	err      error
	quitting bool
}

// NewModel polls ctl every interval.
func NewModel(ctl Controller, addr string, interval time.Duration) Model {
	return Model{ctl: ctl, addr: addr, interval: interval}
}

func fetchStatus(ctl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		snap, err := ctl.Status(ctx)
		return statusMsg{snap: snap, err: err}
	}
}

func toggle(ctl Controller, playing bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var st musicpad.Status
		var err error
		if playing {
			st, err = ctl.Stop(ctx)
		} else {
			st, err = ctl.Start(ctx)
		}
		return toggledMsg{status: st, err: err}
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchStatus(m.ctl), tick(m.interval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ", "p":
			if m.busy || !m.loaded || !m.snap.Music.Supported {
				return m, nil
			}
			m.busy = true
			return m, toggle(m.ctl, m.snap.Music.Playing)
		case "r":
			return m, fetchStatus(m.ctl)
		}

	case tickMsg:
		return m, tea.Batch(fetchStatus(m.ctl), tick(m.interval))

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.loaded = true
		}

	case toggledMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil || errors.Is(msg.err, musicpad.ErrUnsupported) {
			m.snap.Music = msg.status
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("voicepad") + dimStyle.Render("  "+m.addr) + "\n\n")

	switch {
	case !m.loaded:
		b.WriteString(dimStyle.Render("connecting...") + "\n")
	case !m.snap.Music.Supported:
		b.WriteString(errStyle.Render("music pad unsupported on this host") + "\n")
	default:
		st := m.snap.Music
		if st.Playing {
			b.WriteString(playingStyle.Render("▶ playing") + fmt.Sprintf("  step %d", st.Step))
		} else {
			b.WriteString(dimStyle.Render("■ stopped"))
		}
		if st.Draining > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d fading)", st.Draining)))
		}
		b.WriteString(fmt.Sprintf("\n%.0f bpm, %.0fms per step\n", st.BPM, st.StepIntervalMs))
	}

	if m.loaded {
		b.WriteString(dimStyle.Render(listeners(m.snap)) + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("space/p play·stop  r refresh  q quit") + "\n")
	return b.String()
}

func listeners(s api.Snapshot) string {
	kinds := make([]string, 0, len(s.Listeners))
	for k := range s.Listeners {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds)+1)
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s %d", k, s.Listeners[k]))
	}
	parts = append(parts, fmt.Sprintf("peers %d", s.WebRTCPeers))
	return "listeners: " + strings.Join(parts, ", ")
}
