package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/pintodo/internal/bridge"
)

const (
	pollInterval = time.Second
	maxEvents    = 200
)

// StatusSource is polled by the inspector.
type StatusSource interface {
	Status() (*bridge.StatusData, error)
}

type pollMsg time.Time

type inspectStatusMsg struct {
	at     time.Time
	status *bridge.StatusData
	err    error
}

type inspectEvent struct {
	at   time.Time
	text string
}

// inspectModel shows live host state and a log of every observed change.
type inspectModel struct {
	source StatusSource
	keys   inspectKeys
	help   help.Model
	now    func() time.Time

	status    *bridge.StatusData
	connected bool
	events    []inspectEvent

	width  int
	height int
}

func newInspectModel(source StatusSource) inspectModel {
	return inspectModel{
		source: source,
		keys:   defaultInspectKeys,
		help:   help.New(),
		now:    time.Now,
	}
}

// RunInspector runs the development inspector until the user quits.
func RunInspector(source StatusSource) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("inspector requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newInspectModel(source), tea.WithAltScreen()).Run()
	return err
}

func (m inspectModel) fetch() tea.Cmd {
	source := m.source
	now := m.now
	return func() tea.Msg {
		st, err := source.Status()
		return inspectStatusMsg{at: now(), status: st, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

// Init implements tea.Model.
func (m inspectModel) Init() tea.Cmd {
	return m.fetch()
}

// Update implements tea.Model.
func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.events = nil
		}
		return m, nil

	case pollMsg:
		return m, m.fetch()

	case inspectStatusMsg:
		if msg.err != nil {
			if m.connected {
				m.record(msg.at, "host unreachable: "+msg.err.Error())
			}
			m.connected = false
			return m, tick()
		}
		if !m.connected {
			m.record(msg.at, "connected")
		}
		m.connected = true
		for _, change := range diffStatus(m.status, msg.status) {
			m.record(msg.at, change)
		}
		m.status = msg.status
		return m, tick()
	}
	return m, nil
}

func (m *inspectModel) record(at time.Time, text string) {
	m.events = append(m.events, inspectEvent{at: at, text: text})
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// diffStatus describes what changed between two polls. Uptime is ignored.
func diffStatus(prev, cur *bridge.StatusData) []string {
	if cur == nil {
		return nil
	}
	if prev == nil {
		return []string{fmt.Sprintf("generation %d, level %s, window present %t", cur.Generation, cur.Level, cur.WindowPresent)}
	}
	var out []string
	if prev.Generation != cur.Generation {
		out = append(out, fmt.Sprintf("window recreated (generation %d)", cur.Generation))
	}
	if prev.WindowPresent != cur.WindowPresent {
		if cur.WindowPresent {
			out = append(out, "window present")
		} else {
			out = append(out, "window closed")
		}
	}
	if prev.Visible != cur.Visible {
		out = append(out, fmt.Sprintf("visible -> %t", cur.Visible))
	}
	if prev.Opacity != cur.Opacity {
		out = append(out, fmt.Sprintf("opacity %.2f -> %.2f", prev.Opacity, cur.Opacity))
	}
	if prev.Level != cur.Level {
		out = append(out, fmt.Sprintf("level %s -> %s", prev.Level, cur.Level))
	}
	if prev.BridgeReady != cur.BridgeReady {
		out = append(out, fmt.Sprintf("bridge ready -> %t", cur.BridgeReady))
	}
	return out
}

// View implements tea.Model.
func (m inspectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("pintodo inspector"))
	b.WriteString("  ")
	if m.connected {
		b.WriteString(statusDot(true) + " host connected")
	} else {
		b.WriteString(statusDot(false) + " host not running")
	}
	b.WriteString("\n\n")

	if st := m.status; st != nil {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
			row("window", fmt.Sprintf("%t", st.WindowPresent)),
			row("visible", fmt.Sprintf("%t", st.Visible)),
			row("opacity", fmt.Sprintf("%.2f", st.Opacity)),
			row("level", string(st.Level)),
			row("bridge", fmt.Sprintf("%t", st.BridgeReady)),
			row("generation", fmt.Sprintf("%d", st.Generation)),
			row("uptime", (time.Duration(st.UptimeSeconds)*time.Second).String()),
		))
		b.WriteString("\n")
	}

	// Show as many recent events as fit.
	limit := len(m.events)
	if m.height > 0 {
		room := m.height - 14
		if room < 1 {
			room = 1
		}
		if limit > room {
			limit = room
		}
	}
	lines := make([]string, 0, limit)
	for _, ev := range m.events[len(m.events)-limit:] {
		lines = append(lines, dimStyle.Render(ev.at.Format("15:04:05"))+" "+ev.text)
	}
	b.WriteString(sectionStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
