package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/pintodo/internal/bridge"
)

// WindowClient is the subset of bridge.Client the panels drive.
type WindowClient interface {
	Ready() (*bridge.ReadyData, error)
	Status() (*bridge.StatusData, error)
	MinimizeWindow() error
	CloseWindow() error
	ToggleOpacity() (*bridge.OpacityData, error)
	SetWindowLevel(level bridge.Level) (bridge.Level, error)
	GetWindowLevel() (bridge.Level, error)
}

var _ WindowClient = (*bridge.Client)(nil)

type readyMsg struct {
	data *bridge.ReadyData
	err  error
}

type statusMsg struct {
	status *bridge.StatusData
	err    error
}

type actionMsg struct {
	action  string
	level   bridge.Level
	opacity *bridge.OpacityData
	quit    bool
	err     error
}

// panelModel is window content rendered in a terminal: it completes the
// handshake and offers the window controls.
type panelModel struct {
	client WindowClient
	keys   panelKeys
	help   help.Model

	ready   *bridge.ReadyData
	status  *bridge.StatusData
	level   bridge.Level
	opacity float64
	last    string
	lastErr string

	width  int
	height int
}

func newPanelModel(client WindowClient) panelModel {
	return panelModel{
		client:  client,
		keys:    defaultPanelKeys,
		help:    help.New(),
		opacity: 1,
	}
}

// RunPanel runs the content panel until the user quits or closes the host.
func RunPanel(client WindowClient) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("panel requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newPanelModel(client), tea.WithAltScreen()).Run()
	return err
}

func (m panelModel) readyCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		data, err := client.Ready()
		return readyMsg{data: data, err: err}
	}
}

func (m panelModel) statusCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		st, err := client.Status()
		return statusMsg{status: st, err: err}
	}
}

func (m panelModel) actionCmd(action string, fn func(*actionMsg) error) tea.Cmd {
	return func() tea.Msg {
		msg := actionMsg{action: action}
		msg.err = fn(&msg)
		return msg
	}
}

// Init implements tea.Model.
func (m panelModel) Init() tea.Cmd {
	return m.readyCmd()
}

// Update implements tea.Model.
func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case readyMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.ready = msg.data
		m.lastErr = ""
		return m, m.statusCmd()

	case statusMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.level = msg.status.Level
		if msg.status.WindowPresent {
			m.opacity = msg.status.Opacity
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.last = msg.action
		if msg.level != "" {
			m.level = msg.level
		}
		if msg.opacity != nil {
			m.opacity = msg.opacity.Opacity
		}
		if msg.quit {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m panelModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	client := m.client
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.statusCmd()
	}

	if m.ready == nil {
		// Window controls are meaningless until the handshake completes.
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Minimize):
		return m, m.actionCmd("minimized", func(*actionMsg) error {
			return client.MinimizeWindow()
		})
	case key.Matches(msg, m.keys.Opacity):
		return m, m.actionCmd("opacity toggled", func(a *actionMsg) error {
			op, err := client.ToggleOpacity()
			a.opacity = op
			return err
		})
	case key.Matches(msg, m.keys.CloseHost):
		return m, m.actionCmd("closed", func(a *actionMsg) error {
			a.quit = true
			return client.CloseWindow()
		})
	case key.Matches(msg, m.keys.CycleLvl):
		return m, m.setLevelCmd(nextLevel(m.level))
	case key.Matches(msg, m.keys.OnTop):
		return m, m.setLevelCmd(bridge.LevelAlwaysOnTop)
	case key.Matches(msg, m.keys.Desktop):
		return m, m.setLevelCmd(bridge.LevelDesktop)
	case key.Matches(msg, m.keys.Normal):
		return m, m.setLevelCmd(bridge.LevelNormal)
	}
	return m, nil
}

func (m panelModel) setLevelCmd(level bridge.Level) tea.Cmd {
	client := m.client
	return m.actionCmd("level set", func(a *actionMsg) error {
		applied, err := client.SetWindowLevel(level)
		a.level = applied
		return err
	})
}

// nextLevel cycles through bridge.Levels.
func nextLevel(current bridge.Level) bridge.Level {
	for i, l := range bridge.Levels {
		if l == current {
			return bridge.Levels[(i+1)%len(bridge.Levels)]
		}
	}
	return bridge.Levels[0]
}

// View implements tea.Model.
func (m panelModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("pintodo"))
	b.WriteString("\n\n")

	if m.ready == nil {
		if m.lastErr != "" {
			b.WriteString(errorStyle.Render(m.lastErr))
		} else {
			b.WriteString(dimStyle.Render("connecting to host..."))
		}
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	rows := []string{
		row("window", fmt.Sprintf("%s #%d (gen %d)", statusDot(true), m.ready.WindowID, m.ready.Generation)),
		row("opacity", fmt.Sprintf("%.0f%%", m.opacity*100)),
		row("level", renderLevels(m.level)),
	}
	if m.status != nil {
		rows = append(rows, row("visible", fmt.Sprintf("%t", m.status.Visible)))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))

	footer := ""
	if m.lastErr != "" {
		footer = errorStyle.Render(m.lastErr)
	} else if m.last != "" {
		footer = dimStyle.Render(m.last)
	}
	b.WriteString(sectionStyle.Render(footer))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
