package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/pintodo/internal/bridge"
)

type fakeClient struct {
	readyErr  error
	status    bridge.StatusData
	statusErr error
	level     bridge.Level
	opacity   float64
	minimized int
	closed    bool
}

func (c *fakeClient) Ready() (*bridge.ReadyData, error) {
	if c.readyErr != nil {
		return nil, c.readyErr
	}
	return &bridge.ReadyData{Session: "s", WindowID: 9, Generation: 1}, nil
}

func (c *fakeClient) Status() (*bridge.StatusData, error) {
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	st := c.status
	return &st, nil
}

func (c *fakeClient) MinimizeWindow() error { c.minimized++; return nil }
func (c *fakeClient) CloseWindow() error    { c.closed = true; return nil }

func (c *fakeClient) ToggleOpacity() (*bridge.OpacityData, error) {
	if c.opacity == 1 {
		c.opacity = 0.8
	} else {
		c.opacity = 1
	}
	return &bridge.OpacityData{Opacity: c.opacity}, nil
}

func (c *fakeClient) SetWindowLevel(l bridge.Level) (bridge.Level, error) {
	c.level = l
	return l, nil
}

func (c *fakeClient) GetWindowLevel() (bridge.Level, error) { return c.level, nil }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to the model and then every message its commands produce,
// skipping tea.Quit.
func step(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, bool) {
	t.Helper()
	m, cmd := m.Update(msg)
	quit := false
	for cmd != nil {
		out := cmd()
		if _, ok := out.(tea.QuitMsg); ok {
			quit = true
			break
		}
		m, cmd = m.Update(out)
	}
	return m, quit
}

func readyPanel(t *testing.T, c *fakeClient) panelModel {
	t.Helper()
	m := newPanelModel(c)
	out, _ := step(t, m, m.Init()())
	return out.(panelModel)
}

func TestPanel_HandshakeThenStatus(t *testing.T) {
	c := &fakeClient{level: bridge.LevelAlwaysOnTop, opacity: 1,
		status: bridge.StatusData{WindowPresent: true, Visible: true, Opacity: 1, Level: bridge.LevelAlwaysOnTop}}
	m := readyPanel(t, c)

	if m.ready == nil || m.status == nil {
		t.Fatalf("expected ready and status after init")
	}
	if m.level != bridge.LevelAlwaysOnTop {
		t.Fatalf("level = %q", m.level)
	}
	if !strings.Contains(m.View(), "#9") {
		t.Fatalf("view should show the window id:\n%s", m.View())
	}
}

func TestPanel_ControlsRequireHandshake(t *testing.T) {
	c := &fakeClient{readyErr: errors.New("host error: no window")}
	m := newPanelModel(c)
	out, _ := step(t, m, m.Init()())
	out, _ = step(t, out, runes("m"))

	if c.minimized != 0 {
		t.Fatalf("minimize sent before handshake")
	}
	if !strings.Contains(out.View(), "no window") {
		t.Fatalf("view should show the handshake error:\n%s", out.View())
	}
}

func TestPanel_Actions(t *testing.T) {
	c := &fakeClient{level: bridge.LevelAlwaysOnTop, opacity: 1,
		status: bridge.StatusData{WindowPresent: true, Opacity: 1, Level: bridge.LevelAlwaysOnTop}}
	var m tea.Model = readyPanel(t, c)

	m, _ = step(t, m, runes("o"))
	if got := m.(panelModel).opacity; got != 0.8 {
		t.Fatalf("opacity = %v, want 0.8", got)
	}
	m, _ = step(t, m, runes("o"))
	if got := m.(panelModel).opacity; got != 1 {
		t.Fatalf("opacity = %v, want 1", got)
	}

	m, _ = step(t, m, runes("l"))
	if got := m.(panelModel).level; got != bridge.LevelDesktop {
		t.Fatalf("level after cycle = %q", got)
	}
	m, _ = step(t, m, runes("3"))
	if c.level != bridge.LevelNormal {
		t.Fatalf("client level = %q", c.level)
	}

	m, _ = step(t, m, runes("m"))
	if c.minimized != 1 {
		t.Fatalf("minimized = %d", c.minimized)
	}

	_, quit := step(t, m, runes("X"))
	if !c.closed || !quit {
		t.Fatalf("close should reach the host and quit the panel: closed=%v quit=%v", c.closed, quit)
	}
}

func TestNextLevel(t *testing.T) {
	if nextLevel(bridge.LevelAlwaysOnTop) != bridge.LevelDesktop ||
		nextLevel(bridge.LevelDesktop) != bridge.LevelNormal ||
		nextLevel(bridge.LevelNormal) != bridge.LevelAlwaysOnTop ||
		nextLevel("") != bridge.LevelAlwaysOnTop {
		t.Fatalf("unexpected level cycle")
	}
}

func TestDiffStatus(t *testing.T) {
	prev := &bridge.StatusData{WindowPresent: true, Visible: true, Opacity: 1, Level: bridge.LevelAlwaysOnTop, Generation: 1, UptimeSeconds: 3}
	same := *prev
	same.UptimeSeconds = 9
	if got := diffStatus(prev, &same); len(got) != 0 {
		t.Fatalf("uptime alone should not be a change: %v", got)
	}

	cur := *prev
	cur.Opacity = 0.8
	cur.Level = bridge.LevelNormal
	got := diffStatus(prev, &cur)
	if len(got) != 2 {
		t.Fatalf("changes = %v", got)
	}

	if got := diffStatus(nil, prev); len(got) != 1 {
		t.Fatalf("first poll = %v", got)
	}
}

func TestInspector_RecordsConnectionChanges(t *testing.T) {
	src := &fakeClient{status: bridge.StatusData{WindowPresent: true, Level: bridge.LevelAlwaysOnTop, Generation: 1}}
	m := newInspectModel(src)
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	out, _ := m.Update(inspectStatusMsg{at: at, status: &src.status})
	im := out.(inspectModel)
	if !im.connected || len(im.events) != 2 {
		t.Fatalf("events after first poll = %+v", im.events)
	}

	out, _ = im.Update(inspectStatusMsg{at: at, err: errors.New("refused")})
	im = out.(inspectModel)
	if im.connected || !strings.Contains(im.events[len(im.events)-1].text, "unreachable") {
		t.Fatalf("expected disconnect event, got %+v", im.events)
	}

	out, _ = im.Update(runes("c"))
	if n := len(out.(inspectModel).events); n != 0 {
		t.Fatalf("clear left %d events", n)
	}
}
