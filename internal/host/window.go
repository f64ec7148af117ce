package host

import (
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/pintodo/internal/bridge"
	"github.com/1broseidon/pintodo/internal/content"
	"github.com/1broseidon/pintodo/internal/platform"
)

const (
	FullOpacity = 1.0
	DimOpacity  = 0.8
)

// contentProcess names the per-window content command in the launcher.
const contentProcess = "content"

// NextOpacity returns the opacity one toggle produces. Anything other than
// exactly fully opaque counts as dimmed.
func NextOpacity(current float64) float64 {
	if current == FullOpacity {
		return DimOpacity
	}
	return FullOpacity
}

// StackingFor maps a level onto the stacking directive the backend applies.
func StackingFor(level bridge.Level, traits platform.Traits) platform.Stacking {
	switch level {
	case bridge.LevelAlwaysOnTop:
		return platform.StackingAbove
	case bridge.LevelDesktop:
		if traits.DesktopTier {
			return platform.StackingDesktop
		}
		return platform.StackingNormal
	default:
		return platform.StackingNormal
	}
}

func (h *Host) createWindow() error {
	if h.state.Window != nil {
		return nil
	}
	cfg := h.cfg

	icon := cfg.Window.Icon
	if icon != "" {
		if _, err := os.Stat(icon); err != nil {
			h.logger.Warn("window icon not found, continuing without it", "path", icon, "err", err)
			icon = ""
		}
	}

	background, err := cfg.BackgroundPixel()
	if err != nil {
		h.logger.Warn("invalid window background, using white", "err", err)
		background = 0xffffff
	}

	win, err := h.backend.CreateWindow(platform.WindowOptions{
		Title: cfg.Window.Title,
		Bounds: platform.Rect{
			X:      cfg.Window.X,
			Y:      cfg.Window.Y,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		},
		Resizable:  cfg.Window.Resizable,
		Stacking:   StackingFor(h.state.Level, h.backend.Traits()),
		Background: background,
		Icon:       icon,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	h.state.Generation++
	gen := h.state.Generation
	h.state.Window = win
	h.state.ShownOnce = false
	h.state.BridgeReady = false
	h.state.Session = ""

	win.OnClosed(func() {
		// May fire on the control goroutine itself (Destroy), so never block.
		h.post(func() { h.windowClosed(gen) })
	})

	h.logger.Info("window created",
		"id", win.ID(),
		"generation", gen,
		"level", h.state.Level)

	h.loadContent(win)
	h.launchInspector()
	return nil
}

func (h *Host) loadContent(win platform.Window) {
	url := h.cfg.ContentURL()
	// A content process announces itself with ready. Without one, a
	// successful load is the signal to show the window.
	showOnLoad := len(h.cfg.Content.Command) == 0
	gen := h.state.Generation

	if h.opts.Loader != nil {
		ctx := h.ctx
		go func() {
			if err := h.opts.Loader.Load(ctx, url); err != nil {
				h.logger.Warn("content failed to load", "url", url, "err", err)
				return
			}
			h.logger.Info("content finished loading", "url", url)
			if showOnLoad {
				h.post(func() { h.contentLoaded(gen) })
			}
		}()
	}

	if showOnLoad || h.opts.Launcher == nil {
		return
	}
	env := map[string]string{
		content.EnvSocket:     h.opts.SocketPath,
		content.EnvWSAddr:     h.opts.WebSocketAddr,
		content.EnvWindowID:   strconv.FormatUint(uint64(win.ID()), 10),
		content.EnvContentURL: url,
	}
	if err := h.opts.Launcher.Launch(contentProcess, h.cfg.Content.Command, env); err != nil {
		h.logger.Warn("content command failed to start", "err", err)
	}
}

// contentLoaded shows the window of generation gen the first time its
// content is ready to show.
func (h *Host) contentLoaded(gen uint64) {
	win := h.state.Window
	if h.stopping || win == nil || gen != h.state.Generation || h.state.ShownOnce {
		return
	}
	h.state.ShownOnce = true
	if err := win.Show(); err != nil {
		h.logger.Warn("failed to show window", "err", err)
	}
}

func (h *Host) launchInspector() {
	if !h.opts.DevMode || h.inspectorLaunched || h.opts.Launcher == nil || h.opts.Executable == "" {
		return
	}
	argv := append(append([]string(nil), h.cfg.Dev.InspectorCommand...), h.opts.Executable, "inspect")
	env := map[string]string{content.EnvSocket: h.opts.SocketPath}
	if err := h.opts.Launcher.Launch("inspector", argv, env); err != nil {
		h.logger.Warn("inspector failed to start", "err", err)
		return
	}
	h.inspectorLaunched = true
}

func (h *Host) windowClosed(gen uint64) {
	if h.stopping || gen != h.state.Generation || h.state.Window == nil {
		return
	}
	h.state.Window = nil
	h.state.BridgeReady = false
	h.state.Session = ""
	h.logger.Info("window closed", "generation", gen)
	if h.opts.Launcher != nil {
		h.opts.Launcher.Stop(contentProcess)
	}

	if h.cfg.KeepAliveWithoutWindows() {
		h.logger.Info("no windows left, staying alive")
		return
	}
	h.Quit()
}

func (h *Host) activate() error {
	if h.state.Window != nil {
		return nil
	}
	h.logger.Info("activate with no window, recreating")
	return h.createWindow()
}

func (h *Host) ready(origin string) (bridge.ReadyData, error) {
	win := h.state.Window
	if win == nil {
		return bridge.ReadyData{}, ErrNoWindow
	}

	if h.state.Session == "" {
		h.state.Session = h.opts.NewSession()
		h.state.BridgeReady = true
		h.logger.Info("bridge ready", "origin", origin, "generation", h.state.Generation)
	}
	if !h.state.ShownOnce {
		h.state.ShownOnce = true
		if err := win.Show(); err != nil {
			h.logger.Warn("failed to show window", "err", err)
		}
	}

	return bridge.ReadyData{
		Session:    h.state.Session,
		WindowID:   uint32(win.ID()),
		Generation: h.state.Generation,
		Commands:   bridge.WindowCommands,
	}, nil
}

// authorize checks a window command's session against the current window.
// A nil window with a nil error means there is nothing to act on and the
// command is a no-op.
func (h *Host) authorize(session string) (platform.Window, error) {
	win := h.state.Window
	if win == nil {
		return nil, nil
	}
	if !h.state.BridgeReady || session == "" {
		return nil, ErrBridgeNotReady
	}
	if session != h.state.Session {
		return nil, ErrStaleSession
	}
	return win, nil
}

func (h *Host) minimize(session string) error {
	win, err := h.authorize(session)
	if err != nil || win == nil {
		return err
	}
	if err := win.Minimize(); err != nil {
		return fmt.Errorf("failed to minimize window: %w", err)
	}
	return nil
}

// closeWindow quits the host. The session is only checked while a window
// exists.
func (h *Host) closeWindow(session string) error {
	if _, err := h.authorize(session); err != nil {
		return err
	}
	h.logger.Info("close requested, quitting")
	h.Quit()
	return nil
}

func (h *Host) toggleOpacity(session string) (*bridge.OpacityData, error) {
	win, err := h.authorize(session)
	if err != nil || win == nil {
		return nil, err
	}
	next := NextOpacity(win.Opacity())
	if err := win.SetOpacity(next); err != nil {
		return nil, fmt.Errorf("failed to set opacity: %w", err)
	}
	return &bridge.OpacityData{Opacity: next}, nil
}

// setLevel updates the process-wide level. Without a window only the state
// changes; the next window is created at that level.
func (h *Host) setLevel(session, raw string) (bridge.LevelData, error) {
	win, err := h.authorize(session)
	if err != nil {
		return bridge.LevelData{}, err
	}
	level, err := bridge.ParseLevel(raw)
	if err != nil {
		return bridge.LevelData{}, err
	}

	if win != nil {
		stacking := StackingFor(level, h.backend.Traits())
		if err := win.SetStacking(stacking); err != nil {
			return bridge.LevelData{}, fmt.Errorf("failed to apply level %s: %w", level, err)
		}
		h.logger.Debug("window level applied", "level", level, "stacking", stacking)
	}
	h.state.Level = level
	return bridge.LevelData{Level: level}, nil
}

func (h *Host) getLevel(session string) (bridge.LevelData, error) {
	if _, err := h.authorize(session); err != nil {
		return bridge.LevelData{}, err
	}
	return bridge.LevelData{Level: h.state.Level}, nil
}

func (h *Host) toggleVisibility() {
	win := h.state.Window
	if win == nil {
		return
	}
	if win.Visible() {
		if err := win.Hide(); err != nil {
			h.logger.Warn("failed to hide window", "err", err)
		}
		return
	}
	h.state.ShownOnce = true
	if err := win.Show(); err != nil {
		h.logger.Warn("failed to show window", "err", err)
		return
	}
	if err := win.Focus(); err != nil {
		h.logger.Warn("failed to focus window", "err", err)
	}
}
