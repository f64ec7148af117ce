//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/pintodo/internal/hotkeys"
	"github.com/1broseidon/pintodo/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// X11Backend implements Backend on an X11 connection.
type X11Backend struct {
	conn    *x11.Connection
	hotkeys *hotkeys.Handler
	logger  *slog.Logger

	traitsOnce sync.Once
	traits     Traits
	stopOnce   sync.Once
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend opens a connection to the display named by $DISPLAY.
func NewX11Backend(logger *slog.Logger) (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &X11Backend{
		conn:    conn,
		hotkeys: hotkeys.NewHandler(conn.XUtil, conn.Root),
		logger:  logger,
	}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *X11Backend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *X11Backend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *X11Backend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Traits queries _NET_SUPPORTED once and caches the result.
func (b *X11Backend) Traits() Traits {
	b.traitsOnce.Do(func() {
		ok, err := b.conn.Supports(x11.StateBelow)
		if err != nil {
			b.logger.Warn("cannot query window manager capabilities", "err", err)
		}
		b.traits = Traits{DesktopTier: ok}
	})
	return b.traits
}

// CreateWindow creates an unmapped top-level window.
func (b *X11Backend) CreateWindow(opts WindowOptions) (Window, error) {
	surface, err := b.conn.CreateSurface(x11.SurfaceOptions{
		Title:      opts.Title,
		X:          opts.Bounds.X,
		Y:          opts.Bounds.Y,
		Width:      opts.Bounds.Width,
		Height:     opts.Bounds.Height,
		Resizable:  opts.Resizable,
		Background: opts.Background,
		States:     stackingStates(opts.Stacking),
	})
	if err != nil {
		return nil, err
	}

	if opts.Icon != "" {
		icon, err := x11.LoadIcon(opts.Icon)
		if err == nil {
			err = surface.SetIcon(icon)
		}
		if err != nil {
			// A broken icon never blocks window creation.
			b.logger.Warn("window icon not applied", "path", opts.Icon, "err", err)
		}
	}

	return &x11Window{surface: surface, stacking: opts.Stacking}, nil
}

// RegisterShortcut grabs a global accelerator on the root window.
func (b *X11Backend) RegisterShortcut(accelerator string, fn func()) error {
	return b.hotkeys.Register(accelerator, fn)
}

// UnregisterAllShortcuts releases every grab made by RegisterShortcut.
func (b *X11Backend) UnregisterAllShortcuts() {
	b.hotkeys.UnregisterAll()
}

// EventLoop starts the X11 event loop (blocking).
func (b *X11Backend) EventLoop() {
	b.conn.EventLoop()
}

// Stop makes EventLoop return.
func (b *X11Backend) Stop() {
	b.stopOnce.Do(b.conn.Quit)
}

func stackingStates(s Stacking) []string {
	switch s {
	case StackingAbove:
		return []string{x11.StateAbove}
	case StackingDesktop:
		return []string{x11.StateBelow}
	default:
		return nil
	}
}

type x11Window struct {
	surface *x11.Surface

	mu       sync.Mutex
	stacking Stacking
}

func (w *x11Window) ID() WindowID { return WindowID(w.surface.ID()) }

func (w *x11Window) Show() error {
	w.surface.Map()
	return nil
}

func (w *x11Window) Hide() error {
	w.surface.Unmap()
	return nil
}

func (w *x11Window) Focus() error     { return w.surface.Activate() }
func (w *x11Window) Minimize() error  { return w.surface.Iconify() }
func (w *x11Window) Visible() bool    { return w.surface.Mapped() }
func (w *x11Window) Opacity() float64 { return w.surface.Opacity() }

func (w *x11Window) SetOpacity(opacity float64) error {
	return w.surface.SetOpacity(opacity)
}

func (w *x11Window) Stacking() Stacking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stacking
}

// SetStacking drops the state atoms of every other tier before adding the
// requested one.
func (w *x11Window) SetStacking(s Stacking) error {
	var remove []string
	for _, st := range []string{x11.StateAbove, x11.StateBelow} {
		if w.surface.HasState(st) {
			remove = append(remove, st)
		}
	}
	add := stackingStates(s)
	remove = without(remove, add)

	if len(remove) > 0 {
		if err := w.surface.SetStates(false, remove...); err != nil {
			return err
		}
	}
	if len(add) > 0 {
		if err := w.surface.SetStates(true, add...); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.stacking = s
	w.mu.Unlock()
	return nil
}

func (w *x11Window) OnClosed(fn func()) { w.surface.OnClosed(fn) }
func (w *x11Window) Destroy()           { w.surface.Destroy() }

func without(list, drop []string) []string {
	out := list[:0]
	for _, s := range list {
		keep := true
		for _, d := range drop {
			if s == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, s)
		}
	}
	return out
}
