package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	StateAbove = "_NET_WM_STATE_ABOVE"
	StateBelow = "_NET_WM_STATE_BELOW"

	// _NET_WM_STATE client message actions.
	stateRemove = 0
	stateAdd    = 1
)

// SurfaceOptions are the creation parameters of a top-level surface.
type SurfaceOptions struct {
	Title      string
	X, Y       int
	Width      int
	Height     int
	Resizable  bool
	Background uint32 // 0xRRGGBB
	States     []string
}

// Surface is a top-level X11 window created and owned by this process.
// It starts unmapped.
type Surface struct {
	conn *Connection
	win  *xwindow.Window

	mu       sync.Mutex
	mapped   bool
	opacity  float64
	states   map[string]bool
	closed   bool
	onClosed []func()
}

// CreateSurface creates an unmapped top-level window with WM hints set.
func (c *Connection) CreateSurface(opts SurfaceOptions) (*Surface, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	err = win.CreateChecked(c.Root, opts.X, opts.Y, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		opts.Background,
		xproto.EventMaskStructureNotify|xproto.EventMaskExposure)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	s := &Surface{
		conn:    c,
		win:     win,
		opacity: 1,
		states:  make(map[string]bool),
	}

	if err := s.setHints(opts); err != nil {
		win.Destroy()
		return nil, err
	}

	for _, st := range opts.States {
		s.states[st] = true
	}
	if len(opts.States) > 0 {
		// Unmapped windows carry their initial state as a plain property.
		if err := ewmh.WmStateSet(c.XUtil, win.Id, opts.States); err != nil {
			win.Destroy()
			return nil, fmt.Errorf("failed to set initial window state: %w", err)
		}
	}

	win.WMGracefulClose(func(w *xwindow.Window) {
		s.Destroy()
	})

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		s.setMapped(true)
	}).Connect(c.XUtil, win.Id)
	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		s.setMapped(false)
	}).Connect(c.XUtil, win.Id)
	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		s.fireClosed()
	}).Connect(c.XUtil, win.Id)

	return s, nil
}

func (s *Surface) setHints(opts SurfaceOptions) error {
	xu := s.conn.XUtil
	id := s.win.Id

	if err := ewmh.WmNameSet(xu, id, opts.Title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(xu, id, opts.Title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}

	hints := &icccm.NormalHints{
		Flags:  icccm.SizeHintUSPosition | icccm.SizeHintUSSize,
		X:      opts.X,
		Y:      opts.Y,
		Width:  uint(opts.Width),
		Height: uint(opts.Height),
	}
	if !opts.Resizable {
		hints.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		hints.MinWidth, hints.MaxWidth = uint(opts.Width), uint(opts.Width)
		hints.MinHeight, hints.MaxHeight = uint(opts.Height), uint(opts.Height)
	}
	if err := icccm.WmNormalHintsSet(xu, id, hints); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}

	if err := ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_NORMAL"}); err != nil {
		return fmt.Errorf("failed to set window type: %w", err)
	}
	return nil
}

// ID returns the X11 window id.
func (s *Surface) ID() xproto.Window {
	return s.win.Id
}

// Map shows the window.
func (s *Surface) Map() {
	s.win.Map()
	s.setMapped(true)
}

// Unmap hides the window.
func (s *Surface) Unmap() {
	s.win.Unmap()
	s.setMapped(false)
}

// Mapped reports the last known map state.
func (s *Surface) Mapped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapped && !s.closed
}

func (s *Surface) setMapped(mapped bool) {
	s.mu.Lock()
	s.mapped = mapped
	s.mu.Unlock()
}

// Activate raises and focuses the window.
func (s *Surface) Activate() error {
	return s.conn.Activate(s.win.Id)
}

// Iconify minimizes the window.
func (s *Surface) Iconify() error {
	return s.conn.Iconify(s.win.Id)
}

// Opacity returns the opacity last applied through SetOpacity.
func (s *Surface) Opacity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opacity
}

// SetOpacity writes _NET_WM_WINDOW_OPACITY.
func (s *Surface) SetOpacity(opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return fmt.Errorf("opacity %.2f out of range [0,1]", opacity)
	}
	if err := ewmh.WmWindowOpacitySet(s.conn.XUtil, s.win.Id, opacity); err != nil {
		return fmt.Errorf("failed to set window opacity: %w", err)
	}
	s.mu.Lock()
	s.opacity = opacity
	s.mu.Unlock()
	return nil
}

// SetStates adds (add=true) or removes _NET_WM_STATE atoms. Mapped windows go
// through the window manager; unmapped windows get the property rewritten.
func (s *Surface) SetStates(add bool, atoms ...string) error {
	s.mu.Lock()
	for _, a := range atoms {
		if add {
			s.states[a] = true
		} else {
			delete(s.states, a)
		}
	}
	mapped := s.mapped
	current := make([]string, 0, len(s.states))
	for a := range s.states {
		current = append(current, a)
	}
	s.mu.Unlock()

	if !mapped {
		if err := ewmh.WmStateSet(s.conn.XUtil, s.win.Id, current); err != nil {
			return fmt.Errorf("failed to set window state: %w", err)
		}
		return nil
	}

	action := stateRemove
	if add {
		action = stateAdd
	}
	for _, a := range atoms {
		if err := ewmh.WmStateReq(s.conn.XUtil, s.win.Id, action, a); err != nil {
			return fmt.Errorf("failed to request %s: %w", a, err)
		}
	}
	return nil
}

// HasState reports whether the atom is in the window's requested state set.
func (s *Surface) HasState(atom string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[atom]
}

// OnClosed registers fn to run once when the window is destroyed.
func (s *Surface) OnClosed(fn func()) {
	s.mu.Lock()
	s.onClosed = append(s.onClosed, fn)
	s.mu.Unlock()
}

// Destroy destroys the window and fires the closed callbacks.
func (s *Surface) Destroy() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// xwindow.Destroy detaches our DestroyNotify handler, so fire by hand.
	s.win.Destroy()
	s.fireClosed()
}

func (s *Surface) fireClosed() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mapped = false
	callbacks := s.onClosed
	s.onClosed = nil
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
