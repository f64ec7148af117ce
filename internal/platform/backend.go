package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Stacking is the OS-level stacking directive applied to a window.
type Stacking int

const (
	StackingNormal  Stacking = iota // regular stacking order
	StackingAbove                   // floats above normal windows
	StackingDesktop                 // sits at the desktop tier, below normal windows
)

func (s Stacking) String() string {
	switch s {
	case StackingAbove:
		return "above"
	case StackingDesktop:
		return "desktop"
	default:
		return "normal"
	}
}

// WindowOptions are the construction parameters of a top-level window.
type WindowOptions struct {
	Title      string
	Bounds     Rect
	Resizable  bool
	Stacking   Stacking
	Background uint32 // 0xRRGGBB
	// Icon is an already-validated PNG path; empty means no icon.
	Icon string
}

// Window is a single top-level surface owned by the host.
// Implementations are created hidden.
type Window interface {
	ID() WindowID
	Show() error
	Hide() error
	Focus() error
	Minimize() error
	Visible() bool
	Opacity() float64
	SetOpacity(opacity float64) error
	Stacking() Stacking
	SetStacking(s Stacking) error
	// OnClosed registers a callback fired once when the window is destroyed,
	// either by Destroy or by the window manager.
	OnClosed(fn func())
	Destroy()
}

// Traits describe what the running window system supports.
type Traits struct {
	// DesktopTier reports whether StackingDesktop maps to a real desktop
	// stacking tier. Without it the desktop level degrades to normal.
	DesktopTier bool
}

// Backend abstracts the window system for the host.
type Backend interface {
	CreateWindow(opts WindowOptions) (Window, error)
	Traits() Traits
	// RegisterShortcut grabs a global accelerator such as
	// "CommandOrControl+Shift+T".
	RegisterShortcut(accelerator string, fn func()) error
	UnregisterAllShortcuts()
	// EventLoop blocks dispatching window-system events until Stop.
	EventLoop()
	Stop()
}
