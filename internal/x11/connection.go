package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// wake is an unmapped window used to unblock the event loop on Quit.
	wake xproto.Window
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	wake, err := xwindow.Generate(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to allocate wake window: %w", err)
	}
	if err := wake.CreateChecked(xu.RootWin(), -1, -1, 1, 1, 0); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to create wake window: %w", err)
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		wake:  wake.Id,
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes a running EventLoop return.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)

	// The loop only re-checks the quit flag after reading an event. An event
	// sent with an empty mask goes to the client owning the window: us.
	atom, err := xprop.Atm(c.XUtil, "_PINTODO_WAKE")
	if err != nil {
		return
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.wake,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	xproto.SendEvent(c.XUtil.Conn(), false, c.wake, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// Supports reports whether the window manager lists atomName in _NET_SUPPORTED.
func (c *Connection) Supports(atomName string) (bool, error) {
	supported, err := ewmh.SupportedGet(c.XUtil)
	if err != nil {
		return false, fmt.Errorf("failed to read _NET_SUPPORTED: %w", err)
	}
	for _, name := range supported {
		if name == atomName {
			return true, nil
		}
	}
	return false, nil
}
