package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

const (
	// Source indication for EWMH requests: pager/direct action.
	sourceIndication = 2
	iconicState      = 3
)

// sendRootMessage sends a 32-bit client message about windowID to the root
// window, where the window manager picks it up. The message is built by hand
// because some xgbutil ewmh request helpers panic on this library version.
func (c *Connection) sendRootMessage(windowID xproto.Window, atomName string, data ...uint32) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len(atomName)), atomName).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}

	payload := make([]uint32, 5)
	copy(payload, data)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Activate raises and focuses a window via _NET_ACTIVE_WINDOW.
func (c *Connection) Activate(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication)
}

// Iconify asks the window manager to minimize a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState)
}
