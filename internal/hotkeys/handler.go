package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler manages global keyboard shortcuts grabbed on the root window.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	mu         sync.Mutex
	registered []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler for the given connection.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:   xu,
		root: root,
	}
}

// Register grabs accelerator (e.g. "CommandOrControl+Shift+T") and runs
// callback on every press. The grab fails when another client already owns
// the combination.
func (h *Handler) Register(accelerator string, callback func()) error {
	sequence, err := ParseAccelerator(accelerator)
	if err != nil {
		return err
	}
	if err := h.RegisterSequence(sequence, callback); err != nil {
		return fmt.Errorf("failed to grab %s (%s): %w", accelerator, sequence, err)
	}
	return nil
}

// RegisterSequence grabs a key sequence already in xgbutil syntax ("Control-Shift-t").
func (h *Handler) RegisterSequence(sequence string, callback func()) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, sequence, true)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.registered = append(h.registered, sequence)
	h.mu.Unlock()
	return nil
}

// Registered returns the sequences currently grabbed.
func (h *Handler) Registered() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.registered...)
}

// UnregisterAll releases every grab and callback on the root window.
func (h *Handler) UnregisterAll() {
	h.mu.Lock()
	sequences := h.registered
	h.registered = nil
	h.mu.Unlock()

	for _, seq := range sequences {
		mods, keycodes, err := keybind.ParseString(h.xu, seq)
		if err != nil {
			continue
		}
		for _, kc := range keycodes {
			keybind.Ungrab(h.xu, h.root, mods, kc)
		}
	}
	keybind.Detach(h.xu, h.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the given lock masks (including
// none), skipping zero and duplicate masks.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
