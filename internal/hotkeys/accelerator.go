package hotkeys

import (
	"fmt"
	"strings"
)

var modifierNames = map[string]string{
	"commandorcontrol": "Control",
	"cmdorctrl":        "Control",
	"control":          "Control",
	"ctrl":             "Control",
	"command":          "Mod4",
	"cmd":              "Mod4",
	"super":            "Mod4",
	"meta":             "Mod4",
	"alt":              "Mod1",
	"option":           "Mod1",
	"altgr":            "Mod5",
	"shift":            "Shift",
}

// Named keys whose X keysym differs from the accelerator spelling.
var keyNames = map[string]string{
	"space":     "space",
	"enter":     "Return",
	"return":    "Return",
	"tab":       "Tab",
	"esc":       "Escape",
	"escape":    "Escape",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"plus":      "plus",
	"minus":     "minus",
}

// ParseAccelerator translates a "+"-separated accelerator such as
// "CommandOrControl+Shift+T" into xgbutil key-sequence syntax
// ("Control-Shift-t"). Exactly one non-modifier key is required.
func ParseAccelerator(accelerator string) (string, error) {
	parts := strings.Split(strings.TrimSpace(accelerator), "+")
	if len(parts) == 0 || strings.TrimSpace(accelerator) == "" {
		return "", fmt.Errorf("empty accelerator")
	}

	var mods []string
	seen := make(map[string]bool)
	key := ""
	for i, raw := range parts {
		part := strings.TrimSpace(raw)
		if part == "" {
			return "", fmt.Errorf("invalid accelerator %q: empty segment", accelerator)
		}
		if mod, ok := modifierNames[strings.ToLower(part)]; ok && i < len(parts)-1 {
			if !seen[mod] {
				mods = append(mods, mod)
				seen[mod] = true
			}
			continue
		}
		if i != len(parts)-1 {
			return "", fmt.Errorf("invalid accelerator %q: %q is not a modifier", accelerator, part)
		}
		k, err := translateKey(part)
		if err != nil {
			return "", fmt.Errorf("invalid accelerator %q: %w", accelerator, err)
		}
		key = k
	}

	return strings.Join(append(mods, key), "-"), nil
}

func translateKey(part string) (string, error) {
	lower := strings.ToLower(part)
	if name, ok := keyNames[lower]; ok {
		return name, nil
	}
	if len(part) == 1 {
		c := part[0]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return lower, nil
		}
		return "", fmt.Errorf("unsupported key %q", part)
	}
	// Function keys F1..F24.
	if (part[0] == 'F' || part[0] == 'f') && len(part) <= 3 {
		n := 0
		for _, d := range part[1:] {
			if d < '0' || d > '9' {
				return "", fmt.Errorf("unsupported key %q", part)
			}
			n = n*10 + int(d-'0')
		}
		if n >= 1 && n <= 24 {
			return fmt.Sprintf("F%d", n), nil
		}
	}
	if _, isMod := modifierNames[lower]; isMod {
		return "", fmt.Errorf("missing key after modifiers")
	}
	return "", fmt.Errorf("unsupported key %q", part)
}
