package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/1broseidon/pintodo/internal/bridge"
)

// PickLevel asks the user for a stacking level, starting at current.
func PickLevel(current bridge.Level) (bridge.Level, error) {
	selected := string(current)
	opts := make([]huh.Option[string], 0, len(bridge.Levels))
	for _, l := range bridge.Levels {
		opts = append(opts, huh.NewOption(levelLabel(l), string(l)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Window level").
				Description("Where the window sits in the stacking order").
				Options(opts...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return bridge.ParseLevel(selected)
}

func levelLabel(l bridge.Level) string {
	switch l {
	case bridge.LevelAlwaysOnTop:
		return "Always on top"
	case bridge.LevelDesktop:
		return "Desktop (below other windows)"
	default:
		return "Normal"
	}
}
