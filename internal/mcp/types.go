package mcp

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// AckOutput is returned by tools whose only result is success.
type AckOutput struct {
	OK bool `json:"ok"`
}

// OpacityOutput is the output for the toggle_opacity tool.
type OpacityOutput struct {
	// WindowPresent is false when the host had no window to change.
	WindowPresent bool    `json:"window_present"`
	Opacity       float64 `json:"opacity,omitempty"`
}

// SetLevelInput is the input for the set_window_level tool.
type SetLevelInput struct {
	Level string `json:"level" jsonschema:"required,Stacking level: alwaysOnTop, desktop or normal"`
}

// LevelOutput is the output for the level tools.
type LevelOutput struct {
	Level string `json:"level"`
}

// StatusOutput is the output for the window_status tool.
type StatusOutput struct {
	WindowPresent bool    `json:"window_present"`
	Visible       bool    `json:"visible"`
	Opacity       float64 `json:"opacity"`
	Level         string  `json:"level"`
	BridgeReady   bool    `json:"bridge_ready"`
	Generation    uint64  `json:"generation"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}
