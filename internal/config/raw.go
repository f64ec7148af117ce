package config

// Raw* types mirror the YAML file. Pointer fields distinguish "not set" from
// zero values so a file only overrides the keys it names.

type RawWindowConfig struct {
	Title       *string `yaml:"title"`
	X           *int    `yaml:"x"`
	Y           *int    `yaml:"y"`
	Width       *int    `yaml:"width"`
	Height      *int    `yaml:"height"`
	Resizable   *bool   `yaml:"resizable"`
	AlwaysOnTop *bool   `yaml:"always_on_top"`
	Background  *string `yaml:"background"`
	Icon        *string `yaml:"icon"`
}

type RawContentConfig struct {
	URL     *string  `yaml:"url"`
	Command []string `yaml:"command"`
}

type RawBridgeConfig struct {
	Socket         *string  `yaml:"socket"`
	WebSocketAddr  *string  `yaml:"websocket_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RawLifecycleConfig struct {
	KeepAliveWithoutWindows *bool `yaml:"keep_alive_without_windows"`
}

type RawDevConfig struct {
	InspectorCommand []string `yaml:"inspector_command"`
}

type RawConfig struct {
	LogLevel  *string             `yaml:"log_level"`
	Shortcut  *string             `yaml:"shortcut"`
	Window    *RawWindowConfig    `yaml:"window"`
	Content   *RawContentConfig   `yaml:"content"`
	Bridge    *RawBridgeConfig    `yaml:"bridge"`
	Lifecycle *RawLifecycleConfig `yaml:"lifecycle"`
	Dev       *RawDevConfig       `yaml:"dev"`
}

// apply overlays the raw values on top of cfg.
func (r RawConfig) apply(cfg *Config) {
	setString(&cfg.LogLevel, r.LogLevel)
	setString(&cfg.Shortcut, r.Shortcut)

	if w := r.Window; w != nil {
		setString(&cfg.Window.Title, w.Title)
		setInt(&cfg.Window.X, w.X)
		setInt(&cfg.Window.Y, w.Y)
		setInt(&cfg.Window.Width, w.Width)
		setInt(&cfg.Window.Height, w.Height)
		setBool(&cfg.Window.Resizable, w.Resizable)
		setBool(&cfg.Window.AlwaysOnTop, w.AlwaysOnTop)
		setString(&cfg.Window.Background, w.Background)
		setString(&cfg.Window.Icon, w.Icon)
	}

	if c := r.Content; c != nil {
		setString(&cfg.Content.URL, c.URL)
		if c.Command != nil {
			cfg.Content.Command = append([]string(nil), c.Command...)
		}
	}

	if b := r.Bridge; b != nil {
		setString(&cfg.Bridge.Socket, b.Socket)
		setString(&cfg.Bridge.WebSocketAddr, b.WebSocketAddr)
		if b.AllowedOrigins != nil {
			cfg.Bridge.AllowedOrigins = append([]string(nil), b.AllowedOrigins...)
		}
	}

	if l := r.Lifecycle; l != nil && l.KeepAliveWithoutWindows != nil {
		v := *l.KeepAliveWithoutWindows
		cfg.Lifecycle.KeepAliveWithoutWindows = &v
	}

	if d := r.Dev; d != nil && d.InspectorCommand != nil {
		cfg.Dev.InspectorCommand = append([]string(nil), d.InspectorCommand...)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
