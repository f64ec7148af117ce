package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/pintodo/internal/bridge"
	"github.com/1broseidon/pintodo/internal/config"
	"github.com/1broseidon/pintodo/internal/platform"
	"github.com/google/uuid"
)

var (
	ErrNoWindow       = errors.New("no window")
	ErrBridgeNotReady = errors.New("bridge not ready")
	ErrStaleSession   = errors.New("stale session")
	ErrPopupBlocked   = errors.New("secondary windows are not allowed")
	ErrStopped        = errors.New("host stopped")
)

// ContentLoader checks that the window content is reachable.
type ContentLoader interface {
	Load(ctx context.Context, rawURL string) error
}

// ProcessLauncher starts helper processes for the host.
type ProcessLauncher interface {
	Launch(name string, argv []string, env map[string]string) error
	// Stop terminates the processes launched under name without waiting.
	Stop(name string)
	StopAll()
}

// State is everything the host mutates. It is only touched on the control
// goroutine.
type State struct {
	Window     platform.Window
	Generation uint64
	Level      bridge.Level
	// ShownOnce is reset for every window generation.
	ShownOnce   bool
	BridgeReady bool
	Session     string
}

// Options wire a Host to its collaborators.
type Options struct {
	Config  *config.Config
	Backend platform.Backend
	Loader  ContentLoader
	// Launcher may be nil when no processes are ever launched.
	Launcher ProcessLauncher
	Logger   *slog.Logger
	// LevelVar, when set, follows log_level on config reloads.
	LevelVar *slog.LevelVar

	SocketPath    string
	WebSocketAddr string
	DevMode       bool
	// Executable is used to launch "<self> inspect" in development mode.
	Executable string

	NewSession func() string
	Now        func() time.Time
}

// Host owns the single window and serializes every state change on one
// control goroutine. X11 callbacks, bridge handlers and signal handlers
// post closures to it and wait for them to finish.
type Host struct {
	opts    Options
	backend platform.Backend
	logger  *slog.Logger

	tasks    chan func()
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
	doneOnce sync.Once

	// Owned by the control goroutine.
	cfg               *config.Config
	state             State
	ctx               context.Context
	started           time.Time
	stopping          bool
	inspectorLaunched bool
}

var _ bridge.Host = (*Host)(nil)

// New creates a host. Nothing happens until Run.
func New(opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewSession == nil {
		opts.NewSession = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}

	level := bridge.LevelAlwaysOnTop
	if !opts.Config.Window.AlwaysOnTop {
		level = bridge.LevelNormal
	}

	return &Host{
		opts:    opts,
		backend: opts.Backend,
		logger:  opts.Logger,
		tasks:   make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		cfg:     opts.Config,
		state:   State{Level: level},
		ctx:     context.Background(),
	}
}

// Run registers the shortcut, creates the window and processes tasks until
// Quit is called or ctx is cancelled. Only window creation failure is fatal.
func (h *Host) Run(ctx context.Context) error {
	h.ctx = ctx
	h.started = h.opts.Now()

	h.registerShortcut()
	if err := h.createWindow(); err != nil {
		h.shutdown()
		return err
	}

	for {
		select {
		case task := <-h.tasks:
			task()
		case <-h.quit:
			h.shutdown()
			return nil
		case <-ctx.Done():
			h.shutdown()
			return nil
		}
	}
}

// Quit asks Run to return. Safe to call from any goroutine, more than once.
func (h *Host) Quit() {
	h.quitOnce.Do(func() { close(h.quit) })
}

// Done is closed once the host has shut down.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

func (h *Host) shutdown() {
	h.stopping = true
	h.logger.Info("host shutting down")
	h.doneOnce.Do(func() { close(h.done) })

	h.backend.UnregisterAllShortcuts()
	if w := h.state.Window; w != nil {
		h.state.Window = nil
		w.Destroy()
	}
	if h.opts.Launcher != nil {
		h.opts.Launcher.StopAll()
	}
	h.backend.Stop()
}

// do runs fn on the control goroutine and waits for it.
func (h *Host) do(fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case h.tasks <- task:
	case <-h.done:
		return ErrStopped
	}
	<-finished
	return nil
}

func (h *Host) post(fn func()) {
	go func() { _ = h.do(fn) }()
}

// Snapshot returns a copy of the current state.
func (h *Host) Snapshot() (State, error) {
	var s State
	err := h.do(func() { s = h.state })
	return s, err
}

// Ready completes the handshake for the current window. The first call for
// a window generation shows the window and enables the bridge; later calls
// return the same session.
func (h *Host) Ready(origin string) (bridge.ReadyData, error) {
	var data bridge.ReadyData
	var err error
	if stopErr := h.do(func() { data, err = h.ready(origin) }); stopErr != nil {
		return data, stopErr
	}
	return data, err
}

// Activate recreates the window when none exists.
func (h *Host) Activate() error {
	var err error
	if stopErr := h.do(func() { err = h.activate() }); stopErr != nil {
		return stopErr
	}
	return err
}

// Status reports the host state.
func (h *Host) Status() bridge.StatusData {
	var s bridge.StatusData
	_ = h.do(func() { s = h.status() })
	return s
}

// OpenWindow refuses every request for a secondary window.
func (h *Host) OpenWindow(url string) error {
	h.logger.Warn("blocked secondary window", "url", url)
	return ErrPopupBlocked
}

// MinimizeWindow iconifies the window.
func (h *Host) MinimizeWindow(session string) error {
	var err error
	if stopErr := h.do(func() { err = h.minimize(session) }); stopErr != nil {
		return stopErr
	}
	return err
}

// CloseWindow terminates the host.
func (h *Host) CloseWindow(session string) error {
	var err error
	if stopErr := h.do(func() { err = h.closeWindow(session) }); stopErr != nil {
		return stopErr
	}
	return err
}

// ToggleOpacity flips the window between opaque and dimmed.
func (h *Host) ToggleOpacity(session string) (*bridge.OpacityData, error) {
	var data *bridge.OpacityData
	var err error
	if stopErr := h.do(func() { data, err = h.toggleOpacity(session) }); stopErr != nil {
		return nil, stopErr
	}
	return data, err
}

// SetWindowLevel changes the stacking level.
func (h *Host) SetWindowLevel(session, level string) (bridge.LevelData, error) {
	var data bridge.LevelData
	var err error
	if stopErr := h.do(func() { data, err = h.setLevel(session, level) }); stopErr != nil {
		return data, stopErr
	}
	return data, err
}

// GetWindowLevel returns the stacking level.
func (h *Host) GetWindowLevel(session string) (bridge.LevelData, error) {
	var data bridge.LevelData
	var err error
	if stopErr := h.do(func() { data, err = h.getLevel(session) }); stopErr != nil {
		return data, stopErr
	}
	return data, err
}

// ToggleVisibility hides a visible window, or shows and focuses a hidden one.
func (h *Host) ToggleVisibility() error {
	return h.do(h.toggleVisibility)
}

// ApplyConfig swaps in a reloaded config. A changed shortcut is
// re-registered and the log level follows log_level. Window geometry applies
// to the next window created.
func (h *Host) ApplyConfig(cfg *config.Config) error {
	return h.do(func() { h.applyConfig(cfg) })
}

func (h *Host) applyConfig(cfg *config.Config) {
	old := h.cfg
	h.cfg = cfg

	if h.opts.LevelVar != nil {
		h.opts.LevelVar.Set(cfg.SlogLevel())
	}
	if old == nil || old.Shortcut != cfg.Shortcut {
		h.backend.UnregisterAllShortcuts()
		h.registerShortcut()
	}
	h.logger.Info("config applied", "shortcut", cfg.Shortcut, "log_level", cfg.LogLevel)
}

func (h *Host) registerShortcut() {
	accelerator := h.cfg.Shortcut
	err := h.backend.RegisterShortcut(accelerator, func() {
		h.post(h.toggleVisibility)
	})
	if err != nil {
		h.logger.Warn("failed to register global shortcut", "shortcut", accelerator, "err", err)
		return
	}
	h.logger.Info("global shortcut registered", "shortcut", accelerator)
}

func (h *Host) status() bridge.StatusData {
	s := bridge.StatusData{
		Level:       h.state.Level,
		BridgeReady: h.state.BridgeReady,
		Generation:  h.state.Generation,
		DevMode:     h.opts.DevMode,
	}
	if !h.started.IsZero() {
		s.UptimeSeconds = int64(h.opts.Now().Sub(h.started).Seconds())
	}
	if w := h.state.Window; w != nil {
		s.WindowPresent = true
		s.Visible = w.Visible()
		s.Opacity = w.Opacity()
	}
	return s
}
