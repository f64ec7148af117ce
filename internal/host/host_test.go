package host

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/pintodo/internal/bridge"
	"github.com/1broseidon/pintodo/internal/config"
	"github.com/1broseidon/pintodo/internal/content"
	"github.com/1broseidon/pintodo/internal/platform"
)

type fakeWindow struct {
	mu        sync.Mutex
	id        platform.WindowID
	opts      platform.WindowOptions
	visible   bool
	opacity   float64
	stacking  platform.Stacking
	minimized int
	focused   int
	destroyed bool
	onClosed  []func()
	// stackErr, when set, fails SetStacking.
	stackErr error
}

func (w *fakeWindow) ID() platform.WindowID { return w.id }

func (w *fakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = true
	return nil
}

func (w *fakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = false
	return nil
}

func (w *fakeWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focused++
	return nil
}

func (w *fakeWindow) Minimize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized++
	w.visible = false
	return nil
}

func (w *fakeWindow) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) Opacity() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opacity
}

func (w *fakeWindow) SetOpacity(o float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opacity = o
	return nil
}

func (w *fakeWindow) Stacking() platform.Stacking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stacking
}

func (w *fakeWindow) SetStacking(s platform.Stacking) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stackErr != nil {
		return w.stackErr
	}
	w.stacking = s
	return nil
}

func (w *fakeWindow) OnClosed(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClosed = append(w.onClosed, fn)
}

// Destroy doubles as the window manager closing the window.
func (w *fakeWindow) Destroy() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.visible = false
	callbacks := w.onClosed
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}

type fakeBackend struct {
	mu          sync.Mutex
	traits      platform.Traits
	windows     []*fakeWindow
	shortcuts   map[string]func()
	unregisters int
	stopped     bool
	createErr   error
}

func newFakeBackend(traits platform.Traits) *fakeBackend {
	return &fakeBackend{traits: traits, shortcuts: make(map[string]func())}
}

func (b *fakeBackend) CreateWindow(opts platform.WindowOptions) (platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return nil, b.createErr
	}
	w := &fakeWindow{
		id:       platform.WindowID(100 + len(b.windows)),
		opts:     opts,
		opacity:  1,
		stacking: opts.Stacking,
	}
	b.windows = append(b.windows, w)
	return w, nil
}

func (b *fakeBackend) Traits() platform.Traits { return b.traits }

func (b *fakeBackend) RegisterShortcut(accelerator string, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shortcuts[accelerator] = fn
	return nil
}

func (b *fakeBackend) UnregisterAllShortcuts() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shortcuts = make(map[string]func())
	b.unregisters++
}

func (b *fakeBackend) EventLoop() {}

func (b *fakeBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
}

func (b *fakeBackend) press(accelerator string) bool {
	b.mu.Lock()
	fn := b.shortcuts[accelerator]
	b.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (b *fakeBackend) window(i int) *fakeWindow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windows[i]
}

func (b *fakeBackend) windowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.windows)
}

type fakeLauncher struct {
	mu       sync.Mutex
	launches []launch
	stops    []string
	stopped  bool
}

type launch struct {
	name string
	argv []string
	env  map[string]string
}

func (l *fakeLauncher) Launch(name string, argv []string, env map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, launch{name, argv, env})
	return nil
}

func (l *fakeLauncher) Stop(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stops = append(l.stops, name)
}

func (l *fakeLauncher) StopAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
}

type fakeLoader struct {
	err error

	mu    sync.Mutex
	loads []string
}

func (l *fakeLoader) Load(ctx context.Context, rawURL string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, rawURL)
	return l.err
}

func (l *fakeLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.loads)
}

type testHost struct {
	*Host
	backend  *fakeBackend
	launcher *fakeLauncher
	runErr   chan error
	cancel   context.CancelFunc
}

func boolPtr(b bool) *bool { return &b }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Lifecycle.KeepAliveWithoutWindows = boolPtr(false)
	return cfg
}

func startHost(t *testing.T, cfg *config.Config, traits platform.Traits) *testHost {
	t.Helper()
	return startHostWith(t, cfg, traits, nil)
}

func startHostWith(t *testing.T, cfg *config.Config, traits platform.Traits, loader ContentLoader) *testHost {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	backend := newFakeBackend(traits)
	launcher := &fakeLauncher{}
	sessions := 0
	h := New(Options{
		Config:     cfg,
		Backend:    backend,
		Loader:     loader,
		Launcher:   launcher,
		Logger:     slog.New(slog.DiscardHandler),
		SocketPath: "/run/test/pintodo.sock",
		NewSession: func() string {
			sessions++
			return "session-" + strconv.Itoa(sessions)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	th := &testHost{Host: h, backend: backend, launcher: launcher, runErr: make(chan error, 1), cancel: cancel}
	go func() { th.runErr <- h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-th.runErr:
		case <-time.After(2 * time.Second):
		}
	})

	if _, err := h.Snapshot(); err != nil {
		t.Fatalf("host did not start: %v", err)
	}
	return th
}

func (th *testHost) ready(t *testing.T) string {
	t.Helper()
	data, err := th.Ready("test")
	if err != nil {
		t.Fatalf("Ready: %v", err)
	}
	return data.Session
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (th *testHost) waitExit(t *testing.T) error {
	t.Helper()
	select {
	case err := <-th.runErr:
		th.runErr <- err
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("host did not quit")
		return nil
	}
}

func TestNextOpacity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.0, 0.8},
		{0.8, 1.0},
		{0.5, 1.0},
		{0, 1.0},
		{0.9999, 1.0},
	}
	for _, tt := range tests {
		if got := NextOpacity(tt.in); got != tt.want {
			t.Errorf("NextOpacity(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWindowCreatedHiddenAndShownOnReady(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	win := th.backend.window(0)

	if win.Visible() {
		t.Fatalf("window must start hidden")
	}
	o := win.opts
	if o.Bounds != (platform.Rect{X: 100, Y: 100, Width: 380, Height: 600}) || !o.Resizable {
		t.Fatalf("unexpected window options: %+v", o)
	}
	if o.Stacking != platform.StackingAbove || o.Background != 0xffffff || o.Title != "pintodo" {
		t.Fatalf("unexpected window options: %+v", o)
	}

	first := th.ready(t)
	if !win.Visible() {
		t.Fatalf("ready should show the window")
	}

	// A user hide is never undone by a repeated handshake.
	if !th.backend.press(config.DefaultShortcut) {
		t.Fatalf("shortcut not registered")
	}
	waitFor(t, "hide", func() bool { return !win.Visible() })
	if second := th.ready(t); second != first {
		t.Fatalf("second ready = %q, want %q", second, first)
	}
	if win.Visible() {
		t.Fatalf("repeated ready re-showed a hidden window")
	}
}

func TestToggleOpacity(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	session := th.ready(t)
	win := th.backend.window(0)

	op, err := th.ToggleOpacity(session)
	if err != nil || op.Opacity != DimOpacity {
		t.Fatalf("first toggle = %+v, %v", op, err)
	}
	op, err = th.ToggleOpacity(session)
	if err != nil || op.Opacity != FullOpacity || win.Opacity() != FullOpacity {
		t.Fatalf("second toggle = %+v, %v", op, err)
	}

	win.SetOpacity(0.42)
	op, err = th.ToggleOpacity(session)
	if err != nil || op.Opacity != FullOpacity {
		t.Fatalf("toggle from 0.42 = %+v, %v", op, err)
	}
}

func TestWindowLevel(t *testing.T) {
	tests := []struct {
		name   string
		traits platform.Traits
		level  string
		want   platform.Stacking
	}{
		{"desktop without tier", platform.Traits{}, "desktop", platform.StackingNormal},
		{"desktop with tier", platform.Traits{DesktopTier: true}, "desktop", platform.StackingDesktop},
		{"normal", platform.Traits{DesktopTier: true}, "normal", platform.StackingNormal},
		{"always on top", platform.Traits{}, "alwaysOnTop", platform.StackingAbove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := startHost(t, nil, tt.traits)
			session := th.ready(t)

			got, err := th.GetWindowLevel(session)
			if err != nil || got.Level != bridge.LevelAlwaysOnTop {
				t.Fatalf("initial level = %+v, %v", got, err)
			}

			set, err := th.SetWindowLevel(session, tt.level)
			if err != nil || string(set.Level) != tt.level {
				t.Fatalf("SetWindowLevel = %+v, %v", set, err)
			}
			if s := th.backend.window(0).Stacking(); s != tt.want {
				t.Fatalf("stacking = %v, want %v", s, tt.want)
			}
			got, _ = th.GetWindowLevel(session)
			if string(got.Level) != tt.level {
				t.Fatalf("level = %q, want %q", got.Level, tt.level)
			}

			// Re-setting only re-confirms.
			if _, err := th.SetWindowLevel(session, tt.level); err != nil {
				t.Fatalf("repeat set: %v", err)
			}
			if s := th.backend.window(0).Stacking(); s != tt.want {
				t.Fatalf("stacking after repeat = %v", s)
			}
		})
	}
}

func TestWindowLevel_Invalid(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	session := th.ready(t)

	if _, err := th.SetWindowLevel(session, "floating"); !errors.Is(err, bridge.ErrInvalidLevel) {
		t.Fatalf("err = %v, want ErrInvalidLevel", err)
	}
	got, _ := th.GetWindowLevel(session)
	if got.Level != bridge.LevelAlwaysOnTop {
		t.Fatalf("invalid level changed state to %q", got.Level)
	}
}

func TestDefaultLevelFollowsConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Window.AlwaysOnTop = false
	th := startHost(t, cfg, platform.Traits{})

	if s := th.backend.window(0).opts.Stacking; s != platform.StackingNormal {
		t.Fatalf("stacking = %v, want normal", s)
	}
	got, _ := th.GetWindowLevel(th.ready(t))
	if got.Level != bridge.LevelNormal {
		t.Fatalf("level = %q, want normal", got.Level)
	}
}

func TestShortcutAlternatesVisibility(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	win := th.backend.window(0)

	for i := 1; i <= 3; i++ {
		th.backend.press(config.DefaultShortcut)
		waitFor(t, "show", func() bool { return win.Visible() })
		win.mu.Lock()
		focused := win.focused
		win.mu.Unlock()
		if focused != i {
			t.Fatalf("focus count = %d after show %d", focused, i)
		}

		th.backend.press(config.DefaultShortcut)
		waitFor(t, "hide", func() bool { return !win.Visible() })
	}
}

func TestSessionChecks(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})

	if err := th.MinimizeWindow(""); !errors.Is(err, ErrBridgeNotReady) {
		t.Fatalf("before ready: %v", err)
	}
	if _, err := th.ToggleOpacity("guess"); !errors.Is(err, ErrBridgeNotReady) {
		t.Fatalf("before ready with token: %v", err)
	}

	session := th.ready(t)
	if err := th.MinimizeWindow("session-999"); !errors.Is(err, ErrStaleSession) {
		t.Fatalf("wrong token: %v", err)
	}
	if err := th.MinimizeWindow(session); err != nil {
		t.Fatalf("minimize: %v", err)
	}
	win := th.backend.window(0)
	win.mu.Lock()
	defer win.mu.Unlock()
	if win.minimized != 1 {
		t.Fatalf("minimized = %d", win.minimized)
	}
}

func TestOpenWindowAlwaysRejected(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	th.ready(t)
	for _, u := range []string{"https://example.com", "file:///etc/passwd", ""} {
		if err := th.OpenWindow(u); !errors.Is(err, ErrPopupBlocked) {
			t.Fatalf("OpenWindow(%q) = %v", u, err)
		}
	}
	if n := th.backend.windowCount(); n != 1 {
		t.Fatalf("window count = %d", n)
	}
}

func TestClosingOnlyWindowQuits(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	th.backend.window(0).Destroy()

	if err := th.waitExit(t); err != nil {
		t.Fatalf("Run: %v", err)
	}
	th.backend.mu.Lock()
	defer th.backend.mu.Unlock()
	if !th.backend.stopped || th.backend.unregisters == 0 {
		t.Fatalf("shutdown must stop the backend and release shortcuts")
	}
	if !th.launcher.stopped {
		t.Fatalf("shutdown must stop launched processes")
	}
}

func TestCloseWindowCommandQuits(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	if err := th.CloseWindow(th.ready(t)); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	th.waitExit(t)
	if !th.backend.window(0).destroyed {
		t.Fatalf("window should be destroyed at exit")
	}
	if err := th.Activate(); !errors.Is(err, ErrStopped) {
		t.Fatalf("Activate after quit = %v, want ErrStopped", err)
	}
}

func TestKeepAliveAndActivate(t *testing.T) {
	cfg := testConfig()
	cfg.Lifecycle.KeepAliveWithoutWindows = boolPtr(true)
	cfg.Content.Command = []string{"todo-ui"}
	th := startHost(t, cfg, platform.Traits{})

	old := th.ready(t)
	if _, err := th.SetWindowLevel(old, "normal"); err != nil {
		t.Fatalf("SetWindowLevel: %v", err)
	}
	th.backend.window(0).Destroy()

	waitFor(t, "window cleared", func() bool {
		s, _ := th.Snapshot()
		return s.Window == nil
	})
	if st := th.Status(); st.WindowPresent || st.BridgeReady {
		t.Fatalf("status after close = %+v", st)
	}
	if _, err := th.Ready("test"); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("ready without window = %v", err)
	}
	if err := th.MinimizeWindow(old); err != nil {
		t.Fatalf("minimize without window = %v, want no-op", err)
	}
	if data, err := th.ToggleOpacity(old); err != nil || data != nil {
		t.Fatalf("toggle without window = %+v, %v; want empty result", data, err)
	}
	th.launcher.mu.Lock()
	stops := append([]string(nil), th.launcher.stops...)
	th.launcher.mu.Unlock()
	if len(stops) != 1 || stops[0] != contentProcess {
		t.Fatalf("stops after close = %v, want the content process", stops)
	}

	// The level is process-wide and survives the window.
	if data, err := th.GetWindowLevel(old); err != nil || data.Level != bridge.LevelNormal {
		t.Fatalf("level without window = %+v, %v; want normal", data, err)
	}
	if _, err := th.SetWindowLevel("", "floating"); !errors.Is(err, bridge.ErrInvalidLevel) {
		t.Fatalf("invalid level without window = %v", err)
	}
	if data, err := th.SetWindowLevel("", "alwaysOnTop"); err != nil || data.Level != bridge.LevelAlwaysOnTop {
		t.Fatalf("set without window = %+v, %v", data, err)
	}
	if data, _ := th.GetWindowLevel(""); data.Level != bridge.LevelAlwaysOnTop {
		t.Fatalf("level after set without window = %q", data.Level)
	}

	if err := th.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := th.Activate(); err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if n := th.backend.windowCount(); n != 2 {
		t.Fatalf("window count = %d, want 2", n)
	}

	recreated := th.backend.window(1)
	if recreated.opts.Stacking != platform.StackingAbove {
		t.Fatalf("recreated window stacking = %v, want current level", recreated.opts.Stacking)
	}
	fresh := th.ready(t)
	if fresh == old {
		t.Fatalf("recreated window reused session")
	}
	if err := th.MinimizeWindow(old); !errors.Is(err, ErrStaleSession) {
		t.Fatalf("old session = %v", err)
	}
	if st := th.Status(); st.Generation != 2 || !st.WindowPresent {
		t.Fatalf("status = %+v", st)
	}

	th.launcher.mu.Lock()
	defer th.launcher.mu.Unlock()
	if len(th.launcher.launches) != 2 {
		t.Fatalf("content launches = %d, want one per window", len(th.launcher.launches))
	}
	env := th.launcher.launches[1].env
	if env[content.EnvWindowID] != "101" || env[content.EnvSocket] != "/run/test/pintodo.sock" {
		t.Fatalf("content env = %v", env)
	}
}

func TestMissingIconIsNotFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Window.Icon = filepath.Join(t.TempDir(), "missing.png")
	th := startHost(t, cfg, platform.Traits{})
	if icon := th.backend.window(0).opts.Icon; icon != "" {
		t.Fatalf("icon = %q, want empty", icon)
	}
}

func TestCreateWindowFailureIsFatal(t *testing.T) {
	backend := newFakeBackend(platform.Traits{})
	backend.createErr = errors.New("no display")
	h := New(Options{Config: testConfig(), Backend: backend, Logger: slog.New(slog.DiscardHandler)})
	if err := h.Run(context.Background()); err == nil {
		t.Fatalf("expected Run to fail")
	}
}

func TestApplyConfigReregistersShortcut(t *testing.T) {
	var lv slog.LevelVar
	backend := newFakeBackend(platform.Traits{})
	h := New(Options{
		Config:   testConfig(),
		Backend:  backend,
		Logger:   slog.New(slog.DiscardHandler),
		LevelVar: &lv,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	cfg := testConfig()
	cfg.Shortcut = "Alt+T"
	cfg.LogLevel = "error"
	if err := h.ApplyConfig(cfg); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if backend.press(config.DefaultShortcut) {
		t.Fatalf("old shortcut still registered")
	}
	if !backend.press("Alt+T") {
		t.Fatalf("new shortcut not registered")
	}
	if lv.Level() != slog.LevelError {
		t.Fatalf("log level = %v", lv.Level())
	}
}

func TestContentCertificateHandling(t *testing.T) {
	page := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(page, []byte("<html></html>"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := content.NewLoader(nil, slog.New(slog.DiscardHandler))
	if err := loader.Load(context.Background(), "file://"+filepath.ToSlash(page)); err != nil {
		t.Fatalf("file load = %v, want trusted", err)
	}

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	if err := loader.Load(context.Background(), srv.URL); !errors.Is(err, content.ErrCertificateRejected) {
		t.Fatalf("self-signed https load = %v, want ErrCertificateRejected", err)
	}
}

func TestContentLoadShowsWindow(t *testing.T) {
	loader := &fakeLoader{}
	th := startHostWith(t, nil, platform.Traits{}, loader)
	win := th.backend.window(0)

	waitFor(t, "window shown after load", win.Visible)
	s, _ := th.Snapshot()
	if s.BridgeReady || s.Session != "" {
		t.Fatalf("showing on load must not open the bridge: %+v", s)
	}
	if err := th.MinimizeWindow(""); !errors.Is(err, ErrBridgeNotReady) {
		t.Fatalf("command before ready = %v", err)
	}

	// The first show happened; ready never re-shows a hidden window.
	th.backend.press(config.DefaultShortcut)
	waitFor(t, "hide", func() bool { return !win.Visible() })
	th.ready(t)
	if win.Visible() {
		t.Fatalf("ready re-showed a window hidden after load")
	}
}

func TestContentLoadWaitsForContentCommand(t *testing.T) {
	cfg := testConfig()
	cfg.Content.Command = []string{"todo-ui"}
	loader := &fakeLoader{}
	th := startHostWith(t, cfg, platform.Traits{}, loader)
	win := th.backend.window(0)

	waitFor(t, "content load", func() bool { return loader.count() == 1 })
	th.Snapshot() // flush any task posted by the load
	if win.Visible() {
		t.Fatalf("window shown before the content process sent ready")
	}
	th.ready(t)
	if !win.Visible() {
		t.Fatalf("ready should show the window")
	}
}

func TestContentLoadFailureKeepsWindowHidden(t *testing.T) {
	loader := &fakeLoader{err: errors.New("unreachable")}
	th := startHostWith(t, nil, platform.Traits{}, loader)

	waitFor(t, "content load", func() bool { return loader.count() == 1 })
	th.Snapshot()
	if th.backend.window(0).Visible() {
		t.Fatalf("window shown after a failed load")
	}
}

func TestCloseWindowWithoutWindowQuits(t *testing.T) {
	cfg := testConfig()
	cfg.Lifecycle.KeepAliveWithoutWindows = boolPtr(true)
	th := startHost(t, cfg, platform.Traits{})

	th.backend.window(0).Destroy()
	waitFor(t, "window cleared", func() bool {
		s, _ := th.Snapshot()
		return s.Window == nil
	})

	if err := th.CloseWindow(""); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	select {
	case <-th.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("close-window with no window did not quit the host")
	}
}

func TestFailedStackingKeepsLevel(t *testing.T) {
	th := startHost(t, nil, platform.Traits{})
	session := th.ready(t)

	win := th.backend.window(0)
	win.mu.Lock()
	win.stackErr = errors.New("wm refused")
	win.mu.Unlock()

	if _, err := th.SetWindowLevel(session, "normal"); err == nil {
		t.Fatalf("expected stacking error")
	}
	got, _ := th.GetWindowLevel(session)
	if got.Level != bridge.LevelAlwaysOnTop {
		t.Fatalf("level = %q after failed apply, want alwaysOnTop", got.Level)
	}
}

func TestStackingFor(t *testing.T) {
	with := platform.Traits{DesktopTier: true}
	without := platform.Traits{}
	if StackingFor(bridge.LevelDesktop, with) != platform.StackingDesktop {
		t.Fatalf("desktop with tier")
	}
	if StackingFor(bridge.LevelDesktop, without) != platform.StackingNormal {
		t.Fatalf("desktop without tier")
	}
	if StackingFor(bridge.LevelAlwaysOnTop, without) != platform.StackingAbove {
		t.Fatalf("alwaysOnTop")
	}
	if StackingFor(bridge.LevelNormal, with) != platform.StackingNormal {
		t.Fatalf("normal")
	}
}
