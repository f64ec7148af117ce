package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"
)

// Environment variables handed to a launched content process.
const (
	EnvSocket     = "PINTODO_SOCKET"
	EnvWSAddr     = "PINTODO_WS_ADDR"
	EnvWindowID   = "PINTODO_WINDOW_ID"
	EnvContentURL = "PINTODO_CONTENT_URL"
)

// stopGrace is how long a process gets after SIGTERM before it is killed.
const stopGrace = 2 * time.Second

// Launcher starts named helper processes and stops them by name or together.
type Launcher struct {
	logger *slog.Logger

	mu    sync.Mutex
	procs []process
	wg    sync.WaitGroup
}

type process struct {
	name   string
	cancel context.CancelFunc
}

// NewLauncher creates a launcher.
func NewLauncher(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger}
}

// Launch starts argv with env added to the current environment. The process
// is reaped in the background; its exit is logged.
func (l *Launcher) Launch(name string, argv []string, env map[string]string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%s: empty command", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), envList(env)...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGrace

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}
	l.logger.Info("launched process", "name", name, "pid", cmd.Process.Pid)

	l.mu.Lock()
	l.procs = append(l.procs, process{name: name, cancel: cancel})
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			l.logger.Warn("process exited", "name", name, "err", err)
			return
		}
		l.logger.Debug("process exited", "name", name)
	}()
	return nil
}

// Stop sends SIGTERM to every process launched under name. It does not wait
// for them to exit.
func (l *Launcher) Stop(name string) {
	l.mu.Lock()
	var stop []context.CancelFunc
	kept := l.procs[:0]
	for _, p := range l.procs {
		if p.name == name {
			stop = append(stop, p.cancel)
			continue
		}
		kept = append(kept, p)
	}
	l.procs = kept
	l.mu.Unlock()

	for _, cancel := range stop {
		cancel()
	}
}

// StopAll terminates every launched process and waits for them to exit.
func (l *Launcher) StopAll() {
	l.mu.Lock()
	procs := l.procs
	l.procs = nil
	l.mu.Unlock()

	for _, p := range procs {
		p.cancel()
	}
	l.wg.Wait()
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
