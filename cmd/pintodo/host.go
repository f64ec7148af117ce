package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/pintodo/internal/bridge"
	"github.com/1broseidon/pintodo/internal/config"
	"github.com/1broseidon/pintodo/internal/content"
	"github.com/1broseidon/pintodo/internal/host"
	"github.com/1broseidon/pintodo/internal/platform"
)

func runHost(args []string) int {
	fs := flag.NewFlagSet("host", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/pintodo/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintodo host [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the window host in the foreground. If a host is already running,")
		fmt.Fprintln(os.Stderr, "activate it and exit.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "host takes no arguments")
		fs.Usage()
		return 2
	}

	var cfg *config.Config
	var err error
	if *path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(*path)
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	socketPath, err := hostSocket(cfg)
	if err != nil {
		log.Fatalf("Failed to resolve bridge socket: %v", err)
	}

	// Single instance: hand over to a running host.
	existing := bridge.NewClient(socketPath)
	existing.SetTimeout(time.Second)
	if existing.Ping() == nil {
		if err := existing.Activate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		logger.Info("host already running, activated it", "socket", socketPath)
		return 0
	}

	backend, err := platform.NewX11Backend(logger)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	devMode := config.DevMode()
	exe, err := os.Executable()
	if err != nil && devMode {
		logger.Warn("cannot resolve own executable, inspector disabled", "err", err)
	}

	h := host.New(host.Options{
		Config:        cfg,
		Backend:       backend,
		Loader:        content.NewLoader(nil, logger),
		Launcher:      content.NewLauncher(logger),
		Logger:        logger,
		LevelVar:      levelVar,
		SocketPath:    socketPath,
		WebSocketAddr: cfg.Bridge.WebSocketAddr,
		DevMode:       devMode,
		Executable:    exe,
	})

	dispatcher := bridge.NewDispatcher(h, logger)
	dispatcher.SetTrace(devMode)

	server := bridge.NewServer(socketPath, dispatcher, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start bridge: %v", err)
	}
	defer server.Stop()

	if addr := cfg.Bridge.WebSocketAddr; addr != "" {
		ws := bridge.NewWebSocketServer(addr, cfg.Bridge.AllowedOrigins, dispatcher, logger)
		if err := ws.Start(); err != nil {
			logger.Warn("websocket bridge disabled", "addr", addr, "err", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				ws.Stop(ctx)
			}()
		}
	}

	reload := func(next *config.Config) {
		if err := h.ApplyConfig(next); err != nil {
			logger.Warn("config not applied", "err", err)
			return
		}
		logger.Info("configuration reloaded", "path", next.Path())
	}

	if watcher, err := config.NewWatcher(cfg.Path(), logger, reload); err != nil {
		logger.Warn("config file watching disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					next, err := config.LoadFromPath(cfg.Path())
					if err != nil {
						logger.Warn("config reload failed", "err", err)
						continue
					}
					reload(next)
					continue
				}
				logger.Info("signal received, quitting", "signal", sig.String())
				h.Quit()
			case <-h.Done():
				return
			}
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- h.Run(ctx)
	}()

	logger.Info("pintodo host started", "socket", socketPath, "shortcut", cfg.Shortcut, "dev", devMode)

	// Host shutdown stops the backend, which ends the event loop.
	backend.EventLoop()

	if err := <-runErr; err != nil {
		logger.Error("host stopped", "err", err)
		return 1
	}
	logger.Info("pintodo host stopped")
	return 0
}
