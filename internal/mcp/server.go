package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pintodo/internal/bridge"
)

const (
	ServerName    = "pintodo"
	ServerVersion = "0.1.0"
)

// Controller is the bridge client surface the tools call.
type Controller interface {
	Status() (*bridge.StatusData, error)
	MinimizeWindow() error
	CloseWindow() error
	ToggleOpacity() (*bridge.OpacityData, error)
	SetWindowLevel(level bridge.Level) (bridge.Level, error)
	GetWindowLevel() (bridge.Level, error)
}

var _ Controller = (*bridge.Client)(nil)

// Server exposes the window commands of a running host as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards every tool call to ctl.
func NewServer(ctl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{ctl: ctl, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves one session over t. Used with in-memory transports.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize the pinned to-do window. A no-op when the host has no window.",
	}, s.handleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close the pinned to-do window and terminate the host process.",
	}, s.handleClose)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_opacity",
		Description: "Toggle the window between fully opaque (1.0) and dimmed (0.8). Returns the new opacity.",
	}, s.handleToggleOpacity)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_level",
		Description: "Set the window stacking level: alwaysOnTop floats above other windows, desktop sits below them where the window manager supports it (otherwise behaves like normal), normal uses regular stacking.",
	}, s.handleSetLevel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_level",
		Description: "Return the current window stacking level.",
	}, s.handleGetLevel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_status",
		Description: "Report whether the window exists, its visibility, opacity, level and bridge state.",
	}, s.handleStatus)
}

func (s *Server) handleMinimize(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.ctl.MinimizeWindow(); err != nil {
		return nil, AckOutput{}, fmt.Errorf("minimize_window: %w", err)
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleClose(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	s.logger.Info("close_window requested over MCP")
	if err := s.ctl.CloseWindow(); err != nil {
		return nil, AckOutput{}, fmt.Errorf("close_window: %w", err)
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleToggleOpacity(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OpacityOutput, error) {
	data, err := s.ctl.ToggleOpacity()
	if err != nil {
		return nil, OpacityOutput{}, fmt.Errorf("toggle_opacity: %w", err)
	}
	if data == nil {
		return nil, OpacityOutput{}, nil
	}
	return nil, OpacityOutput{WindowPresent: true, Opacity: data.Opacity}, nil
}

func (s *Server) handleSetLevel(_ context.Context, _ *mcpsdk.CallToolRequest, args SetLevelInput) (*mcpsdk.CallToolResult, LevelOutput, error) {
	// Validate locally so the caller gets the list of valid levels.
	level, err := bridge.ParseLevel(args.Level)
	if err != nil {
		return nil, LevelOutput{}, fmt.Errorf("set_window_level: %w (want one of %v)", err, bridge.Levels)
	}
	applied, err := s.ctl.SetWindowLevel(level)
	if err != nil {
		return nil, LevelOutput{}, fmt.Errorf("set_window_level: %w", err)
	}
	return nil, LevelOutput{Level: string(applied)}, nil
}

func (s *Server) handleGetLevel(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, LevelOutput, error) {
	level, err := s.ctl.GetWindowLevel()
	if err != nil {
		return nil, LevelOutput{}, fmt.Errorf("get_window_level: %w", err)
	}
	return nil, LevelOutput{Level: string(level)}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.ctl.Status()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("window_status: %w", err)
	}
	return nil, StatusOutput{
		WindowPresent: st.WindowPresent,
		Visible:       st.Visible,
		Opacity:       st.Opacity,
		Level:         string(st.Level),
		BridgeReady:   st.BridgeReady,
		Generation:    st.Generation,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}
