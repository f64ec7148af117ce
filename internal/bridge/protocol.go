package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandType names a bridge command on the wire.
type CommandType string

// Window commands. Each requires the session issued by CommandReady.
const (
	CommandMinimizeWindow CommandType = "minimize-window"
	CommandCloseWindow    CommandType = "close-window"
	CommandToggleOpacity  CommandType = "toggle-opacity"
	CommandSetWindowLevel CommandType = "set-window-level"
	CommandGetWindowLevel CommandType = "get-window-level"
)

// Host-level commands.
const (
	CommandReady      CommandType = "ready"
	CommandActivate   CommandType = "activate"
	CommandStatus     CommandType = "status"
	CommandOpenWindow CommandType = "open-window"
)

// WindowCommands lists the commands content may invoke after the handshake.
var WindowCommands = []CommandType{
	CommandMinimizeWindow,
	CommandCloseWindow,
	CommandToggleOpacity,
	CommandSetWindowLevel,
	CommandGetWindowLevel,
}

// RequiresSession reports whether c is one of the window commands.
func (c CommandType) RequiresSession() bool {
	for _, w := range WindowCommands {
		if c == w {
			return true
		}
	}
	return false
}

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Level is the user-facing stacking level of the window.
type Level string

const (
	LevelAlwaysOnTop Level = "alwaysOnTop"
	LevelDesktop     Level = "desktop"
	LevelNormal      Level = "normal"
)

// Levels lists every valid level in display order.
var Levels = []Level{LevelAlwaysOnTop, LevelDesktop, LevelNormal}

// ErrInvalidLevel is returned for level names outside Levels.
var ErrInvalidLevel = errors.New("invalid level")

// ParseLevel validates a level name. Matching is exact.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Request represents a bridge request from content to host
type Request struct {
	Command CommandType     `json:"command"`
	Session string          `json:"session,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents a bridge response from host to content
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ReadyPayload is sent by content once it has finished loading.
type ReadyPayload struct {
	Origin string `json:"origin,omitempty"`
}

// ReadyData is returned by the ready handshake.
type ReadyData struct {
	Session    string        `json:"session"`
	WindowID   uint32        `json:"window_id"`
	Generation uint64        `json:"generation"`
	Commands   []CommandType `json:"commands"`
}

// OpacityData is the result of toggle-opacity.
type OpacityData struct {
	Opacity float64 `json:"opacity"`
}

// LevelPayload is the input of set-window-level.
type LevelPayload struct {
	Level string `json:"level"`
}

// LevelData is the result of set-window-level and get-window-level.
type LevelData struct {
	Level Level `json:"level"`
}

// StatusData represents the data returned by status
type StatusData struct {
	WindowPresent bool    `json:"window_present"`
	Visible       bool    `json:"visible"`
	Opacity       float64 `json:"opacity"`
	Level         Level   `json:"level"`
	BridgeReady   bool    `json:"bridge_ready"`
	Generation    uint64  `json:"generation"`
	DevMode       bool    `json:"dev_mode"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// OpenWindowPayload is the input of open-window.
type OpenWindowPayload struct {
	URL string `json:"url"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
