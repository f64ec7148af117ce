package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Host executes bridge commands. Window commands receive the caller's
// session and must reject it when it does not match the current handshake.
type Host interface {
	Ready(origin string) (ReadyData, error)
	Activate() error
	Status() StatusData
	OpenWindow(url string) error

	MinimizeWindow(session string) error
	CloseWindow(session string) error
	// ToggleOpacity returns nil data when no window exists.
	ToggleOpacity(session string) (*OpacityData, error)
	SetWindowLevel(session, level string) (LevelData, error)
	GetWindowLevel(session string) (LevelData, error)
}

// Dispatcher routes parsed requests to a Host. It is shared by every transport.
type Dispatcher struct {
	host   Host
	logger *slog.Logger
	trace  atomic.Bool
}

// NewDispatcher creates a dispatcher for host.
func NewDispatcher(host Host, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{host: host, logger: logger}
}

// SetTrace toggles debug logging of every request and its outcome.
func (d *Dispatcher) SetTrace(on bool) {
	d.trace.Store(on)
}

// HandleLine parses one wire line and returns the response to send back.
func (d *Dispatcher) HandleLine(line []byte) *Response {
	req, err := ParseRequest(line)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid request: %v", err))
	}
	return d.Handle(req)
}

// Handle executes one request.
func (d *Dispatcher) Handle(req *Request) *Response {
	resp := d.handleCommand(req)
	if d.trace.Load() {
		d.logger.Debug("bridge request",
			"command", req.Command,
			"status", resp.Status,
			"error", resp.Error)
	}
	return resp
}

func (d *Dispatcher) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReady:
		var p ReadyPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		data, err := d.host.Ready(p.Origin)
		return result(data, err)

	case CommandActivate:
		return result(nil, d.host.Activate())

	case CommandStatus:
		return result(d.host.Status(), nil)

	case CommandOpenWindow:
		var p OpenWindowPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return result(nil, d.host.OpenWindow(p.URL))

	case CommandMinimizeWindow:
		return result(nil, d.host.MinimizeWindow(req.Session))

	case CommandCloseWindow:
		return result(nil, d.host.CloseWindow(req.Session))

	case CommandToggleOpacity:
		data, err := d.host.ToggleOpacity(req.Session)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		if data == nil {
			return result(nil, nil)
		}
		return result(data, nil)

	case CommandSetWindowLevel:
		var p LevelPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		data, err := d.host.SetWindowLevel(req.Session, p.Level)
		return result(data, err)

	case CommandGetWindowLevel:
		data, err := d.host.GetWindowLevel(req.Session)
		return result(data, err)

	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func result(data interface{}, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, mErr := NewOKResponse(data)
	if mErr != nil {
		return NewErrorResponse(mErr.Error())
	}
	return resp
}
