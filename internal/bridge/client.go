package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/pintodo/internal/runtimepath"
)

// HostError is an ERROR response returned by the host.
type HostError struct {
	Message string
}

func (e *HostError) Error() string {
	return "host error: " + e.Message
}

// Client talks to a running host over its unix socket. Window commands
// perform the ready handshake on first use and redo it once when the
// session has gone stale.
type Client struct {
	socketPath string
	timeout    time.Duration
	origin     string

	mu      sync.Mutex
	session string
}

// NewClient creates a client for socketPath, or the default socket when empty.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err == nil {
			socketPath = path
		}
		// Keep constructor non-failing; send surfaces connection errors.
	}
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
		origin:     "pintodo-cli",
	}
}

// SetTimeout changes the per-request deadline.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetOrigin changes the origin reported in the ready handshake.
func (c *Client) SetOrigin(origin string) {
	c.origin = origin
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

func (c *Client) send(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w (is the host running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, &HostError{Message: resp.Error}
	}
	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}
	return c.do(req, out)
}

func (c *Client) do(req *Request, out interface{}) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", req.Command, err)
	}
	return nil
}

// windowCall sends a window command with the current session.
func (c *Client) windowCall(cmd CommandType, payload interface{}, out interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		raw = b
	}

	for attempt := 0; attempt < 2; attempt++ {
		session, err := c.ensureSession()
		if err != nil {
			return err
		}
		err = c.do(&Request{Command: cmd, Session: session, Payload: raw}, out)
		if attempt == 0 && isStale(err) {
			c.mu.Lock()
			c.session = ""
			c.mu.Unlock()
			continue
		}
		return err
	}
	return nil
}

func isStale(err error) bool {
	he, ok := err.(*HostError)
	return ok && strings.HasPrefix(he.Message, "stale session")
}

func (c *Client) ensureSession() (string, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != "" {
		return session, nil
	}
	data, err := c.Ready()
	if err != nil {
		return "", err
	}
	return data.Session, nil
}

// Ready performs the handshake and stores the issued session.
func (c *Client) Ready() (*ReadyData, error) {
	var data ReadyData
	if err := c.call(CommandReady, ReadyPayload{Origin: c.origin}, &data); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.session = data.Session
	c.mu.Unlock()
	return &data, nil
}

// Activate asks the host to recreate its window if none exists.
func (c *Client) Activate() error {
	return c.call(CommandActivate, nil, nil)
}

// Status retrieves host status.
func (c *Client) Status() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the host is responding.
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}

// OpenWindow requests a secondary window. The host always refuses.
func (c *Client) OpenWindow(url string) error {
	return c.call(CommandOpenWindow, OpenWindowPayload{URL: url}, nil)
}

// MinimizeWindow iconifies the host window.
func (c *Client) MinimizeWindow() error {
	return c.windowCall(CommandMinimizeWindow, nil, nil)
}

// CloseWindow terminates the host.
func (c *Client) CloseWindow() error {
	return c.windowCall(CommandCloseWindow, nil, nil)
}

// ToggleOpacity flips the window opacity. It returns nil when the host has
// no window.
func (c *Client) ToggleOpacity() (*OpacityData, error) {
	var data *OpacityData
	if err := c.windowCall(CommandToggleOpacity, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// SetWindowLevel changes the stacking level and returns the applied level.
func (c *Client) SetWindowLevel(level Level) (Level, error) {
	var data LevelData
	if err := c.windowCall(CommandSetWindowLevel, LevelPayload{Level: string(level)}, &data); err != nil {
		return "", err
	}
	return data.Level, nil
}

// GetWindowLevel returns the current stacking level.
func (c *Client) GetWindowLevel() (Level, error) {
	var data LevelData
	if err := c.windowCall(CommandGetWindowLevel, nil, &data); err != nil {
		return "", err
	}
	return data.Level, nil
}
