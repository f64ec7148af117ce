package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketPath is the HTTP path the bridge is served on.
const WebSocketPath = "/bridge"

// WebSocketServer serves the bridge protocol to web content. Each text
// message carries one request and is answered by one response message.
type WebSocketServer struct {
	addr       string
	dispatcher *Dispatcher
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewWebSocketServer creates a loopback websocket server. Browser origins not
// matched by allowedOrigins are refused at upgrade time.
func NewWebSocketServer(addr string, allowedOrigins []string, dispatcher *Dispatcher, logger *slog.Logger) *WebSocketServer {
	if logger == nil {
		logger = slog.Default()
	}
	origins := append([]string(nil), allowedOrigins...)
	s := &WebSocketServer{
		addr:       addr,
		dispatcher: dispatcher,
		logger:     logger,
		conns:      make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Not a browser.
				return true
			}
			if originAllowed(origin, origins) {
				return true
			}
			logger.Warn("bridge websocket origin refused", "origin", origin)
			return false
		},
	}
	return s
}

// originAllowed matches origin exactly, or by scheme when the allowed entry
// ends in "://".
func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.HasSuffix(a, "://") {
			if strings.HasPrefix(origin, a) {
				return true
			}
			continue
		}
		if origin == a {
			return true
		}
	}
	return false
}

// Start listens on the configured address and serves in the background.
func (s *WebSocketServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, s.handleUpgrade)
	s.httpServer = &http.Server{Handler: mux}

	s.logger.Info("bridge websocket listening", "addr", listener.Addr().String(), "path", WebSocketPath)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("bridge websocket server failed", "err", err)
		}
	}()
	return nil
}

// Addr returns the bound address, which differs from the configured one when
// port 0 was requested.
func (s *WebSocketServer) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *WebSocketServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug("bridge websocket upgrade failed", "err", err)
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	conn.SetReadLimit(maxLineSize)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("bridge websocket read error", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.dispatcher.HandleLine(data)
		out, err := resp.Marshal()
		if err != nil {
			s.logger.Error("failed to marshal bridge response", "err", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			return
		}
	}
}

// Stop shuts the HTTP server down and closes open websocket connections.
func (s *WebSocketServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}
