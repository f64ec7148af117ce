package bridge

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// maxLineSize bounds one request line.
const maxLineSize = 1 << 20

// Server serves the bridge protocol on a unix socket. A connection may carry
// any number of newline-delimited requests.
type Server struct {
	socketPath string
	dispatcher *Dispatcher
	logger     *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup

	mu           sync.Mutex
	conns        map[net.Conn]struct{}
	shuttingDown bool
}

// NewServer creates a server for socketPath. A stale socket file is removed.
func NewServer(socketPath string, dispatcher *Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		dispatcher: dispatcher,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for bridge connections
func (s *Server) Start() error {
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create bridge socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener

	s.logger.Info("bridge listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopping := s.shuttingDown
			s.mu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("bridge accept error", "err", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.dispatcher.HandleLine(line)

		data, err := resp.Marshal()
		if err != nil {
			s.logger.Error("failed to marshal bridge response", "err", err)
			return
		}
		data = append(data, '\n')
		if _, err := conn.Write(data); err != nil {
			s.logger.Debug("bridge write failed", "err", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Debug("bridge read error", "err", err)
	}
}

// Stop closes the listener, ends every open connection once its in-flight
// response is written, waits for handlers to return and removes the socket
// file.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return
	}
	s.shuttingDown = true
	for conn := range s.conns {
		// Unblocks the reader without cutting off a pending write.
		conn.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
