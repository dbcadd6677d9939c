package ipc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/bnema/waybridge/internal/logger"
)

// Frames larger than this are rejected as corrupt.
const maxFrameSize = 1 << 20

// Handler answers control requests on behalf of a running session.
type Handler interface {
	HandleStatus() (*StatusResponse, error)
	HandleSurfaces() (*SurfacesResponse, error)
	HandleOutputs() (*OutputsResponse, error)
	HandleResetOverride(req *ResetOverrideRequest) (*ResetOverrideResponse, error)
}

// SocketServer accepts control connections on a unix socket.
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    Handler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// NewSocketServer creates a server for the given socket path.
func NewSocketServer(socketPath string, handler Handler) *SocketServer {
	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}
}

// DefaultSocketPath returns the per-user control socket path.
func DefaultSocketPath() string {
	u, err := user.Current()
	if err != nil {
		return "/tmp/waybridge.sock"
	}
	return fmt.Sprintf("/tmp/waybridge-%s.sock", u.Username)
}

// Start begins accepting connections. It returns immediately; accepted
// connections are served until Stop or context cancellation.
func (s *SocketServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("socket server already running")
	}

	// A stale socket from a crashed session blocks the listen call.
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}

	// Only the owning user may drive the bridge.
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.listener = listener
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	logger.Info("Control socket listening", "path", s.socketPath)
	return nil
}

// Stop closes the listener, waits for in-flight connections, and removes
// the socket file.
func (s *SocketServer) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	s.wg.Wait()

	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove socket: %w", err)
	}
	return nil
}

// SocketPath returns the path the server listens on.
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

func (s *SocketServer) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Error("Failed to accept control connection", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := readMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("Control connection read failed", "error", err)
			}
			return
		}

		resp := s.dispatch(msg)
		if err := writeMessage(conn, resp); err != nil {
			logger.Debug("Control connection write failed", "error", err)
			return
		}
	}
}

func (s *SocketServer) dispatch(msg Message) Message {
	switch msg.Type {
	case TypeStatus:
		status, err := s.handler.HandleStatus()
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return mustResponse(NewStatusResponseMessage(status))

	case TypeSurfaces:
		surfaces, err := s.handler.HandleSurfaces()
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return mustResponse(NewSurfacesResponseMessage(surfaces))

	case TypeOutputs:
		outputs, err := s.handler.HandleOutputs()
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return mustResponse(NewOutputsResponseMessage(outputs))

	case TypeResetOverride:
		req, err := GetResetOverrideRequest(msg)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		resp, err := s.handler.HandleResetOverride(req)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return mustResponse(NewResetOverrideResponseMessage(resp))

	default:
		return NewErrorMessage(fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func mustResponse(msg Message, err error) Message {
	if err != nil {
		return NewErrorMessage(err.Error())
	}
	return msg
}

// writeMessage frames a message as a big-endian length followed by JSON.
func writeMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := binary.Write(conn, binary.BigEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	return nil
}

// readMessage reads one length-prefixed JSON message.
func readMessage(conn net.Conn) (Message, error) {
	var length uint32
	if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Message{}, io.EOF
		}
		return Message{}, fmt.Errorf("failed to read message length: %w", err)
	}
	if length == 0 || length > maxFrameSize {
		return Message{}, fmt.Errorf("invalid message length: %d", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(conn, data); err != nil {
		return Message{}, fmt.Errorf("failed to read message body: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return msg, nil
}
