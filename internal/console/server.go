// Package console serves a read-only SSH status console for a running
// bridge session.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	gossh "golang.org/x/crypto/ssh"

	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/ipc"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/ui"
)

// StatusProvider answers the console's read queries. A running
// bridge.Session satisfies it.
type StatusProvider interface {
	HandleStatus() (*ipc.StatusResponse, error)
	HandleSurfaces() (*ipc.SurfacesResponse, error)
	HandleOutputs() (*ipc.OutputsResponse, error)
}

// Server is the SSH status console. Sessions can only read; there is no
// command that mutates the bridge.
type Server struct {
	cfg       config.ConsoleConfig
	provider  StatusProvider
	sshServer *ssh.Server
	ctx       context.Context

	// Lifecycle
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewServer creates a console server for the given provider.
func NewServer(cfg config.ConsoleConfig, provider StatusProvider) *Server {
	return &Server{
		cfg:      cfg,
		provider: provider,
		stop:     make(chan struct{}),
	}
}

// Start begins listening for SSH connections.
func (s *Server) Start(ctx context.Context) error {
	server, err := wish.NewServer(
		wish.WithAddress(fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)),
		wish.WithHostKeyPath(s.cfg.HostKeyPath),
		wish.WithPublicKeyAuth(s.publicKeyAuth),
		wish.WithMiddleware(
			s.loggingMiddleware(),
			activeterm.Middleware(),
			s.sessionHandler(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create console server: %w", err)
	}

	s.sshServer = server
	s.ctx = ctx

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		logger.Infof("Console listening on %s:%d", s.cfg.BindAddress, s.cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
			logger.Errorf("Console server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop shuts down the console server.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)

		if s.sshServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.sshServer.Shutdown(ctx)
		}

		s.wg.Wait()
	})
}

// publicKeyAuth admits whitelisted key fingerprints. With whitelist-only
// disabled any key is accepted; there is no interactive approval since
// the console cannot change anything.
func (s *Server) publicKeyAuth(ctx ssh.Context, key ssh.PublicKey) bool {
	var goKey gossh.PublicKey
	if wishKey, ok := key.(gossh.PublicKey); ok {
		goKey = wishKey
	} else {
		parsedKey, err := gossh.ParsePublicKey(key.Marshal())
		if err != nil {
			logger.Errorf("Failed to parse console public key: %v", err)
			return false
		}
		goKey = parsedKey
	}

	fingerprint := gossh.FingerprintSHA256(goKey)
	addr := ctx.RemoteAddr().String()

	if s.isWhitelisted(fingerprint) {
		logger.Infof("Console key whitelisted key=%s addr=%s", fingerprint, addr)
		return true
	}

	if !s.cfg.WhitelistOnly {
		logger.Infof("Console accepting key (whitelist-only disabled) key=%s addr=%s", fingerprint, addr)
		return true
	}

	logger.Infof("Console key denied key=%s addr=%s", fingerprint, addr)
	return false
}

func (s *Server) isWhitelisted(fingerprint string) bool {
	for _, fp := range s.cfg.Whitelist {
		if fp == fingerprint {
			return true
		}
	}
	return false
}

// loggingMiddleware provides custom logging using our internal logger
func (s *Server) loggingMiddleware() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			logger.Debugf("Console session started: user=%s addr=%s", sess.User(), sess.RemoteAddr())
			h(sess)
			logger.Debugf("Console session ended: addr=%s", sess.RemoteAddr())
		}
	}
}

// sessionHandler serves the read-only command loop.
func (s *Server) sessionHandler() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			done := make(chan struct{})
			defer close(done)

			// Close the session when the bridge shuts down so the read
			// loop unblocks.
			go func() {
				select {
				case <-s.ctx.Done():
					sess.Close()
				case <-s.stop:
					sess.Close()
				case <-done:
				}
			}()

			fmt.Fprintf(sess, "waybridge console (read-only)\n\n")
			s.serve(sess)
		}
	}
}

// serve runs the line-oriented command loop on any read/writer, which
// keeps it testable without an SSH handshake.
func (s *Server) serve(rw io.ReadWriter) {
	s.writeStatus(rw)

	scanner := bufio.NewScanner(rw)
	for {
		fmt.Fprintf(rw, "> ")
		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "status":
			s.writeStatus(rw)
		case "surfaces":
			s.writeSurfaces(rw)
		case "outputs":
			s.writeOutputs(rw)
		case "help":
			fmt.Fprintf(rw, "Commands: status, surfaces, outputs, help, quit\n")
		case "quit", "exit":
			fmt.Fprintf(rw, "bye\n")
			return
		case "":
		default:
			fmt.Fprintf(rw, "Unknown command; try help\n")
		}
	}
}

func (s *Server) writeStatus(w io.Writer) {
	status, err := s.provider.HandleStatus()
	if err != nil {
		fmt.Fprintf(w, "status unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", ui.StatusText(status))
}

func (s *Server) writeSurfaces(w io.Writer) {
	surfaces, err := s.provider.HandleSurfaces()
	if err != nil {
		fmt.Fprintf(w, "surfaces unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", ui.FormatSurfaceTable(surfaces.Surfaces))
	if len(surfaces.Windows) > 0 {
		fmt.Fprintf(w, "%s\n", ui.FormatWindowTable(surfaces.Windows))
	}
}

func (s *Server) writeOutputs(w io.Writer) {
	outputs, err := s.provider.HandleOutputs()
	if err != nil {
		fmt.Fprintf(w, "outputs unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", ui.FormatOutputTable(outputs.Outputs))
}
