// Package bridge runs one proxy session: the scale engine plus the
// subsystems feeding it (guest window management, input forwarding, host
// output discovery) and the control socket reporting on it. Nothing here
// is process-global, so several sessions can coexist in one process.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/display"
	"github.com/bnema/waybridge/internal/input"
	"github.com/bnema/waybridge/internal/ipc"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/waybridge/internal/surface"
	"github.com/bnema/waybridge/internal/xwm"
)

// Session owns the state of one running bridge.
type Session struct {
	cfg       *config.Config
	sc        scale.Config
	surfaces  *surface.Registry
	display   *display.Display
	manager   *xwm.Manager
	forwarder *input.Forwarder
	injector  input.Injector
	xconn     *xwm.Connection
	socket    *ipc.SocketServer
	emergency *EmergencyReset
	startedAt time.Time

	mu      sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	running bool
}

// New creates a session from the given configuration. Nothing is opened
// until Start.
func New(cfg *config.Config) *Session {
	return &Session{
		cfg:      cfg,
		surfaces: surface.NewRegistry(),
	}
}

// Start brings the session up: output discovery, scale configuration,
// input injection, the guest window manager, and the control socket.
// Input injection and the guest display are best-effort; the session
// stays useful without them.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("session already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.initDisplay(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to initialize outputs: %w", err)
	}

	s.sc = buildScale(s.cfg.Scaling, s.display.PrimaryScale())
	logScale(s.sc)

	s.initInput()
	s.initWindowManager(ctx)

	if err := s.initSocket(ctx); err != nil {
		s.teardown()
		cancel()
		return err
	}

	s.emergency = NewEmergencyReset(s.surfaces)
	s.emergency.Start()

	s.startedAt = time.Now()
	s.running = true
	return nil
}

// Stop shuts the session down and waits for its goroutines.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.teardown()
	s.wg.Wait()
}

func (s *Session) teardown() {
	if s.emergency != nil {
		s.emergency.Stop()
	}
	if s.socket != nil {
		if err := s.socket.Stop(); err != nil {
			logger.Error("Failed to stop control socket", "error", err)
		}
	}
	if s.xconn != nil {
		s.xconn.Close()
	}
	if s.injector != nil {
		if err := s.injector.Close(); err != nil {
			logger.Error("Failed to close input injector", "error", err)
		}
	}
	if s.display != nil {
		if err := s.display.Close(); err != nil {
			logger.Error("Failed to close output backend", "error", err)
		}
	}
}

func (s *Session) initDisplay(ctx context.Context) error {
	disp, err := display.New(ctx, s.cfg.Outputs)
	if err != nil {
		return err
	}
	s.display = disp
	return nil
}

func (s *Session) initInput() {
	injector, err := input.NewUinputInjector("waybridge virtual pointer")
	if err != nil {
		logger.Warn("Input injection unavailable", "error", err)
		return
	}
	s.injector = injector
	s.forwarder = input.NewForwarder(s.sc, s.surfaces, injector)
}

func (s *Session) initWindowManager(ctx context.Context) {
	mcfg := xwm.Config{
		Name:          s.cfg.Bridge.Name,
		AppID:         s.cfg.Bridge.AppID,
		AppIDTemplate: s.cfg.Bridge.AppIDTemplate,
	}

	xconn, err := xwm.Connect(s.cfg.Bridge.Display, s.cfg.Bridge.AppIDProperty)
	if err != nil {
		logger.Warn("Guest display unavailable, window management disabled", "error", err)
		s.manager = xwm.New(mcfg, s.sc, s.surfaces, &xwm.Atoms{})
		return
	}

	s.xconn = xconn
	s.manager = xwm.New(mcfg, s.sc, s.surfaces, xconn.Atoms())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := xconn.Run(ctx, s.manager); err != nil && ctx.Err() == nil {
			logger.Error("Guest window manager stopped", "error", err)
		}
	}()
}

func (s *Session) initSocket(ctx context.Context) error {
	path := s.cfg.Bridge.SocketPath
	if path == "" {
		path = ipc.DefaultSocketPath()
	}
	s.socket = ipc.NewSocketServer(path, s)
	if err := s.socket.Start(ctx); err != nil {
		return fmt.Errorf("failed to start control socket: %w", err)
	}
	return nil
}

// Scale returns the session's scale configuration.
func (s *Session) Scale() scale.Config {
	return s.sc
}

// Surfaces returns the session's surface registry.
func (s *Session) Surfaces() *surface.Registry {
	return s.surfaces
}

// Manager returns the guest window manager.
func (s *Session) Manager() *xwm.Manager {
	return s.manager
}

// Forwarder returns the input forwarder, nil when injection is off.
func (s *Session) Forwarder() *input.Forwarder {
	return s.forwarder
}

// Display returns the host output set.
func (s *Session) Display() *display.Display {
	return s.display
}

// SocketPath returns the control socket path, empty before Start.
func (s *Session) SocketPath() string {
	if s.socket == nil {
		return ""
	}
	return s.socket.SocketPath()
}

// HandleStatus implements ipc.Handler.
func (s *Session) HandleStatus() (*ipc.StatusResponse, error) {
	mode := "legacy"
	if s.sc.Direct() {
		mode = "direct"
	}
	sx, sy := scale.Resolve(s.sc, nil)

	outputs := 0
	if s.display != nil {
		outputs = len(s.display.Outputs())
	}
	windows := 0
	if s.manager != nil {
		windows = s.manager.Count()
	}

	return &ipc.StatusResponse{
		Mode:        mode,
		Scale:       s.cfg.Scaling.Scale,
		ScaleX:      sx,
		ScaleY:      sy,
		OutputScale: s.sc.Output,
		Surfaces:    s.surfaces.Count(),
		Windows:     windows,
		Outputs:     outputs,
		StartedAt:   s.startedAt,
	}, nil
}

// HandleSurfaces implements ipc.Handler.
func (s *Session) HandleSurfaces() (*ipc.SurfacesResponse, error) {
	resp := &ipc.SurfacesResponse{
		Surfaces: s.surfaces.Snapshots(s.sc),
	}
	if s.manager != nil {
		resp.Windows = s.manager.Snapshots()
	}
	return resp, nil
}

// HandleOutputs implements ipc.Handler.
func (s *Session) HandleOutputs() (*ipc.OutputsResponse, error) {
	resp := &ipc.OutputsResponse{Outputs: []display.Advertised{}}
	if s.display != nil {
		resp.Outputs = s.display.Advertise(s.sc)
	}
	return resp, nil
}

// HandleResetOverride implements ipc.Handler.
func (s *Session) HandleResetOverride(req *ipc.ResetOverrideRequest) (*ipc.ResetOverrideResponse, error) {
	reset := s.surfaces.ResetOverride(req.SurfaceID)
	if reset {
		logger.Info("Surface override reset", "surface", req.SurfaceID)
	}
	return &ipc.ResetOverrideResponse{Reset: reset}, nil
}

// buildScale combines the configured factors with the host's primary
// output scale. The desired scale multiplies the host scale so "2.0 on a
// 1.5x display" yields guest pixels at 3x host logical units.
func buildScale(cfg config.ScalingConfig, hostScale float64) scale.Config {
	desired := cfg.Scale
	if desired <= 0 {
		desired = 1.0
	}
	if hostScale <= 0 {
		hostScale = 1.0
	}
	uniform := desired * hostScale

	if cfg.Mode == "legacy" {
		return scale.NewLegacy(uniform)
	}

	sx := cfg.ScaleX
	if sx <= 0 {
		sx = uniform
	}
	sy := cfg.ScaleY
	if sy <= 0 {
		sy = uniform
	}
	return scale.NewDirect(uniform, sx, sy)
}

func logScale(sc scale.Config) {
	sx, sy := scale.Resolve(sc, nil)
	if sc.Direct() {
		logger.Info("Scaling configured", "mode", "direct", "scale_x", sx, "scale_y", sy, "output", sc.Output)
		return
	}
	logger.Info("Scaling configured", "mode", "legacy", "scale", sx)
}
