// Package xwm bridges guest X11 window management onto host toplevels.
//
// The manager consumes xproto events (plain values, so the logic runs
// without a live connection), tracks per-window state, negotiates
// per-surface scale overrides whenever a window's pixel size is
// (re)established, and forwards state transitions to the host through the
// Toplevel interface.
package xwm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/waybridge/internal/surface"
)

const (
	defaultClassIDFormat = "org.waybridge.%s.wmclass.%s"
	leaderIDFormat       = "org.waybridge.%s.wmclientleader.%d"
	xidIDFormat          = "org.waybridge.%s.xid.%d"
)

// Config carries the identity settings the manager stamps onto toplevels.
type Config struct {
	// Name distinguishes this bridge instance in generated application ids.
	Name string
	// AppID, when set, overrides every per-window application id.
	AppID string
	// AppIDTemplate formats WM_CLASS derived ids; it receives Name and the
	// window class.
	AppIDTemplate string
}

// Conn is the guest X server link the manager drives. A nil Conn leaves the
// manager operating on event state alone.
type Conn interface {
	MapWindow(id uint32) error
	ConfigureWindow(id uint32, x, y, width, height int32) error
	SendClientMessage(id uint32, typ xproto.Atom, data [5]uint32) error
	WindowProperties(id uint32) (Properties, error)
	WindowGeometry(id uint32) (x, y, width, height int32, err error)
}

// Properties are the identity properties read from a guest window.
type Properties struct {
	Name         string
	Class        string
	ClientLeader uint32
	AppID        string
}

// Manager tracks guest windows and mirrors them onto host toplevels.
type Manager struct {
	mu sync.Mutex

	cfg      Config
	sc       scale.Config
	surfaces *surface.Registry
	atoms    *Atoms

	windows map[uint32]*Window
	root    uint32

	conn        Conn
	newToplevel func(*Window) Toplevel
}

// New creates a manager. The atom table must be non-nil; use InternAtoms
// against a live connection or a hand-built table in tests.
func New(cfg Config, sc scale.Config, surfaces *surface.Registry, atoms *Atoms) *Manager {
	if cfg.AppIDTemplate == "" {
		cfg.AppIDTemplate = defaultClassIDFormat
	}
	return &Manager{
		cfg:      cfg,
		sc:       sc,
		surfaces: surfaces,
		atoms:    atoms,
		windows:  make(map[uint32]*Window),
	}
}

// SetConn attaches the guest server link used for configure, map and
// client-message requests.
func (m *Manager) SetConn(c Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = c
}

// SetRoot records the root window of the managed screen.
func (m *Manager) SetRoot(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = id
}

// OnToplevel registers the factory invoked when a managed window gains a
// surface and needs a host toplevel.
func (m *Manager) OnToplevel(fn func(*Window) Toplevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newToplevel = fn
}

// Count returns the number of tracked windows.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Snapshots returns the tracked windows sorted by id.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, Snapshot{
			ID:         w.ID,
			Title:      w.Name,
			AppID:      m.applicationID(w),
			X:          w.X,
			Y:          w.Y,
			Width:      w.Width,
			Height:     w.Height,
			Mapped:     w.Mapped,
			Fullscreen: w.Fullscreen,
			Maximized:  w.Maximized,
			Iconified:  w.Iconified,
			SurfaceID:  w.SurfaceID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HandleCreateNotify starts tracking a freshly created guest window.
func (m *Manager) HandleCreateNotify(ev xproto.CreateNotifyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[uint32(ev.Window)]; ok {
		return
	}
	m.windows[uint32(ev.Window)] = &Window{
		ID:               uint32(ev.Window),
		X:                int32(ev.X),
		Y:                int32(ev.Y),
		Width:            int32(ev.Width),
		Height:           int32(ev.Height),
		BorderWidth:      int32(ev.BorderWidth),
		OverrideRedirect: ev.OverrideRedirect,
	}
}

// HandleReparentNotify tracks windows entering or leaving the managed tree.
func (m *Manager) HandleReparentNotify(ev xproto.ReparentNotifyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint32(ev.Parent) == m.root {
		if _, ok := m.windows[uint32(ev.Window)]; ok {
			return
		}
		w := &Window{
			ID:               uint32(ev.Window),
			X:                int32(ev.X),
			Y:                int32(ev.Y),
			OverrideRedirect: ev.OverrideRedirect,
		}
		if m.conn != nil {
			if x, y, width, height, err := m.conn.WindowGeometry(w.ID); err == nil {
				w.X, w.Y, w.Width, w.Height = x, y, width, height
			}
		}
		m.windows[w.ID] = w
		return
	}
	m.unmanage(uint32(ev.Window))
}

// HandleMapRequest manages the window and maps it on the guest server.
func (m *Manager) HandleMapRequest(ev xproto.MapRequestEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[uint32(ev.Window)]
	if w == nil {
		return
	}
	w.Managed = true
	w.Mapped = true
	m.refreshProperties(w)
	m.realize(w)
	if m.conn != nil {
		if err := m.conn.MapWindow(w.ID); err != nil {
			logger.Warnf("xwm: map window 0x%x: %v", w.ID, err)
		}
	}
	logger.Debugf("xwm: managing window 0x%x class=%q", w.ID, w.Class)
}

// HandleUnmapNotify releases the host toplevel and the backing surface. The
// guest recreates both on the next map.
func (m *Manager) HandleUnmapNotify(ev xproto.UnmapNotifyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[uint32(ev.Window)]
	if w == nil {
		return
	}
	w.Mapped = false
	if w.toplevel != nil {
		w.toplevel.Destroy()
		w.toplevel = nil
	}
	if w.SurfaceID != 0 {
		m.surfaces.Remove(w.SurfaceID)
		w.SurfaceID = 0
	}
}

// HandleDestroyNotify drops the window record.
func (m *Manager) HandleDestroyNotify(ev xproto.DestroyNotifyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmanage(uint32(ev.Window))
}

// HandleConfigureRequest applies a guest-requested geometry change. The new
// pixel size is re-negotiated against the surface override before the host
// geometry is derived.
func (m *Manager) HandleConfigureRequest(ev xproto.ConfigureRequestEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[uint32(ev.Window)]
	if w == nil {
		return
	}
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		w.X = int32(ev.X)
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		w.Y = int32(ev.Y)
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		w.Width = int32(ev.Width)
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		w.Height = int32(ev.Height)
	}
	m.negotiate(w)
	if m.conn != nil {
		if err := m.conn.ConfigureWindow(w.ID, w.X, w.Y, w.Width, w.Height); err != nil {
			logger.Warnf("xwm: configure window 0x%x: %v", w.ID, err)
		}
	}
	if w.toplevel != nil {
		o := m.override(w)
		hx, hy := scale.GuestToHost(m.sc, o, w.X, w.Y)
		hw, hh := scale.GuestToHost(m.sc, o, w.Width, w.Height)
		w.toplevel.Configure(hx, hy, hw, hh)
	}
}

// ConfigureToplevel applies a host-issued configure. The host size arrives
// in host units, is converted to guest pixels with the then-current override,
// re-negotiated, and pushed to the guest server. Zero host sizes leave the
// guest size to the client.
func (m *Manager) ConfigureToplevel(id uint32, hostWidth, hostHeight int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[id]
	if w == nil {
		return
	}
	if hostWidth <= 0 || hostHeight <= 0 {
		return
	}
	gw, gh := scale.HostToGuest(m.sc, m.override(w), hostWidth, hostHeight)
	w.Width, w.Height = gw, gh
	m.negotiate(w)
	if m.conn != nil {
		if err := m.conn.ConfigureWindow(w.ID, w.X, w.Y, w.Width, w.Height); err != nil {
			logger.Warnf("xwm: configure window 0x%x: %v", w.ID, err)
		}
	}
}

// CloseWindow asks the guest client to close a window via the ICCCM delete
// protocol.
func (m *Manager) CloseWindow(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[id]
	if w == nil || m.conn == nil {
		return
	}
	data := [5]uint32{uint32(m.atoms.WmDeleteWindow), uint32(xproto.TimeCurrentTime)}
	if err := m.conn.SendClientMessage(w.ID, m.atoms.WmProtocols, data); err != nil {
		logger.Warnf("xwm: delete window 0x%x: %v", w.ID, err)
	}
}

// HandleClientMessage dispatches WM protocol messages. Messages for unknown
// windows are ignored.
func (m *Manager) HandleClientMessage(ev xproto.ClientMessageEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[uint32(ev.Window)]
	if w == nil {
		return
	}
	data := messageData(ev)
	switch ev.Type {
	case m.atoms.WlSurfaceID:
		m.attachSurface(w, data[0])
	case m.atoms.NetActiveWindow:
		if w.toplevel != nil {
			w.toplevel.Activate()
		}
	case m.atoms.NetWmMoveResize:
		m.handleMoveResize(w, data[2])
	case m.atoms.NetWmState:
		m.handleStateMessage(w, data)
	case m.atoms.WmChangeState:
		if data[0] == IconicState {
			w.Iconified = true
			if w.toplevel != nil {
				w.toplevel.Minimize()
			}
		}
	}
}

// HandleFocusIn deiconifies the window and flushes state changes that were
// suppressed while it was iconified.
func (m *Manager) HandleFocusIn(ev xproto.FocusInEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[uint32(ev.Event)]
	if w == nil || !w.Iconified {
		return
	}
	w.Iconified = false
	if w.toplevel != nil {
		if w.pendingFullscreen {
			w.toplevel.SetFullscreen(w.Fullscreen)
		}
		if w.pendingMaximized {
			w.toplevel.SetMaximized(w.Maximized)
		}
	}
	w.pendingFullscreen = false
	w.pendingMaximized = false
}

// HandlePropertyNotify refreshes identity properties the host cares about.
func (m *Manager) HandlePropertyNotify(ev xproto.PropertyNotifyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[uint32(ev.Window)]
	if w == nil {
		return
	}
	switch ev.Atom {
	case xproto.AtomWmName, m.atoms.NetWmName:
		m.refreshProperties(w)
		if w.toplevel != nil {
			w.toplevel.SetTitle(w.Name)
		}
	case xproto.AtomWmClass, m.atoms.WmClientLeader, m.atoms.AppID:
		m.refreshProperties(w)
		if w.toplevel != nil {
			w.toplevel.SetAppID(m.applicationID(w))
		}
	}
}

func (m *Manager) handleStateMessage(w *Window, data [5]uint32) {
	action := data[0]
	changed := func(a xproto.Atom) bool {
		return xproto.Atom(data[1]) == a || xproto.Atom(data[2]) == a
	}
	if changed(m.atoms.NetWmStateFullscreen) {
		fullscreen := applyStateAction(action, w.Fullscreen)
		if fullscreen != w.Fullscreen {
			w.Fullscreen = fullscreen
			switch {
			case w.Iconified:
				w.pendingFullscreen = true
			case w.toplevel != nil:
				w.toplevel.SetFullscreen(fullscreen)
			}
		}
	}
	// Maximization is only mirrored when both axes change together; the
	// host model has no single-axis maximize.
	if changed(m.atoms.NetWmStateMaximizedHorz) && changed(m.atoms.NetWmStateMaximizedVert) {
		maximized := applyStateAction(action, w.Maximized)
		if maximized != w.Maximized {
			w.Maximized = maximized
			switch {
			case w.Iconified:
				w.pendingMaximized = true
			case w.toplevel != nil:
				w.toplevel.SetMaximized(maximized)
			}
		}
	}
}

func (m *Manager) handleMoveResize(w *Window, direction uint32) {
	if w.toplevel == nil {
		return
	}
	switch {
	case direction == MoveResizeMove:
		w.toplevel.Move()
	case direction <= MoveResizeSizeLeft:
		w.toplevel.Resize(direction)
	}
}

// attachSurface pairs the window with its guest wl_surface and realizes the
// host toplevel if the window is already managed.
func (m *Manager) attachSurface(w *Window, surfaceID uint32) {
	if surfaceID == 0 {
		return
	}
	w.SurfaceID = surfaceID
	m.surfaces.Create(surfaceID)
	if w.Managed {
		m.realize(w)
	}
}

// realize creates the host toplevel and pushes the window's identity and
// accumulated state.
func (m *Manager) realize(w *Window) {
	if w.toplevel != nil || m.newToplevel == nil || w.SurfaceID == 0 {
		return
	}
	w.toplevel = m.newToplevel(w)
	if w.toplevel == nil {
		return
	}
	if w.Name != "" {
		w.toplevel.SetTitle(w.Name)
	}
	w.toplevel.SetAppID(m.applicationID(w))
	if w.Fullscreen {
		w.toplevel.SetFullscreen(true)
	}
	if w.Maximized {
		w.toplevel.SetMaximized(true)
	}
}

func (m *Manager) unmanage(id uint32) {
	w := m.windows[id]
	if w == nil {
		return
	}
	if w.toplevel != nil {
		w.toplevel.Destroy()
		w.toplevel = nil
	}
	if w.SurfaceID != 0 {
		m.surfaces.Remove(w.SurfaceID)
	}
	delete(m.windows, id)
	logger.Debugf("xwm: unmanaged window 0x%x", id)
}

// negotiate re-runs window scale negotiation against the backing surface.
func (m *Manager) negotiate(w *Window) {
	if w.SurfaceID == 0 {
		return
	}
	s := m.surfaces.Get(w.SurfaceID)
	if s == nil {
		return
	}
	scale.TryWindowScale(m.sc, &s.Override, w.Width, w.Height)
}

func (m *Manager) override(w *Window) *scale.Override {
	if w.SurfaceID == 0 {
		return nil
	}
	s := m.surfaces.Get(w.SurfaceID)
	if s == nil {
		return nil
	}
	return &s.Override
}

func (m *Manager) refreshProperties(w *Window) {
	if m.conn == nil {
		return
	}
	p, err := m.conn.WindowProperties(w.ID)
	if err != nil {
		logger.Debugf("xwm: properties for window 0x%x: %v", w.ID, err)
		return
	}
	w.Name = p.Name
	w.Class = p.Class
	w.ClientLeader = p.ClientLeader
	w.AppIDProperty = p.AppID
}

// applicationID resolves the identifier advertised to the host for a
// window. Precedence: the bridge-wide id, the window's id property, a
// WM_CLASS derived id, a client-leader derived id, and last the raw X
// window id.
func (m *Manager) applicationID(w *Window) string {
	switch {
	case m.cfg.AppID != "":
		return m.cfg.AppID
	case w.AppIDProperty != "":
		return w.AppIDProperty
	case w.Class != "":
		return fmt.Sprintf(m.cfg.AppIDTemplate, m.cfg.Name, w.Class)
	case w.ClientLeader != 0:
		return fmt.Sprintf(leaderIDFormat, m.cfg.Name, w.ClientLeader)
	default:
		return fmt.Sprintf(xidIDFormat, m.cfg.Name, w.ID)
	}
}

// applyStateAction resolves an EWMH state action against the current value.
func applyStateAction(action uint32, current bool) bool {
	switch action {
	case StateRemove:
		return false
	case StateAdd:
		return true
	case StateToggle:
		return !current
	}
	return current
}

// messageData copies the 32-bit view of a client message, tolerating events
// built without payload.
func messageData(ev xproto.ClientMessageEvent) [5]uint32 {
	var d [5]uint32
	copy(d[:], ev.Data.Data32)
	return d
}
