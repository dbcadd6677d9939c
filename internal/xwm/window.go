package xwm

// Window mirrors one guest window as seen through the X11 protocol.
// Geometry is kept in guest pixels.
type Window struct {
	ID          uint32
	X           int32
	Y           int32
	Width       int32
	Height      int32
	BorderWidth int32

	OverrideRedirect bool
	Managed          bool
	Mapped           bool

	Fullscreen bool
	Maximized  bool
	Iconified  bool

	Name          string
	Class         string
	AppIDProperty string
	ClientLeader  uint32

	// SurfaceID is the guest wl_surface backing this window, zero until the
	// client announces it.
	SurfaceID uint32

	toplevel Toplevel

	// State changes received while iconified are recorded here and flushed
	// on the next focus-in.
	pendingFullscreen bool
	pendingMaximized  bool
}

// Toplevel is the host-side handle a managed window is mirrored onto.
// Implementations forward each call to the host compositor. Factories
// registered with Manager.OnToplevel must not call back into the manager.
type Toplevel interface {
	SetTitle(title string)
	SetAppID(id string)
	SetFullscreen(fullscreen bool)
	SetMaximized(maximized bool)
	Minimize()
	Activate()
	Move()
	Resize(edge uint32)

	// Configure pushes host-space geometry for the window.
	Configure(x, y, width, height int32)

	// Destroy releases the host handle. The manager drops its reference
	// afterwards.
	Destroy()
}

// Snapshot is the wire form of one tracked window, reported over IPC.
type Snapshot struct {
	ID         uint32 `json:"id"`
	Title      string `json:"title,omitempty"`
	AppID      string `json:"app_id"`
	X          int32  `json:"x"`
	Y          int32  `json:"y"`
	Width      int32  `json:"width"`
	Height     int32  `json:"height"`
	Mapped     bool   `json:"mapped"`
	Fullscreen bool   `json:"fullscreen,omitempty"`
	Maximized  bool   `json:"maximized,omitempty"`
	Iconified  bool   `json:"iconified,omitempty"`
	SurfaceID  uint32 `json:"surface_id,omitempty"`
}
