package xwm

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Atoms holds the interned atoms the window-manager bridge speaks.
// AppID is optional and only set when an application id property name is
// configured.
type Atoms struct {
	WmProtocols    xproto.Atom
	WmDeleteWindow xproto.Atom
	WmChangeState  xproto.Atom
	WmClientLeader xproto.Atom
	WlSurfaceID    xproto.Atom

	NetActiveWindow xproto.Atom
	NetWmMoveResize xproto.Atom
	NetWmName       xproto.Atom
	NetWmState      xproto.Atom

	NetWmStateFullscreen    xproto.Atom
	NetWmStateMaximizedVert xproto.Atom
	NetWmStateMaximizedHorz xproto.Atom

	AppID xproto.Atom
}

// InternAtoms resolves the atom table against the guest X server. Requests
// are pipelined and collected in one round trip.
func InternAtoms(conn *xgb.Conn) (*Atoms, error) {
	a := &Atoms{}
	slots := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"WM_PROTOCOLS", &a.WmProtocols},
		{"WM_DELETE_WINDOW", &a.WmDeleteWindow},
		{"WM_CHANGE_STATE", &a.WmChangeState},
		{"WM_CLIENT_LEADER", &a.WmClientLeader},
		{"WL_SURFACE_ID", &a.WlSurfaceID},
		{"_NET_ACTIVE_WINDOW", &a.NetActiveWindow},
		{"_NET_WM_MOVERESIZE", &a.NetWmMoveResize},
		{"_NET_WM_NAME", &a.NetWmName},
		{"_NET_WM_STATE", &a.NetWmState},
		{"_NET_WM_STATE_FULLSCREEN", &a.NetWmStateFullscreen},
		{"_NET_WM_STATE_MAXIMIZED_VERT", &a.NetWmStateMaximizedVert},
		{"_NET_WM_STATE_MAXIMIZED_HORZ", &a.NetWmStateMaximizedHorz},
	}

	cookies := make([]xproto.InternAtomCookie, len(slots))
	for i, s := range slots {
		cookies[i] = xproto.InternAtom(conn, false, uint16(len(s.name)), s.name)
	}
	for i, s := range slots {
		reply, err := cookies[i].Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to intern %s: %w", s.name, err)
		}
		*s.dst = reply.Atom
	}
	return a, nil
}

// _NET_WM_STATE client message actions (EWMH).
const (
	StateRemove uint32 = 0
	StateAdd    uint32 = 1
	StateToggle uint32 = 2
)

// WM_CHANGE_STATE argument (ICCCM 4.1.4).
const IconicState uint32 = 3

// _NET_WM_MOVERESIZE directions (EWMH).
const (
	MoveResizeSizeTopLeft     uint32 = 0
	MoveResizeSizeTop         uint32 = 1
	MoveResizeSizeTopRight    uint32 = 2
	MoveResizeSizeRight       uint32 = 3
	MoveResizeSizeBottomRight uint32 = 4
	MoveResizeSizeBottom      uint32 = 5
	MoveResizeSizeBottomLeft  uint32 = 6
	MoveResizeSizeLeft        uint32 = 7
	MoveResizeMove            uint32 = 8
	MoveResizeCancel          uint32 = 11
)
