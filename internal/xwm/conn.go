package xwm

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/bnema/waybridge/internal/logger"
)

// Connection drives a live guest X server and feeds events to a Manager.
// It implements Conn.
type Connection struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	atoms *Atoms

	// appIDProperty is the optional window property read as application id.
	appIDProperty string
}

// Connect dials the guest X server named by display (empty means $DISPLAY)
// and interns the atom table. appIDProperty optionally names a window
// property whose value overrides generated application ids.
func Connect(display, appIDProperty string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to guest display: %w", err)
	}
	atoms, err := InternAtoms(xu.Conn())
	if err != nil {
		xu.Conn().Close()
		return nil, err
	}
	if appIDProperty != "" {
		reply, err := xproto.InternAtom(xu.Conn(), false,
			uint16(len(appIDProperty)), appIDProperty).Reply()
		if err != nil {
			xu.Conn().Close()
			return nil, fmt.Errorf("failed to intern %s: %w", appIDProperty, err)
		}
		atoms.AppID = reply.Atom
	}
	return &Connection{
		xu:            xu,
		root:          xu.RootWin(),
		atoms:         atoms,
		appIDProperty: appIDProperty,
	}, nil
}

// Atoms returns the interned atom table.
func (c *Connection) Atoms() *Atoms { return c.atoms }

// Root returns the root window of the managed screen.
func (c *Connection) Root() uint32 { return uint32(c.root) }

// Close terminates the guest connection. A blocked Run returns afterwards.
func (c *Connection) Close() {
	c.xu.Conn().Close()
}

// Run claims window-management redirection on the root window and pumps
// events into the manager until the connection closes or ctx is done.
func (c *Connection) Run(ctx context.Context, m *Manager) error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskPropertyChange |
		xproto.EventMaskFocusChange)
	err := xproto.ChangeWindowAttributesChecked(c.xu.Conn(), c.root,
		xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return fmt.Errorf("failed to claim window management on root: %w", err)
	}

	m.SetConn(c)
	m.SetRoot(uint32(c.root))
	logger.Infof("xwm: managing guest windows on root 0x%x", uint32(c.root))

	for {
		ev, xerr := c.xu.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.New("guest display connection closed")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if xerr != nil {
			logger.Debugf("xwm: guest server error: %v", xerr)
			continue
		}
		switch e := ev.(type) {
		case xproto.CreateNotifyEvent:
			m.HandleCreateNotify(e)
		case xproto.ReparentNotifyEvent:
			m.HandleReparentNotify(e)
		case xproto.MapRequestEvent:
			m.HandleMapRequest(e)
		case xproto.UnmapNotifyEvent:
			m.HandleUnmapNotify(e)
		case xproto.DestroyNotifyEvent:
			m.HandleDestroyNotify(e)
		case xproto.ConfigureRequestEvent:
			m.HandleConfigureRequest(e)
		case xproto.ClientMessageEvent:
			m.HandleClientMessage(e)
		case xproto.FocusInEvent:
			m.HandleFocusIn(e)
		case xproto.PropertyNotifyEvent:
			m.HandlePropertyNotify(e)
		}
	}
}

// MapWindow maps a guest window.
func (c *Connection) MapWindow(id uint32) error {
	return xproto.MapWindowChecked(c.xu.Conn(), xproto.Window(id)).Check()
}

// ConfigureWindow moves and resizes a guest window.
func (c *Connection) ConfigureWindow(id uint32, x, y, width, height int32) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{uint32(x), uint32(y), uint32(width), uint32(height)}
	return xproto.ConfigureWindowChecked(c.xu.Conn(), xproto.Window(id), mask, values).Check()
}

// SendClientMessage delivers a 32-bit client message to a guest window.
func (c *Connection) SendClientMessage(id uint32, typ xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(id),
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	return xproto.SendEventChecked(c.xu.Conn(), false, xproto.Window(id),
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// WindowProperties reads the identity properties of a guest window. Missing
// properties are returned as zero values, not errors.
func (c *Connection) WindowProperties(id uint32) (Properties, error) {
	win := xproto.Window(id)
	var p Properties
	if name, err := ewmh.WmNameGet(c.xu, win); err == nil && name != "" {
		p.Name = name
	} else if name, err := icccm.WmNameGet(c.xu, win); err == nil {
		p.Name = name
	}
	if class, err := icccm.WmClassGet(c.xu, win); err == nil {
		p.Class = class.Class
	}
	if leader, err := xprop.PropValWindow(xprop.GetProperty(c.xu, win, "WM_CLIENT_LEADER")); err == nil {
		p.ClientLeader = uint32(leader)
	}
	if c.appIDProperty != "" {
		if v, err := xprop.PropValStr(xprop.GetProperty(c.xu, win, c.appIDProperty)); err == nil {
			p.AppID = v
		}
	}
	return p, nil
}

// WindowGeometry queries the server-side geometry of a guest window.
func (c *Connection) WindowGeometry(id uint32) (x, y, width, height int32, err error) {
	reply, err := xproto.GetGeometry(c.xu.Conn(), xproto.Drawable(id)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to query geometry of 0x%x: %w", id, err)
	}
	return int32(reply.X), int32(reply.Y), int32(reply.Width), int32(reply.Height), nil
}
