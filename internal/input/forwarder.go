package input

import (
	"sync"

	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/waybridge/internal/surface"
	"github.com/bnema/wlturbo/wl"
)

// Forwarder rescales host pointer events into guest space and hands them to
// an Injector. Absolute coordinates and scroll values are transformed with
// the focused surface's override state; relative motion and buttons pass
// through unchanged.
type Forwarder struct {
	sc       scale.Config
	surfaces *surface.Registry
	inj      Injector

	mu      sync.Mutex
	focusID uint32
}

// NewForwarder wires a forwarder to the session scale configuration, the
// surface registry, and an injector.
func NewForwarder(sc scale.Config, surfaces *surface.Registry, inj Injector) *Forwarder {
	return &Forwarder{
		sc:       sc,
		surfaces: surfaces,
		inj:      inj,
	}
}

// Enter moves pointer focus to a surface and reports the entry position.
func (f *Forwarder) Enter(surfaceID uint32, x, y wl.Fixed) error {
	f.mu.Lock()
	f.focusID = surfaceID
	f.mu.Unlock()
	return f.Motion(x, y)
}

// Leave clears pointer focus.
func (f *Forwarder) Leave() {
	f.mu.Lock()
	f.focusID = 0
	f.mu.Unlock()
}

// Focus returns the surface currently receiving pointer events.
func (f *Forwarder) Focus() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focusID
}

// Motion forwards an absolute position given in host coordinates.
func (f *Forwarder) Motion(x, y wl.Fixed) error {
	gx, gy := scale.HostToGuestFixed(f.sc, f.focusOverride(), x, y)
	return f.inj.Motion(gx, gy)
}

// RelativeMotion forwards an unaccelerated delta without rescaling.
func (f *Forwarder) RelativeMotion(dx, dy float64) error {
	return f.inj.RelativeMotion(dx, dy)
}

// Button forwards a button event; codes are never remapped.
func (f *Forwarder) Button(button uint32, pressed bool) error {
	return f.inj.Button(button, pressed)
}

// Scroll forwards axis motion given in host units, rescaled per axis.
func (f *Forwarder) Scroll(axis scale.Axis, value wl.Fixed) error {
	v := scale.HostToGuestFixedAxis(f.sc, f.focusOverride(), axis, value)
	return f.inj.Axis(axis, v)
}

func (f *Forwarder) focusOverride() *scale.Override {
	f.mu.Lock()
	id := f.focusID
	f.mu.Unlock()
	if id == 0 {
		return nil
	}
	s := f.surfaces.Get(id)
	if s == nil {
		return nil
	}
	return &s.Override
}
