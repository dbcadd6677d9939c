// Package input forwards host pointer events into the guest, rescaling
// absolute coordinates and scroll values with the per-surface override
// state. Relative motion and button codes pass through untouched.
package input

import (
	"errors"
	"sync"

	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/wlturbo/wl"
)

var (
	// ErrInjectorClosed is returned when operating on a closed injector.
	ErrInjectorClosed = errors.New("injector is closed")
	// ErrNotImplemented is returned for buttons the backend cannot deliver.
	ErrNotImplemented = errors.New("not implemented")
)

// Linux input button codes as carried by pointer button events.
const (
	ButtonLeft   uint32 = 0x110
	ButtonRight  uint32 = 0x111
	ButtonMiddle uint32 = 0x112
	ButtonSide   uint32 = 0x113
	ButtonExtra  uint32 = 0x114
)

// Injector delivers guest-space pointer events.
type Injector interface {
	// Motion reports an absolute position in guest coordinates.
	Motion(x, y wl.Fixed) error
	// RelativeMotion reports an unaccelerated delta.
	RelativeMotion(dx, dy float64) error
	Button(button uint32, pressed bool) error
	// Axis reports scroll motion along one axis in guest units.
	Axis(axis scale.Axis, value wl.Fixed) error
	Close() error
}

// EventKind tags entries recorded by a BufferInjector.
type EventKind int

const (
	KindMotion EventKind = iota
	KindRelativeMotion
	KindButton
	KindAxis
)

// BufferedEvent is one recorded injection.
type BufferedEvent struct {
	Kind    EventKind
	X, Y    wl.Fixed
	DX, DY  float64
	Button  uint32
	Pressed bool
	Axis    scale.Axis
	Value   wl.Fixed
}

// BufferInjector records events instead of delivering them. Used by tests
// and by dry-run sessions without injection privileges.
type BufferInjector struct {
	mu     sync.Mutex
	events []BufferedEvent
}

// NewBufferInjector creates an empty recording injector.
func NewBufferInjector() *BufferInjector {
	return &BufferInjector{}
}

func (b *BufferInjector) Motion(x, y wl.Fixed) error {
	b.record(BufferedEvent{Kind: KindMotion, X: x, Y: y})
	return nil
}

func (b *BufferInjector) RelativeMotion(dx, dy float64) error {
	b.record(BufferedEvent{Kind: KindRelativeMotion, DX: dx, DY: dy})
	return nil
}

func (b *BufferInjector) Button(button uint32, pressed bool) error {
	b.record(BufferedEvent{Kind: KindButton, Button: button, Pressed: pressed})
	return nil
}

func (b *BufferInjector) Axis(axis scale.Axis, value wl.Fixed) error {
	b.record(BufferedEvent{Kind: KindAxis, Axis: axis, Value: value})
	return nil
}

func (b *BufferInjector) Close() error { return nil }

func (b *BufferInjector) record(ev BufferedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

// Events returns a copy of everything recorded so far.
func (b *BufferInjector) Events() []BufferedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BufferedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Reset discards recorded events.
func (b *BufferInjector) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
