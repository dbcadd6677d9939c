package input

import (
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"
	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/wlturbo/wl"
)

// One wheel detent per 10 axis units, the libinput convention.
const axisStepSize = 10.0

// UinputInjector delivers guest events through a virtual uinput mouse.
// The device only supports relative motion, so absolute positions are
// tracked and emitted as deltas.
type UinputInjector struct {
	mouse uinput.Mouse

	mu     sync.Mutex
	closed bool

	lastX, lastY float64
	hasPos       bool

	// Sub-detent scroll remainders per axis.
	residualV float64
	residualH float64
}

// NewUinputInjector creates the virtual mouse. Requires write access to
// /dev/uinput.
func NewUinputInjector(name string) (*UinputInjector, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual mouse: %w", err)
	}
	return &UinputInjector{mouse: mouse}, nil
}

func (u *UinputInjector) Motion(x, y wl.Fixed) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrInjectorClosed
	}

	fx, fy := x.Float64(), y.Float64()
	if !u.hasPos {
		u.lastX, u.lastY = fx, fy
		u.hasPos = true
		return nil
	}
	dx := int32(fx - u.lastX)
	dy := int32(fy - u.lastY)
	u.lastX, u.lastY = fx, fy
	if dx == 0 && dy == 0 {
		return nil
	}
	return u.mouse.Move(dx, dy)
}

func (u *UinputInjector) RelativeMotion(dx, dy float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrInjectorClosed
	}
	idx, idy := int32(dx), int32(dy)
	if idx == 0 && idy == 0 {
		return nil
	}
	u.lastX += dx
	u.lastY += dy
	return u.mouse.Move(idx, idy)
}

func (u *UinputInjector) Button(button uint32, pressed bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrInjectorClosed
	}

	switch button {
	case ButtonLeft:
		if pressed {
			return u.mouse.LeftPress()
		}
		return u.mouse.LeftRelease()
	case ButtonRight:
		if pressed {
			return u.mouse.RightPress()
		}
		return u.mouse.RightRelease()
	case ButtonMiddle:
		if pressed {
			return u.mouse.MiddlePress()
		}
		return u.mouse.MiddleRelease()
	default:
		return fmt.Errorf("%w: button 0x%x", ErrNotImplemented, button)
	}
}

func (u *UinputInjector) Axis(axis scale.Axis, value wl.Fixed) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrInjectorClosed
	}

	residual := &u.residualV
	horizontal := false
	if axis == scale.AxisHorizontal {
		residual = &u.residualH
		horizontal = true
	}
	*residual += value.Float64()
	clicks := int32(*residual / axisStepSize)
	if clicks == 0 {
		return nil
	}
	*residual -= float64(clicks) * axisStepSize
	// Positive axis values scroll down/right; wheel deltas run the other way.
	return u.mouse.Wheel(horizontal, -clicks)
}

func (u *UinputInjector) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	if u.mouse != nil {
		return u.mouse.Close()
	}
	return nil
}
