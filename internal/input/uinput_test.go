package input

import (
	"errors"
	"os"
	"testing"

	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/wlturbo/wl"
)

// TestUinputPermissions checks if we have the necessary permissions
func TestUinputPermissions(t *testing.T) {
	if _, err := os.Stat("/dev/uinput"); os.IsNotExist(err) {
		t.Skip("/dev/uinput does not exist - uinput module not loaded")
	}

	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		t.Skipf("Cannot open /dev/uinput: %v (try: sudo chmod 666 /dev/uinput or add user to input group)", err)
	}
	f.Close()
}

func TestUinputClosedGuard(t *testing.T) {
	u := &UinputInjector{closed: true}

	if err := u.Motion(wl.Fixed(256), wl.Fixed(256)); !errors.Is(err, ErrInjectorClosed) {
		t.Errorf("Motion on closed injector: got %v, want ErrInjectorClosed", err)
	}
	if err := u.RelativeMotion(1, 1); !errors.Is(err, ErrInjectorClosed) {
		t.Errorf("RelativeMotion on closed injector: got %v, want ErrInjectorClosed", err)
	}
	if err := u.Button(ButtonLeft, true); !errors.Is(err, ErrInjectorClosed) {
		t.Errorf("Button on closed injector: got %v, want ErrInjectorClosed", err)
	}
	if err := u.Axis(scale.AxisVertical, wl.Fixed(256)); !errors.Is(err, ErrInjectorClosed) {
		t.Errorf("Axis on closed injector: got %v, want ErrInjectorClosed", err)
	}
	if err := u.Close(); err != nil {
		t.Errorf("Close on closed injector: %v", err)
	}
}

func TestUinputAxisAccumulatesBelowDetent(t *testing.T) {
	// Sub-detent values never reach the device, so no virtual mouse is
	// needed.
	u := &UinputInjector{}

	if err := u.Axis(scale.AxisVertical, wl.Fixed(4*256)); err != nil {
		t.Fatalf("Axis: %v", err)
	}
	if err := u.Axis(scale.AxisVertical, wl.Fixed(4*256)); err != nil {
		t.Fatalf("Axis: %v", err)
	}
	if u.residualV != 8.0 {
		t.Errorf("residualV = %v, want 8.0", u.residualV)
	}
	if u.residualH != 0 {
		t.Errorf("residualH = %v, want 0", u.residualH)
	}
}

// TestUinputInjectorIntegration exercises a real virtual mouse if
// permissions allow.
func TestUinputInjectorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	inj, err := NewUinputInjector("Waybridge Test Mouse")
	if err != nil {
		t.Skipf("Cannot create uinput injector: %v", err)
	}
	defer func() { _ = inj.Close() }()

	// First motion only seeds the tracked position.
	if err := inj.Motion(wl.Fixed(100*256), wl.Fixed(100*256)); err != nil {
		t.Errorf("Failed to seed position: %v", err)
	}
	if err := inj.Motion(wl.Fixed(150*256), wl.Fixed(120*256)); err != nil {
		t.Errorf("Failed to inject motion: %v", err)
	}

	if err := inj.Button(ButtonLeft, true); err != nil {
		t.Errorf("Failed to press button: %v", err)
	}
	if err := inj.Button(ButtonLeft, false); err != nil {
		t.Errorf("Failed to release button: %v", err)
	}

	if err := inj.Axis(scale.AxisVertical, wl.Fixed(20*256)); err != nil {
		t.Errorf("Failed to scroll: %v", err)
	}
}
