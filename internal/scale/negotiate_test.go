package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryWindowScaleLegacyIsNoOp(t *testing.T) {
	cfg := NewLegacy(2.0)
	o := &Override{Active: true, ScaleX: 1.23, ScaleY: 4.56, RoundX: true}

	TryWindowScale(cfg, o, 101, 60)

	// Not even a reset happens outside direct sessions
	assert.Equal(t, &Override{Active: true, ScaleX: 1.23, ScaleY: 4.56, RoundX: true}, o)
}

func TestTryWindowScaleExactFitResets(t *testing.T) {
	cfg := NewDirect(1.0, 2.0, 2.0)
	o := &Override{Active: true, ScaleX: 9, ScaleY: 9, RoundX: true, RoundY: true}

	// 100x60 divides evenly by 2, so the session defaults already round trip
	TryWindowScale(cfg, o, 100, 60)

	assert.False(t, o.Active)
	assert.Zero(t, o.ScaleX)
	assert.Zero(t, o.ScaleY)
	assert.False(t, o.RoundX)
	assert.False(t, o.RoundY)
}

func TestTryWindowScaleDegenerateSizeResets(t *testing.T) {
	cfg := NewDirect(1.0, 100.0, 100.0)
	o := &Override{Active: true, ScaleX: 9, ScaleY: 9}

	// 50 pixels collapse to zero host units; negotiation declines
	TryWindowScale(cfg, o, 50, 50)

	assert.False(t, o.Active)
}

func TestTryWindowScaleInstallsOverride(t *testing.T) {
	cfg := NewDirect(1.0, 3.0, 3.0)
	o := &Override{}

	// 101 is not divisible by 3: the defaults round trip to 99, so the
	// negotiator installs the exact 101/33 ratio instead
	TryWindowScale(cfg, o, 101, 60)

	assert.True(t, o.Active)
	assert.Equal(t, 101.0/33.0, o.ScaleX)
	assert.Equal(t, 3.0, o.ScaleY)
	assert.Equal(t, int32(33), o.LogicalWidth)
	assert.Equal(t, int32(20), o.LogicalHeight)
	assert.False(t, o.RoundX)
	assert.False(t, o.RoundY)

	hw, hh := GuestToHost(cfg, o, 101, 60)
	assert.Equal(t, int32(33), hw)
	assert.Equal(t, int32(20), hh)

	gw, gh := HostToGuest(cfg, o, hw, hh)
	assert.Equal(t, int32(101), gw)
	assert.Equal(t, int32(60), gh)
}

func TestTryWindowScaleSetsRoundingFlagPerAxis(t *testing.T) {
	cfg := NewDirect(1.0, 3.0, 3.0)
	o := &Override{}

	// 233/77 re-truncates to 232 on the way back, so the X axis needs
	// round to nearest; 60/20 is exact and the Y axis keeps truncation
	TryWindowScale(cfg, o, 233, 60)

	assert.True(t, o.Active)
	assert.Equal(t, 233.0/77.0, o.ScaleX)
	assert.Equal(t, int32(77), o.LogicalWidth)
	assert.Equal(t, int32(20), o.LogicalHeight)
	assert.True(t, o.RoundX)
	assert.False(t, o.RoundY)

	hw, hh := GuestToHost(cfg, o, 233, 60)
	gw, gh := HostToGuest(cfg, o, hw, hh)
	assert.Equal(t, int32(233), gw)
	assert.Equal(t, int32(60), gh)
}

func TestTryWindowScaleRoundTripTable(t *testing.T) {
	// Sizes that force an override at scale 2, with and without the
	// rounding flag, all land back on the requested size
	cfg := NewDirect(1.0, 2.0, 2.0)

	for _, size := range []struct {
		w, h int32
	}{
		{3, 5},
		{59, 44},
		{99, 58},
		{101, 50},
		{127, 63},
		{640, 480},
	} {
		o := &Override{}
		TryWindowScale(cfg, o, size.w, size.h)

		hw, hh := GuestToHost(cfg, o, size.w, size.h)
		gw, gh := HostToGuest(cfg, o, hw, hh)
		assert.Equal(t, size.w, gw, "width %d", size.w)
		assert.Equal(t, size.h, gh, "height %d", size.h)
	}
}

func TestTryWindowScaleKeepsCachedSizeAcrossReset(t *testing.T) {
	cfg := NewDirect(1.0, 3.0, 3.0)
	o := &Override{}

	TryWindowScale(cfg, o, 101, 60)
	assert.Equal(t, int32(33), o.LogicalWidth)
	assert.Equal(t, int32(20), o.LogicalHeight)

	// A later size that fits the defaults resets the override but keeps
	// the last negotiated host size around
	TryWindowScale(cfg, o, 99, 60)
	assert.False(t, o.Active)
	assert.Equal(t, int32(33), o.LogicalWidth)
	assert.Equal(t, int32(20), o.LogicalHeight)
}

func TestTryWindowScaleResidualDrift(t *testing.T) {
	// 46/15 rounds up in floating point, so the override divides 46 down
	// to 14 host units and even round to nearest cannot recover the
	// requested width. Negotiation still installs its best effort.
	cfg := NewDirect(1.0, 3.0, 3.0)
	o := &Override{}

	TryWindowScale(cfg, o, 46, 60)

	assert.True(t, o.Active)
	assert.True(t, o.RoundX)

	hw, _ := GuestToHost(cfg, o, 46, 60)
	assert.Equal(t, int32(14), hw)

	gw, _ := HostToGuest(cfg, o, hw, 20)
	assert.Equal(t, int32(43), gw)
}
