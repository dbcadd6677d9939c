package scale

import (
	"testing"

	"github.com/bnema/wlturbo/wl"
	"github.com/stretchr/testify/assert"
)

func TestLegacyEndToEnd(t *testing.T) {
	cfg := NewLegacy(2.0)

	x, y := GuestToHost(cfg, nil, 100, 50)
	assert.Equal(t, int32(50), x)
	assert.Equal(t, int32(25), y)

	x, y = HostToGuest(cfg, nil, 50, 25)
	assert.Equal(t, int32(100), x)
	assert.Equal(t, int32(50), y)

	w, h := OutputDimensions(cfg, 10, 20)
	assert.Equal(t, int32(20), w)
	assert.Equal(t, int32(40), h)
}

func TestIdentityAtScaleOne(t *testing.T) {
	for _, cfg := range []Config{NewLegacy(1.0), NewDirect(1.0, 1.0, 1.0)} {
		x, y := GuestToHost(cfg, nil, 1234, -567)
		assert.Equal(t, int32(1234), x)
		assert.Equal(t, int32(-567), y)

		x, y = HostToGuest(cfg, nil, 1234, -567)
		assert.Equal(t, int32(1234), x)
		assert.Equal(t, int32(-567), y)

		fx, fy := HostToGuestFixed(cfg, nil, wl.Fixed(321), wl.Fixed(-640))
		assert.Equal(t, wl.Fixed(321), fx)
		assert.Equal(t, wl.Fixed(-640), fy)

		w, h := OutputDimensions(cfg, 1920, 1080)
		assert.Equal(t, int32(1920), w)
		assert.Equal(t, int32(1080), h)

		r := HostDamage(cfg, nil, 1.0, 1.0, Rect{X1: 10, Y1: 10, X2: 20, Y2: 20})
		if cfg.Direct() {
			assert.Equal(t, Rect{X1: 10, Y1: 10, X2: 20, Y2: 20}, r)
		} else {
			// Legacy grows damage by the one pixel outset even at scale 1
			assert.Equal(t, Rect{X1: 9, Y1: 9, X2: 21, Y2: 21}, r)
		}
	}
}

func TestGuestToHostTruncatesTowardZero(t *testing.T) {
	cfg := NewDirect(1.0, 3.0, 3.0)
	x, y := GuestToHost(cfg, nil, 101, -101)
	assert.Equal(t, int32(33), x)
	assert.Equal(t, int32(-33), y)

	cfg = NewLegacy(2.0)
	x, y = GuestToHost(cfg, nil, 101, -101)
	assert.Equal(t, int32(50), x)
	assert.Equal(t, int32(-50), y)
}

func TestHostToGuestRoundingFlags(t *testing.T) {
	cfg := NewDirect(1.0, 3.0, 3.0)
	o := &Override{Active: true, ScaleX: 233.0 / 77.0, ScaleY: 3.0}

	// Truncation loses the last unit of a 232.999... product
	x, y := HostToGuest(cfg, o, 77, 20)
	assert.Equal(t, int32(232), x)
	assert.Equal(t, int32(60), y)

	// The per-axis flag switches that axis to round to nearest
	o.RoundX = true
	x, y = HostToGuest(cfg, o, 77, 20)
	assert.Equal(t, int32(233), x)
	assert.Equal(t, int32(60), y)
}

func TestFixedTransforms(t *testing.T) {
	t.Run("legacy round trip", func(t *testing.T) {
		cfg := NewLegacy(2.0)

		// 1.5 host units become 3.0 guest pixels and back
		gx, gy := HostToGuestFixed(cfg, nil, wl.Fixed(384), wl.Fixed(384))
		assert.Equal(t, wl.Fixed(768), gx)
		assert.Equal(t, wl.Fixed(768), gy)

		hx, hy := GuestToHostFixed(cfg, nil, gx, gy)
		assert.Equal(t, wl.Fixed(384), hx)
		assert.Equal(t, wl.Fixed(384), hy)
	})

	t.Run("encode rounds half to even", func(t *testing.T) {
		// 1/256 * 1.5 lands exactly between wire steps, as does 3/256 * 0.5;
		// ties go to the even step in both directions
		cfg := NewDirect(1.0, 1.0, 1.5)
		v := HostToGuestFixedAxis(cfg, nil, AxisVertical, wl.Fixed(1))
		assert.Equal(t, wl.Fixed(2), v)

		cfg = NewLegacy(0.5)
		v = HostToGuestFixedAxis(cfg, nil, AxisVertical, wl.Fixed(1))
		assert.Equal(t, wl.Fixed(0), v)
		v = HostToGuestFixedAxis(cfg, nil, AxisVertical, wl.Fixed(3))
		assert.Equal(t, wl.Fixed(2), v)
	})

	t.Run("axis selects its own factor", func(t *testing.T) {
		cfg := NewDirect(1.0, 2.0, 4.0)
		one := wl.NewFixed(1.0)

		h := HostToGuestFixedAxis(cfg, nil, AxisHorizontal, one)
		assert.Equal(t, wl.NewFixed(2.0), h)

		v := HostToGuestFixedAxis(cfg, nil, AxisVertical, one)
		assert.Equal(t, wl.NewFixed(4.0), v)

		assert.Equal(t, one, GuestToHostFixedAxis(cfg, nil, AxisHorizontal, h))
		assert.Equal(t, one, GuestToHostFixedAxis(cfg, nil, AxisVertical, v))
	})

	t.Run("override factors apply to fixed pairs", func(t *testing.T) {
		cfg := NewDirect(1.0, 2.0, 2.0)
		o := &Override{Active: true, ScaleX: 4.0, ScaleY: 8.0}

		hx, hy := GuestToHostFixed(cfg, o, wl.NewFixed(8.0), wl.NewFixed(8.0))
		assert.Equal(t, wl.NewFixed(2.0), hx)
		assert.Equal(t, wl.NewFixed(1.0), hy)
	})
}

func TestViewportSize(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		override      *Override
		width, height int32
		contentsScale float64
		wantW, wantH  int32
	}{
		{
			name: "direct divides by session factors",
			cfg:  NewDirect(1.0, 2.0, 2.0),
			width: 800, height: 600, contentsScale: 1.0,
			wantW: 400, wantH: 300,
		},
		{
			name: "direct floors tiny buffers at one",
			cfg:  NewDirect(1.0, 100.0, 100.0),
			width: 1, height: 1, contentsScale: 1.0,
			wantW: 1, wantH: 1,
		},
		{
			name: "direct ignores the contents scale",
			cfg:  NewDirect(1.0, 2.0, 2.0),
			width: 800, height: 600, contentsScale: 3.0,
			wantW: 400, wantH: 300,
		},
		{
			name:     "direct honors the override",
			cfg:      NewDirect(1.0, 2.0, 2.0),
			override: &Override{Active: true, ScaleX: 4.0, ScaleY: 4.0},
			width:    800, height: 600, contentsScale: 1.0,
			wantW: 200, wantH: 150,
		},
		{
			name: "legacy divides by uniform times contents scale and rounds up",
			cfg:  NewLegacy(2.0),
			width: 800, height: 600, contentsScale: 1.5,
			wantW: 267, wantH: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, apply := ViewportSize(tt.cfg, tt.override, tt.width, tt.height, tt.contentsScale)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.True(t, apply)
		})
	}
}

func TestOutputDimensionsNotGatedOnPolicy(t *testing.T) {
	// Output geometry keeps the uniform convention even in a direct session
	cfg := NewDirect(2.0, 1.5, 1.5)
	w, h := OutputDimensions(cfg, 10, 20)
	assert.Equal(t, int32(20), w)
	assert.Equal(t, int32(40), h)
}

func TestHostDamage(t *testing.T) {
	t.Run("direct truncates without outset", func(t *testing.T) {
		cfg := NewDirect(1.0, 2.0, 2.0)
		r := HostDamage(cfg, nil, 1.0, 1.0, Rect{X1: 1, Y1: 1, X2: 9, Y2: 9})
		assert.Equal(t, Rect{X1: 0, Y1: 0, X2: 4, Y2: 4}, r)
	})

	t.Run("legacy outsets then truncates left and rounds up right", func(t *testing.T) {
		// Same numeric scale as the direct case above; the rectangles differ
		cfg := NewLegacy(2.0)
		r := HostDamage(cfg, nil, 1.0, 1.0, Rect{X1: 1, Y1: 1, X2: 9, Y2: 9})
		assert.Equal(t, Rect{X1: 0, Y1: 0, X2: 5, Y2: 5}, r)
	})

	t.Run("buffer scale multiplies into the divisor", func(t *testing.T) {
		cfg := NewDirect(1.0, 2.0, 2.0)
		r := HostDamage(cfg, nil, 2.0, 2.0, Rect{X1: 8, Y1: 8, X2: 16, Y2: 16})
		assert.Equal(t, Rect{X1: 2, Y1: 2, X2: 4, Y2: 4}, r)
	})

	t.Run("direct honors the override", func(t *testing.T) {
		cfg := NewDirect(1.0, 2.0, 2.0)
		o := &Override{Active: true, ScaleX: 4.0, ScaleY: 4.0}
		r := HostDamage(cfg, o, 1.0, 1.0, Rect{X1: 8, Y1: 8, X2: 16, Y2: 16})
		assert.Equal(t, Rect{X1: 2, Y1: 2, X2: 4, Y2: 4}, r)
	})

	t.Run("legacy clamps corners into the legal range", func(t *testing.T) {
		cfg := NewLegacy(2.0)
		r := HostDamage(cfg, nil, 1.0, 1.0, Rect{X1: MinCoord, Y1: MinCoord, X2: MaxCoord, Y2: MaxCoord})
		assert.Equal(t, Rect{
			X1: MinCoord / 2, Y1: MinCoord / 2,
			X2: MaxCoord / 2, Y2: MaxCoord / 2,
		}, r)
	})

	t.Run("legacy truncates negative corners toward zero", func(t *testing.T) {
		cfg := NewLegacy(2.0)
		r := HostDamage(cfg, nil, 1.0, 1.0, Rect{X1: -6, Y1: -6, X2: -1, Y2: -1})
		assert.Equal(t, Rect{X1: -3, Y1: -3, X2: 0, Y2: 0}, r)
	})
}
