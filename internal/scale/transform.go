package scale

import (
	"math"

	"github.com/bnema/wlturbo/wl"
)

// fixedFromFloat encodes a 24.8 wire value the way libwayland does,
// rounding half to even. wl.NewFixed truncates, which drifts sub-pixel
// event streams by up to a full step.
func fixedFromFloat(v float64) wl.Fixed {
	return wl.Fixed(int32(math.RoundToEven(v * 256)))
}

// GuestToHost converts a guest coordinate pair to host space by dividing
// with the resolved factors, truncating toward zero
func GuestToHost(cfg Config, o *Override, x, y int32) (int32, int32) {
	scaleX, scaleY := Resolve(cfg, o)
	return int32(float64(x) / scaleX), int32(float64(y) / scaleY)
}

// HostToGuest converts a host coordinate pair to guest space by
// multiplying with the resolved factors. Under the direct policy an axis
// rounds to nearest when the override's rounding flag for that axis is
// set, otherwise the product truncates toward zero. The legacy policy
// always truncates.
func HostToGuest(cfg Config, o *Override, x, y int32) (int32, int32) {
	scaleX, scaleY := Resolve(cfg, o)
	gx := float64(x) * scaleX
	gy := float64(y) * scaleY
	if cfg.Direct() && o != nil {
		if o.RoundX {
			gx = math.Round(gx)
		}
		if o.RoundY {
			gy = math.Round(gy)
		}
	}
	return int32(gx), int32(gy)
}

// GuestToHostFixed converts a sub-pixel coordinate pair to host space
func GuestToHostFixed(cfg Config, o *Override, x, y wl.Fixed) (wl.Fixed, wl.Fixed) {
	scaleX, scaleY := Resolve(cfg, o)
	return fixedFromFloat(x.Float64() / scaleX), fixedFromFloat(y.Float64() / scaleY)
}

// HostToGuestFixed converts a sub-pixel coordinate pair to guest space.
// Rounding flags do not apply here; the fraction bits carry the residue.
func HostToGuestFixed(cfg Config, o *Override, x, y wl.Fixed) (wl.Fixed, wl.Fixed) {
	scaleX, scaleY := Resolve(cfg, o)
	return fixedFromFloat(x.Float64() * scaleX), fixedFromFloat(y.Float64() * scaleY)
}

// GuestToHostFixedAxis converts a single-axis sub-pixel value, such as one
// scroll axis, to host space
func GuestToHostFixedAxis(cfg Config, o *Override, axis Axis, v wl.Fixed) wl.Fixed {
	return fixedFromFloat(v.Float64() / axisScale(cfg, o, axis))
}

// HostToGuestFixedAxis converts a single-axis sub-pixel value to guest
// space
func HostToGuestFixedAxis(cfg Config, o *Override, axis Axis, v wl.Fixed) wl.Fixed {
	return fixedFromFloat(v.Float64() * axisScale(cfg, o, axis))
}

// ViewportSize computes the destination size handed to the compositor
// viewport for a buffer of the given guest pixel size. Direct sessions
// convert like any other size and then floor each dimension at 1 so very
// small buffers keep a valid viewport; legacy sessions divide by the
// uniform multiplier times the contents scale and round up. The returned
// bool tells the caller to set the viewport destination; it is always true
// today, until same-space detection makes the call skippable.
func ViewportSize(cfg Config, o *Override, width, height int32, contentsScale float64) (int32, int32, bool) {
	switch p := cfg.Policy.(type) {
	case Direct:
		w, h := GuestToHost(cfg, o, width, height)
		if w <= 0 {
			w = 1
		}
		if h <= 0 {
			h = 1
		}
		return w, h, true
	case Legacy:
		s := p.Scale * contentsScale
		w := int32(math.Ceil(float64(width) / s))
		h := int32(math.Ceil(float64(height) / s))
		return w, h, true
	}
	return width, height, true
}

// OutputDimensions scales output geometry advertised to the guest by the
// uniform output factor, truncating toward zero. Not gated on the policy.
func OutputDimensions(cfg Config, width, height int32) (int32, int32) {
	return int32(float64(width) * cfg.Output), int32(float64(height) * cfg.Output)
}

// Rect is a damage rectangle in buffer pixel coordinates, top-left
// inclusive corner (X1, Y1) to bottom-right corner (X2, Y2). Corners are
// int64 so clamp and outset arithmetic cannot overflow int32 coordinates.
type Rect struct {
	X1, Y1, X2, Y2 int64
}

// HostDamage maps a damage rectangle from buffer pixels into host space.
// The per-axis divisor combines the resolved surface factor with the
// buffer's own scale. Direct sessions divide both corners with truncation
// and no outset. Legacy sessions clamp the rectangle into
// [MinCoord, MaxCoord], grow it by one pixel in each direction to cover
// filtering bleed, then truncate the top-left and round up the
// bottom-right. The two policies disagree on the outset on purpose; keep
// them that way.
func HostDamage(cfg Config, o *Override, bufferScaleX, bufferScaleY float64, r Rect) Rect {
	switch p := cfg.Policy.(type) {
	case Direct:
		scaleX, scaleY := Resolve(cfg, o)
		scaleX *= bufferScaleX
		scaleY *= bufferScaleY
		return Rect{
			X1: int64(float64(r.X1) / scaleX),
			Y1: int64(float64(r.Y1) / scaleY),
			X2: int64(float64(r.X2) / scaleX),
			Y2: int64(float64(r.Y2) / scaleY),
		}
	case Legacy:
		scaleX := bufferScaleX * p.Scale
		scaleY := bufferScaleY * p.Scale
		return Rect{
			X1: int64(float64(max(MinCoord, r.X1-1)) / scaleX),
			Y1: int64(float64(max(MinCoord, r.Y1-1)) / scaleY),
			X2: int64(math.Ceil(float64(min(r.X2+1, MaxCoord)) / scaleX)),
			Y2: int64(math.Ceil(float64(min(r.Y2+1, MaxCoord)) / scaleY)),
		}
	}
	return r
}
