// Package scale converts coordinates, sizes and damage rectangles between
// guest space (what X11 clients and window management logic see) and host
// space (what the host compositor renders), and negotiates per-window scale
// overrides so integer window sizes survive the round trip exactly.
//
// A scale factor is always guest pixels per host logical unit: converting
// guest to host divides by the factor, host to guest multiplies. Two
// policies exist. Legacy applies one uniform multiplier to every surface.
// Direct gives each axis its own session default and lets the negotiator
// install a per-surface override on top.
//
// Everything here is plain arithmetic on values the caller passes in. The
// only mutation is the negotiator writing the override it was handed, so a
// session can run the engine from its event loop without locking.
package scale

// Axis selects one dimension of a two-axis wire value, in wl_pointer
// axis order
type Axis uint32

const (
	AxisVertical   Axis = 0
	AxisHorizontal Axis = 1
)

// Coordinate bounds for damage rectangles under the legacy policy, one
// tenth of the int32 range either way
const (
	MinCoord int64 = -214748364
	MaxCoord int64 = 214748364
)

// Policy is the scaling policy of a session, either Legacy or Direct
type Policy interface {
	isPolicy()
}

// Legacy scales every surface by one uniform multiplier
type Legacy struct {
	Scale float64
}

// Direct carries per-axis session defaults; surfaces may override both
// axes after negotiation
type Direct struct {
	ScaleX float64
	ScaleY float64
}

func (Legacy) isPolicy() {}
func (Direct) isPolicy() {}

// Config is the scale configuration of one bridge session. It is built
// once at startup and read-only afterwards. Output is the uniform factor
// used when advertising output geometry to the guest; output advertisement
// keeps the uniform convention under both policies.
type Config struct {
	Policy Policy
	Output float64
}

// NewLegacy builds a legacy session configuration where the single
// multiplier also backs output advertisement
func NewLegacy(scale float64) Config {
	return Config{Policy: Legacy{Scale: scale}, Output: scale}
}

// NewDirect builds a direct session configuration with per-axis defaults
// and a separate uniform output factor
func NewDirect(output, scaleX, scaleY float64) Config {
	return Config{Policy: Direct{ScaleX: scaleX, ScaleY: scaleY}, Output: output}
}

// Direct reports whether the session runs under the direct policy
func (c Config) Direct() bool {
	_, ok := c.Policy.(Direct)
	return ok
}

// Override is the per-surface scale state installed by window scale
// negotiation. The zero value is neutral. ScaleX and ScaleY are meaningful
// only while Active is set; RoundX and RoundY pick round-to-nearest over
// truncation for host to guest integer conversion on their axis.
// LogicalWidth and LogicalHeight keep the host size computed by the last
// negotiation and survive Reset so a renegotiation can be compared against
// the previous outcome.
type Override struct {
	Active bool
	ScaleX float64
	ScaleY float64
	RoundX bool
	RoundY bool

	LogicalWidth  int32
	LogicalHeight int32
}

// Reset returns the override to neutral: factors zeroed, rounding flags
// cleared, Active dropped, all together. Idempotent. The cached logical
// size stays.
func (o *Override) Reset() {
	o.Active = false
	o.ScaleX = 0
	o.ScaleY = 0
	o.RoundX = false
	o.RoundY = false
}

// Resolve returns the effective per-axis factors for one transform. Under
// the direct policy an active override wins, then the session defaults; the
// legacy policy always resolves to its uniform multiplier on both axes. A
// nil override means the transform is global rather than tied to one
// surface. Never fails; an unset policy resolves to identity.
func Resolve(cfg Config, o *Override) (scaleX, scaleY float64) {
	switch p := cfg.Policy.(type) {
	case Direct:
		if o != nil && o.Active {
			return o.ScaleX, o.ScaleY
		}
		return p.ScaleX, p.ScaleY
	case Legacy:
		return p.Scale, p.Scale
	}
	return 1, 1
}

func axisScale(cfg Config, o *Override, axis Axis) float64 {
	scaleX, scaleY := Resolve(cfg, o)
	if axis == AxisVertical {
		return scaleY
	}
	return scaleX
}
