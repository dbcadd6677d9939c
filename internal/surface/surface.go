// Package surface tracks guest surfaces and the per-surface scale state
// the negotiator installs on them.
package surface

import (
	"sync"

	"github.com/bnema/waybridge/internal/scale"
)

// Surface is one guest surface relayed to the host compositor. The
// override is owned here and written only by the bridge event loop;
// everything else reads it through the transform calls.
type Surface struct {
	ID uint32

	// BufferScale is the guest buffer scale announced on the surface,
	// at least 1
	BufferScale int32

	// ContentsScale multiplies into viewport sizing under the legacy
	// policy
	ContentsScale float64

	Override scale.Override
}

// HostDamage maps a damage rectangle from this surface's buffer pixels
// into host space
func (s *Surface) HostDamage(cfg scale.Config, r scale.Rect) scale.Rect {
	bs := float64(s.BufferScale)
	return scale.HostDamage(cfg, &s.Override, bs, bs, r)
}

// ViewportSize computes the compositor viewport destination for a buffer
// of the given guest pixel size
func (s *Surface) ViewportSize(cfg scale.Config, width, height int32) (int32, int32, bool) {
	return scale.ViewportSize(cfg, &s.Override, width, height, s.ContentsScale)
}

// Snapshot is a read-only view of one surface's scale state for status
// reporting
type Snapshot struct {
	ID            uint32  `json:"id"`
	BufferScale   int32   `json:"buffer_scale"`
	ScaleX        float64 `json:"scale_x"`
	ScaleY        float64 `json:"scale_y"`
	Override      bool    `json:"override"`
	RoundX        bool    `json:"round_x"`
	RoundY        bool    `json:"round_y"`
	LogicalWidth  int32   `json:"logical_width"`
	LogicalHeight int32   `json:"logical_height"`
}

// Registry holds the live surfaces of one bridge session. The event loop
// creates, negotiates and removes; the control socket and status view only
// take snapshots.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[uint32]*Surface
}

// NewRegistry creates an empty surface registry
func NewRegistry() *Registry {
	return &Registry{
		surfaces: make(map[uint32]*Surface),
	}
}

// Create registers a surface with neutral scale state. Creating an
// existing ID returns the surface already registered.
func (r *Registry) Create(id uint32) *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.surfaces[id]; ok {
		return s
	}
	s := &Surface{ID: id, BufferScale: 1, ContentsScale: 1.0}
	r.surfaces[id] = s
	return s
}

// Get returns the surface with the given ID, or nil
func (r *Registry) Get(id uint32) *Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.surfaces[id]
}

// Remove drops a surface and its override state
func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surfaces, id)
}

// Count returns the number of live surfaces
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}

// ResetOverride returns one surface's override to neutral. Reports
// whether the surface exists.
func (r *Registry) ResetOverride(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return false
	}
	s.Override.Reset()
	return true
}

// ResetAllOverrides returns every active override to neutral and reports
// how many were dropped.
func (r *Registry) ResetAllOverrides() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset := 0
	for _, s := range r.surfaces {
		if s.Override.Active {
			s.Override.Reset()
			reset++
		}
	}
	return reset
}

// Snapshots returns the scale state of every surface with factors
// resolved against the session configuration
func (r *Registry) Snapshots(cfg scale.Config) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		sx, sy := scale.Resolve(cfg, &s.Override)
		out = append(out, Snapshot{
			ID:            s.ID,
			BufferScale:   s.BufferScale,
			ScaleX:        sx,
			ScaleY:        sy,
			Override:      s.Override.Active,
			RoundX:        s.Override.RoundX,
			RoundY:        s.Override.RoundY,
			LogicalWidth:  s.Override.LogicalWidth,
			LogicalHeight: s.Override.LogicalHeight,
		})
	}
	return out
}
