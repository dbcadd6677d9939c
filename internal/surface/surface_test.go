package surface

import (
	"sort"
	"testing"

	"github.com/bnema/waybridge/internal/scale"
	"github.com/stretchr/testify/assert"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Count())

	s := r.Create(7)
	assert.Equal(t, uint32(7), s.ID)
	assert.Equal(t, int32(1), s.BufferScale)
	assert.Equal(t, 1.0, s.ContentsScale)
	assert.False(t, s.Override.Active)

	// Creating the same ID again returns the registered surface
	again := r.Create(7)
	assert.Same(t, s, again)
	assert.Equal(t, 1, r.Count())

	assert.Same(t, s, r.Get(7))
	assert.Nil(t, r.Get(8))

	r.Remove(7)
	assert.Nil(t, r.Get(7))
	assert.Equal(t, 0, r.Count())
}

func TestResetOverride(t *testing.T) {
	r := NewRegistry()
	s := r.Create(1)
	s.Override = scale.Override{Active: true, ScaleX: 2, ScaleY: 2, RoundX: true}

	assert.True(t, r.ResetOverride(1))
	assert.False(t, s.Override.Active)
	assert.False(t, s.Override.RoundX)

	assert.False(t, r.ResetOverride(99))
}

func TestResetAllOverrides(t *testing.T) {
	r := NewRegistry()
	a := r.Create(1)
	a.Override = scale.Override{Active: true, ScaleX: 2, ScaleY: 2}
	b := r.Create(2)
	b.Override = scale.Override{Active: true, ScaleX: 1.5, ScaleY: 1.5, RoundY: true}
	r.Create(3) // no override

	assert.Equal(t, 2, r.ResetAllOverrides())
	assert.False(t, a.Override.Active)
	assert.False(t, b.Override.Active)
	assert.False(t, b.Override.RoundY)

	assert.Equal(t, 0, r.ResetAllOverrides())
}

func TestSurfaceDamageUsesBufferScale(t *testing.T) {
	cfg := scale.NewDirect(1.0, 2.0, 2.0)
	s := &Surface{ID: 1, BufferScale: 2, ContentsScale: 1.0}

	// Divisor per axis is session factor times buffer scale: 4
	r := s.HostDamage(cfg, scale.Rect{X1: 8, Y1: 8, X2: 16, Y2: 16})
	assert.Equal(t, scale.Rect{X1: 2, Y1: 2, X2: 4, Y2: 4}, r)
}

func TestSurfaceViewportSize(t *testing.T) {
	s := &Surface{ID: 1, BufferScale: 1, ContentsScale: 1.5}

	// Legacy multiplies the contents scale into the divisor
	w, h, apply := s.ViewportSize(scale.NewLegacy(2.0), 800, 600)
	assert.Equal(t, int32(267), w)
	assert.Equal(t, int32(200), h)
	assert.True(t, apply)

	// Direct uses only the session factors
	w, h, apply = s.ViewportSize(scale.NewDirect(1.0, 2.0, 2.0), 800, 600)
	assert.Equal(t, int32(400), w)
	assert.Equal(t, int32(300), h)
	assert.True(t, apply)
}

func TestSnapshotsResolveEffectiveFactors(t *testing.T) {
	cfg := scale.NewDirect(1.0, 2.0, 2.0)
	r := NewRegistry()

	plain := r.Create(1)
	negotiated := r.Create(2)
	scale.TryWindowScale(cfg, &negotiated.Override, 101, 50)

	snaps := r.Snapshots(cfg)
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })

	assert.Len(t, snaps, 2)

	assert.Equal(t, plain.ID, snaps[0].ID)
	assert.False(t, snaps[0].Override)
	assert.Equal(t, 2.0, snaps[0].ScaleX)
	assert.Equal(t, 2.0, snaps[0].ScaleY)

	assert.Equal(t, negotiated.ID, snaps[1].ID)
	assert.True(t, snaps[1].Override)
	assert.Equal(t, 101.0/50.0, snaps[1].ScaleX)
	assert.Equal(t, int32(50), snaps[1].LogicalWidth)
	assert.Equal(t, int32(25), snaps[1].LogicalHeight)
}
