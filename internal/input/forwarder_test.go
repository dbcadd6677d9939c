package input

import (
	"testing"

	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/waybridge/internal/surface"
	"github.com/bnema/wlturbo/wl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(v int32) wl.Fixed { return wl.Fixed(v * 256) }

func TestMotionUsesGlobalFactorsWithoutFocus(t *testing.T) {
	buf := NewBufferInjector()
	f := NewForwarder(scale.NewDirect(1.0, 2.0, 2.0), surface.NewRegistry(), buf)

	require.NoError(t, f.Motion(fixed(10), fixed(20)))

	events := buf.Events()
	require.Len(t, events, 1)
	assert.Equal(t, KindMotion, events[0].Kind)
	assert.Equal(t, fixed(20), events[0].X)
	assert.Equal(t, fixed(40), events[0].Y)
}

func TestEnterAppliesFocusOverride(t *testing.T) {
	reg := surface.NewRegistry()
	s := reg.Create(7)
	s.Override = scale.Override{Active: true, ScaleX: 3.0, ScaleY: 2.0}

	buf := NewBufferInjector()
	f := NewForwarder(scale.NewDirect(1.0, 2.0, 2.0), reg, buf)

	require.NoError(t, f.Enter(7, fixed(10), fixed(20)))
	assert.Equal(t, uint32(7), f.Focus())

	events := buf.Events()
	require.Len(t, events, 1)
	assert.Equal(t, fixed(30), events[0].X)
	assert.Equal(t, fixed(40), events[0].Y)

	// Leaving drops back to the global factors.
	f.Leave()
	assert.Equal(t, uint32(0), f.Focus())
	buf.Reset()
	require.NoError(t, f.Motion(fixed(10), fixed(20)))
	events = buf.Events()
	require.Len(t, events, 1)
	assert.Equal(t, fixed(20), events[0].X)
}

func TestMotionLegacyUniform(t *testing.T) {
	buf := NewBufferInjector()
	f := NewForwarder(scale.NewLegacy(2.0), surface.NewRegistry(), buf)

	require.NoError(t, f.Motion(fixed(100), fixed(50)))

	events := buf.Events()
	require.Len(t, events, 1)
	assert.Equal(t, fixed(200), events[0].X)
	assert.Equal(t, fixed(100), events[0].Y)
}

func TestScrollRescalesPerAxis(t *testing.T) {
	buf := NewBufferInjector()
	f := NewForwarder(scale.NewDirect(1.0, 2.0, 4.0), surface.NewRegistry(), buf)

	require.NoError(t, f.Scroll(scale.AxisVertical, fixed(10)))
	require.NoError(t, f.Scroll(scale.AxisHorizontal, fixed(10)))

	events := buf.Events()
	require.Len(t, events, 2)
	// Axis 0 is vertical and follows the Y factor.
	assert.Equal(t, scale.AxisVertical, events[0].Axis)
	assert.Equal(t, fixed(40), events[0].Value)
	assert.Equal(t, scale.AxisHorizontal, events[1].Axis)
	assert.Equal(t, fixed(20), events[1].Value)
}

func TestRelativeMotionPassesThrough(t *testing.T) {
	reg := surface.NewRegistry()
	s := reg.Create(7)
	s.Override = scale.Override{Active: true, ScaleX: 3.0, ScaleY: 3.0}

	buf := NewBufferInjector()
	f := NewForwarder(scale.NewDirect(1.0, 2.0, 2.0), reg, buf)
	require.NoError(t, f.Enter(7, fixed(0), fixed(0)))
	buf.Reset()

	require.NoError(t, f.RelativeMotion(3.5, -1.25))

	events := buf.Events()
	require.Len(t, events, 1)
	assert.Equal(t, KindRelativeMotion, events[0].Kind)
	assert.Equal(t, 3.5, events[0].DX)
	assert.Equal(t, -1.25, events[0].DY)
}

func TestButtonPassesThrough(t *testing.T) {
	buf := NewBufferInjector()
	f := NewForwarder(scale.NewDirect(1.0, 2.0, 2.0), surface.NewRegistry(), buf)

	require.NoError(t, f.Button(ButtonLeft, true))
	require.NoError(t, f.Button(ButtonLeft, false))
	require.NoError(t, f.Button(ButtonSide, true))

	events := buf.Events()
	require.Len(t, events, 3)
	assert.Equal(t, ButtonLeft, events[0].Button)
	assert.True(t, events[0].Pressed)
	assert.False(t, events[1].Pressed)
	assert.Equal(t, ButtonSide, events[2].Button)
}
