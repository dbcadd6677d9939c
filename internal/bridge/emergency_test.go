package bridge

import (
	"testing"

	"github.com/bnema/waybridge/internal/scale"
	"github.com/bnema/waybridge/internal/surface"
	"github.com/stretchr/testify/assert"
)

func TestEmergencyResetDropsOverrides(t *testing.T) {
	surfaces := surface.NewRegistry()
	s := surfaces.Create(7)

	// 201 cannot round-trip at 2.0, so negotiation installs an override
	scale.TryWindowScale(scale.NewDirect(2.0, 2.0, 2.0), &s.Override, 201, 100)
	assert.True(t, s.Override.Active)

	er := NewEmergencyReset(surfaces)
	er.trigger("test")

	assert.False(t, s.Override.Active)
}

func TestEmergencyResetStopIsIdempotent(t *testing.T) {
	er := NewEmergencyReset(surface.NewRegistry())
	er.Start()
	er.Stop()
	er.Stop()
}
