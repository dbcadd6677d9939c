package bridge

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/surface"
)

// resetTriggerFile is polled as an out-of-band reset trigger for
// environments where delivering a signal is inconvenient.
const resetTriggerFile = "/tmp/waybridge-reset"

// EmergencyReset drops every negotiated override on demand, returning
// all surfaces to the session factors. A wedged window that negotiated
// factors against stale geometry renegotiates on its next configure.
type EmergencyReset struct {
	surfaces *surface.Registry
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewEmergencyReset creates a reset handler over the given registry.
func NewEmergencyReset(surfaces *surface.Registry) *EmergencyReset {
	return &EmergencyReset{
		surfaces: surfaces,
		stopChan: make(chan struct{}),
	}
}

// Start begins watching for reset triggers.
func (er *EmergencyReset) Start() {
	// 1. Signal handler for SIGUSR1
	go er.handleSignals()

	// 2. File-based trigger
	go er.monitorFileTrigger()
}

// Stop stops all watchers.
func (er *EmergencyReset) Stop() {
	er.stopOnce.Do(func() {
		close(er.stopChan)
	})
}

// handleSignals listens for SIGUSR1 to trigger an override reset
func (er *EmergencyReset) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			logger.Warn("SIGUSR1 received, dropping negotiated overrides")
			er.trigger("signal")
		case <-er.stopChan:
			return
		}
	}
}

// monitorFileTrigger checks for the presence of the trigger file
func (er *EmergencyReset) monitorFileTrigger() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := os.Stat(resetTriggerFile); err == nil {
				logger.Warn("Reset trigger file detected, dropping negotiated overrides")
				os.Remove(resetTriggerFile) // Clean up
				er.trigger("file")
			}
		case <-er.stopChan:
			return
		}
	}
}

// trigger performs the reset
func (er *EmergencyReset) trigger(reason string) {
	count := er.surfaces.ResetAllOverrides()
	logger.Warnf("Reset %d override(s) (reason: %s)", count, reason)
}
