// Package display discovers host outputs and derives the geometry
// advertised to the guest
package display

import (
	"context"
	"fmt"

	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/scale"
)

// Output represents one host output
type Output struct {
	Name        string
	Description string
	X           int32 // Position in host global coordinate space
	Y           int32
	Width       int32
	Height      int32
	Primary     bool
	Scale       float64 // host scale factor of this output
}

// Bounds returns the output's boundaries
func (o *Output) Bounds() (x1, y1, x2, y2 int32) {
	return o.X, o.Y, o.X + o.Width, o.Y + o.Height
}

// Contains checks if a point is within this output
func (o *Output) Contains(x, y int32) bool {
	return x >= o.X && x < o.X+o.Width && y >= o.Y && y < o.Y+o.Height
}

// Advertised is the guest-facing view of one host output. Dimensions are
// scaled by the session's uniform output factor; positions pass through.
type Advertised struct {
	Name       string  `json:"name"`
	X          int32   `json:"x"`
	Y          int32   `json:"y"`
	Width      int32   `json:"width"`
	Height     int32   `json:"height"`
	HostWidth  int32   `json:"host_width"`
	HostHeight int32   `json:"host_height"`
	HostScale  float64 `json:"host_scale"`
	Primary    bool    `json:"primary,omitempty"`
}

// Backend interface for different output discovery methods
type Backend interface {
	GetOutputs() ([]*Output, error)
	Close() error
}

// Display manages the host output set of one bridge session
type Display struct {
	outputs []*Output
	backend Backend
}

// New creates a display manager, picking a discovery backend per the
// outputs configuration: "wlr" and "static" force their backend, "auto"
// tries wlr output management first and falls back to the static list.
func New(ctx context.Context, cfg config.OutputsConfig) (*Display, error) {
	var backend Backend
	var err error

	switch cfg.Backend {
	case "static":
		backend, err = newStaticBackend(cfg.Static)
	case "wlr":
		backend, err = newWlrBackend(ctx)
	default:
		backend, err = newWlrBackend(ctx)
		if err != nil {
			logger.Debugf("display: wlr output management unavailable: %v", err)
			backend, err = newStaticBackend(cfg.Static)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("no display backend available: %w", err)
	}

	outputs, err := backend.GetOutputs()
	if err != nil {
		backend.Close()
		return nil, err
	}
	determinePrimaryOutput(outputs)

	return &Display{
		outputs: outputs,
		backend: backend,
	}, nil
}

// Outputs returns all detected host outputs
func (d *Display) Outputs() []*Output {
	return d.outputs
}

// PrimaryOutput returns the primary output
func (d *Display) PrimaryOutput() *Output {
	for _, o := range d.outputs {
		if o.Primary {
			return o
		}
	}
	// Fallback to first output
	if len(d.outputs) > 0 {
		return d.outputs[0]
	}
	return nil
}

// OutputAt returns the output containing the given host coordinates
func (d *Display) OutputAt(x, y int32) *Output {
	for _, o := range d.outputs {
		if o.Contains(x, y) {
			return o
		}
	}
	return nil
}

// PrimaryScale returns the host scale factor of the primary output,
// defaulting to 1 when nothing was discovered
func (d *Display) PrimaryScale() float64 {
	if p := d.PrimaryOutput(); p != nil && p.Scale > 0 {
		return p.Scale
	}
	return 1.0
}

// Refresh re-queries the backend for the current output set
func (d *Display) Refresh() error {
	outputs, err := d.backend.GetOutputs()
	if err != nil {
		return fmt.Errorf("refresh outputs: %w", err)
	}
	determinePrimaryOutput(outputs)
	d.outputs = outputs
	return nil
}

// Advertise returns the guest-facing geometry of every output under the
// session's uniform output factor
func (d *Display) Advertise(sc scale.Config) []Advertised {
	out := make([]Advertised, 0, len(d.outputs))
	for _, o := range d.outputs {
		w, h := scale.OutputDimensions(sc, o.Width, o.Height)
		out = append(out, Advertised{
			Name:       o.Name,
			X:          o.X,
			Y:          o.Y,
			Width:      w,
			Height:     h,
			HostWidth:  o.Width,
			HostHeight: o.Height,
			HostScale:  o.Scale,
			Primary:    o.Primary,
		})
	}
	return out
}

// Close cleans up resources
func (d *Display) Close() error {
	if d.backend != nil {
		return d.backend.Close()
	}
	return nil
}

// determinePrimaryOutput sets the primary output based on position.
// The output at (0,0) is primary, with fallback to the first output.
func determinePrimaryOutput(outputs []*Output) {
	for _, o := range outputs {
		o.Primary = false
	}

	for _, o := range outputs {
		if o.X == 0 && o.Y == 0 {
			o.Primary = true
			return
		}
	}

	if len(outputs) > 0 {
		outputs[0].Primary = true
	}
}
