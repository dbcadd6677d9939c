package display

import (
	"fmt"

	"github.com/bnema/waybridge/internal/config"
)

// staticBackend serves the output list from configuration, for
// compositors without wlr-output-management and for tests
type staticBackend struct {
	outputs []config.StaticOutput
}

func newStaticBackend(outputs []config.StaticOutput) (Backend, error) {
	if len(outputs) == 0 {
		return nil, fmt.Errorf("no static outputs configured")
	}
	return &staticBackend{outputs: outputs}, nil
}

func (b *staticBackend) GetOutputs() ([]*Output, error) {
	outputs := make([]*Output, 0, len(b.outputs))
	for i, so := range b.outputs {
		name := so.Name
		if name == "" {
			name = fmt.Sprintf("static-%d", i)
		}
		s := so.Scale
		if s <= 0 {
			s = 1.0
		}
		outputs = append(outputs, &Output{
			Name:   name,
			X:      so.X,
			Y:      so.Y,
			Width:  so.Width,
			Height: so.Height,
			Scale:  s,
		})
	}
	return outputs, nil
}

func (b *staticBackend) Close() error {
	return nil
}
