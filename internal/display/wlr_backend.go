package display

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/libwldevices-go/output_management"
)

// wlrBackend discovers outputs over the wlr-output-management protocol
type wlrBackend struct {
	manager *output_management.OutputManager
}

func newWlrBackend(ctx context.Context) (Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	manager, err := output_management.NewOutputManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect output manager: %w", err)
	}
	return &wlrBackend{manager: manager}, nil
}

func (b *wlrBackend) GetOutputs() ([]*Output, error) {
	heads := b.manager.GetEnabledHeads()
	if len(heads) == 0 {
		return nil, fmt.Errorf("no enabled outputs")
	}

	outputs := make([]*Output, 0, len(heads))
	for _, head := range heads {
		out := &Output{
			Name:        head.Name,
			Description: head.Description,
			X:           head.Position.X,
			Y:           head.Position.Y,
			Width:       head.Size.Width,
			Height:      head.Size.Height,
			Scale:       head.Scale,
		}
		if head.CurrentMode != nil {
			out.Width = head.CurrentMode.Width
			out.Height = head.CurrentMode.Height
		}
		if out.Scale <= 0 {
			out.Scale = 1.0
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (b *wlrBackend) Close() error {
	return b.manager.Close()
}
