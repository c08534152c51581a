// Package waylandbackend implements the nested-Wayland backend.Backend:
// a client of a parent Wayland compositor, selected when WAYLAND_DISPLAY
// is set (spec §4.8).
package waylandbackend

import (
	"context"
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/wlrootsgo/wlrcore/backend"
	"github.com/wlrootsgo/wlrcore/internal/wlog"
)

// Backend connects to a parent Wayland compositor and presents
// numOutputs toplevel windows, each backing one Output (spec §4.8
// "WLR_WL_OUTPUTS").
type Backend struct {
	numOutputs int

	display  *client.Display
	registry *client.Registry

	outputs []*Output

	state   backend.State
	signals backend.Signals
}

// New creates a nested-Wayland backend targeting numOutputs windows.
func New(numOutputs int) *Backend {
	if numOutputs < 1 {
		numOutputs = 1
	}
	return &Backend{numOutputs: numOutputs}
}

func (b *Backend) Kind() backend.Kind        { return backend.KindWayland }
func (b *Backend) State() backend.State      { return b.state }
func (b *Backend) Signals() *backend.Signals { return &b.signals }

// Init connects to the parent compositor and fetches its registry, the
// two calls waymon's own nested-Wayland client makes before doing
// anything else.
func (b *Backend) Init(ctx context.Context) error {
	display, err := client.Connect("")
	if err != nil {
		return fmt.Errorf("wlrcore/waylandbackend: connect: %w", err)
	}
	registry, err := display.GetRegistry()
	if err != nil {
		display.Destroy()
		return fmt.Errorf("wlrcore/waylandbackend: get registry: %w", err)
	}
	b.display = display
	b.registry = registry
	return nil
}

// Start creates one Output per configured window. Each window's actual
// wl_surface/xdg_toplevel plumbing belongs to the renderer layer (out
// of scope, spec §1); this backend only owns the outputs' logical
// state and the parent-compositor connection they ride on.
func (b *Backend) Start(ctx context.Context) error {
	for i := 0; i < b.numOutputs; i++ {
		out := newOutput(i)
		b.outputs = append(b.outputs, out)
		b.signals.NewOutput.Emit(out)
	}
	b.state = backend.Started
	wlog.Infof("waylandbackend: started with %d nested output(s)", b.numOutputs)
	return nil
}

func (b *Backend) Outputs() []*Output { return append([]*Output(nil), b.outputs...) }

func (b *Backend) Destroy() {
	if b.state == backend.Destroyed {
		return
	}
	for _, o := range b.outputs {
		o.destroy()
	}
	if b.display != nil {
		b.display.Destroy()
	}
	b.state = backend.Destroyed
	b.signals.Destroy.Emit(b)
}
