// Package x11backend implements the nested-X11 backend.Backend:
// a client of a running X server, selected when DISPLAY is set and
// WAYLAND_DISPLAY is not (spec §4.8).
package x11backend

import (
	"context"
	"fmt"

	"github.com/jezek/xgb"

	"github.com/wlrootsgo/wlrcore/backend"
	"github.com/wlrootsgo/wlrcore/internal/wlog"
)

// Backend connects to an X server via the core X protocol connection
// and presents numOutputs top-level windows, each backing one Output.
type Backend struct {
	numOutputs int

	conn *xgb.Conn

	outputs []*Output

	state   backend.State
	signals backend.Signals
}

func New(numOutputs int) *Backend {
	if numOutputs < 1 {
		numOutputs = 1
	}
	return &Backend{numOutputs: numOutputs}
}

func (b *Backend) Kind() backend.Kind        { return backend.KindX11 }
func (b *Backend) State() backend.State      { return b.state }
func (b *Backend) Signals() *backend.Signals { return &b.signals }

// Init opens the X connection. DISPLAY is read by xgb.NewConn from the
// environment, matching the auto-selector's own DISPLAY check (spec
// §4.8).
func (b *Backend) Init(ctx context.Context) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("wlrcore/x11backend: connect: %w", err)
	}
	b.conn = conn
	return nil
}

func (b *Backend) Start(ctx context.Context) error {
	for i := 0; i < b.numOutputs; i++ {
		out := newOutput(i)
		b.outputs = append(b.outputs, out)
		b.signals.NewOutput.Emit(out)
	}
	b.state = backend.Started
	wlog.Infof("x11backend: started with %d nested output(s)", b.numOutputs)
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
	if b.conn != nil {
		b.conn.Close()
	}
	b.state = backend.Destroyed
	b.signals.Destroy.Emit(b)
}
