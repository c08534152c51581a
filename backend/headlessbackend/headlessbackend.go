// Package headlessbackend implements a backend.Backend with no real
// kernel resources: outputs are pure in-memory state machines that
// complete every commit synchronously. Used for testing and for
// scenario S1 ("headless boot").
package headlessbackend

import (
	"context"
	"fmt"

	"github.com/wlrootsgo/wlrcore/backend"
	"github.com/wlrootsgo/wlrcore/internal/wlog"
)

// Backend owns a fixed number of headless Outputs, created at Start
// time (spec §4.8 "WLR_BACKENDS=headless,headless" selects two
// instances, each contributing its own output set — here modeled as
// one Backend per instance each owning one Output, composed under a
// Multi by the auto-selector).
type Backend struct {
	numOutputs int
	outputs    []*Output
	state      backend.State
	signals    backend.Signals

	selfTestCursor *CursorInjector // set by EnableSelfTestCursor
}

// New creates a headless backend that will create numOutputs virtual
// outputs on Start.
func New(numOutputs int) *Backend {
	if numOutputs < 1 {
		numOutputs = 1
	}
	return &Backend{numOutputs: numOutputs}
}

func (b *Backend) Kind() backend.Kind        { return backend.KindHeadless }
func (b *Backend) State() backend.State      { return b.state }
func (b *Backend) Signals() *backend.Signals { return &b.signals }

func (b *Backend) Init(ctx context.Context) error { return nil }

func (b *Backend) Start(ctx context.Context) error {
	for i := 0; i < b.numOutputs; i++ {
		out := newOutput(fmt.Sprintf("HEADLESS-%d", i+1))
		b.outputs = append(b.outputs, out)
		b.signals.NewOutput.Emit(out)
	}
	b.state = backend.Started
	wlog.Infof("headlessbackend: started with %d virtual output(s)", b.numOutputs)
	return nil
}

func (b *Backend) Outputs() []*Output {
	return append([]*Output(nil), b.outputs...)
}

func (b *Backend) Destroy() {
	if b.state == backend.Destroyed {
		return
	}
	if b.selfTestCursor != nil {
		_ = b.selfTestCursor.Close()
		b.selfTestCursor = nil
	}
	for _, o := range b.outputs {
		o.destroy()
	}
	b.state = backend.Destroyed
	b.signals.Destroy.Emit(b)
}
