// Package noopbackend is the inert backend.Backend: it advertises no
// outputs or inputs and exists purely as a safe default when no other
// backend applies (spec §4.1 "noop ... always active" extended to the
// backend layer per §9's tagged-variant design).
package noopbackend

import (
	"context"

	"github.com/wlrootsgo/wlrcore/backend"
)

type Backend struct {
	state   backend.State
	signals backend.Signals
}

func New() *Backend { return &Backend{} }

func (b *Backend) Kind() backend.Kind      { return backend.KindNoop }
func (b *Backend) State() backend.State    { return b.state }
func (b *Backend) Signals() *backend.Signals { return &b.signals }

func (b *Backend) Init(ctx context.Context) error { return nil }

func (b *Backend) Start(ctx context.Context) error {
	b.state = backend.Started
	return nil
}

func (b *Backend) Destroy() {
	if b.state == backend.Destroyed {
		return
	}
	b.state = backend.Destroyed
	b.signals.Destroy.Emit(b)
}
