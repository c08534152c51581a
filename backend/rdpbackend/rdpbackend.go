// Package rdpbackend is a stub backend.Backend for the RDP remoting
// path named in spec §3's Backend tag set. No RDP/FreeRDP binding
// exists anywhere in the reachable dependency set (see DESIGN.md), so
// this backend only tracks lifecycle state and never advertises an
// output — it exists so the Kind and Multi-Backend composition paths
// remain total over every tag the spec names.
package rdpbackend

import (
	"context"
	"fmt"

	"github.com/wlrootsgo/wlrcore/backend"
	"github.com/wlrootsgo/wlrcore/wlrerr"
)

type Backend struct {
	state   backend.State
	signals backend.Signals
}

func New() *Backend { return &Backend{} }

func (b *Backend) Kind() backend.Kind        { return backend.KindRDP }
func (b *Backend) State() backend.State      { return b.state }
func (b *Backend) Signals() *backend.Signals { return &b.signals }

func (b *Backend) Init(ctx context.Context) error {
	return fmt.Errorf("wlrcore/rdpbackend: %w: no RDP transport available in this build", wlrerr.ErrUnavailable)
}

func (b *Backend) Start(ctx context.Context) error {
	return fmt.Errorf("wlrcore/rdpbackend: %w: no RDP transport available in this build", wlrerr.ErrUnavailable)
}

func (b *Backend) Destroy() {
	if b.state == backend.Destroyed {
		return
	}
	b.state = backend.Destroyed
	b.signals.Destroy.Emit(b)
}
