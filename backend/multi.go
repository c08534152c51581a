package backend

import (
	"context"
	"fmt"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
)

// Multi holds an ordered list of child backends and forwards
// init/start/destroy to each, bridging their signals to its own (spec
// §4.7).
type Multi struct {
	children []Backend
	state    State
	signals  Signals
}

// NewMulti composes children into a single Backend, the object the
// auto-selector returns (spec §4.8).
func NewMulti(children ...Backend) *Multi {
	m := &Multi{children: children}
	for _, c := range children {
		m.bridge(c)
	}
	return m
}

func (m *Multi) bridge(c Backend) {
	s := c.Signals()
	s.NewOutput.On(func(v any) { m.signals.NewOutput.Emit(v) })
	s.NewInput.On(func(v any) { m.signals.NewInput.Emit(v) })
	s.Destroy.On(func(Backend) { m.signals.Destroy.Emit(m) })
}

func (m *Multi) Kind() Kind    { return KindMulti }
func (m *Multi) State() State  { return m.state }
func (m *Multi) Signals() *Signals { return &m.signals }

// Children returns the backends composed into m, in init order.
func (m *Multi) Children() []Backend {
	return append([]Backend(nil), m.children...)
}

// Init calls Init on each child in order. A failing child aborts the
// remaining Inits, but every child that succeeded is destroyed cleanly
// before the error returns (spec §4.7 "any child's failure aborts the
// operation but permits already-initialized children to be destroyed
// cleanly").
func (m *Multi) Init(ctx context.Context) error {
	var initialized []Backend
	for _, c := range m.children {
		if err := c.Init(ctx); err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				initialized[i].Destroy()
			}
			return fmt.Errorf("wlrcore/backend: init %s: %w", c.Kind(), err)
		}
		initialized = append(initialized, c)
	}
	return nil
}

func (m *Multi) Start(ctx context.Context) error {
	var started []Backend
	for _, c := range m.children {
		if err := c.Start(ctx); err != nil {
			for i := len(started) - 1; i >= 0; i-- {
				started[i].Destroy()
			}
			return fmt.Errorf("wlrcore/backend: start %s: %w", c.Kind(), err)
		}
		started = append(started, c)
	}
	m.state = Started
	wlog.Infof("backend: multi started with %d children", len(m.children))
	return nil
}

func (m *Multi) Destroy() {
	if m.state == Destroyed {
		return
	}
	for i := len(m.children) - 1; i >= 0; i-- {
		m.children[i].Destroy()
	}
	m.state = Destroyed
	m.signals.Destroy.Emit(m)
}
