// Package backend defines the contract every display/input source in
// the core implements, and composes them (spec §4.7 "Multi-Backend",
// §4.8 "Auto-Selector").
package backend

import (
	"context"

	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// Kind tags which concrete backend a Backend is, the tagged-variant
// approach spec §9 "Capability polymorphism" calls out as composing
// cleanly with the multi-backend.
type Kind int

const (
	KindDRM Kind = iota
	KindLibinput
	KindWayland
	KindX11
	KindHeadless
	KindRDP
	KindNoop
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindDRM:
		return "drm"
	case KindLibinput:
		return "libinput"
	case KindWayland:
		return "wayland"
	case KindX11:
		return "x11"
	case KindHeadless:
		return "headless"
	case KindRDP:
		return "rdp"
	case KindNoop:
		return "noop"
	case KindMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// State is a Backend's lifecycle stage (spec §3 "Backend ... lifecycle
// state (CREATED, STARTED, DESTROYED)").
type State int

const (
	Created State = iota
	Started
	Destroyed
)

// Backend is the capability-polymorphic contract every display/input
// source implements (spec §3 "Backend").
type Backend interface {
	Kind() Kind
	State() State

	// Init performs capability discovery without starting any I/O.
	Init(ctx context.Context) error
	// Start begins emitting new_output/new_input signals and accepting
	// commits.
	Start(ctx context.Context) error
	// Destroy releases all resources. Safe to call on an already-
	// destroyed backend.
	Destroy()

	// Signals returns the three cross-boundary emitters every backend
	// exposes (spec §6 "Signals exposed to the compositor layer").
	Signals() *Signals
}

// Signals bundles the three emitters spec §6 names as the entire
// cross-boundary API a Backend publishes.
type Signals struct {
	NewOutput wlrsignal.Emitter[any]
	NewInput  wlrsignal.Emitter[any]
	Destroy   wlrsignal.Emitter[Backend]
}
