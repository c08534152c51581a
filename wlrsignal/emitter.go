// Package wlrsignal re-encodes the source's intrusive wl_signal/wl_listener
// pattern (spec §9 "Listener/emitter pattern", option a) as a generic,
// handle-based broadcast emitter: subscribers get back an opaque
// subscription id instead of splicing themselves into a linked list, and
// removal during emission is always safe.
package wlrsignal

import (
	"sort"
	"sync"
)

// Emitter broadcasts values of type T to a set of registered callbacks.
// The zero value is ready to use.
type Emitter[T any] struct {
	mu        sync.Mutex
	listeners map[uint64]func(T)
	nextID    uint64
	emitting  bool
	pending   []uint64 // ids removed while emitting; reaped after Emit returns
}

// On registers fn and returns a subscription id usable with Off.
func (e *Emitter[T]) On(fn func(T)) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[uint64]func(T))
	}
	e.nextID++
	id := e.nextID
	e.listeners[id] = fn
	return id
}

// Off removes a listener. Safe to call from within a callback running
// during Emit — removal is deferred until the emission in progress
// finishes draining its snapshot.
func (e *Emitter[T]) Off(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.emitting {
		e.pending = append(e.pending, id)
		return
	}
	delete(e.listeners, id)
}

// Emit calls every currently-registered listener with payload, in
// registration order. A listener that calls Off (including removing
// itself or another listener, or tearing down the emitter's owner) does
// not corrupt the in-progress dispatch: Emit takes a snapshot of the
// listener set before calling out.
func (e *Emitter[T]) Emit(payload T) {
	e.mu.Lock()
	if len(e.listeners) == 0 {
		e.mu.Unlock()
		return
	}
	ids := make([]uint64, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	// On hands out ids in increasing order, so ascending id is
	// registration order.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, e.listeners[id])
	}
	e.emitting = true
	e.mu.Unlock()

	for i, fn := range fns {
		_ = ids[i]
		fn(payload)
	}

	e.mu.Lock()
	e.emitting = false
	for _, id := range e.pending {
		delete(e.listeners, id)
	}
	e.pending = nil
	e.mu.Unlock()
}

// Len reports the number of currently registered listeners.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
