package runtime

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
)

// Pollable is anything the event loop can multiplex: DRM FDs, the libinput
// FD, the udev netlink socket, the D-Bus connection. Dispatch is called
// when Fd becomes readable and must drain every pending event before
// returning (spec §4.2, §4.6: "readable events drain all pending").
type Pollable interface {
	Fd() int
	Dispatch() error
}

// Runtime is the single event loop mandated by spec §5: one owner for
// every FD, no preemptive concurrency, every callback serialized on this
// loop. It is created once at process start and threaded through every
// constructor (Design Notes §9 "Global mutable state") instead of being
// reached for as package-level state.
type Runtime struct {
	Config Config

	mu       sync.Mutex
	pollable map[int]Pollable
}

// New creates a Runtime with its configuration resolved from the process
// environment per spec §6.
func New() *Runtime {
	return &Runtime{
		Config:   LoadConfig(),
		pollable: make(map[int]Pollable),
	}
}

// Register adds p to the set of FDs the loop multiplexes. Re-registering
// the same Fd replaces the previous registration.
func (rt *Runtime) Register(p Pollable) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pollable[p.Fd()] = p
}

// Unregister removes fd from the multiplexed set.
func (rt *Runtime) Unregister(fd int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.pollable, fd)
}

// Run blocks, multiplexing every registered Pollable with a single
// poll(2) call per iteration, until ctx is cancelled. This is the loop
// spec §5 describes as owning "all FDs (DRM, libinput, udev, D-Bus,
// per-client sockets)"; per-output commit scheduling, input dispatch and
// VT-switch handling all happen as Dispatch calls made from here, so
// there is no cross-callback concurrency to reason about.
func (rt *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rt.mu.Lock()
		fds := make([]unix.PollFd, 0, len(rt.pollable))
		targets := make([]Pollable, 0, len(rt.pollable))
		for fd, p := range rt.pollable {
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
			targets = append(targets, p)
		}
		rt.mu.Unlock()

		if len(fds) == 0 {
			return nil
		}

		n, err := unix.Poll(fds, 250)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("wlrcore: poll: %w", err)
		}
		if n == 0 {
			continue
		}

		for i, pfd := range fds {
			if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
				continue
			}
			if err := targets[i].Dispatch(); err != nil {
				wlog.Errorf("dispatch on fd %d: %v", pfd.Fd, err)
			}
		}
	}
}
