// Package session implements the Session & Device Arbiter (spec §4.1): a
// process-lifetime authority that opens restricted DRM/evdev file
// descriptors on behalf of the compositor, tracks VT-switch activation
// state, and re-issues device revocation events.
//
// Grounded on backend/session/session.c and backend/session/noop.c from
// the original implementation, and on the teacher's priority-list backend
// selection pattern in internal/display/backends.go.
package session

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
	"github.com/wlrootsgo/wlrcore/runtime"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// impl is the priv-boundary implementation a Session delegates to. Exactly
// one of logind, direct-VT, or noop is live at a time, chosen by Open in
// the priority order spec §4.1 mandates.
type impl interface {
	name() string
	openDevice(path string) (fd int, hasMaster bool, err error)
	closeDevice(fd int) error
	changeVT(n uint) bool
	close()
}

// OpenedDevice is an abstract file descriptor paired with its device node
// major/minor, borrowed by backends but owned by the Session (spec §3).
type OpenedDevice struct {
	Path  string
	FD    int
	Major uint32
	Minor uint32
}

// Session is the process-wide singleton representing the caller's claim
// to the seat (spec §3, §4.1).
type Session struct {
	mu       sync.Mutex
	impl     impl
	active   bool
	seatName string
	vtNumber uint

	devices map[int]*OpenedDevice

	SignalActivate   wlrsignal.Emitter[*Session]
	SignalDeactivate wlrsignal.Emitter[*Session]
}

// Open tries implementations in priority order — logind over D-Bus, then
// direct VT ioctls, then noop — and returns the first that succeeds, per
// spec §4.1.
func Open(rt *runtime.Runtime) (*Session, error) {
	seat := rt.Config.SeatName
	if seat == "" {
		seat = "seat0"
	}

	candidates := []func(string) (impl, uint, bool, error){
		newLogindImpl,
		newDirectVTImpl,
		newNoopImpl,
	}

	var lastErr error
	for _, try := range candidates {
		im, vt, active, err := try(seat)
		if err != nil {
			lastErr = err
			continue
		}
		s := &Session{
			impl:     im,
			active:   active,
			seatName: seat,
			vtNumber: vt,
			devices:  make(map[int]*OpenedDevice),
		}
		if li, ok := im.(*logindImpl); ok {
			li.bindSession(s)
		}
		wlog.Infof("session: using %s backend for seat %s", im.name(), seat)
		return s, nil
	}
	return nil, fmt.Errorf("wlrcore/session: no session backend available: %w", lastErr)
}

// Active reports whether the seat is currently the foreground VT.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SeatName returns the seat this Session was opened for (e.g. "seat0").
func (s *Session) SeatName() string { return s.seatName }

// VTNumber returns the VT number, or 0 for a headless seat.
func (s *Session) VTNumber() uint { return s.vtNumber }

// Open opens path, which must be under /dev/dri or /dev/input (spec §6
// "Device nodes"). When the session is inactive, DRM opens still succeed
// but the FD lacks DRM-master; evdev opens may return a revoked FD —
// both are the implementation's concern, not an error surfaced here.
func (s *Session) Open(path string) (*OpenedDevice, error) {
	if !strings.HasPrefix(path, "/dev/dri/") && !strings.HasPrefix(path, "/dev/input/") {
		return nil, fmt.Errorf("wlrcore/session: refusing to open %q: not under /dev/dri or /dev/input", path)
	}

	fd, _, err := s.impl.openDevice(path)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/session: open %s: %w", path, err)
	}

	major, minor, statErr := devNumbers(path)
	if statErr != nil {
		_ = s.impl.closeDevice(fd)
		return nil, fmt.Errorf("wlrcore/session: stat %s: %w", path, statErr)
	}

	dev := &OpenedDevice{Path: path, FD: fd, Major: major, Minor: minor}
	s.mu.Lock()
	s.devices[fd] = dev
	s.mu.Unlock()
	return dev, nil
}

// Close releases fd and drops its tracked device record.
func (s *Session) Close(fd int) error {
	s.mu.Lock()
	_, ok := s.devices[fd]
	delete(s.devices, fd)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.impl.closeDevice(fd)
}

// ChangeVT switches to VT n if supported, returning false on logind
// failure or for headless seats (spec §4.1).
func (s *Session) ChangeVT(n uint) bool {
	return s.impl.changeVT(n)
}

// setActive transitions the session's activation state and fires the
// matching signal. logindImpl calls it on PauseDevice/ResumeDevice; the
// direct-VT and noop impls never call it, so those sessions stay active
// for their whole lifetime.
func (s *Session) setActive(active bool) {
	s.mu.Lock()
	changed := s.active != active
	s.active = active
	s.mu.Unlock()

	if !changed {
		return
	}
	if active {
		s.SignalActivate.Emit(s)
	} else {
		s.SignalDeactivate.Emit(s)
	}
}

// Destroy tears down the session and its backing implementation.
func (s *Session) Destroy() {
	s.impl.close()
}

func devNumbers(path string) (major, minor uint32, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return statDevNumbers(info)
}
