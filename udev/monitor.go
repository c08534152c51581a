// Package udev implements the Udev Monitor (spec §4.2): it enumerates DRM
// devices, watches the kernel's uevent netlink multicast group for
// hotplug/change events, and routes them to per-device listeners keyed by
// dev_t.
//
// No cgo libudev binding is available anywhere in the retrieval pack (or
// imported by the teacher), so this reads the kernel's uevent netlink
// socket directly — the same NETLINK_KOBJECT_UEVENT messages libudev
// itself is built on — via golang.org/x/sys/unix, grounded on
// backend/udev.c's "drm"/"input" subsystem filtering contract.
package udev

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
	"github.com/wlrootsgo/wlrcore/runtime"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// Event is one drained uevent, already filtered to the subsystems this
// monitor cares about (spec §4.2: "drm" and "input").
type Event struct {
	Action    string // "add", "remove", "change"
	Subsystem string
	DevPath   string
	DevName   string // kernel DEVNAME, relative to /dev: e.g. "dri/card0", "input/event3"
	Major     uint32
	Minor     uint32
}

func devT(major, minor uint32) uint64 {
	return unix.Mkdev(major, minor)
}

// Monitor owns the netlink socket registered with the Runtime; readable
// events drain all pending uevents and dispatch to listeners keyed by
// dev_t (spec §4.2).
type Monitor struct {
	fd int

	mu        sync.Mutex
	listeners map[uint64]*wlrsignal.Emitter[Event]
}

// Open creates the monitor and registers it with rt's event loop.
func Open(rt *runtime.Runtime) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/udev: socket: %w", err)
	}

	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("wlrcore/udev: bind: %w", err)
	}

	m := &Monitor{fd: fd, listeners: make(map[uint64]*wlrsignal.Emitter[Event])}
	rt.Register(m)
	return m, nil
}

// Fd implements runtime.Pollable.
func (m *Monitor) Fd() int { return m.fd }

// Dispatch implements runtime.Pollable: it drains every pending uevent
// datagram and routes each to listeners registered for its dev_t (spec
// §4.2 "A single file descriptor ... readable events drain all pending
// uevents").
func (m *Monitor) Dispatch() error {
	buf := make([]byte, 8192)
	for {
		n, _, err := unix.Recvfrom(m.fd, buf, unix.MSG_DONTWAIT)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			return fmt.Errorf("wlrcore/udev: recvfrom: %w", err)
		}
		if n == 0 {
			return nil
		}
		ev, ok := parseUevent(buf[:n])
		if !ok {
			continue
		}
		if ev.Subsystem != "drm" && ev.Subsystem != "input" {
			continue
		}
		m.route(ev)
	}
}

func (m *Monitor) route(ev Event) {
	m.mu.Lock()
	emitter, ok := m.listeners[devT(ev.Major, ev.Minor)]
	m.mu.Unlock()
	if ok {
		emitter.Emit(ev)
	}
}

// SignalAdd subscribes listener to change events on a specific minor,
// returning a subscription id for SignalRemove (spec §4.2).
func (m *Monitor) SignalAdd(major, minor uint32, listener func(Event)) uint64 {
	key := devT(major, minor)
	m.mu.Lock()
	e, ok := m.listeners[key]
	if !ok {
		e = &wlrsignal.Emitter[Event]{}
		m.listeners[key] = e
	}
	m.mu.Unlock()
	return e.On(listener)
}

// SignalRemove unsubscribes a listener previously registered with
// SignalAdd for the given dev_t.
func (m *Monitor) SignalRemove(major, minor uint32, id uint64) {
	m.mu.Lock()
	e, ok := m.listeners[devT(major, minor)]
	m.mu.Unlock()
	if ok {
		e.Off(id)
	}
}

// Close releases the netlink socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// GPUCandidate describes one /dev/dri/card* node found by FindGPU.
type GPUCandidate struct {
	Path   string
	Minor  uint32
	BootVGA bool
}

// FindGPU returns the preferred GPU device path: boot VGA if any card
// advertises it, else the first enumerated card (spec §4.2). Cards whose
// seat tag does not match the session's seat are skipped.
func FindGPU(seatName string) (string, error) {
	entries, err := os.ReadDir("/dev/dri")
	if err != nil {
		return "", fmt.Errorf("wlrcore/udev: read /dev/dri: %w", err)
	}

	var candidates []GPUCandidate
	for _, ent := range entries {
		name := ent.Name()
		if !strings.HasPrefix(name, "card") {
			continue
		}
		path := filepath.Join("/dev/dri", name)
		if !seatMatches(name, seatName) {
			continue
		}
		minor, _ := strconv.Atoi(strings.TrimPrefix(name, "card"))
		candidates = append(candidates, GPUCandidate{
			Path:    path,
			Minor:   uint32(minor),
			BootVGA: isBootVGA(name),
		})
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("wlrcore/udev: %w: no DRM card devices found", errNoGPU)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Minor < candidates[j].Minor })

	for _, c := range candidates {
		if c.BootVGA {
			wlog.Infof("udev: selected boot VGA GPU %s", c.Path)
			return c.Path, nil
		}
	}
	wlog.Infof("udev: selected first GPU %s", candidates[0].Path)
	return candidates[0].Path, nil
}

var errNoGPU = fmt.Errorf("no GPU")

// seatMatches reports whether the device at /sys/class/drm/<name> carries
// a seat tag matching seatName, or carries no seat tag at all (the
// default seat0 case).
func seatMatches(name, seatName string) bool {
	tagPath := filepath.Join("/sys/class/drm", name, "device", "uevent")
	data, err := os.ReadFile(tagPath)
	if err != nil {
		// No sysfs info available (e.g. in tests): assume it matches.
		return true
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "ID_SEAT=") {
			tag := strings.TrimPrefix(line, "ID_SEAT=")
			return tag == seatName
		}
	}
	// No ID_SEAT tag at all means seat0.
	return seatName == "seat0" || seatName == ""
}

func isBootVGA(name string) bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/drm", name, "device", "boot_vga"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}
