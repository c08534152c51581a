package libinput

import (
	"fmt"

	"github.com/wlrootsgo/wlrcore/internal/evdevcodec"
	"github.com/wlrootsgo/wlrcore/session"
	"github.com/wlrootsgo/wlrcore/wlrerr"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// capabilityProbe is the minimal per-node capability query a real
// device supplies via evdevcodec.QueryCapabilities; tests substitute a
// synthetic prober to exercise splitting without a real /dev/input
// node (spec testable property 5).
type capabilityProbe func(fd int) (hasKey, hasRel, hasAbs, hasTouch bool, err error)

// Context is a per-seat device layer: it owns every InputDevice split
// out of the raw nodes it has been told about, and re-emits their
// events after translation.
type Context struct {
	sess *session.Session

	devices  []*InputDevice
	byFD     map[int][]*InputDevice
	nextHandle uint64

	probe capabilityProbe

	suspended bool

	SignalNewDevice wlrsignal.Emitter[*InputDevice]
}

// NewContext creates a Context bound to sess; device FDs are opened and
// closed through it.
func NewContext(sess *session.Session) *Context {
	return &Context{
		sess:  sess,
		byFD:  make(map[int][]*InputDevice),
		probe: evdevcodec.QueryCapabilities,
	}
}

// AddDevice opens path via the Session, probes its capabilities, and
// splits it into one InputDevice per capability present — KEYBOARD for
// EV_KEY, TOUCH for a multitouch touchscreen (ABS_MT_SLOT + BTN_TOUCH),
// POINTER for any other EV_REL or EV_ABS (spec §4.6 "Device addition").
// Every returned device shares the same Handle.
func (c *Context) AddDevice(path string) ([]*InputDevice, error) {
	dev, err := c.sess.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/libinput: %w", err)
	}
	devices, err := c.addFD(dev.FD, path)
	if err != nil {
		_ = c.sess.Close(dev.FD)
		return nil, err
	}
	return devices, nil
}

func (c *Context) addFD(fd int, name string) ([]*InputDevice, error) {
	hasKey, hasRel, hasAbs, hasTouch, err := c.probe(fd)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/libinput: %w: %v", wlrerr.ErrUnavailable, err)
	}
	if !hasKey && !hasRel && !hasAbs {
		return nil, fmt.Errorf("wlrcore/libinput: %w: no recognized capability", wlrerr.ErrUnavailable)
	}

	c.nextHandle++
	handle := c.nextHandle

	var split []*InputDevice
	if hasKey {
		split = append(split, &InputDevice{Kind: Keyboard, Handle: handle, Name: name, fd: fd})
	}
	switch {
	case hasTouch:
		split = append(split, &InputDevice{Kind: Touch, Handle: handle, Name: name, fd: fd})
	case hasRel || hasAbs:
		split = append(split, &InputDevice{Kind: Pointer, Handle: handle, Name: name, fd: fd})
	}

	c.devices = append(c.devices, split...)
	c.byFD[fd] = split
	for _, d := range split {
		c.SignalNewDevice.Emit(d)
	}
	return split, nil
}

// Dispatch reads the pending evdev events of one raw node, fd, and
// translates them for the devices split from it. Context does not
// implement runtime.Pollable: it has no Fd method, and Dispatch takes the
// fd explicitly because a Context may hold several nodes.
func (c *Context) Dispatch(fd int) error {
	raw, err := evdevcodec.Read(fd)
	if err != nil {
		return fmt.Errorf("wlrcore/libinput: %w", err)
	}
	targets := c.byFD[fd]
	for _, ev := range raw {
		c.translate(targets, ev)
	}
	return nil
}

// RemoveDevice drops every InputDevice split from fd and emits destroy
// on each (spec §6 "backend.destroy" equivalent at the device level).
func (c *Context) RemoveDevice(fd int) {
	for _, d := range c.byFD[fd] {
		d.SignalDestroy.Emit(d)
	}
	delete(c.byFD, fd)
	kept := c.devices[:0]
	for _, d := range c.devices {
		if d.fd != fd {
			kept = append(kept, d)
		}
	}
	c.devices = kept
}

// Suspend revokes every open device FD on session deactivation (spec
// §4.6 "session_deactivate ... libinput_suspend").
func (c *Context) Suspend() {
	c.suspended = true
	for fd := range c.byFD {
		_ = c.sess.Close(fd)
	}
}

// Resume clears the suspended flag on session reactivation. It re-opens
// nothing: the FDs Suspend closed stay closed, and no event is
// synthesized for the gap; the caller re-adds device paths it still
// cares about.
func (c *Context) Resume() {
	c.suspended = false
}

func (c *Context) Devices() []*InputDevice {
	return append([]*InputDevice(nil), c.devices...)
}
