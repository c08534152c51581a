package libinput

import "github.com/wlrootsgo/wlrcore/wlrevent"

// touchContact is one MT protocol type B slot's state: ABS_MT_SLOT
// selects it, ABS_MT_TRACKING_ID opens/closes it, ABS_MT_POSITION_X/Y
// move it, and it is only reported to the compositor once EV_SYN closes
// the frame (spec §4.6 "Event translation", touch taxonomy).
type touchContact struct {
	x, y   float64
	active bool
	dirty  touchDirty
}

type touchDirty uint8

const (
	touchClean touchDirty = iota
	touchWentDown
	touchMoved
	touchWentUp
)

func (d *InputDevice) touchContact() *touchContact {
	if d.touchContacts == nil {
		d.touchContacts = make(map[int32]*touchContact)
	}
	c, ok := d.touchContacts[d.touchSlot]
	if !ok {
		c = &touchContact{}
		d.touchContacts[d.touchSlot] = c
	}
	return c
}

func (d *InputDevice) handleMTSlot(slot int32) {
	d.touchSlot = slot
}

// handleTrackingID opens a slot (id >= 0) or marks it for release
// (id == -1, the kernel's "contact lifted" sentinel).
func (d *InputDevice) handleTrackingID(id int32) {
	c := d.touchContact()
	if id < 0 {
		if c.active {
			c.dirty = touchWentUp
		}
		return
	}
	c.active = true
	c.dirty = touchWentDown
}

func (d *InputDevice) handleTouchX(v float64) {
	c := d.touchContact()
	c.x = v
	if c.dirty == touchClean {
		c.dirty = touchMoved
	}
}

func (d *InputDevice) handleTouchY(v float64) {
	c := d.touchContact()
	c.y = v
	if c.dirty == touchClean {
		c.dirty = touchMoved
	}
}

// flushTouchFrame emits one Down/Motion/Up signal per slot whose state
// changed since the last SYN_REPORT, then clears the per-frame dirty
// flags (closed slots are dropped entirely).
func (d *InputDevice) flushTouchFrame(msec uint64) {
	for slot, c := range d.touchContacts {
		switch c.dirty {
		case touchWentDown:
			d.SignalTouchDown.Emit(wlrevent.TouchDownEvent{TimeMsec: d.clampMonotonic(msec), Device: d.Handle, Slot: slot, X: c.x, Y: c.y})
		case touchMoved:
			d.SignalTouchMotion.Emit(wlrevent.TouchMotionEvent{TimeMsec: d.clampMonotonic(msec), Device: d.Handle, Slot: slot, X: c.x, Y: c.y})
		case touchWentUp:
			d.SignalTouchUp.Emit(wlrevent.TouchUpEvent{TimeMsec: d.clampMonotonic(msec), Device: d.Handle, Slot: slot})
			delete(d.touchContacts, slot)
			continue
		default:
			continue
		}
		c.dirty = touchClean
	}
}
