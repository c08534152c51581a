// Package libinput implements the device layer of spec §4.6: it
// consumes raw evdev devices (via internal/evdevcodec, substituting for
// the libinput ABI — see SPEC_FULL.md §4.6 for why no cgo-free libinput
// binding exists in the dependency set), splits multi-capability
// devices into single-capability InputDevices, and translates evdev
// events into the wlrevent taxonomy.
package libinput

import (
	"github.com/wlrootsgo/wlrcore/internal/evdevcodec"
	"github.com/wlrootsgo/wlrcore/wlrevent"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// Kind tags an InputDevice's sole exposed capability (spec §3
// "InputDevice ... exactly one capability per exposed InputDevice").
type Kind int

const (
	Keyboard Kind = iota
	Pointer
	Touch
	TabletTool
	TabletPad
	Switch
)

func (k Kind) String() string {
	switch k {
	case Keyboard:
		return "keyboard"
	case Pointer:
		return "pointer"
	case Touch:
		return "touch"
	case TabletTool:
		return "tablet-tool"
	case TabletPad:
		return "tablet-pad"
	case Switch:
		return "switch"
	default:
		return "unknown"
	}
}

// InputDevice is one capability of an underlying raw evdev node. A node
// advertising KEYBOARD+POINTER yields two InputDevices sharing the same
// Handle (spec testable property 5).
type InputDevice struct {
	Kind   Kind
	Handle uint64 // shared across devices split from the same raw node
	Name   string
	fd     int

	ledState uint8 // Num/Caps/Scroll bitmask, spec §4.6 "LED/keymap state"

	touchSlot     int32 // ABS_MT_SLOT-selected contact, Touch devices only
	touchContacts map[int32]*touchContact

	SignalKey             wlrsignal.Emitter[wlrevent.KeyEvent]
	SignalButton          wlrsignal.Emitter[wlrevent.ButtonEvent]
	SignalMotion          wlrsignal.Emitter[wlrevent.MotionEvent]
	SignalMotionAbsolute  wlrsignal.Emitter[wlrevent.MotionAbsoluteEvent]
	SignalAxis            wlrsignal.Emitter[wlrevent.AxisEvent]
	SignalTouchDown       wlrsignal.Emitter[wlrevent.TouchDownEvent]
	SignalTouchUp         wlrsignal.Emitter[wlrevent.TouchUpEvent]
	SignalTouchMotion     wlrsignal.Emitter[wlrevent.TouchMotionEvent]
	SignalDestroy         wlrsignal.Emitter[*InputDevice]

	lastTimeMsec uint64 // monotonicity guard, testable property 6
}

// LED bit positions (spec §4.6 "led_update(bitmask) writes Num/Caps/Scroll").
const (
	LEDNumLock = 1 << iota
	LEDCapsLock
	LEDScrollLock
)

// SetLEDs writes Num/Caps/Scroll state for a Keyboard device, one EV_LED
// write() per indicator whose bit changed (spec §4.6 "led_update(bitmask)
// writes Num/Caps/Scroll"). Non-keyboard devices have no LEDs and only
// track the bitmask locally.
func (d *InputDevice) SetLEDs(bits uint8) {
	changed := d.ledState ^ bits
	d.ledState = bits
	if d.Kind != Keyboard || changed == 0 {
		return
	}
	for _, led := range []struct {
		bit  uint8
		code uint16
	}{
		{LEDNumLock, evdevcodec.LEDNumLock},
		{LEDCapsLock, evdevcodec.LEDCapsLock},
		{LEDScrollLock, evdevcodec.LEDScrollLock},
	} {
		if changed&led.bit == 0 {
			continue
		}
		value := int32(0)
		if bits&led.bit != 0 {
			value = 1
		}
		_ = evdevcodec.WriteEvent(d.fd, evdevcodec.EvLed, led.code, value)
	}
}

func (d *InputDevice) LEDs() uint8 { return d.ledState }

// clampMonotonic enforces testable property 6: the sequence of
// time_msec values emitted for a given device is non-decreasing, even
// if the kernel (or a malformed synthetic event in tests) supplies an
// out-of-order timestamp.
func (d *InputDevice) clampMonotonic(msec uint64) uint64 {
	if msec < d.lastTimeMsec {
		msec = d.lastTimeMsec
	}
	d.lastTimeMsec = msec
	return msec
}
