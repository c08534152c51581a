package libinput

import (
	"github.com/wlrootsgo/wlrcore/internal/evdevcodec"
	"github.com/wlrootsgo/wlrcore/wlrevent"
)

// translate maps one decoded evdev event to the InputDevice(s) among
// targets whose Kind matches its EV_* type, canonicalizing value
// encodings along the way (spec §4.6 "Event translation").
func (c *Context) translate(targets []*InputDevice, ev evdevcodec.Event) {
	msec := uint64(ev.TimeUsec / 1000)

	switch ev.Type {
	case evdevcodec.EvKey:
		kb := findKind(targets, Keyboard)
		ptr := findKind(targets, Pointer)
		switch {
		case isButtonCode(ev.Code):
			if ptr != nil {
				ptr.SignalButton.Emit(wlrevent.ButtonEvent{
					TimeMsec: ptr.clampMonotonic(msec),
					Device:   ptr.Handle,
					Button:   uint32(ev.Code),
					State:    buttonState(ev.Value),
				})
			}
		default:
			if kb != nil {
				kb.SignalKey.Emit(wlrevent.KeyEvent{
					TimeMsec: kb.clampMonotonic(msec),
					Device:   kb.Handle,
					Keycode:  uint32(ev.Code),
					State:    buttonState(ev.Value),
				})
			}
		}

	case evdevcodec.EvRel:
		ptr := findKind(targets, Pointer)
		if ptr == nil {
			return
		}
		switch ev.Code {
		case evdevcodec.RelX:
			ptr.SignalMotion.Emit(wlrevent.MotionEvent{TimeMsec: ptr.clampMonotonic(msec), Device: ptr.Handle, DX: float64(ev.Value)})
		case evdevcodec.RelY:
			ptr.SignalMotion.Emit(wlrevent.MotionEvent{TimeMsec: ptr.clampMonotonic(msec), Device: ptr.Handle, DY: float64(ev.Value)})
		case evdevcodec.RelWheel:
			ptr.SignalAxis.Emit(wlrevent.AxisEvent{
				TimeMsec:    ptr.clampMonotonic(msec),
				Device:      ptr.Handle,
				Source:      wlrevent.AxisSourceWheel,
				Orientation: wlrevent.AxisVertical,
				Delta:       float64(ev.Value),
			})
		}

	case evdevcodec.EvAbs:
		if t := findKind(targets, Touch); t != nil {
			switch ev.Code {
			case evdevcodec.AbsMTSlot:
				t.handleMTSlot(int32(ev.Value))
			case evdevcodec.AbsMTTrackingID:
				t.handleTrackingID(int32(ev.Value))
			case evdevcodec.AbsMTPositionX:
				t.handleTouchX(float64(ev.Value))
			case evdevcodec.AbsMTPositionY:
				t.handleTouchY(float64(ev.Value))
			}
			return
		}
		ptr := findKind(targets, Pointer)
		if ptr == nil {
			return
		}
		switch ev.Code {
		case evdevcodec.AbsX:
			ptr.SignalMotionAbsolute.Emit(wlrevent.MotionAbsoluteEvent{TimeMsec: ptr.clampMonotonic(msec), Device: ptr.Handle, X: float64(ev.Value)})
		case evdevcodec.AbsY:
			ptr.SignalMotionAbsolute.Emit(wlrevent.MotionAbsoluteEvent{TimeMsec: ptr.clampMonotonic(msec), Device: ptr.Handle, Y: float64(ev.Value)})
		}

	case evdevcodec.EvSyn:
		// frame delimiter: closes the current multitouch frame, the
		// point at which buffered per-slot touch state becomes
		// Down/Motion/Up signals.
		if t := findKind(targets, Touch); t != nil {
			t.flushTouchFrame(msec)
		}
	}
}

// isButtonCode reports whether an EV_KEY code is a pointer button
// (BTN_* range, linux/input-event-codes.h starts buttons at 0x100)
// rather than a keyboard key.
func isButtonCode(code uint16) bool {
	return code >= 0x100 && code < 0x200
}

func buttonState(value int32) wlrevent.ButtonState {
	if value != 0 {
		return wlrevent.Pressed
	}
	return wlrevent.Released
}

func findKind(devices []*InputDevice, k Kind) *InputDevice {
	for _, d := range devices {
		if d.Kind == k {
			return d
		}
	}
	return nil
}
