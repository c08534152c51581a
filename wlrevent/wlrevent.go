// Package wlrevent defines the plain value records the core emits for
// input and output activity (spec §3 "Input & Output Event structs").
// Every input event, and PresentEvent, carries a monotonic time_msec
// (FrameEvent carries none); events are snapshotted at dispatch time:
// receivers must not retain pointers into a payload.
package wlrevent

// ButtonState mirrors libinput's press/release enum, canonicalized to
// the core's own names (spec §4.6 "canonicalizing enums").
type ButtonState int

const (
	Released ButtonState = iota
	Pressed
)

// AxisSource identifies how a scroll/axis event was generated.
type AxisSource int

const (
	AxisSourceUnknown AxisSource = iota
	AxisSourceWheel
	AxisSourceFinger
	AxisSourceContinuous
	AxisSourceWheelTilt
)

// AxisOrientation distinguishes horizontal from vertical scroll.
type AxisOrientation int

const (
	AxisVertical AxisOrientation = iota
	AxisHorizontal
)

// KeyEvent is emitted by a Keyboard InputDevice (spec testable property
// 6 / scenario S6).
type KeyEvent struct {
	TimeMsec uint64
	Device   uint64 // opaque InputDevice handle, spec §9 "arena + handle"
	Keycode  uint32
	State    ButtonState
}

// ButtonEvent is emitted by a Pointer InputDevice.
type ButtonEvent struct {
	TimeMsec uint64
	Device   uint64
	Button   uint32
	State    ButtonState
}

// MotionEvent is a relative pointer motion.
type MotionEvent struct {
	TimeMsec uint64
	Device   uint64
	DX, DY   float64
}

// MotionAbsoluteEvent is an absolute pointer motion. X and Y carry the
// device's raw ABS_X/ABS_Y values; they are not normalized to [0,1].
type MotionAbsoluteEvent struct {
	TimeMsec uint64
	Device   uint64
	X, Y     float64
}

// AxisEvent is a scroll/axis event.
type AxisEvent struct {
	TimeMsec    uint64
	Device      uint64
	Source      AxisSource
	Orientation AxisOrientation
	Delta       float64
}

// TouchDownEvent, TouchUpEvent and TouchMotionEvent carry a touch slot
// (spec §3 "touch slot+coordinates"); Down and Motion also carry the
// contact's raw ABS_MT_POSITION_X/Y values, which are not normalized.
type TouchDownEvent struct {
	TimeMsec uint64
	Device   uint64
	Slot     int32
	X, Y     float64
}

type TouchUpEvent struct {
	TimeMsec uint64
	Device   uint64
	Slot     int32
}

type TouchMotionEvent struct {
	TimeMsec uint64
	Device   uint64
	Slot     int32
	X, Y     float64
}

// FrameEvent is emitted by an Output when it is safe to render the next
// frame (spec §6 "output.frame").
type FrameEvent struct {
	Output uint64
}

// PresentEvent is emitted by an Output after the kernel scans out a
// committed buffer (spec §6 "output.present").
type PresentEvent struct {
	Output     uint64
	TimeMsec   uint64
	RefreshNs  int64
	Sequence   uint64
}
