// Package evdevcodec decodes the kernel's struct input_event wire format
// read off /dev/input/event* nodes. No cgo-free libinput binding exists
// in the reachable dependency set, so this package — along with a
// capability-bit ioctl query — stands in for libinput's device-capture
// half, grounded on the same pattern the drm package uses for DRM
// ioctls and on goserial's hand-encoded Termios/ioctl constants for
// devices with no ecosystem binding.
package evdevcodec

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Event types (linux/input-event-codes.h).
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvRel = 0x02
	EvAbs = 0x03
	EvLed = 0x11
)

// Relevant EV_REL / EV_ABS codes.
const (
	RelX  = 0x00
	RelY  = 0x01
	RelWheel = 0x08

	AbsX     = 0x00
	AbsY     = 0x01
	AbsMTSlot       = 0x2f
	AbsMTTrackingID = 0x39
	AbsMTPositionX  = 0x35
	AbsMTPositionY  = 0x36
)

// BtnTouch is the EV_KEY code a touchscreen advertises and reports
// alongside (but redundantly with, for MT protocol type B) the
// ABS_MT_TRACKING_ID contact lifecycle.
const BtnTouch = 0x14a

// LED codes (linux/input-event-codes.h), written as EV_LED events via
// WriteEvent to set keyboard indicator state.
const (
	LEDNumLock    = 0x00
	LEDCapsLock   = 0x01
	LEDScrollLock = 0x02
)

// Event is the decoded form of struct input_event, with the kernel's
// timeval collapsed to a single microsecond count (spec §4.6
// "time_sec/time_usec").
type Event struct {
	TimeUsec int64
	Type     uint16
	Code     uint16
	Value    int32
}

// eventSize is sizeof(struct input_event) on a 64-bit kernel: two
// 8-byte timeval fields (time_t is 64-bit on modern ABIs) plus
// type/code/value.
const eventSize = 24

// Decode parses buf, which must hold whole multiples of eventSize bytes
// (the kernel never delivers a partial input_event on a single read),
// into Events.
func Decode(buf []byte) ([]Event, error) {
	if len(buf)%eventSize != 0 {
		return nil, fmt.Errorf("wlrcore/evdevcodec: buffer not a multiple of input_event size (%d)", eventSize)
	}
	out := make([]Event, 0, len(buf)/eventSize)
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		sec := int64(binary.LittleEndian.Uint64(buf[off : off+8]))
		usec := int64(binary.LittleEndian.Uint64(buf[off+8 : off+16]))
		typ := binary.LittleEndian.Uint16(buf[off+16 : off+18])
		code := binary.LittleEndian.Uint16(buf[off+18 : off+20])
		val := int32(binary.LittleEndian.Uint32(buf[off+20 : off+24]))
		out = append(out, Event{
			TimeUsec: sec*1_000_000 + usec,
			Type:     typ,
			Code:     code,
			Value:    val,
		})
	}
	return out, nil
}

// Read performs one blocking read on fd and decodes whatever whole
// events it returns.
func Read(fd int) ([]Event, error) {
	buf := make([]byte, eventSize*64)
	n, err := unix.Read(fd, buf)
	if err != nil {
		return nil, err
	}
	return Decode(buf[:n-n%eventSize])
}

// WriteEvent writes one struct input_event to fd, the mechanism for
// driving LED indicators (EV_LED) and similar feedback back to the
// kernel: there is no ioctl for this, only a plain write() of the same
// wire struct Decode parses (spec §4.6 "led_update(bitmask) writes
// Num/Caps/Scroll").
func WriteEvent(fd int, typ, code uint16, value int32) error {
	var buf [eventSize]byte
	binary.LittleEndian.PutUint16(buf[16:18], typ)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(value))
	_, err := unix.Write(fd, buf[:])
	return err
}

// EVIOCGBIT(0, len) encodes the same way as the DRM ioctls in package
// drm: type 'E', a read-direction request whose size varies with the
// requested bit count, hence it is built per-call rather than as a
// package-level constant.
func eviocgbit(ev, length uintptr) uintptr {
	const iocRead = 2
	const ioctlTypeShift = 8
	const ioctlNrShift = 0
	const ioctlSizeShift = 16
	const ioctlDirShift = 30
	return (iocRead << ioctlDirShift) | ('E' << ioctlTypeShift) | ((0x20 + ev) << ioctlNrShift) | (length << ioctlSizeShift)
}

// QueryCapabilities reports which of EV_KEY/EV_REL/EV_ABS fd advertises
// any bits for, plus whether it is a multitouch touchscreen (ABS_MT_SLOT
// and BTN_TOUCH both present) rather than a plain absolute pointer — the
// minimum needed to classify a device as Keyboard, Pointer, Touch, or a
// combination (spec §4.6 "device advertising multiple capabilities...
// split into multiple InputDevices").
func QueryCapabilities(fd int) (hasKey, hasRel, hasAbs, hasTouch bool, err error) {
	var evBits [4]byte
	req := eviocgbit(0, uintptr(len(evBits)))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&evBits[0]))); errno != 0 {
		return false, false, false, false, errno
	}
	hasKey = evBits[EvKey/8]&(1<<(EvKey%8)) != 0
	hasRel = evBits[EvRel/8]&(1<<(EvRel%8)) != 0
	hasAbs = evBits[EvAbs/8]&(1<<(EvAbs%8)) != 0

	if hasAbs {
		mtSlot, _ := queryCodeBit(fd, EvAbs, AbsMTSlot)
		touchBtn, _ := queryCodeBit(fd, EvKey, BtnTouch)
		hasTouch = mtSlot && touchBtn
	}
	return hasKey, hasRel, hasAbs, hasTouch, nil
}

// queryCodeBit reports whether fd's per-type code bitmap for ev (e.g.
// EV_ABS's supported ABS_* codes) has bit code set.
func queryCodeBit(fd int, ev uintptr, code uint16) (bool, error) {
	size := int(code)/8 + 1
	buf := make([]byte, size)
	req := eviocgbit(ev, uintptr(len(buf)))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0]))); errno != 0 {
		return false, errno
	}
	return buf[code/8]&(1<<(code%8)) != 0, nil
}
