package libinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlrootsgo/wlrcore/internal/evdevcodec"
	"github.com/wlrootsgo/wlrcore/wlrevent"
)

func newTestContext() *Context {
	return &Context{byFD: make(map[int][]*InputDevice)}
}

// TestContext_SplitsKeyboardAndPointerCapabilities is testable property
// 5: "a synthetic libinput device advertising both KEYBOARD and POINTER
// results in exactly two new_input emissions ... each referencing the
// same underlying libinput device handle."
func TestContext_SplitsKeyboardAndPointerCapabilities(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return true, true, false, false, nil }

	var newDevices []*InputDevice
	c.SignalNewDevice.On(func(d *InputDevice) { newDevices = append(newDevices, d) })

	split, err := c.addFD(42, "synthetic-combo")
	require.NoError(t, err)

	require.Len(t, split, 2)
	require.Len(t, newDevices, 2)

	kinds := map[Kind]bool{}
	for _, d := range split {
		kinds[d.Kind] = true
		assert.Equal(t, split[0].Handle, d.Handle, "split devices share one underlying handle")
	}
	assert.True(t, kinds[Keyboard])
	assert.True(t, kinds[Pointer])
}

func TestContext_KeyboardOnlyDeviceYieldsOneDevice(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return true, false, false, false, nil }

	split, err := c.addFD(7, "keyboard-only")
	require.NoError(t, err)
	require.Len(t, split, 1)
	assert.Equal(t, Keyboard, split[0].Kind)
}

func TestContext_NoCapabilitiesIsUnavailable(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return false, false, false, false, nil }

	_, err := c.addFD(7, "nothing")
	assert.Error(t, err)
}

// TestContext_TranslatesKeyAPress is scenario S6: inject KEY_A (code 30)
// press, expect one key signal with keycode=30, state=PRESSED,
// time_msec ≈ time_usec/1000.
func TestContext_TranslatesKeyAPress(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return true, false, false, false, nil }
	split, err := c.addFD(1, "kbd")
	require.NoError(t, err)
	kb := split[0]

	var got wlrevent.KeyEvent
	kb.SignalKey.On(func(e wlrevent.KeyEvent) { got = e })

	const T = 5_000_000 // time_usec
	c.translate(split, evdevcodec.Event{TimeUsec: T, Type: evdevcodec.EvKey, Code: 30, Value: 1})

	assert.Equal(t, uint32(30), got.Keycode)
	assert.Equal(t, wlrevent.Pressed, got.State)
	assert.Equal(t, uint64(T/1000), got.TimeMsec)
}

func TestContext_ButtonCodesRouteToPointerNotKeyboard(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return true, true, false, false, nil }
	split, err := c.addFD(1, "combo")
	require.NoError(t, err)

	var keyFired, buttonFired int
	for _, d := range split {
		d.SignalKey.On(func(wlrevent.KeyEvent) { keyFired++ })
		d.SignalButton.On(func(wlrevent.ButtonEvent) { buttonFired++ })
	}

	c.translate(split, evdevcodec.Event{Type: evdevcodec.EvKey, Code: 0x110, Value: 1}) // BTN_LEFT
	assert.Equal(t, 0, keyFired)
	assert.Equal(t, 1, buttonFired)
}

// TestInputDevice_TimeMsecIsNonDecreasing is testable property 6.
func TestInputDevice_TimeMsecIsNonDecreasing(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return true, false, false, false, nil }
	split, _ := c.addFD(1, "kbd")
	kb := split[0]

	var times []uint64
	kb.SignalKey.On(func(e wlrevent.KeyEvent) { times = append(times, e.TimeMsec) })

	// Out-of-order usec on the second event must not regress time_msec.
	c.translate(split, evdevcodec.Event{TimeUsec: 10_000, Type: evdevcodec.EvKey, Code: 30, Value: 1})
	c.translate(split, evdevcodec.Event{TimeUsec: 3_000, Type: evdevcodec.EvKey, Code: 30, Value: 0})

	require.Len(t, times, 2)
	assert.LessOrEqual(t, times[0], times[1])
}

func TestContext_RemoveDeviceEmitsDestroyForEverySplit(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return true, true, false, false, nil }
	split, err := c.addFD(9, "combo")
	require.NoError(t, err)

	var destroyed int
	for _, d := range split {
		d.SignalDestroy.On(func(*InputDevice) { destroyed++ })
	}

	c.RemoveDevice(9)
	assert.Equal(t, 2, destroyed)
	assert.Empty(t, c.Devices())
}

// TestContext_TouchCapabilityYieldsTouchNotPointer covers the Touch
// classification branch of addFD: a node reporting ABS_MT_SLOT +
// BTN_TOUCH is a touchscreen, not a plain absolute pointer.
func TestContext_TouchCapabilityYieldsTouchNotPointer(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return false, false, true, true, nil }

	split, err := c.addFD(3, "touchscreen")
	require.NoError(t, err)
	require.Len(t, split, 1)
	assert.Equal(t, Touch, split[0].Kind)
}

// TestContext_TouchFrameEmitsDownMotionUp drives one MT protocol type B
// contact through its full lifecycle — slot select, tracking ID open,
// two position updates each closed by SYN_REPORT, then tracking ID
// close — and checks each SYN_REPORT produces exactly the signal the
// frame's buffered state calls for.
func TestContext_TouchFrameEmitsDownMotionUp(t *testing.T) {
	c := newTestContext()
	c.probe = func(fd int) (bool, bool, bool, bool, error) { return false, false, true, true, nil }
	split, err := c.addFD(4, "touchscreen")
	require.NoError(t, err)
	touch := split[0]

	var downs, motions, ups int
	touch.SignalTouchDown.On(func(wlrevent.TouchDownEvent) { downs++ })
	touch.SignalTouchMotion.On(func(wlrevent.TouchMotionEvent) { motions++ })
	touch.SignalTouchUp.On(func(wlrevent.TouchUpEvent) { ups++ })

	down := func(ev evdevcodec.Event) { c.translate(split, ev) }
	down(evdevcodec.Event{Type: evdevcodec.EvAbs, Code: evdevcodec.AbsMTSlot, Value: 0})
	down(evdevcodec.Event{Type: evdevcodec.EvAbs, Code: evdevcodec.AbsMTTrackingID, Value: 1})
	down(evdevcodec.Event{Type: evdevcodec.EvAbs, Code: evdevcodec.AbsMTPositionX, Value: 100})
	down(evdevcodec.Event{Type: evdevcodec.EvAbs, Code: evdevcodec.AbsMTPositionY, Value: 200})
	down(evdevcodec.Event{Type: evdevcodec.EvSyn})
	assert.Equal(t, 1, downs)
	assert.Equal(t, 0, motions)

	down(evdevcodec.Event{Type: evdevcodec.EvAbs, Code: evdevcodec.AbsMTPositionX, Value: 110})
	down(evdevcodec.Event{Type: evdevcodec.EvSyn})
	assert.Equal(t, 1, downs)
	assert.Equal(t, 1, motions)

	down(evdevcodec.Event{Type: evdevcodec.EvAbs, Code: evdevcodec.AbsMTTrackingID, Value: -1})
	down(evdevcodec.Event{Type: evdevcodec.EvSyn})
	assert.Equal(t, 1, ups)
}
