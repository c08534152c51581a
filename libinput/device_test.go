package libinput

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInputDevice_SetLEDsWritesEVLEDForKeyboard covers spec §4.6's
// led_update contract: a Keyboard device writes one EV_LED event per
// indicator whose bit actually changed.
func TestInputDevice_SetLEDsWritesEVLEDForKeyboard(t *testing.T) {
	var fds [2]int
	require.NoError(t, syscall.Pipe(fds[:]))
	r, w := fds[0], fds[1]
	defer syscall.Close(r)
	defer syscall.Close(w)

	d := &InputDevice{Kind: Keyboard, fd: w}
	d.SetLEDs(LEDNumLock | LEDCapsLock)

	buf := make([]byte, 48) // two 24-byte input_events
	n, err := syscall.Read(r, buf)
	require.NoError(t, err)
	assert.Equal(t, 48, n, "one EV_LED write per changed bit")
	assert.Equal(t, uint8(LEDNumLock|LEDCapsLock), d.LEDs())
}

// TestInputDevice_SetLEDsIsNoOpForNonKeyboard confirms only Keyboard
// devices attempt to drive LED hardware.
func TestInputDevice_SetLEDsIsNoOpForNonKeyboard(t *testing.T) {
	var fds [2]int
	require.NoError(t, syscall.Pipe(fds[:]))
	r, w := fds[0], fds[1]
	defer syscall.Close(r)
	defer syscall.Close(w)

	d := &InputDevice{Kind: Pointer, fd: w}
	d.SetLEDs(LEDNumLock)

	require.NoError(t, syscall.Close(w))
	buf := make([]byte, 24)
	n, err := syscall.Read(r, buf)
	assert.NoError(t, err)
	assert.Equal(t, 0, n, "nothing was ever written to a non-keyboard device")
}
