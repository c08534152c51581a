package headlessbackend

import (
	"fmt"

	"github.com/ThomasT75/uinput"
)

// CursorInjector drives a virtual uinput mouse node so a headless
// backend's self-test mode can exercise the real libinput/evdev device
// path (libinput.Context.AddDevice -> addFD -> translate) against a
// synthetic cursor instead of requiring physical pointer hardware.
// Grounded on bnema-waymon's internal/input/uinput_handler.go, the only
// pack repo that drives uinput.Mouse directly.
type CursorInjector struct {
	mouse uinput.Mouse
}

// NewCursorInjector opens /dev/uinput and registers a virtual mouse
// node. Requires the uinput kernel module loaded and write access to
// /dev/uinput; callers in a sandboxed CI environment should expect
// ErrUnavailable-shaped failures here and skip, the way
// uinput_test.go's TestUInputPermissions does upstream.
func NewCursorInjector() (*CursorInjector, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte("wlrcore headless self-test cursor"))
	if err != nil {
		return nil, fmt.Errorf("wlrcore/headlessbackend: create virtual mouse: %w", err)
	}
	return &CursorInjector{mouse: mouse}, nil
}

// Move injects a relative cursor motion of (dx, dy).
func (c *CursorInjector) Move(dx, dy int32) error {
	return c.mouse.Move(dx, dy)
}

// Click injects a left-button press immediately followed by release.
func (c *CursorInjector) Click() error {
	if err := c.mouse.LeftPress(); err != nil {
		return fmt.Errorf("wlrcore/headlessbackend: left press: %w", err)
	}
	return c.mouse.LeftRelease()
}

func (c *CursorInjector) Close() error {
	return c.mouse.Close()
}

// EnableSelfTestCursor opens a CursorInjector and attaches it to b so
// scenario harnesses can inject synthetic pointer motion alongside the
// backend's virtual outputs without a real mouse present.
func (b *Backend) EnableSelfTestCursor() (*CursorInjector, error) {
	inj, err := NewCursorInjector()
	if err != nil {
		return nil, err
	}
	b.selfTestCursor = inj
	return inj, nil
}
