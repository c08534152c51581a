package headlessbackend

import (
	"fmt"

	"github.com/wlrootsgo/wlrcore/wlrerr"
	"github.com/wlrootsgo/wlrcore/wlrevent"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// Output is a fully virtual output: no GPU, no kernel round trip. Make
// and Model both contain "headless" (scenario S1's assertion), and
// Commit completes synchronously since there is no hardware scanout to
// wait on.
type Output struct {
	Make, Model string
	Width, Height uint32
	RefreshMHz    uint32

	pageflipPending bool
	attached        bool
	destroyed       bool

	SignalFrame   wlrsignal.Emitter[*Output]
	SignalPresent wlrsignal.Emitter[wlrevent.PresentEvent]
	SignalDestroy wlrsignal.Emitter[*Output]

	sequence uint64
}

func newOutput(name string) *Output {
	return &Output{
		Make:  "headless",
		Model: fmt.Sprintf("headless-%s", name),
		Width: 1920, Height: 1080, RefreshMHz: 60000,
	}
}

func (o *Output) AttachBuffer() { o.attached = true }

// Commit completes immediately: there is no kernel to wait on, so the
// pageflip_pending latch clears in the same call, same invariant as the
// hardware path (testable property 3 still holds — it's just trivially
// satisfied since no concurrent commit can ever observe the latch set).
func (o *Output) Commit() error {
	if o.destroyed {
		return fmt.Errorf("wlrcore/headlessbackend: %w: output destroyed", wlrerr.ErrInvalid)
	}
	if o.pageflipPending {
		return fmt.Errorf("wlrcore/headlessbackend: %w: commit already in flight", wlrerr.ErrTransient)
	}
	if !o.attached {
		return fmt.Errorf("wlrcore/headlessbackend: %w: no buffer attached", wlrerr.ErrInvalid)
	}

	o.pageflipPending = true
	o.sequence++
	o.attached = false
	o.pageflipPending = false

	o.SignalPresent.Emit(wlrevent.PresentEvent{Sequence: o.sequence})
	o.SignalFrame.Emit(o)
	return nil
}

func (o *Output) destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	o.SignalDestroy.Emit(o)
}
