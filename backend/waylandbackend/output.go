package waylandbackend

import (
	"fmt"

	"github.com/wlrootsgo/wlrcore/drm"
	"github.com/wlrootsgo/wlrcore/wlrerr"
	"github.com/wlrootsgo/wlrcore/wlrevent"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// Output is one nested window. Resizing the parent window synthesizes
// a custom mode (spec scenario S2).
type Output struct {
	index int

	mode *drm.Mode

	pageflipPending bool
	attached        bool
	destroyed       bool
	sequence        uint64

	SignalFrame   wlrsignal.Emitter[*Output]
	SignalPresent wlrsignal.Emitter[wlrevent.PresentEvent]
	SignalDestroy wlrsignal.Emitter[*Output]
}

func newOutput(index int) *Output {
	m := drm.CustomMode(1024, 768, 60000)
	return &Output{index: index, mode: &m}
}

func (o *Output) Mode() drm.Mode { return *o.mode }

// HandleParentResize is called when the backend's window-resize
// listener on the parent compositor fires; it replaces the output's
// mode with a custom one matching the new size (scenario S2: "width ×
// height, refresh 60000 mHz").
func (o *Output) HandleParentResize(width, height uint32) {
	m := drm.CustomMode(width, height, 60000)
	o.mode = &m
}

func (o *Output) AttachBuffer() { o.attached = true }

func (o *Output) Commit() error {
	if o.destroyed {
		return fmt.Errorf("wlrcore/waylandbackend: %w: output destroyed", wlrerr.ErrInvalid)
	}
	if o.pageflipPending {
		return fmt.Errorf("wlrcore/waylandbackend: %w: commit already in flight", wlrerr.ErrTransient)
	}
	if !o.attached {
		return fmt.Errorf("wlrcore/waylandbackend: %w: no buffer attached", wlrerr.ErrInvalid)
	}

	o.attached = false
	o.sequence++
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
