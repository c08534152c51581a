package x11backend

import (
	"fmt"

	"github.com/wlrootsgo/wlrcore/drm"
	"github.com/wlrootsgo/wlrcore/wlrerr"
	"github.com/wlrootsgo/wlrcore/wlrevent"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// Output is one nested X11 window, the same custom-mode-on-resize shape
// as waylandbackend.Output.
type Output struct {
	index int
	mode  *drm.Mode

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

func (o *Output) HandleParentResize(width, height uint32) {
	m := drm.CustomMode(width, height, 60000)
	o.mode = &m
}

func (o *Output) AttachBuffer() { o.attached = true }

func (o *Output) Commit() error {
	if o.destroyed {
		return fmt.Errorf("wlrcore/x11backend: %w: output destroyed", wlrerr.ErrInvalid)
	}
	if o.pageflipPending {
		return fmt.Errorf("wlrcore/x11backend: %w: commit already in flight", wlrerr.ErrTransient)
	}
	if !o.attached {
		return fmt.Errorf("wlrcore/x11backend: %w: no buffer attached", wlrerr.ErrInvalid)
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
