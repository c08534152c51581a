package drm

import (
	"fmt"
	"time"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
	"github.com/wlrootsgo/wlrcore/wlrerr"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// PresentEvent is the payload of the output.present signal (spec §6).
type PresentEvent struct {
	TimeMsec   uint64
	RefreshNs  int64
	Sequence   uint64
	Flags      uint32
}

// Output drives a single Connector/CRTC pair through the state machine of
// spec §4.5: DISCONNECTED → NEEDS_MODESET → CONNECTED → DISCONNECTED. It
// owns the single-bit pageflip_pending latch that testable property 3
// requires: at most one commit in flight at a time.
type Output struct {
	GPU       *GPU
	Connector *Connector

	mode        *Mode
	backBuffer  *Framebuffer
	frontBuffer *Framebuffer

	pageflipPending bool
	needsModeset    bool
	watchdog        *time.Timer

	SignalFrame   wlrsignal.Emitter[*Output]
	SignalPresent wlrsignal.Emitter[PresentEvent]
	SignalDestroy wlrsignal.Emitter[*Output]

	nowFn func() time.Time // overridden in tests
}

// NewOutput wraps conn (already CRTC-bound by GPU.bindConnector) in an
// Output ready to receive SetMode/Commit calls.
func NewOutput(gpu *GPU, conn *Connector) *Output {
	o := &Output{GPU: gpu, Connector: conn, nowFn: time.Now}
	gpu.registerOutput(o)
	return o
}

// State mirrors the connector's connection state (spec §4.5: the Output
// state machine is driven by connector plug/unplug).
func (o *Output) State() ConnectionState { return o.Connector.State }

// SetMode transitions NEEDS_MODESET → CONNECTED: it records mode and arms
// the output so the next Commit performs the modeset (spec §4.5). It
// allocates no buffers and submits nothing itself; the caller attaches a
// buffer with AttachBuffer before calling Commit.
func (o *Output) SetMode(m Mode) error {
	if o.Connector.State == Disconnected {
		return fmt.Errorf("wlrcore/drm: %w: output is disconnected", wlrerr.ErrInvalid)
	}
	o.mode = &m
	o.Connector.State = Connected
	o.needsModeset = true
	return nil
}

// AttachBuffer stages fb as the next front buffer for the following
// Commit call (spec §4.5 "compositor invokes attach_buffer(buffer) then
// commit()").
func (o *Output) AttachBuffer(fb *Framebuffer) {
	o.backBuffer = fb
}

// Commit submits the staged buffer as one atomic (or legacy page-flip)
// request. If a commit is already in flight, it is rejected with
// ErrTransient and the caller must wait for the next Frame signal
// (testable property 3).
func (o *Output) Commit() error {
	if o.GPU.Paused() {
		return fmt.Errorf("wlrcore/drm: %w: session is inactive", wlrerr.ErrUnavailable)
	}
	if o.pageflipPending {
		return fmt.Errorf("wlrcore/drm: %w: commit already in flight", wlrerr.ErrTransient)
	}
	if o.backBuffer == nil {
		return fmt.Errorf("wlrcore/drm: %w: no buffer attached", wlrerr.ErrInvalid)
	}

	userData := o.GPU.registerPending(o)
	sync, err := o.submit(userData)
	if err != nil {
		o.GPU.takePending(userData)
		return err
	}
	if sync {
		// Legacy SETCRTC has no completion event: the commit already
		// took effect by the time the ioctl returned, so the frame
		// signal fires immediately instead of waiting on event.go.
		return nil
	}

	o.pageflipPending = true
	o.armWatchdog()
	return nil
}

const pageflipTimeout = 1 * time.Second

func (o *Output) armWatchdog() {
	if o.watchdog != nil {
		o.watchdog.Stop()
	}
	o.watchdog = time.AfterFunc(pageflipTimeout, o.onWatchdogFired)
}

// onWatchdogFired implements spec §5's per-output commit watchdog: if the
// kernel doesn't deliver a page-flip within ~1s, clear the latch and
// synthesize a frame signal so the compositor can make forward progress.
func (o *Output) onWatchdogFired() {
	if !o.pageflipPending {
		return
	}
	o.pageflipPending = false
	o.SignalFrame.Emit(o)
}

// HandlePageflipComplete is called by the GPU's event-parsing loop
// (event.go) when the kernel delivers a page-flip completion for this
// output's CRTC. It clears the latch, rotates front/back buffers,
// releases the previous front's BO references, and emits present then
// frame (spec §4.5).
func (o *Output) HandlePageflipComplete(seq uint64, tvSec, tvUsec uint32) {
	if o.watchdog != nil {
		o.watchdog.Stop()
	}
	o.pageflipPending = false

	prevFront := o.frontBuffer
	o.frontBuffer = o.backBuffer
	o.backBuffer = nil
	o.releaseBuffer(prevFront)

	o.SignalPresent.Emit(PresentEvent{
		TimeMsec: uint64(tvSec)*1000 + uint64(tvUsec)/1000,
		Sequence: seq,
	})
	o.SignalFrame.Emit(o)
}

// releaseBuffer drops this output's BO references for fb via the GPU's
// handle table (spec §5 "GEM handles are reference-counted ... last
// unref triggers GEM_CLOSE").
func (o *Output) releaseBuffer(fb *Framebuffer) {
	if fb == nil {
		return
	}
	for _, h := range fb.Handles {
		if h == 0 {
			continue
		}
		if o.GPU.BOTable.Unref(h) == 0 {
			req := drmGEMClose{Handle: h}
			_ = gemClose(o.GPU.FD, &req)
		}
	}
}

// Unplug transitions CONNECTED/NEEDS_MODESET → DISCONNECTED: restores
// the CRTC's saved state, releases back buffers, frees the CRTC, and
// emits destroy (spec §4.5, testable scenario S4).
func (o *Output) Unplug() {
	if o.watchdog != nil {
		o.watchdog.Stop()
	}
	if crtc := o.Connector.CRTC; crtc != nil {
		if err := o.GPU.restoreCRTCState(crtc, o.Connector.ID); err != nil {
			wlog.Warnf("drm: %v", err)
		}
		o.GPU.unregisterOutput(crtc.ID)
		o.GPU.releaseCRTC(crtc)
	}
	for id, p := range o.GPU.pending {
		if p == o {
			delete(o.GPU.pending, id)
		}
	}
	o.Connector.CRTC = nil
	o.Connector.State = Disconnected
	o.backBuffer = nil
	o.frontBuffer = nil
	o.pageflipPending = false
	o.SignalDestroy.Emit(o)
}

// Enable toggles DPMS/ACTIVE: a disabled output still owns its CRTC (spec
// §4.5 "DPMS"). This is the one entry point compositor code calls; it
// delegates to SetDPMS, which picks the atomic-ACTIVE or
// legacy-DPMS-property path. Enable(false) does not gate Commit: a later
// Commit still submits its frame, and on atomic GPUs that commit writes
// ACTIVE=1 again.
func (o *Output) Enable(enabled bool) error {
	if o.Connector.CRTC == nil {
		return fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}
	state := DPMSOff
	if enabled {
		state = DPMSOn
	}
	return o.SetDPMS(state)
}
