package drm

import (
	"fmt"
	"unsafe"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
	"github.com/wlrootsgo/wlrcore/session"
	"github.com/wlrootsgo/wlrcore/wlrerr"
	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

// GPU is a logical DRM device (spec §3): an FD, its dev_t, a discovered
// capability set, and the Connector/CRTC/Plane sets it owns.
type GPU struct {
	FD     int
	Minor  uint32
	dev    *session.OpenedDevice

	Atomic          bool
	UniversalPlanes bool
	AddFB2Modifiers bool

	Connectors []*Connector
	CRTCs      []*CRTC
	Planes     []*Plane

	BOTable BOHandleTable

	takenCRTCs uint32 // bitfield (spec §3 "set of taken CRTCs is a bitfield on the GPU")

	pending      map[uint64]*Output // user_data -> Output, for in-flight commits (event.go)
	nextUserData uint64

	outputsByCRTC map[uint32]*Output // the lookup table spec §9 calls for, keyed by CRTC ID

	paused bool // true between a session deactivation and its matching activation

	SignalNewOutput wlrsignal.Emitter[*Connector]
}

// Pause suspends rendering across every Output on g: session
// deactivation mid-commit is not an error (spec §4.5), so Commit starts
// rejecting with ErrUnavailable instead of touching the device until
// Resume is called.
func (g *GPU) Pause() { g.paused = true }

// Resume lifts a prior Pause: DRM master is reacquired (another process
// — e.g. a different VT's compositor — may have held it while we were
// paused) and connectors are rescanned, since a hotplug while we had no
// master would not otherwise surface (spec §4.1 "DRM master is
// reacquired, observers rescan connectors").
func (g *GPU) Resume() {
	g.paused = false
	if err := ioctl(g.FD, drmIoctlSetMaster, nil); err != nil {
		wlog.Warnf("drm: DRM_IOCTL_SET_MASTER on resume: %v", err)
	}
	if err := g.rescanConnectors(); err != nil {
		wlog.Warnf("drm: connector rescan on resume: %v", err)
	}
}

// Paused reports whether g is between a Pause and its matching Resume.
func (g *GPU) Paused() bool { return g.paused }

// registerOutput indexes o by its bound CRTC's ID so event.go can route
// the newer DRM_EVENT_FLIP_COMPLETE2 payload (which carries crtc_id)
// straight to it without the user_data round trip (spec §9 "Pageflip
// delivery ... Output lookup table keyed by CRTC ID").
func (g *GPU) registerOutput(o *Output) {
	if o.Connector.CRTC == nil {
		return
	}
	if g.outputsByCRTC == nil {
		g.outputsByCRTC = make(map[uint32]*Output)
	}
	g.outputsByCRTC[o.Connector.CRTC.ID] = o
}

// unregisterOutput removes the CRTC-ID entry a prior registerOutput
// installed, so a late-arriving page-flip event for an unplugged output
// falls through to takePending (which will also find nothing) instead of
// being routed to a stale Output (spec §4.5 hot-unplug).
func (g *GPU) unregisterOutput(crtcID uint32) {
	delete(g.outputsByCRTC, crtcID)
}

// registerPending records o as awaiting a page-flip completion event,
// correlated by the opaque user_data value the kernel echoes back
// unchanged — the fallback correlation for the legacy (pre-4.12)
// DRM_EVENT_FLIP_COMPLETE payload, which carries no crtc_id.
func (g *GPU) registerPending(o *Output) uint64 {
	if g.pending == nil {
		g.pending = make(map[uint64]*Output)
	}
	g.nextUserData++
	id := g.nextUserData
	g.pending[id] = o
	return id
}

func (g *GPU) takePending(userData uint64) *Output {
	o, ok := g.pending[userData]
	if !ok {
		return nil
	}
	delete(g.pending, userData)
	return o
}

// Open opens path (via sess, so restricted-FD policy is respected),
// queries capabilities, and performs the initial CRTC/connector/plane
// scan described by spec §4.5 ("CRTC/Plane/Connector allocation").
func Open(sess *session.Session, path string) (*GPU, error) {
	dev, err := sess.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/drm: %w", err)
	}

	g := &GPU{FD: dev.FD, Minor: dev.Minor, dev: dev}

	if err := g.setClientCaps(); err != nil {
		_ = sess.Close(dev.FD)
		return nil, fmt.Errorf("wlrcore/drm: %w: %v", wlrerr.ErrUnavailable, err)
	}
	g.queryCaps()

	if err := g.scanConnectors(); err != nil {
		_ = sess.Close(dev.FD)
		return nil, fmt.Errorf("wlrcore/drm: initial connector scan: %w", err)
	}

	wlog.Infof("drm: opened %s (atomic=%v universal-planes=%v addfb2-modifiers=%v)",
		path, g.Atomic, g.UniversalPlanes, g.AddFB2Modifiers)
	return g, nil
}

// Client cap numbers (DRM_CLIENT_CAP_*), include/uapi/drm/drm.h.
const (
	clientCapUniversalPlanes = 2
	clientCapAtomic          = 3
)

type drmSetClientCap struct {
	Capability uint64
	Value      uint64
}

func (g *GPU) setClientCaps() error {
	iocSetClientCap := iow(drmIOCTLBase, 0x0d, unsafe.Sizeof(drmSetClientCap{}))

	req := drmSetClientCap{Capability: clientCapUniversalPlanes, Value: 1}
	if err := ioctl(g.FD, iocSetClientCap, unsafe.Pointer(&req)); err == nil {
		g.UniversalPlanes = true
	}

	req = drmSetClientCap{Capability: clientCapAtomic, Value: 1}
	if err := ioctl(g.FD, iocSetClientCap, unsafe.Pointer(&req)); err == nil {
		g.Atomic = true
	}

	if !g.UniversalPlanes {
		return fmt.Errorf("universal planes not supported")
	}
	return nil
}

func (g *GPU) queryCaps() {
	cap := drmGetCap{Capability: capAddFB2Modifiers}
	if err := ioctl(g.FD, drmIoctlGetCap, unsafe.Pointer(&cap)); err == nil {
		g.AddFB2Modifiers = cap.Value != 0
	}
}

// TakenCRTCs reports the current per-GPU bitfield of CRTCs bound to a
// connector (spec §3 "the set of taken CRTCs is a bitfield on the GPU").
func (g *GPU) TakenCRTCs() uint32 { return g.takenCRTCs }

// freeCRTCFor returns the first CRTC legal for connector (by the
// encoder-derived possible-CRTC mask) that is not currently taken, or nil
// if none is free (spec §4.5 "intersection of the connector's
// possible-encoder CRTC mask and free CRTCs").
func (g *GPU) freeCRTCFor(possibleMask uint32) *CRTC {
	for i, c := range g.CRTCs {
		bit := uint32(1) << uint(i)
		if possibleMask&bit == 0 {
			continue
		}
		if g.takenCRTCs&bit != 0 {
			continue
		}
		return c
	}
	return nil
}

func (g *GPU) crtcBit(c *CRTC) uint32 {
	for i, candidate := range g.CRTCs {
		if candidate == c {
			return 1 << uint(i)
		}
	}
	return 0
}

// takeCRTC marks c as bound to a connector and sets its bit in the
// per-GPU taken mask. Pre-session state is saved separately, by
// captureCRTCState (spec §4.5).
func (g *GPU) takeCRTC(c *CRTC) {
	c.taken = true
	g.takenCRTCs |= g.crtcBit(c)
}

// releaseCRTC frees c, clearing the per-GPU taken bit (testable scenario
// S4: "the CRTC bit previously taken becomes free").
func (g *GPU) releaseCRTC(c *CRTC) {
	c.taken = false
	g.takenCRTCs &^= g.crtcBit(c)
}

// Close releases the GPU's FD back to the session.
func (g *GPU) Close(sess *session.Session) error {
	return sess.Close(g.FD)
}
