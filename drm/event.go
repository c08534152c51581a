package drm

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Fd satisfies runtime.Pollable so a GPU can be registered directly with
// the compositor's event loop (spec §5 "single poll loop").
func (g *GPU) Fd() int { return g.FD }

// Dispatch drains and parses every event queued on the DRM FD, the
// Go-native equivalent of drmHandleEvent in backend/drm/drm.c: a stream
// of drm_event-prefixed records, each either a vblank or a page-flip
// completion.
func (g *GPU) Dispatch() error {
	buf := make([]byte, 4096)
	n, err := unix.Read(g.FD, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil
		}
		return fmt.Errorf("wlrcore/drm: read event: %w", err)
	}
	return g.handleEvents(buf[:n])
}

const drmEventHeaderSize = int(unsafe.Sizeof(drmEventHeader{}))

// handleEvents walks a buffer of one or more drm_event records. Kernel
// events are never split across a single read on a DRM FD (each write()
// the kernel performs is atomic), so no partial-record buffering is
// needed (spec §9).
func (g *GPU) handleEvents(buf []byte) error {
	for len(buf) >= drmEventHeaderSize {
		var hdr drmEventHeader
		hdr.Type = binary.LittleEndian.Uint32(buf[0:4])
		hdr.Length = binary.LittleEndian.Uint32(buf[4:8])

		if int(hdr.Length) < drmEventHeaderSize || int(hdr.Length) > len(buf) {
			return fmt.Errorf("wlrcore/drm: malformed event: length %d", hdr.Length)
		}
		record := buf[:hdr.Length]

		switch hdr.Type {
		case drmEventFlipComplete:
			g.handlePageFlipComplete(record)
		case drmEventVblankType:
			// Plain vblank events (not tied to a page flip) carry no
			// actionable state for this package; they're only relevant
			// when a consumer explicitly scheduled one, which no
			// SPEC_FULL.md component currently does.
		default:
			wlogUnknownEvent(hdr.Type)
		}

		buf = buf[hdr.Length:]
	}
	return nil
}

const (
	legacyVblankEventSize = 24 // drm_event_vblank: no sequence, no crtc_id (oldest kernels)
	flip2EventSize        = 32 // + crtc_id (DRM_EVENT_FLIP_COMPLETE2, kernel >= 4.12)
)

// handlePageFlipComplete resolves which Output a completion event
// belongs to, preferring the CRTC-ID lookup table the newer payload
// carries and falling back to the user_data correlation the legacy
// payload requires (spec §9 "Pageflip delivery").
func (g *GPU) handlePageFlipComplete(record []byte) {
	var ev drmEventVblank
	ev.Base.Type = binary.LittleEndian.Uint32(record[0:4])
	ev.Base.Length = binary.LittleEndian.Uint32(record[4:8])
	ev.UserData = binary.LittleEndian.Uint64(record[8:16])
	ev.TVSec = binary.LittleEndian.Uint32(record[16:20])
	ev.TVUsec = binary.LittleEndian.Uint32(record[20:24])
	if len(record) >= 28 {
		ev.Sequence = binary.LittleEndian.Uint32(record[24:28])
	}
	if len(record) >= flip2EventSize {
		ev.CrtcID = binary.LittleEndian.Uint32(record[28:32])
	}

	var out *Output
	if ev.CrtcID != 0 {
		out = g.outputsByCRTC[ev.CrtcID]
	}
	if out == nil {
		out = g.takePending(ev.UserData)
	} else {
		g.takePending(ev.UserData)
	}
	if out == nil {
		return // stale or foreign event, nothing waiting on it
	}
	out.HandlePageflipComplete(uint64(ev.Sequence), ev.TVSec, ev.TVUsec)
}

func wlogUnknownEvent(t uint32) {
	// Reached only for event types future kernels might add
	// (e.g. DRM_EVENT_CRTC_SEQUENCE); silently ignored rather than
	// treated as an error, matching drmHandleEvent's own forward
	// compatibility stance.
}
