// Package drm implements the DRM/KMS Output Pipeline (spec §4.5) plus its
// supporting GEM handle accounting (§4.3) and property introspection
// (§4.4). Grounded on backend/drm/*.c and include/backend/drm/*.h from the
// original implementation.
package drm

import "fmt"

// ConnectionState is a Connector's tri-state per spec §3.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	NeedsModeset
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case NeedsModeset:
		return "needs-modeset"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// PlaneType distinguishes PRIMARY/CURSOR/OVERLAY planes (spec §3).
type PlaneType int

const (
	PlanePrimary PlaneType = iota
	PlaneCursor
	PlaneOverlay
)

// Mode is width × height × refresh (mHz) plus the kernel's opaque payload
// (spec §3). Modes constructed by the compositor rather than advertised by
// the kernel have Custom set.
type Mode struct {
	Width, Height uint32
	RefreshMHz    uint32 // milli-Hz, e.g. 60000 for 60Hz
	Preferred     bool
	Current       bool
	Custom        bool

	raw drmModeModeInfo
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d@%d.%03dHz", m.Width, m.Height, m.RefreshMHz/1000, m.RefreshMHz%1000)
}

// CustomMode builds a Mode from explicit values, for displays that cannot
// be probed for a mode list (spec §3 "An Output also accepts custom
// modes").
func CustomMode(width, height, refreshMHz uint32) Mode {
	return Mode{Width: width, Height: height, RefreshMHz: refreshMHz, Custom: true}
}

// Plane is a composition surface (spec §3).
type Plane struct {
	ID            uint32
	Type          PlaneType
	PossibleCRTCs uint32 // bitmask
	Formats       []uint32
	CurrentFB     uint32

	props propSet
}

// CRTC is a scanout engine (spec §3). It owns at most one PRIMARY plane,
// optionally one CURSOR plane, and zero or more OVERLAY planes.
type CRTC struct {
	ID               uint32
	PossibleConnectors uint32 // legal-connector bitmask (encoder intersection)
	Primary          *Plane
	Cursor           *Plane
	Overlays         []*Plane

	taken bool
	saved drmModeCRTC // pre-session state, restored on teardown

	props propSet
}

// Connector is one physical display port (spec §3).
type Connector struct {
	ID           uint32
	Name         string
	MmWidth      uint32
	MmHeight     uint32
	EDID         []byte
	State        ConnectionState
	Modes        []Mode
	CRTC         *CRTC // set by bindConnector (State may still be NeedsModeset); nil when unbound or after Unplug
	EncoderIDs   []uint32 // this connector's possible encoders (GETCONNECTOR)

	props propSet
}

// BufferObject is a handle into the kernel's GEM table on a given GPU
// (spec §3). Handle reference counting lives in BOHandleTable.
type BufferObject struct {
	Handle uint32
	GPU    *GPU
}

// Framebuffer binds one or more BOs to a (format, modifier, stride,
// offset) tuple (spec §3). Caching it on the buffer for its lifetime on a
// given GPU is left to callers; this package does not cache it.
type Framebuffer struct {
	ID       uint32
	Width    uint32
	Height   uint32
	Format   uint32
	Modifier uint64
	Handles  [4]uint32
	Pitches  [4]uint32
	Offsets  [4]uint32
}
