package drm

import (
	"fmt"
	"unsafe"
)

// scanConnectors performs the CRTC/plane/connector allocation pass of
// spec §4.5: enumerate resources, then for each connector choose a CRTC
// from the intersection of its possible-encoder mask and the GPU's free
// CRTCs, and bind a PRIMARY (required) and, if available, CURSOR plane.
//
// Run once by Open at startup; GPU.Resume uses rescanConnectors instead.
// Nothing in this module reruns either scan on a udev hotplug event.
func (g *GPU) scanConnectors() error {
	var res drmModeCardRes
	if err := ioctl(g.FD, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return fmt.Errorf("GETRESOURCES: %w", err)
	}

	if err := g.scanCRTCs(&res); err != nil {
		return err
	}
	if err := g.scanPlanes(); err != nil {
		return err
	}

	connIDs := make([]uint32, res.CountConnectors)
	if len(connIDs) > 0 {
		res.ConnectorIDPtr = uint64(uintptr(unsafe.Pointer(&connIDs[0])))
		if err := ioctl(g.FD, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
			return fmt.Errorf("GETRESOURCES (connector ids): %w", err)
		}
	}

	for _, id := range connIDs {
		conn, err := g.scanOneConnector(id)
		if err != nil {
			return fmt.Errorf("connector %d: %w", id, err)
		}
		g.Connectors = append(g.Connectors, conn)

		if conn.State != Disconnected {
			g.bindConnector(conn)
		}
	}
	return nil
}

// rescanConnectors re-enumerates connector IDs and binds any not already
// known, without disturbing already-bound Connectors/Outputs — their
// CRTC binding and saved pre-session state must survive a VT-switch
// round trip intact. Used by GPU.Resume (spec §4.1 "observers rescan
// connectors"); the initial scanConnectors handles the full enumeration
// at Open time, where nothing is yet known.
func (g *GPU) rescanConnectors() error {
	var res drmModeCardRes
	if err := ioctl(g.FD, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return fmt.Errorf("GETRESOURCES: %w", err)
	}
	if res.CountConnectors == 0 {
		return nil
	}
	connIDs := make([]uint32, res.CountConnectors)
	res.ConnectorIDPtr = uint64(uintptr(unsafe.Pointer(&connIDs[0])))
	if err := ioctl(g.FD, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return fmt.Errorf("GETRESOURCES (connector ids): %w", err)
	}

	known := make(map[uint32]bool, len(g.Connectors))
	for _, c := range g.Connectors {
		known[c.ID] = true
	}

	for _, id := range connIDs {
		if known[id] {
			continue
		}
		conn, err := g.scanOneConnector(id)
		if err != nil {
			return fmt.Errorf("connector %d: %w", id, err)
		}
		g.Connectors = append(g.Connectors, conn)
		if conn.State != Disconnected {
			g.bindConnector(conn)
		}
	}
	return nil
}

func (g *GPU) scanCRTCs(res *drmModeCardRes) error {
	ids := make([]uint32, res.CountCrtcs)
	if len(ids) == 0 {
		return nil
	}
	res.CrtcIDPtr = uint64(uintptr(unsafe.Pointer(&ids[0])))
	if err := ioctl(g.FD, drmIoctlModeGetResources, unsafe.Pointer(res)); err != nil {
		return fmt.Errorf("GETRESOURCES (crtc ids): %w", err)
	}
	for _, id := range ids {
		g.CRTCs = append(g.CRTCs, &CRTC{ID: id, props: newPropSet(crtcPropNames...)})
	}
	return nil
}

func (g *GPU) scanPlanes() error {
	var planeRes drmModeGetPlaneRes
	if err := ioctl(g.FD, drmIoctlModeGetPlaneResources, unsafe.Pointer(&planeRes)); err != nil {
		return fmt.Errorf("GETPLANERESOURCES: %w", err)
	}
	ids := make([]uint32, planeRes.CountPlanes)
	if len(ids) == 0 {
		return nil
	}
	planeRes.PlaneIDPtr = uint64(uintptr(unsafe.Pointer(&ids[0])))
	if err := ioctl(g.FD, drmIoctlModeGetPlaneResources, unsafe.Pointer(&planeRes)); err != nil {
		return fmt.Errorf("GETPLANERESOURCES (ids): %w", err)
	}

	for _, id := range ids {
		var gp drmModeGetPlane
		gp.PlaneID = id
		if err := ioctl(g.FD, drmIoctlModeGetPlane, unsafe.Pointer(&gp)); err != nil {
			return fmt.Errorf("GETPLANE %d: %w", id, err)
		}
		p := &Plane{ID: id, PossibleCRTCs: gp.PossibleCrtcs, props: newPropSet(planePropNames...)}

		if reported, err := reportedProps(g.FD, id, objTypePlane); err == nil {
			p.props.scan(reported)
			if typeID := p.props.id("type"); typeID != 0 {
				if val, err := readPropertyValue(g.FD, id, objTypePlane, typeID); err == nil {
					p.Type = classifyPlane(val)
				}
			}
		}
		g.Planes = append(g.Planes, p)
	}
	return nil
}

// bindPlanesToCRTC assigns a PRIMARY (required) and CURSOR (if present)
// plane from g.Planes to c, based on c's bit in each plane's
// possible-CRTCs mask (spec §4.5).
func (g *GPU) bindPlanesToCRTC(c *CRTC, crtcIndex int) {
	bit := uint32(1) << uint(crtcIndex)
	for _, p := range g.Planes {
		if p.PossibleCRTCs&bit == 0 {
			continue
		}
		switch p.Type {
		case PlanePrimary:
			if c.Primary == nil {
				c.Primary = p
			}
		case PlaneCursor:
			if c.Cursor == nil {
				c.Cursor = p
			}
		case PlaneOverlay:
			c.Overlays = append(c.Overlays, p)
		}
	}
}

func (g *GPU) scanOneConnector(id uint32) (*Connector, error) {
	var gc drmModeGetConnector
	gc.ConnectorID = id
	if err := ioctl(g.FD, drmIoctlModeGetConnector, unsafe.Pointer(&gc)); err != nil {
		return nil, fmt.Errorf("GETCONNECTOR: %w", err)
	}

	conn := &Connector{
		ID:       id,
		MmWidth:  gc.MmWidth,
		MmHeight: gc.MmHeight,
		props:    newPropSet(connectorPropNames...),
	}
	conn.Name = connectorName(gc.ConnectorType, gc.ConnectorTypeID)

	const connectionConnected = 1
	if gc.Connection == connectionConnected {
		conn.State = NeedsModeset

		if gc.CountModes > 0 {
			modes := make([]drmModeModeInfo, gc.CountModes)
			gc.ModesPtr = uint64(uintptr(unsafe.Pointer(&modes[0])))
			if err := ioctl(g.FD, drmIoctlModeGetConnector, unsafe.Pointer(&gc)); err != nil {
				return nil, fmt.Errorf("GETCONNECTOR (modes): %w", err)
			}
			for _, m := range modes {
				conn.Modes = append(conn.Modes, modeFromRaw(m))
			}
		}
	} else {
		conn.State = Disconnected
	}

	if gc.CountEncoders > 0 {
		encIDs := make([]uint32, gc.CountEncoders)
		gc.EncodersPtr = uint64(uintptr(unsafe.Pointer(&encIDs[0])))
		if err := ioctl(g.FD, drmIoctlModeGetConnector, unsafe.Pointer(&gc)); err != nil {
			return nil, fmt.Errorf("GETCONNECTOR (encoders): %w", err)
		}
		conn.EncoderIDs = encIDs
	}

	return conn, nil
}

func modeFromRaw(raw drmModeModeInfo) Mode {
	const modeFlagPreferred = 1 << 3 // DRM_MODE_TYPE_PREFERRED bit, as reported in Type
	return Mode{
		Width:      uint32(raw.Hdisplay),
		Height:     uint32(raw.Vdisplay),
		RefreshMHz: raw.VRefresh * 1000,
		Preferred:  raw.Type&modeFlagPreferred != 0,
		raw:        raw,
	}
}

func connectorName(connType, typeID uint32) string {
	names := map[uint32]string{
		0: "Unknown", 1: "VGA", 2: "DVII", 3: "DVID", 4: "DVIA",
		7: "Composite", 9: "SVideo", 10: "LVDS", 11: "Component",
		12: "DIN", 14: "DisplayPort", 11000: "HDMIA",
	}
	base, ok := names[connType]
	if !ok {
		base = "Unknown"
	}
	return fmt.Sprintf("%s-%d", base, typeID)
}

// bindConnector performs the CRTC+plane allocation for a newly connected
// connector (spec §4.5), saving pre-session CRTC state so it can be
// restored on shutdown.
func (g *GPU) bindConnector(conn *Connector) {
	possible := g.encoderPossibleCRTCs(conn)
	crtc := g.freeCRTCFor(possible)
	if crtc == nil {
		return // no free CRTC: stays NeedsModeset and unbound; rescanConnectors skips known IDs, so it is not retried
	}

	idx := g.crtcIndex(crtc)
	g.takeCRTC(crtc)
	g.bindPlanesToCRTC(crtc, idx)
	g.captureCRTCState(crtc)

	conn.CRTC = crtc
	g.SignalNewOutput.Emit(conn)
}

// captureCRTCState reads crtc's current mode/fb via GETCRTC before this
// package takes it over, so Output.Unplug can restore whatever was
// displayed pre-session (spec §3 "saved pre-session state", §4.5).
func (g *GPU) captureCRTCState(crtc *CRTC) {
	saved := drmModeCRTC{CrtcID: crtc.ID}
	if err := ioctl(g.FD, drmIoctlModeGetCRTC, unsafe.Pointer(&saved)); err != nil {
		crtc.saved = drmModeCRTC{CrtcID: crtc.ID}
		return
	}
	crtc.saved = saved
}

// restoreCRTCState reissues crtc's captured pre-session SETCRTC against
// connID, restoring whatever was on screen before this package bound it.
// A CRTC that was off (ModeValid == 0) pre-session is left off.
func (g *GPU) restoreCRTCState(crtc *CRTC, connID uint32) error {
	if crtc.saved.ModeValid == 0 {
		return nil
	}
	connIDs := []uint32{connID}
	req := drmModeCRTC{
		SetConnectorsPtr: uint64(uintptr(unsafe.Pointer(&connIDs[0]))),
		CountConnectors:  1,
		CrtcID:           crtc.saved.CrtcID,
		FbID:             crtc.saved.FbID,
		X:                crtc.saved.X,
		Y:                crtc.saved.Y,
		ModeValid:        1,
		Mode:             crtc.saved.Mode,
	}
	if err := ioctl(g.FD, drmIoctlModeSetCRTC, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: restore SETCRTC: %w", err)
	}
	return nil
}

func (g *GPU) crtcIndex(c *CRTC) int {
	for i, candidate := range g.CRTCs {
		if candidate == c {
			return i
		}
	}
	return -1
}

// encoderPossibleCRTCs resolves conn's possible encoders (captured by
// scanOneConnector) via one GETENCODER round trip each and ORs their
// possible-CRTCs masks together, the intersection input
// bindConnector/freeCRTCFor allocate against (spec §4.5). A connector
// with no usable encoder contributes an empty mask, which correctly
// leaves it unallocatable rather than falsely claiming every CRTC.
func (g *GPU) encoderPossibleCRTCs(conn *Connector) uint32 {
	var mask uint32
	for _, id := range conn.EncoderIDs {
		var enc drmModeGetEncoder
		enc.EncoderID = id
		if err := ioctl(g.FD, drmIoctlModeGetEncoder, unsafe.Pointer(&enc)); err != nil {
			continue
		}
		mask |= enc.PossibleCrtcs
	}
	return mask
}
