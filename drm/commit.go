package drm

import (
	"fmt"
	"unsafe"

	"github.com/wlrootsgo/wlrcore/wlrerr"
)

// AddFramebuffer registers fb's dmabuf handles with the kernel via
// ADDFB2, filling in fb.ID, and bumps the GPU's BO handle-table refcount
// once for each non-zero handle slot, so a handle shared by several
// planes is counted once per plane, the same way Output.releaseBuffer
// unrefs it (spec §5 "GEM handles are reference-counted per-GPU").
func AddFramebuffer(g *GPU, fb *Framebuffer) error {
	var req drmModeFBCmd2
	req.Width = fb.Width
	req.Height = fb.Height
	req.PixelFormat = fb.Format
	req.Handles = fb.Handles
	req.Pitches = fb.Pitches
	req.Offsets = fb.Offsets
	if g.AddFB2Modifiers && fb.Modifier != 0 {
		for i := range req.Modifier {
			if fb.Handles[i] != 0 {
				req.Modifier[i] = fb.Modifier
			}
		}
		req.Flags |= 1 << 1 // DRM_MODE_FB_MODIFIERS
	}

	if err := ioctl(g.FD, drmIoctlModeAddFB2, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: ADDFB2: %w", err)
	}
	fb.ID = req.FBID

	for _, h := range fb.Handles {
		if h != 0 {
			g.BOTable.Ref(h)
		}
	}
	return nil
}

// RemoveFramebuffer issues RMFB for fbID. GEM handle release happens
// separately through BOHandleTable.Unref, not here (spec §5).
func RemoveFramebuffer(g *GPU, fbID uint32) error {
	id := fbID
	if err := ioctl(g.FD, drmIoctlModeRmFB, unsafe.Pointer(&id)); err != nil {
		return fmt.Errorf("wlrcore/drm: RMFB: %w", err)
	}
	return nil
}

// submit dispatches to the atomic or legacy commit path depending on
// GPU capability (spec §4.5 "Dual commit paths: atomic (preferred) and
// legacy (fallback)"). userData is echoed back unchanged on the
// page-flip completion event, letting event.go route it back to this
// Output without scanning every Output on every wakeup.
// submit returns (sync, err): sync is true when the commit already took
// full effect synchronously (legacy SETCRTC) and no page-flip completion
// event will ever arrive for it.
func (o *Output) submit(userData uint64) (bool, error) {
	if o.GPU.Atomic {
		return false, o.atomicCommit(userData)
	}
	return o.legacyCommit(userData)
}

// legacyCommit uses SETCRTC for the first (mode-setting) commit of a
// connector's lifetime and PAGEFLIP for every subsequent frame, matching
// legacy KMS semantics: SETCRTC blocks and has no completion event,
// PAGEFLIP is asynchronous and is what drives the pageflip_pending
// latch.
func (o *Output) legacyCommit(userData uint64) (bool, error) {
	c := o.Connector.CRTC
	if c == nil {
		return false, fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}

	if o.needsModeset {
		if err := o.legacySetCRTC(c); err != nil {
			return false, err
		}
		o.needsModeset = false
		o.GPU.takePending(userData)
		o.HandlePageflipComplete(0, 0, 0)
		return true, nil
	}

	var req drmModePageFlip
	req.CrtcID = c.ID
	req.FbID = o.backBuffer.ID
	req.Flags = drmModePagFlipEvent
	req.UserData = userData
	if err := ioctl(o.GPU.FD, drmIoctlModePageFlip, unsafe.Pointer(&req)); err != nil {
		return false, fmt.Errorf("wlrcore/drm: %w: PAGEFLIP: %v", wlrerr.ErrTransient, err)
	}
	return false, nil
}

func (o *Output) legacySetCRTC(c *CRTC) error {
	if o.mode == nil {
		return fmt.Errorf("wlrcore/drm: %w: no mode set", wlrerr.ErrInvalid)
	}
	connIDs := []uint32{o.Connector.ID}
	req := drmModeCRTC{
		SetConnectorsPtr: uint64(uintptr(unsafe.Pointer(&connIDs[0]))),
		CountConnectors:  uint32(len(connIDs)),
		CrtcID:           c.ID,
		FbID:             o.backBuffer.ID,
		ModeValid:        1,
		Mode:             o.mode.raw,
	}
	if err := ioctl(o.GPU.FD, drmIoctlModeSetCRTC, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: %w: SETCRTC: %v", wlrerr.ErrTransient, err)
	}
	return nil
}

// atomicProp pairs an object+property id with the value being committed,
// the flattened form DRM_IOCTL_MODE_ATOMIC expects (spec §4.5 "atomic
// commit builds one flattened property list across connector, CRTC and
// plane objects").
type atomicProp struct {
	objID  uint32
	propID uint32
	value  uint64
}

// atomicCommit builds the CRTC_ID/FB_ID/ACTIVE property set for this
// output's connector, CRTC and primary plane and submits it as one
// DRM_IOCTL_MODE_ATOMIC call. ALLOW_MODESET is set only while
// needsModeset is true, matching the kernel's requirement that mode
// changes be explicitly authorized (spec §4.5 "TEST_ONLY / ALLOW_MODESET
// retry semantics").
func (o *Output) atomicCommit(userData uint64) error {
	c := o.Connector.CRTC
	if c == nil {
		return fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}

	var props []atomicProp
	props = append(props, atomicProp{o.Connector.ID, o.Connector.props.id("CRTC_ID"), uint64(c.ID)})
	props = append(props, atomicProp{c.ID, c.props.id("ACTIVE"), 1})
	if c.Primary != nil {
		props = append(props,
			atomicProp{c.Primary.ID, c.Primary.props.id("FB_ID"), uint64(o.backBuffer.ID)},
			atomicProp{c.Primary.ID, c.Primary.props.id("CRTC_ID"), uint64(c.ID)},
		)
	}

	flags := uint32(drmModePagFlipEvent)
	if o.needsModeset {
		flags |= drmModeAtomicAllowModeset
	}

	if err := o.submitAtomic(props, flags, userData); err != nil {
		// Disambiguate transient (e.g. EBUSY from a racing commit) from
		// an invalid property set by replaying the same props as
		// TEST_ONLY, which the kernel validates without touching
		// hardware or requiring a prior ALLOW_MODESET grant to still
		// reject a bad config (spec §4.5 "Failure semantics").
		if testErr := o.testOnlyAtomic(props, flags); testErr != nil {
			o.needsModeset = true
			o.Connector.State = NeedsModeset
			return fmt.Errorf("wlrcore/drm: %w: atomic commit rejected (TEST_ONLY confirmed): %v", wlrerr.ErrInvalid, err)
		}
		return err
	}
	o.needsModeset = false
	return nil
}

// testOnlyAtomic replays props as a DRM_MODE_ATOMIC_TEST_ONLY commit: the
// kernel validates the property set without touching hardware and without
// ever emitting a page-flip completion event, so it is safe to call after
// a failed real commit to decide whether the failure was transient or the
// configuration itself is invalid.
func (o *Output) testOnlyAtomic(props []atomicProp, flags uint32) error {
	testFlags := (flags &^ drmModePagFlipEvent) | drmModeAtomicTestOnly
	return o.submitAtomic(props, testFlags, 0)
}

func (o *Output) submitAtomic(props []atomicProp, flags uint32, userData uint64) error {
	if len(props) == 0 {
		return nil
	}
	objs := make([]uint32, 0, len(props))
	countPerObj := make([]uint32, 0, len(props))
	propIDs := make([]uint32, 0, len(props))
	values := make([]uint64, 0, len(props))

	var lastObj uint32
	seen := false
	for _, p := range props {
		if !seen || p.objID != lastObj {
			objs = append(objs, p.objID)
			countPerObj = append(countPerObj, 0)
			lastObj = p.objID
			seen = true
		}
		countPerObj[len(countPerObj)-1]++
		propIDs = append(propIDs, p.propID)
		values = append(values, p.value)
	}

	req := drmModeAtomic{
		Flags:         flags,
		CountObjs:     uint32(len(objs)),
		ObjsPtr:       uint64(uintptr(unsafe.Pointer(&objs[0]))),
		CountPropsPtr: uint64(uintptr(unsafe.Pointer(&countPerObj[0]))),
		PropsPtr:      uint64(uintptr(unsafe.Pointer(&propIDs[0]))),
		PropValuesPtr: uint64(uintptr(unsafe.Pointer(&values[0]))),
		UserData:      userData,
	}
	if err := ioctl(o.GPU.FD, drmIoctlModeAtomic, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: %w: ATOMIC: %v", wlrerr.ErrTransient, err)
	}
	return nil
}
