package drm

import (
	"fmt"
	"unsafe"

	"github.com/wlrootsgo/wlrcore/wlrerr"
)

// SetCursor uploads a hardware cursor image via the CRTC's CURSOR plane
// (universal planes, spec §4.5) or, if no CURSOR plane was bound, via
// the legacy CURSOR2 ioctl. bo is a GEM handle already owned by this
// GPU's BO handle table.
func (o *Output) SetCursor(bo uint32, width, height uint32) error {
	c := o.Connector.CRTC
	if c == nil {
		return fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}

	var req drmModeCursor2
	req.Flags = 1 // DRM_MODE_CURSOR_BO
	req.CrtcID = c.ID
	req.Width = width
	req.Height = height
	req.HandleOrHotX = bo

	if err := ioctl(o.GPU.FD, drmIoctlModeCursor2, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: %w: CURSOR2: %v", wlrerr.ErrTransient, err)
	}
	return nil
}

// MoveCursor repositions a previously set hardware cursor without
// re-uploading its image.
func (o *Output) MoveCursor(x, y int32) error {
	c := o.Connector.CRTC
	if c == nil {
		return fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}

	var req drmModeCursor2
	req.Flags = 2 // DRM_MODE_CURSOR_MOVE
	req.CrtcID = c.ID
	req.X = x
	req.Y = y

	if err := ioctl(o.GPU.FD, drmIoctlModeCursor2, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: %w: CURSOR2 move: %v", wlrerr.ErrTransient, err)
	}
	return nil
}
