package drm

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/wlrootsgo/wlrcore/wlrerr"
)

// SetGamma uploads a three-channel gamma ramp for the CRTC: atomic
// backends write it as the CRTC's GAMMA_LUT blob property, legacy
// backends use drmModeCrtcSetGamma directly (spec §4.5 "writes to the
// CRTC GAMMA_LUT blob (atomic) or drmModeCrtcSetGamma (legacy)").
func (o *Output) SetGamma(red, green, blue []uint16) error {
	c := o.Connector.CRTC
	if c == nil {
		return fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}
	if len(red) != len(green) || len(red) != len(blue) {
		return fmt.Errorf("wlrcore/drm: %w: gamma ramp length mismatch", wlrerr.ErrInvalid)
	}
	if len(red) == 0 {
		return fmt.Errorf("wlrcore/drm: %w: empty gamma ramp", wlrerr.ErrInvalid)
	}

	if o.GPU.Atomic {
		return o.setGammaAtomic(c, red, green, blue)
	}
	return o.setGammaLegacy(c, red, green, blue)
}

func (o *Output) setGammaLegacy(c *CRTC, red, green, blue []uint16) error {
	req := drmModeCRTCLut{
		CrtcID: c.ID,
		Size:   uint32(len(red)),
		Red:    uint64(uintptr(unsafe.Pointer(&red[0]))),
		Green:  uint64(uintptr(unsafe.Pointer(&green[0]))),
		Blue:   uint64(uintptr(unsafe.Pointer(&blue[0]))),
	}
	if err := ioctl(o.GPU.FD, drmIoctlModeCRTCSetGamma, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("wlrcore/drm: %w: CRTC_SETGAMMA: %v", wlrerr.ErrTransient, err)
	}
	return nil
}

// setGammaAtomic uploads the ramp as a drm_color_lut blob (one
// {red,green,blue,reserved} uint16 quad per entry) and points the CRTC's
// GAMMA_LUT property at it.
func (o *Output) setGammaAtomic(c *CRTC, red, green, blue []uint16) error {
	propID := c.props.id("GAMMA_LUT")
	if propID == 0 {
		return fmt.Errorf("wlrcore/drm: %w: CRTC has no GAMMA_LUT property", wlrerr.ErrUnavailable)
	}

	blobID, err := createBlob(o.GPU.FD, encodeColorLUT(red, green, blue))
	if err != nil {
		return fmt.Errorf("wlrcore/drm: %w: CREATEBLOB (gamma): %v", wlrerr.ErrTransient, err)
	}

	props := []atomicProp{{c.ID, propID, uint64(blobID)}}
	if err := o.submitAtomic(props, 0, 0); err != nil {
		return err
	}
	return nil
}

// encodeColorLUT packs three equal-length ramps into the kernel's
// drm_color_lut wire format: one 8-byte {red,green,blue,reserved} quad
// per entry, reserved left zero.
func encodeColorLUT(red, green, blue []uint16) []byte {
	buf := make([]byte, len(red)*8)
	for i := range red {
		binary.LittleEndian.PutUint16(buf[i*8:], red[i])
		binary.LittleEndian.PutUint16(buf[i*8+2:], green[i])
		binary.LittleEndian.PutUint16(buf[i*8+4:], blue[i])
	}
	return buf
}

// GetGammaSize reports the CRTC's gamma ramp length: the GAMMA_LUT_SIZE
// property for atomic GPUs, or GETCRTC's legacy gamma_size field
// otherwise (spec §4.5 "get_gamma_size()").
func (o *Output) GetGammaSize() (uint32, error) {
	c := o.Connector.CRTC
	if c == nil {
		return 0, fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
	}

	if o.GPU.Atomic {
		propID := c.props.id("GAMMA_LUT_SIZE")
		if propID == 0 {
			return 0, fmt.Errorf("wlrcore/drm: %w: CRTC has no GAMMA_LUT_SIZE property", wlrerr.ErrUnavailable)
		}
		val, err := readPropertyValue(o.GPU.FD, c.ID, objTypeCRTC, propID)
		if err != nil {
			return 0, fmt.Errorf("wlrcore/drm: %w: read GAMMA_LUT_SIZE: %v", wlrerr.ErrTransient, err)
		}
		return uint32(val), nil
	}

	var req drmModeCRTC
	req.CrtcID = c.ID
	if err := ioctl(o.GPU.FD, drmIoctlModeGetCRTC, unsafe.Pointer(&req)); err != nil {
		return 0, fmt.Errorf("wlrcore/drm: %w: GETCRTC: %v", wlrerr.ErrTransient, err)
	}
	return req.GammaSize, nil
}
