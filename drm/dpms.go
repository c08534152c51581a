package drm

import (
	"fmt"

	"github.com/wlrootsgo/wlrcore/wlrerr"
)

// DPMS power states (DRM_MODE_DPMS_*, include/uapi/drm/drm_mode.h).
const (
	DPMSOn      = 0
	DPMSStandby = 1
	DPMSSuspend = 2
	DPMSOff     = 3
)

// SetDPMS sets the connector's DPMS property for legacy (non-atomic)
// backends. Atomic backends instead submit a standalone atomic commit
// that writes only the CRTC's ACTIVE property: 1 for DPMSOn, 0 for any
// other state (spec §4.5 "gamma / DPMS").
func (o *Output) SetDPMS(state int) error {
	if o.GPU.Atomic {
		active := uint64(0)
		if state == DPMSOn {
			active = 1
		}
		c := o.Connector.CRTC
		if c == nil {
			return fmt.Errorf("wlrcore/drm: %w: no CRTC bound", wlrerr.ErrInvalid)
		}
		props := []atomicProp{{c.ID, c.props.id("ACTIVE"), active}}
		return o.submitAtomic(props, 0, 0)
	}

	propID := o.Connector.props.id("DPMS")
	if propID == 0 {
		return fmt.Errorf("wlrcore/drm: %w: connector has no DPMS property", wlrerr.ErrUnavailable)
	}
	return setObjProperty(o.GPU.FD, o.Connector.ID, objTypeConnector, propID, uint64(state))
}
