package drm

import "unsafe"

// DRM_MODE_OBJECT_* (include/uapi/drm/drm_mode.h).
const (
	objTypeConnector = 0xc0c0c0c0
	objTypeCRTC      = 0xcccccccc
	objTypePlane     = 0xeeeeeeee
)

type drmModeGetProperty struct {
	ValuesPtr uint64
	EnumBlobPtr uint64
	PropID    uint32
	Flags     uint32
	Name      [32]byte
	CountValues uint32
	CountEnumBlobs uint32
}

// reportedProps fetches every (name, id) property pair the kernel reports
// for objID/objType, ready for propSet.scan. This is the two-ioctl dance
// (OBJ_GETPROPERTIES for ids, GETPROPERTY per id for the name) spec §4.4
// describes as "one-time introspection".
func reportedProps(fd int, objID, objType uint32) ([]kernelProp, error) {
	var og drmModeObjGetProperties
	og.ObjID = objID
	og.ObjType = objType
	if err := ioctl(fd, drmIoctlModeObjGetProperties, unsafe.Pointer(&og)); err != nil {
		return nil, err
	}
	if og.CountProps == 0 {
		return nil, nil
	}

	ids := make([]uint32, og.CountProps)
	values := make([]uint64, og.CountProps)
	og.PropsPtr = uint64(uintptr(unsafe.Pointer(&ids[0])))
	og.PropValuesPtr = uint64(uintptr(unsafe.Pointer(&values[0])))
	if err := ioctl(fd, drmIoctlModeObjGetProperties, unsafe.Pointer(&og)); err != nil {
		return nil, err
	}

	out := make([]kernelProp, 0, len(ids))
	for _, id := range ids {
		var gp drmModeGetProperty
		gp.PropID = id
		if err := ioctl(fd, iowr(drmIOCTLBase, 0xaa, unsafe.Sizeof(gp)), unsafe.Pointer(&gp)); err != nil {
			continue
		}
		out = append(out, kernelProp{Name: cString(gp.Name[:]), ID: id})
	}
	return out, nil
}

// readPropertyValue re-reads the current value of propID on objID, used
// for the small number of properties (plane "type", DPMS, rotation) whose
// value, not just presence, matters at scan time.
func readPropertyValue(fd int, objID, objType, propID uint32) (uint64, error) {
	var og drmModeObjGetProperties
	og.ObjID = objID
	og.ObjType = objType
	if err := ioctl(fd, drmIoctlModeObjGetProperties, unsafe.Pointer(&og)); err != nil {
		return 0, err
	}
	if og.CountProps == 0 {
		return 0, nil
	}
	ids := make([]uint32, og.CountProps)
	values := make([]uint64, og.CountProps)
	og.PropsPtr = uint64(uintptr(unsafe.Pointer(&ids[0])))
	og.PropValuesPtr = uint64(uintptr(unsafe.Pointer(&values[0])))
	if err := ioctl(fd, drmIoctlModeObjGetProperties, unsafe.Pointer(&og)); err != nil {
		return 0, err
	}
	for i, id := range ids {
		if id == propID {
			return values[i], nil
		}
	}
	return 0, nil
}

// setObjProperty writes a single property value via the legacy
// SETPROPERTY ioctl (DRM_IOCTL_MODE_OBJ_SETPROPERTY), used by non-atomic
// backends for DPMS and similar scalar properties.
func setObjProperty(fd int, objID, objType, propID uint32, value uint64) error {
	req := drmModeObjSetProperty{Value: value, PropID: propID, ObjID: objID, ObjType: objType}
	return ioctl(fd, drmIoctlModeObjSetProperty, unsafe.Pointer(&req))
}

// createBlob uploads data as a DRM property blob (DRM_IOCTL_MODE_CREATEBLOB)
// and returns its blob ID, ready to be written into a blob-typed property
// such as CRTC GAMMA_LUT (gamma.go writes it with an atomic commit).
func createBlob(fd int, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	req := drmModeCreateBlob{
		Data:   uint64(uintptr(unsafe.Pointer(&data[0]))),
		Length: uint32(len(data)),
	}
	if err := ioctl(fd, drmIoctlModeCreateBlob, unsafe.Pointer(&req)); err != nil {
		return 0, err
	}
	return req.BlobID, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// planeTypeEnum values for the "type" plane property
// (DRM_PLANE_TYPE_*).
const (
	planeTypeOverlay = 0
	planeTypePrimary = 1
	planeTypeCursor  = 2
)

// classifyPlane maps the kernel's numeric "type" property value to our
// PlaneType (spec §3).
func classifyPlane(kernelType uint64) PlaneType {
	switch kernelType {
	case planeTypePrimary:
		return PlanePrimary
	case planeTypeCursor:
		return PlaneCursor
	default:
		return PlaneOverlay
	}
}
