package drm

// Field-for-field mirrors of the ioctl payload structs in
// include/uapi/drm/drm.h and include/uapi/drm/drm_mode.h, used only to
// size and shape the raw ioctl(2) calls in ioctl.go / gpu.go / commit.go.
// Callers never see these directly — they are translated to/from the
// exported GPU/Connector/CRTC/Plane/Mode types in types.go.

type drmGetCap struct {
	Capability uint64
	Value      uint64
}

type drmModeCardRes struct {
	FbIDPtr        uint64
	CrtcIDPtr      uint64
	ConnectorIDPtr uint64
	EncoderIDPtr   uint64
	CountFbs       uint32
	CountCrtcs     uint32
	CountConnectors uint32
	CountEncoders  uint32
	MinWidth       uint32
	MaxWidth       uint32
	MinHeight      uint32
	MaxHeight      uint32
}

type drmModeModeInfo struct {
	Clock      uint32
	Hdisplay   uint16
	HSyncStart uint16
	HSyncEnd   uint16
	Htotal     uint16
	HSkew      uint16
	Vdisplay   uint16
	VSyncStart uint16
	VSyncEnd   uint16
	Vtotal     uint16
	VScan      uint16
	VRefresh   uint32
	Flags      uint32
	Type       uint32
	Name       [32]byte
}

type drmModeGetConnector struct {
	EncodersPtr     uint64
	ModesPtr        uint64
	PropsPtr        uint64
	PropValuesPtr   uint64
	CountModes      uint32
	CountProps      uint32
	CountEncoders   uint32
	EncoderID       uint32
	ConnectorID     uint32
	ConnectorType   uint32
	ConnectorTypeID uint32
	Connection      uint32
	MmWidth         uint32
	MmHeight        uint32
	Subpixel        uint32
	Pad             uint32
}

type drmModeCreateBlob struct {
	Data   uint64
	Length uint32
	BlobID uint32
}

type drmModeGetEncoder struct {
	EncoderID      uint32
	EncoderType    uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

type drmModeCRTC struct {
	SetConnectorsPtr uint64
	CountConnectors  uint32
	CrtcID           uint32
	FbID             uint32
	X, Y             uint32
	GammaSize        uint32
	ModeValid        uint32
	Mode             drmModeModeInfo
}

type drmModeGetPlaneRes struct {
	PlaneIDPtr uint64
	CountPlanes uint32
}

type drmModeGetPlane struct {
	PlaneID           uint32
	CrtcID            uint32
	FbID              uint32
	PossibleCrtcs     uint32
	GammaSize         uint32
	CountFormatTypes  uint32
	FormatTypePtr     uint64
	CountModePropertyBlobs uint32
	ModePropertyBlobsPtr   uint64
}

type drmModeObjGetProperties struct {
	PropsPtr      uint64
	PropValuesPtr uint64
	CountProps    uint32
	ObjID         uint32
	ObjType       uint32
}

type drmModeObjSetProperty struct {
	Value   uint64
	PropID  uint32
	ObjID   uint32
	ObjType uint32
}

type drmModeAtomic struct {
	Flags         uint32
	CountObjs     uint32
	ObjsPtr       uint64
	CountPropsPtr uint64
	PropsPtr      uint64
	PropValuesPtr uint64
	Reserved      uint64
	UserData      uint64
}

type drmModePageFlip struct {
	CrtcID   uint32
	FbID     uint32
	Flags    uint32
	Reserved uint32
	UserData uint64
}

type drmModeCursor2 struct {
	Flags  uint32
	CrtcID uint32
	X, Y   int32
	Width, Height uint32
	HandleOrHotX  uint32
	HotY          uint32
}

type drmModeFBCmd2 struct {
	FBID   uint32
	Width  uint32
	Height uint32
	PixelFormat uint32
	Flags  uint32
	Handles [4]uint32
	Pitches [4]uint32
	Offsets [4]uint32
	Modifier [4]uint64
}

type drmModeCRTCLut struct {
	CrtcID uint32
	Size   uint32
	Red    uint64
	Green  uint64
	Blue   uint64
}

type drmGEMClose struct {
	Handle uint32
	Pad    uint32
}

// drmEventHeader mirrors struct drm_event: every event delivered on the
// DRM FD starts with this header (spec §9 "Pageflip delivery").
type drmEventHeader struct {
	Type   uint32
	Length uint32
}

type drmEventVblank struct {
	Base        drmEventHeader
	UserData    uint64
	TVSec       uint32
	TVUsec      uint32
	Sequence    uint32
	CrtcID      uint32 // only present in DRM_EVENT_FLIP_COMPLETE2 payloads
}

const (
	drmEventVblankType    = 0x01
	drmEventFlipComplete  = 0x02
	drmModePagFlipEvent   = 1 << 0
	drmModeAtomicAllowModeset = 0x0400
	drmModeAtomicTestOnly     = 0x0100
)
