package session

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
)

// Linux VT ioctl numbers (linux/vt.h) and KD ioctl numbers
// (linux/kd.h). golang.org/x/sys/unix does not expose these (they are
// console-subsystem specific, not general syscall numbers), so they are
// defined here the way backend/session/session.c's direct-VT path uses
// them verbatim from the kernel headers.
const (
	vtOpenQry  = 0x5600
	vtGetState = 0x5603
	vtActivate = 0x5606
	vtWaitActive = 0x5607
	vtSetMode  = 0x5602
	vtRelDisp  = 0x5605
	vtAcquireSignal = 1
	vtReleaseSignal = 1

	kdSetMode = 0x4B3A
	kdTextMode = 0x00
	kdGraphicsMode = 0x01
)

// vtState mirrors struct vt_stat from linux/vt.h.
type vtState struct {
	VActive uint16
	VSignal uint16
	VState  uint16
}

// directVTImpl grabs the VT directly via ioctls; requires CAP_SYS_ADMIN
// (spec §4.1). It installs no VT_SETMODE process-signal handling and
// never calls Session.setActive, so a direct-VT Session reports active
// for its whole lifetime; VT switches away are not observed.
type directVTImpl struct {
	session *Session
	ttyFD   int
	vt      uint
}

func newDirectVTImpl(seat string) (impl, uint, bool, error) {
	if seat != "seat0" {
		return nil, 0, false, fmt.Errorf("direct VT backend only supports seat0")
	}

	ttyFD, err := unix.Open("/dev/tty0", unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, 0, false, fmt.Errorf("open /dev/tty0: %w", err)
	}

	vtNum, err := unix.IoctlGetInt(ttyFD, vtOpenQry)
	if err != nil {
		_ = unix.Close(ttyFD)
		return nil, 0, false, fmt.Errorf("VT_OPENQRY: %w", err)
	}

	d := &directVTImpl{ttyFD: ttyFD, vt: uint(vtNum)}
	wlog.Infof("session: acquired VT %d via direct ioctls", vtNum)
	return d, d.vt, true, nil
}

func (d *directVTImpl) name() string { return "direct-vt" }

func (d *directVTImpl) openDevice(path string) (int, bool, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, false, err
	}
	return fd, true, nil
}

func (d *directVTImpl) closeDevice(fd int) error {
	return unix.Close(fd)
}

func (d *directVTImpl) changeVT(n uint) bool {
	if d.ttyFD < 0 {
		return false
	}
	if err := unix.IoctlSetInt(d.ttyFD, vtActivate, int(n)); err != nil {
		wlog.Errorf("session: VT_ACTIVATE %d failed: %v", n, err)
		return false
	}
	_ = unix.IoctlSetInt(d.ttyFD, vtWaitActive, int(n))
	return true
}

func (d *directVTImpl) close() {
	if d.ttyFD >= 0 {
		_ = unix.Close(d.ttyFD)
		d.ttyFD = -1
	}
}
