package session

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// statDevNumbers extracts the major/minor pair of a /dev/dri or /dev/input
// node from its stat_t.Rdev, the same major/minor split the kernel uses
// for dev_t (spec §3 "GPU ... dev_t").
func statDevNumbers(info os.FileInfo) (major, minor uint32, err error) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, fmt.Errorf("wlrcore/session: unsupported platform stat_t")
	}
	rdev := uint64(sys.Rdev)
	return uint32(unix.Major(rdev)), uint32(unix.Minor(rdev)), nil
}
