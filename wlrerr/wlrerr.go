// Package wlrerr defines the error taxonomy shared by every wlrcore
// subsystem (spec §7). Callers branch on kind with errors.Is, never on
// concrete types.
package wlrerr

import "errors"

var (
	// ErrUnavailable means the requested capability is not present on this
	// device (no KMS, no atomic support, a libinput device lacking a
	// capability). Returned from factory/constructor paths.
	ErrUnavailable = errors.New("wlrcore: capability unavailable")

	// ErrRevoked means a previously valid FD lost access because of a VT
	// switch or unplug. Not an error from the session's point of view;
	// observers must drop derived state when they see it.
	ErrRevoked = errors.New("wlrcore: device revoked")

	// ErrTransient means the kernel returned EAGAIN/EBUSY. Retried
	// internally where possible, surfaced as Retry to the caller
	// otherwise.
	ErrTransient = errors.New("wlrcore: transient kernel error")

	// ErrInvalid means an atomic TEST_ONLY commit rejected the proposed
	// configuration. Pending state must be rolled back by the caller.
	ErrInvalid = errors.New("wlrcore: invalid configuration")

	// ErrFatal means an unrecoverable error (allocation failure, kernel
	// error, libinput dispatch failure). The backend that returns it must
	// tear itself down and emit destroy.
	ErrFatal = errors.New("wlrcore: fatal backend error")
)
