package backend

import (
	"fmt"
	"strings"

	"github.com/wlrootsgo/wlrcore/backend/headlessbackend"
	"github.com/wlrootsgo/wlrcore/backend/noopbackend"
	"github.com/wlrootsgo/wlrcore/backend/rdpbackend"
	"github.com/wlrootsgo/wlrcore/backend/waylandbackend"
	"github.com/wlrootsgo/wlrcore/backend/x11backend"
	"github.com/wlrootsgo/wlrcore/internal/wlog"
	"github.com/wlrootsgo/wlrcore/runtime"
	"github.com/wlrootsgo/wlrcore/session"
	"github.com/wlrootsgo/wlrcore/udev"
	"github.com/wlrootsgo/wlrcore/wlrerr"
)

// Autoselect builds the Backend tree the spec §4.8 decision table names,
// read off rt.Config (populated from the process environment):
//
//	WAYLAND_DISPLAY set  -> nested-Wayland
//	DISPLAY set          -> nested X11
//	WLR_BACKENDS set     -> the explicit comma-separated list
//	otherwise            -> Multi{DRM(first GPU), Libinput} atop a Session
//
// The returned Backend has not been Init'd or Started; the caller drives
// its lifecycle the same as any hand-built tree.
func Autoselect(rt *runtime.Runtime) (Backend, error) {
	cfg := rt.Config

	switch {
	case cfg.WaylandDisp != "":
		wlog.Infof("backend: auto-selected nested-wayland (WAYLAND_DISPLAY=%s)", cfg.WaylandDisp)
		return waylandbackend.New(cfg.WLOutputs), nil

	case cfg.X11Display != "":
		wlog.Infof("backend: auto-selected nested-x11 (DISPLAY=%s)", cfg.X11Display)
		return x11backend.New(cfg.X11Outputs), nil

	case len(cfg.Backends) > 0:
		wlog.Infof("backend: auto-selected explicit list %v (WLR_BACKENDS)", cfg.Backends)
		return buildExplicit(rt, cfg.Backends)

	default:
		wlog.Infof("backend: auto-selected drm+libinput over a session (seat=%s)", cfg.SeatName)
		return buildDRMLibinput(rt)
	}
}

// buildExplicit resolves each WLR_BACKENDS entry to a constructor and
// composes the results under a Multi, the same shape the default branch
// produces. Backends that need a Session are given a shared one.
func buildExplicit(rt *runtime.Runtime, names []string) (Backend, error) {
	var (
		children []Backend
		sess     *session.Session
	)

	needsSession := func() (*session.Session, error) {
		if sess != nil {
			return sess, nil
		}
		s, err := session.Open(rt)
		if err != nil {
			return nil, err
		}
		sess = s
		return s, nil
	}

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "headless":
			children = append(children, headlessbackend.New(rt.Config.WLOutputs))
		case "wayland":
			children = append(children, waylandbackend.New(rt.Config.WLOutputs))
		case "x11":
			children = append(children, x11backend.New(rt.Config.X11Outputs))
		case "noop":
			children = append(children, noopbackend.New())
		case "rdp":
			children = append(children, rdpbackend.New())
		case "drm":
			s, err := needsSession()
			if err != nil {
				return nil, fmt.Errorf("wlrcore/backend: drm backend: %w", err)
			}
			path, err := udev.FindGPU(rt.Config.SeatName)
			if err != nil {
				return nil, fmt.Errorf("wlrcore/backend: drm backend: %w", err)
			}
			children = append(children, newDRMBackend(s, path))
		case "libinput":
			s, err := needsSession()
			if err != nil {
				return nil, fmt.Errorf("wlrcore/backend: libinput backend: %w", err)
			}
			children = append(children, newLibinputBackend(s))
		default:
			return nil, fmt.Errorf("wlrcore/backend: %w: unknown backend tag %q", wlrerr.ErrInvalid, raw)
		}
	}

	if len(children) == 0 {
		return nil, fmt.Errorf("wlrcore/backend: %w: WLR_BACKENDS resolved to no backends", wlrerr.ErrInvalid)
	}
	return NewMulti(children...), nil
}

// buildDRMLibinput is the default tree: a Session arbiter backing one
// DRM GPU backend and one libinput backend, composed under a Multi.
func buildDRMLibinput(rt *runtime.Runtime) (Backend, error) {
	sess, err := session.Open(rt)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/backend: session: %w", err)
	}

	path, err := udev.FindGPU(rt.Config.SeatName)
	if err != nil {
		return nil, fmt.Errorf("wlrcore/backend: find gpu: %w", err)
	}

	drmB := newDRMBackend(sess, path)
	inputB := newLibinputBackend(sess)
	return NewMulti(drmB, inputB), nil
}
