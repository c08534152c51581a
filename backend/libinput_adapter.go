package backend

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wlrootsgo/wlrcore/internal/wlog"
	"github.com/wlrootsgo/wlrcore/libinput"
	"github.com/wlrootsgo/wlrcore/session"
)

// libinputBackend adapts a libinput.Context to the Backend contract,
// the input leaf of the default Multi{DRM, Libinput} tree (spec §4.8).
type libinputBackend struct {
	sess *session.Session

	ctx     *libinput.Context
	state   State
	signals Signals
}

func newLibinputBackend(sess *session.Session) *libinputBackend {
	return &libinputBackend{sess: sess}
}

func (b *libinputBackend) Kind() Kind        { return KindLibinput }
func (b *libinputBackend) State() State      { return b.state }
func (b *libinputBackend) Signals() *Signals { return &b.signals }

func (b *libinputBackend) Init(ctx context.Context) error {
	b.ctx = libinput.NewContext(b.sess)
	b.ctx.SignalNewDevice.On(func(d *libinput.InputDevice) {
		b.signals.NewInput.Emit(d)
	})

	b.sess.SignalDeactivate.On(func(*session.Session) { b.ctx.Suspend() })
	b.sess.SignalActivate.On(func(*session.Session) { b.ctx.Resume() })
	return nil
}

// Start enumerates /dev/input/event* and opens each node through the
// session, matching waymon's own device-discovery sweep.
func (b *libinputBackend) Start(ctx context.Context) error {
	paths, err := enumerateEventNodes()
	if err != nil {
		wlog.Warnf("libinputbackend: enumerate event nodes: %v", err)
	}
	for _, p := range paths {
		if _, err := b.ctx.AddDevice(p); err != nil {
			wlog.Warnf("libinputbackend: add device %s: %v", p, err)
		}
	}
	b.state = Started
	return nil
}

func (b *libinputBackend) Context() *libinput.Context { return b.ctx }

func (b *libinputBackend) Destroy() {
	if b.state == Destroyed {
		return
	}
	b.state = Destroyed
	b.signals.Destroy.Emit(b)
}

func enumerateEventNodes() ([]string, error) {
	const inputDir = "/dev/input"
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var nodes []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") {
			nodes = append(nodes, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(nodes)
	return nodes, nil
}
