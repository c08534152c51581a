package backend

import (
	"context"
	"fmt"

	"github.com/wlrootsgo/wlrcore/drm"
	"github.com/wlrootsgo/wlrcore/session"
)

// drmBackend adapts a drm.GPU to the Backend contract, the direct-DRM
// leaf of the default Multi{DRM, Libinput} tree (spec §4.8).
type drmBackend struct {
	sess *session.Session
	path string

	gpu     *drm.GPU
	state   State
	signals Signals
}

func newDRMBackend(sess *session.Session, path string) *drmBackend {
	return &drmBackend{sess: sess, path: path}
}

func (b *drmBackend) Kind() Kind       { return KindDRM }
func (b *drmBackend) State() State     { return b.state }
func (b *drmBackend) Signals() *Signals { return &b.signals }

func (b *drmBackend) Init(ctx context.Context) error {
	gpu, err := drm.Open(b.sess, b.path)
	if err != nil {
		return fmt.Errorf("wlrcore/backend: drm: %w", err)
	}
	b.gpu = gpu
	gpu.SignalNewOutput.On(func(c *drm.Connector) {
		b.signals.NewOutput.Emit(drm.NewOutput(b.gpu, c))
	})

	// Session deactivation mid-commit is not an error (spec §4.5): pause
	// the GPU for the duration and resume on reactivation, rather than
	// tearing anything down.
	b.sess.SignalDeactivate.On(func(*session.Session) { gpu.Pause() })
	b.sess.SignalActivate.On(func(*session.Session) { gpu.Resume() })
	return nil
}

func (b *drmBackend) Start(ctx context.Context) error {
	// drm.Open bound the cold-plugged connectors before Init subscribed
	// to SignalNewOutput, so their outputs are reported here.
	if b.gpu != nil {
		for _, c := range b.gpu.Connectors {
			if c.CRTC != nil {
				b.signals.NewOutput.Emit(drm.NewOutput(b.gpu, c))
			}
		}
	}
	b.state = Started
	return nil
}

func (b *drmBackend) GPU() *drm.GPU { return b.gpu }

func (b *drmBackend) Destroy() {
	if b.state == Destroyed {
		return
	}
	if b.gpu != nil {
		_ = b.gpu.Close(b.sess)
	}
	b.state = Destroyed
	b.signals.Destroy.Emit(b)
}
