package runtime

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_RunReturnsWhenNothingRegistered(t *testing.T) {
	rt := New()
	err := rt.Run(context.Background())
	require.NoError(t, err)
}

type fakePollable struct {
	fd       int
	dispatch func() error
}

func (f *fakePollable) Fd() int          { return f.fd }
func (f *fakePollable) Dispatch() error  { return f.dispatch() }

func TestRuntime_DispatchesOnReadablePipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	dispatched := make(chan struct{}, 1)
	rt := New()
	rt.Register(&fakePollable{
		fd: int(r.Fd()),
		dispatch: func() error {
			buf := make([]byte, 1)
			_, _ = r.Read(buf)
			dispatched <- struct{}{}
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-dispatched
		cancel()
	}()

	_, err = w.Write([]byte{1})
	require.NoError(t, err)

	err = rt.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRuntime_RegisterUnregister(t *testing.T) {
	rt := New()
	p := &fakePollable{fd: 99, dispatch: func() error { return nil }}
	rt.Register(p)
	assert.Contains(t, rt.pollable, 99)
	rt.Unregister(99)
	assert.NotContains(t, rt.pollable, 99)
}
