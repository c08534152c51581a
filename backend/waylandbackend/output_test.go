package waylandbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestOutput_ParentResizeSynthesizesCustomMode is scenario S2:
// resizing the parent window synthesizes a mode change with refresh
// 60000 mHz.
func TestOutput_ParentResizeSynthesizesCustomMode(t *testing.T) {
	o := newOutput(0)
	o.HandleParentResize(1280, 720)

	m := o.Mode()
	assert.Equal(t, uint32(1280), m.Width)
	assert.Equal(t, uint32(720), m.Height)
	assert.Equal(t, uint32(60000), m.RefreshMHz)
}

func TestOutput_CommitLifecycle(t *testing.T) {
	o := newOutput(0)
	var frames int
	o.SignalFrame.On(func(*Output) { frames++ })

	assert.Error(t, o.Commit(), "no buffer attached yet")

	o.AttachBuffer()
	assert.NoError(t, o.Commit())
	assert.Equal(t, 1, frames)
}
