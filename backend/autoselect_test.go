package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlrootsgo/wlrcore/runtime"
)

func TestAutoselect_WaylandDisplaySelectsNestedWayland(t *testing.T) {
	rt := &runtime.Runtime{Config: runtime.Config{WaylandDisp: "wayland-0", WLOutputs: 2}}

	b, err := Autoselect(rt)
	require.NoError(t, err)
	assert.Equal(t, KindWayland, b.Kind())
}

func TestAutoselect_DisplaySelectsNestedX11WhenWaylandDisplayUnset(t *testing.T) {
	rt := &runtime.Runtime{Config: runtime.Config{X11Display: ":0", X11Outputs: 1}}

	b, err := Autoselect(rt)
	require.NoError(t, err)
	assert.Equal(t, KindX11, b.Kind())
}

func TestAutoselect_WaylandDisplayTakesPriorityOverDisplay(t *testing.T) {
	rt := &runtime.Runtime{Config: runtime.Config{WaylandDisp: "wayland-0", X11Display: ":0"}}

	b, err := Autoselect(rt)
	require.NoError(t, err)
	assert.Equal(t, KindWayland, b.Kind())
}

func TestAutoselect_ExplicitListComposesNamedBackendsUnderMulti(t *testing.T) {
	rt := &runtime.Runtime{Config: runtime.Config{Backends: []string{"headless", "noop"}, WLOutputs: 1}}

	b, err := Autoselect(rt)
	require.NoError(t, err)
	multi, ok := b.(*Multi)
	require.True(t, ok)
	require.Len(t, multi.Children(), 2)
	assert.Equal(t, KindHeadless, multi.Children()[0].Kind())
	assert.Equal(t, KindNoop, multi.Children()[1].Kind())
}

func TestAutoselect_ExplicitListRejectsUnknownTag(t *testing.T) {
	rt := &runtime.Runtime{Config: runtime.Config{Backends: []string{"bogus"}}}

	_, err := Autoselect(rt)
	assert.Error(t, err)
}

func TestAutoselect_SingleExplicitEntryComposesUnderMulti(t *testing.T) {
	rt := &runtime.Runtime{Config: runtime.Config{Backends: []string{"rdp"}}}

	b, err := Autoselect(rt)
	require.NoError(t, err)
	multi := b.(*Multi)
	require.Len(t, multi.Children(), 1)
	assert.Equal(t, KindRDP, multi.Children()[0].Kind())
}
