package udev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlrootsgo/wlrcore/wlrsignal"
)

func TestParseUevent_DRMChange(t *testing.T) {
	raw := "change@/devices/pci0000:00/card0\x00ACTION=change\x00SUBSYSTEM=drm\x00DEVNAME=dri/card0\x00MAJOR=226\x00MINOR=0\x00"
	ev, ok := parseUevent([]byte(raw))
	require.True(t, ok)
	assert.Equal(t, "change", ev.Action)
	assert.Equal(t, "drm", ev.Subsystem)
	assert.Equal(t, uint32(226), ev.Major)
	assert.Equal(t, uint32(0), ev.Minor)
}

func TestParseUevent_RejectsMalformedHeader(t *testing.T) {
	_, ok := parseUevent([]byte("no-at-sign-here\x00SUBSYSTEM=drm\x00"))
	assert.False(t, ok)
}

func TestParseUevent_RejectsMissingSubsystem(t *testing.T) {
	_, ok := parseUevent([]byte("add@/devices/x\x00MAJOR=1\x00"))
	assert.False(t, ok)
}

func newTestMonitor() *Monitor {
	return &Monitor{fd: -1, listeners: make(map[uint64]*wlrsignal.Emitter[Event])}
}

func TestMonitor_SignalAddRoutesOnlyMatchingDevT(t *testing.T) {
	m := newTestMonitor()

	var gotCard0, gotCard1 int
	m.SignalAdd(226, 0, func(Event) { gotCard0++ })
	m.SignalAdd(226, 1, func(Event) { gotCard1++ })

	m.route(Event{Action: "change", Subsystem: "drm", Major: 226, Minor: 0})

	assert.Equal(t, 1, gotCard0)
	assert.Equal(t, 0, gotCard1)
}

func TestMonitor_SignalRemoveStopsDelivery(t *testing.T) {
	m := newTestMonitor()
	var calls int
	id := m.SignalAdd(226, 0, func(Event) { calls++ })
	m.SignalRemove(226, 0, id)
	m.route(Event{Major: 226, Minor: 0})
	assert.Equal(t, 0, calls)
}
