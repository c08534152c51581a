package drm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeFlipEvent(userData uint64, sec, usec, seq uint32) []byte {
	buf := make([]byte, 28)
	binary.LittleEndian.PutUint32(buf[0:4], drmEventFlipComplete)
	binary.LittleEndian.PutUint32(buf[4:8], 28)
	binary.LittleEndian.PutUint64(buf[8:16], userData)
	binary.LittleEndian.PutUint32(buf[16:20], sec)
	binary.LittleEndian.PutUint32(buf[20:24], usec)
	binary.LittleEndian.PutUint32(buf[24:28], seq)
	return buf
}

func TestGPU_HandleEventsRoutesToRegisteredOutput(t *testing.T) {
	gpu := &GPU{}
	out := &Output{GPU: gpu, Connector: &Connector{State: Connected}, pageflipPending: true}
	id := gpu.registerPending(out)

	var frameFired int
	out.SignalFrame.On(func(*Output) { frameFired++ })

	buf := encodeFlipEvent(id, 10, 500000, 7)
	require.NoError(t, gpu.handleEvents(buf))

	assert.Equal(t, 1, frameFired)
	assert.False(t, out.pageflipPending)
	assert.Nil(t, gpu.pending[id], "entry removed once delivered")
}

func TestGPU_HandleEventsIgnoresUnknownUserData(t *testing.T) {
	gpu := &GPU{}
	buf := encodeFlipEvent(999, 0, 0, 0)
	assert.NoError(t, gpu.handleEvents(buf))
}

func TestGPU_HandleEventsIgnoresTailShorterThanHeader(t *testing.T) {
	gpu := &GPU{}
	buf := []byte{1, 2, 3} // shorter than a header
	assert.NoError(t, gpu.handleEvents(buf))
}

func TestGPU_HandleEventsRejectsOversizedLength(t *testing.T) {
	gpu := &GPU{}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], drmEventFlipComplete)
	binary.LittleEndian.PutUint32(buf[4:8], 1000) // claims far more bytes than present
	err := gpu.handleEvents(buf)
	assert.Error(t, err)
}

func TestGPU_HandleEventsProcessesBackToBackRecords(t *testing.T) {
	gpu := &GPU{}
	out1 := &Output{GPU: gpu, Connector: &Connector{State: Connected}, pageflipPending: true}
	out2 := &Output{GPU: gpu, Connector: &Connector{State: Connected}, pageflipPending: true}
	id1 := gpu.registerPending(out1)
	id2 := gpu.registerPending(out2)

	buf := append(encodeFlipEvent(id1, 1, 0, 1), encodeFlipEvent(id2, 2, 0, 2)...)
	require.NoError(t, gpu.handleEvents(buf))

	assert.False(t, out1.pageflipPending)
	assert.False(t, out2.pageflipPending)
}
