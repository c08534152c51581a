package evdevcodec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeEvent(sec, usec int64, typ, code uint16, val int32) []byte {
	buf := make([]byte, eventSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(sec))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(usec))
	binary.LittleEndian.PutUint16(buf[16:18], typ)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(val))
	return buf
}

func TestDecode_SingleKeyPress(t *testing.T) {
	buf := encodeEvent(100, 500000, EvKey, 30, 1) // KEY_A down
	events, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint16(EvKey), events[0].Type)
	assert.Equal(t, uint16(30), events[0].Code)
	assert.Equal(t, int32(1), events[0].Value)
	assert.Equal(t, int64(100_500_000), events[0].TimeUsec)
}

func TestDecode_MultipleEventsInOneBuffer(t *testing.T) {
	buf := append(encodeEvent(1, 0, EvRel, RelX, 5), encodeEvent(1, 10, EvSyn, 0, 0)...)
	events, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint16(EvRel), events[0].Type)
	assert.Equal(t, uint16(EvSyn), events[1].Type)
}

func TestDecode_RejectsShortBuffer(t *testing.T) {
	_, err := Decode(make([]byte, eventSize-1))
	assert.Error(t, err)
}

func TestDecode_TimestampsAreMonotonicForOrderedInput(t *testing.T) {
	buf := append(encodeEvent(1, 0, EvKey, 30, 1), encodeEvent(1, 500, EvKey, 30, 0)...)
	events, err := Decode(buf)
	require.NoError(t, err)
	assert.LessOrEqual(t, events[0].TimeUsec, events[1].TimeUsec)
}
