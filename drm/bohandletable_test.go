package drm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBOHandleTable_RefcountLaw is testable property 1 (spec §8): for
// every sequence of ref/unref ending balanced, the table returns 0 on the
// final unref and never reaches 0 while refs remain outstanding.
func TestBOHandleTable_RefcountLaw(t *testing.T) {
	seeds := []int64{1, 2, 3, 42, 1337}
	for _, seed := range seeds {
		r := rand.New(rand.NewSource(seed))
		var table BOHandleTable
		const handle = uint32(7)

		depth := 0
		ops := 40 + r.Intn(40)
		for i := 0; i < ops || depth > 0; i++ {
			if depth == 0 || (i < ops && r.Intn(2) == 0) {
				count := table.Ref(handle)
				depth++
				require.Equal(t, uint32(depth), count)
			} else {
				count := table.Unref(handle)
				depth--
				require.Equal(t, uint32(depth), count)
				if depth > 0 {
					require.NotZero(t, count)
				}
			}
		}
		assert.Equal(t, uint32(0), table.RefCount(handle))
	}
}

func TestBOHandleTable_GrowsInBlocksOf512(t *testing.T) {
	var table BOHandleTable
	table.Ref(0)
	assert.Len(t, table.refs, 512)

	table.Ref(511)
	assert.Len(t, table.refs, 512)

	table.Ref(512)
	assert.Len(t, table.refs, 1024)
}

func TestBOHandleTable_ZeroedHoles(t *testing.T) {
	var table BOHandleTable
	table.Ref(600)
	assert.Equal(t, uint32(0), table.RefCount(50))
	assert.Equal(t, uint32(1), table.RefCount(600))
}

func TestBOHandleTable_UnrefBelowZeroPanics(t *testing.T) {
	var table BOHandleTable
	assert.Panics(t, func() { table.Unref(5) })
}

func TestBOHandleTable_MultipleHandlesIndependent(t *testing.T) {
	var table BOHandleTable
	table.Ref(1)
	table.Ref(1)
	table.Ref(2)
	assert.Equal(t, uint32(2), table.RefCount(1))
	assert.Equal(t, uint32(1), table.RefCount(2))
	assert.Equal(t, uint32(1), table.Unref(1))
	assert.Equal(t, uint32(1), table.RefCount(1))
}
