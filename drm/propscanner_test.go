package drm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPropertyScanner_Permutations is testable property 2 (spec §8): for
// every permutation of kernel-reported property orderings, with any
// subset of the known names present, the scanner fills exactly the slots
// for names present and leaves the others at zero.
func TestPropertyScanner_Permutations(t *testing.T) {
	names := []string{"CRTC_H", "CRTC_ID", "CRTC_W", "FB_ID", "SRC_X", "type"}

	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		subsetSize := r.Intn(len(names) + 1)
		perm := r.Perm(len(names))[:subsetSize]

		reported := make([]kernelProp, 0, subsetSize)
		want := make(map[string]uint32)
		for _, idx := range perm {
			name := names[idx]
			id := uint32(1000 + idx)
			reported = append(reported, kernelProp{Name: name, ID: id})
			want[name] = id
		}
		// Shuffle reported order independently of which subset was chosen.
		r.Shuffle(len(reported), func(i, j int) { reported[i], reported[j] = reported[j], reported[i] })

		ps := newPropSet(names...)
		ps.scan(reported)

		for _, n := range names {
			got := ps.id(n)
			if expect, present := want[n]; present {
				assert.Equalf(t, expect, got, "trial %d name %s", trial, n)
			} else {
				assert.Equalf(t, uint32(0), got, "trial %d name %s should be unset", trial, n)
			}
		}
	}
}

func TestPropertyScanner_UnknownReportedNameIgnored(t *testing.T) {
	ps := newPropSet("CRTC_ID", "FB_ID")
	ps.scan([]kernelProp{{Name: "SOME_VENDOR_PROP", ID: 99}, {Name: "FB_ID", ID: 5}})
	assert.Equal(t, uint32(0), ps.id("CRTC_ID"))
	assert.Equal(t, uint32(5), ps.id("FB_ID"))
}

func TestPropertyScanner_RescanClearsStalePrevious(t *testing.T) {
	ps := newPropSet("CRTC_ID")
	ps.scan([]kernelProp{{Name: "CRTC_ID", ID: 42}})
	assert.Equal(t, uint32(42), ps.id("CRTC_ID"))

	ps.scan(nil)
	assert.Equal(t, uint32(0), ps.id("CRTC_ID"))
}

func TestConnectorCRTCPlanePropNamesAreSorted(t *testing.T) {
	for _, names := range [][]string{connectorPropNames, crtcPropNames, planePropNames} {
		ps := newPropSet(names...)
		for i := 1; i < len(ps.slots); i++ {
			assert.Lessf(t, ps.slots[i-1].Name, ps.slots[i].Name, "descriptor table must be sorted")
		}
	}
}
