package drm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPlane(t *testing.T) {
	assert.Equal(t, PlanePrimary, classifyPlane(planeTypePrimary))
	assert.Equal(t, PlaneCursor, classifyPlane(planeTypeCursor))
	assert.Equal(t, PlaneOverlay, classifyPlane(planeTypeOverlay))
	assert.Equal(t, PlaneOverlay, classifyPlane(99)) // unknown defaults to overlay, never primary/cursor
}

func newTestGPU(numCRTCs int) *GPU {
	g := &GPU{}
	for i := 0; i < numCRTCs; i++ {
		g.CRTCs = append(g.CRTCs, &CRTC{ID: uint32(i + 1), props: newPropSet(crtcPropNames...)})
	}
	return g
}

func TestGPU_FreeCRTCForRespectsPossibleMaskAndTakenBits(t *testing.T) {
	g := newTestGPU(3) // CRTC bits 0,1,2

	// Connector can only use CRTC 1 (bit 1).
	c := g.freeCRTCFor(0b010)
	assert.Same(t, g.CRTCs[1], c)

	g.takeCRTC(c)
	assert.Equal(t, uint32(0b010), g.TakenCRTCs())

	// Now nothing free for a connector restricted to CRTC 1 only.
	assert.Nil(t, g.freeCRTCFor(0b010))

	// But CRTC 0 or 2 is still free.
	c2 := g.freeCRTCFor(0b101)
	assert.Contains(t, []*CRTC{g.CRTCs[0], g.CRTCs[2]}, c2)
}

func TestGPU_ReleaseCRTCFreesTakenBit(t *testing.T) {
	g := newTestGPU(2)
	c := g.freeCRTCFor(0b11)
	g.takeCRTC(c)
	assert.NotZero(t, g.TakenCRTCs())

	g.releaseCRTC(c)
	assert.Equal(t, uint32(0), g.TakenCRTCs())
	// Same CRTC can be taken again after release.
	assert.Same(t, c, g.freeCRTCFor(0b11))
}

func TestGPU_BindPlanesToCRTCAssignsPrimaryAndCursorOnce(t *testing.T) {
	g := newTestGPU(1)
	primary := &Plane{ID: 10, Type: PlanePrimary, PossibleCRTCs: 0b1}
	cursor := &Plane{ID: 11, Type: PlaneCursor, PossibleCRTCs: 0b1}
	overlay := &Plane{ID: 12, Type: PlaneOverlay, PossibleCRTCs: 0b1}
	otherPrimary := &Plane{ID: 13, Type: PlanePrimary, PossibleCRTCs: 0b1}
	g.Planes = []*Plane{primary, cursor, overlay, otherPrimary}

	c := g.CRTCs[0]
	g.bindPlanesToCRTC(c, 0)

	assert.Same(t, primary, c.Primary, "first matching PRIMARY plane wins")
	assert.Same(t, cursor, c.Cursor)
	assert.Equal(t, []*Plane{overlay}, c.Overlays)
}
