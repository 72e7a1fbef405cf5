package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Index bookkeeping tests only; allocation and upload need a live GL
// context and are covered by running the binary.

func testPair() *TargetPair {
	return &TargetPair{
		tex:    [2]uint32{10, 20},
		in:     0,
		out:    1,
		width:  640,
		height: 360,
	}
}

func TestTargetPairSwapIsAnInvolution(t *testing.T) {
	p := testPair()

	before := p.Input()
	p.Swap()
	assert.NotEqual(t, before, p.Input(), "swap must change the input buffer")
	p.Swap()
	assert.Equal(t, before, p.Input(), "two swaps restore the original wiring")
}

func TestTargetPairInputTracksIndex(t *testing.T) {
	p := testPair()

	id, ready := p.Input().Handle()
	assert.True(t, ready)
	assert.Equal(t, uint32(10), id)

	p.Swap()
	id, _ = p.Input().Handle()
	assert.Equal(t, uint32(20), id)
}

func TestTargetPairSize(t *testing.T) {
	p := testPair()
	w, h := p.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)
}

func TestTargetPairResizeSameSizeIsANoop(t *testing.T) {
	// Would touch GL if it reallocated; the early return keeps this safe
	// to call without a context.
	p := testPair()
	p.Resize(640, 360)
	w, h := p.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)
}
