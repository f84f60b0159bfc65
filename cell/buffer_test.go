package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_SetGet_InBounds(t *testing.T) {
	b := NewBuffer(10, 5)
	c := NewRuneCell('x', ColorRed, ColorBlack, Bold)
	b.Set(3, 2, c)
	got := b.Get(3, 2)
	assert.True(t, got.Equals(c))
}

func TestBuffer_SetGet_OutOfBounds_NoOp(t *testing.T) {
	b := NewBuffer(10, 5)
	before := b.Clone()
	b.Set(-1, 0, NewRuneCell('x', Color{}, Color{}, 0))
	b.Set(100, 0, NewRuneCell('x', Color{}, Color{}, 0))
	b.Set(0, -1, NewRuneCell('x', Color{}, Color{}, 0))
	b.Set(0, 100, NewRuneCell('x', Color{}, Color{}, 0))
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			assert.True(t, b.Get(x, y).Equals(before.Get(x, y)))
		}
	}
	assert.Equal(t, Empty(), b.Get(-1, 0))
	assert.Equal(t, Empty(), b.Get(100, 0))
}

func TestBuffer_WideCell_Atomicity(t *testing.T) {
	b := NewBuffer(10, 1)
	wide := Cell{Rune: '中', Width: 2, Fg: ColorWhite}
	b.Set(2, 0, wide)

	primary := b.Get(2, 0)
	cont := b.Get(3, 0)
	require.Equal(t, uint8(2), primary.Width)
	require.True(t, cont.IsContinuation())

	// Overwriting the primary half clears the stale continuation.
	b.Set(2, 0, NewRuneCell('a', Color{}, Color{}, 0))
	assert.False(t, b.Get(3, 0).IsContinuation())

	// Writing into what was the continuation half of a (now gone) wide pair
	// must not resurrect a broken pair.
	b.Set(2, 0, wide)
	b.Set(3, 0, NewRuneCell('b', Color{}, Color{}, 0))
	assert.Equal(t, Empty(), b.Get(2, 0))
	assert.Equal(t, 'b', b.Get(3, 0).Rune)
}

func TestBuffer_Resize_PreservesOverlap(t *testing.T) {
	b := NewBuffer(4, 4)
	b.Set(1, 1, NewRuneCell('z', ColorGreen, Color{}, 0))
	b.Resize(6, 2)
	assert.Equal(t, 'z', b.Get(1, 1).Rune)
	assert.Equal(t, Empty(), b.Get(5, 1))

	b2 := NewBuffer(4, 4)
	b2.Set(1, 1, NewRuneCell('z', ColorGreen, Color{}, 0))
	b2.Resize(2, 2)
	assert.Equal(t, 'z', b2.Get(1, 1).Rune) // (1,1) lies inside the 2x2 overlap -> preserved
}

func TestBuffer_FillRow(t *testing.T) {
	b := NewBuffer(5, 2)
	c := NewRuneCell('#', ColorWhite, ColorBlack, 0)
	b.FillRow(0, c)
	for x := 0; x < 5; x++ {
		assert.Equal(t, '#', b.Get(x, 0).Rune)
	}
	assert.Equal(t, Empty(), b.Get(0, 1))
}

func TestBuffer_SetString_WritesGraphemeClusters(t *testing.T) {
	b := NewBuffer(20, 1)
	n := b.SetString(10, 5%1, "Hello", ColorWhite, ColorBlack, 0)
	assert.Equal(t, 5, n)
	for i, r := range "Hello" {
		assert.Equal(t, r, b.Get(10+i, 0).Rune)
	}
}

func TestBuffer_Clone_IsIndependent(t *testing.T) {
	b := NewBuffer(3, 3)
	clone := b.Clone()
	b.Set(0, 0, NewRuneCell('x', Color{}, Color{}, 0))
	assert.NotEqual(t, b.Get(0, 0).Rune, clone.Get(0, 0).Rune)
}
