package trail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/threebody/internal/physics"
)

func TestRingFillsThenWraps(t *testing.T) {
	r := NewRing[int](3)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 3, r.Cap())

	_, ok := r.Last()
	assert.False(t, ok)

	r.Push(1)
	r.Push(2)
	assert.Equal(t, []int{1, 2}, r.Slice())

	r.Push(3)
	r.Push(4)
	r.Push(5)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Slice())
	assert.Equal(t, 3, r.At(0))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last)
}

func TestRingReset(t *testing.T) {
	r := NewRing[string](2)
	r.Push("a")
	r.Push("b")
	r.Push("c")
	r.Reset()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Slice())

	r.Push("d")
	assert.Equal(t, []string{"d"}, r.Slice())
}

func TestRingAtOutOfRange(t *testing.T) {
	r := NewRing[int](4)
	r.Push(1)
	assert.Panics(t, func() { r.At(1) })
	assert.Panics(t, func() { r.At(-1) })
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[int](0)
	r.Push(7)
	r.Push(8)
	assert.Equal(t, []int{8}, r.Slice())
}

func TestHistoryRecord(t *testing.T) {
	h := NewHistory(DefaultCapacity)
	st := physics.FigureEight()

	for i := 0; i < DefaultCapacity+10; i++ {
		h.Record(st)
	}

	assert.Equal(t, DefaultCapacity, h.Len())
	for i := 0; i < 3; i++ {
		last, ok := h.Body(i).Last()
		require.True(t, ok)
		x, y := st.Bodies[i].State.Pos()
		assert.Equal(t, Point{X: x, Y: y}, last)
	}

	h.Reset()
	assert.Equal(t, 0, h.Len())
}
