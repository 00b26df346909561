package component

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor(field string) Descriptor {
	return Descriptor{
		Archetype: "loom.archetypes.Test",
		Field:     field,
		Component: "loom.components.Test",
	}
}

func TestDescriptorString(t *testing.T) {
	d := Descriptor{Archetype: "a", Field: "f", Component: "c"}
	assert.Equal(t, "a:f:c", d.String())
}

func TestNewFloat64Batch(t *testing.T) {
	b := NewFloat64Batch(testDescriptor("values"), []float64{1.5, 2.5, 3.5})
	defer b.Release()

	require.NoError(t, b.Err())
	assert.Equal(t, 3, b.Len())
	assert.False(t, b.IsEmpty())

	arr := b.Data().(*array.Float64)
	assert.Equal(t, 1.5, arr.Value(0))
	assert.Equal(t, 3.5, arr.Value(2))
}

func TestNewStringBatch_Empty(t *testing.T) {
	b := NewStringBatch(testDescriptor("labels"), nil)
	defer b.Release()

	require.NoError(t, b.Err())
	assert.Equal(t, 0, b.Len())
	assert.True(t, b.IsEmpty())
	// An empty batch is still present: it has data, just zero rows.
	assert.NotNil(t, b.Data())
}

func TestNewVec3Batch(t *testing.T) {
	b := NewVec3Batch(testDescriptor("positions"), []float32{1, 2, 3, 4, 5, 6})
	defer b.Release()

	require.NoError(t, b.Err())
	assert.Equal(t, 2, b.Len())

	arr := b.Data().(*array.FixedSizeList)
	values := arr.ListValues().(*array.Float32)
	assert.Equal(t, float32(1), values.Value(0))
	assert.Equal(t, float32(6), values.Value(5))
}

func TestNewVec3Batch_RemainderIsDeferredError(t *testing.T) {
	b := NewVec3Batch(testDescriptor("positions"), []float32{1, 2, 3, 4})

	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "multiple of 3")
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Data())
}

func TestNewPosition3DBatch(t *testing.T) {
	b := NewPosition3DBatch(testDescriptor("positions"), []Position3D{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 6},
	})
	defer b.Release()

	require.NoError(t, b.Err())
	assert.Equal(t, 2, b.Len())
}

func TestNewColorBatch(t *testing.T) {
	b := NewColorBatch(testDescriptor("colors"), []Color{RGBA(255, 0, 0, 255)})
	defer b.Release()

	require.NoError(t, b.Err())
	arr := b.Data().(*array.Uint32)
	assert.Equal(t, uint32(0xFF0000FF), arr.Value(0))
}

func TestNewIndicatorBatch(t *testing.T) {
	b := NewIndicatorBatch(testDescriptor("indicator"), 5)
	defer b.Release()

	require.NoError(t, b.Err())
	assert.Equal(t, 5, b.Len())
	// Zero-width: the null type carries no values, only a row count.
	_, ok := b.Data().(*array.Null)
	assert.True(t, ok)
}

func TestPartition(t *testing.T) {
	b := NewFloat64Batch(testDescriptor("values"), []float64{1, 2, 3, 4, 5, 6})
	defer b.Release()

	parts, err := b.Partition([]int{2, 1, 3})
	require.NoError(t, err)
	require.Len(t, parts, 3)

	assert.Equal(t, 2, parts[0].Len())
	assert.Equal(t, 1, parts[1].Len())
	assert.Equal(t, 3, parts[2].Len())

	// Sub-batches keep the parent's descriptor and are row-disjoint.
	assert.Equal(t, b.Descriptor(), parts[1].Descriptor())
	assert.Equal(t, 3.0, parts[1].Data().(*array.Float64).Value(0))
	assert.Equal(t, 4.0, parts[2].Data().(*array.Float64).Value(0))
}

func TestPartition_LengthMismatch(t *testing.T) {
	b := NewFloat64Batch(testDescriptor("values"), []float64{1, 2, 3})
	defer b.Release()

	_, err := b.Partition([]int{2, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPartition_NegativeLength(t *testing.T) {
	b := NewFloat64Batch(testDescriptor("values"), []float64{1, 2, 3})
	defer b.Release()

	_, err := b.Partition([]int{4, -1})
	require.Error(t, err)
}

func TestPartition_EmptyBatch(t *testing.T) {
	b := NewFloat64Batch(testDescriptor("values"), nil)
	defer b.Release()

	parts, err := b.Partition(nil)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestWindow(t *testing.T) {
	b := NewStringBatch(testDescriptor("labels"), []string{"a", "b", "c", "d"})
	defer b.Release()

	w := b.Window(1, 2)
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, "b", w.Data().(*array.String).Value(0))
	assert.Equal(t, "c", w.Data().(*array.String).Value(1))
}
