package component

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// sharedAllocator is a package-level allocator for all batch construction.
// memory.GoAllocator is documented as thread-safe for concurrent use, so a
// single shared instance avoids per-batch allocator overhead.
var sharedAllocator = memory.NewGoAllocator()

// Batch is one homogeneous component column: an Arrow array tagged with the
// descriptor that identifies it on the wire. A batch whose construction
// failed carries the error instead of data; the error surfaces when the
// owning archetype is serialized, so chained setters never need to return
// errors themselves.
type Batch struct {
	desc Descriptor
	data arrow.Array
	err  error
}

// Descriptor returns the batch's wire identity.
func (b *Batch) Descriptor() Descriptor { return b.desc }

// Data returns the underlying Arrow array. Nil if construction failed.
func (b *Batch) Data() arrow.Array { return b.data }

// Err returns the deferred construction error, if any.
func (b *Batch) Err() error { return b.err }

// Len returns the batch's row count. A failed batch reports 0.
func (b *Batch) Len() int {
	if b.data == nil {
		return 0
	}
	return b.data.Len()
}

// IsEmpty reports whether the batch holds zero rows. An empty batch is
// still present: it serializes as an explicit length-0 column, which is how
// cleared fields are distinguished from absent ones.
func (b *Batch) IsEmpty() bool { return b.Len() == 0 }

// Retain increments the refcount of the underlying array.
func (b *Batch) Retain() {
	if b.data != nil {
		b.data.Retain()
	}
}

// Release decrements the refcount of the underlying array.
func (b *Batch) Release() {
	if b.data != nil {
		b.data.Release()
	}
}

// Partition splits the batch into row-disjoint sub-batches whose lengths are
// given by lengths, in order. The sub-batches are zero-copy slices sharing
// the parent's buffers. The lengths must sum to the batch's row count.
func (b *Batch) Partition(lengths []int) ([]*Batch, error) {
	if b.err != nil {
		return nil, b.err
	}
	total := 0
	for _, n := range lengths {
		if n < 0 {
			return nil, fmt.Errorf("%s: negative partition length %d", b.desc, n)
		}
		total += n
	}
	if total != b.Len() {
		return nil, fmt.Errorf("%s: %w: lengths sum to %d, batch has %d rows",
			b.desc, ErrLengthMismatch, total, b.Len())
	}

	parts := make([]*Batch, len(lengths))
	offset := 0
	for i, n := range lengths {
		parts[i] = b.Window(offset, n)
		offset += n
	}
	return parts, nil
}

// Window returns a zero-copy sub-batch of length rows starting at offset.
// The sub-batch shares the parent's buffers.
func (b *Batch) Window(offset, length int) *Batch {
	if b.err != nil {
		return b
	}
	return &Batch{
		desc: b.desc,
		data: array.NewSlice(b.data, int64(offset), int64(offset+length)),
	}
}

// newBatch wraps a freshly built array. Ownership of the array transfers to
// the batch.
func newBatch(desc Descriptor, data arrow.Array) *Batch {
	return &Batch{desc: desc, data: data}
}

// NewBatchFromArrow wraps an existing Arrow array as a batch. The array is
// retained; the caller keeps its own reference.
func NewBatchFromArrow(desc Descriptor, data arrow.Array) *Batch {
	data.Retain()
	return &Batch{desc: desc, data: data}
}

// NewErrorBatch records a construction failure to be reported at
// serialization time.
func NewErrorBatch(desc Descriptor, err error) *Batch {
	return &Batch{desc: desc, err: err}
}

// NewFloat64Batch builds a batch of float64 values.
func NewFloat64Batch(desc Descriptor, values []float64) *Batch {
	bld := array.NewFloat64Builder(sharedAllocator)
	defer bld.Release()
	bld.AppendValues(values, nil)
	return newBatch(desc, bld.NewArray())
}

// NewFloat32Batch builds a batch of float32 values.
func NewFloat32Batch(desc Descriptor, values []float32) *Batch {
	bld := array.NewFloat32Builder(sharedAllocator)
	defer bld.Release()
	bld.AppendValues(values, nil)
	return newBatch(desc, bld.NewArray())
}

// NewUint32Batch builds a batch of uint32 values.
func NewUint32Batch(desc Descriptor, values []uint32) *Batch {
	bld := array.NewUint32Builder(sharedAllocator)
	defer bld.Release()
	bld.AppendValues(values, nil)
	return newBatch(desc, bld.NewArray())
}

// NewStringBatch builds a batch of UTF-8 strings.
func NewStringBatch(desc Descriptor, values []string) *Batch {
	bld := array.NewStringBuilder(sharedAllocator)
	defer bld.Release()
	bld.AppendValues(values, nil)
	return newBatch(desc, bld.NewArray())
}

// NewBoolBatch builds a batch of booleans.
func NewBoolBatch(desc Descriptor, values []bool) *Batch {
	bld := array.NewBooleanBuilder(sharedAllocator)
	defer bld.Release()
	bld.AppendValues(values, nil)
	return newBatch(desc, bld.NewArray())
}

// NewVec3Batch builds a batch of 3D vectors from a flat coordinate slice
// laid out x0,y0,z0,x1,y1,z1,... The slice length must be a multiple of 3;
// a remainder is a type-encoding failure carried in the returned batch.
func NewVec3Batch(desc Descriptor, flat []float32) *Batch {
	if len(flat)%3 != 0 {
		return NewErrorBatch(desc, fmt.Errorf(
			"flat coordinate slice has %d values, not a multiple of 3", len(flat)))
	}
	bld := array.NewFixedSizeListBuilder(sharedAllocator, 3, arrow.PrimitiveTypes.Float32)
	defer bld.Release()
	values := bld.ValueBuilder().(*array.Float32Builder)
	for i := 0; i < len(flat); i += 3 {
		bld.Append(true)
		values.AppendValues(flat[i:i+3], nil)
	}
	return newBatch(desc, bld.NewArray())
}

// NewIndicatorBatch builds the zero-width marker batch that tags a row group
// with its originating archetype. It carries no values, only a row count and
// a component type name.
func NewIndicatorBatch(desc Descriptor, rows int) *Batch {
	return newBatch(desc, array.NewNull(rows))
}
