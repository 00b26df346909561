package recording

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/datalooms/loom/pkg/component"
)

func encodeFrames(t *testing.T, batches ...*component.Batch) []byte {
	t.Helper()
	enc, err := NewEncoder()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString(Magic)
	for i, b := range batches {
		frame, err := enc.EncodeBatch(FrameHeader{
			Recording:  "test-recording",
			EntityPath: "world/points",
			Sequence:   uint64(i),
		}, b)
		require.NoError(t, err)
		buf.Write(frame)
	}
	return buf.Bytes()
}

func TestCodec_RoundTrip(t *testing.T) {
	desc := component.Descriptor{
		Archetype: "loom.archetypes.Scalars",
		Field:     "scalars",
		Component: "loom.components.Scalar",
	}
	src := component.NewFloat64Batch(desc, []float64{1.5, -2.5, 1e9})
	defer src.Release()

	dec, err := NewDecoder(bytes.NewReader(encodeFrames(t, src)))
	require.NoError(t, err)

	frame, err := dec.Next()
	require.NoError(t, err)
	defer frame.Batch.Release()

	assert.Equal(t, "test-recording", frame.Header.Recording)
	assert.Equal(t, "world/points", frame.Header.EntityPath)
	assert.Equal(t, uint64(0), frame.Header.Sequence)
	assert.Equal(t, desc, frame.Header.Descriptor())
	assert.Equal(t, desc, frame.Batch.Descriptor())
	assert.Equal(t, 3, frame.Header.Rows)

	require.True(t, array.Equal(src.Data(), frame.Batch.Data()))

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestCodec_RoundTrip_Vec3(t *testing.T) {
	desc := component.Descriptor{
		Archetype: "loom.archetypes.Points3D",
		Field:     "positions",
		Component: "loom.components.Position3D",
	}
	src := component.NewVec3Batch(desc, []float32{1, 2, 3, 4, 5, 6})
	defer src.Release()

	dec, err := NewDecoder(bytes.NewReader(encodeFrames(t, src)))
	require.NoError(t, err)

	frame, err := dec.Next()
	require.NoError(t, err)
	defer frame.Batch.Release()

	assert.Equal(t, 2, frame.Batch.Len())
	assert.True(t, array.Equal(src.Data(), frame.Batch.Data()))
}

func TestCodec_RoundTrip_Indicator(t *testing.T) {
	desc := component.Descriptor{
		Archetype: "loom.archetypes.Points3D",
		Field:     "indicator",
		Component: "loom.components.Points3DIndicator",
	}
	src := component.NewIndicatorBatch(desc, 7)
	defer src.Release()

	dec, err := NewDecoder(bytes.NewReader(encodeFrames(t, src)))
	require.NoError(t, err)

	frame, err := dec.Next()
	require.NoError(t, err)
	defer frame.Batch.Release()

	assert.Equal(t, 7, frame.Batch.Len())
	_, ok := frame.Batch.Data().(*array.Null)
	assert.True(t, ok)
}

func TestCodec_MultipleFrames(t *testing.T) {
	d1 := component.Descriptor{Archetype: "a", Field: "x", Component: "cx"}
	d2 := component.Descriptor{Archetype: "a", Field: "y", Component: "cy"}
	b1 := component.NewStringBatch(d1, []string{"one", "two"})
	b2 := component.NewBoolBatch(d2, []bool{true})
	defer b1.Release()
	defer b2.Release()

	dec, err := NewDecoder(bytes.NewReader(encodeFrames(t, b1, b2)))
	require.NoError(t, err)

	var fields []string
	for {
		frame, err := dec.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		fields = append(fields, frame.Header.Field)
		frame.Batch.Release()
	}
	assert.Equal(t, []string{"x", "y"}, fields)
}

func TestDecoder_BadMagic(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte("NOTALOOM")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

// frameWithRawSize hand-builds a recording whose single frame declares the
// given raw size in its header.
func frameWithRawSize(t *testing.T, rawSize int) []byte {
	t.Helper()
	body, err := msgpack.Marshal(&frameBody{
		Header: FrameHeader{
			Recording:  "test-recording",
			EntityPath: "world/points",
			Archetype:  "a",
			Field:      "f",
			Component:  "c",
			RawSize:    rawSize,
		},
		Payload: []byte{0x01, 0x02, 0x03},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString(Magic)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(1+len(body)))
	buf.Write(lenBuf[:])
	buf.WriteByte(frameTypeBatch)
	buf.Write(body)
	return buf.Bytes()
}

func TestDecoder_CorruptRawSize(t *testing.T) {
	// A corrupt or hostile header must produce an error, never drive an
	// allocation or panic.
	tests := []struct {
		name    string
		rawSize int
	}{
		{"negative", -1},
		{"huge", MaxFrameSize + 1},
		{"absurd", 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewDecoder(bytes.NewReader(frameWithRawSize(t, tt.rawSize)))
			require.NoError(t, err)

			_, err = dec.Next()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid raw size")
		})
	}
}

func TestDecoder_TruncatedFrame(t *testing.T) {
	desc := component.Descriptor{Archetype: "a", Field: "f", Component: "c"}
	b := component.NewFloat64Batch(desc, []float64{1})
	defer b.Release()

	data := encodeFrames(t, b)
	dec, err := NewDecoder(bytes.NewReader(data[:len(data)-3]))
	require.NoError(t, err)

	_, err = dec.Next()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
