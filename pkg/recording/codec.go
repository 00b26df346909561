// Package recording turns serialized archetypes into framed chunks and
// streams them to a sink.
//
// A recording is a magic marker followed by a sequence of frames. Each frame
// carries exactly one component batch:
//
//	[4-byte length (big-endian)][1-byte frame type][msgpack body]
//
// The body is a msgpack map holding the frame header (entity path, recording
// id, sequence number, descriptor, row count) and the batch payload: an
// Arrow IPC stream with a single column whose field metadata repeats the
// descriptor, zstd-compressed.
package recording

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/datalooms/loom/pkg/component"
)

const (
	// Magic identifies a recording and pins its format version.
	Magic = "LOOM0001"

	// MaxFrameSize bounds a single frame (64MB). A frame holds one
	// compressed column, so this is generous; anything larger indicates a
	// corrupt or hostile stream.
	MaxFrameSize = 64 << 20

	frameTypeBatch = 0x01
)

// Arrow field metadata keys carrying the descriptor inside the IPC payload.
const (
	metaArchetype = "loom.archetype"
	metaField     = "loom.field"
	metaComponent = "loom.component"
)

var sharedAllocator = memory.NewGoAllocator()

// FrameHeader describes one frame. It is msgpack-encoded on the wire, so
// renaming fields here is a format break.
type FrameHeader struct {
	Recording  string `msgpack:"recording"`
	EntityPath string `msgpack:"entity_path"`
	Sequence   uint64 `msgpack:"seq"`
	Archetype  string `msgpack:"archetype"`
	Field      string `msgpack:"field"`
	Component  string `msgpack:"component"`
	Rows       int    `msgpack:"rows"`
	RawSize    int    `msgpack:"raw_size"`
}

// Descriptor returns the header's descriptor triple.
func (h *FrameHeader) Descriptor() component.Descriptor {
	return component.Descriptor{Archetype: h.Archetype, Field: h.Field, Component: h.Component}
}

type frameBody struct {
	Header  FrameHeader `msgpack:"header"`
	Payload []byte      `msgpack:"payload"`
}

// Frame is one decoded frame: its header and the reconstructed batch.
type Frame struct {
	Header FrameHeader
	Batch  *component.Batch
}

// Encoder encodes component batches into frames.
type Encoder struct {
	zst *zstd.Encoder
}

// NewEncoder creates an Encoder. The zstd encoder is reused across frames;
// Encoders are not safe for concurrent use.
func NewEncoder() (*Encoder, error) {
	zst, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &Encoder{zst: zst}, nil
}

// EncodeBatch encodes one batch into a complete frame. The header's
// descriptor and row fields are filled from the batch.
func (e *Encoder) EncodeBatch(header FrameHeader, b *component.Batch) ([]byte, error) {
	desc := b.Descriptor()
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", desc, err)
	}
	header.Archetype = desc.Archetype
	header.Field = desc.Field
	header.Component = desc.Component
	header.Rows = b.Len()

	raw, err := e.batchToIPC(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", desc, err)
	}
	header.RawSize = len(raw)

	body, err := msgpack.Marshal(&frameBody{
		Header:  header,
		Payload: e.zst.EncodeAll(raw, make([]byte, 0, len(raw)/2)),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal frame body: %w", desc, err)
	}

	totalLen := 1 + len(body)
	if totalLen > MaxFrameSize {
		return nil, fmt.Errorf("%s: frame too large: %d bytes (max %d)", desc, totalLen, MaxFrameSize)
	}

	frame := make([]byte, 4+totalLen)
	binary.BigEndian.PutUint32(frame[:4], uint32(totalLen))
	frame[4] = frameTypeBatch
	copy(frame[5:], body)
	return frame, nil
}

// batchToIPC writes the batch as a single-column Arrow IPC stream whose
// field metadata carries the descriptor.
func (e *Encoder) batchToIPC(b *component.Batch) ([]byte, error) {
	desc := b.Descriptor()
	schema := arrow.NewSchema([]arrow.Field{{
		Name:     desc.Field,
		Type:     b.Data().DataType(),
		Nullable: true,
		Metadata: arrow.NewMetadata(
			[]string{metaArchetype, metaField, metaComponent},
			[]string{desc.Archetype, desc.Field, desc.Component},
		),
	}}, nil)

	record := array.NewRecord(schema, []arrow.Array{b.Data()}, int64(b.Len()))
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(sharedAllocator))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write IPC payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decoder reads frames back from a recording.
type Decoder struct {
	r   io.Reader
	zst *zstd.Decoder
}

// NewDecoder creates a Decoder and verifies the recording magic.
func NewDecoder(r io.Reader) (*Decoder, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read recording magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("not a loom recording: bad magic %q", magic)
	}
	zst, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxFrameSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Decoder{r: r, zst: zst}, nil
}

// Next returns the next frame, or io.EOF at a clean end of the recording.
// The caller owns the returned batch and should Release it when done.
func (d *Decoder) Next() (*Frame, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(d.r, lenBuf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length == 0 || length > MaxFrameSize {
		return nil, fmt.Errorf("invalid frame length: %d", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if data[0] != frameTypeBatch {
		return nil, fmt.Errorf("unknown frame type: 0x%02x", data[0])
	}

	var body frameBody
	if err := msgpack.Unmarshal(data[1:], &body); err != nil {
		return nil, fmt.Errorf("failed to unmarshal frame body: %w", err)
	}

	// RawSize comes straight off the wire; a corrupt or hostile header must
	// not drive the allocation below.
	if body.Header.RawSize < 0 || body.Header.RawSize > MaxFrameSize {
		return nil, fmt.Errorf("%s: invalid raw size: %d", body.Header.Descriptor(), body.Header.RawSize)
	}

	raw, err := d.zst.DecodeAll(body.Payload, make([]byte, 0, body.Header.RawSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decompress payload: %w", body.Header.Descriptor(), err)
	}

	batch, err := d.ipcToBatch(body.Header.Descriptor(), raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", body.Header.Descriptor(), err)
	}
	return &Frame{Header: body.Header, Batch: batch}, nil
}

// ipcToBatch reconstructs the batch from its single-column IPC payload.
func (d *Decoder) ipcToBatch(desc component.Descriptor, raw []byte) (*component.Batch, error) {
	reader, err := ipc.NewReader(bytes.NewReader(raw), ipc.WithAllocator(sharedAllocator))
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC payload: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read IPC payload: %w", err)
		}
		return nil, fmt.Errorf("IPC payload holds no record")
	}
	record := reader.Record()
	if record.NumCols() != 1 {
		return nil, fmt.Errorf("IPC payload holds %d columns, expected 1", record.NumCols())
	}
	return component.NewBatchFromArrow(desc, record.Column(0)), nil
}
