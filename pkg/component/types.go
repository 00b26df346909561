package component

import "errors"

// ErrLengthMismatch is returned when partition lengths do not sum to a
// batch's row count.
var ErrLengthMismatch = errors.New("partition lengths do not sum to row count")

// Position3D is a point in 3D space.
type Position3D struct {
	X, Y, Z float32
}

// Color is a 32-bit RGBA color, one byte per channel, red in the high byte.
type Color uint32

// RGBA builds a Color from individual channels.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// TextLevel classifies a text log row. The downstream viewer colors rows by
// level, so the string values are part of the wire contract.
type TextLevel string

const (
	LevelTrace TextLevel = "TRACE"
	LevelDebug TextLevel = "DEBUG"
	LevelInfo  TextLevel = "INFO"
	LevelWarn  TextLevel = "WARN"
	LevelError TextLevel = "ERROR"
)

// NewPosition3DBatch builds a batch of 3D positions.
func NewPosition3DBatch(desc Descriptor, positions []Position3D) *Batch {
	flat := make([]float32, 0, len(positions)*3)
	for _, p := range positions {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	return NewVec3Batch(desc, flat)
}

// NewColorBatch builds a batch of RGBA colors.
func NewColorBatch(desc Descriptor, colors []Color) *Batch {
	values := make([]uint32, len(colors))
	for i, c := range colors {
		values[i] = uint32(c)
	}
	return NewUint32Batch(desc, values)
}

// NewTextLevelBatch builds a batch of text log levels.
func NewTextLevelBatch(desc Descriptor, levels []TextLevel) *Batch {
	values := make([]string, len(levels))
	for i, l := range levels {
		values[i] = string(l)
	}
	return NewStringBatch(desc, values)
}
