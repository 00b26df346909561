package archetype

import "github.com/datalooms/loom/pkg/component"

// TextLogName is the fully-qualified name of the TextLog archetype.
const TextLogName = "loom.archetypes.TextLog"

var textLogFields = []FieldSchema{
	{Name: "text", Component: component.TextType, Required: true},
	{Name: "level", Component: component.TextLevelType},
	{Name: "colors", Component: component.ColorType},
}

// TextLog is a batch of log lines with optional per-line severity levels and
// colors.
type TextLog struct {
	text   *component.Batch
	level  *component.Batch
	colors *component.Batch
}

// NewTextLog creates a TextLog archetype holding a single line.
func NewTextLog(text string) *TextLog {
	return (&TextLog{}).WithText([]string{text})
}

func textLogDescriptor(field, componentType string) component.Descriptor {
	return component.Descriptor{Archetype: TextLogName, Field: field, Component: componentType}
}

// WithText replaces the log lines.
func (t *TextLog) WithText(lines []string) *TextLog {
	t.text = component.NewStringBatch(textLogDescriptor("text", component.TextType), lines)
	return t
}

// WithLevels replaces the per-line severity levels.
func (t *TextLog) WithLevels(levels []component.TextLevel) *TextLog {
	t.level = component.NewTextLevelBatch(textLogDescriptor("level", component.TextLevelType), levels)
	return t
}

// WithLevel sets a single severity level, broadcast as a one-row batch.
func (t *TextLog) WithLevel(level component.TextLevel) *TextLog {
	return t.WithLevels([]component.TextLevel{level})
}

// WithColors replaces the per-line colors.
func (t *TextLog) WithColors(colors []component.Color) *TextLog {
	t.colors = component.NewColorBatch(textLogDescriptor("colors", component.ColorType), colors)
	return t
}

// ClearFields returns a TextLog with every field present but empty.
func (t *TextLog) ClearFields() *TextLog {
	return (&TextLog{}).WithText(nil).WithLevels(nil).WithColors(nil)
}

// Name implements Archetype.
func (t *TextLog) Name() string { return TextLogName }

// Fields implements Archetype.
func (t *TextLog) Fields() []FieldSchema { return textLogFields }

// Field implements Archetype.
func (t *TextLog) Field(name string) (*component.Batch, bool) {
	var b *component.Batch
	switch name {
	case "text":
		b = t.text
	case "level":
		b = t.level
	case "colors":
		b = t.colors
	}
	return b, b != nil
}
