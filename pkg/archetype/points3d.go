package archetype

import "github.com/datalooms/loom/pkg/component"

// Points3DName is the fully-qualified name of the Points3D archetype.
const Points3DName = "loom.archetypes.Points3D"

// points3DFields is the wire-order field declaration for Points3D. The order
// is fixed schema metadata, not a reflection of struct layout.
var points3DFields = []FieldSchema{
	{Name: "positions", Component: component.Position3DType, Required: true},
	{Name: "radii", Component: component.RadiusType},
	{Name: "colors", Component: component.ColorType},
	{Name: "labels", Component: component.TextType},
	{Name: "show_labels", Component: component.ShowLabelsType, Singular: true},
}

// Points3D is a batch of 3D points with optional per-point radii, colors,
// and labels, plus a singular toggle for label display.
type Points3D struct {
	positions  *component.Batch
	radii      *component.Batch
	colors     *component.Batch
	labels     *component.Batch
	showLabels *component.Batch
}

// NewPoints3D creates a Points3D archetype from its required positions.
func NewPoints3D(positions []component.Position3D) *Points3D {
	return (&Points3D{}).WithPositions(positions)
}

func points3DDescriptor(field, componentType string) component.Descriptor {
	return component.Descriptor{Archetype: Points3DName, Field: field, Component: componentType}
}

// WithPositions replaces the point positions.
func (p *Points3D) WithPositions(positions []component.Position3D) *Points3D {
	p.positions = component.NewPosition3DBatch(points3DDescriptor("positions", component.Position3DType), positions)
	return p
}

// WithFlatPositions replaces the point positions from a flat x,y,z,x,y,z,...
// coordinate slice. A slice whose length is not a multiple of 3 is reported
// when the archetype is serialized.
func (p *Points3D) WithFlatPositions(flat []float32) *Points3D {
	p.positions = component.NewVec3Batch(points3DDescriptor("positions", component.Position3DType), flat)
	return p
}

// WithRadii replaces the per-point radii.
func (p *Points3D) WithRadii(radii []float32) *Points3D {
	p.radii = component.NewFloat32Batch(points3DDescriptor("radii", component.RadiusType), radii)
	return p
}

// WithRadius sets a single radius, broadcast as a one-row batch.
func (p *Points3D) WithRadius(radius float32) *Points3D {
	return p.WithRadii([]float32{radius})
}

// WithColors replaces the per-point colors.
func (p *Points3D) WithColors(colors []component.Color) *Points3D {
	p.colors = component.NewColorBatch(points3DDescriptor("colors", component.ColorType), colors)
	return p
}

// WithColor sets a single color, broadcast as a one-row batch.
func (p *Points3D) WithColor(color component.Color) *Points3D {
	return p.WithColors([]component.Color{color})
}

// WithLabels replaces the per-point text labels.
func (p *Points3D) WithLabels(labels []string) *Points3D {
	p.labels = component.NewStringBatch(points3DDescriptor("labels", component.TextType), labels)
	return p
}

// WithShowLabels toggles label display for the whole batch.
func (p *Points3D) WithShowLabels(show bool) *Points3D {
	p.showLabels = component.NewBoolBatch(points3DDescriptor("show_labels", component.ShowLabelsType), []bool{show})
	return p
}

// ClearFields returns a Points3D with every field present but empty,
// signalling the viewer to stop displaying previously logged data without
// removing the archetype from the timeline.
func (p *Points3D) ClearFields() *Points3D {
	return (&Points3D{}).
		WithPositions(nil).
		WithRadii(nil).
		WithColors(nil).
		WithLabels(nil).
		withEmptyShowLabels()
}

func (p *Points3D) withEmptyShowLabels() *Points3D {
	p.showLabels = component.NewBoolBatch(points3DDescriptor("show_labels", component.ShowLabelsType), nil)
	return p
}

// Name implements Archetype.
func (p *Points3D) Name() string { return Points3DName }

// Fields implements Archetype.
func (p *Points3D) Fields() []FieldSchema { return points3DFields }

// Field implements Archetype.
func (p *Points3D) Field(name string) (*component.Batch, bool) {
	var b *component.Batch
	switch name {
	case "positions":
		b = p.positions
	case "radii":
		b = p.radii
	case "colors":
		b = p.colors
	case "labels":
		b = p.labels
	case "show_labels":
		b = p.showLabels
	}
	return b, b != nil
}
