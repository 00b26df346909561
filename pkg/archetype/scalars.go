package archetype

import "github.com/datalooms/loom/pkg/component"

// ScalarsName is the fully-qualified name of the Scalars archetype.
const ScalarsName = "loom.archetypes.Scalars"

var scalarsFields = []FieldSchema{
	{Name: "scalars", Component: component.ScalarType, Required: true},
	{Name: "colors", Component: component.ColorType},
}

// Scalars is a batch of scalar values for plotting, with optional per-series
// colors.
type Scalars struct {
	scalars *component.Batch
	colors  *component.Batch
}

// NewScalars creates a Scalars archetype from its required values.
func NewScalars(values []float64) *Scalars {
	return (&Scalars{}).WithScalars(values)
}

// NewScalar creates a Scalars archetype holding a single value.
func NewScalar(value float64) *Scalars {
	return NewScalars([]float64{value})
}

func scalarsDescriptor(field, componentType string) component.Descriptor {
	return component.Descriptor{Archetype: ScalarsName, Field: field, Component: componentType}
}

// WithScalars replaces the scalar values.
func (s *Scalars) WithScalars(values []float64) *Scalars {
	s.scalars = component.NewFloat64Batch(scalarsDescriptor("scalars", component.ScalarType), values)
	return s
}

// WithColors replaces the per-series colors.
func (s *Scalars) WithColors(colors []component.Color) *Scalars {
	s.colors = component.NewColorBatch(scalarsDescriptor("colors", component.ColorType), colors)
	return s
}

// ClearFields returns a Scalars with every field present but empty.
func (s *Scalars) ClearFields() *Scalars {
	return (&Scalars{}).WithScalars(nil).WithColors(nil)
}

// Name implements Archetype.
func (s *Scalars) Name() string { return ScalarsName }

// Fields implements Archetype.
func (s *Scalars) Fields() []FieldSchema { return scalarsFields }

// Field implements Archetype.
func (s *Scalars) Field(name string) (*component.Batch, bool) {
	var b *component.Batch
	switch name {
	case "scalars":
		b = s.scalars
	case "colors":
		b = s.colors
	}
	return b, b != nil
}
