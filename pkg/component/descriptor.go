package component

// Descriptor is the stable on-wire identity of a component batch: which
// archetype declared it, the field it fills, and the component type it
// carries. Descriptors are declared once per field at definition time and
// never recomputed from data.
type Descriptor struct {
	Archetype string
	Field     string
	Component string
}

// String renders the descriptor as "archetype:field:component", the form
// used in logs and error messages.
func (d Descriptor) String() string {
	return d.Archetype + ":" + d.Field + ":" + d.Component
}

// Component type names carried by the archetypes bundled with this SDK.
// The downstream store matches these strings exactly, so they are part of
// the wire contract.
const (
	Position3DType = "loom.components.Position3D"
	ColorType      = "loom.components.Color"
	RadiusType     = "loom.components.Radius"
	ScalarType     = "loom.components.Scalar"
	TextType       = "loom.components.Text"
	TextLevelType  = "loom.components.TextLevel"
	ShowLabelsType = "loom.components.ShowLabels"
)
