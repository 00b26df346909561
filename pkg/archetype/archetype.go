// Package archetype defines the contract that turns a named bundle of typed
// component fields into the ordered list of component batches the columnar
// wire format expects.
package archetype

import (
	"fmt"
	"strings"

	"github.com/datalooms/loom/pkg/component"
)

// FieldSchema declares one field of an archetype. The declaration order of
// an archetype's fields is part of the wire contract: every SDK targeting
// the same store must emit the same fields in the same order.
type FieldSchema struct {
	Name      string
	Component string
	// Required fields are always emitted; optional fields are emitted only
	// when present.
	Required bool
	// Singular fields apply to the batch as a whole (length 1) and are
	// excluded from row-count alignment.
	Singular bool
}

// Archetype is a named, ordered set of component fields. Concrete archetypes
// are plain value types with chainable With* setters; the interface exposes
// only what the serializer needs.
type Archetype interface {
	// Name returns the fully-qualified archetype name, e.g.
	// "loom.archetypes.Points3D".
	Name() string
	// Fields returns the field declarations in fixed declaration order.
	Fields() []FieldSchema
	// Field returns the batch currently stored for the named field and
	// whether the field is present at all. A present batch may be empty
	// (length 0), which is distinct from absent.
	Field(name string) (*component.Batch, bool)
}

// NumInstances returns the archetype's row count: the length of the first
// populated non-singular field, or 0 when no such field is populated.
func NumInstances(a Archetype) int {
	for _, f := range a.Fields() {
		if f.Singular {
			continue
		}
		if b, ok := a.Field(f.Name); ok && b.Err() == nil && b.Len() > 0 {
			return b.Len()
		}
	}
	return 0
}

// Serialize transforms an archetype into its ordered component batches:
// every field in declaration order (required always, optional only when
// present), followed by exactly one indicator batch whose row count equals
// NumInstances. A field whose batch construction failed aborts serialization
// with an error naming the field; no partial result is returned.
func Serialize(a Archetype) ([]*component.Batch, error) {
	rows := NumInstances(a)
	out := make([]*component.Batch, 0, len(a.Fields())+1)

	for _, f := range a.Fields() {
		b, present := a.Field(f.Name)
		if !present {
			if f.Required {
				return nil, fmt.Errorf("%s: required field %q not set", a.Name(), f.Name)
			}
			continue
		}
		if err := b.Err(); err != nil {
			return nil, fmt.Errorf("%s: field %q: %w", a.Name(), f.Name, err)
		}
		// A one-row batch is a broadcast convenience value and is exempt
		// from alignment, as are singular and empty batches.
		if !f.Singular && b.Len() > 1 && b.Len() != rows {
			return nil, fmt.Errorf("%s: field %q has %d rows, archetype has %d instances",
				a.Name(), f.Name, b.Len(), rows)
		}
		out = append(out, b)
	}

	out = append(out, component.NewIndicatorBatch(IndicatorDescriptor(a), rows))
	return out, nil
}

// IndicatorDescriptor returns the descriptor of an archetype's indicator
// batch. The component name is derived from the archetype's short name, e.g.
// "loom.archetypes.Points3D" yields "loom.components.Points3DIndicator".
func IndicatorDescriptor(a Archetype) component.Descriptor {
	short := a.Name()
	if i := strings.LastIndexByte(short, '.'); i >= 0 {
		short = short[i+1:]
	}
	return component.Descriptor{
		Archetype: a.Name(),
		Field:     "indicator",
		Component: "loom.components." + short + "Indicator",
	}
}
