package archetype

import (
	"fmt"

	"github.com/datalooms/loom/pkg/component"
)

// ColumnGroup is one row-disjoint slice of a partitioned archetype: the
// sub-batches of every present field for one group of rows, in declaration
// order, followed by the group's indicator batch.
type ColumnGroup struct {
	Batches []*component.Batch
	NumRows int
}

// Columns re-expresses each present field's single batch as row-disjoint
// sub-batches according to the supplied group lengths, for columnar
// multi-timestamp writes. Every present non-singular field must have exactly
// sum(lengths) rows; a mismatch is an error. Singular fields are repeated
// whole in every group. Required-field and construction-error checks match
// Serialize.
func Columns(a Archetype, lengths []int) ([]ColumnGroup, error) {
	groups := make([]ColumnGroup, len(lengths))
	for i, n := range lengths {
		if n < 0 {
			return nil, fmt.Errorf("%s: negative group length %d", a.Name(), n)
		}
		groups[i] = ColumnGroup{NumRows: n}
	}

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
		if f.Singular {
			for i := range groups {
				groups[i].Batches = append(groups[i].Batches, b.Window(0, b.Len()))
			}
			continue
		}
		parts, err := b.Partition(lengths)
		if err != nil {
			return nil, fmt.Errorf("%s: field %q: %w", a.Name(), f.Name, err)
		}
		for i, p := range parts {
			groups[i].Batches = append(groups[i].Batches, p)
		}
	}

	ind := IndicatorDescriptor(a)
	for i := range groups {
		groups[i].Batches = append(groups[i].Batches, component.NewIndicatorBatch(ind, groups[i].NumRows))
	}
	return groups, nil
}

// ColumnsUnit partitions with unit-length groups, one group per row, inferred
// from the archetype's instance count.
func ColumnsUnit(a Archetype) ([]ColumnGroup, error) {
	lengths := make([]int, NumInstances(a))
	for i := range lengths {
		lengths[i] = 1
	}
	return Columns(a, lengths)
}
