package engine

// ============================================================================
// ROW VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The aggregation code never owns table data. It reads through this interface.
//
// Implementations:
//   *schema.Table: a normalized dataset
//   SubView      : filtered subset (indices into parent, zero-copy)
// ============================================================================

// RowView provides indexed access to raw cells by column identifier.
type RowView interface {
	Len() int
	Cell(row int, column string) string
	Columns() []string
}

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RowView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RowView
	indices []int
}

func newSubView(parent RowView, indices []int) RowView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Cell(i int, column string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Cell(v.indices[i], column)
}

func (v *SubView) Columns() []string { return v.parent.Columns() }
