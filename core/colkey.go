package core

// ColKey is a 64-bit column handle encoding the dense leaf index, the column
// type and the attribute mask. The leaf index addresses per-cluster leaf
// slots; type and attributes live in the upper bits so a ColKey is
// self-describing without a schema lookup.
//
// Layout (low to high):
//
//	bits  0..23  leaf index
//	bits 24..29  DataType
//	bits 30..37  ColumnAttr mask
type ColKey int64

// ColKeyNull is the invalid column handle (-1); IsValid reports false.
const ColKeyNull ColKey = -1

const (
	colKeyIndexBits = 24
	colKeyIndexMask = (1 << colKeyIndexBits) - 1
	colKeyTypeShift = colKeyIndexBits
	colKeyTypeBits  = 6
	colKeyTypeMask  = (1 << colKeyTypeBits) - 1
	colKeyAttrShift = colKeyTypeShift + colKeyTypeBits
)

// NewColKey builds a column handle from its parts.
func NewColKey(leafIndex int, t DataType, attrs ColumnAttr) ColKey {
	v := int64(leafIndex&colKeyIndexMask) |
		int64(t&colKeyTypeMask)<<colKeyTypeShift |
		int64(attrs)<<colKeyAttrShift
	return ColKey(v)
}

// IsValid reports whether the handle refers to a column.
func (c ColKey) IsValid() bool { return c >= 0 }

// LeafIndex returns the dense per-cluster leaf slot of the column.
func (c ColKey) LeafIndex() int { return int(c & colKeyIndexMask) }

// Type returns the column's scalar type.
func (c ColKey) Type() DataType {
	return DataType((c >> colKeyTypeShift) & colKeyTypeMask)
}

// Attrs returns the column's attribute mask.
func (c ColKey) Attrs() ColumnAttr {
	return ColumnAttr(c >> colKeyAttrShift)
}

// IsNullable reports whether cells of the column may be null.
func (c ColKey) IsNullable() bool { return c.Attrs()&AttrNullable != 0 }

// IsList reports whether the column holds lists.
func (c ColKey) IsList() bool { return c.Attrs()&AttrList != 0 }

// IsIndexed reports whether the column was created with a search index.
func (c ColKey) IsIndexed() bool { return c.Attrs()&AttrIndexed != 0 }
