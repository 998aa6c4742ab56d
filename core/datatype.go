package core

// DataType identifies the scalar type of a column.
type DataType uint8

const (
	TypeInt DataType = iota
	TypeBool
	TypeFloat
	TypeDouble
	TypeString
	TypeBinary
	TypeTimestamp
	TypeDecimal
	TypeObjectID
	TypeLink
)

// String returns the lowercase name of the type.
func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	case TypeTimestamp:
		return "timestamp"
	case TypeDecimal:
		return "decimal"
	case TypeObjectID:
		return "objectId"
	case TypeLink:
		return "link"
	default:
		return "unknown"
	}
}

// ColumnAttr is a bit mask of column attributes.
type ColumnAttr uint8

const (
	// AttrNullable marks a column whose cells may hold null.
	AttrNullable ColumnAttr = 1 << iota
	// AttrList marks a column holding a list of values per row.
	AttrList
	// AttrIndexed marks a column backed by a search index.
	AttrIndexed
)
