package table

import (
	"github.com/shopspring/decimal"

	"github.com/tessera-db/tessera/core"
)

// Leaf is a typed random-access view over one column's cells within one
// cluster. A leaf is bound by Cluster.InitLeaf in O(1) and holds no
// ownership of the underlying arrays.
type Leaf interface {
	// Size returns the number of rows in the bound cluster.
	Size() int
	// IsNull reports whether the cell at row i is null.
	IsNull(i int) bool
	// GetMixed returns the cell at row i as a Mixed value.
	GetMixed(i int) core.Mixed

	bind(p payload) bool
}

// NewLeaf returns an unbound leaf reader for the given column shape.
func NewLeaf(t core.DataType, attrs core.ColumnAttr) Leaf {
	if attrs&core.AttrList != 0 {
		if t == core.TypeLink {
			return &LinkListLeaf{}
		}
		return &ListLeaf{}
	}
	switch t {
	case core.TypeInt:
		return &IntLeaf{}
	case core.TypeBool:
		return &BoolLeaf{}
	case core.TypeFloat:
		return &FloatLeaf{}
	case core.TypeDouble:
		return &DoubleLeaf{}
	case core.TypeString:
		return &StringLeaf{}
	case core.TypeBinary:
		return &BinaryLeaf{}
	case core.TypeTimestamp:
		return &TimestampLeaf{}
	case core.TypeDecimal:
		return &DecimalLeaf{}
	case core.TypeObjectID:
		return &ObjectIDLeaf{}
	case core.TypeLink:
		return &LinkLeaf{}
	default:
		return &IntLeaf{}
	}
}

// IntLeaf reads a 64-bit integer column.
type IntLeaf struct {
	vals  []int64
	nulls []bool
}

func (l *IntLeaf) bind(p payload) bool {
	ip, ok := p.(*intPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = ip.vals, ip.nulls
	return true
}

// Size returns the number of rows.
func (l *IntLeaf) Size() int { return len(l.vals) }

// Get returns the value at row i. The caller must check IsNull first on
// nullable columns.
func (l *IntLeaf) Get(i int) int64 { return l.vals[i] }

// IsNull reports whether the cell at row i is null.
func (l *IntLeaf) IsNull(i int) bool { return l.nulls != nil && l.nulls[i] }

// GetMixed returns the cell at row i as a Mixed value.
func (l *IntLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.Int(l.vals[i])
}

// FindFirst returns the first row in [start,end) equal to v, or NotFound.
// The loop is branch-light over the contiguous value run so the compiler
// can vectorize it; the null mask is checked only on a hit.
func (l *IntLeaf) FindFirst(v int64, start, end int) int {
	vals := l.vals
	for i := start; i < end; i++ {
		if vals[i] == v && !l.IsNull(i) {
			return i
		}
	}
	return core.NotFound
}

// BoolLeaf reads a boolean column.
type BoolLeaf struct {
	vals  []bool
	nulls []bool
}

func (l *BoolLeaf) bind(p payload) bool {
	bp, ok := p.(*boolPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = bp.vals, bp.nulls
	return true
}

func (l *BoolLeaf) Size() int          { return len(l.vals) }
func (l *BoolLeaf) Get(i int) bool     { return l.vals[i] }
func (l *BoolLeaf) IsNull(i int) bool  { return l.nulls != nil && l.nulls[i] }

func (l *BoolLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.Bool(l.vals[i])
}

// FindFirst returns the first row in [start,end) equal to v, or NotFound.
func (l *BoolLeaf) FindFirst(v bool, start, end int) int {
	for i := start; i < end; i++ {
		if l.vals[i] == v && !l.IsNull(i) {
			return i
		}
	}
	return core.NotFound
}

// FloatLeaf reads a 32-bit float column.
type FloatLeaf struct {
	vals  []float32
	nulls []bool
}

func (l *FloatLeaf) bind(p payload) bool {
	fp, ok := p.(*floatPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = fp.vals, fp.nulls
	return true
}

func (l *FloatLeaf) Size() int         { return len(l.vals) }
func (l *FloatLeaf) Get(i int) float32 { return l.vals[i] }
func (l *FloatLeaf) IsNull(i int) bool { return l.nulls != nil && l.nulls[i] }

func (l *FloatLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.Float(l.vals[i])
}

// DoubleLeaf reads a 64-bit float column.
type DoubleLeaf struct {
	vals  []float64
	nulls []bool
}

func (l *DoubleLeaf) bind(p payload) bool {
	dp, ok := p.(*doublePayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = dp.vals, dp.nulls
	return true
}

func (l *DoubleLeaf) Size() int         { return len(l.vals) }
func (l *DoubleLeaf) Get(i int) float64 { return l.vals[i] }
func (l *DoubleLeaf) IsNull(i int) bool { return l.nulls != nil && l.nulls[i] }

func (l *DoubleLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.Double(l.vals[i])
}

// StringLeaf reads a string column.
type StringLeaf struct {
	vals  []string
	nulls []bool
}

func (l *StringLeaf) bind(p payload) bool {
	sp, ok := p.(*stringPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = sp.vals, sp.nulls
	return true
}

func (l *StringLeaf) Size() int         { return len(l.vals) }
func (l *StringLeaf) Get(i int) string  { return l.vals[i] }
func (l *StringLeaf) IsNull(i int) bool { return l.nulls != nil && l.nulls[i] }

func (l *StringLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.String(l.vals[i])
}

// FindFirst returns the first row in [start,end) equal to v, or NotFound.
func (l *StringLeaf) FindFirst(v string, start, end int) int {
	for i := start; i < end; i++ {
		if l.vals[i] == v && !l.IsNull(i) {
			return i
		}
	}
	return core.NotFound
}

// BinaryLeaf reads a binary column.
type BinaryLeaf struct {
	vals  [][]byte
	nulls []bool
}

func (l *BinaryLeaf) bind(p payload) bool {
	bp, ok := p.(*binaryPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = bp.vals, bp.nulls
	return true
}

func (l *BinaryLeaf) Size() int         { return len(l.vals) }
func (l *BinaryLeaf) Get(i int) []byte  { return l.vals[i] }
func (l *BinaryLeaf) IsNull(i int) bool { return l.nulls != nil && l.nulls[i] }

func (l *BinaryLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.Binary(l.vals[i])
}

// TimestampLeaf reads a timestamp column.
type TimestampLeaf struct {
	vals  []core.Timestamp
	nulls []bool
}

func (l *TimestampLeaf) bind(p payload) bool {
	tp, ok := p.(*timestampPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = tp.vals, tp.nulls
	return true
}

func (l *TimestampLeaf) Size() int                { return len(l.vals) }
func (l *TimestampLeaf) Get(i int) core.Timestamp { return l.vals[i] }
func (l *TimestampLeaf) IsNull(i int) bool        { return l.nulls != nil && l.nulls[i] }

func (l *TimestampLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.NewTimestamp(l.vals[i])
}

// DecimalLeaf reads a decimal column.
type DecimalLeaf struct {
	vals  []decimal.Decimal
	nulls []bool
}

func (l *DecimalLeaf) bind(p payload) bool {
	dp, ok := p.(*decimalPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = dp.vals, dp.nulls
	return true
}

func (l *DecimalLeaf) Size() int                 { return len(l.vals) }
func (l *DecimalLeaf) Get(i int) decimal.Decimal { return l.vals[i] }
func (l *DecimalLeaf) IsNull(i int) bool         { return l.nulls != nil && l.nulls[i] }

func (l *DecimalLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.Decimal(l.vals[i])
}

// ObjectIDLeaf reads an object-id column.
type ObjectIDLeaf struct {
	vals  []core.ObjectID
	nulls []bool
}

func (l *ObjectIDLeaf) bind(p payload) bool {
	op, ok := p.(*objectIDPayload)
	if !ok {
		return false
	}
	l.vals, l.nulls = op.vals, op.nulls
	return true
}

func (l *ObjectIDLeaf) Size() int               { return len(l.vals) }
func (l *ObjectIDLeaf) Get(i int) core.ObjectID { return l.vals[i] }
func (l *ObjectIDLeaf) IsNull(i int) bool       { return l.nulls != nil && l.nulls[i] }

func (l *ObjectIDLeaf) GetMixed(i int) core.Mixed {
	if l.IsNull(i) {
		return core.Null()
	}
	return core.NewObjectID(l.vals[i])
}

// LinkLeaf reads a single-link column.
type LinkLeaf struct {
	vals []core.ObjKey
}

func (l *LinkLeaf) bind(p payload) bool {
	lp, ok := p.(*linkPayload)
	if !ok {
		return false
	}
	l.vals = lp.vals
	return true
}

func (l *LinkLeaf) Size() int             { return len(l.vals) }
func (l *LinkLeaf) Get(i int) core.ObjKey { return l.vals[i] }
func (l *LinkLeaf) IsNull(i int) bool     { return l.vals[i].IsNull() }

func (l *LinkLeaf) GetMixed(i int) core.Mixed {
	if l.vals[i].IsNull() {
		return core.Null()
	}
	return core.Link(l.vals[i])
}

// ListLeaf reads a scalar-list column.
type ListLeaf struct {
	vals [][]core.Mixed
}

func (l *ListLeaf) bind(p payload) bool {
	lp, ok := p.(*listPayload)
	if !ok {
		return false
	}
	l.vals = lp.vals
	return true
}

func (l *ListLeaf) Size() int                { return len(l.vals) }
func (l *ListLeaf) Get(i int) []core.Mixed   { return l.vals[i] }
func (l *ListLeaf) Len(i int) int            { return len(l.vals[i]) }
func (l *ListLeaf) IsNull(i int) bool        { return false }
func (l *ListLeaf) GetMixed(i int) core.Mixed { return core.Int(int64(len(l.vals[i]))) }

// LinkListLeaf reads a link-list column.
type LinkListLeaf struct {
	vals [][]core.ObjKey
}

func (l *LinkListLeaf) bind(p payload) bool {
	lp, ok := p.(*linkListPayload)
	if !ok {
		return false
	}
	l.vals = lp.vals
	return true
}

func (l *LinkListLeaf) Size() int                 { return len(l.vals) }
func (l *LinkListLeaf) Get(i int) []core.ObjKey   { return l.vals[i] }
func (l *LinkListLeaf) Len(i int) int             { return len(l.vals[i]) }
func (l *LinkListLeaf) IsNull(i int) bool         { return false }
func (l *LinkListLeaf) GetMixed(i int) core.Mixed { return core.Int(int64(len(l.vals[i]))) }
