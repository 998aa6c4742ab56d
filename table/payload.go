package table

import (
	"github.com/shopspring/decimal"

	"github.com/tessera-db/tessera/core"
)

// payload is one column's cell storage within a cluster. Implementations are
// typed arrays with an optional null mask; rows shift on insert/erase so
// indices stay dense.
type payload interface {
	size() int
	insert(row int, v core.Mixed)
	erase(row int)
	set(row int, v core.Mixed)
	get(row int) core.Mixed
	isNull(row int) bool
	// splitTail moves rows [at:) into a fresh payload of the same type.
	splitTail(at int) payload
}

func newPayload(t core.DataType, attrs core.ColumnAttr) payload {
	if attrs&core.AttrList != 0 {
		if t == core.TypeLink {
			return &linkListPayload{}
		}
		return &listPayload{}
	}
	nullable := attrs&core.AttrNullable != 0
	switch t {
	case core.TypeInt:
		return &intPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeBool:
		return &boolPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeFloat:
		return &floatPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeDouble:
		return &doublePayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeString:
		return &stringPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeBinary:
		return &binaryPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeTimestamp:
		return &timestampPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeDecimal:
		return &decimalPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeObjectID:
		return &objectIDPayload{scalarPayload: scalarPayload{nullable: nullable}}
	case core.TypeLink:
		return &linkPayload{}
	default:
		return &intPayload{scalarPayload: scalarPayload{nullable: nullable}}
	}
}

// scalarPayload carries the null mask shared by the typed payloads.
type scalarPayload struct {
	nullable bool
	nulls    []bool
}

func (p *scalarPayload) isNull(row int) bool {
	return p.nullable && p.nulls[row]
}

func (p *scalarPayload) insertNull(row int, null bool) {
	if !p.nullable {
		return
	}
	p.nulls = append(p.nulls, false)
	copy(p.nulls[row+1:], p.nulls[row:])
	p.nulls[row] = null
}

func (p *scalarPayload) eraseNull(row int) {
	if p.nullable {
		p.nulls = append(p.nulls[:row], p.nulls[row+1:]...)
	}
}

func (p *scalarPayload) setNull(row int, null bool) {
	if p.nullable {
		p.nulls[row] = null
	}
}

func (p *scalarPayload) splitNulls(at int) scalarPayload {
	out := scalarPayload{nullable: p.nullable}
	if p.nullable {
		out.nulls = append(out.nulls, p.nulls[at:]...)
		p.nulls = p.nulls[:at]
	}
	return out
}

type intPayload struct {
	scalarPayload
	vals []int64
}

func (p *intPayload) size() int { return len(p.vals) }

func (p *intPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, 0)
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.I64
	p.insertNull(row, v.IsNull())
}

func (p *intPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *intPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.I64
	p.setNull(row, v.IsNull())
}

func (p *intPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.Int(p.vals[row])
}

func (p *intPayload) splitTail(at int) payload {
	out := &intPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type boolPayload struct {
	scalarPayload
	vals []bool
}

func (p *boolPayload) size() int { return len(p.vals) }

func (p *boolPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, false)
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.B
	p.insertNull(row, v.IsNull())
}

func (p *boolPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *boolPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.B
	p.setNull(row, v.IsNull())
}

func (p *boolPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.Bool(p.vals[row])
}

func (p *boolPayload) splitTail(at int) payload {
	out := &boolPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type floatPayload struct {
	scalarPayload
	vals []float32
}

func (p *floatPayload) size() int { return len(p.vals) }

func (p *floatPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, 0)
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = float32(v.F64)
	p.insertNull(row, v.IsNull())
}

func (p *floatPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *floatPayload) set(row int, v core.Mixed) {
	p.vals[row] = float32(v.F64)
	p.setNull(row, v.IsNull())
}

func (p *floatPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.Float(p.vals[row])
}

func (p *floatPayload) splitTail(at int) payload {
	out := &floatPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type doublePayload struct {
	scalarPayload
	vals []float64
}

func (p *doublePayload) size() int { return len(p.vals) }

func (p *doublePayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, 0)
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.F64
	p.insertNull(row, v.IsNull())
}

func (p *doublePayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *doublePayload) set(row int, v core.Mixed) {
	p.vals[row] = v.F64
	p.setNull(row, v.IsNull())
}

func (p *doublePayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.Double(p.vals[row])
}

func (p *doublePayload) splitTail(at int) payload {
	out := &doublePayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type stringPayload struct {
	scalarPayload
	vals []string
}

func (p *stringPayload) size() int { return len(p.vals) }

func (p *stringPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, "")
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.S
	p.insertNull(row, v.IsNull())
}

func (p *stringPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *stringPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.S
	p.setNull(row, v.IsNull())
}

func (p *stringPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.String(p.vals[row])
}

func (p *stringPayload) splitTail(at int) payload {
	out := &stringPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type binaryPayload struct {
	scalarPayload
	vals [][]byte
}

func (p *binaryPayload) size() int { return len(p.vals) }

func (p *binaryPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, nil)
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.Buf
	p.insertNull(row, v.IsNull())
}

func (p *binaryPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *binaryPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.Buf
	p.setNull(row, v.IsNull())
}

func (p *binaryPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.Binary(p.vals[row])
}

func (p *binaryPayload) splitTail(at int) payload {
	out := &binaryPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type timestampPayload struct {
	scalarPayload
	vals []core.Timestamp
}

func (p *timestampPayload) size() int { return len(p.vals) }

func (p *timestampPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, core.Timestamp{})
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.TS
	p.insertNull(row, v.IsNull())
}

func (p *timestampPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *timestampPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.TS
	p.setNull(row, v.IsNull())
}

func (p *timestampPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.NewTimestamp(p.vals[row])
}

func (p *timestampPayload) splitTail(at int) payload {
	out := &timestampPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type decimalPayload struct {
	scalarPayload
	vals []decimal.Decimal
}

func (p *decimalPayload) size() int { return len(p.vals) }

func (p *decimalPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, decimal.Decimal{})
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.Dec
	p.insertNull(row, v.IsNull())
}

func (p *decimalPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *decimalPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.Dec
	p.setNull(row, v.IsNull())
}

func (p *decimalPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.Decimal(p.vals[row])
}

func (p *decimalPayload) splitTail(at int) payload {
	out := &decimalPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

type objectIDPayload struct {
	scalarPayload
	vals []core.ObjectID
}

func (p *objectIDPayload) size() int { return len(p.vals) }

func (p *objectIDPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, core.ObjectID{})
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = v.OID
	p.insertNull(row, v.IsNull())
}

func (p *objectIDPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
	p.eraseNull(row)
}

func (p *objectIDPayload) set(row int, v core.Mixed) {
	p.vals[row] = v.OID
	p.setNull(row, v.IsNull())
}

func (p *objectIDPayload) get(row int) core.Mixed {
	if p.isNull(row) {
		return core.Null()
	}
	return core.NewObjectID(p.vals[row])
}

func (p *objectIDPayload) splitTail(at int) payload {
	out := &objectIDPayload{scalarPayload: p.splitNulls(at)}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

// linkPayload stores one target key per row; NullKey means no link.
type linkPayload struct {
	vals []core.ObjKey
}

func (p *linkPayload) size() int { return len(p.vals) }

func (p *linkPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, core.NullKey)
	copy(p.vals[row+1:], p.vals[row:])
	if v.IsNull() {
		p.vals[row] = core.NullKey
	} else {
		p.vals[row] = v.Key()
	}
}

func (p *linkPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
}

func (p *linkPayload) set(row int, v core.Mixed) {
	if v.IsNull() {
		p.vals[row] = core.NullKey
	} else {
		p.vals[row] = v.Key()
	}
}

func (p *linkPayload) get(row int) core.Mixed {
	if p.vals[row].IsNull() {
		return core.Null()
	}
	return core.Link(p.vals[row])
}

func (p *linkPayload) isNull(row int) bool { return p.vals[row].IsNull() }

func (p *linkPayload) splitTail(at int) payload {
	out := &linkPayload{}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

// listPayload stores a list of scalar values per row.
type listPayload struct {
	vals [][]core.Mixed
}

func (p *listPayload) size() int { return len(p.vals) }

func (p *listPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, nil)
	copy(p.vals[row+1:], p.vals[row:])
	p.vals[row] = listOf(v)
}

func (p *listPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
}

func (p *listPayload) set(row int, v core.Mixed) {
	p.vals[row] = listOf(v)
}

func (p *listPayload) get(row int) core.Mixed {
	// Lists are accessed through ListLeaf; the scalar view exposes the size.
	return core.Int(int64(len(p.vals[row])))
}

func (p *listPayload) isNull(row int) bool { return false }

func (p *listPayload) splitTail(at int) payload {
	out := &listPayload{}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}

func listOf(v core.Mixed) []core.Mixed {
	if v.IsNull() {
		return nil
	}
	return []core.Mixed{v}
}

// linkListPayload stores a list of target keys per row.
type linkListPayload struct {
	vals [][]core.ObjKey
}

func (p *linkListPayload) size() int { return len(p.vals) }

func (p *linkListPayload) insert(row int, v core.Mixed) {
	p.vals = append(p.vals, nil)
	copy(p.vals[row+1:], p.vals[row:])
	if !v.IsNull() {
		p.vals[row] = []core.ObjKey{v.Key()}
	}
}

func (p *linkListPayload) erase(row int) {
	p.vals = append(p.vals[:row], p.vals[row+1:]...)
}

func (p *linkListPayload) set(row int, v core.Mixed) {
	if v.IsNull() {
		p.vals[row] = nil
	} else {
		p.vals[row] = []core.ObjKey{v.Key()}
	}
}

func (p *linkListPayload) get(row int) core.Mixed {
	return core.Int(int64(len(p.vals[row])))
}

func (p *linkListPayload) isNull(row int) bool { return false }

func (p *linkListPayload) splitTail(at int) payload {
	out := &linkListPayload{}
	out.vals = append(out.vals, p.vals[at:]...)
	p.vals = p.vals[:at]
	return out
}
