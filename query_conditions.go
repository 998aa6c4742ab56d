package tessera

import (
	"math"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/internal/exec"
	"github.com/tessera-db/tessera/table"
)

// Equal adds `col == value`.
func (q *Query) Equal(col core.ColKey, value core.Mixed) *Query {
	return q.addComparison(col, exec.OpEqual, value)
}

// NotEqual adds `col != value`.
func (q *Query) NotEqual(col core.ColKey, value core.Mixed) *Query {
	return q.addComparison(col, exec.OpNotEqual, value)
}

// Less adds `col < value`.
func (q *Query) Less(col core.ColKey, value core.Mixed) *Query {
	return q.addComparison(col, exec.OpLess, value)
}

// LessEqual adds `col <= value`.
func (q *Query) LessEqual(col core.ColKey, value core.Mixed) *Query {
	return q.addComparison(col, exec.OpLessEqual, value)
}

// Greater adds `col > value`.
func (q *Query) Greater(col core.ColKey, value core.Mixed) *Query {
	return q.addComparison(col, exec.OpGreater, value)
}

// GreaterEqual adds `col >= value`.
func (q *Query) GreaterEqual(col core.ColKey, value core.Mixed) *Query {
	return q.addComparison(col, exec.OpGreaterEqual, value)
}

// Between adds `lo <= col <= hi` as a group. The range is empty when
// lo > hi.
func (q *Query) Between(col core.ColKey, lo, hi core.Mixed) *Query {
	q.Group()
	q.GreaterEqual(col, lo)
	q.LessEqual(col, hi)
	return q.EndGroup()
}

// EqualString adds a string equality with explicit case mode. The
// case-sensitive form rides the column's search index when present, and
// sibling equalities on the same unindexed column coalesce into one scan
// that matches any of their values.
func (q *Query) EqualString(col core.ColKey, value string, caseSensitive bool) *Query {
	if !q.checkStringColumn(col) {
		return q
	}
	if caseSensitive {
		q.addNode(exec.NewStringEqualNode(col, value))
	} else {
		q.addNode(exec.NewStringNode(col, exec.StringCond{Op: exec.StrEqual}, value))
	}
	return q
}

// NotEqualString adds a string inequality with explicit case mode.
func (q *Query) NotEqualString(col core.ColKey, value string, caseSensitive bool) *Query {
	return q.addStringCond(col, exec.StrNotEqual, value, caseSensitive)
}

// BeginsWith adds a prefix condition.
func (q *Query) BeginsWith(col core.ColKey, value string, caseSensitive bool) *Query {
	return q.addStringCond(col, exec.StrBeginsWith, value, caseSensitive)
}

// EndsWith adds a suffix condition.
func (q *Query) EndsWith(col core.ColKey, value string, caseSensitive bool) *Query {
	return q.addStringCond(col, exec.StrEndsWith, value, caseSensitive)
}

// Contains adds a substring condition.
func (q *Query) Contains(col core.ColKey, value string, caseSensitive bool) *Query {
	return q.addStringCond(col, exec.StrContains, value, caseSensitive)
}

// Like adds a wildcard condition: '*' matches any run, '?' one byte.
func (q *Query) Like(col core.ColKey, value string, caseSensitive bool) *Query {
	return q.addStringCond(col, exec.StrLike, value, caseSensitive)
}

// SizeEqual adds `size(col) == n`.
func (q *Query) SizeEqual(col core.ColKey, n int64) *Query {
	return q.addSize(col, exec.OpEqual, n)
}

// SizeNotEqual adds `size(col) != n`.
func (q *Query) SizeNotEqual(col core.ColKey, n int64) *Query {
	return q.addSize(col, exec.OpNotEqual, n)
}

// SizeLess adds `size(col) < n`.
func (q *Query) SizeLess(col core.ColKey, n int64) *Query {
	return q.addSize(col, exec.OpLess, n)
}

// SizeLessEqual adds `size(col) <= n`.
func (q *Query) SizeLessEqual(col core.ColKey, n int64) *Query {
	return q.addSize(col, exec.OpLessEqual, n)
}

// SizeGreater adds `size(col) > n`.
func (q *Query) SizeGreater(col core.ColKey, n int64) *Query {
	return q.addSize(col, exec.OpGreater, n)
}

// SizeGreaterEqual adds `size(col) >= n`.
func (q *Query) SizeGreaterEqual(col core.ColKey, n int64) *Query {
	return q.addSize(col, exec.OpGreaterEqual, n)
}

// LinksTo adds a condition matching rows whose link column points to any
// of the target keys.
func (q *Query) LinksTo(col core.ColKey, targets ...core.ObjKey) *Query {
	if !q.checkColumnValid(col) {
		return q
	}
	if col.Type() != core.TypeLink {
		q.typeMismatch(col, core.TypeLink, "")
		return q
	}
	q.addNode(exec.NewLinksToNode(col, targets))
	return q
}

// EqualColumns adds `col1 == col2`.
func (q *Query) EqualColumns(col1, col2 core.ColKey) *Query {
	return q.addTwoColumns(col1, col2, exec.OpEqual)
}

// NotEqualColumns adds `col1 != col2`.
func (q *Query) NotEqualColumns(col1, col2 core.ColKey) *Query {
	return q.addTwoColumns(col1, col2, exec.OpNotEqual)
}

// LessColumns adds `col1 < col2`.
func (q *Query) LessColumns(col1, col2 core.ColKey) *Query {
	return q.addTwoColumns(col1, col2, exec.OpLess)
}

// LessEqualColumns adds `col1 <= col2`.
func (q *Query) LessEqualColumns(col1, col2 core.ColKey) *Query {
	return q.addTwoColumns(col1, col2, exec.OpLessEqual)
}

// GreaterColumns adds `col1 > col2`.
func (q *Query) GreaterColumns(col1, col2 core.ColKey) *Query {
	return q.addTwoColumns(col1, col2, exec.OpGreater)
}

// GreaterEqualColumns adds `col1 >= col2`.
func (q *Query) GreaterEqualColumns(col1, col2 core.ColKey) *Query {
	return q.addTwoColumns(col1, col2, exec.OpGreaterEqual)
}

// Expression adds a compiled row predicate. The planner treats it as the
// most expensive probe.
func (q *Query) Expression(fn func(obj table.Obj) bool, description string) *Query {
	q.addNode(exec.NewExpressionNode(&exec.FuncExpression{Fn: fn, Desc: description}))
	return q
}

func (q *Query) addComparison(col core.ColKey, op exec.Op, value core.Mixed) *Query {
	if !q.checkColumnValid(col) {
		return q
	}
	if !q.checkValue(col, value) {
		return q
	}

	// `>= INT64_MIN` and `<= INT64_MAX` hold for every row; adding a node
	// would only slow the scan down.
	if col.Type() == core.TypeInt && value.Kind == core.KindInt {
		if op == exec.OpGreaterEqual && value.I64 == math.MinInt64 {
			return q
		}
		if op == exec.OpLessEqual && value.I64 == math.MaxInt64 {
			return q
		}
	}

	switch col.Type() {
	case core.TypeInt:
		q.addNode(exec.NewIntegerNode(col, op, value))
	case core.TypeBool:
		q.addNode(exec.NewBoolNode(col, op, value))
	case core.TypeFloat, core.TypeDouble:
		q.addNode(exec.NewFloatDoubleNode(col, op, value))
	case core.TypeTimestamp:
		q.addNode(exec.NewTimestampNode(col, op, value))
	case core.TypeDecimal:
		q.addNode(exec.NewDecimalNode(col, op, value))
	case core.TypeObjectID:
		q.addNode(exec.NewObjectIDNode(col, op, value))
	case core.TypeBinary:
		q.addNode(exec.NewBinaryNode(col, op, value))
	case core.TypeString:
		q.addStringComparison(col, op, value)
	case core.TypeLink:
		if op == exec.OpEqual && (value.Kind == core.KindLink || value.IsNull()) {
			if value.IsNull() {
				q.addNode(exec.NewLinksToNode(col, nil))
			} else {
				q.addNode(exec.NewLinksToNode(col, []core.ObjKey{value.Key()}))
			}
		} else {
			q.typeMismatch(col, col.Type(), "links support equality only")
		}
	default:
		q.typeMismatch(col, col.Type(), "")
	}
	return q
}

func (q *Query) addStringComparison(col core.ColKey, op exec.Op, value core.Mixed) {
	switch op {
	case exec.OpEqual:
		if value.IsNull() {
			q.addNode(exec.NewStringNullNode(col, exec.StrEqual))
		} else {
			q.addNode(exec.NewStringEqualNode(col, value.S))
		}
	case exec.OpNotEqual:
		if value.IsNull() {
			q.addNode(exec.NewStringNullNode(col, exec.StrNotEqual))
		} else {
			q.addNode(exec.NewStringNode(col, exec.StringCond{Op: exec.StrNotEqual, CaseSensitive: true}, value.S))
		}
	default:
		if value.IsNull() {
			q.typeMismatch(col, col.Type(), "ordered comparison against null")
			return
		}
		q.addNode(exec.NewStringOrderNode(col, op, value))
	}
}

func (q *Query) addStringCond(col core.ColKey, op exec.StrOp, value string, caseSensitive bool) *Query {
	if !q.checkStringColumn(col) {
		return q
	}
	q.addNode(exec.NewStringNode(col, exec.StringCond{Op: op, CaseSensitive: caseSensitive}, value))
	return q
}

func (q *Query) addSize(col core.ColKey, op exec.Op, n int64) *Query {
	if !q.checkColumnValid(col) {
		return q
	}
	if col.IsList() {
		q.addNode(exec.NewSizeListNode(col, op, n))
		return q
	}
	switch col.Type() {
	case core.TypeString, core.TypeBinary:
		q.addNode(exec.NewSizeNode(col, op, n))
	default:
		q.typeMismatch(col, col.Type(), "size applies to strings, binaries and lists")
	}
	return q
}

func (q *Query) addTwoColumns(col1, col2 core.ColKey, op exec.Op) *Query {
	if !q.checkColumnValid(col1) || !q.checkColumnValid(col2) {
		return q
	}
	if col1.Type() != col2.Type() || col1.IsList() || col2.IsList() {
		q.typeMismatch(col2, col1.Type(), "column comparison requires matching scalar types")
		return q
	}
	q.addNode(exec.NewTwoColumnsNode(col1, col2, op))
	return q
}

func (q *Query) checkColumnValid(col core.ColKey) bool {
	if !col.IsValid() {
		q.recordError("No such column", &NoSuchColumnError{Name: "?"})
		return false
	}
	return true
}

func (q *Query) checkStringColumn(col core.ColKey) bool {
	if !q.checkColumnValid(col) {
		return false
	}
	if col.Type() != core.TypeString || col.IsList() {
		q.typeMismatch(col, core.TypeString, "")
		return false
	}
	return true
}

// checkValue verifies that a needle is comparable against the column.
func (q *Query) checkValue(col core.ColKey, v core.Mixed) bool {
	if v.IsNull() {
		if !col.IsNullable() && col.Type() != core.TypeLink {
			q.typeMismatch(col, col.Type(), "column is not nullable")
			return false
		}
		return true
	}
	want := col.Type()
	ok := false
	switch v.Kind {
	case core.KindInt:
		ok = want == core.TypeInt
	case core.KindBool:
		ok = want == core.TypeBool
	case core.KindFloat:
		ok = want == core.TypeFloat
	case core.KindDouble:
		ok = want == core.TypeDouble || want == core.TypeFloat
	case core.KindString:
		ok = want == core.TypeString
	case core.KindBinary:
		ok = want == core.TypeBinary
	case core.KindTimestamp:
		ok = want == core.TypeTimestamp
	case core.KindDecimal:
		ok = want == core.TypeDecimal
	case core.KindObjectID:
		ok = want == core.TypeObjectID
	case core.KindLink:
		ok = want == core.TypeLink
	}
	if !ok {
		q.typeMismatch(col, want, "")
	}
	return ok
}

func (q *Query) typeMismatch(col core.ColKey, want core.DataType, detail string) {
	name := ""
	if q.tbl != nil {
		name = q.tbl.ColumnName(col)
	}
	err := &TypeMismatchError{Column: name, Expected: want, Detail: detail}
	q.recordError(err.Error(), err)
}
