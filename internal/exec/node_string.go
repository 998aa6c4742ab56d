package exec

import (
	"strconv"
	"strings"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// needleSetLinearMax is the needle count up to which a linear probe beats
// the hash lookup. Found empirically on short strings in the original
// engine.
const needleSetLinearMax = 20

// indexIterator walks a sorted list of index matches alongside the cluster
// traversal, translating the next match key into a cluster-local row.
type indexIterator struct {
	keys         []core.ObjKey
	ndx          int
	lastStartKey core.ObjKey
}

func (it *indexIterator) reset(keys []core.ObjKey) {
	it.keys = keys
	it.ndx = 0
	it.lastStartKey = core.NullKey
}

// findFirstLocal returns the row in [start,end) of the next index match,
// or NotFound. When the caller rewinds behind the previous position the
// iteration restarts from the first match.
func (it *indexIterator) findFirstLocal(c *table.Cluster, start, end int) int {
	if start >= end || it.ndx > len(it.keys) {
		return core.NotFound
	}
	firstKey := c.RealKey(start)
	if firstKey < it.lastStartKey {
		// Not advancing through the clusters; start over.
		it.ndx = 0
	}
	it.lastStartKey = firstKey
	for it.ndx < len(it.keys) && it.keys[it.ndx] < firstKey {
		it.ndx++
	}
	if it.ndx == len(it.keys) {
		return core.NotFound
	}
	actual := it.keys[it.ndx]
	if actual > c.RealKey(end-1) {
		return core.NotFound
	}
	return c.LowerBoundKey(core.ObjKey(int64(actual) - c.Offset()))
}

// indexAggregate feeds index matches to fn in key order, counting
// acceptances up to limit.
func indexAggregate(tbl *table.Table, keys []core.ObjKey, limit int, fn func(table.Obj) bool) int {
	accepted := 0
	for _, k := range keys {
		if accepted >= limit {
			break
		}
		obj := tbl.Object(k)
		if !obj.IsValid() {
			continue
		}
		if fn(obj) {
			accepted++
		}
	}
	return accepted
}

// stringNodeBase is the shared shape of the string condition nodes.
type stringNodeBase struct {
	Base
	sleaf     table.StringLeaf
	value     string
	valueNull bool
	upper     string
	lower     string
	cond      StringCond
}

func (n *stringNodeBase) SetTable(t *table.Table) { n.setTableBase(t) }

func (n *stringNodeBase) setValue(value string, null bool) {
	n.value = value
	n.valueNull = null
	if !n.cond.CaseSensitive {
		n.upper = strings.ToUpper(value)
		n.lower = strings.ToLower(value)
	}
}

// EvalTri evaluates the string condition at one row.
func (n *stringNodeBase) EvalTri(row int) Tri {
	if n.valueNull {
		switch n.cond.Op {
		case StrEqual:
			return triOf(n.sleaf.IsNull(row))
		case StrNotEqual:
			return triOf(!n.sleaf.IsNull(row))
		default:
			return TriFalse
		}
	}
	if n.sleaf.IsNull(row) {
		return TriUnknown
	}
	return triOf(n.cond.Match(n.value, n.upper, n.lower, n.sleaf.Get(row)))
}

func (n *stringNodeBase) scan(start, end int) int {
	for i := start; i < end; i++ {
		n.probes++
		if n.EvalTri(i) == TriTrue {
			n.matches++
			return i
		}
	}
	return core.NotFound
}

func (n *stringNodeBase) describeValue() string {
	if n.valueNull {
		return "NULL"
	}
	return strconv.Quote(n.value)
}

func (n *stringNodeBase) Describe(st *DescribeState) string {
	return st.ColumnName(n.CondCol) + " " + n.cond.describeOp() + " " + n.describeValue()
}

// StringNode evaluates the non-coalescing string conditions: NotEqual,
// BeginsWith, EndsWith, Contains, Like and the case-insensitive Equal.
// Case-insensitive equality over an indexed column folds the index
// postings once and iterates them like the equality fast path; each
// candidate is then checked against its cell.
type StringNode struct {
	stringNodeBase
	hasIndex bool
	iter     indexIterator
}

// NewStringNode creates a string condition node.
func NewStringNode(col core.ColKey, cond StringCond, value string) *StringNode {
	n := &StringNode{}
	n.CondCol = col
	n.cond = cond
	n.setValue(value, false)
	return n
}

// NewStringNullNode creates a string equality node testing for null.
func NewStringNullNode(col core.ColKey, op StrOp) *StringNode {
	n := &StringNode{}
	n.CondCol = col
	n.cond = StringCond{Op: op, CaseSensitive: true}
	n.setValue("", true)
	return n
}

func (n *StringNode) Init() {
	n.initBase(10.0, costDenseScan)
	n.hasIndex = false
	if n.cond.Op == StrEqual && !n.cond.CaseSensitive && !n.valueNull && n.Tbl != nil {
		if ix := n.Tbl.SearchIndex(n.CondCol); ix != nil {
			n.hasIndex = true
			n.DT = costIndexed
			n.iter.reset(ix.FindAllFold(n.value))
		}
	}
}

func (n *StringNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, &n.sleaf)
}

func (n *StringNode) FindFirstLocal(start, end int) int {
	if n.hasIndex {
		for start < end {
			r := n.iter.findFirstLocal(n.Cluster, start, end)
			if r == core.NotFound || n.EvalTri(r) == TriTrue {
				return r
			}
			start = r + 1
		}
		return core.NotFound
	}
	return n.scan(start, end)
}

func (n *StringNode) HasSearchIndex() bool { return n.hasIndex }

func (n *StringNode) IndexBasedAggregate(limit int, fn func(table.Obj) bool) int {
	return indexAggregate(n.Tbl, n.iter.keys, limit, fn)
}

func (n *StringNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *StringNode) Clone() Node {
	out := *n
	out.Base = n.Base.cloneBase()
	out.iter = indexIterator{}
	return &out
}

// StringEqualNode evaluates case-sensitive string equality. Over an
// indexed column it iterates the index postings in key order. Without an
// index, sibling equality conditions on the same column are coalesced
// into this node as a needle set, so N conditions cost one scan: a linear
// probe while the set is small, a hash probe beyond.
type StringEqualNode struct {
	stringNodeBase
	needleList []string
	needles    map[string]struct{}

	hasIndex bool
	iter     indexIterator
}

// NewStringEqualNode creates a case-sensitive string equality node.
func NewStringEqualNode(col core.ColKey, value string) *StringEqualNode {
	n := &StringEqualNode{}
	n.CondCol = col
	n.cond = StringCond{Op: StrEqual, CaseSensitive: true}
	n.setValue(value, false)
	return n
}

func (n *StringEqualNode) Init() {
	n.initBase(10.0, costDenseScan)
	n.hasIndex = false
	if len(n.needleList) == 0 && !n.valueNull && n.Tbl != nil {
		if ix := n.Tbl.SearchIndex(n.CondCol); ix != nil {
			n.hasIndex = true
			n.DT = costIndexed
			switch res := ix.FindAllNoCopy(n.value); res.Kind {
			case table.FindResultSingle:
				n.iter.reset([]core.ObjKey{res.Key})
			case table.FindResultColumn:
				n.iter.reset(res.Keys[res.Start:res.End])
			default:
				n.iter.reset(nil)
			}
		}
	}
}

func (n *StringEqualNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, &n.sleaf)
}

// CanConsume reports whether other can be folded into this node's needle
// set. Combining loses to the index when one is present: with N rows and
// M conditions an index probe is O(log N · M) while the combined scan is
// O(N).
func (n *StringEqualNode) CanConsume(other *StringEqualNode) bool {
	return n.CondCol == other.CondCol &&
		!n.valueNull && !other.valueNull &&
		len(other.needleList) == 0 &&
		(n.Tbl == nil || !n.Tbl.HasSearchIndex(n.CondCol))
}

// Consume folds other's needle into this node.
func (n *StringEqualNode) Consume(other *StringEqualNode) {
	if len(n.needleList) == 0 {
		n.needleList = append(n.needleList, n.value)
		n.needles = map[string]struct{}{n.value: {}}
	}
	if _, ok := n.needles[other.value]; !ok {
		n.needleList = append(n.needleList, other.value)
		n.needles[other.value] = struct{}{}
	}
}

// EvalTri tests membership in the needle set, or plain equality when no
// conditions were coalesced.
func (n *StringEqualNode) EvalTri(row int) Tri {
	if len(n.needleList) == 0 {
		return n.stringNodeBase.EvalTri(row)
	}
	if n.sleaf.IsNull(row) {
		return TriUnknown
	}
	_, ok := n.needles[n.sleaf.Get(row)]
	return triOf(ok)
}

func (n *StringEqualNode) FindFirstLocal(start, end int) int {
	if n.hasIndex {
		return n.iter.findFirstLocal(n.Cluster, start, end)
	}
	if len(n.needleList) == 0 {
		if n.valueNull {
			return n.scan(start, end)
		}
		return n.sleaf.FindFirst(n.value, start, end)
	}
	if len(n.needleList) <= needleSetLinearMax {
		for i := start; i < end; i++ {
			if n.sleaf.IsNull(i) {
				continue
			}
			cand := n.sleaf.Get(i)
			for _, needle := range n.needleList {
				if cand == needle {
					return i
				}
			}
		}
		return core.NotFound
	}
	for i := start; i < end; i++ {
		if n.sleaf.IsNull(i) {
			continue
		}
		if _, ok := n.needles[n.sleaf.Get(i)]; ok {
			return i
		}
	}
	return core.NotFound
}

func (n *StringEqualNode) HasSearchIndex() bool { return n.hasIndex }

func (n *StringEqualNode) IndexBasedAggregate(limit int, fn func(table.Obj) bool) int {
	return indexAggregate(n.Tbl, n.iter.keys, limit, fn)
}

func (n *StringEqualNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *StringEqualNode) Describe(st *DescribeState) string {
	if len(n.needleList) == 0 {
		return n.stringNodeBase.Describe(st)
	}
	col := st.ColumnName(n.CondCol)
	var sb strings.Builder
	sb.WriteString("(")
	for i, needle := range n.needleList {
		if i > 0 {
			sb.WriteString(" or ")
		}
		sb.WriteString(col)
		sb.WriteString(" == ")
		sb.WriteString(strconv.Quote(needle))
	}
	sb.WriteString(")")
	return sb.String()
}

func (n *StringEqualNode) Clone() Node {
	out := *n
	out.Base = n.Base.cloneBase()
	out.iter = indexIterator{}
	out.needleList = append([]string(nil), n.needleList...)
	if n.needles != nil {
		out.needles = make(map[string]struct{}, len(n.needles))
		for k := range n.needles {
			out.needles[k] = struct{}{}
		}
	}
	return &out
}

// CoalesceEquals folds sibling case-sensitive equality conditions on the
// same unindexed string column into the first one's needle set, returning
// the possibly shortened chain root. The folded conditions then match as
// set membership: a row matches when its value equals any of the needles.
func CoalesceEquals(root Node) Node {
	var chain []Node
	for cur := root; cur != nil; cur = cur.base().Child {
		chain = append(chain, cur)
	}
	kept := chain[:0]
	for _, n := range chain {
		other, ok := n.(*StringEqualNode)
		if ok {
			consumed := false
			for _, prev := range kept {
				if first, ok := prev.(*StringEqualNode); ok && first.CanConsume(other) {
					first.Consume(other)
					consumed = true
					break
				}
			}
			if consumed {
				continue
			}
		}
		kept = append(kept, n)
	}
	for i, n := range kept {
		if i+1 < len(kept) {
			n.base().Child = kept[i+1]
		} else {
			n.base().Child = nil
		}
	}
	return kept[0]
}
