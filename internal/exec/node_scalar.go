package exec

import (
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// scalarNode is the shared shape of all single-column comparison nodes: a
// bound leaf, a needle value and a comparison operator.
type scalarNode struct {
	Base
	leaf  table.Leaf
	value core.Mixed
	op    Op
}

func (n *scalarNode) SetTable(t *table.Table) { n.setTableBase(t) }

// EvalTri compares the cell at row against the needle.
func (n *scalarNode) EvalTri(row int) Tri {
	return evalScalar(n.op, n.leaf.GetMixed(row), n.value)
}

// scan is the generic dense loop: next row evaluating true.
func (n *scalarNode) scan(start, end int) int {
	for i := start; i < end; i++ {
		n.probes++
		if n.EvalTri(i) == TriTrue {
			n.matches++
			return i
		}
	}
	return core.NotFound
}

// FindFirstLocal returns the next row in [start,end) where the comparison
// holds.
func (n *scalarNode) FindFirstLocal(start, end int) int {
	return n.scan(start, end)
}

func (n *scalarNode) Describe(st *DescribeState) string {
	return st.ColumnName(n.CondCol) + " " + n.op.String() + " " + n.value.String()
}

func (n *scalarNode) cloneScalar() scalarNode {
	out := *n
	out.Base = n.Base.cloneBase()
	out.leaf = table.NewLeaf(n.CondCol.Type(), 0)
	return out
}

// IntegerNode conditions on a 64-bit integer column. Equality rides the
// leaf's contiguous find loop.
type IntegerNode struct {
	scalarNode
	ileaf table.IntLeaf
}

// NewIntegerNode creates an integer comparison node.
func NewIntegerNode(col core.ColKey, op Op, v core.Mixed) *IntegerNode {
	n := &IntegerNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = &n.ileaf
	return n
}

func (n *IntegerNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *IntegerNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, &n.ileaf)
}

func (n *IntegerNode) FindFirstLocal(start, end int) int {
	if n.op == OpEqual && !n.value.IsNull() {
		return n.ileaf.FindFirst(n.value.I64, start, end)
	}
	return n.scan(start, end)
}

func (n *IntegerNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *IntegerNode) Clone() Node {
	out := &IntegerNode{scalarNode: n.cloneScalar()}
	out.leaf = &out.ileaf
	return out
}

// FloatDoubleNode conditions on a 32- or 64-bit float column; the leaf
// width follows the column type.
type FloatDoubleNode struct {
	scalarNode
}

// NewFloatDoubleNode creates a float comparison node.
func NewFloatDoubleNode(col core.ColKey, op Op, v core.Mixed) *FloatDoubleNode {
	n := &FloatDoubleNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = table.NewLeaf(col.Type(), 0)
	return n
}

func (n *FloatDoubleNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *FloatDoubleNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf)
}

func (n *FloatDoubleNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *FloatDoubleNode) Clone() Node {
	return &FloatDoubleNode{scalarNode: n.cloneScalar()}
}

// BoolNode conditions on a boolean column.
type BoolNode struct {
	scalarNode
	bleaf table.BoolLeaf
}

// NewBoolNode creates a boolean comparison node.
func NewBoolNode(col core.ColKey, op Op, v core.Mixed) *BoolNode {
	n := &BoolNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = &n.bleaf
	return n
}

func (n *BoolNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *BoolNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, &n.bleaf)
}

func (n *BoolNode) FindFirstLocal(start, end int) int {
	if n.op == OpEqual && !n.value.IsNull() {
		return n.bleaf.FindFirst(n.value.B, start, end)
	}
	return n.scan(start, end)
}

func (n *BoolNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *BoolNode) Clone() Node {
	out := &BoolNode{scalarNode: n.cloneScalar()}
	out.leaf = &out.bleaf
	return out
}

// TimestampNode conditions on a timestamp column.
type TimestampNode struct {
	scalarNode
}

// NewTimestampNode creates a timestamp comparison node.
func NewTimestampNode(col core.ColKey, op Op, v core.Mixed) *TimestampNode {
	n := &TimestampNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = table.NewLeaf(core.TypeTimestamp, 0)
	return n
}

func (n *TimestampNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *TimestampNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf)
}

func (n *TimestampNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *TimestampNode) Clone() Node {
	return &TimestampNode{scalarNode: n.cloneScalar()}
}

// DecimalNode conditions on a decimal column.
type DecimalNode struct {
	scalarNode
}

// NewDecimalNode creates a decimal comparison node.
func NewDecimalNode(col core.ColKey, op Op, v core.Mixed) *DecimalNode {
	n := &DecimalNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = table.NewLeaf(core.TypeDecimal, 0)
	return n
}

func (n *DecimalNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *DecimalNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf)
}

func (n *DecimalNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *DecimalNode) Clone() Node {
	return &DecimalNode{scalarNode: n.cloneScalar()}
}

// ObjectIDNode conditions on an object-id column.
type ObjectIDNode struct {
	scalarNode
}

// NewObjectIDNode creates an object-id comparison node.
func NewObjectIDNode(col core.ColKey, op Op, v core.Mixed) *ObjectIDNode {
	n := &ObjectIDNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = table.NewLeaf(core.TypeObjectID, 0)
	return n
}

func (n *ObjectIDNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *ObjectIDNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf)
}

func (n *ObjectIDNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *ObjectIDNode) Clone() Node {
	return &ObjectIDNode{scalarNode: n.cloneScalar()}
}

// StringOrderNode applies an ordered (lexicographic) comparison to a
// string column. Equality goes through StringEqualNode / StringNode
// instead, which know about indexes and case folding.
type StringOrderNode struct {
	scalarNode
}

// NewStringOrderNode creates an ordered string comparison node.
func NewStringOrderNode(col core.ColKey, op Op, v core.Mixed) *StringOrderNode {
	n := &StringOrderNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = table.NewLeaf(core.TypeString, 0)
	return n
}

func (n *StringOrderNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *StringOrderNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf)
}

func (n *StringOrderNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *StringOrderNode) Clone() Node {
	return &StringOrderNode{scalarNode: n.cloneScalar()}
}

// BinaryNode conditions on a binary column.
type BinaryNode struct {
	scalarNode
}

// NewBinaryNode creates a binary comparison node.
func NewBinaryNode(col core.ColKey, op Op, v core.Mixed) *BinaryNode {
	n := &BinaryNode{}
	n.CondCol = col
	n.op = op
	n.value = v
	n.leaf = table.NewLeaf(core.TypeBinary, 0)
	return n
}

func (n *BinaryNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *BinaryNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf)
}

func (n *BinaryNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *BinaryNode) Clone() Node {
	return &BinaryNode{scalarNode: n.cloneScalar()}
}
