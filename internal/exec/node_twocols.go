package exec

import (
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// TwoColumnsNode compares two columns of the same type row by row.
type TwoColumnsNode struct {
	Base
	col2  core.ColKey
	leaf1 table.Leaf
	leaf2 table.Leaf
	op    Op
}

// NewTwoColumnsNode creates a column-to-column comparison node.
func NewTwoColumnsNode(col1, col2 core.ColKey, op Op) *TwoColumnsNode {
	n := &TwoColumnsNode{col2: col2, op: op}
	n.CondCol = col1
	n.leaf1 = table.NewLeaf(col1.Type(), 0)
	n.leaf2 = table.NewLeaf(col2.Type(), 0)
	return n
}

func (n *TwoColumnsNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *TwoColumnsNode) SetTable(t *table.Table) { n.setTableBase(t) }

func (n *TwoColumnsNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	_ = c.InitLeaf(n.CondCol, n.leaf1)
	_ = c.InitLeaf(n.col2, n.leaf2)
}

// EvalTri compares the two cells; a null left cell against a non-null
// right cell is unknown, like a null cell against a literal.
func (n *TwoColumnsNode) EvalTri(row int) Tri {
	return evalScalar(n.op, n.leaf1.GetMixed(row), n.leaf2.GetMixed(row))
}

func (n *TwoColumnsNode) FindFirstLocal(start, end int) int {
	for i := start; i < end; i++ {
		n.probes++
		if n.EvalTri(i) == TriTrue {
			n.matches++
			return i
		}
	}
	return core.NotFound
}

func (n *TwoColumnsNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *TwoColumnsNode) Describe(st *DescribeState) string {
	return st.ColumnName(n.CondCol) + " " + n.op.String() + " " + st.ColumnName(n.col2)
}

func (n *TwoColumnsNode) Clone() Node {
	out := *n
	out.Base = n.Base.cloneBase()
	out.leaf1 = table.NewLeaf(n.CondCol.Type(), 0)
	out.leaf2 = table.NewLeaf(n.col2.Type(), 0)
	return &out
}
