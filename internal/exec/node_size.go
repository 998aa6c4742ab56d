package exec

import (
	"fmt"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// SizeNode applies a comparison to the length of a string or binary cell.
type SizeNode struct {
	Base
	op   Op
	size int64

	strLeaf table.StringLeaf
	binLeaf table.BinaryLeaf
	isStr   bool
}

// NewSizeNode creates a length comparison node over a string or binary
// column.
func NewSizeNode(col core.ColKey, op Op, size int64) *SizeNode {
	n := &SizeNode{op: op, size: size, isStr: col.Type() == core.TypeString}
	n.CondCol = col
	return n
}

func (n *SizeNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *SizeNode) SetTable(t *table.Table) { n.setTableBase(t) }

func (n *SizeNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	if n.isStr {
		_ = c.InitLeaf(n.CondCol, &n.strLeaf)
	} else {
		_ = c.InitLeaf(n.CondCol, &n.binLeaf)
	}
}

// EvalTri compares the cell length; null cells are unknown.
func (n *SizeNode) EvalTri(row int) Tri {
	var length int64
	if n.isStr {
		if n.strLeaf.IsNull(row) {
			return TriUnknown
		}
		length = int64(len(n.strLeaf.Get(row)))
	} else {
		if n.binLeaf.IsNull(row) {
			return TriUnknown
		}
		length = int64(len(n.binLeaf.Get(row)))
	}
	return evalScalar(n.op, core.Int(length), core.Int(n.size))
}

func (n *SizeNode) FindFirstLocal(start, end int) int {
	for i := start; i < end; i++ {
		n.probes++
		if n.EvalTri(i) == TriTrue {
			n.matches++
			return i
		}
	}
	return core.NotFound
}

func (n *SizeNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *SizeNode) Describe(st *DescribeState) string {
	return fmt.Sprintf("%s.@size %s %d", st.ColumnName(n.CondCol), n.op, n.size)
}

func (n *SizeNode) Clone() Node {
	out := *n
	out.Base = n.Base.cloneBase()
	return &out
}

// SizeListNode applies a comparison to the element count of a list cell.
type SizeListNode struct {
	Base
	op   Op
	size int64

	listLeaf     table.ListLeaf
	linkListLeaf table.LinkListLeaf
	isLinks      bool
}

// NewSizeListNode creates a length comparison node over a list column.
func NewSizeListNode(col core.ColKey, op Op, size int64) *SizeListNode {
	n := &SizeListNode{op: op, size: size, isLinks: col.Type() == core.TypeLink}
	n.CondCol = col
	return n
}

func (n *SizeListNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *SizeListNode) SetTable(t *table.Table) { n.setTableBase(t) }

func (n *SizeListNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	if n.isLinks {
		_ = c.InitLeaf(n.CondCol, &n.linkListLeaf)
	} else {
		_ = c.InitLeaf(n.CondCol, &n.listLeaf)
	}
}

// EvalTri compares the list length.
func (n *SizeListNode) EvalTri(row int) Tri {
	var length int64
	if n.isLinks {
		length = int64(n.linkListLeaf.Len(row))
	} else {
		length = int64(n.listLeaf.Len(row))
	}
	return evalScalar(n.op, core.Int(length), core.Int(n.size))
}

func (n *SizeListNode) FindFirstLocal(start, end int) int {
	for i := start; i < end; i++ {
		n.probes++
		if n.EvalTri(i) == TriTrue {
			n.matches++
			return i
		}
	}
	return core.NotFound
}

func (n *SizeListNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *SizeListNode) Describe(st *DescribeState) string {
	return fmt.Sprintf("%s.@size %s %d", st.ColumnName(n.CondCol), n.op, n.size)
}

func (n *SizeListNode) Clone() Node {
	out := *n
	out.Base = n.Base.cloneBase()
	return &out
}
