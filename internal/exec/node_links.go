package exec

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// LinksToNode matches rows whose link column points to any of the target
// keys. The target set lives in a roaring bitmap so membership stays O(1)
// however many targets the query names.
type LinksToNode struct {
	Base
	targets    *roaring64.Bitmap
	targetList []core.ObjKey
	isList     bool
	linkLeaf   table.LinkLeaf
	listLeaf   table.LinkListLeaf
}

// NewLinksToNode creates a link membership node.
func NewLinksToNode(col core.ColKey, targets []core.ObjKey) *LinksToNode {
	n := &LinksToNode{
		targets:    roaring64.New(),
		targetList: append([]core.ObjKey(nil), targets...),
		isList:     col.IsList(),
	}
	n.CondCol = col
	for _, k := range targets {
		if !k.IsNull() {
			n.targets.Add(uint64(k))
		}
	}
	return n
}

func (n *LinksToNode) Init() { n.initBase(bootstrapDD, costDenseScan) }

func (n *LinksToNode) SetTable(t *table.Table) { n.setTableBase(t) }

func (n *LinksToNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	if n.isList {
		_ = c.InitLeaf(n.CondCol, &n.listLeaf)
	} else {
		_ = c.InitLeaf(n.CondCol, &n.linkLeaf)
	}
}

// EvalTri reports whether the row links to a target. Unset links simply
// do not match.
func (n *LinksToNode) EvalTri(row int) Tri {
	if n.isList {
		for _, k := range n.listLeaf.Get(row) {
			if n.targets.Contains(uint64(k)) {
				return TriTrue
			}
		}
		return TriFalse
	}
	k := n.linkLeaf.Get(row)
	return triOf(!k.IsNull() && n.targets.Contains(uint64(k)))
}

func (n *LinksToNode) FindFirstLocal(start, end int) int {
	for i := start; i < end; i++ {
		n.probes++
		if n.EvalTri(i) == TriTrue {
			n.matches++
			return i
		}
	}
	return core.NotFound
}

func (n *LinksToNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *LinksToNode) Describe(st *DescribeState) string {
	col := st.ColumnName(n.CondCol)
	if len(n.targetList) == 1 {
		return fmt.Sprintf("%s == O%d", col, n.targetList[0])
	}
	var sb strings.Builder
	sb.WriteString("(")
	for i, k := range n.targetList {
		if i > 0 {
			sb.WriteString(" or ")
		}
		fmt.Fprintf(&sb, "%s == O%d", col, k)
	}
	sb.WriteString(")")
	return sb.String()
}

func (n *LinksToNode) Clone() Node {
	out := *n
	out.Base = n.Base.cloneBase()
	out.targets = n.targets.Clone()
	out.targetList = append([]core.ObjKey(nil), n.targetList...)
	return &out
}
