package exec

import (
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// OrNode evaluates a disjunction of AND-chains. Each branch memoizes its
// last search result so adjacent probe windows, common during AND
// composition, do not rescan the same span.
type OrNode struct {
	Base
	Conditions []Node

	starts   []int
	lasts    []int
	wasMatch []bool
}

// NewOrNode creates a disjunction over the given first branch.
func NewOrNode(first Node) *OrNode {
	return &OrNode{Conditions: []Node{first}}
}

// AddCondition appends a branch root.
func (n *OrNode) AddCondition(root Node) {
	n.Conditions = append(n.Conditions, root)
}

// LastCondition returns the most recently added branch root.
func (n *OrNode) LastCondition() Node {
	return n.Conditions[len(n.Conditions)-1]
}

// SetLastCondition replaces the most recently added branch root.
func (n *OrNode) SetLastCondition(root Node) {
	n.Conditions[len(n.Conditions)-1] = root
}

func (n *OrNode) Init() {
	n.initBase(10.0, costDenseScan)
	sz := len(n.Conditions)
	n.starts = make([]int, sz)
	n.lasts = make([]int, sz)
	n.wasMatch = make([]bool, sz)
	for _, cond := range n.Conditions {
		if cond != nil {
			cond.Init()
			GatherChildren(cond)
		}
	}
}

func (n *OrNode) SetTable(t *table.Table) {
	n.setTableBase(t)
	for _, cond := range n.Conditions {
		if cond != nil {
			cond.SetTable(t)
		}
	}
}

func (n *OrNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	if len(n.starts) != len(n.Conditions) {
		n.starts = make([]int, len(n.Conditions))
		n.lasts = make([]int, len(n.Conditions))
		n.wasMatch = make([]bool, len(n.Conditions))
	}
	for i, cond := range n.Conditions {
		if cond != nil {
			cond.SetCluster(c)
		}
		n.starts[i] = 0
		n.lasts[i] = 0
		n.wasMatch[i] = false
	}
}

// FindFirstLocal returns the smallest row in [start,end) matched by any
// branch. Branch results are cached: a branch whose last hit is still
// ahead of start is not re-searched, and a branch already known to have
// no hit before end is skipped.
func (n *OrNode) FindFirstLocal(start, end int) int {
	if start >= end {
		return core.NotFound
	}
	index := core.NotFound
	for c := range n.Conditions {
		// Out-of-order search; the cached results no longer apply.
		if start < n.starts[c] {
			n.lasts[c] = 0
			n.wasMatch[c] = false
		}
		// Already searched this range and found a match.
		if n.wasMatch[c] && n.lasts[c] >= start {
			if index == core.NotFound || n.lasts[c] < index {
				index = n.lasts[c]
			}
			continue
		}
		// Already searched this range and found no match.
		if n.lasts[c] >= end {
			continue
		}
		fmax := n.lasts[c]
		if start > fmax {
			fmax = start
		}
		f := FindFirst(n.Conditions[c], fmax, end)
		n.starts[c] = start
		if f == core.NotFound {
			n.lasts[c] = end
			n.wasMatch[c] = false
			continue
		}
		n.lasts[c] = f
		n.wasMatch[c] = true
		if index == core.NotFound || f < index {
			index = f
		}
	}
	return index
}

// EvalTri is the Kleene OR over the branches.
func (n *OrNode) EvalTri(row int) Tri {
	out := TriFalse
	for _, cond := range n.Conditions {
		out = triOr(out, ChainTri(cond, row))
		if out == TriTrue {
			return TriTrue
		}
	}
	return out
}

func (n *OrNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *OrNode) Describe(st *DescribeState) string {
	out := "("
	for i, cond := range n.Conditions {
		if i > 0 {
			out += " or "
		}
		if cond != nil {
			out += DescribeExpression(cond, st)
		}
	}
	return out + ")"
}

func (n *OrNode) Validate() string {
	if len(n.Conditions) == 0 || n.Conditions[0] == nil {
		return "Missing left-hand side of or"
	}
	if len(n.Conditions) < 2 {
		return "Missing right-hand side of or"
	}
	for _, cond := range n.Conditions[1:] {
		if cond == nil {
			return "Missing right-hand side of or"
		}
	}
	for _, cond := range n.Conditions {
		if msg := cond.Validate(); msg != "" {
			return msg
		}
	}
	return n.Base.Validate()
}

func (n *OrNode) Clone() Node {
	out := &OrNode{Base: n.Base.cloneBase()}
	for _, cond := range n.Conditions {
		if cond != nil {
			out.Conditions = append(out.Conditions, cond.Clone())
		} else {
			out.Conditions = append(out.Conditions, nil)
		}
	}
	return out
}
