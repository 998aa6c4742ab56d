package exec

import (
	"math"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// Stopped is returned by AggregateLocal when the state requested an early
// stop. It compares greater than any row range end, so range loops exit.
const Stopped = math.MaxInt

// Node is one predicate of the query tree. Nodes on the same AND level are
// linked through their Child pointer; Init/gathering flattens the chain
// into per-node sibling slices used by the planner and the verification
// loop.
type Node interface {
	// Init resets statistics and per-execution caches, recursing into the
	// AND chain and any subtrees.
	Init()
	// SetTable binds the base table, recursing through the chain.
	SetTable(tbl *table.Table)
	// SetCluster binds the current cluster and rebinds leaves, recursing
	// through the chain.
	SetCluster(c *table.Cluster)
	// FindFirstLocal returns the next row in [start,end) where this
	// node's own condition holds, or NotFound.
	FindFirstLocal(start, end int) int
	// EvalTri evaluates the node's own condition at one row in
	// three-valued logic. The cluster must be bound.
	EvalTri(row int) Tri
	// AggregateLocal drives the scan in this node's loop until it has
	// delivered localLimit verified matches or reached end. It returns
	// the next row to resume from, or Stopped.
	AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int
	// Cost is the planner score; lower drives the scan.
	Cost() float64
	// HasSearchIndex reports whether the node can iterate a search index.
	HasSearchIndex() bool
	// IndexBasedAggregate yields index matches in key order, calling fn
	// for each; fn returns whether the object was accepted, and
	// iteration stops after limit acceptances. Returns the acceptance
	// count.
	IndexBasedAggregate(limit int, fn func(table.Obj) bool) int
	// Describe renders the node's own condition.
	Describe(st *DescribeState) string
	// Validate returns a non-empty error string for malformed subtrees.
	Validate() string
	// Clone deep-copies the node and its subtrees; tables are shared. The
	// clone is bound to a cluster by SetCluster before it is evaluated.
	Clone() Node

	base() *Base
}

var (
	_ Node = (*IntegerNode)(nil)
	_ Node = (*BoolNode)(nil)
	_ Node = (*FloatDoubleNode)(nil)
	_ Node = (*TimestampNode)(nil)
	_ Node = (*DecimalNode)(nil)
	_ Node = (*ObjectIDNode)(nil)
	_ Node = (*BinaryNode)(nil)
	_ Node = (*StringNode)(nil)
	_ Node = (*StringEqualNode)(nil)
	_ Node = (*StringOrderNode)(nil)
	_ Node = (*TwoColumnsNode)(nil)
	_ Node = (*LinksToNode)(nil)
	_ Node = (*SizeNode)(nil)
	_ Node = (*SizeListNode)(nil)
	_ Node = (*OrNode)(nil)
	_ Node = (*NotNode)(nil)
	_ Node = (*ExpressionNode)(nil)
)

// Base carries the state shared by every predicate node.
type Base struct {
	// Child is the next sibling in the AND chain.
	Child Node
	// children is the gathered chain, self first.
	children []Node

	// DD is the average row distance between matches; DT the average
	// cost per probe. Cost() combines them.
	DD, DT float64

	probes  uint64
	matches uint64

	// CondCol is the column the node conditions on, if any.
	CondCol core.ColKey

	Tbl     *table.Table
	Cluster *table.Cluster

	st QueryState
}

func (b *Base) base() *Base { return b }

// Cost is dT + dD: per-probe cost plus expected distance to the next
// match.
func (b *Base) Cost() float64 { return b.DT + b.DD }

// HasSearchIndex is false for all nodes but indexed string equality.
func (b *Base) HasSearchIndex() bool { return false }

// IndexBasedAggregate is a no-op without a search index.
func (b *Base) IndexBasedAggregate(int, func(table.Obj) bool) int { return 0 }

// Validate recurses into the chain.
func (b *Base) Validate() string {
	if b.Child != nil {
		return b.Child.Validate()
	}
	return ""
}

// AddChild appends a node at the end of the AND chain.
func (b *Base) AddChild(n Node) {
	if b.Child == nil {
		b.Child = n
	} else {
		b.Child.base().AddChild(n)
	}
}

// initBase resets statistics and recurses into the chain.
func (b *Base) initBase(dD, dT float64) {
	b.DD, b.DT = dD, dT
	b.probes, b.matches = 0, 0
	b.children = b.children[:0]
	b.st = nil
	if b.Child != nil {
		b.Child.Init()
	}
}

func (b *Base) setTableBase(t *table.Table) {
	b.Tbl = t
	if b.Child != nil {
		b.Child.SetTable(t)
	}
}

func (b *Base) setClusterBase(c *table.Cluster) {
	b.Cluster = c
	if b.Child != nil {
		b.Child.SetCluster(c)
	}
}

// cloneBase copies statistics and the chain; bindings to clusters are
// carried as-is and rebound by the next execution.
func (b *Base) cloneBase() Base {
	out := *b
	out.children = nil
	out.st = nil
	if b.Child != nil {
		out.Child = b.Child.Clone()
	}
	return out
}

// AddChild appends n at the end of parent's AND chain.
func AddChild(parent, n Node) {
	parent.base().AddChild(n)
}

// GatherChildren flattens the AND chain below root into each node's
// sibling slice, self first, preserving chain order for the rest.
func GatherChildren(root Node) {
	var v []Node
	gather(root, &v)
}

func gather(n Node, v *[]Node) {
	b := n.base()
	i := len(*v)
	*v = append(*v, n)
	if b.Child != nil {
		gather(b.Child, v)
	}
	b.children = b.children[:0]
	b.children = append(b.children, n)
	for j, m := range *v {
		if j != i {
			b.children = append(b.children, m)
		}
	}
}

// FindFirst returns the first row in [start,end) matching every node of
// the chain, or NotFound. Conditions are cycled round-robin: whenever one
// of them advances the row pointer, all the others have to re-verify.
func FindFirst(n Node, start, end int) int {
	children := n.base().children
	sz := len(children)
	current := 0
	toTest := sz
	for start < end {
		m := children[current].FindFirstLocal(start, end)
		if m == core.NotFound {
			return core.NotFound
		}
		if m != start {
			toTest = sz
			start = m
		}
		toTest--
		if toTest == 0 {
			return m
		}
		current++
		if current == sz {
			current = 0
		}
	}
	return core.NotFound
}

// MatchObj binds the object's cluster and tests the full chain at its row.
func MatchObj(n Node, obj table.Obj) bool {
	return obj.Evaluate(func(c *table.Cluster, row int) bool {
		n.SetCluster(c)
		return FindFirst(n, row, row+1) != core.NotFound
	})
}

// ChainTri evaluates the AND chain at one row in three-valued logic.
func ChainTri(n Node, row int) Tri {
	out := TriTrue
	for cur := n; cur != nil; cur = cur.base().Child {
		out = triAnd(out, cur.EvalTri(row))
		if out == TriFalse {
			return TriFalse
		}
	}
	return out
}

// evalTriDefault derives a two-valued point evaluation from
// FindFirstLocal for nodes without a null dimension.
func evalTriDefault(n Node, row int) Tri {
	return triOf(n.FindFirstLocal(row, row+1) == row)
}

// aggregateLocalDefault runs the node's tight loop: advance to the next
// own match, verify it against the remaining siblings with single-row
// probes (short-circuiting on the first disagreement), deliver agreed
// rows to the state, and refresh dD before returning.
func aggregateLocalDefault(n Node, st QueryState, start, end, localLimit int, source table.Leaf) int {
	b := n.base()
	b.st = st
	localMatches := 0
	r := start - 1
	for {
		if localMatches == localLimit {
			b.DD = float64(r-start) / (float64(localMatches) + 1.1)
			return r + 1
		}
		r = n.FindFirstLocal(r+1, end)
		if r == core.NotFound {
			b.DD = float64(end-start) / (float64(localMatches) + 1.1)
			return end
		}
		localMatches++

		m := r
		for c := 1; c < len(b.children); c++ {
			m = b.children[c].FindFirstLocal(r, r+1)
			if m != r {
				break
			}
		}
		if m == r {
			var val core.Mixed
			if source != nil {
				val = source.GetMixed(r)
			}
			if !st.Match(r, val) {
				return Stopped
			}
		}
	}
}
