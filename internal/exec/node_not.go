package exec

import (
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// NotNode matches rows where its subtree definitely does not hold
// (unknown is excluded, so negating a comparison that skips nulls also
// skips nulls).
//
// Negation is expensive: every probed row costs a full subtree
// evaluation, and AND composition probes many adjacent windows. The node
// therefore caches the one contiguous range it has already evaluated,
// together with the first match inside it, and merges each incoming probe
// range into the cache along the five overlap cases.
type NotNode struct {
	Base
	Condition Node

	knownStart   int
	knownEnd     int
	firstInKnown int
}

// NewNotNode creates a negation of the given subtree.
func NewNotNode(condition Node) *NotNode {
	return &NotNode{Condition: condition}
}

func (n *NotNode) Init() {
	n.initBase(10.0, costExpression)
	n.resetKnown()
	if n.Condition != nil {
		n.Condition.Init()
		GatherChildren(n.Condition)
	}
}

func (n *NotNode) resetKnown() {
	n.knownStart = 0
	n.knownEnd = 0
	n.firstInKnown = core.NotFound
}

func (n *NotNode) SetTable(t *table.Table) {
	n.setTableBase(t)
	if n.Condition != nil {
		n.Condition.SetTable(t)
	}
}

func (n *NotNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	// Rows are cluster-local; the cache does not survive a new cluster.
	n.resetKnown()
	if n.Condition != nil {
		n.Condition.SetCluster(c)
	}
}

// evaluateAt reports whether the subtree is definitely false at the row.
func (n *NotNode) evaluateAt(row int) bool {
	return ChainTri(n.Condition, row) == TriFalse
}

// EvalTri is the Kleene negation of the subtree.
func (n *NotNode) EvalTri(row int) Tri {
	return triNot(ChainTri(n.Condition, row))
}

func (n *NotNode) updateKnown(start, end, first int) {
	n.knownStart = start
	n.knownEnd = end
	n.firstInKnown = first
}

func (n *NotNode) findFirstLoop(start, end int) int {
	for i := start; i < end; i++ {
		if n.evaluateAt(i) {
			return i
		}
	}
	return core.NotFound
}

// FindFirstLocal dispatches on how [start,end) relates to the known
// range.
func (n *NotNode) FindFirstLocal(start, end int) int {
	switch {
	case start <= n.knownStart && end >= n.knownEnd:
		return n.findFirstCoversKnown(start, end)
	case start >= n.knownStart && end <= n.knownEnd:
		return n.findFirstCoveredByKnown(start, end)
	case start < n.knownStart && end >= n.knownStart:
		return n.findFirstOverlapLower(start, end)
	case start <= n.knownEnd && end > n.knownEnd:
		return n.findFirstOverlapUpper(start, end)
	default: // start > knownEnd || end < knownStart
		return n.findFirstNoOverlap(start, end)
	}
}

// findFirstCoversKnown handles [   ######   ]: the probe range covers the
// known range.
func (n *NotNode) findFirstCoversKnown(start, end int) int {
	result := n.findFirstLoop(start, n.knownStart)
	if result != core.NotFound {
		n.updateKnown(start, n.knownEnd, result)
		return result
	}
	if n.firstInKnown != core.NotFound {
		result = n.firstInKnown
		n.updateKnown(start, n.knownEnd, result)
		return result
	}
	result = n.findFirstLoop(n.knownEnd, end)
	n.updateKnown(start, end, result)
	return result
}

// findFirstCoveredByKnown handles ###[#####]###: the known range covers
// the probe range.
func (n *NotNode) findFirstCoveredByKnown(start, end int) int {
	if n.firstInKnown != core.NotFound {
		if n.firstInKnown >= end {
			return core.NotFound
		}
		if n.firstInKnown >= start {
			return n.firstInKnown
		}
	}
	// The first known match is before start; the cache cannot answer.
	return n.findFirstLoop(start, end)
}

// findFirstOverlapLower handles [   ###]#####: partial overlap at the
// lower end.
func (n *NotNode) findFirstOverlapLower(start, end int) int {
	result := n.findFirstLoop(start, n.knownStart)
	if result == core.NotFound {
		result = n.firstInKnown
	}
	n.updateKnown(start, n.knownEnd, result)
	if result != core.NotFound && result < end {
		return result
	}
	return core.NotFound
}

// findFirstOverlapUpper handles ####[###   ]: partial overlap at the
// upper end.
func (n *NotNode) findFirstOverlapUpper(start, end int) int {
	if n.firstInKnown != core.NotFound {
		if n.firstInKnown >= start {
			n.updateKnown(n.knownStart, end, n.firstInKnown)
			return n.firstInKnown
		}
		result := n.findFirstLoop(start, end)
		n.updateKnown(n.knownStart, end, n.firstInKnown)
		return result
	}
	result := n.findFirstLoop(n.knownEnd, end)
	n.updateKnown(n.knownStart, end, result)
	return result
}

// findFirstNoOverlap handles ### [   ] and [   ] ###: disjoint ranges.
// A larger probe range replaces the cache entirely.
func (n *NotNode) findFirstNoOverlap(start, end int) int {
	result := n.findFirstLoop(start, end)
	if end-start > n.knownEnd-n.knownStart {
		n.updateKnown(start, end, result)
	}
	return result
}

func (n *NotNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *NotNode) Describe(st *DescribeState) string {
	if n.Condition == nil {
		return "!()"
	}
	return "!(" + DescribeExpression(n.Condition, st) + ")"
}

func (n *NotNode) Validate() string {
	if n.Condition == nil {
		return "Missing argument to Not"
	}
	if msg := n.Condition.Validate(); msg != "" {
		return msg
	}
	return n.Base.Validate()
}

func (n *NotNode) Clone() Node {
	out := &NotNode{Base: n.Base.cloneBase()}
	if n.Condition != nil {
		out.Condition = n.Condition.Clone()
	}
	out.resetKnown()
	return out
}
