package exec

import (
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// Expression is a compiled row predicate supplied from outside the engine
// (the expression compiler lives above this package). Init returns the
// expression's per-probe cost estimate.
type Expression interface {
	Init() float64
	SetTable(tbl *table.Table)
	SetCluster(c *table.Cluster)
	FindFirst(start, end int) int
	Description() string
	Clone() Expression
}

// ExpressionNode adapts an Expression into the predicate tree.
type ExpressionNode struct {
	Base
	expr Expression
}

// NewExpressionNode wraps a compiled expression.
func NewExpressionNode(expr Expression) *ExpressionNode {
	n := &ExpressionNode{expr: expr}
	n.DD = bootstrapDD
	n.DT = costExpression
	return n
}

func (n *ExpressionNode) Init() {
	n.initBase(bootstrapDD, costExpression)
	if n.expr != nil {
		n.DT = n.expr.Init()
	}
}

func (n *ExpressionNode) SetTable(t *table.Table) {
	n.setTableBase(t)
	if n.expr != nil {
		n.expr.SetTable(t)
	}
}

func (n *ExpressionNode) SetCluster(c *table.Cluster) {
	n.setClusterBase(c)
	if n.expr != nil {
		n.expr.SetCluster(c)
	}
}

func (n *ExpressionNode) FindFirstLocal(start, end int) int {
	return n.expr.FindFirst(start, end)
}

func (n *ExpressionNode) EvalTri(row int) Tri {
	return evalTriDefault(n, row)
}

func (n *ExpressionNode) AggregateLocal(st QueryState, start, end, localLimit int, source table.Leaf) int {
	return aggregateLocalDefault(n, st, start, end, localLimit, source)
}

func (n *ExpressionNode) Describe(*DescribeState) string {
	if n.expr == nil {
		return "empty expression"
	}
	return n.expr.Description()
}

func (n *ExpressionNode) Clone() Node {
	out := &ExpressionNode{Base: n.Base.cloneBase()}
	if n.expr != nil {
		out.expr = n.expr.Clone()
	}
	return out
}

// FuncExpression is the simplest Expression: a Go predicate over the
// object accessor. It carries a fixed cost estimate.
type FuncExpression struct {
	Fn   func(obj table.Obj) bool
	Desc string

	tbl     *table.Table
	cluster *table.Cluster
}

// Init returns the expression probe cost.
func (e *FuncExpression) Init() float64 { return costExpression }

// SetTable binds the base table.
func (e *FuncExpression) SetTable(tbl *table.Table) { e.tbl = tbl }

// SetCluster binds the current cluster.
func (e *FuncExpression) SetCluster(c *table.Cluster) { e.cluster = c }

// FindFirst scans [start,end) for the next row the predicate accepts.
func (e *FuncExpression) FindFirst(start, end int) int {
	for i := start; i < end; i++ {
		if e.Fn(e.tbl.Object(e.cluster.RealKey(i))) {
			return i
		}
	}
	return core.NotFound
}

// Description names the expression in query descriptions.
func (e *FuncExpression) Description() string {
	if e.Desc != "" {
		return e.Desc
	}
	return "expression"
}

// Clone shares the predicate function; bindings are reset.
func (e *FuncExpression) Clone() Expression {
	return &FuncExpression{Fn: e.Fn, Desc: e.Desc}
}
