package tessera

import (
	"github.com/tessera-db/tessera/internal/exec"
	"github.com/tessera-db/tessera/table"
)

type groupState uint8

const (
	groupDefault groupState = iota
	groupOrCondition
	groupOrConditionChildren
)

// queryGroup is one frame of the builder's group stack.
type queryGroup struct {
	rootNode   exec.Node
	state      groupState
	pendingNot bool
}

// Query is a predicate tree under construction plus the executor that
// evaluates it. Builder operations mutate and return the same query so
// calls chain; the first builder error is recorded and reported by
// Validate and the terminal operations.
//
// A query holds a read snapshot (its table) and owns its predicate tree
// exclusively. Use Clone to evaluate the same predicates concurrently.
type Query struct {
	tbl    *table.Table
	view   *View
	groups []queryGroup
	errStr string
	err    error
	cfg    exec.Config
	logger *Logger
}

// NewQuery starts an empty query over all rows of tbl.
func NewQuery(tbl *table.Table, opts ...Option) *Query {
	q := &Query{
		tbl:    tbl,
		groups: make([]queryGroup, 1),
		cfg:    defaultConfig(),
		logger: NoopLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NewQueryOnView starts an empty query over the rows of a view.
func NewQueryOnView(v *View, opts ...Option) *Query {
	q := NewQuery(v.tbl, opts...)
	q.view = v
	return q
}

// Table returns the base table.
func (q *Query) Table() *table.Table { return q.tbl }

func (q *Query) currentGroup() *queryGroup {
	return &q.groups[len(q.groups)-1]
}

func (q *Query) rootNode() exec.Node {
	return q.groups[0].rootNode
}

// HasConditions reports whether any condition was added.
func (q *Query) HasConditions() bool {
	return q.rootNode() != nil
}

func (q *Query) recordError(s string, err error) {
	if q.errStr == "" {
		q.errStr = s
		q.err = err
	}
}

// addNode attaches a predicate node according to the current group state.
func (q *Query) addNode(n exec.Node) {
	if q.tbl != nil {
		n.SetTable(q.tbl)
	}
	cg := q.currentGroup()
	or, isOr := cg.rootNode.(*exec.OrNode)
	switch {
	case cg.state == groupOrCondition && isOr:
		or.AddCondition(n)
		cg.state = groupOrConditionChildren
	case cg.state == groupOrConditionChildren && isOr:
		if last := or.LastCondition(); last == nil {
			or.SetLastCondition(n)
		} else {
			exec.AddChild(last, n)
		}
	default:
		if cg.rootNode == nil {
			cg.rootNode = n
		} else {
			exec.AddChild(cg.rootNode, n)
		}
	}
	q.handlePendingNot()
}

// Group opens a nested group; conditions added until EndGroup form one
// term of the enclosing level.
func (q *Query) Group() *Query {
	q.groups = append(q.groups, queryGroup{})
	return q
}

// EndGroup closes the innermost group. Closing the outermost frame
// records a balance error.
func (q *Query) EndGroup() *Query {
	if len(q.groups) < 2 {
		q.recordError("Unbalanced group", ErrUnbalancedGroup)
		return q
	}
	endRoot := q.currentGroup().rootNode
	q.groups = q.groups[:len(q.groups)-1]
	if endRoot != nil {
		q.addNode(endRoot)
	} else {
		q.handlePendingNot()
	}
	return q
}

// Not negates the next term. It opens an implicit group that closes as
// soon as the term is complete.
func (q *Query) Not() *Query {
	q.Group()
	q.currentGroup().pendingNot = true
	return q
}

// handlePendingNot closes the implicit group opened by Not once it has
// received its term, reparenting the term under a NotNode.
func (q *Query) handlePendingNot() {
	cg := q.currentGroup()
	if len(q.groups) > 1 && cg.pendingNot {
		root := cg.rootNode
		cg.rootNode = nil
		cg.state = groupDefault
		cg.pendingNot = false
		q.addNode(exec.NewNotNode(root))
		q.EndGroup()
	}
}

// Or turns the current group into a disjunction; the following term
// starts a new branch.
func (q *Query) Or() *Query {
	cg := q.currentGroup()
	if cg.state != groupOrConditionChildren {
		// Reparent the group's conditions as the first branch.
		root := cg.rootNode
		cg.rootNode = nil
		cg.state = groupDefault
		q.addNode(exec.NewOrNode(root))
	}
	q.currentGroup().state = groupOrCondition
	return q
}

// AndQuery appends all conditions of another query, ANDed in.
func (q *Query) AndQuery(other *Query) *Query {
	if other.errStr != "" {
		q.recordError(other.errStr, other.err)
	}
	if root := other.rootNode(); root != nil {
		q.addNode(root.Clone())
	}
	return q
}

// OrOf combines two queries over the same table into (a) or (b).
func OrOf(a, b *Query) *Query {
	q := NewQuery(a.tbl)
	q.cfg = a.cfg
	q.Group()
	q.AndQuery(a)
	q.Or()
	q.AndQuery(b)
	q.EndGroup()
	return q
}

// AndOf combines two queries over the same table into (a) and (b).
func AndOf(a, b *Query) *Query {
	q := NewQuery(a.tbl)
	q.cfg = a.cfg
	return q.AndQuery(a).AndQuery(b)
}

// NotOf negates a whole query. Negating a query with no conditions is an
// error.
func NotOf(a *Query) *Query {
	q := NewQuery(a.tbl)
	q.cfg = a.cfg
	if !a.HasConditions() {
		q.recordError("Negation of an empty query is not supported", ErrEmptyNegation)
		return q
	}
	q.Not()
	q.AndQuery(a)
	return q
}

// Clone produces an independent predicate tree sharing the table
// snapshot.
func (q *Query) Clone() *Query {
	out := &Query{
		tbl:    q.tbl,
		view:   q.view,
		errStr: q.errStr,
		err:    q.err,
		cfg:    q.cfg,
		logger: q.logger,
		groups: make([]queryGroup, len(q.groups)),
	}
	for i, g := range q.groups {
		out.groups[i] = queryGroup{state: g.state, pendingNot: g.pendingNot}
		if g.rootNode != nil {
			out.groups[i].rootNode = g.rootNode.Clone()
		}
	}
	return out
}

// Validate returns the first recorded builder error, a balance error for
// a still-open group, or an engine-detected tree error. An empty string
// means the query is well-formed.
func (q *Query) Validate() string {
	if len(q.groups) == 0 {
		return ""
	}
	if q.errStr != "" {
		return q.errStr
	}
	if len(q.groups) > 1 {
		return "Missing end group"
	}
	if root := q.rootNode(); root != nil {
		return root.Validate()
	}
	return ""
}

// GetDescription serializes the predicate tree in infix form. An empty
// query serializes to TRUEPREDICATE. Queries constrained by a view cannot
// be serialized.
func (q *Query) GetDescription() (string, error) {
	if q.view != nil {
		return "", ErrSerialisationUnsupported
	}
	root := q.rootNode()
	if root == nil {
		return "TRUEPREDICATE", nil
	}
	st := &exec.DescribeState{Tbl: q.tbl}
	return exec.DescribeExpression(root, st), nil
}

// init prepares the tree for execution: coalesces sibling string
// equalities, resets statistics and flattens sibling lists.
func (q *Query) init() (exec.Node, error) {
	if q.tbl == nil {
		return nil, ErrDetached
	}
	if q.err != nil {
		return nil, q.err
	}
	if q.errStr != "" {
		return nil, ErrInvalidQuery
	}
	if len(q.groups) != 1 {
		return nil, ErrUnbalancedGroup
	}
	if q.view != nil {
		if err := q.view.SyncIfNeeded(); err != nil {
			return nil, err
		}
	}
	root := q.rootNode()
	if root == nil {
		return nil, nil
	}
	root = exec.CoalesceEquals(root)
	q.groups[0].rootNode = root
	root.SetTable(q.tbl)
	root.Init()
	exec.GatherChildren(root)
	if msg := root.Validate(); msg != "" {
		q.recordError(msg, ErrInvalidQuery)
		return nil, ErrInvalidQuery
	}
	return root, nil
}

// evalObject tests a single object against the whole tree.
func (q *Query) evalObject(root exec.Node, obj table.Obj) bool {
	if root == nil {
		return true
	}
	return exec.MatchObj(root, obj)
}

func unlimited(limit int) int {
	if limit < 0 {
		return int(^uint(0) >> 1)
	}
	return limit
}
