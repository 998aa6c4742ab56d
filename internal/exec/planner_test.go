package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

func TestFindBestNodeStableTies(t *testing.T) {
	tbl, col, cluster := intColumnTable(t, []any{1, 2, 3})
	a := NewIntegerNode(col, OpGreater, core.Int(0))
	b := NewIntegerNode(col, OpLess, core.Int(10))
	a.AddChild(b)
	prepare(tbl, cluster, a)

	// Identical bootstrapped costs; the earliest sibling wins.
	require.Equal(t, a.Cost(), b.Cost())
	assert.Equal(t, 0, FindBestNode(a))

	// A cheaper sibling takes over.
	b.DD = 0.5
	b.DT = 0
	assert.Equal(t, 1, FindBestNode(a))
	assert.Same(t, b, BestChild(a).(*IntegerNode))
}

func TestCostBootstraps(t *testing.T) {
	tbl, col, cluster := intColumnTable(t, []any{1})
	scan := NewIntegerNode(col, OpEqual, core.Int(1))
	prepare(tbl, cluster, scan)
	assert.Equal(t, costDenseScan+bootstrapDD, scan.Cost())

	expr := NewExpressionNode(&FuncExpression{Fn: func(table.Obj) bool { return true }})
	expr.SetTable(tbl)
	expr.Init()
	assert.Equal(t, costExpression+bootstrapDD, expr.Cost())
}

func TestAggregateInternalDeliversAllMatches(t *testing.T) {
	vals := make([]any, 200)
	for i := range vals {
		vals[i] = i % 7
	}
	tbl, col, cluster := intColumnTable(t, vals)
	eq := NewIntegerNode(col, OpEqual, core.Int(3))
	gt := NewIntegerNode(col, OpGreater, core.Int(1))
	eq.AddChild(gt)
	prepare(tbl, cluster, eq)

	st := NewFindAllState(1 << 30)
	st.SetKeyInfo(cluster.Offset(), cluster.Keys())
	AggregateInternal(DefaultConfig(), eq, st, 0, cluster.NodeSize(), nil)

	var want []core.ObjKey
	for i := range vals {
		if i%7 == 3 {
			want = append(want, core.ObjKey(i))
		}
	}
	assert.Equal(t, want, st.Keys)
}

func TestAggregateInternalSmallBatches(t *testing.T) {
	// A tiny FindLocals forces many planner turns; results must not
	// change.
	vals := make([]any, 100)
	for i := range vals {
		vals[i] = i % 5
	}
	tbl, col, cluster := intColumnTable(t, vals)
	eq := NewIntegerNode(col, OpEqual, core.Int(2))
	prepare(tbl, cluster, eq)

	st := NewFindAllState(1 << 30)
	st.SetKeyInfo(cluster.Offset(), cluster.Keys())
	AggregateInternal(Config{FindLocals: 2, BestDist: 4}, eq, st, 0, cluster.NodeSize(), nil)
	assert.Equal(t, 20, len(st.Keys))
}

func TestStatisticsUpdate(t *testing.T) {
	vals := make([]any, 100)
	for i := range vals {
		vals[i] = i % 10
	}
	tbl, col, cluster := intColumnTable(t, vals)
	eq := NewIntegerNode(col, OpEqual, core.Int(0))
	prepare(tbl, cluster, eq)

	before := eq.DD
	st := NewCountState(1 << 30)
	st.SetKeyInfo(cluster.Offset(), cluster.Keys())
	AggregateInternal(DefaultConfig(), eq, st, 0, cluster.NodeSize(), nil)
	// dD moved toward the observed match distance. Its exact value is a
	// hint, not a contract.
	assert.NotEqual(t, before, eq.DD)
	assert.Equal(t, 10, st.MatchCount())
}

func TestCoalesceEquals(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(64))
	k := tbl.AddColumn("k", core.TypeString)
	other := tbl.AddColumn("o", core.TypeInt)

	a := NewStringEqualNode(k, "x")
	b := NewStringEqualNode(k, "y")
	mid := NewIntegerNode(other, OpGreater, core.Int(0))
	c := NewStringEqualNode(k, "z")
	a.SetTable(tbl)
	a.AddChild(mid)
	a.AddChild(b)
	a.AddChild(c)
	for cur := Node(a); cur != nil; cur = cur.base().Child {
		cur.SetTable(tbl)
	}

	root := CoalesceEquals(a)
	require.Same(t, a, root.(*StringEqualNode))
	assert.Equal(t, []string{"x", "y", "z"}, a.needleList)

	// The chain now holds only the integer sibling.
	assert.Same(t, mid, root.base().Child.(*IntegerNode))
	assert.Nil(t, mid.Child)
}

func TestCoalesceSkipsIndexedColumn(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(64))
	k := tbl.AddColumn("k", core.TypeString)
	require.NoError(t, tbl.AddSearchIndex(k))

	a := NewStringEqualNode(k, "x")
	b := NewStringEqualNode(k, "y")
	a.AddChild(b)
	for cur := Node(a); cur != nil; cur = cur.base().Child {
		cur.SetTable(tbl)
	}

	root := CoalesceEquals(a)
	assert.Same(t, a, root.(*StringEqualNode))
	assert.Empty(t, a.needleList)
	assert.Same(t, b, a.Child.(*StringEqualNode))
}

func TestNeedleSetScan(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(64))
	k := tbl.AddColumn("k", core.TypeString)
	for _, v := range []string{"a", "x", "b", "y", "z", "x"} {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(k, core.String(v)))
	}
	var cluster *table.Cluster
	tbl.TraverseClusters(func(c *table.Cluster) bool { cluster = c; return true })

	a := NewStringEqualNode(k, "x")
	a.Consume(NewStringEqualNode(k, "y"))
	a.Consume(NewStringEqualNode(k, "z"))
	prepare(tbl, cluster, a)

	var got []int
	for r := a.FindFirstLocal(0, cluster.NodeSize()); r != core.NotFound; r = a.FindFirstLocal(r+1, cluster.NodeSize()) {
		got = append(got, r)
	}
	assert.Equal(t, []int{1, 3, 4, 5}, got)
}

func TestNeedleSetHashProbe(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(256))
	k := tbl.AddColumn("k", core.TypeString)
	for i := 0; i < 60; i++ {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(k, core.String(string(rune('a'+i%30)))))
	}
	var cluster *table.Cluster
	tbl.TraverseClusters(func(c *table.Cluster) bool { cluster = c; return true })

	// 25 needles pushes past the linear-probe threshold.
	a := NewStringEqualNode(k, "a")
	for i := 1; i < 25; i++ {
		a.Consume(NewStringEqualNode(k, string(rune('a'+i))))
	}
	require.GreaterOrEqual(t, len(a.needleList), needleSetLinearMax)
	prepare(tbl, cluster, a)

	count := 0
	for r := a.FindFirstLocal(0, cluster.NodeSize()); r != core.NotFound; r = a.FindFirstLocal(r+1, cluster.NodeSize()) {
		count++
	}
	// Letters a..y of the 30-letter alphabet, two rounds each.
	assert.Equal(t, 50, count)
}
