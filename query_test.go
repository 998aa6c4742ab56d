package tessera

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

func keysOf(t *testing.T, q *Query) []core.ObjKey {
	t.Helper()
	v, err := q.FindAll(0, -1, -1)
	require.NoError(t, err)
	return v.Keys()
}

// s1Table is rows (id:1,age:30),(2,40),(3,40),(4,null) with nullable age.
func s1Table(t *testing.T) (*table.Table, core.ColKey) {
	t.Helper()
	tbl := table.New("people", table.WithMaxClusterSize(2))
	age := tbl.AddColumn("age", core.TypeInt, core.AttrNullable)
	ages := map[int64]any{1: 30, 2: 40, 3: 40, 4: nil}
	for id := int64(1); id <= 4; id++ {
		obj, err := tbl.CreateObjectWithKey(core.ObjKey(id))
		require.NoError(t, err)
		if v := ages[id]; v != nil {
			require.NoError(t, obj.Set(age, core.Int(int64(v.(int)))))
		}
	}
	return tbl, age
}

func TestScenarioS1(t *testing.T) {
	tbl, age := s1Table(t)

	assert.Equal(t, []core.ObjKey{2, 3}, keysOf(t, NewQuery(tbl).Equal(age, core.Int(40))))

	cnt, err := NewQuery(tbl).NotEqual(age, core.Null()).Count(-1)
	require.NoError(t, err)
	assert.Equal(t, 3, cnt)

	avg, n, err := NewQuery(tbl).AverageInt(age)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 36.666, avg, 0.001)
}

func TestScenarioS2(t *testing.T) {
	tbl := table.New("people", table.WithMaxClusterSize(2))
	name := tbl.AddColumn("name", core.TypeString)
	for _, v := range []string{"ann", "Bob", "anna", "bert"} {
		require.NoError(t, tbl.CreateObject().Set(name, core.String(v)))
	}

	q := NewQuery(tbl).BeginsWith(name, "an", false)
	v, err := q.FindAll(0, -1, -1)
	require.NoError(t, err)
	var got []string
	for i := 0; i < v.Size(); i++ {
		got = append(got, v.GetObject(i).Get(name).S)
	}
	assert.Equal(t, []string{"ann", "anna"}, got)
}

func TestScenarioS3(t *testing.T) {
	tbl := table.New("docs", table.WithMaxClusterSize(2))
	tags := tbl.AddColumn("tags", core.TypeString, core.AttrList)
	lists := [][]string{{"a"}, {}, {"a", "b"}, {"b", "c"}}
	for id, l := range lists {
		obj, err := tbl.CreateObjectWithKey(core.ObjKey(id + 1))
		require.NoError(t, err)
		vals := make([]core.Mixed, len(l))
		for i, s := range l {
			vals[i] = core.String(s)
		}
		require.NoError(t, obj.SetList(tags, vals))
	}

	assert.Equal(t, []core.ObjKey{2}, keysOf(t, NewQuery(tbl).SizeEqual(tags, 0)))
	assert.Equal(t, []core.ObjKey{3, 4}, keysOf(t, NewQuery(tbl).SizeGreater(tags, 1)))
}

func TestScenarioS4(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(256))
	k := tbl.AddColumn("k", core.TypeString)
	const n = 10000
	letters := "abcdefghijklmnopqrstuvwxyz"
	inSet := 0
	for i := 0; i < n; i++ {
		v := string(letters[i*7%26])
		if v == "x" || v == "y" || v == "z" {
			inSet++
		}
		require.NoError(t, tbl.CreateObject().Set(k, core.String(v)))
	}

	q := NewQuery(tbl).
		EqualString(k, "x", true).
		EqualString(k, "y", true).
		EqualString(k, "z", true)
	keys := keysOf(t, q)
	assert.Equal(t, inSet, len(keys))

	// Same membership computed the straightforward way.
	var want []core.ObjKey
	tbl.TraverseClusters(func(c *table.Cluster) bool {
		var leaf table.StringLeaf
		require.NoError(t, c.InitLeaf(k, &leaf))
		for i := 0; i < c.NodeSize(); i++ {
			switch leaf.Get(i) {
			case "x", "y", "z":
				want = append(want, c.RealKey(i))
			}
		}
		return false
	})
	assert.Equal(t, want, keys)
}

func TestScenarioS5(t *testing.T) {
	tbl, age := s1Table(t)
	q := NewQuery(tbl).Not().Greater(age, core.Int(30))
	// The null row is excluded: negating a comparison that excludes
	// nulls still excludes nulls.
	assert.Equal(t, []core.ObjKey{1}, keysOf(t, q))
}

func TestScenarioS6(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(2))
	a := tbl.AddColumn("a", core.TypeInt)
	b := tbl.AddColumn("b", core.TypeInt)
	c := tbl.AddColumn("c", core.TypeInt)
	rows := [][3]int64{{1, 0, 1}, {0, 2, 1}, {0, 0, 5}, {1, 2, -1}}
	for id, r := range rows {
		obj, err := tbl.CreateObjectWithKey(core.ObjKey(id + 1))
		require.NoError(t, err)
		require.NoError(t, obj.Set(a, core.Int(r[0])))
		require.NoError(t, obj.Set(b, core.Int(r[1])))
		require.NoError(t, obj.Set(c, core.Int(r[2])))
	}

	build := func(flip bool) *Query {
		q := NewQuery(tbl).Group()
		if flip {
			q.Equal(b, core.Int(2)).Or().Equal(a, core.Int(1))
		} else {
			q.Equal(a, core.Int(1)).Or().Equal(b, core.Int(2))
		}
		return q.EndGroup().Greater(c, core.Int(0))
	}

	want := []core.ObjKey{1, 2}
	assert.Equal(t, want, keysOf(t, build(false)))
	// Branch order of the OR does not change the result.
	assert.Equal(t, want, keysOf(t, build(true)))
}

func TestFind(t *testing.T) {
	tbl, age := s1Table(t)

	key, err := NewQuery(tbl).Equal(age, core.Int(40)).Find()
	require.NoError(t, err)
	assert.Equal(t, core.ObjKey(2), key)

	key, err = NewQuery(tbl).Equal(age, core.Int(99)).Find()
	require.NoError(t, err)
	assert.True(t, key.IsNull())

	// Empty query returns the first row.
	key, err = NewQuery(tbl).Find()
	require.NoError(t, err)
	assert.Equal(t, core.ObjKey(1), key)
}

func TestFindAllWindowAndLimit(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(3))
	v := tbl.AddColumn("v", core.TypeInt)
	for i := 0; i < 20; i++ {
		require.NoError(t, tbl.CreateObject().Set(v, core.Int(int64(i%2))))
	}

	q := NewQuery(tbl).Equal(v, core.Int(0))

	all, err := q.FindAll(0, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 10, all.Size())

	limited, err := q.FindAll(0, -1, 3)
	require.NoError(t, err)
	assert.Equal(t, all.Keys()[:3], limited.Keys())

	// Row window [4,10) over even keys 4,6,8.
	window, err := q.FindAll(4, 10, -1)
	require.NoError(t, err)
	assert.Equal(t, []core.ObjKey{4, 6, 8}, window.Keys())

	none, err := q.FindAll(0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Size())
}

func TestRemove(t *testing.T) {
	tbl, age := s1Table(t)
	removed, err := NewQuery(tbl).Equal(age, core.Int(40)).Remove()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, tbl.Size())
	assert.False(t, tbl.IsValid(2))
	assert.True(t, tbl.IsValid(1))
}

func TestLinksTo(t *testing.T) {
	owners := table.New("owners", table.WithMaxClusterSize(4))
	_ = owners.AddColumn("name", core.TypeString)
	items := table.New("items", table.WithMaxClusterSize(4))
	owner := items.AddColumn("owner", core.TypeLink)
	parts := items.AddColumn("parts", core.TypeLink, core.AttrList)

	for i := 0; i < 6; i++ {
		obj := items.CreateObject()
		require.NoError(t, obj.Set(owner, core.Link(core.ObjKey(i%3))))
		require.NoError(t, obj.SetLinks(parts, []core.ObjKey{core.ObjKey(i)}))
	}

	assert.Equal(t, []core.ObjKey{1, 4}, keysOf(t, NewQuery(items).LinksTo(owner, 1)))
	assert.Equal(t, []core.ObjKey{0, 2, 3, 5}, keysOf(t, NewQuery(items).LinksTo(owner, 0, 2)))
	assert.Equal(t, []core.ObjKey{2, 4}, keysOf(t, NewQuery(items).LinksTo(parts, 2, 4)))
}

func TestTwoColumns(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(4))
	a := tbl.AddColumn("a", core.TypeInt)
	b := tbl.AddColumn("b", core.TypeInt)
	rows := [][2]int64{{1, 1}, {2, 5}, {7, 3}, {4, 4}}
	for _, r := range rows {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(a, core.Int(r[0])))
		require.NoError(t, obj.Set(b, core.Int(r[1])))
	}

	assert.Equal(t, []core.ObjKey{0, 3}, keysOf(t, NewQuery(tbl).EqualColumns(a, b)))
	assert.Equal(t, []core.ObjKey{1}, keysOf(t, NewQuery(tbl).LessColumns(a, b)))
	assert.Equal(t, []core.ObjKey{2}, keysOf(t, NewQuery(tbl).GreaterColumns(a, b)))
}

func TestExpressionNode(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(4))
	v := tbl.AddColumn("v", core.TypeInt)
	for i := 0; i < 10; i++ {
		require.NoError(t, tbl.CreateObject().Set(v, core.Int(int64(i))))
	}

	q := NewQuery(tbl).Expression(func(obj table.Obj) bool {
		return obj.Get(v).I64%3 == 0
	}, "v % 3 == 0")
	assert.Equal(t, []core.ObjKey{0, 3, 6, 9}, keysOf(t, q))
}

func TestIndexFastPath(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(4))
	name := tbl.AddColumn("name", core.TypeString, core.AttrIndexed)
	age := tbl.AddColumn("age", core.TypeInt)
	for i := 0; i < 40; i++ {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(name, core.String(fmt.Sprintf("n%d", i%4))))
		require.NoError(t, obj.Set(age, core.Int(int64(i))))
	}

	q := NewQuery(tbl).EqualString(name, "n2", true).GreaterEqual(age, core.Int(20))
	keys := keysOf(t, q)
	assert.Equal(t, []core.ObjKey{22, 26, 30, 34, 38}, keys)

	cnt, err := NewQuery(tbl).EqualString(name, "n2", true).Count(-1)
	require.NoError(t, err)
	assert.Equal(t, 10, cnt)

	// Window bounds carry over to index iteration.
	window, err := NewQuery(tbl).EqualString(name, "n2", true).FindAll(10, 30, -1)
	require.NoError(t, err)
	assert.Equal(t, []core.ObjKey{10, 14, 18, 22, 26}, window.Keys())
}

func TestCaseInsensitiveEqualUsesIndex(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(4))
	name := tbl.AddColumn("name", core.TypeString, core.AttrIndexed)
	for _, v := range []string{"Ann", "bob", "ANN", "ann", "bert"} {
		require.NoError(t, tbl.CreateObject().Set(name, core.String(v)))
	}
	q := NewQuery(tbl).EqualString(name, "aNn", false)
	assert.Equal(t, []core.ObjKey{0, 2, 3}, keysOf(t, q))
}

func TestQueryOnView(t *testing.T) {
	tbl, age := s1Table(t)
	base, err := NewQuery(tbl).NotEqual(age, core.Null()).FindAll(0, -1, -1)
	require.NoError(t, err)

	q := NewQueryOnView(base).Equal(age, core.Int(40))
	assert.Equal(t, []core.ObjKey{2, 3}, keysOf(t, q))

	cnt, err := NewQueryOnView(base).Count(-1)
	require.NoError(t, err)
	assert.Equal(t, 3, cnt)
}

func TestSumAndMinMax(t *testing.T) {
	tbl, age := s1Table(t)

	sum, err := NewQuery(tbl).SumInt(age)
	require.NoError(t, err)
	assert.Equal(t, int64(110), sum)

	minV, minKey, err := NewQuery(tbl).MinInt(age)
	require.NoError(t, err)
	assert.Equal(t, int64(30), minV)
	assert.Equal(t, core.ObjKey(1), minKey)

	maxV, maxKey, err := NewQuery(tbl).MaxInt(age)
	require.NoError(t, err)
	assert.Equal(t, int64(40), maxV)
	// Ties keep the first matching key.
	assert.Equal(t, core.ObjKey(2), maxKey)
}

func TestAndOrNotOf(t *testing.T) {
	tbl, age := s1Table(t)
	a := NewQuery(tbl).Equal(age, core.Int(30))
	b := NewQuery(tbl).Equal(age, core.Int(40))

	assert.Equal(t, []core.ObjKey{1, 2, 3}, keysOf(t, OrOf(a, b)))
	assert.Empty(t, keysOf(t, AndOf(a, b)))
	assert.Equal(t, []core.ObjKey{2, 3}, keysOf(t, NotOf(a)))

	_, err := NotOf(NewQuery(tbl)).Count(-1)
	assert.ErrorIs(t, err, ErrEmptyNegation)
}

func TestCloneRunsIndependently(t *testing.T) {
	tbl, age := s1Table(t)
	q := NewQuery(tbl).Equal(age, core.Int(40))
	c := q.Clone()

	assert.Equal(t, []core.ObjKey{2, 3}, keysOf(t, q))
	assert.Equal(t, []core.ObjKey{2, 3}, keysOf(t, c))

	done := make(chan []core.ObjKey, 2)
	for _, qq := range []*Query{q.Clone(), q.Clone()} {
		go func(qq *Query) {
			v, err := qq.FindAll(0, -1, -1)
			if err != nil {
				done <- nil
				return
			}
			done <- v.Keys()
		}(qq)
	}
	assert.Equal(t, []core.ObjKey{2, 3}, <-done)
	assert.Equal(t, []core.ObjKey{2, 3}, <-done)
}
