package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/core"
)

func newPeopleTable(t *testing.T, clusterSize int) (*Table, core.ColKey, core.ColKey) {
	t.Helper()
	tbl := New("people", WithMaxClusterSize(clusterSize))
	name := tbl.AddColumn("name", core.TypeString, core.AttrNullable)
	age := tbl.AddColumn("age", core.TypeInt, core.AttrNullable)
	return tbl, name, age
}

func TestTableCreateAndGet(t *testing.T) {
	tbl, name, age := newPeopleTable(t, 4)

	obj := tbl.CreateObject()
	require.NoError(t, obj.Set(name, core.String("ann")))
	require.NoError(t, obj.Set(age, core.Int(30)))

	got := tbl.Object(obj.Key())
	assert.Equal(t, "ann", got.Get(name).S)
	assert.Equal(t, int64(30), got.Get(age).I64)
	assert.True(t, got.IsValid())
	assert.Equal(t, 1, tbl.Size())
}

func TestTableNullCells(t *testing.T) {
	tbl, name, age := newPeopleTable(t, 4)

	obj := tbl.CreateObject()
	assert.True(t, obj.Get(name).IsNull())
	assert.True(t, obj.Get(age).IsNull())

	require.NoError(t, obj.Set(age, core.Int(1)))
	assert.False(t, obj.Get(age).IsNull())
	require.NoError(t, obj.Set(age, core.Null()))
	assert.True(t, obj.Get(age).IsNull())
}

func TestTableSetTypeChecked(t *testing.T) {
	tbl, name, _ := newPeopleTable(t, 4)
	obj := tbl.CreateObject()
	assert.Error(t, obj.Set(name, core.Int(1)))

	strict := tbl.AddColumn("strict", core.TypeInt)
	assert.Error(t, obj.Set(strict, core.Null()))
}

func TestClusterSplitKeepsOrder(t *testing.T) {
	tbl, _, age := newPeopleTable(t, 4)
	const n = 100
	for i := 0; i < n; i++ {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(age, core.Int(int64(i))))
	}
	require.Equal(t, n, tbl.Size())

	// Traversal yields dense rows in strictly increasing key order.
	var keys []core.ObjKey
	clusters := 0
	tbl.TraverseClusters(func(c *Cluster) bool {
		clusters++
		assert.LessOrEqual(t, c.NodeSize(), 4)
		for i := 0; i < c.NodeSize(); i++ {
			keys = append(keys, c.RealKey(i))
		}
		return false
	})
	require.Len(t, keys, n)
	assert.Greater(t, clusters, 1)
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}

	// Values still line up with their keys.
	var leaf IntLeaf
	tbl.TraverseClusters(func(c *Cluster) bool {
		require.NoError(t, c.InitLeaf(age, &leaf))
		for i := 0; i < c.NodeSize(); i++ {
			assert.Equal(t, int64(c.RealKey(i)), leaf.Get(i))
		}
		return false
	})
}

func TestTraverseStops(t *testing.T) {
	tbl, _, _ := newPeopleTable(t, 2)
	for i := 0; i < 10; i++ {
		tbl.CreateObject()
	}
	visited := 0
	stopped := tbl.TraverseClusters(func(c *Cluster) bool {
		visited++
		return true
	})
	assert.True(t, stopped)
	assert.Equal(t, 1, visited)
}

func TestRemoveObject(t *testing.T) {
	tbl, _, age := newPeopleTable(t, 4)
	var keys []core.ObjKey
	for i := 0; i < 10; i++ {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(age, core.Int(int64(i))))
		keys = append(keys, obj.Key())
	}
	assert.True(t, tbl.RemoveObject(keys[3]))
	assert.False(t, tbl.RemoveObject(keys[3]))
	assert.False(t, tbl.IsValid(keys[3]))
	assert.Equal(t, 9, tbl.Size())

	// Remaining rows keep their identity.
	assert.Equal(t, int64(4), tbl.Object(keys[4]).Get(age).I64)
}

func TestCreateObjectWithKey(t *testing.T) {
	tbl, _, _ := newPeopleTable(t, 4)
	obj, err := tbl.CreateObjectWithKey(42)
	require.NoError(t, err)
	assert.Equal(t, core.ObjKey(42), obj.Key())

	_, err = tbl.CreateObjectWithKey(42)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// Out-of-order creation still traverses sorted.
	_, err = tbl.CreateObjectWithKey(7)
	require.NoError(t, err)
	var keys []core.ObjKey
	tbl.TraverseClusters(func(c *Cluster) bool {
		for i := 0; i < c.NodeSize(); i++ {
			keys = append(keys, c.RealKey(i))
		}
		return false
	})
	assert.Equal(t, []core.ObjKey{7, 42}, keys)
}

func TestObjKeyAtRow(t *testing.T) {
	tbl, _, _ := newPeopleTable(t, 3)
	for i := 0; i < 10; i++ {
		tbl.CreateObject()
	}
	assert.Equal(t, core.ObjKey(0), tbl.ObjKeyAtRow(0))
	assert.Equal(t, core.ObjKey(7), tbl.ObjKeyAtRow(7))
	assert.True(t, tbl.ObjKeyAtRow(10).IsNull())
}

func TestLowerBoundKey(t *testing.T) {
	tbl, _, _ := newPeopleTable(t, 64)
	for i := 0; i < 5; i++ {
		tbl.CreateObject()
	}
	tbl.TraverseClusters(func(c *Cluster) bool {
		assert.Equal(t, 0, c.LowerBoundKey(0))
		assert.Equal(t, 3, c.LowerBoundKey(3))
		assert.Equal(t, 5, c.LowerBoundKey(99))
		return true
	})
}

func TestIntLeafFindFirst(t *testing.T) {
	tbl, _, age := newPeopleTable(t, 64)
	vals := []int64{5, 3, 5, 9, 5}
	for _, v := range vals {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(age, core.Int(v)))
	}
	var leaf IntLeaf
	tbl.TraverseClusters(func(c *Cluster) bool {
		require.NoError(t, c.InitLeaf(age, &leaf))
		assert.Equal(t, 0, leaf.FindFirst(5, 0, leaf.Size()))
		assert.Equal(t, 2, leaf.FindFirst(5, 1, leaf.Size()))
		assert.Equal(t, core.NotFound, leaf.FindFirst(7, 0, leaf.Size()))
		assert.Equal(t, core.NotFound, leaf.FindFirst(5, 5, leaf.Size()))
		return true
	})
}

func TestLeafSkipsNulls(t *testing.T) {
	tbl, name, age := newPeopleTable(t, 64)
	obj := tbl.CreateObject()
	require.NoError(t, obj.Set(age, core.Int(0)))
	tbl.CreateObject() // age stays null

	var leaf IntLeaf
	tbl.TraverseClusters(func(c *Cluster) bool {
		require.NoError(t, c.InitLeaf(age, &leaf))
		assert.False(t, leaf.IsNull(0))
		assert.True(t, leaf.IsNull(1))
		// A null cell holding the zero value is not a match.
		assert.Equal(t, 0, leaf.FindFirst(0, 0, leaf.Size()))
		assert.Equal(t, core.NotFound, leaf.FindFirst(0, 1, leaf.Size()))
		return true
	})

	var sleaf StringLeaf
	tbl.TraverseClusters(func(c *Cluster) bool {
		require.NoError(t, c.InitLeaf(name, &sleaf))
		assert.True(t, sleaf.IsNull(0))
		return true
	})
}

func TestListLeaf(t *testing.T) {
	tbl := New("docs", WithMaxClusterSize(64))
	tags := tbl.AddColumn("tags", core.TypeString, core.AttrList)

	lists := [][]core.Mixed{
		{core.String("a")},
		{},
		{core.String("a"), core.String("b")},
	}
	for _, l := range lists {
		obj := tbl.CreateObject()
		require.NoError(t, obj.SetList(tags, l))
	}

	var leaf ListLeaf
	tbl.TraverseClusters(func(c *Cluster) bool {
		require.NoError(t, c.InitLeaf(tags, &leaf))
		assert.Equal(t, 1, leaf.Len(0))
		assert.Equal(t, 0, leaf.Len(1))
		assert.Equal(t, 2, leaf.Len(2))
		return true
	})
}

func TestLinkColumns(t *testing.T) {
	tbl := New("links", WithMaxClusterSize(64))
	owner := tbl.AddColumn("owner", core.TypeLink)
	parts := tbl.AddColumn("parts", core.TypeLink, core.AttrList)

	a := tbl.CreateObject()
	b := tbl.CreateObject()
	require.NoError(t, a.Set(owner, core.Link(b.Key())))
	require.NoError(t, a.SetLinks(parts, []core.ObjKey{a.Key(), b.Key()}))

	assert.Equal(t, b.Key(), tbl.Object(a.Key()).Get(owner).Key())
	assert.Len(t, tbl.Object(a.Key()).GetLinks(parts), 2)
	assert.True(t, b.Get(owner).IsNull())
}

func TestLeafTypeMismatch(t *testing.T) {
	tbl, name, _ := newPeopleTable(t, 64)
	tbl.CreateObject()
	var leaf IntLeaf
	tbl.TraverseClusters(func(c *Cluster) bool {
		assert.Error(t, c.InitLeaf(name, &leaf))
		return true
	})
}
