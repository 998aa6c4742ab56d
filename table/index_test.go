package table

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/core"
)

func TestStringIndexFindAll(t *testing.T) {
	ix := NewStringIndex()

	assert.Equal(t, FindResultNotFound, ix.FindAllNoCopy("missing").Kind)
	assert.True(t, ix.FindFirst("missing").IsNull())

	ix.Insert(5, "x")
	res := ix.FindAllNoCopy("x")
	require.Equal(t, FindResultSingle, res.Kind)
	assert.Equal(t, core.ObjKey(5), res.Key)
	assert.Equal(t, core.ObjKey(5), ix.FindFirst("x"))

	// Postings stay sorted regardless of insertion order.
	ix.Insert(2, "x")
	ix.Insert(9, "x")
	res = ix.FindAllNoCopy("x")
	require.Equal(t, FindResultColumn, res.Kind)
	assert.Equal(t, []core.ObjKey{2, 5, 9}, res.Keys[res.Start:res.End])

	ix.Erase(5, "x")
	res = ix.FindAllNoCopy("x")
	require.Equal(t, FindResultColumn, res.Kind)
	assert.Equal(t, []core.ObjKey{2, 9}, res.Keys[res.Start:res.End])

	ix.Erase(2, "x")
	ix.Erase(9, "x")
	assert.Equal(t, FindResultNotFound, ix.FindAllNoCopy("x").Kind)
	assert.Equal(t, 0, ix.Count())
}

func TestStringIndexDuplicateInsert(t *testing.T) {
	ix := NewStringIndex()
	ix.Insert(1, "a")
	ix.Insert(1, "a")
	assert.Equal(t, 1, ix.Count())
}

func TestStringIndexFold(t *testing.T) {
	ix := NewStringIndex()
	ix.Insert(1, "Ann")
	ix.Insert(4, "ann")
	ix.Insert(2, "ANN")
	ix.Insert(3, "bob")

	keys := ix.FindAllFold("aNN")
	assert.Equal(t, []core.ObjKey{1, 2, 4}, keys)
	assert.Nil(t, ix.FindAllFold("carol"))
}

func TestTableSearchIndexMaintained(t *testing.T) {
	tbl := New("t", WithMaxClusterSize(4))
	name := tbl.AddColumn("name", core.TypeString, core.AttrNullable)
	require.NoError(t, tbl.AddSearchIndex(name))

	var keys []core.ObjKey
	for _, v := range []string{"a", "b", "a", "c"} {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(name, core.String(v)))
		keys = append(keys, obj.Key())
	}

	ix := tbl.SearchIndex(name)
	require.NotNil(t, ix)
	res := ix.FindAllNoCopy("a")
	require.Equal(t, FindResultColumn, res.Kind)
	assert.Equal(t, []core.ObjKey{keys[0], keys[2]}, res.Keys[res.Start:res.End])

	// Updates move the key between postings.
	require.NoError(t, tbl.Object(keys[0]).Set(name, core.String("b")))
	assert.Equal(t, core.ObjKey(keys[2]), ix.FindFirst("a"))

	// Deletes drop the key.
	tbl.RemoveObject(keys[2])
	assert.Equal(t, FindResultNotFound, ix.FindAllNoCopy("a").Kind)

	// Null cells are not indexed.
	require.NoError(t, tbl.Object(keys[1]).Set(name, core.Null()))
	res = ix.FindAllNoCopy("b")
	require.Equal(t, FindResultSingle, res.Kind)
	assert.Equal(t, keys[0], res.Key)
}

func TestAddSearchIndexBackfills(t *testing.T) {
	tbl := New("t", WithMaxClusterSize(4))
	name := tbl.AddColumn("name", core.TypeString)
	for i := 0; i < 20; i++ {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(name, core.String(fmt.Sprintf("v%d", i%3))))
	}
	require.NoError(t, tbl.AddSearchIndex(name))
	res := tbl.SearchIndex(name).FindAllNoCopy("v1")
	require.Equal(t, FindResultColumn, res.Kind)
	assert.Equal(t, 7, res.End-res.Start)

	tbl.RemoveSearchIndex(name)
	assert.Nil(t, tbl.SearchIndex(name))
}

func TestAddSearchIndexUnsupported(t *testing.T) {
	tbl := New("t")
	age := tbl.AddColumn("age", core.TypeInt)
	assert.ErrorIs(t, tbl.AddSearchIndex(age), ErrIndexUnsupported)
}

func TestBuildSearchIndexes(t *testing.T) {
	tbl := New("t", WithMaxClusterSize(8))
	a := tbl.AddColumn("a", core.TypeString, core.AttrIndexed)
	b := tbl.AddColumn("b", core.TypeString, core.AttrIndexed)
	for i := 0; i < 50; i++ {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(a, core.String(fmt.Sprintf("a%d", i%5))))
		require.NoError(t, obj.Set(b, core.String(fmt.Sprintf("b%d", i%2))))
	}
	require.NoError(t, tbl.BuildSearchIndexes(context.Background()))
	assert.Equal(t, 50, tbl.SearchIndex(a).Count())
	assert.Equal(t, 50, tbl.SearchIndex(b).Count())
}
