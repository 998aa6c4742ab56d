package tessera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

func TestValidateUnbalancedGroups(t *testing.T) {
	tbl, age := s1Table(t)

	q := NewQuery(tbl).Group().Equal(age, core.Int(1))
	assert.Equal(t, "Missing end group", q.Validate())
	_, err := q.Count(-1)
	assert.ErrorIs(t, err, ErrUnbalancedGroup)

	q = NewQuery(tbl).Equal(age, core.Int(1)).EndGroup()
	assert.Equal(t, "Unbalanced group", q.Validate())
	_, err = q.Count(-1)
	assert.ErrorIs(t, err, ErrUnbalancedGroup)

	q = NewQuery(tbl).Group().Equal(age, core.Int(1)).EndGroup()
	assert.Empty(t, q.Validate())
}

func TestValidateTypeMismatch(t *testing.T) {
	tbl, age := s1Table(t)

	q := NewQuery(tbl).Equal(age, core.String("x"))
	assert.NotEmpty(t, q.Validate())
	_, err := q.Count(-1)
	var tm *TypeMismatchError
	assert.ErrorAs(t, err, &tm)
	assert.Equal(t, "age", tm.Column)

	// Non-nullable column rejects a null needle.
	tbl2 := table.New("t")
	v := tbl2.AddColumn("v", core.TypeInt)
	q = NewQuery(tbl2).Equal(v, core.Null())
	assert.ErrorAs(t, queryErr(t, q), &tm)
}

func queryErr(t *testing.T, q *Query) error {
	t.Helper()
	_, err := q.Count(-1)
	require.Error(t, err)
	return err
}

func TestValidateNoSuchColumn(t *testing.T) {
	tbl, _ := s1Table(t)
	q := NewQuery(tbl).Equal(core.ColKeyNull, core.Int(1))
	var nsc *NoSuchColumnError
	assert.ErrorAs(t, queryErr(t, q), &nsc)
}

func TestValidateDanglingOr(t *testing.T) {
	tbl, age := s1Table(t)
	q := NewQuery(tbl).Group().Equal(age, core.Int(1)).Or().EndGroup()
	assert.Equal(t, "Missing right-hand side of or", q.Validate())
}

func TestValidateOrWithoutLeftHandSide(t *testing.T) {
	tbl, _ := s1Table(t)
	q := NewQuery(tbl).Or()
	assert.Equal(t, "Missing left-hand side of or", q.Validate())
}

func TestDetachedQuery(t *testing.T) {
	q := NewQuery(nil)
	_, err := q.Count(-1)
	assert.ErrorIs(t, err, ErrDetached)
}

func TestDescription(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(8))
	age := tbl.AddColumn("age", core.TypeInt, core.AttrNullable)
	name := tbl.AddColumn("name", core.TypeString)

	tests := []struct {
		name string
		q    *Query
		want string
	}{
		{
			"empty", NewQuery(tbl), "TRUEPREDICATE",
		},
		{
			"and chain",
			NewQuery(tbl).EqualString(name, "x", true).Greater(age, core.Int(10)),
			`name == "x" and age > 10`,
		},
		{
			"or group",
			NewQuery(tbl).Group().Equal(age, core.Int(1)).Or().Equal(age, core.Int(2)).EndGroup(),
			"(age == 1 or age == 2)",
		},
		{
			"not",
			NewQuery(tbl).Not().Greater(age, core.Int(30)),
			"!(age > 30)",
		},
		{
			"null test",
			NewQuery(tbl).NotEqual(age, core.Null()),
			"age != NULL",
		},
		{
			"case insensitive",
			NewQuery(tbl).BeginsWith(name, "an", false),
			`name BEGINSWITH[c] "an"`,
		},
		{
			"size",
			NewQuery(tbl).SizeGreater(name, 2),
			"name.@size > 2",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.q.GetDescription()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDescriptionViewBound(t *testing.T) {
	tbl, age := s1Table(t)
	v, err := NewQuery(tbl).FindAll(0, -1, -1)
	require.NoError(t, err)

	q := NewQueryOnView(v).Equal(age, core.Int(40))
	_, err = q.GetDescription()
	assert.ErrorIs(t, err, ErrSerialisationUnsupported)
}

func TestViewSyncIfNeeded(t *testing.T) {
	tbl, age := s1Table(t)
	v, err := NewQuery(tbl).Equal(age, core.Int(40)).FindAll(0, -1, -1)
	require.NoError(t, err)
	require.Equal(t, 2, v.Size())

	obj, err := tbl.CreateObjectWithKey(9)
	require.NoError(t, err)
	require.NoError(t, obj.Set(age, core.Int(40)))

	require.NoError(t, v.SyncIfNeeded())
	assert.Equal(t, []core.ObjKey{2, 3, 9}, v.Keys())

	// Unchanged table: sync is a no-op.
	require.NoError(t, v.SyncIfNeeded())
	assert.Equal(t, 3, v.Size())
}

func TestAndQueryMerges(t *testing.T) {
	tbl, age := s1Table(t)
	a := NewQuery(tbl).GreaterEqual(age, core.Int(30))
	b := NewQuery(tbl).LessEqual(age, core.Int(30))

	q := NewQuery(tbl).AndQuery(a).AndQuery(b)
	assert.Equal(t, []core.ObjKey{1}, keysOf(t, q))

	// The source queries still run on their own.
	assert.Equal(t, []core.ObjKey{1, 2, 3}, keysOf(t, a))
}

func TestNestedGroups(t *testing.T) {
	tbl := table.New("t", table.WithMaxClusterSize(4))
	a := tbl.AddColumn("a", core.TypeInt)
	b := tbl.AddColumn("b", core.TypeInt)
	rows := [][2]int64{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	for _, r := range rows {
		obj := tbl.CreateObject()
		require.NoError(t, obj.Set(a, core.Int(r[0])))
		require.NoError(t, obj.Set(b, core.Int(r[1])))
	}

	// a == 1 and (b == 1 or b == 2) and not (a == 1 and b == 2)
	q := NewQuery(tbl).
		Equal(a, core.Int(1)).
		Group().Equal(b, core.Int(1)).Or().Equal(b, core.Int(2)).EndGroup().
		Not().Group().Equal(a, core.Int(1)).Equal(b, core.Int(2)).EndGroup()
	assert.Equal(t, []core.ObjKey{0}, keysOf(t, q))
}

func TestOptionsKeepResults(t *testing.T) {
	tbl, age := s1Table(t)
	q := NewQuery(tbl, WithFindLocals(1), WithBestDist(1), WithLogger(nil)).
		Equal(age, core.Int(40))
	assert.Equal(t, []core.ObjKey{2, 3}, keysOf(t, q))
}
