package table

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tessera-db/tessera/core"
)

var (
	// ErrDuplicateKey is returned when creating an object with a key that
	// already exists.
	ErrDuplicateKey = errors.New("object key already exists")
	// ErrIndexUnsupported is returned when adding a search index on a
	// column type that cannot be indexed.
	ErrIndexUnsupported = errors.New("search index requires a string column")
)

type columnSpec struct {
	name  string
	typ   core.DataType
	attrs core.ColumnAttr
}

// Table is a schema plus a cluster tree of rows, with optional per-column
// search indexes. A Table given to a query is a read snapshot; the query
// core never mutates it.
type Table struct {
	name    string
	specs   []columnSpec
	keys    []core.ColKey
	tree    *clusterTree
	indexes []*StringIndex
	nextKey int64
	version uint64
}

// Option configures table construction.
type Option func(*Table)

// WithMaxClusterSize bounds rows per cluster; small bounds force deep
// cluster trees, which tests use to exercise multi-cluster traversal.
// Bounds below 2 are ignored.
func WithMaxClusterSize(n int) Option {
	return func(t *Table) {
		if n >= 2 {
			t.tree.maxClusterSize = n
		}
	}
}

// New creates an empty table.
func New(name string, opts ...Option) *Table {
	t := &Table{
		name: name,
		tree: newClusterTree(nil, DefaultMaxClusterSize),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Size returns the number of rows.
func (t *Table) Size() int { return t.tree.size }

// Version is bumped on every mutation; views compare it in SyncIfNeeded.
func (t *Table) Version() uint64 { return t.version }

// AddColumn appends a column and returns its handle. Columns created with
// AttrIndexed get a search index immediately.
func (t *Table) AddColumn(name string, typ core.DataType, attrs ...core.ColumnAttr) core.ColKey {
	var mask core.ColumnAttr
	for _, a := range attrs {
		mask |= a
	}
	spec := columnSpec{name: name, typ: typ, attrs: mask}
	ndx := len(t.specs)
	t.specs = append(t.specs, spec)
	t.tree.addColumn(spec)
	t.indexes = append(t.indexes, nil)
	key := core.NewColKey(ndx, typ, mask)
	t.keys = append(t.keys, key)
	if mask&core.AttrIndexed != 0 && typ == core.TypeString && mask&core.AttrList == 0 {
		t.indexes[ndx] = NewStringIndex()
	}
	return key
}

// ColumnKey returns the handle of the named column, or ColKeyNull.
func (t *Table) ColumnKey(name string) core.ColKey {
	for i, s := range t.specs {
		if s.name == name {
			return t.keys[i]
		}
	}
	return core.ColKeyNull
}

// ColumnName returns the name of the column behind the handle.
func (t *Table) ColumnName(col core.ColKey) string {
	ndx := col.LeafIndex()
	if ndx < 0 || ndx >= len(t.specs) {
		return ""
	}
	return t.specs[ndx].name
}

// CreateObject appends a row with a fresh key; all cells start null/zero.
func (t *Table) CreateObject() Obj {
	key := core.ObjKey(t.nextKey)
	t.nextKey++
	t.tree.insert(key)
	t.version++
	return Obj{tbl: t, key: key}
}

// CreateObjectWithKey inserts a row under the caller's key.
func (t *Table) CreateObjectWithKey(key core.ObjKey) (Obj, error) {
	if _, row := t.tree.find(key); row != core.NotFound {
		return Obj{}, fmt.Errorf("%w: %d", ErrDuplicateKey, key)
	}
	t.tree.insert(key)
	if int64(key) >= t.nextKey {
		t.nextKey = int64(key) + 1
	}
	t.version++
	return Obj{tbl: t, key: key}, nil
}

// RemoveObject deletes the row of key; it reports whether a row was
// removed.
func (t *Table) RemoveObject(key core.ObjKey) bool {
	c, row := t.tree.find(key)
	if row == core.NotFound {
		return false
	}
	for ndx, ix := range t.indexes {
		if ix == nil {
			continue
		}
		if v := c.cols[ndx].get(row); v.Kind == core.KindString {
			ix.Erase(key, v.S)
		}
	}
	t.tree.erase(key)
	t.version++
	return true
}

// Object returns an accessor for key. The accessor is valid even for a
// missing key; check IsValid.
func (t *Table) Object(key core.ObjKey) Obj {
	return Obj{tbl: t, key: key}
}

// IsValid reports whether key refers to a live row.
func (t *Table) IsValid(key core.ObjKey) bool {
	if key.IsNull() || key.IsUnresolved() {
		return false
	}
	_, row := t.tree.find(key)
	return row != core.NotFound
}

// TraverseClusters visits all clusters pre-order; the visitor returns true
// to stop. The return value reports whether the traversal was stopped.
func (t *Table) TraverseClusters(fn func(*Cluster) bool) bool {
	return t.tree.traverse(fn)
}

// ObjKeyAtRow returns the key at the global row position in traversal
// order, or NullKey past the end.
func (t *Table) ObjKeyAtRow(row int) core.ObjKey {
	return t.tree.keyAtRow(row)
}

// FirstObject returns the first row in traversal order.
func (t *Table) FirstObject() (Obj, bool) {
	key := t.tree.keyAtRow(0)
	if key.IsNull() {
		return Obj{}, false
	}
	return Obj{tbl: t, key: key}, true
}

// AddSearchIndex creates and populates a search index on a string column.
func (t *Table) AddSearchIndex(col core.ColKey) error {
	if col.Type() != core.TypeString || col.IsList() {
		return ErrIndexUnsupported
	}
	ndx := col.LeafIndex()
	if t.indexes[ndx] != nil {
		return nil
	}
	t.indexes[ndx] = t.buildIndex(col)
	return nil
}

// RemoveSearchIndex drops the search index of a column.
func (t *Table) RemoveSearchIndex(col core.ColKey) {
	ndx := col.LeafIndex()
	if ndx >= 0 && ndx < len(t.indexes) {
		t.indexes[ndx] = nil
	}
}

// SearchIndex returns the column's search index, or nil.
func (t *Table) SearchIndex(col core.ColKey) *StringIndex {
	ndx := col.LeafIndex()
	if ndx < 0 || ndx >= len(t.indexes) {
		return nil
	}
	return t.indexes[ndx]
}

// HasSearchIndex reports whether the column is indexed.
func (t *Table) HasSearchIndex(col core.ColKey) bool {
	return t.SearchIndex(col) != nil
}

func (t *Table) buildIndex(col core.ColKey) *StringIndex {
	ix := NewStringIndex()
	var leaf StringLeaf
	t.TraverseClusters(func(c *Cluster) bool {
		if c.InitLeaf(col, &leaf) != nil {
			return true
		}
		for i := 0; i < leaf.Size(); i++ {
			if !leaf.IsNull(i) {
				ix.Insert(c.RealKey(i), leaf.Get(i))
			}
		}
		return false
	})
	return ix
}

// BuildSearchIndexes rebuilds every existing search index, one goroutine
// per indexed column. The table must not be mutated while this runs.
func (t *Table) BuildSearchIndexes(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	rebuilt := make([]*StringIndex, len(t.indexes))
	for ndx, ix := range t.indexes {
		if ix == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rebuilt[ndx] = t.buildIndex(t.keys[ndx])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for ndx, ix := range rebuilt {
		if ix != nil {
			t.indexes[ndx] = ix
		}
	}
	return nil
}
