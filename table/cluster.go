package table

import (
	"fmt"

	"github.com/tessera-db/tessera/core"
)

// Cluster is a leaf of the table's B+-tree: a contiguous run of rows with
// per-column typed payload arrays. Row indices are dense 0..N-1 and the
// object key of row i is Offset() + Keys().Get(i).
type Cluster struct {
	offset int64
	keys   KeyArray
	cols   []payload
}

func newCluster(offset int64, specs []columnSpec) *Cluster {
	c := &Cluster{offset: offset, cols: make([]payload, len(specs))}
	for i, s := range specs {
		c.cols[i] = newPayload(s.typ, s.attrs)
	}
	return c
}

// NodeSize returns the number of rows in the cluster.
func (c *Cluster) NodeSize() int { return c.keys.Size() }

// Offset returns the key offset of the cluster.
func (c *Cluster) Offset() int64 { return c.offset }

// Keys returns the cluster's key array.
func (c *Cluster) Keys() *KeyArray { return &c.keys }

// RealKey returns the object key of row i.
func (c *Cluster) RealKey(i int) core.ObjKey {
	return core.ObjKey(c.offset + c.keys.Get(i))
}

// LowerBoundKey returns the first row whose cluster-local key is >= k.
func (c *Cluster) LowerBoundKey(k core.ObjKey) int {
	return c.keys.lowerBound(int64(k))
}

// InitLeaf binds a leaf reader to the column's payload in this cluster.
// The binding is O(1): only slice headers are copied.
func (c *Cluster) InitLeaf(col core.ColKey, leaf Leaf) error {
	ndx := col.LeafIndex()
	if ndx < 0 || ndx >= len(c.cols) {
		return fmt.Errorf("init leaf: column %d out of range", ndx)
	}
	if !leaf.bind(c.cols[ndx]) {
		return fmt.Errorf("init leaf: leaf type does not match column %d (%s)", ndx, col.Type())
	}
	return nil
}

func (c *Cluster) get(col core.ColKey, row int) core.Mixed {
	return c.cols[col.LeafIndex()].get(row)
}

func (c *Cluster) isNull(col core.ColKey, row int) bool {
	return c.cols[col.LeafIndex()].isNull(row)
}

// insertRow inserts a row for the given object key with all cells null or
// zero, returning the row index.
func (c *Cluster) insertRow(key core.ObjKey) int {
	if c.keys.Size() == 0 {
		c.offset = int64(key)
	} else if int64(key) < c.offset {
		// Rebase so local keys stay non-negative.
		delta := c.offset - int64(key)
		for i := range c.keys.keys {
			c.keys.keys[i] += delta
		}
		c.offset = int64(key)
	}
	local := int64(key) - c.offset
	row := c.keys.lowerBound(local)
	c.keys.insert(row, local)
	for _, p := range c.cols {
		p.insert(row, core.Null())
	}
	return row
}

func (c *Cluster) eraseRow(row int) {
	c.keys.erase(row)
	for _, p := range c.cols {
		p.erase(row)
	}
}

// findRow returns the row holding key, or NotFound.
func (c *Cluster) findRow(key core.ObjKey) int {
	local := int64(key) - c.offset
	if local < 0 {
		return core.NotFound
	}
	row := c.keys.lowerBound(local)
	if row == c.keys.Size() || c.keys.Get(row) != local {
		return core.NotFound
	}
	return row
}

// split moves the upper half of the cluster into a new cluster and
// returns it.
func (c *Cluster) split() *Cluster {
	at := c.NodeSize() / 2
	newOffset := int64(c.RealKey(at))
	next := &Cluster{offset: newOffset, cols: make([]payload, len(c.cols))}
	delta := newOffset - c.offset
	next.keys.keys = make([]int64, 0, c.NodeSize()-at)
	for _, k := range c.keys.keys[at:] {
		next.keys.keys = append(next.keys.keys, k-delta)
	}
	c.keys.keys = c.keys.keys[:at]
	for i, p := range c.cols {
		next.cols[i] = p.splitTail(at)
	}
	return next
}

// addColumn appends storage for a new column to an existing cluster.
func (c *Cluster) addColumn(spec columnSpec) {
	p := newPayload(spec.typ, spec.attrs)
	for i := 0; i < c.keys.Size(); i++ {
		p.insert(i, core.Null())
	}
	c.cols = append(c.cols, p)
}
