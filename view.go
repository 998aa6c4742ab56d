package tessera

import (
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// View is an ordered sequence of object keys over one table — the result
// of FindAll, and a possible source for further queries. A view produced
// by a query remembers it and can re-run it when the table has moved on.
//
// Views are shared-immutable for a query's lifetime; SyncIfNeeded is
// called before execution to catch up with the snapshot's version.
type View struct {
	tbl  *table.Table
	keys []core.ObjKey

	source      *Query
	begin, end  int
	limit       int
	syncVersion uint64
}

// NewView wraps an explicit key sequence over a table.
func NewView(tbl *table.Table, keys []core.ObjKey) *View {
	return &View{tbl: tbl, keys: keys, syncVersion: tbl.Version()}
}

// Size returns the number of rows in the view.
func (v *View) Size() int { return len(v.keys) }

// GetKey returns the key at position i.
func (v *View) GetKey(i int) core.ObjKey { return v.keys[i] }

// Keys returns the backing key sequence; callers must not modify it.
func (v *View) Keys() []core.ObjKey { return v.keys }

// GetObject returns the object accessor at position i.
func (v *View) GetObject(i int) table.Obj { return v.tbl.Object(v.GetKey(i)) }

// SyncIfNeeded re-runs the producing query when the table version moved
// since the view was built. Detached views never resync.
func (v *View) SyncIfNeeded() error {
	if v.source == nil || v.tbl.Version() == v.syncVersion {
		return nil
	}
	// Stamp first: the re-run reads the current version.
	v.syncVersion = v.tbl.Version()
	keys, err := v.source.findAllKeys(v.begin, v.end, v.limit)
	if err != nil {
		return err
	}
	v.keys = keys
	return nil
}
