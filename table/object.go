package table

import (
	"fmt"

	"github.com/tessera-db/tessera/core"
)

// Obj is an accessor bound to one row of a table, addressed by its stable
// object key.
type Obj struct {
	tbl *Table
	key core.ObjKey
}

// Key returns the object's key.
func (o Obj) Key() core.ObjKey { return o.key }

// Table returns the owning table.
func (o Obj) Table() *Table { return o.tbl }

// IsValid reports whether the object still exists.
func (o Obj) IsValid() bool { return o.tbl != nil && o.tbl.IsValid(o.key) }

// Get returns the cell of col, or null for a missing row.
func (o Obj) Get(col core.ColKey) core.Mixed {
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return core.Null()
	}
	return c.get(col, row)
}

// GetList returns the list cell of col.
func (o Obj) GetList(col core.ColKey) []core.Mixed {
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return nil
	}
	if p, ok := c.cols[col.LeafIndex()].(*listPayload); ok {
		return p.vals[row]
	}
	return nil
}

// GetLinks returns the link-list cell of col.
func (o Obj) GetLinks(col core.ColKey) []core.ObjKey {
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return nil
	}
	if p, ok := c.cols[col.LeafIndex()].(*linkListPayload); ok {
		return p.vals[row]
	}
	return nil
}

// Set writes the cell of col, maintaining any search index.
func (o Obj) Set(col core.ColKey, v core.Mixed) error {
	if err := checkCellType(col, v); err != nil {
		return err
	}
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return fmt.Errorf("set: object %d not found", o.key)
	}
	ndx := col.LeafIndex()
	if ix := o.tbl.SearchIndex(col); ix != nil {
		if old := c.cols[ndx].get(row); old.Kind == core.KindString {
			ix.Erase(o.key, old.S)
		}
		if v.Kind == core.KindString {
			ix.Insert(o.key, v.S)
		}
	}
	c.cols[ndx].set(row, v)
	o.tbl.version++
	return nil
}

// SetList writes a scalar-list cell.
func (o Obj) SetList(col core.ColKey, vals []core.Mixed) error {
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return fmt.Errorf("set list: object %d not found", o.key)
	}
	p, ok := c.cols[col.LeafIndex()].(*listPayload)
	if !ok {
		return fmt.Errorf("set list: column %q is not a list", o.tbl.ColumnName(col))
	}
	p.vals[row] = vals
	o.tbl.version++
	return nil
}

// SetLinks writes a link-list cell.
func (o Obj) SetLinks(col core.ColKey, keys []core.ObjKey) error {
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return fmt.Errorf("set links: object %d not found", o.key)
	}
	p, ok := c.cols[col.LeafIndex()].(*linkListPayload)
	if !ok {
		return fmt.Errorf("set links: column %q is not a link list", o.tbl.ColumnName(col))
	}
	p.vals[row] = keys
	o.tbl.version++
	return nil
}

// Evaluate locates the object's cluster and row and hands them to cb,
// returning cb's result. Returns false for a missing row.
func (o Obj) Evaluate(cb func(c *Cluster, row int) bool) bool {
	c, row := o.tbl.tree.find(o.key)
	if row == core.NotFound {
		return false
	}
	return cb(c, row)
}

// checkCellType verifies that v can be stored in col.
func checkCellType(col core.ColKey, v core.Mixed) error {
	if v.IsNull() {
		if !col.IsNullable() && col.Type() != core.TypeLink {
			return fmt.Errorf("column is not nullable")
		}
		return nil
	}
	want := col.Type()
	var got core.DataType
	switch v.Kind {
	case core.KindInt:
		got = core.TypeInt
	case core.KindBool:
		got = core.TypeBool
	case core.KindFloat:
		got = core.TypeFloat
	case core.KindDouble:
		got = core.TypeDouble
	case core.KindString:
		got = core.TypeString
	case core.KindBinary:
		got = core.TypeBinary
	case core.KindTimestamp:
		got = core.TypeTimestamp
	case core.KindDecimal:
		got = core.TypeDecimal
	case core.KindObjectID:
		got = core.TypeObjectID
	case core.KindLink:
		got = core.TypeLink
	default:
		return fmt.Errorf("invalid value")
	}
	if got != want {
		return fmt.Errorf("cannot store %s in %s column", got, want)
	}
	return nil
}
