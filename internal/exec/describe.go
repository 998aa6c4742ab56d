package exec

import (
	"fmt"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// DescribeState resolves column handles to names while serializing a
// predicate tree.
type DescribeState struct {
	Tbl *table.Table
}

// ColumnName renders the column behind col.
func (d *DescribeState) ColumnName(col core.ColKey) string {
	if d.Tbl != nil {
		if name := d.Tbl.ColumnName(col); name != "" {
			return name
		}
	}
	return fmt.Sprintf("column%d", col.LeafIndex())
}

// DescribeExpression renders the AND chain below n in infix form.
func DescribeExpression(n Node, st *DescribeState) string {
	out := ""
	for cur := n; cur != nil; cur = cur.base().Child {
		d := cur.Describe(st)
		if d == "" {
			continue
		}
		if out != "" {
			out += " and "
		}
		out += d
	}
	return out
}
