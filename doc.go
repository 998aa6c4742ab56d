// Package tessera provides the query engine of an embedded column-oriented
// database: declarative predicates evaluated against columnar object
// storage.
//
// A query is built fluently against a table snapshot, composed of
// comparisons, groups, disjunctions and negations, and finished with a
// terminal operation:
//
//	age := tbl.ColumnKey("age")
//	name := tbl.ColumnKey("name")
//
//	q := tessera.NewQuery(tbl).
//	    Group().
//	    Equal(age, core.Int(40)).
//	    Or().
//	    BeginsWith(name, "an", false).
//	    EndGroup().
//	    Greater(age, core.Int(0))
//
//	view, err := q.FindAll(0, -1, -1)
//	count, err := q.Count(-1)
//
// # Execution model
//
// At execution the engine walks the table's cluster tree and, per cluster,
// lets a cost-driven planner pick the cheapest predicate to drive the
// scan. The chosen node emits candidate rows in its own tight loop; the
// remaining siblings verify each candidate and periodically refresh their
// cost statistics on short probe windows, so the driving node can change
// mid-scan as selectivities reveal themselves. Equality over an indexed
// string column skips the scan entirely and iterates the search index in
// key order.
//
// Matches are always delivered in object-key order. A query executes
// single-threaded against its snapshot; clone a query to run it on
// another goroutine.
package tessera
