// Package table implements the columnar object storage the query engine
// evaluates against: tables whose rows live in bounded clusters, arranged in
// a B+-tree keyed by object key.
//
// # Layout
//
//   - Table: schema, cluster tree, optional per-column search indexes
//   - Cluster: a contiguous run of rows; per-column typed payload arrays
//   - Leaf readers: typed random-access views bound to one cluster in O(1)
//   - StringIndex: value → object-key postings for the index fast path
//
// Row indices within a cluster are dense 0..N-1 and the object key of a row
// is cluster offset + key array entry. Cluster sizes are bounded so leaf
// reads stay cheap.
//
// The package performs no locking: a table is a snapshot owned by its
// caller. Readers never mutate cluster bytes.
package table
