// Package exec holds the query engine internals: condition operators,
// predicate nodes, the cost-driven planner and the aggregate state
// machines.
//
// A query is an AND-chain of predicate nodes (each node links to the next
// via its Child pointer). Every node keeps running statistics — dD, the
// average row distance between its matches, and dT, the average cost per
// probe — and the planner repeatedly picks the cheapest node to drive the
// scan while the remaining siblings verify candidates and refresh their
// statistics on short probe windows.
//
// Point evaluation is three-valued (true/false/unknown) so that negation
// composes with null cells: a comparison over a null cell is unknown, a
// query yields rows evaluating true, and NotNode yields rows whose subtree
// evaluates false. Unknown never matches on either side of a negation.
package exec
