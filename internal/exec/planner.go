package exec

import "github.com/tessera-db/tessera/table"

// Cost bootstraps per node family, refined during execution. Indexed
// access is free, enumerated strings are cheap, dense scans cost a leaf
// read per row, compiled expressions are the most expensive probe.
const (
	costIndexed    = 0.0
	costStringEnum = 1.0
	costDenseScan  = 10.0
	costExpression = 50.0

	// bootstrapDD is the assumed row distance between matches before any
	// statistics exist.
	bootstrapDD = 100.0
)

// probeMatches bounds the matches delivered inside a probe window given to
// a non-best sibling.
const probeMatches = 4

// Default tuning constants; configurable per query.
const (
	DefaultFindLocals = 2048
	DefaultBestDist   = 4096
)

// Config carries the executor tuning constants.
type Config struct {
	// FindLocals is the batch of local matches the best node may deliver
	// before the planner re-evaluates.
	FindLocals int
	// BestDist bounds the probe window given to non-best siblings so a
	// slow sibling cannot dominate the scan.
	BestDist int
}

// DefaultConfig returns the default tuning constants.
func DefaultConfig() Config {
	return Config{FindLocals: DefaultFindLocals, BestDist: DefaultBestDist}
}

func (c Config) normalized() Config {
	if c.FindLocals < 1 {
		c.FindLocals = DefaultFindLocals
	}
	if c.BestDist < 1 {
		c.BestDist = DefaultBestDist
	}
	return c
}

// FindBestNode returns the index of the cheapest sibling of pn. Ties keep
// the earliest node so plans are stable.
func FindBestNode(pn Node) int {
	children := pn.base().children
	best := 0
	bestCost := children[0].Cost()
	for i := 1; i < len(children); i++ {
		if c := children[i].Cost(); c < bestCost {
			best, bestCost = i, c
		}
	}
	return best
}

// BestChild returns the cheapest gathered sibling of pn. GatherChildren
// must have run.
func BestChild(pn Node) Node {
	return pn.base().children[FindBestNode(pn)]
}

// AggregateInternal executes the [start,end) range of one cluster against
// the AND group rooted at pn, delivering matches to st.
//
// Each turn the cheapest sibling drives the scan in its own tight loop for
// up to FindLocals matches. The remaining siblings then get short probe
// windows — bounded by BestDist, unbounded for indexed (dT == 0) nodes —
// so their statistics stay fresh enough for the next best-node decision.
func AggregateInternal(cfg Config, pn Node, st QueryState, start, end int, source table.Leaf) {
	cfg = cfg.normalized()
	children := pn.base().children
	for start < end {
		best := FindBestNode(pn)
		start = children[best].AggregateLocal(st, start, end, cfg.FindLocals, source)

		for c := 0; c < len(children) && start < end; c++ {
			if c == best {
				continue
			}
			cb := children[c].base()
			if cb.DT < children[c].Cost() {
				maxD := cfg.BestDist
				td := start + maxD
				if cb.DT == 0 || td > end {
					td = end
				}
				start = children[c].AggregateLocal(st, start, td, probeMatches, source)
			}
		}
	}
}
