package tessera

import "github.com/tessera-db/tessera/internal/exec"

// Option configures query execution behavior.
//
// Options exist to keep the constructor surface small; the tuning
// constants are hints only and never change query results.
type Option func(*Query)

// WithFindLocals sets the batch of matches the driving predicate may
// deliver before the planner re-evaluates which node is cheapest.
// Values below 1 fall back to the default.
func WithFindLocals(n int) Option {
	return func(q *Query) {
		q.cfg.FindLocals = n
	}
}

// WithBestDist bounds the probe window handed to non-driving predicates
// when their statistics are refreshed. Small windows keep a slow sibling
// from dominating the scan; indexed nodes ignore the bound.
// Values below 1 fall back to the default.
func WithBestDist(n int) Option {
	return func(q *Query) {
		q.cfg.BestDist = n
	}
}

// WithLogger sets the logger used by terminal operations.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(q *Query) {
		if l == nil {
			l = NoopLogger()
		}
		q.logger = l
	}
}

func defaultConfig() exec.Config {
	return exec.DefaultConfig()
}
