package exec

import (
	"math"
	"strings"

	"github.com/tessera-db/tessera/core"
)

// Tri is a three-valued logic value.
type Tri uint8

const (
	// TriFalse means the condition definitely does not hold.
	TriFalse Tri = iota
	// TriUnknown means the condition cannot be decided (a null cell
	// compared against a non-null needle).
	TriUnknown
	// TriTrue means the condition holds.
	TriTrue
)

func triOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

// triNot inverts a Tri; unknown stays unknown.
func triNot(t Tri) Tri {
	switch t {
	case TriTrue:
		return TriFalse
	case TriFalse:
		return TriTrue
	default:
		return TriUnknown
	}
}

// triAnd combines two Tri values with Kleene AND.
func triAnd(a, b Tri) Tri {
	if a < b {
		return a
	}
	return b
}

// triOr combines two Tri values with Kleene OR.
func triOr(a, b Tri) Tri {
	if a > b {
		return a
	}
	return b
}

// Op is a scalar comparison operator.
type Op uint8

const (
	OpEqual Op = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

// String returns the operator's description form.
func (op Op) String() string {
	switch op {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// evalScalar computes `cell op needle` in three-valued logic.
//
// A null needle turns Equal into an is-null test and NotEqual into an
// is-not-null test; ordered operators never match against null. A null
// cell against a non-null needle is unknown. NaN equality follows the
// bit-pattern total order, ordered comparisons follow IEEE-754 (NaN is
// unordered, so they are false).
func evalScalar(op Op, cell, needle core.Mixed) Tri {
	if needle.IsNull() {
		switch op {
		case OpEqual:
			return triOf(cell.IsNull())
		case OpNotEqual:
			return triOf(!cell.IsNull())
		default:
			return TriFalse
		}
	}
	if cell.IsNull() {
		return TriUnknown
	}
	switch op {
	case OpEqual:
		return triOf(cell.Equals(needle))
	case OpNotEqual:
		return triOf(!cell.Equals(needle))
	}
	if isNaNMixed(cell) || isNaNMixed(needle) {
		return TriFalse
	}
	cmp := cell.Compare(needle)
	switch op {
	case OpLess:
		return triOf(cmp < 0)
	case OpLessEqual:
		return triOf(cmp <= 0)
	case OpGreater:
		return triOf(cmp > 0)
	case OpGreaterEqual:
		return triOf(cmp >= 0)
	default:
		return TriFalse
	}
}

func isNaNMixed(v core.Mixed) bool {
	return (v.Kind == core.KindFloat || v.Kind == core.KindDouble) && math.IsNaN(v.F64)
}

// StrOp is a string condition operator.
type StrOp uint8

const (
	StrEqual StrOp = iota
	StrNotEqual
	StrBeginsWith
	StrEndsWith
	StrContains
	StrLike
)

// StringCond pairs a string operator with its case mode. Case-insensitive
// matching uses precomputed upper/lower forms of the needle so the needle
// is folded once per query, not once per row.
type StringCond struct {
	Op            StrOp
	CaseSensitive bool
}

// describeOp returns the operator's description form; case-insensitive
// variants carry the [c] suffix.
func (c StringCond) describeOp() string {
	var s string
	switch c.Op {
	case StrEqual:
		s = "=="
	case StrNotEqual:
		s = "!="
	case StrBeginsWith:
		s = "BEGINSWITH"
	case StrEndsWith:
		s = "ENDSWITH"
	case StrContains:
		s = "CONTAINS"
	case StrLike:
		s = "LIKE"
	}
	if !c.CaseSensitive {
		s += "[c]"
	}
	return s
}

// Match tests cand against the needle and its precomputed case forms.
func (c StringCond) Match(needle, upper, lower, cand string) bool {
	if c.CaseSensitive {
		switch c.Op {
		case StrEqual:
			return cand == needle
		case StrNotEqual:
			return cand != needle
		case StrBeginsWith:
			return strings.HasPrefix(cand, needle)
		case StrEndsWith:
			return strings.HasSuffix(cand, needle)
		case StrContains:
			return strings.Contains(cand, needle)
		case StrLike:
			return likeMatch(cand, needle, true)
		}
		return false
	}
	if len(upper) != len(lower) {
		// Folding changed the byte length (non-ASCII needle); fold the
		// candidate instead of walking the case forms.
		folded := strings.ToLower(cand)
		switch c.Op {
		case StrEqual:
			return strings.EqualFold(cand, needle)
		case StrNotEqual:
			return !strings.EqualFold(cand, needle)
		case StrBeginsWith:
			return strings.HasPrefix(folded, lower)
		case StrEndsWith:
			return strings.HasSuffix(folded, lower)
		case StrContains:
			return strings.Contains(folded, lower)
		case StrLike:
			return likeMatch(cand, needle, false)
		}
		return false
	}
	switch c.Op {
	case StrEqual:
		return len(cand) == len(upper) && foldedAt(cand, 0, upper, lower)
	case StrNotEqual:
		return !(len(cand) == len(upper) && foldedAt(cand, 0, upper, lower))
	case StrBeginsWith:
		return len(cand) >= len(upper) && foldedAt(cand, 0, upper, lower)
	case StrEndsWith:
		return len(cand) >= len(upper) && foldedAt(cand, len(cand)-len(upper), upper, lower)
	case StrContains:
		return containsFold(cand, upper, lower)
	case StrLike:
		return likeMatch(cand, needle, false)
	}
	return false
}

// foldedAt compares cand[at:at+len(upper)] against the needle's case
// forms byte-wise. Requires len(upper) == len(lower).
func foldedAt(cand string, at int, upper, lower string) bool {
	for i := 0; i < len(upper); i++ {
		if c := cand[at+i]; c != upper[i] && c != lower[i] {
			return false
		}
	}
	return true
}

func containsFold(cand, upper, lower string) bool {
	if len(upper) == 0 {
		return true
	}
	for i := 0; i+len(upper) <= len(cand); i++ {
		if foldedAt(cand, i, upper, lower) {
			return true
		}
	}
	return false
}

// likeMatch implements the LIKE wildcards: '*' matches any run, '?'
// matches a single byte.
func likeMatch(cand, pattern string, caseSensitive bool) bool {
	if !caseSensitive {
		cand = strings.ToLower(cand)
		pattern = strings.ToLower(pattern)
	}
	// Iterative glob with single backtrack point.
	var ci, pi int
	star, starCi := -1, 0
	for ci < len(cand) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == cand[ci]):
			ci++
			pi++
		case pi < len(pattern) && pattern[pi] == '*':
			star, starCi = pi, ci
			pi++
		case star >= 0:
			starCi++
			ci = starCi
			pi = star + 1
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
