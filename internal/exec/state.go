package exec

import (
	"github.com/shopspring/decimal"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// QueryState is the reducer fed by the executor. Match is called once per
// fully verified row; returning false stops the execution early (the limit
// was reached or a single result was wanted).
type QueryState interface {
	Match(row int, v core.Mixed) bool
	MatchCount() int
	LimitReached() bool
	SetKeyInfo(offset int64, keys *table.KeyArray)
}

// StateBase carries the bookkeeping shared by every reducer. During
// cluster scans keyValues maps local rows to keys; on the index fast path
// keyValues is nil and the row argument already is the object key.
type StateBase struct {
	matchCount int
	limit      int
	keyOffset  int64
	keyValues  *table.KeyArray
}

func newStateBase(limit int) StateBase {
	return StateBase{limit: limit}
}

// SetKeyInfo binds the current cluster's key mapping.
func (s *StateBase) SetKeyInfo(offset int64, keys *table.KeyArray) {
	s.keyOffset = offset
	s.keyValues = keys
}

// MatchCount returns the number of accepted matches.
func (s *StateBase) MatchCount() int { return s.matchCount }

// LimitReached reports whether the match limit is exhausted.
func (s *StateBase) LimitReached() bool { return s.matchCount >= s.limit }

// Key resolves the object key of a matched row.
func (s *StateBase) Key(row int) core.ObjKey {
	if s.keyValues == nil {
		return core.ObjKey(s.keyOffset + int64(row))
	}
	return core.ObjKey(s.keyOffset + s.keyValues.Get(row))
}

// CountState counts matches up to the limit.
type CountState struct {
	StateBase
}

// NewCountState creates a count reducer.
func NewCountState(limit int) *CountState {
	return &CountState{StateBase: newStateBase(limit)}
}

// Match accepts the row and stops at the limit.
func (s *CountState) Match(int, core.Mixed) bool {
	s.matchCount++
	return s.matchCount < s.limit
}

// FindState records the first match and stops.
type FindState struct {
	StateBase
	FoundKey core.ObjKey
}

// NewFindState creates a first-match reducer.
func NewFindState() *FindState {
	return &FindState{StateBase: newStateBase(1), FoundKey: core.NullKey}
}

// Match records the key and requests an early stop.
func (s *FindState) Match(row int, _ core.Mixed) bool {
	s.matchCount++
	s.FoundKey = s.Key(row)
	return false
}

// FindAllState appends matched keys to a result column.
type FindAllState struct {
	StateBase
	Keys []core.ObjKey
}

// NewFindAllState creates a find-all reducer.
func NewFindAllState(limit int) *FindAllState {
	return &FindAllState{StateBase: newStateBase(limit)}
}

// Match appends the key and stops at the limit.
func (s *FindAllState) Match(row int, _ core.Mixed) bool {
	s.matchCount++
	s.Keys = append(s.Keys, s.Key(row))
	return s.matchCount < s.limit
}

// SumState accumulates a numeric column over the matches. Integer input
// widens to int64, float input to float64, decimal stays decimal. Null
// cells are skipped and not counted in NonNull; MatchCount includes them.
type SumState struct {
	StateBase
	SumInt     int64
	SumFloat   float64
	SumDecimal decimal.Decimal
	NonNull    int
}

// NewSumState creates a sum reducer.
func NewSumState(limit int) *SumState {
	return &SumState{StateBase: newStateBase(limit)}
}

// Match folds the value into the accumulator of its kind.
func (s *SumState) Match(_ int, v core.Mixed) bool {
	s.matchCount++
	if !v.IsNull() {
		s.NonNull++
		switch v.Kind {
		case core.KindInt:
			s.SumInt += v.I64
		case core.KindFloat, core.KindDouble:
			s.SumFloat += v.F64
		case core.KindDecimal:
			s.SumDecimal = s.SumDecimal.Add(v.Dec)
		}
	}
	return s.matchCount < s.limit
}

// MinMaxState tracks the extremum of a column over the matches, together
// with the object key of the first row attaining it. Null cells are
// ignored.
type MinMaxState struct {
	StateBase
	isMin     bool
	Value     core.Mixed
	MinMaxKey core.ObjKey
}

// NewMinMaxState creates a min (isMin) or max reducer.
func NewMinMaxState(isMin bool, limit int) *MinMaxState {
	return &MinMaxState{
		StateBase: newStateBase(limit),
		isMin:     isMin,
		Value:     core.Mixed{},
		MinMaxKey: core.NullKey,
	}
}

// Match updates the extremum; ties keep the first key seen.
func (s *MinMaxState) Match(row int, v core.Mixed) bool {
	s.matchCount++
	if !v.IsNull() {
		replace := s.Value.Kind == core.KindInvalid
		if !replace {
			cmp := v.Compare(s.Value)
			replace = (s.isMin && cmp < 0) || (!s.isMin && cmp > 0)
		}
		if replace {
			s.Value = v
			s.MinMaxKey = s.Key(row)
		}
	}
	return s.matchCount < s.limit
}
