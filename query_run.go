package tessera

import (
	"github.com/shopspring/decimal"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/internal/exec"
	"github.com/tessera-db/tessera/table"
)

// Find returns the key of the first match in key order, or NullKey.
func (q *Query) Find() (core.ObjKey, error) {
	root, err := q.init()
	if err != nil {
		q.logger.LogFind(false, err)
		return core.NullKey, err
	}

	if root == nil {
		// No criteria; return the first row.
		if q.view != nil {
			if q.view.Size() > 0 {
				return q.view.GetKey(0), nil
			}
			return core.NullKey, nil
		}
		obj, ok := q.tbl.FirstObject()
		if !ok {
			return core.NullKey, nil
		}
		return obj.Key(), nil
	}

	if q.view != nil {
		for t := 0; t < q.view.Size(); t++ {
			if obj := q.view.GetObject(t); obj.IsValid() && q.evalObject(root, obj) {
				q.logger.LogFind(true, nil)
				return obj.Key(), nil
			}
		}
		q.logger.LogFind(false, nil)
		return core.NullKey, nil
	}

	found := core.NullKey
	q.tbl.TraverseClusters(func(c *table.Cluster) bool {
		root.SetCluster(c)
		if r := exec.FindFirst(root, 0, c.NodeSize()); r != core.NotFound {
			found = c.RealKey(r)
			return true
		}
		return false
	})
	q.logger.LogFind(!found.IsNull(), nil)
	return found, nil
}

// FindAll returns the matches within the [begin,end) row window, at most
// limit of them, in key order. Negative end means the table size,
// negative limit means unlimited.
func (q *Query) FindAll(begin, end, limit int) (*View, error) {
	keys, err := q.findAllKeys(begin, end, limit)
	q.logger.LogFindAll(len(keys), err)
	if err != nil {
		return nil, err
	}
	v := NewView(q.tbl, keys)
	v.source = q.Clone()
	v.begin, v.end, v.limit = begin, end, limit
	return v, nil
}

func (q *Query) findAllKeys(begin, end, limit int) ([]core.ObjKey, error) {
	lim := unlimited(limit)
	if lim == 0 {
		return nil, nil
	}
	root, err := q.init()
	if err != nil {
		return nil, err
	}

	if q.view != nil {
		if end < 0 || end > q.view.Size() {
			end = q.view.Size()
		}
		var out []core.ObjKey
		for t := begin; t < end && len(out) < lim; t++ {
			obj := q.view.GetObject(t)
			if obj.IsValid() && q.evalObject(root, obj) {
				out = append(out, obj.Key())
			}
		}
		return out, nil
	}

	tblSize := q.tbl.Size()
	if begin < 0 {
		begin = 0
	}
	if end < 0 || end > tblSize {
		end = tblSize
	}
	if begin >= end {
		return nil, nil
	}

	if root == nil {
		// No criteria; stream keys through the window.
		var out []core.ObjKey
		b, e := begin, end
		q.tbl.TraverseClusters(func(c *table.Cluster) bool {
			sz := c.NodeSize()
			if b < sz {
				upTo := sz
				if upTo > e {
					upTo = e
				}
				for i := b; i < upTo && lim > 0; i++ {
					out = append(out, c.RealKey(i))
					lim--
				}
				b = 0
			} else {
				b -= sz
			}
			e -= sz
			return e <= 0 || lim == 0
		})
		return out, nil
	}

	if best := exec.BestChild(root); best.HasSearchIndex() {
		// Translate the row window into an inclusive-lower,
		// exclusive-upper key window.
		beginKey, endKey := core.NullKey, core.NullKey
		if begin > 0 {
			beginKey = q.tbl.ObjKeyAtRow(begin)
		}
		if end < tblSize {
			endKey = q.tbl.ObjKeyAtRow(end)
		}
		var out []core.ObjKey
		best.IndexBasedAggregate(lim, func(obj table.Obj) bool {
			key := obj.Key()
			if !beginKey.IsNull() && key < beginKey {
				return false
			}
			if !endKey.IsNull() && key >= endKey {
				return false
			}
			if q.evalObject(root, obj) {
				out = append(out, key)
				return true
			}
			return false
		})
		return out, nil
	}

	st := exec.NewFindAllState(lim)
	b, e := begin, end
	q.tbl.TraverseClusters(func(c *table.Cluster) bool {
		sz := c.NodeSize()
		if b < sz {
			upTo := sz
			if upTo > e {
				upTo = e
			}
			root.SetCluster(c)
			st.SetKeyInfo(c.Offset(), c.Keys())
			exec.AggregateInternal(q.cfg, root, st, b, upTo, nil)
			b = 0
		} else {
			b -= sz
		}
		e -= sz
		return e <= 0 || st.LimitReached()
	})
	return st.Keys, nil
}

// Count returns the number of matches, at most limit. Negative limit
// means unlimited.
func (q *Query) Count(limit int) (int, error) {
	lim := unlimited(limit)
	if lim == 0 {
		return 0, nil
	}
	root, err := q.init()
	if err != nil {
		q.logger.LogCount(0, err)
		return 0, err
	}

	if root == nil {
		// No criteria; count everything.
		sz := q.tbl.Size()
		if q.view != nil {
			sz = q.view.Size()
		}
		if sz > lim {
			sz = lim
		}
		return sz, nil
	}

	if q.view != nil {
		cnt := 0
		for t := 0; t < q.view.Size() && cnt < lim; t++ {
			if obj := q.view.GetObject(t); obj.IsValid() && q.evalObject(root, obj) {
				cnt++
			}
		}
		q.logger.LogCount(cnt, nil)
		return cnt, nil
	}

	if best := exec.BestChild(root); best.HasSearchIndex() {
		cnt := best.IndexBasedAggregate(lim, func(obj table.Obj) bool {
			return q.evalObject(root, obj)
		})
		q.logger.LogCount(cnt, nil)
		return cnt, nil
	}

	st := exec.NewCountState(lim)
	q.tbl.TraverseClusters(func(c *table.Cluster) bool {
		root.SetCluster(c)
		st.SetKeyInfo(c.Offset(), c.Keys())
		exec.AggregateInternal(q.cfg, root, st, 0, c.NodeSize(), nil)
		return st.LimitReached()
	})
	q.logger.LogCount(st.MatchCount(), nil)
	return st.MatchCount(), nil
}

// Remove deletes every matching row and returns how many went away.
func (q *Query) Remove() (int, error) {
	keys, err := q.findAllKeys(0, -1, -1)
	if err != nil {
		q.logger.LogRemove(0, err)
		return 0, err
	}
	removed := 0
	for _, k := range keys {
		if q.tbl.RemoveObject(k) {
			removed++
		}
	}
	q.logger.LogRemove(removed, nil)
	return removed, nil
}

// aggregate runs the reducer over all matches, reading col as the source
// value.
func (q *Query) aggregate(st exec.QueryState, col core.ColKey) error {
	root, err := q.init()
	if err != nil {
		return err
	}

	if q.view != nil {
		st.SetKeyInfo(0, nil)
		for t := 0; t < q.view.Size(); t++ {
			obj := q.view.GetObject(t)
			if !obj.IsValid() || !q.evalObject(root, obj) {
				continue
			}
			if !st.Match(int(obj.Key()), obj.Get(col)) {
				break
			}
		}
		return nil
	}

	if root == nil {
		leaf := table.NewLeaf(col.Type(), col.Attrs())
		q.tbl.TraverseClusters(func(c *table.Cluster) bool {
			if c.InitLeaf(col, leaf) != nil {
				return true
			}
			st.SetKeyInfo(c.Offset(), c.Keys())
			for i := 0; i < c.NodeSize(); i++ {
				if !st.Match(i, leaf.GetMixed(i)) {
					return true
				}
			}
			return false
		})
		return nil
	}

	if best := exec.BestChild(root); best.HasSearchIndex() {
		st.SetKeyInfo(0, nil)
		best.IndexBasedAggregate(unlimited(-1), func(obj table.Obj) bool {
			if !q.evalObject(root, obj) {
				return false
			}
			st.Match(int(obj.Key()), obj.Get(col))
			return true
		})
		return nil
	}

	leaf := table.NewLeaf(col.Type(), col.Attrs())
	q.tbl.TraverseClusters(func(c *table.Cluster) bool {
		root.SetCluster(c)
		if c.InitLeaf(col, leaf) != nil {
			return true
		}
		st.SetKeyInfo(c.Offset(), c.Keys())
		exec.AggregateInternal(q.cfg, root, st, 0, c.NodeSize(), leaf)
		return st.LimitReached()
	})
	return nil
}

func (q *Query) checkAggColumn(col core.ColKey, want ...core.DataType) error {
	if !col.IsValid() {
		return &NoSuchColumnError{Name: "?"}
	}
	for _, w := range want {
		if col.Type() == w && !col.IsList() {
			return nil
		}
	}
	name := ""
	if q.tbl != nil {
		name = q.tbl.ColumnName(col)
	}
	return &TypeMismatchError{Column: name, Expected: want[0]}
}

// SumInt sums an integer column over the matches.
func (q *Query) SumInt(col core.ColKey) (int64, error) {
	if err := q.checkAggColumn(col, core.TypeInt); err != nil {
		return 0, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("sum", st.MatchCount(), err)
	return st.SumInt, err
}

// SumFloat sums a float column over the matches.
func (q *Query) SumFloat(col core.ColKey) (float64, error) {
	if err := q.checkAggColumn(col, core.TypeFloat); err != nil {
		return 0, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("sum", st.MatchCount(), err)
	return st.SumFloat, err
}

// SumDouble sums a double column over the matches.
func (q *Query) SumDouble(col core.ColKey) (float64, error) {
	if err := q.checkAggColumn(col, core.TypeDouble); err != nil {
		return 0, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("sum", st.MatchCount(), err)
	return st.SumFloat, err
}

// SumDecimal sums a decimal column over the matches.
func (q *Query) SumDecimal(col core.ColKey) (decimal.Decimal, error) {
	if err := q.checkAggColumn(col, core.TypeDecimal); err != nil {
		return decimal.Decimal{}, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("sum", st.MatchCount(), err)
	return st.SumDecimal, err
}

func (q *Query) minmax(col core.ColKey, isMin bool, want ...core.DataType) (core.Mixed, core.ObjKey, error) {
	if err := q.checkAggColumn(col, want...); err != nil {
		return core.Mixed{}, core.NullKey, err
	}
	st := exec.NewMinMaxState(isMin, unlimited(-1))
	err := q.aggregate(st, col)
	op := "max"
	if isMin {
		op = "min"
	}
	q.logger.LogAggregate(op, st.MatchCount(), err)
	return st.Value, st.MinMaxKey, err
}

// MinInt returns the minimum of an integer column and the key of the
// first row attaining it; the key is null when no row matched.
func (q *Query) MinInt(col core.ColKey) (int64, core.ObjKey, error) {
	v, key, err := q.minmax(col, true, core.TypeInt)
	return v.I64, key, err
}

// MaxInt returns the maximum of an integer column.
func (q *Query) MaxInt(col core.ColKey) (int64, core.ObjKey, error) {
	v, key, err := q.minmax(col, false, core.TypeInt)
	return v.I64, key, err
}

// MinFloat returns the minimum of a float column.
func (q *Query) MinFloat(col core.ColKey) (float64, core.ObjKey, error) {
	v, key, err := q.minmax(col, true, core.TypeFloat)
	return v.F64, key, err
}

// MaxFloat returns the maximum of a float column.
func (q *Query) MaxFloat(col core.ColKey) (float64, core.ObjKey, error) {
	v, key, err := q.minmax(col, false, core.TypeFloat)
	return v.F64, key, err
}

// MinDouble returns the minimum of a double column.
func (q *Query) MinDouble(col core.ColKey) (float64, core.ObjKey, error) {
	v, key, err := q.minmax(col, true, core.TypeDouble)
	return v.F64, key, err
}

// MaxDouble returns the maximum of a double column.
func (q *Query) MaxDouble(col core.ColKey) (float64, core.ObjKey, error) {
	v, key, err := q.minmax(col, false, core.TypeDouble)
	return v.F64, key, err
}

// MinTimestamp returns the minimum of a timestamp column.
func (q *Query) MinTimestamp(col core.ColKey) (core.Timestamp, core.ObjKey, error) {
	v, key, err := q.minmax(col, true, core.TypeTimestamp)
	return v.TS, key, err
}

// MaxTimestamp returns the maximum of a timestamp column.
func (q *Query) MaxTimestamp(col core.ColKey) (core.Timestamp, core.ObjKey, error) {
	v, key, err := q.minmax(col, false, core.TypeTimestamp)
	return v.TS, key, err
}

// MinDecimal returns the minimum of a decimal column.
func (q *Query) MinDecimal(col core.ColKey) (decimal.Decimal, core.ObjKey, error) {
	v, key, err := q.minmax(col, true, core.TypeDecimal)
	return v.Dec, key, err
}

// MaxDecimal returns the maximum of a decimal column.
func (q *Query) MaxDecimal(col core.ColKey) (decimal.Decimal, core.ObjKey, error) {
	v, key, err := q.minmax(col, false, core.TypeDecimal)
	return v.Dec, key, err
}

// AverageInt averages an integer column over the matches, returning the
// average and the number of non-null values. Empty input averages to 0.
func (q *Query) AverageInt(col core.ColKey) (float64, int, error) {
	if err := q.checkAggColumn(col, core.TypeInt); err != nil {
		return 0, 0, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("avg", st.MatchCount(), err)
	if st.NonNull == 0 {
		return 0, 0, err
	}
	return float64(st.SumInt) / float64(st.NonNull), st.NonNull, err
}

// AverageFloat averages a float column over the matches.
func (q *Query) AverageFloat(col core.ColKey) (float64, int, error) {
	return q.averageFloating(col, core.TypeFloat)
}

// AverageDouble averages a double column over the matches.
func (q *Query) AverageDouble(col core.ColKey) (float64, int, error) {
	return q.averageFloating(col, core.TypeDouble)
}

func (q *Query) averageFloating(col core.ColKey, typ core.DataType) (float64, int, error) {
	if err := q.checkAggColumn(col, typ); err != nil {
		return 0, 0, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("avg", st.MatchCount(), err)
	if st.NonNull == 0 {
		return 0, 0, err
	}
	return st.SumFloat / float64(st.NonNull), st.NonNull, err
}

// AverageDecimal averages a decimal column over the matches.
func (q *Query) AverageDecimal(col core.ColKey) (decimal.Decimal, int, error) {
	if err := q.checkAggColumn(col, core.TypeDecimal); err != nil {
		return decimal.Decimal{}, 0, err
	}
	st := exec.NewSumState(unlimited(-1))
	err := q.aggregate(st, col)
	q.logger.LogAggregate("avg", st.MatchCount(), err)
	if st.NonNull == 0 {
		return decimal.Decimal{}, 0, err
	}
	return st.SumDecimal.Div(decimal.NewFromInt(int64(st.NonNull))), st.NonNull, err
}
