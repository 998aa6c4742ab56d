package table

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/cespare/xxhash/v2"

	"github.com/tessera-db/tessera/core"
)

// FindKind classifies a search-index lookup result.
type FindKind uint8

const (
	// FindResultNotFound means no object holds the value.
	FindResultNotFound FindKind = iota
	// FindResultSingle means exactly one object holds the value.
	FindResultSingle
	// FindResultColumn means several objects hold the value; the result
	// exposes the posting slice without copying.
	FindResultColumn
)

// FindResult is the outcome of StringIndex.FindAllNoCopy. For
// FindResultColumn the matching keys are Keys[Start:End] in ascending
// order; the slice aliases index storage and must not be modified.
type FindResult struct {
	Kind  FindKind
	Key   core.ObjKey
	Keys  []core.ObjKey
	Start int
	End   int
}

// StringIndex maps column values to the set of objects holding them. It is
// the structure behind the executor's index fast path: postings keep object
// keys sorted so index iteration yields matches in key order.
//
// Postings are addressed by a 64-bit hash of the value's stable string form
// with per-bucket collision chains, and each posting mirrors its keys in a
// roaring bitmap for O(1) membership and cheap unions (case-insensitive
// lookups union many postings).
type StringIndex struct {
	buckets map[uint64][]*posting
	count   int
}

type posting struct {
	value  string
	keys   []core.ObjKey
	bitmap *roaring64.Bitmap
}

// NewStringIndex creates an empty search index.
func NewStringIndex() *StringIndex {
	return &StringIndex{buckets: make(map[uint64][]*posting)}
}

// Count returns the number of (value, key) entries.
func (ix *StringIndex) Count() int { return ix.count }

func indexHash(value string) uint64 { return xxhash.Sum64String(value) }

func (ix *StringIndex) lookup(value string) *posting {
	for _, p := range ix.buckets[indexHash(value)] {
		if p.value == value {
			return p
		}
	}
	return nil
}

// Insert adds key under value.
func (ix *StringIndex) Insert(key core.ObjKey, value string) {
	p := ix.lookup(value)
	if p == nil {
		h := indexHash(value)
		p = &posting{value: value, bitmap: roaring64.New()}
		ix.buckets[h] = append(ix.buckets[h], p)
	}
	if p.bitmap.Contains(uint64(key)) {
		return
	}
	p.bitmap.Add(uint64(key))
	i := sort.Search(len(p.keys), func(i int) bool { return p.keys[i] >= key })
	p.keys = append(p.keys, 0)
	copy(p.keys[i+1:], p.keys[i:])
	p.keys[i] = key
	ix.count++
}

// Erase removes key from under value.
func (ix *StringIndex) Erase(key core.ObjKey, value string) {
	p := ix.lookup(value)
	if p == nil || !p.bitmap.Contains(uint64(key)) {
		return
	}
	p.bitmap.Remove(uint64(key))
	i := sort.Search(len(p.keys), func(i int) bool { return p.keys[i] >= key })
	p.keys = append(p.keys[:i], p.keys[i+1:]...)
	ix.count--
}

// FindAllNoCopy returns the objects holding value without copying postings.
func (ix *StringIndex) FindAllNoCopy(value string) FindResult {
	p := ix.lookup(value)
	switch {
	case p == nil || len(p.keys) == 0:
		return FindResult{Kind: FindResultNotFound}
	case len(p.keys) == 1:
		return FindResult{Kind: FindResultSingle, Key: p.keys[0]}
	default:
		return FindResult{Kind: FindResultColumn, Keys: p.keys, Start: 0, End: len(p.keys)}
	}
}

// FindFirst returns the lowest key holding value, or NullKey.
func (ix *StringIndex) FindFirst(value string) core.ObjKey {
	p := ix.lookup(value)
	if p == nil || len(p.keys) == 0 {
		return core.NullKey
	}
	return p.keys[0]
}

// FindAllFold returns the keys of all objects whose value case-folds to
// value, in ascending key order. Used by case-insensitive equality over an
// indexed column; results are verified against the actual cells afterwards.
func (ix *StringIndex) FindAllFold(value string) []core.ObjKey {
	acc := roaring64.New()
	for _, chain := range ix.buckets {
		for _, p := range chain {
			if strings.EqualFold(p.value, value) {
				acc.Or(p.bitmap)
			}
		}
	}
	if acc.IsEmpty() {
		return nil
	}
	out := make([]core.ObjKey, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		out = append(out, core.ObjKey(it.Next()))
	}
	return out
}
