package table

import "sort"

// KeyArray holds the cluster-local key offsets of a cluster's rows, sorted
// ascending. The object key of row i is cluster offset + Get(i).
type KeyArray struct {
	keys []int64
}

// Size returns the number of keys.
func (a *KeyArray) Size() int { return len(a.keys) }

// Get returns the local key at row i.
func (a *KeyArray) Get(i int) int64 { return a.keys[i] }

// lowerBound returns the first row whose local key is >= k.
func (a *KeyArray) lowerBound(k int64) int {
	return sort.Search(len(a.keys), func(i int) bool { return a.keys[i] >= k })
}

func (a *KeyArray) insert(row int, k int64) {
	a.keys = append(a.keys, 0)
	copy(a.keys[row+1:], a.keys[row:])
	a.keys[row] = k
}

func (a *KeyArray) erase(row int) {
	a.keys = append(a.keys[:row], a.keys[row+1:]...)
}
