package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

// Names is the default word pool for generated string columns.
var Names = []string{"ann", "bob", "carol", "dan", "eve"}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Word returns a random element of the pool.
func (r *RNG) Word(pool []string) string {
	return pool[r.Intn(len(pool))]
}

// Columns names the handles of a generated table.
type Columns struct {
	Age   core.ColKey // nullable int, ~10% null
	Name  core.ColKey // string from Names
	Score core.ColKey // int [0,100)
}

// RandomTable builds a multi-cluster table with deterministic
// pseudo-random content.
func RandomTable(t *testing.T, rng *RNG, rows int) (*table.Table, Columns) {
	t.Helper()
	tbl := table.New("t", table.WithMaxClusterSize(16))
	cols := Columns{
		Age:   tbl.AddColumn("age", core.TypeInt, core.AttrNullable),
		Name:  tbl.AddColumn("name", core.TypeString),
		Score: tbl.AddColumn("score", core.TypeInt),
	}
	for i := 0; i < rows; i++ {
		obj := tbl.CreateObject()
		if rng.Intn(10) != 0 {
			mustSet(t, obj, cols.Age, core.Int(int64(rng.Intn(80))))
		}
		mustSet(t, obj, cols.Name, core.String(rng.Word(Names)))
		mustSet(t, obj, cols.Score, core.Int(int64(rng.Intn(100))))
	}
	return tbl, cols
}

func mustSet(t *testing.T, obj table.Obj, col core.ColKey, v core.Mixed) {
	t.Helper()
	if err := obj.Set(col, v); err != nil {
		t.Fatalf("set column: %v", err)
	}
}

// ScanColumn reads a column in traversal order; the ground truth the
// engine's results are compared against.
func ScanColumn(tbl *table.Table, col core.ColKey) map[core.ObjKey]core.Mixed {
	out := make(map[core.ObjKey]core.Mixed)
	leaf := table.NewLeaf(col.Type(), col.Attrs())
	tbl.TraverseClusters(func(c *table.Cluster) bool {
		if c.InitLeaf(col, leaf) != nil {
			return true
		}
		for i := 0; i < c.NodeSize(); i++ {
			out[c.RealKey(i)] = leaf.GetMixed(i)
		}
		return false
	})
	return out
}
