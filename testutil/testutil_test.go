package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-db/tessera/core"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}

	a.Reset()
	c := NewRNG(7)
	assert.Equal(t, c.Intn(1000), a.Intn(1000))
	assert.Equal(t, int64(7), a.Seed())
}

func TestRandomTable(t *testing.T) {
	tbl, cols := RandomTable(t, NewRNG(1), 200)
	require.Equal(t, 200, tbl.Size())

	scan := ScanColumn(tbl, cols.Name)
	require.Len(t, scan, 200)
	for _, v := range scan {
		assert.Equal(t, core.KindString, v.Kind)
	}

	ages := ScanColumn(tbl, cols.Age)
	nulls := 0
	for _, v := range ages {
		if v.IsNull() {
			nulls++
		}
	}
	assert.Greater(t, nulls, 0)
	assert.Less(t, nulls, 60)
}
