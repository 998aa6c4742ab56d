// Package testutil provides testing utilities for Tessera.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and generators for populated
// tables, so query tests run against deterministic data sets.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	n := rng.Intn(100)
//	s := rng.Word(testutil.Names)
//
// # Table Generation
//
//	tbl, cols := testutil.RandomTable(t, rng, 500)
//	scan := testutil.ScanColumn(tbl, cols.Name)
package testutil
