// Package testutil provides testing utilities for imdf.
//
// This package is intended for use in tests and benchmarks only.
// It builds synthetic IMDF archives, feature by feature or randomly, and
// materializes them in memory, on disk or as a zip file.
//
// # Hand-built Archives
//
//	a := testutil.NewArchive().
//	    Add(archive.Venue, testutil.Venue(venueID, "airport")).
//	    Add(archive.Level, testutil.Level(levelID, 0, "L0"))
//	mem := a.MemoryReader("")
//
// # Random Archives
//
//	rng := testutil.NewRNG(seed)
//	a := testutil.Generate(rng, testutil.GenerateConfig{Levels: 3, UnitsPerLevel: 10})
package testutil
