// Package elements provides the periodic table dataset used by the renderers
// and a SQLite-backed store for serving and correcting it.
//
// The dataset for all 118 elements is embedded in the binary and parsed on
// first use:
//
//	ds, err := elements.Load()
//	if err != nil {
//		// ...
//	}
//	fe, ok := ds.Get("fe")
//
// A Store keeps a mutable copy of the dataset in a database. It must be
// initialised with SetupSchema and seeded once; later Seed calls leave
// existing rows untouched, so corrections made through Update survive
// restarts.
package elements
