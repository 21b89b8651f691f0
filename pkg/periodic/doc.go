// Package periodic lays out the periodic table in several shapes and renders
// the result as an HTML table or as styled terminal text.
//
// Placement and markup are separate steps. Layout computes a Grid from a
// list of elements and a Size; RenderHTML and RenderTerminal turn a Grid into
// output according to Options:
//
//	grid, err := periodic.Layout(ds.All(), periodic.SizeTypical)
//	if err != nil {
//		// ...
//	}
//	opts := periodic.DefaultOptions()
//	opts.ID = "pt1"
//	err = periodic.RenderHTML(w, grid, opts)
package periodic
