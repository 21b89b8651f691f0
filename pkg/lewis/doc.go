// Package lewis draws element "atoms" as SVG groups with Lewis dots for
// their valence electrons. The groups carry mouse handlers so that students
// can drag atoms together in the browser and puzzle out how they connect.
package lewis
