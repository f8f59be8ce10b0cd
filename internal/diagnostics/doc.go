// Package diagnostics provides the built-in diagnostics. Each one samples
// simulation state on a time-interval schedule and writes the samples as rows
// to an output sink: a csv or npy file flushed at finalize, or stdout.
//
// Diagnostic type names as used in the Diagnostics section:
//
//	field   a published field, or one row of it
//	point   a grid field interpolated at a fixed location
//	clock   the simulation time
//	grid    the grid coordinates, written once
//	energy  the integrated energy of a field and its relative drift
package diagnostics
