// Package viz provides a terminal view that steps a simulation live.
//
// [Model] is a Bubble Tea model wrapping an initialized [sim.Simulation].
// Each tick advances the simulation and redraws one published field with
// asciigraph next to clock and resource statistics.
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	+/-   - More or fewer steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Finalize and quit
//
// Quitting before the clock finishes still finalizes the simulation, so
// diagnostics flush whatever they recorded.
package viz
