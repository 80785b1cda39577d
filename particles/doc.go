// Package particles implements the animated dot field used as a decorative backdrop.
//
// A Field owns a fixed set of particles sized to a drawing surface. Each Tick clears the
// surface, draws every particle, links nearby pairs that are both close to the cursor,
// and advances positions, reflecting velocities at the surface edges.
//
// Per tick (fixed):
//
//	Clear → Populate (first tick only) → Dots → Links → Motion.
//
// The field does no I/O and has no timers of its own. Callers drive it from a
// single goroutine (see package kernel) and provide a Surface to draw into.
package particles
