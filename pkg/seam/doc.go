// Package seam implements content-aware image narrowing by seam carving.
//
// # Overview
//
// A seam is a connected, one-pixel-wide path running from the top row of an
// image to the bottom row, moving at most one column left or right per row.
// Removing the seam whose pixels carry the least visual information shrinks
// the image by one column while keeping salient content intact, which
// preserves subjects far better than uniform cropping or scaling.
//
// Each removal is a straight pipeline of four pure stages:
//
//  1. [Energy] converts a [ColorImage] into an [EnergyGrid] of gradient
//     magnitudes (the per-pixel "importance").
//  2. [Accumulate] runs a dynamic-programming pass producing a [CostGrid]
//     where each cell holds the cheapest total energy of any path from the
//     boundary row to that cell.
//  3. [Trace] walks the cost grid backwards to recover one minimal [Seam].
//  4. [Remove] deletes the seam's pixels, returning an image one column
//     narrower.
//
// [Carver] repeats the pipeline N times, feeding every output image back in
// as the next input.
//
// # Boundary Policies
//
// Two different boundary policies coexist on purpose. The gradient kernel in
// [Energy] uses toroidal addressing: column w-1 neighbours column 0 and the
// last row neighbours the first, so no pixel needs missing-neighbour logic.
// The dynamic-programming window in [Accumulate] and [Trace] is clamped
// instead: a seam can never wrap from one edge of the image to the other.
//
// # Determinism
//
// Whenever several candidates share the minimum cost, the smallest column
// index wins. [Accumulate] and [Trace] apply the same rule, so a traced seam
// always follows true predecessors and repeated runs are bit-identical,
// including runs that evaluate [Energy] with several workers.
//
// # Ownership
//
// Every function allocates its result and never mutates its inputs. Grids are
// plain values owned by whoever receives them.
package seam
