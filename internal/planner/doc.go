// Package planner expands input files into encode jobs: one job per
// configured profile, in profile order, each with its derived output path.
//
// Expansion has no side effects and performs no I/O. Collision checking of
// the derived paths happens afterwards in [naming.CollisionResolver].
package planner
