// Package schedule places project tasks on a resource-constrained timeline.
//
// [Level] seeds every task with its CPM earliest start and then, in ascending
// earliest-start order (ties keep input order), moves each task to the first
// slot at or after that start where none of its required resources is
// already booked. The heuristic is greedy: earlier placements are never
// revisited, so the result is always conflict-free but not necessarily the
// shortest possible schedule under contention.
//
// Booked slots live in an occupancy table owned by a single Level call. The
// package has no shared mutable state and Level is safe to call concurrently.
//
// Tasks with a zero duration are milestones: they are placed at their
// earliest start and neither book nor wait for resources.
package schedule
