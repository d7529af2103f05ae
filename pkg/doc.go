// Package pkg holds the libraries behind leveler, a critical-path scheduler
// with greedy resource leveling.
//
// # Overview
//
// A project is a set of tasks with durations in whole days, dependencies on
// other tasks and the resources each task holds while it runs. leveler
// computes the critical path of that network, places every task on a
// day-slot timeline so no resource is used by two tasks at once, and maps
// slots to calendar dates.
//
// # Architecture
//
//	project file (JSON / YAML / TOML / CSV)
//	         ↓
//	    [io] decode + [project] validate
//	         ↓
//	    [dag] topological order
//	         ↓
//	    [cpm] forward/backward pass, slack, critical path
//	         ↓
//	    [schedule] resource leveling
//	         ↓
//	    [calendar] slot → date mapping
//	         ↓
//	    [render] DOT/SVG/PNG network, terminal Gantt chart, CSV/JSON export
//
// [pipeline] runs these stages with result caching ([cache]) and is shared
// by the CLI and the HTTP API ([api]). Saved projects live in [store].
package pkg
