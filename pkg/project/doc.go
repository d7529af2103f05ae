// Package project defines the input records of a scheduling run: tasks,
// their dependencies and resource requirements, and the project that holds
// them.
//
// A [Project] is treated as immutable for the duration of one run. [Validate]
// checks the invariants the scheduling core relies on before any ordering
// happens, so that malformed input surfaces as a descriptive error instead
// of a failed lookup deep inside the algorithms:
//
//   - every task ID is a valid, unique identifier (DUPLICATE_TASK, INVALID_INPUT)
//   - durations are non-negative (INVALID_DURATION)
//   - every DependsOn entry names a task in the same project (UNKNOWN_DEPENDENCY)
//   - optionally, every required resource is declared (UNKNOWN_RESOURCE)
//
// [BuildGraph] turns a validated task list into a [dag.DAG] whose nodes follow
// the task insertion order and whose edges point from predecessor to
// successor.
package project
