package cpm

// TaskTiming holds the critical path bounds of one task, in whole time units
// measured from virtual day 0.
type TaskTiming struct {
	EarliestStart  int  `json:"earliestStart"`
	EarliestFinish int  `json:"earliestFinish"`
	LatestStart    int  `json:"latestStart"`
	LatestFinish   int  `json:"latestFinish"`
	Slack          int  `json:"slack"`
	Critical       bool `json:"critical"`
}

// Result holds the complete critical path analysis.
type Result struct {
	Duration     int                   // minimum project duration (max EF)
	Timing       map[string]TaskTiming // per task ID
	Order        []string              // topological order used by both passes
	CriticalPath []string              // zero-slack task IDs in topological order
}
