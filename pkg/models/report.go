package models

// TraceExample is one (prompt, response, score) record used for
// optimizer feedback. Score is in [0, 1].
type TraceExample struct {
	Prompt   string  `json:"prompt"`
	Response string  `json:"response"`
	Score    float64 `json:"score"`
}

// StepTrace records a single reasoning step taken by a worker.
type StepTrace struct {
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
}

// Outcome is the terminal result of dispatching one task.
type Outcome struct {
	TaskID int         `json:"task_id"`
	Status TaskStatus  `json:"status"`
	Result string      `json:"result"`
	Steps  []StepTrace `json:"steps"`
}

// PlanResult is the planner's view after initialization or a refresh.
type PlanResult struct {
	// Tasks lists the current task nodes in plan order.
	Tasks []TaskNode
	// NextTask points at the next open task, or nil when none remains.
	NextTask *TaskNode
	// Rationale is the free text produced by the generation capability
	// explaining the plan.
	Rationale string
}

// WorkflowReport is the terminal artifact of one orchestrator run.
type WorkflowReport struct {
	// Goal is the top-level objective the run was asked to achieve.
	Goal string `json:"goal"`
	// Completed is true iff every tracked task finished Complete.
	Completed bool `json:"completed"`
	// Tasks is a snapshot of the task forest in iteration order.
	Tasks []TaskNode `json:"tasks"`
	// History is the full append-only history log.
	History []HistoryEvent `json:"history"`
	// Rationale is the last rationale the planner produced.
	Rationale string `json:"rationale"`
}
