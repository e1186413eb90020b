package taskproc

import "github.com/hsn2-platform/worker-core/objectmodel"

// TaskRequest is the decoded inbound task message: which job/task this
// is, and which object it concerns.
type TaskRequest struct {
	TaskID uint64
	Job    uint64
	Object uint64
}

// TaskContext is the per-task state handed to a TaskProcess callback:
// the task being processed, the objects fetched for it, and the slice
// the callback should append any newly created objects to before
// returning.
type TaskContext struct {
	Request    TaskRequest
	Objects    []*objectmodel.Object
	NewObjects []*objectmodel.Object
}

// TaskProcess is supplied by the embedding worker program to perform
// the actual analysis for one task. It may mutate ctx.Objects in place
// and append newly created objects to ctx.NewObjects. Returned warnings
// are reported alongside TaskCompleted.
type TaskProcess func(ctx *TaskContext) (warnings []string, err error)
