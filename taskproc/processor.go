// Package taskproc implements the per-task state machine every
// worker runs: receive, accept, process, update, complete or error.
package taskproc

import (
	"context"
	"errors"

	"github.com/hsn2-platform/worker-core/bus"
	"github.com/hsn2-platform/worker-core/datastore"
	"github.com/hsn2-platform/worker-core/logging"
	"github.com/hsn2-platform/worker-core/metrics"
	"github.com/hsn2-platform/worker-core/objectmodel"
	"github.com/hsn2-platform/worker-core/objectstore"
	"github.com/hsn2-platform/worker-core/safework"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	taskRequestType   = "TaskRequest"
	taskAcceptedType  = "TaskAccepted"
	taskCompletedType = "TaskCompleted"
	taskErrorType     = "TaskError"
)

var tracer = otel.Tracer("hsn2-platform/worker-core/taskproc")

// Processor runs the receive/accept/process/update/complete-or-error
// loop for a single worker process. Accepted, completed and error
// messages are fired-and-forget back to the framework over bus.
type Processor struct {
	bus         *bus.Bus
	objectStore *objectstore.Client
	dataStore   *datastore.Client
	logger      logging.Logger
	process     TaskProcess
}

// New builds a Processor. process is invoked once per accepted task.
func New(b *bus.Bus, objectStore *objectstore.Client, dataStore *datastore.Client, logger logging.Logger, process TaskProcess) *Processor {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Processor{bus: b, objectStore: objectStore, dataStore: dataStore, logger: logger, process: process}
}

// DataStore returns the Data Store adapter this processor was built
// with. TaskContext does not carry it.
func (p *Processor) DataStore() *datastore.Client { return p.dataStore }

// Handle is the bus.Handler this processor registers on its service
// queue. It decodes env as a TaskRequest and runs the full
// receive-through-complete-or-error cycle, reporting how the delivery
// should be settled: acked on any outcome that reached a terminal
// TaskError/TaskCompleted, or rejected-and-requeued (bus.RejectRequeue)
// when the object store signaled the worker itself is terminating
// mid-task, matching basic_reject(requeue=True).
func (p *Processor) Handle(ctx context.Context, env bus.Envelope) bus.Disposition {
	if env.Type != taskRequestType {
		p.reportError(ctx, TaskRequest{}, "DEFUNCT", (&BadTypeError{Got: env.Type}).Error())
		return bus.Ack
	}

	tr, err := decodeTaskRequest(env.Body)
	if err != nil {
		p.reportError(ctx, TaskRequest{}, "DEFUNCT", "malformed task request: "+err.Error())
		return bus.Ack
	}

	ctx, span := tracer.Start(ctx, "taskproc.process")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("task.id", int64(tr.TaskID)),
		attribute.Int64("job.id", int64(tr.Job)),
	)

	disp, err := p.process1(ctx, tr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return disp
}

// process1 is the state machine proper, mirroring
// HSN2TaskProcessor.process's try/except ladder: accept, fetch, run
// the callback, push updates, then report completion or the
// appropriate failure reason.
func (p *Processor) process1(ctx context.Context, tr TaskRequest) (disp bus.Disposition, err error) {
	p.logger.Info("task_accepted", "task_id", tr.TaskID, "job", tr.Job)
	p.publish(taskAcceptedType, encodeTaskAccepted(tr.TaskID, tr.Job))

	objects, err := p.objectStore.Get(ctx, tr.Job, []uint64{tr.Object})
	if err != nil {
		if errors.Is(err, objectstore.ErrTermination) {
			metrics.RecordTaskOutcome("terminated")
			return bus.RejectRequeue, &TerminationError{}
		}
		p.reportError(ctx, tr, "OBJ_STORE", err.Error())
		return bus.Ack, err
	}

	tctx := &TaskContext{Request: tr, Objects: objects}
	warnings, procErr := safework.ExecuteWithResult(p.logger, "task_process", func() ([]string, error) {
		return p.process(tctx)
	})
	if procErr != nil {
		reason, msg := classify(procErr)
		p.reportError(ctx, tr, reason, msg)
		return bus.Ack, procErr
	}
	if warnings == nil {
		warnings = []string{}
	}

	if err := p.objectStore.Update(ctx, tr.Job, tctx.Objects, true); err != nil {
		if errors.Is(err, objectstore.ErrTermination) {
			metrics.RecordTaskOutcome("terminated")
			return bus.RejectRequeue, &TerminationError{}
		}
		p.reportError(ctx, tr, "OBJ_STORE", err.Error())
		return bus.Ack, err
	}

	var newIDs []uint64
	if len(tctx.NewObjects) > 0 {
		newIDs, err = p.objectStore.Put(ctx, tr.Job, tr.TaskID, tctx.NewObjects)
		if err != nil {
			if errors.Is(err, objectstore.ErrTermination) {
				metrics.RecordTaskOutcome("terminated")
				return bus.RejectRequeue, &TerminationError{}
			}
			p.reportError(ctx, tr, "OBJ_STORE", err.Error())
			return bus.Ack, err
		}
	}

	p.logger.Info("task_completed", "task_id", tr.TaskID, "job", tr.Job, "warnings", len(warnings))
	p.publish(taskCompletedType, encodeTaskCompleted(tr.TaskID, tr.Job, warnings, newIDs))
	metrics.RecordTaskOutcome("completed")
	return bus.Ack, nil
}

// classify maps a TaskProcess error into the reason code reported to
// the framework, mirroring HSN2TaskProcessor.process's except clauses
// for InputException, ParamException and ProcessingException.
func classify(err error) (reason, message string) {
	var input *InputError
	var param *ParamError
	var proc *ProcessingError
	switch {
	case errors.As(err, &input):
		return "INPUT", input.Msg
	case errors.As(err, &param):
		return "PARAMS", param.Msg
	case errors.As(err, &proc):
		return "DEFUNCT", proc.Msg
	default:
		return "DEFUNCT", err.Error()
	}
}

func (p *Processor) reportError(ctx context.Context, tr TaskRequest, reason, description string) {
	p.logger.Warn(reason, "description", description, "task_id", tr.TaskID, "job", tr.Job)
	reasonValue, err := objectmodel.NameToNumber("ReasonType", reason)
	if err != nil {
		reasonValue = 0
	}
	p.publish(taskErrorType, encodeTaskError(tr.TaskID, tr.Job, reasonValue, description))
	metrics.RecordTaskOutcome("errored_" + reason)
}

func (p *Processor) publish(msgType string, body []byte) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(bus.DestFramework, bus.Envelope{Type: msgType, Body: body}); err != nil {
		p.logger.Warn("publish_failed", "message_type", msgType, "error", err)
	}
}
