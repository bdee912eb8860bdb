// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/metrics"
	"printmatch-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package. Handlers complete or
// fail the job themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Validator rejects job variables before the handler sees them.
type Validator interface {
	Validate(taskType, variables string) error
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
	Validator     Validator
	Observability *observability.Observability
}

type Worker struct {
	taskType  string
	jobWorker worker.JobWorker
	logger    logger.Logger
}

// StartWorker opens a job worker for taskType with schema validation,
// Prometheus job metrics and one span per job around handler.
func StartWorker(client zbc.Client, taskType string, handler JobHandler, opts WorkerOptions, log logger.Logger) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, opts, log)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}
	jobWorker := builder.Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
		"timeoutMs":     opts.Timeout.Milliseconds(),
		"validated":     opts.Validator != nil,
	})

	return &Worker{taskType: taskType, jobWorker: jobWorker, logger: log}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.jobWorker.Close()
	w.jobWorker.AwaitClose()
}

// Instrument wraps handler with validation, metrics and tracing.
func Instrument(taskType string, handler JobHandler, opts WorkerOptions, log logger.Logger) worker.JobHandler {
	obs := opts.Observability
	if obs == nil {
		obs = &observability.Observability{}
	}
	errHandler := errors.NewErrorHandler(log)

	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()

		ctx, span := obs.StartJobSpan(context.Background(), taskType, job.GetKey(), job.GetProcessInstanceKey())

		var rejected error
		defer func() {
			active.Dec()
			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobDuration(ctx, taskType, elapsed)
			observability.EndJobSpan(span, rejected)
		}()

		if opts.Validator != nil {
			if err := opts.Validator.Validate(taskType, job.GetVariables()); err != nil {
				rejected = err
				code := errHandler.HandleJobError(ctx, client, job, err)
				metrics.RecordJobFailed(taskType, string(code))
				obs.RecordJobProcessed(ctx, taskType, "rejected")
				return
			}
		}

		handler.Handle(client, job)
		obs.RecordJobProcessed(ctx, taskType, "handled")
	}
}
