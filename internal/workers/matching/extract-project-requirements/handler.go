// internal/workers/matching/extract-project-requirements/handler.go
package extractprojectrequirements

import (
	"context"
	"encoding/json"
	"fmt"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/metrics"
	"printmatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-project-requirements"
)

type Handler struct {
	config       *Config
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	var inputs matching.UserInputs
	if input.UserInputs != nil {
		inputs = *input.UserInputs
	}
	if inputs.PreferredDistance <= 0 && h.config.DefaultPreferredDistance > 0 {
		inputs.PreferredDistance = h.config.DefaultPreferredDistance
	}

	reqs := matching.ExtractProjectRequirements(input.Files, inputs)

	h.logger.Info("requirements extracted", map[string]interface{}{
		"projectId":    input.ProjectID,
		"files":        len(input.Files),
		"capabilities": reqs.Capabilities,
		"productType":  reqs.ProductType,
		"complexity":   reqs.Complexity,
	})

	project := matching.Project{ID: input.ProjectID, Requirements: &reqs}
	if reqs.Location != nil {
		loc := *reqs.Location
		project.Location = &loc
	}

	return &Output{Requirements: reqs, Project: project}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.RecordJobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.RecordJobFailed(TaskType, string(code))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
