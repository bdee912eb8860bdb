// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"encoding/json"
	"fmt"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/metrics"
	"printmatch-workers/internal/matching"
	"printmatch-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-match-score"
)

// ProducerStore loads a producer profile by id.
type ProducerStore interface {
	GetProducer(ctx context.Context, id string) (*matching.Producer, error)
}

type Handler struct {
	config       *Config
	engine       *matching.Engine
	producers    ProducerStore
	cache        *repository.Cache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, producers ProducerStore, cache *repository.Cache, log logger.Logger) *Handler {
	if engine == nil {
		engine = matching.NewEngine()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		producers:    producers,
		cache:        cache,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	producer := input.Producer
	if producer == nil && input.ProducerID != "" {
		var err error
		producer, err = h.loadProducer(ctx, input.ProducerID)
		if err != nil {
			return nil, err
		}
	}

	result := h.engine.CalculateMatchScore(input.Project, producer)
	if result.Error != "" {
		h.logger.Warn("match input incomplete", map[string]interface{}{
			"producerId": input.ProducerID,
			"error":      result.Error,
		})
	} else {
		metrics.RecordScores(TaskType, result.Score)
	}

	output := &Output{
		MatchScore:          result.Score,
		Scores:              result.Scores,
		Weights:             result.Weights,
		EstimatedPrice:      result.EstimatedPrice,
		EstimatedTurnaround: result.EstimatedTurnaround,
		MatchNotes:          result.MatchNotes,
		Error:               result.Error,
	}
	if producer != nil {
		output.ProducerID = producer.ID
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"producerId": output.ProducerID,
		"score":      output.MatchScore,
	})

	return output, nil
}

func (h *Handler) loadProducer(ctx context.Context, id string) (*matching.Producer, error) {
	if h.producers == nil {
		return nil, errors.NewProfileNotFoundError("Producer", id)
	}
	return repository.Remember(ctx, h.cache, repository.NamespaceProducer, id, h.config.CacheTTL,
		func(ctx context.Context) (*matching.Producer, error) {
			return h.producers.GetProducer(ctx, id)
		})
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
