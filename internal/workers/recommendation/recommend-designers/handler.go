// internal/workers/recommendation/recommend-designers/handler.go
package recommenddesigners

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
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "recommend-designers"
)

type ProfileStore interface {
	GetProducer(ctx context.Context, id string) (*matching.Producer, error)
	ProducerOrders(ctx context.Context, producerID string) ([]matching.Order, error)
	ListDesigners(ctx context.Context, limit int) ([]matching.Designer, error)
}

type Handler struct {
	config       *Config
	engine       *matching.Engine
	store        ProfileStore
	cache        *repository.Cache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, store ProfileStore, cache *repository.Cache, log logger.Logger) *Handler {
	if engine == nil {
		engine = matching.NewEngine()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		store:        store,
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
	if input == nil || (input.Producer == nil && input.ProducerID == "") {
		return nil, errors.NewInvalidInputError("producer or producerId is required")
	}
	if h.store == nil && (input.Producer == nil || input.Designers == nil) {
		return nil, errors.NewInvalidInputError("producer and designers must be given inline")
	}

	var (
		producer  = input.Producer
		designers = input.Designers
	)

	g, gctx := errgroup.WithContext(ctx)
	if producer == nil {
		g.Go(func() error {
			var err error
			producer, err = h.loadProducer(gctx, input.ProducerID)
			return err
		})
	}
	if designers == nil {
		g.Go(func() error {
			var err error
			designers, err = h.store.ListDesigners(gctx, h.config.CandidateLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}

	recs := h.engine.RecommendDesignersForProducer(producer, designers, matching.RecommendOptions{Limit: limit})
	metrics.MatchCandidatesScored.WithLabelValues(TaskType).Add(float64(len(designers)))

	h.logger.Info("designers recommended", map[string]interface{}{
		"producerId":      producer.ID,
		"candidates":      len(designers),
		"recommendations": len(recs),
	})

	return &Output{
		ProducerID:      producer.ID,
		Recommendations: recs,
		TotalCandidates: len(designers),
	}, nil
}

// loadProducer returns the cached profile with fresh order history.
func (h *Handler) loadProducer(ctx context.Context, id string) (*matching.Producer, error) {
	var (
		producer *matching.Producer
		orders   []matching.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		producer, err = repository.Remember(gctx, h.cache, repository.NamespaceProducer, id, h.config.ProfileCacheTTL,
			func(ctx context.Context) (*matching.Producer, error) {
				return h.store.GetProducer(ctx, id)
			})
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = h.store.ProducerOrders(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := *producer
	p.PreviousOrders = orders
	return &p, nil
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
