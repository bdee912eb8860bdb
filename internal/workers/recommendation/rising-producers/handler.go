// internal/workers/recommendation/rising-producers/handler.go
package risingproducers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

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
	TaskType = "rising-producers"
)

type Store interface {
	OrdersSince(ctx context.Context, since time.Time) ([]matching.Order, error)
	ListProducers(ctx context.Context, limit int) ([]matching.Producer, error)
}

type Handler struct {
	config       *Config
	store        Store
	cache        *repository.Cache
	now          func() time.Time
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store Store, cache *repository.Cache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		cache:        cache,
		now:          time.Now,
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
		input = &Input{}
	}
	if input.Days < 0 || input.Limit < 0 {
		return nil, errors.NewInvalidInputError("days and limit must not be negative")
	}
	if h.store == nil {
		return nil, errors.NewOrderHistoryFailedError(fmt.Errorf("order history is not configured"))
	}

	days := input.Days
	if days == 0 {
		days = h.config.DefaultWindowDays
	}
	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}

	var (
		output *Output
		err    error
	)
	if input.Producers != nil {
		output, err = h.buildReport(ctx, input.Producers, days, limit)
	} else {
		key := fmt.Sprintf("%dd:%d", days, limit)
		output, err = repository.Remember(ctx, h.cache, repository.NamespaceRising, key, h.config.ReportCacheTTL,
			func(ctx context.Context) (*Output, error) {
				return h.buildReport(ctx, nil, days, limit)
			})
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("rising producers computed", map[string]interface{}{
		"windowDays": days,
		"returned":   len(output.Producers),
	})
	return output, nil
}

// buildReport loads recent orders, and the producer pool when none is
// given, in parallel.
func (h *Handler) buildReport(ctx context.Context, producers []matching.Producer, days, limit int) (*Output, error) {
	var orders []matching.Order
	since := h.now().UTC().AddDate(0, 0, -days)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = h.store.OrdersSince(gctx, since)
		return err
	})
	if producers == nil {
		g.Go(func() error {
			var err error
			producers, err = h.store.ListProducers(gctx, h.config.CandidateLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rising := matching.RisingProducers(producers, orders, limit)
	metrics.MatchCandidatesScored.WithLabelValues(TaskType).Add(float64(len(producers)))

	momentum := make([]matching.ProducerMomentum, 0, len(rising))
	byID := make(map[string]matching.ProducerMomentum)
	for _, m := range matching.ProducerMomentums(producers, orders) {
		byID[m.Producer.ID] = m
	}
	for _, p := range rising {
		if m, ok := byID[p.ID]; ok {
			m.Producer = matching.Producer{ID: p.ID, Name: p.Name}
			momentum = append(momentum, m)
		}
	}

	return &Output{
		Producers:  rising,
		Momentum:   momentum,
		WindowDays: days,
	}, nil
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
