// internal/workers/recommendation/trending-product-types/handler.go
package trendingproducttypes

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
)

const (
	TaskType = "trending-product-types"
)

type OrderStore interface {
	OrdersSince(ctx context.Context, since time.Time) ([]matching.Order, error)
}

type Handler struct {
	config       *Config
	orders       OrderStore
	cache        *repository.Cache
	now          func() time.Time
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, orders OrderStore, cache *repository.Cache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		orders:       orders,
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

	days := input.Days
	if days == 0 {
		days = h.config.DefaultWindowDays
	}
	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}

	key := fmt.Sprintf("%dd:%d", days, limit)
	output, err := repository.Remember(ctx, h.cache, repository.NamespaceTrending, key, h.config.ReportCacheTTL,
		func(ctx context.Context) (*Output, error) {
			return h.buildReport(ctx, days, limit)
		})
	if err != nil {
		return nil, err
	}

	h.logger.Info("trending product types computed", map[string]interface{}{
		"windowDays":   output.WindowDays,
		"orders":       output.OrderCount,
		"productTypes": output.ProductTypes,
	})
	return output, nil
}

func (h *Handler) buildReport(ctx context.Context, days, limit int) (*Output, error) {
	if h.orders == nil {
		return nil, errors.NewOrderHistoryFailedError(fmt.Errorf("order history is not configured"))
	}

	now := h.now().UTC()
	orders, err := h.orders.OrdersSince(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	return &Output{
		ProductTypes: matching.TrendingProductTypes(orders, limit),
		WindowDays:   days,
		OrderCount:   len(orders),
		GeneratedAt:  now.Format(time.RFC3339),
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
