// internal/workers/recommendation/recommend-producers/handler.go
package recommendproducers

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
	TaskType = "recommend-producers"
)

type ProducerSearcher interface {
	Search(ctx context.Context, q repository.ProducerQuery) ([]matching.Producer, error)
}

// DesignerStore loads a designer and their order history.
type DesignerStore interface {
	GetDesigner(ctx context.Context, id string) (*matching.Designer, error)
	DesignerOrders(ctx context.Context, designerID string) ([]matching.Order, error)
}

type Handler struct {
	config       *Config
	engine       *matching.Engine
	directory    ProducerSearcher
	designers    DesignerStore
	cache        *repository.Cache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, directory ProducerSearcher, designers DesignerStore, cache *repository.Cache, log logger.Logger) *Handler {
	if engine == nil {
		engine = matching.NewEngine()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		directory:    directory,
		designers:    designers,
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
	if input == nil || (input.Designer == nil && input.DesignerID == "") {
		return nil, errors.NewInvalidInputError("designer or designerId is required")
	}

	designer := input.Designer
	if designer == nil {
		var err error
		designer, err = h.loadDesigner(ctx, input.DesignerID)
		if err != nil {
			return nil, err
		}
	}

	producers := input.Producers
	if producers == nil {
		var err error
		producers, err = h.searchProducers(ctx, designer)
		if err != nil {
			return nil, err
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}

	recs := h.engine.RecommendProducersForDesigner(designer, producers, matching.RecommendOptions{Limit: limit})

	scores := make([]int, len(recs))
	for i, r := range recs {
		scores[i] = r.RecommendationScore
	}
	metrics.MatchCandidatesScored.WithLabelValues(TaskType).Add(float64(len(producers)))

	h.logger.Info("producers recommended", map[string]interface{}{
		"designerId":      designer.ID,
		"candidates":      len(producers),
		"recommendations": len(recs),
		"scores":          scores,
	})

	return &Output{
		DesignerID:      designer.ID,
		Recommendations: recs,
		TotalCandidates: len(producers),
	}, nil
}

// loadDesigner reads the profile and the order history in parallel.
func (h *Handler) loadDesigner(ctx context.Context, id string) (*matching.Designer, error) {
	if h.designers == nil {
		return nil, errors.NewProfileNotFoundError("Designer", id)
	}

	var (
		designer *matching.Designer
		orders   []matching.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		designer, err = repository.Remember(gctx, h.cache, repository.NamespaceDesigner, id, h.config.ProfileCacheTTL,
			func(ctx context.Context) (*matching.Designer, error) {
				return h.designers.GetDesigner(ctx, id)
			})
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = h.designers.DesignerOrders(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := *designer
	d.PreviousOrders = orders
	return &d, nil
}

func (h *Handler) searchProducers(ctx context.Context, designer *matching.Designer) ([]matching.Producer, error) {
	if h.directory == nil {
		return nil, errors.NewProducerSearchFailedError(fmt.Errorf("producer directory is not configured"))
	}
	return h.directory.Search(ctx, repository.ProducerQuery{
		Center:   designer.Location,
		RadiusKm: h.config.SearchRadiusKm,
		Limit:    h.config.CandidateSearchSize,
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
