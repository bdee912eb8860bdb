// internal/workers/matching/find-producer-matches/handler.go
package findproducermatches

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/metrics"
	"printmatch-workers/internal/matching"
	"printmatch-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "find-producer-matches"
)

type ProducerSearcher interface {
	Search(ctx context.Context, q repository.ProducerQuery) ([]matching.Producer, error)
}

type ProducerStore interface {
	GetProducer(ctx context.Context, id string) (*matching.Producer, error)
}

type Handler struct {
	config       *Config
	engine       *matching.Engine
	directory    ProducerSearcher
	producers    ProducerStore
	cache        *repository.Cache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, directory ProducerSearcher, producers ProducerStore, cache *repository.Cache, log logger.Logger) *Handler {
	if engine == nil {
		engine = matching.NewEngine()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		directory:    directory,
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
	if input == nil || input.Project == nil {
		return nil, errors.NewInvalidInputError("project is required")
	}

	candidates, source, err := h.candidates(ctx, input)
	if err != nil {
		return nil, err
	}

	minimum := h.config.DefaultMinimumScore
	if input.MinimumScore != nil {
		minimum = *input.MinimumScore
	}

	matches := h.engine.FindMatches(input.Project, candidates, matching.MatchOptions{MinimumScore: minimum})
	if input.Limit > 0 && len(matches) > input.Limit {
		matches = matches[:input.Limit]
	}

	scores := make([]int, len(matches))
	for i, m := range matches {
		scores[i] = m.MatchScore
	}
	metrics.RecordScores(TaskType, scores...)

	runID := uuid.New().String()
	h.logger.Info("producer matches found", map[string]interface{}{
		"runId":        runID,
		"projectId":    input.Project.ID,
		"source":       source,
		"candidates":   len(candidates),
		"matches":      len(matches),
		"minimumScore": minimum,
	})

	return &Output{
		RunID:           runID,
		Matches:         matches,
		TotalCandidates: len(candidates),
		CandidateSource: source,
	}, nil
}

func (h *Handler) candidates(ctx context.Context, input *Input) ([]matching.Producer, string, error) {
	switch {
	case input.Producers != nil:
		return input.Producers, SourceInline, nil
	case len(input.ProducerIDs) > 0:
		producers, err := h.loadProfiles(ctx, input.ProducerIDs)
		return producers, SourceProfiles, err
	default:
		producers, err := h.searchDirectory(ctx, input.Project)
		return producers, SourceDirectory, err
	}
}

// loadProfiles fetches the named producers concurrently and keeps the
// requested order.
func (h *Handler) loadProfiles(ctx context.Context, ids []string) ([]matching.Producer, error) {
	if h.producers == nil {
		return nil, errors.NewInvalidInputError("producer profiles are not available")
	}

	out := make([]matching.Producer, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if h.config.MaxConcurrentLoads > 0 {
		g.SetLimit(h.config.MaxConcurrentLoads)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := repository.Remember(gctx, h.cache, repository.NamespaceProducer, id, h.config.ProfileCacheTTL,
				func(ctx context.Context) (*matching.Producer, error) {
					return h.producers.GetProducer(ctx, id)
				})
			if err != nil {
				return err
			}
			out[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Handler) searchDirectory(ctx context.Context, project *matching.Project) ([]matching.Producer, error) {
	if h.directory == nil {
		return nil, errors.NewProducerSearchFailedError(fmt.Errorf("producer directory is not configured"))
	}

	q := repository.ProducerQuery{
		Center:   project.Location,
		RadiusKm: h.config.DefaultPreferredDistance,
		Limit:    h.config.CandidateSearchSize,
	}
	if reqs := project.Requirements; reqs != nil {
		if q.Center == nil {
			q.Center = reqs.Location
		}
		if reqs.PreferredDistance > 0 {
			q.RadiusKm = reqs.PreferredDistance
		}
		q.Capabilities = reqs.Capabilities
	}

	return repository.Remember(ctx, h.cache, repository.NamespaceCandidates, candidateKey(q), h.config.CandidateCacheTTL,
		func(ctx context.Context) ([]matching.Producer, error) {
			return h.directory.Search(ctx, q)
		})
}

// candidateKey identifies a search by center (to ~100m), radius and
// capabilities regardless of their order.
func candidateKey(q repository.ProducerQuery) string {
	caps := append([]string(nil), q.Capabilities...)
	sort.Strings(caps)
	center := "any"
	if q.Center != nil {
		center = fmt.Sprintf("%.3f,%.3f", q.Center.Lat, q.Center.Lng)
	}
	return fmt.Sprintf("%s:%g:%d:%s", center, q.RadiusKm, q.Limit, strings.ToLower(strings.Join(caps, "|")))
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
