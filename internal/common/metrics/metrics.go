package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Composite match scores produced per task type",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"task_type"},
	)

	MatchCandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_scored_total",
			Help: "Producers or designers run through the scoring engine",
		},
		[]string{"task_type"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Redis cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)
)

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
	CacheErr  = "error"
)

func RecordJobCompleted(taskType string) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

func RecordJobFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

// RecordScores observes each score and counts the candidates behind them.
func RecordScores(taskType string, scores ...int) {
	h := MatchScore.WithLabelValues(taskType)
	for _, s := range scores {
		h.Observe(float64(s))
	}
	MatchCandidatesScored.WithLabelValues(taskType).Add(float64(len(scores)))
}

func RecordCache(namespace, result string) {
	CacheRequests.WithLabelValues(namespace, result).Inc()
}
