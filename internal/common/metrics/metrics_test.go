package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordScores(t *testing.T) {
	before := testutil.ToFloat64(MatchCandidatesScored.WithLabelValues("metrics-test"))
	RecordScores("metrics-test", 90, 65, 12)
	assert.Equal(t, before+3, testutil.ToFloat64(MatchCandidatesScored.WithLabelValues("metrics-test")))
}

func TestRecordJobOutcome(t *testing.T) {
	RecordJobCompleted("metrics-test")
	RecordJobFailed("metrics-test", "PRODUCER_SEARCH_FAILED")
	RecordJobFailed("metrics-test", "PRODUCER_SEARCH_FAILED")

	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "PRODUCER_SEARCH_FAILED")))
}

func TestRecordCache(t *testing.T) {
	RecordCache("metrics-test", CacheHit)
	RecordCache("metrics-test", CacheMiss)
	RecordCache("metrics-test", CacheMiss)

	assert.Equal(t, 1.0, testutil.ToFloat64(CacheRequests.WithLabelValues("metrics-test", CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(CacheRequests.WithLabelValues("metrics-test", CacheMiss)))
}
