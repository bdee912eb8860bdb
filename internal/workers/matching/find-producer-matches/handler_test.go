// internal/workers/matching/find-producer-matches/handler_test.go
package findproducermatches

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/matching"
	"printmatch-workers/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeDirectory struct {
	mu        sync.Mutex
	queries   []repository.ProducerQuery
	producers []matching.Producer
	err       error
}

func (f *fakeDirectory) Search(_ context.Context, q repository.ProducerQuery) ([]matching.Producer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.producers, f.err
}

type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]matching.Producer
	calls    int
}

func (f *fakeStore) GetProducer(_ context.Context, id string) (*matching.Producer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, ok := f.profiles[id]
	if !ok {
		return nil, errors.NewProfileNotFoundError("Producer", id)
	}
	return &p, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CandidateSearchSize:      50,
		DefaultPreferredDistance: 25,
		ProfileCacheTTL:          time.Minute,
		CandidateCacheTTL:        time.Minute,
		MaxConcurrentLoads:       2,
		Timeout:                  5 * time.Second,
	}
}

func createTestHandler(t *testing.T, dir ProducerSearcher, store ProducerStore) (*Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	return NewHandler(createTestConfig(), nil, dir, store, repository.NewCache(client, log), log), mr
}

func createTestProject() *matching.Project {
	return &matching.Project{
		ID: "proj-1",
		Requirements: &matching.Requirements{
			Capabilities:      []string{"Screen Printing"},
			ProductType:       "T-Shirts",
			Complexity:        1,
			PreferredDistance: 15,
		},
		Location: &matching.GeoPoint{Lat: 41.88, Lng: -87.63},
	}
}

func producer(id string, caps ...string) matching.Producer {
	return matching.Producer{ID: id, Capabilities: caps}
}

func ids(matches []matching.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Producer.ID
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineProducers(t *testing.T) {
	dir := &fakeDirectory{}
	h, _ := createTestHandler(t, dir, nil)

	output, err := h.Execute(context.Background(), &Input{
		Project: createTestProject(),
		Producers: []matching.Producer{
			producer("a", "DTG"),
			producer("b", "Screen Printing"),
			producer("c", "DTG"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(output.Matches))
	assert.Equal(t, 3, output.TotalCandidates)
	assert.Equal(t, SourceInline, output.CandidateSource)
	assert.NotEmpty(t, output.RunID)
	assert.Empty(t, dir.queries)
}

func TestHandler_Execute_MinimumScoreAndLimit(t *testing.T) {
	h, _ := createTestHandler(t, nil, nil)
	producers := []matching.Producer{
		producer("a", "DTG"),
		producer("b", "Screen Printing"),
		producer("c", "Screen Printing"),
	}

	all, err := h.Execute(context.Background(), &Input{Project: createTestProject(), Producers: producers})
	require.NoError(t, err)
	threshold := all.Matches[0].MatchScore

	filtered, err := h.Execute(context.Background(), &Input{
		Project:      createTestProject(),
		Producers:    producers,
		MinimumScore: intPtr(threshold),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(filtered.Matches))

	limited, err := h.Execute(context.Background(), &Input{
		Project:   createTestProject(),
		Producers: producers,
		Limit:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(limited.Matches))
	assert.Equal(t, 3, limited.TotalCandidates)
}

func TestHandler_Execute_SearchesDirectory(t *testing.T) {
	dir := &fakeDirectory{producers: []matching.Producer{producer("p-1", "Screen Printing")}}
	h, mr := createTestHandler(t, dir, nil)

	input := &Input{Project: createTestProject()}
	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, dir.queries, 1)
	q := dir.queries[0]
	assert.Equal(t, 15.0, q.RadiusKm)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, []string{"Screen Printing"}, q.Capabilities)
	require.NotNil(t, q.Center)
	assert.Equal(t, 41.88, q.Center.Lat)

	assert.Equal(t, SourceDirectory, output.CandidateSource)
	assert.Equal(t, []string{"p-1"}, ids(output.Matches))
	assert.True(t, mr.Exists(repository.Key(repository.NamespaceCandidates, candidateKey(q))))

	_, err = h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, dir.queries, 1, "second run should be served from the candidate cache")
}

func TestHandler_Execute_DirectoryFailure(t *testing.T) {
	dir := &fakeDirectory{err: errors.NewIndexNotFoundError("producers")}
	h, _ := createTestHandler(t, dir, nil)

	_, err := h.Execute(context.Background(), &Input{Project: createTestProject()})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeIndexNotFound, errors.CodeOf(err))
}

func TestHandler_Execute_ProducerIDs(t *testing.T) {
	store := &fakeStore{profiles: map[string]matching.Producer{}}
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("p-%d", i)
		store.profiles[id] = producer(id, "DTG")
	}
	h, _ := createTestHandler(t, nil, store)

	output, err := h.Execute(context.Background(), &Input{
		Project:     createTestProject(),
		ProducerIDs: []string{"p-3", "p-1", "p-5"},
	})

	require.NoError(t, err)
	assert.Equal(t, SourceProfiles, output.CandidateSource)
	assert.Equal(t, []string{"p-3", "p-1", "p-5"}, ids(output.Matches))
	assert.Equal(t, 3, store.calls)

	_, err = h.Execute(context.Background(), &Input{Project: createTestProject(), ProducerIDs: []string{"p-1", "p-404"}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProfileNotFound, errors.CodeOf(err))
}

func TestHandler_Execute_MissingProject(t *testing.T) {
	h, _ := createTestHandler(t, nil, nil)

	_, err := h.Execute(context.Background(), &Input{Producers: []matching.Producer{producer("a")}})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}

func TestCandidateKey_IgnoresCapabilityOrder(t *testing.T) {
	center := &matching.GeoPoint{Lat: 41.88123, Lng: -87.63}
	a := candidateKey(repository.ProducerQuery{Center: center, RadiusKm: 10, Capabilities: []string{"DTG", "Binding"}})
	b := candidateKey(repository.ProducerQuery{Center: center, RadiusKm: 10, Capabilities: []string{"Binding", "DTG"}})
	assert.Equal(t, a, b)
	assert.Equal(t, "any:25:0:", candidateKey(repository.ProducerQuery{RadiusKm: 25}))
}
