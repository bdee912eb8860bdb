// internal/workers/recommendation/recommend-producers/handler_test.go
package recommendproducers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/matching"
	"printmatch-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	designerCols = []string{"id", "name", "lat", "lng", "rating", "activity_level", "common_product_types", "email", "phone"}
	orderCols    = []string{"id", "producer_id", "designer_id", "status", "rating", "product_type", "created_at"}
)

type fakeDirectory struct {
	queries   []repository.ProducerQuery
	producers []matching.Producer
}

func (f *fakeDirectory) Search(_ context.Context, q repository.ProducerQuery) ([]matching.Producer, error) {
	f.queries = append(f.queries, q)
	return f.producers, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		SearchRadiusKm:      40,
		CandidateSearchSize: 30,
		DefaultLimit:        5,
		ProfileCacheTTL:     time.Minute,
		Timeout:             5 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	// profile and order history are queried concurrently
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func createTestHandler(t *testing.T, dir ProducerSearcher, db *sql.DB) *Handler {
	var store DesignerStore
	if db != nil {
		store = repository.NewStore(db)
	}
	return NewHandler(createTestConfig(), nil, dir, store, nil, logger.NewTestLogger(t))
}

func testProducers() []matching.Producer {
	avail := 90.0
	return []matching.Producer{
		{ID: "far", Location: &matching.ProducerLocation{Lat: 42.5, Lng: -87.63}, Rating: 3.5},
		{ID: "partner", Location: &matching.ProducerLocation{Lat: 41.90, Lng: -87.63}, Rating: 4.2},
		{ID: "busy-pro", Specialties: []string{"Poster"}, Rating: 4.9, AvailabilityPercent: &avail},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineDesigner(t *testing.T) {
	dir := &fakeDirectory{}
	h := createTestHandler(t, dir, nil)

	output, err := h.Execute(context.Background(), &Input{
		Designer: &matching.Designer{
			ID:                 "d-1",
			Location:           &matching.GeoPoint{Lat: 41.88, Lng: -87.63},
			CommonProductTypes: []string{"Poster"},
			PreviousOrders: []matching.Order{
				{ProducerID: "partner", Status: matching.OrderStatusCompleted, Rating: 5},
			},
		},
		Producers: testProducers(),
		Limit:     2,
	})

	require.NoError(t, err)
	require.Len(t, output.Recommendations, 2)
	assert.Equal(t, "d-1", output.DesignerID)
	assert.Equal(t, 3, output.TotalCandidates)
	assert.Equal(t, "partner", output.Recommendations[0].Producer.ID)
	assert.Contains(t, output.Recommendations[0].Reasons, matching.ReasonPreviousSuccess)
	assert.Empty(t, dir.queries)
}

func TestHandler_Execute_LoadsDesignerAndSearches(t *testing.T) {
	db, mock := setupMockDB(t)
	dir := &fakeDirectory{producers: testProducers()}
	h := createTestHandler(t, dir, db)

	mock.ExpectQuery(`SELECT .+ FROM designers WHERE id = \$1`).
		WithArgs("d-7").
		WillReturnRows(sqlmock.NewRows(designerCols).AddRow(
			"d-7", "Ada", 41.88, -87.63, 4.8, "high", `{Poster}`, nil, nil))
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE designer_id = \$1`).
		WithArgs("d-7").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("o-1", "partner", "d-7", "completed", 4.5, "Poster", time.Now()))

	output, err := h.Execute(context.Background(), &Input{DesignerID: "d-7"})

	require.NoError(t, err)
	require.Len(t, dir.queries, 1)
	assert.Equal(t, 40.0, dir.queries[0].RadiusKm)
	assert.Equal(t, 30, dir.queries[0].Limit)
	require.NotNil(t, dir.queries[0].Center)

	require.NotEmpty(t, output.Recommendations)
	assert.Equal(t, "partner", output.Recommendations[0].Producer.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		setup        func(mock sqlmock.Sqlmock)
		expectedCode errors.ErrorCode
	}{
		{
			name:         "no designer",
			input:        &Input{Producers: testProducers()},
			setup:        func(sqlmock.Sqlmock) {},
			expectedCode: errors.ErrCodeInvalidInput,
		},
		{
			name:  "unknown designer",
			input: &Input{DesignerID: "ghost"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM designers`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(designerCols))
				mock.ExpectQuery(`FROM orders`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(orderCols))
			},
			expectedCode: errors.ErrCodeProfileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.setup(mock)

			_, err := createTestHandler(t, &fakeDirectory{}, db).Execute(context.Background(), tt.input)

			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, errors.CodeOf(err))
		})
	}
}

func TestHandler_Execute_EmptyCandidates(t *testing.T) {
	h := createTestHandler(t, &fakeDirectory{}, nil)

	output, err := h.Execute(context.Background(), &Input{
		Designer:  &matching.Designer{ID: "d-1"},
		Producers: []matching.Producer{},
	})

	require.NoError(t, err)
	assert.NotNil(t, output.Recommendations)
	assert.Empty(t, output.Recommendations)
}
