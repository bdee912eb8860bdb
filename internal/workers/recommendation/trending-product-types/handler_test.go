// internal/workers/recommendation/trending-product-types/handler_test.go
package trendingproducttypes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{"id", "producer_id", "designer_id", "status", "rating", "product_type", "created_at"}

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		DefaultWindowDays: 30,
		DefaultLimit:      5,
		ReportCacheTTL:    15 * time.Minute,
		Timeout:           5 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client) *Handler {
	log := logger.NewTestLogger(t)
	h := NewHandler(createTestConfig(), repository.NewStore(db), repository.NewCache(redisClient, log), log)
	h.now = func() time.Time { return fixedNow }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ComputesAndCaches(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, redisMock := redismock.NewClientMock()
	h := createTestHandler(t, db, redisClient)

	created := fixedNow.Add(-24 * time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE created_at >= \$1`).
		WithArgs(fixedNow.AddDate(0, 0, -7)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("o-1", "p-1", "d-1", "completed", 5.0, "Poster", created).
			AddRow("o-2", "p-1", "d-2", "completed", nil, "T-Shirt", created).
			AddRow("o-3", "p-2", "d-1", "pending", nil, "T-Shirt", created).
			AddRow("o-4", "p-2", "d-3", "pending", nil, nil, created))

	expected := &Output{
		ProductTypes: []string{"T-Shirt", "Poster"},
		WindowDays:   7,
		OrderCount:   4,
		GeneratedAt:  fixedNow.Format(time.RFC3339),
	}
	expectedJSON, _ := json.Marshal(expected)

	redisMock.ExpectGet("printmatch:trending:7d:2").RedisNil()
	redisMock.ExpectSet("printmatch:trending:7d:2", expectedJSON, 15*time.Minute).SetVal("OK")

	output, err := h.Execute(context.Background(), &Input{Days: 7, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, expected, output)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_FromCache(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, redisMock := redismock.NewClientMock()
	h := createTestHandler(t, db, redisClient)

	redisMock.ExpectGet("printmatch:trending:30d:5").
		SetVal(`{"productTypes":["Mug"],"windowDays":30,"orderCount":12,"generatedAt":"2024-06-30T11:00:00Z"}`)

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, []string{"Mug"}, output.ProductTypes)
	assert.Equal(t, 12, output.OrderCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoOrders(t *testing.T) {
	db, mock := setupMockDB(t)
	h := createTestHandler(t, db, nil)

	mock.ExpectQuery(`FROM orders`).WillReturnRows(sqlmock.NewRows(orderCols))

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.NotNil(t, output.ProductTypes)
	assert.Empty(t, output.ProductTypes)
	assert.Equal(t, 30, output.WindowDays)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		setup        func(mock sqlmock.Sqlmock)
		expectedCode errors.ErrorCode
	}{
		{
			name:         "negative window",
			input:        &Input{Days: -1},
			setup:        func(sqlmock.Sqlmock) {},
			expectedCode: errors.ErrCodeInvalidInput,
		},
		{
			name:  "order query fails",
			input: &Input{Days: 14},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM orders`).WillReturnError(fmt.Errorf("connection refused"))
			},
			expectedCode: errors.ErrCodeOrderHistoryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.setup(mock)

			_, err := createTestHandler(t, db, nil).Execute(context.Background(), tt.input)

			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, errors.CodeOf(err))
		})
	}
}
