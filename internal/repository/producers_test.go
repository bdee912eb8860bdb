package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectory(t *testing.T, status int, body string, seen *map[string]interface{}) *ProducerDirectory {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewProducerDirectory(client, "producers", 50, logger.NewTestLogger(t))
}

// ==========================
// Query Builder Tests
// ==========================

func TestBuildProducerQuery_WithCenter(t *testing.T) {
	q := BuildProducerQuery(ProducerQuery{
		Center:       &matching.GeoPoint{Lat: 40.7, Lng: -74},
		RadiusKm:     25,
		Capabilities: []string{"DTG"},
	})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1)
	geo := filters[0].(map[string]interface{})["geo_distance"].(map[string]interface{})
	assert.Equal(t, "25km", geo["distance"])
	assert.Len(t, boolQuery["should"], 1)

	sort := q["sort"].([]interface{})
	assert.Contains(t, sort[0].(map[string]interface{}), "_geo_distance")
}

func TestBuildProducerQuery_NoCriteria(t *testing.T) {
	q := BuildProducerQuery(ProducerQuery{})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, boolQuery, "must")
	assert.NotContains(t, boolQuery, "filter")
	assert.Equal(t, map[string]interface{}{"rating": "desc"}, q["sort"].([]interface{})[0])
}

func TestProducerQuery_Size(t *testing.T) {
	assert.Equal(t, 50, ProducerQuery{}.size(50))
	assert.Equal(t, 10, ProducerQuery{Limit: 10}.size(50))
	assert.Equal(t, maxSearchSize, ProducerQuery{Limit: 10000}.size(50))
}

// ==========================
// Search Tests
// ==========================

func TestProducerDirectory_Search(t *testing.T) {
	body := `{"hits":{"hits":[
		{"_id":"p-1","_source":{"id":"p-1","name":"Inkwell","capabilities":["DTG"],"location":{"lat":40.71,"lon":-74.0},"city":"New York","rating":4.6},"sort":[1.25]},
		{"_id":"p-2","_source":{"name":"Paperworks","rating":4.1},"sort":[null]}
	]}}`
	var seen map[string]interface{}
	dir := newDirectory(t, http.StatusOK, body, &seen)

	producers, err := dir.Search(context.Background(), ProducerQuery{
		Center:   &matching.GeoPoint{Lat: 40.7, Lng: -74},
		RadiusKm: 25,
	})

	require.NoError(t, err)
	require.Len(t, producers, 2)

	assert.Equal(t, "Inkwell", producers[0].Name)
	require.NotNil(t, producers[0].Location)
	assert.Equal(t, -74.0, producers[0].Location.Lng)
	require.NotNil(t, producers[0].Location.Distance)
	assert.Equal(t, 1.25, *producers[0].Location.Distance)

	assert.Equal(t, "p-2", producers[1].ID)
	assert.Nil(t, producers[1].Location)
	assert.Contains(t, seen, "sort")
}

func TestProducerDirectory_Search_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedCode errors.ErrorCode
	}{
		{"missing index", http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`, errors.ErrCodeIndexNotFound},
		{"bad request", http.StatusBadRequest, `{"error":{"type":"parsing_exception"},"status":400}`, errors.ErrCodeProducerSearchFailed},
		{"garbage body", http.StatusOK, `not json`, errors.ErrCodeProducerSearchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newDirectory(t, tt.status, tt.body, nil)

			_, err := dir.Search(context.Background(), ProducerQuery{})

			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, errors.CodeOf(err))
		})
	}
}
