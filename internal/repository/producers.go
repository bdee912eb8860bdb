package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const maxSearchSize = 500

// ProducerQuery narrows the candidate set before scoring.
type ProducerQuery struct {
	Center       *matching.GeoPoint
	RadiusKm     float64
	Capabilities []string
	Limit        int
}

// ProducerDirectory searches the producer index.
type ProducerDirectory struct {
	client      *elasticsearch.Client
	index       string
	defaultSize int
	logger      logger.Logger
}

func NewProducerDirectory(client *elasticsearch.Client, index string, defaultSize int, log logger.Logger) *ProducerDirectory {
	if defaultSize <= 0 {
		defaultSize = 100
	}
	return &ProducerDirectory{client: client, index: index, defaultSize: defaultSize, logger: log}
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// producerDocument is the indexed shape of a producer.
type producerDocument struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Capabilities        []string  `json:"capabilities"`
	Specialties         []string  `json:"specialties"`
	Location            *geoPoint `json:"location"`
	City                string    `json:"city"`
	Address             string    `json:"address"`
	Rating              float64   `json:"rating"`
	ReviewCount         int       `json:"reviewCount"`
	AvailabilityPercent *float64  `json:"availabilityPercent"`
	CurrentCapacity     *float64  `json:"currentCapacity"`
	MaxCapacity         *float64  `json:"maxCapacity"`
	PriceRange          string    `json:"priceRange"`
	Turnaround          string    `json:"turnaround"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string            `json:"_id"`
			Source producerDocument  `json:"_source"`
			Sort   []json.RawMessage `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func (q ProducerQuery) size(fallback int) int {
	size := q.Limit
	if size <= 0 {
		size = fallback
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	return size
}

// BuildProducerQuery renders the search body. With a center the results
// are restricted to the radius and sorted nearest first; otherwise they
// are sorted by rating.
func BuildProducerQuery(q ProducerQuery) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	filterClauses := []interface{}{}
	shouldClauses := []interface{}{}

	if q.Center != nil && q.RadiusKm > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%gkm", q.RadiusKm),
				"location": map[string]interface{}{"lat": q.Center.Lat, "lon": q.Center.Lng},
			},
		})
	}

	for _, c := range q.Capabilities {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"match": map[string]interface{}{"capabilities": c},
		})
	}

	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(shouldClauses) > 0 {
		boolQuery["should"] = shouldClauses
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}

	if q.Center != nil {
		query["sort"] = []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"location": map[string]interface{}{"lat": q.Center.Lat, "lon": q.Center.Lng},
					"order":    "asc",
					"unit":     "km",
				},
			},
		}
	} else {
		query["sort"] = []interface{}{
			map[string]interface{}{"rating": "desc"},
			"_score",
		}
	}

	return query
}

// Search returns producers for q. When the query has a center, each
// producer's Location.Distance carries the distance in km Elasticsearch
// sorted on.
func (d *ProducerDirectory) Search(ctx context.Context, q ProducerQuery) ([]matching.Producer, error) {
	body, err := json.Marshal(BuildProducerQuery(q))
	if err != nil {
		return nil, errors.NewProducerSearchFailedError(err)
	}

	size := q.size(d.defaultSize)
	req := esapi.SearchRequest{
		Index: []string{d.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, d.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(d.index)
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(d.index)
	}
	if res.IsError() {
		return nil, errors.NewProducerSearchFailedError(fmt.Errorf("search failed: %s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewProducerSearchFailedError(fmt.Errorf("decode response: %w", err))
	}

	producers := make([]matching.Producer, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p := hit.Source.toProducer()
		if p.ID == "" {
			p.ID = hit.ID
		}
		if q.Center != nil && p.Location != nil && len(hit.Sort) > 0 {
			var km float64
			if err := json.Unmarshal(hit.Sort[0], &km); err == nil {
				p.Location.Distance = &km
			}
		}
		producers = append(producers, p)
	}

	if d.logger != nil {
		d.logger.Debug("producer search completed", map[string]interface{}{
			"index":    d.index,
			"returned": len(producers),
		})
	}
	return producers, nil
}

func (doc producerDocument) toProducer() matching.Producer {
	p := matching.Producer{
		ID:                  doc.ID,
		Name:                doc.Name,
		Capabilities:        doc.Capabilities,
		Specialties:         doc.Specialties,
		Rating:              doc.Rating,
		ReviewCount:         doc.ReviewCount,
		AvailabilityPercent: doc.AvailabilityPercent,
		CurrentCapacity:     doc.CurrentCapacity,
		MaxCapacity:         doc.MaxCapacity,
		PriceRange:          doc.PriceRange,
		Turnaround:          doc.Turnaround,
		Email:               doc.Email,
		Phone:               doc.Phone,
	}
	if doc.Location != nil {
		p.Location = &matching.ProducerLocation{
			Lat:     doc.Location.Lat,
			Lng:     doc.Location.Lon,
			City:    doc.City,
			Address: doc.Address,
		}
	}
	return p
}
