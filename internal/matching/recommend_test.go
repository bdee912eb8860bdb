// internal/matching/recommend_test.go
package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestDesigner() *Designer {
	return &Designer{
		ID:                 "designer-1",
		Location:           &GeoPoint{Lat: 41.88, Lng: -87.63},
		CommonProductTypes: []string{"shirts", "posters"},
		PreviousOrders: []Order{
			{ProducerID: "p-trusted", Status: OrderStatusCompleted, Rating: 5},
			{ProducerID: "p-poor", Status: OrderStatusCompleted, Rating: 3},
			{ProducerID: "p-open", Status: "in_progress", Rating: 5},
		},
	}
}

// tenKmNorth sits about 10.0 km from createTestDesigner.
func tenKmNorth() *ProducerLocation {
	return &ProducerLocation{Lat: 41.97, Lng: -87.63}
}

// ==========================
// Producer Recommendation Tests
// ==========================

func TestRecommendProducersForDesigner_PriorityReason(t *testing.T) {
	producers := []Producer{{
		ID:       "p-trusted",
		Location: &ProducerLocation{Lat: 41.88, Lng: -87.63},
	}}

	recs := RecommendProducersForDesigner(createTestDesigner(), producers, RecommendOptions{})
	require.Len(t, recs, 1)
	assert.Equal(t, 6, recs[0].RecommendationScore)
	assert.Equal(t, []Reason{ReasonPreviousSuccess, ReasonVeryClose}, recs[0].Reasons)
	assert.Equal(t, "You've worked successfully with this producer before.", recs[0].RecommendationReason)
}

func TestRecommendProducersForDesigner_Scoring(t *testing.T) {
	tests := []struct {
		name           string
		producer       Producer
		expectedScore  int
		expectedReason string
	}{
		{
			name:           "no signals",
			producer:       Producer{ID: "p-none"},
			expectedScore:  0,
			expectedReason: "This producer may be a good match for your projects.",
		},
		{
			name:           "unsuccessful history ignored",
			producer:       Producer{ID: "p-poor"},
			expectedScore:  0,
			expectedReason: "This producer may be a good match for your projects.",
		},
		{
			name:           "specialty overlap counts each matching specialty",
			producer:       Producer{ID: "p-spec", Specialties: []string{"T-Shirts", "Hoodies", "Posters"}},
			expectedScore:  2,
			expectedReason: "Specializes in T-Shirts.",
		},
		{
			name:           "nearby",
			producer:       Producer{ID: "p-near", Location: tenKmNorth()},
			expectedScore:  2,
			expectedReason: "Conveniently located near you (10km).",
		},
		{
			name:           "top rated beats nearby",
			producer:       Producer{ID: "p-top", Location: tenKmNorth(), Rating: 4.9},
			expectedScore:  5,
			expectedReason: "Top-rated producer (4.9 stars).",
		},
		{
			name:           "highly rated",
			producer:       Producer{ID: "p-high", Rating: 4.5},
			expectedScore:  2,
			expectedReason: "Highly rated by other designers (4.5 stars).",
		},
		{
			name:           "well rated",
			producer:       Producer{ID: "p-well", Rating: 4},
			expectedScore:  1,
			expectedReason: "Well-reviewed producer (4 stars).",
		},
		{
			name:           "high availability from capacity",
			producer:       Producer{ID: "p-cap", CurrentCapacity: floatPtr(8), MaxCapacity: floatPtr(10)},
			expectedScore:  2,
			expectedReason: "Currently has high availability for new projects.",
		},
		{
			name:           "good availability",
			producer:       Producer{ID: "p-avail", AvailabilityPercent: floatPtr(40)},
			expectedScore:  1,
			expectedReason: "Has good capacity for new projects.",
		},
		{
			name:           "far away",
			producer:       Producer{ID: "p-far", Location: &ProducerLocation{Lat: 40.71, Lng: -74.01}},
			expectedScore:  0,
			expectedReason: "This producer may be a good match for your projects.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := RecommendProducersForDesigner(createTestDesigner(), []Producer{tt.producer}, RecommendOptions{})
			require.Len(t, recs, 1)
			assert.Equal(t, tt.expectedScore, recs[0].RecommendationScore)
			assert.Equal(t, tt.expectedReason, recs[0].RecommendationReason)
		})
	}
}

func TestRecommendProducersForDesigner_DistanceReturnedNotMutated(t *testing.T) {
	producers := []Producer{{ID: "p-near", Location: tenKmNorth()}, {ID: "p-nowhere"}}

	recs := RecommendProducersForDesigner(createTestDesigner(), producers, RecommendOptions{})
	require.Len(t, recs, 2)

	require.NotNil(t, recs[0].Distance)
	assert.Equal(t, 10.0, *recs[0].Distance)
	assert.Nil(t, recs[1].Distance)
	assert.Nil(t, producers[0].Location.Distance)
}

func TestRecommendProducersForDesigner_OrderAndLimit(t *testing.T) {
	producers := make([]Producer, 0, 8)
	for i := 0; i < 8; i++ {
		producers = append(producers, Producer{ID: fmt.Sprintf("p-%d", i)})
	}
	producers[6].Rating = 4.8
	producers[3].Rating = 4.8
	producers[5].Rating = 4.0

	recs := RecommendProducersForDesigner(createTestDesigner(), producers, RecommendOptions{})
	require.Len(t, recs, DefaultRecommendationLimit)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.Producer.ID)
	}
	assert.Equal(t, []string{"p-3", "p-6", "p-5", "p-0", "p-1"}, ids)

	recs = RecommendProducersForDesigner(createTestDesigner(), producers, RecommendOptions{Limit: 2})
	assert.Len(t, recs, 2)
}

func TestRecommendProducersForDesigner_EmptyInput(t *testing.T) {
	assert.Empty(t, RecommendProducersForDesigner(nil, []Producer{{ID: "p"}}, RecommendOptions{}))
	assert.Empty(t, RecommendProducersForDesigner(createTestDesigner(), nil, RecommendOptions{}))
}

// ==========================
// Designer Recommendation Tests
// ==========================

func TestRecommendDesignersForProducer(t *testing.T) {
	producer := &Producer{
		ID:          "producer-1",
		Specialties: []string{"T-Shirts"},
		Location:    &ProducerLocation{Lat: 41.88, Lng: -87.63},
		PreviousOrders: []Order{
			{DesignerID: "d-repeat", Status: OrderStatusCompleted, Rating: 4},
		},
	}

	tests := []struct {
		name           string
		designer       Designer
		expectedScore  int
		expectedReason string
	}{
		{
			name:           "repeat customer",
			designer:       Designer{ID: "d-repeat", ActivityLevel: ActivityHigh},
			expectedScore:  5,
			expectedReason: "You've worked successfully with this designer before.",
		},
		{
			name:           "product type match",
			designer:       Designer{ID: "d-shirts", CommonProductTypes: []string{"Shirts", "Mugs"}},
			expectedScore:  1,
			expectedReason: "Creates Shirts that match your specialties.",
		},
		{
			name:           "very active outranks top rated",
			designer:       Designer{ID: "d-active", ActivityLevel: ActivityHigh, Rating: 4.9},
			expectedScore:  5,
			expectedReason: "Very active designer with frequent projects.",
		},
		{
			name:           "medium activity",
			designer:       Designer{ID: "d-medium", ActivityLevel: ActivityMedium},
			expectedScore:  1,
			expectedReason: "Regularly creates new projects.",
		},
		{
			name:           "within service area",
			designer:       Designer{ID: "d-range", Location: &GeoPoint{Lat: 42.06, Lng: -87.63}},
			expectedScore:  1,
			expectedReason: "Within your service area (20km).",
		},
		{
			name:           "no signals",
			designer:       Designer{ID: "d-none", ActivityLevel: "low"},
			expectedScore:  0,
			expectedReason: "This designer may be looking for your services.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := RecommendDesignersForProducer(producer, []Designer{tt.designer}, RecommendOptions{})
			require.Len(t, recs, 1)
			assert.Equal(t, tt.expectedScore, recs[0].RecommendationScore)
			assert.Equal(t, tt.expectedReason, recs[0].RecommendationReason)
		})
	}
}

func TestRecommendDesignersForProducer_EmptyInput(t *testing.T) {
	assert.Empty(t, RecommendDesignersForProducer(nil, []Designer{{ID: "d"}}, RecommendOptions{}))
	assert.Empty(t, RecommendDesignersForProducer(&Producer{}, nil, RecommendOptions{}))
}
