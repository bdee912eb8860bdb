// internal/matching/models.go
package matching

import "time"

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ProducerLocation carries an optional precomputed distance in kilometers.
// When Distance is set it wins over the Haversine calculation.
type ProducerLocation struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	City     string   `json:"city,omitempty"`
	Address  string   `json:"address,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// Point drops the display fields.
func (l ProducerLocation) Point() GeoPoint {
	return GeoPoint{Lat: l.Lat, Lng: l.Lng}
}

type Requirements struct {
	Capabilities      []string  `json:"capabilities"`
	ProductType       string    `json:"productType,omitempty"`
	Complexity        float64   `json:"complexity,omitempty"`
	Urgent            bool      `json:"urgent,omitempty"`
	Location          *GeoPoint `json:"location,omitempty"`
	PreferredDistance float64   `json:"preferredDistance,omitempty"`
}

// complexityOrDefault treats an unset complexity as nominal.
func (r *Requirements) complexityOrDefault() float64 {
	if r == nil || r.Complexity == 0 {
		return 1
	}
	return r.Complexity
}

type Project struct {
	ID           string        `json:"id,omitempty"`
	Requirements *Requirements `json:"requirements,omitempty"`
	Location     *GeoPoint     `json:"location,omitempty"`
}

type Order struct {
	ID          string    `json:"id,omitempty"`
	ProducerID  string    `json:"producerId,omitempty"`
	DesignerID  string    `json:"designerId,omitempty"`
	Status      string    `json:"status"`
	Rating      float64   `json:"rating,omitempty"`
	ProductType string    `json:"productType,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

const OrderStatusCompleted = "completed"

type Producer struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name,omitempty"`
	Capabilities        []string          `json:"capabilities,omitempty"`
	Specialties         []string          `json:"specialties,omitempty"`
	Location            *ProducerLocation `json:"location,omitempty"`
	Rating              float64           `json:"rating,omitempty"`
	ReviewCount         int               `json:"reviewCount,omitempty"`
	AvailabilityPercent *float64          `json:"availabilityPercent,omitempty"`
	CurrentCapacity     *float64          `json:"currentCapacity,omitempty"`
	MaxCapacity         *float64          `json:"maxCapacity,omitempty"`
	PriceRange          string            `json:"priceRange,omitempty"`
	Turnaround          string            `json:"turnaround,omitempty"`
	Email               string            `json:"email,omitempty"`
	Phone               string            `json:"phone,omitempty"`
	PreviousOrders      []Order           `json:"previousOrders,omitempty"`
}

type Designer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name,omitempty"`
	Location           *GeoPoint `json:"location,omitempty"`
	Rating             float64   `json:"rating,omitempty"`
	ActivityLevel      string    `json:"activityLevel,omitempty"`
	CommonProductTypes []string  `json:"commonProductTypes,omitempty"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	PreviousOrders     []Order   `json:"previousOrders,omitempty"`
}

// FactorScores holds the six raw sub-scores, each in [0,1].
type FactorScores struct {
	Capabilities float64 `json:"capabilities"`
	Proximity    float64 `json:"proximity"`
	Quality      float64 `json:"quality"`
	Availability float64 `json:"availability"`
	Price        float64 `json:"price"`
	Specialty    float64 `json:"specialty"`
}

type Weights struct {
	Capabilities float64 `json:"capabilities"`
	Proximity    float64 `json:"proximity"`
	Quality      float64 `json:"quality"`
	Availability float64 `json:"availability"`
	Price        float64 `json:"price"`
	Specialty    float64 `json:"specialty"`
}

type MatchResult struct {
	Score               int          `json:"score"`
	Scores              FactorScores `json:"scores"`
	Weights             Weights      `json:"weights"`
	EstimatedPrice      string       `json:"estimatedPrice,omitempty"`
	EstimatedTurnaround string       `json:"estimatedTurnaround,omitempty"`
	MatchNotes          string       `json:"matchNotes,omitempty"`
	Error               string       `json:"error,omitempty"`
}

// Match is one ranked row of FindMatches.
type Match struct {
	Producer       Producer     `json:"producer"`
	MatchScore     int          `json:"matchScore"`
	EstimatedPrice string       `json:"estimatedPrice"`
	Turnaround     string       `json:"turnaround"`
	Notes          string       `json:"notes"`
	Scores         FactorScores `json:"scores"`
}

type MatchOptions struct {
	MinimumScore int `json:"minimumScore,omitempty"`
}

type RecommendOptions struct {
	Limit int `json:"limit,omitempty"`
}

type ProducerRecommendation struct {
	Producer             Producer `json:"producer"`
	RecommendationScore  int      `json:"recommendationScore"`
	RecommendationReason string   `json:"recommendationReason"`
	Distance             *float64 `json:"distance,omitempty"`
	Reasons              []Reason `json:"reasons,omitempty"`
}

type DesignerRecommendation struct {
	Designer             Designer `json:"designer"`
	RecommendationScore  int      `json:"recommendationScore"`
	RecommendationReason string   `json:"recommendationReason"`
	Distance             *float64 `json:"distance,omitempty"`
	Reasons              []Reason `json:"reasons,omitempty"`
}

// FileMetadata mirrors what the upload component reports. Pages may arrive
// as a JSON number or string.
type FileMetadata struct {
	Dimensions         string      `json:"dimensions,omitempty"`
	ColorMode          string      `json:"colorMode,omitempty"`
	Pages              interface{} `json:"pages,omitempty"`
	StandardCompliance bool        `json:"standardCompliance,omitempty"`
}

type FileInfo struct {
	Name     string        `json:"name,omitempty"`
	Type     string        `json:"type"`
	Metadata *FileMetadata `json:"metadata,omitempty"`
}

type UserInputs struct {
	Capabilities      []string  `json:"capabilities,omitempty"`
	ProductType       string    `json:"productType,omitempty"`
	Urgent            bool      `json:"urgent,omitempty"`
	Location          *GeoPoint `json:"location,omitempty"`
	PreferredDistance float64   `json:"preferredDistance,omitempty"`
}
