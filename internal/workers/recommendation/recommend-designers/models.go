// internal/workers/recommendation/recommend-designers/models.go
package recommenddesigners

import "printmatch-workers/internal/matching"

type Input struct {
	Producer   *matching.Producer  `json:"producer,omitempty"`
	ProducerID string              `json:"producerId,omitempty"`
	Designers  []matching.Designer `json:"designers,omitempty"`
	Limit      int                 `json:"limit,omitempty"`
}

type Output struct {
	ProducerID      string                            `json:"producerId"`
	Recommendations []matching.DesignerRecommendation `json:"recommendations"`
	TotalCandidates int                               `json:"totalCandidates"`
}
