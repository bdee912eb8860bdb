// internal/workers/recommendation/recommend-producers/models.go
package recommendproducers

import "printmatch-workers/internal/matching"

type Input struct {
	Designer   *matching.Designer  `json:"designer,omitempty"`
	DesignerID string              `json:"designerId,omitempty"`
	Producers  []matching.Producer `json:"producers,omitempty"`
	Limit      int                 `json:"limit,omitempty"`
}

type Output struct {
	DesignerID      string                            `json:"designerId"`
	Recommendations []matching.ProducerRecommendation `json:"recommendations"`
	TotalCandidates int                               `json:"totalCandidates"`
}
