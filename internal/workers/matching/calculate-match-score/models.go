// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "printmatch-workers/internal/matching"

// Input takes the producer inline or by id.
type Input struct {
	Project    *matching.Project  `json:"project"`
	Producer   *matching.Producer `json:"producer,omitempty"`
	ProducerID string             `json:"producerId,omitempty"`
}

type Output struct {
	ProducerID          string                `json:"producerId,omitempty"`
	MatchScore          int                   `json:"matchScore"`
	Scores              matching.FactorScores `json:"scores"`
	Weights             matching.Weights      `json:"weights"`
	EstimatedPrice      string                `json:"estimatedPrice"`
	EstimatedTurnaround string                `json:"estimatedTurnaround"`
	MatchNotes          string                `json:"matchNotes"`
	Error               string                `json:"error,omitempty"`
}
