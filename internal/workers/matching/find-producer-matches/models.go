// internal/workers/matching/find-producer-matches/models.go
package findproducermatches

import "printmatch-workers/internal/matching"

// Input names candidates inline, by id, or not at all; in the last case
// they are searched around the project location.
type Input struct {
	Project      *matching.Project   `json:"project"`
	Producers    []matching.Producer `json:"producers,omitempty"`
	ProducerIDs  []string            `json:"producerIds,omitempty"`
	MinimumScore *int                `json:"minimumScore,omitempty"`
	Limit        int                 `json:"limit,omitempty"`
}

type Output struct {
	RunID           string           `json:"runId"`
	Matches         []matching.Match `json:"matches"`
	TotalCandidates int              `json:"totalCandidates"`
	CandidateSource string           `json:"candidateSource"`
}

// Candidate sources.
const (
	SourceInline    = "inline"
	SourceProfiles  = "profiles"
	SourceDirectory = "directory"
)
