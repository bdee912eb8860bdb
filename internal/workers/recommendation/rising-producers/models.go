// internal/workers/recommendation/rising-producers/models.go
package risingproducers

import "printmatch-workers/internal/matching"

// Input may carry the producer pool inline; otherwise active producers are
// listed from the store.
type Input struct {
	Days      int                 `json:"days,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
	Producers []matching.Producer `json:"producers,omitempty"`
}

type Output struct {
	Producers  []matching.Producer         `json:"producers"`
	Momentum   []matching.ProducerMomentum `json:"momentum"`
	WindowDays int                         `json:"windowDays"`
}
