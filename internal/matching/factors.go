// internal/matching/factors.go
package matching

import "math"

// neutralScore is assigned to a factor whose input data is missing.
const neutralScore = 0.5

// specialtyMissScore is lower than neutral: the producer declared
// specialties and none of them fit.
const specialtyMissScore = 0.3

const (
	proximityFullKm       = 5.0
	proximityZeroKm       = 50.0
	fullConfidenceReviews = 30.0
)

var priceTierScores = map[string]float64{
	"$":    1.0,
	"$$":   0.75,
	"$$$":  0.5,
	"$$$$": 0.25,
}

// producerView is a producer with its alternative field shapes resolved once.
type producerView struct {
	*Producer
	availability    float64
	hasAvailability bool
}

func normalizeProducer(p *Producer) producerView {
	v := producerView{Producer: p}
	switch {
	case p.AvailabilityPercent != nil:
		v.availability = *p.AvailabilityPercent / 100
		v.hasAvailability = true
	case p.CurrentCapacity != nil && p.MaxCapacity != nil && *p.MaxCapacity > 0:
		v.availability = *p.CurrentCapacity / *p.MaxCapacity
		v.hasAvailability = true
	}
	if math.IsNaN(v.availability) || math.IsInf(v.availability, 0) {
		v.availability, v.hasAvailability = 0, false
	}
	return v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return neutralScore
	}
	return math.Min(1, math.Max(0, v))
}

func (e *Engine) capabilitiesScore(project *Project, p producerView) float64 {
	if project.Requirements == nil {
		return neutralScore
	}
	required := project.Requirements.Capabilities
	if len(required) == 0 {
		return 1.0
	}
	if p.Capabilities == nil {
		return neutralScore
	}
	matched := countMatching(e.match, required, p.Capabilities)
	return float64(matched) / float64(len(required))
}

// producerDistanceKm prefers the caller-supplied distance.
func producerDistanceKm(from GeoPoint, loc *ProducerLocation) float64 {
	if loc.Distance != nil {
		return *loc.Distance
	}
	return DistanceKm(from, loc.Point())
}

func proximityScore(project *Project, p producerView) float64 {
	if project.Location == nil || p.Location == nil {
		return neutralScore
	}
	d := producerDistanceKm(*project.Location, p.Location)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return neutralScore
	}
	switch {
	case d <= proximityFullKm:
		return 1.0
	case d >= proximityZeroKm:
		return 0.0
	default:
		return 1 - (d-proximityFullKm)/(proximityZeroKm-proximityFullKm)
	}
}

func qualityScore(p producerView) float64 {
	if p.Rating == 0 {
		return neutralScore
	}
	ratingNorm := (p.Rating - 1) / 4
	confidence := math.Min(1, math.Max(0, float64(p.ReviewCount))/fullConfidenceReviews)
	return ratingNorm*0.8*confidence + neutralScore*(1-confidence)
}

func availabilityScore(p producerView) float64 {
	if !p.hasAvailability {
		return neutralScore
	}
	return p.availability
}

func priceScore(p producerView) float64 {
	if s, ok := priceTierScores[p.PriceRange]; ok {
		return s
	}
	return neutralScore
}

func (e *Engine) specialtyScore(project *Project, p producerView) float64 {
	if project.Requirements == nil || project.Requirements.ProductType == "" || len(p.Specialties) == 0 {
		return neutralScore
	}
	if anyTagMatches(e.match, project.Requirements.ProductType, p.Specialties) {
		return 1.0
	}
	return specialtyMissScore
}

func (e *Engine) factorScores(project *Project, p producerView) FactorScores {
	return FactorScores{
		Capabilities: clamp01(e.capabilitiesScore(project, p)),
		Proximity:    clamp01(proximityScore(project, p)),
		Quality:      clamp01(qualityScore(p)),
		Availability: clamp01(availabilityScore(p)),
		Price:        clamp01(priceScore(p)),
		Specialty:    clamp01(e.specialtyScore(project, p)),
	}
}
