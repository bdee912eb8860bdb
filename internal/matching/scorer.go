// internal/matching/scorer.go
package matching

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const ErrInvalidMatchInput = "Invalid project or producer data"

// DefaultWeights are the fixed factor weights; they sum to 1.0.
var DefaultWeights = Weights{
	Capabilities: 0.30,
	Proximity:    0.20,
	Quality:      0.20,
	Availability: 0.15,
	Price:        0.10,
	Specialty:    0.05,
}

const basePrice = 100.0

var priceTierMultipliers = map[string]float64{
	"$":    0.8,
	"$$":   1.0,
	"$$$":  1.3,
	"$$$$": 1.8,
}

const (
	baseTurnaroundDays  = 3.0
	defaultAvailability = 0.5
)

// Engine scores projects against producers. The zero value is not usable;
// construct with NewEngine.
type Engine struct {
	weights Weights
	match   TagMatcher
}

type EngineOption func(*Engine)

// WithTagMatcher replaces the substring heuristic used for capability and
// specialty comparison.
func WithTagMatcher(m TagMatcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.match = m
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		weights: DefaultWeights,
		match:   TagsMatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// CalculateMatchScore scores one producer for one project with the default engine.
func CalculateMatchScore(project *Project, producer *Producer) MatchResult {
	return defaultEngine.CalculateMatchScore(project, producer)
}

// CalculateMatchScore never fails: nil input yields a zero score with Error set,
// and missing fields degrade their factor to neutral.
func (e *Engine) CalculateMatchScore(project *Project, producer *Producer) MatchResult {
	if project == nil || producer == nil {
		return MatchResult{Score: 0, Error: ErrInvalidMatchInput}
	}

	view := normalizeProducer(producer)
	scores := e.factorScores(project, view)

	total := scores.Capabilities*e.weights.Capabilities +
		scores.Proximity*e.weights.Proximity +
		scores.Quality*e.weights.Quality +
		scores.Availability*e.weights.Availability +
		scores.Price*e.weights.Price +
		scores.Specialty*e.weights.Specialty

	return MatchResult{
		Score:               compositeScore(total),
		Scores:              scores,
		Weights:             e.weights,
		EstimatedPrice:      estimatePrice(project, view),
		EstimatedTurnaround: estimateTurnaround(project, view),
		MatchNotes:          matchNotes(scores, project, view),
	}
}

func compositeScore(weighted float64) int {
	s := math.Round(weighted * 100)
	if math.IsNaN(s) {
		return 0
	}
	return int(math.Min(100, math.Max(0, s)))
}

func estimatePrice(project *Project, p producerView) string {
	tier := p.PriceRange
	if tier == "" {
		tier = "$$"
	}
	multiplier, ok := priceTierMultipliers[tier]
	if !ok {
		multiplier = 1.0
	}

	price := basePrice * multiplier * project.Requirements.complexityOrDefault()
	low := int(math.Round(price * 0.8))
	high := int(math.Round(price * 1.2))
	return fmt.Sprintf("$%d-%d", low, high)
}

func estimateTurnaround(project *Project, p producerView) string {
	if p.Turnaround != "" {
		return p.Turnaround
	}

	// Lead time reads the declared percentage only, never the capacity ratio.
	availability := defaultAvailability
	if pct := p.AvailabilityPercent; pct != nil && !math.IsNaN(*pct) && !math.IsInf(*pct, 0) {
		availability = *pct / 100
	}
	loadFactor := 1 + (1 - availability)
	days := int(math.Round(baseTurnaroundDays * loadFactor * project.Requirements.complexityOrDefault()))

	switch {
	case days <= 1:
		return "1 business day"
	case days <= 3:
		return "2-3 business days"
	case days <= 5:
		return "3-5 business days"
	default:
		return "5+ business days"
	}
}

type factorName string

const (
	factorCapabilities factorName = "capabilities"
	factorProximity    factorName = "proximity"
	factorQuality      factorName = "quality"
	factorAvailability factorName = "availability"
	factorPrice        factorName = "price"
	factorSpecialty    factorName = "specialty"
)

type rankedFactor struct {
	name  factorName
	score float64
}

// topFactors ranks the sub-scores; ties keep declaration order.
func topFactors(s FactorScores, n int) map[factorName]bool {
	ranked := []rankedFactor{
		{factorCapabilities, s.Capabilities},
		{factorProximity, s.Proximity},
		{factorQuality, s.Quality},
		{factorAvailability, s.Availability},
		{factorPrice, s.Price},
		{factorSpecialty, s.Specialty},
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	top := make(map[factorName]bool, n)
	for _, f := range ranked[:n] {
		top[f.name] = true
	}
	return top
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func matchNotes(scores FactorScores, project *Project, p producerView) string {
	top := topFactors(scores, 2)
	var notes []string

	if top[factorCapabilities] {
		notes = append(notes, "Technical capabilities are an excellent match for your project requirements.")
	}
	if top[factorProximity] {
		if d, ok := noteDistance(project, p); ok {
			notes = append(notes, fmt.Sprintf("Conveniently located %skm from your location.", formatNumber(d)))
		} else {
			notes = append(notes, "Conveniently located near your location.")
		}
	}
	if top[factorQuality] {
		if p.Rating > 0 {
			notes = append(notes, fmt.Sprintf("Highly rated producer with strong reviews (%s stars).", formatNumber(p.Rating)))
		} else {
			notes = append(notes, "Highly rated producer with strong reviews.")
		}
	}
	if top[factorAvailability] {
		notes = append(notes, "Currently has good availability to take on your project.")
	}
	if top[factorPrice] {
		notes = append(notes, "Offers competitive pricing for your project specifications.")
	}
	if top[factorSpecialty] {
		specialty := "this type of project"
		if len(p.Specialties) > 0 {
			specialty = p.Specialties[0]
		}
		notes = append(notes, fmt.Sprintf("Specializes in %s.", specialty))
	}

	if project.Requirements != nil && project.Requirements.Urgent && strings.Contains(p.Turnaround, "Same day") {
		notes = append(notes, "Offers rush service that meets your timeline needs.")
	}

	return strings.Join(notes, " ")
}

func noteDistance(project *Project, p producerView) (float64, bool) {
	if p.Location == nil {
		return 0, false
	}
	if p.Location.Distance != nil {
		return roundTo(*p.Location.Distance, 1), true
	}
	if project.Location == nil {
		return 0, false
	}
	d := DistanceKm(*project.Location, p.Location.Point())
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return roundTo(d, 1), true
}
