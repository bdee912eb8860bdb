// internal/matching/recommend.go
package matching

import (
	"fmt"
	"math"
	"sort"
)

// Reason identifies one scoring rule that fired for a recommendation.
type Reason string

const (
	ReasonPreviousSuccess  Reason = "previousSuccess"
	ReasonSpecialtyMatch   Reason = "specialtyMatch"
	ReasonProductTypeMatch Reason = "productTypeMatch"
	ReasonVeryClose        Reason = "veryClose"
	ReasonNearby           Reason = "nearby"
	ReasonInRange          Reason = "inRange"
	ReasonTopRated         Reason = "topRated"
	ReasonHighlyRated      Reason = "highlyRated"
	ReasonWellRated        Reason = "wellRated"
	ReasonHighAvailability Reason = "highAvailability"
	ReasonGoodAvailability Reason = "goodAvailability"
	ReasonVeryActive       Reason = "veryActive"
	ReasonActive           Reason = "active"
)

const DefaultRecommendationLimit = 5

// Priority lists decide which fired reason is quoted, independent of points.
var (
	producerReasonPriority = []Reason{
		ReasonPreviousSuccess,
		ReasonSpecialtyMatch,
		ReasonVeryClose,
		ReasonTopRated,
		ReasonNearby,
		ReasonHighAvailability,
		ReasonHighlyRated,
		ReasonInRange,
		ReasonGoodAvailability,
		ReasonWellRated,
	}
	designerReasonPriority = []Reason{
		ReasonPreviousSuccess,
		ReasonProductTypeMatch,
		ReasonVeryClose,
		ReasonVeryActive,
		ReasonTopRated,
		ReasonNearby,
		ReasonActive,
		ReasonHighlyRated,
		ReasonInRange,
		ReasonWellRated,
	}
)

// Designer activity levels that earn points.
const (
	ActivityHigh   = "high"
	ActivityMedium = "medium"
)

// tally accumulates additive points for one candidate.
type tally struct {
	score    int
	reasons  []Reason
	distance *float64
}

func (t *tally) add(points int, r Reason) {
	t.score += points
	t.reasons = append(t.reasons, r)
}

func (t *tally) has(r Reason) bool {
	for _, x := range t.reasons {
		if x == r {
			return true
		}
	}
	return false
}

func (t *tally) primary(priority []Reason) Reason {
	for _, r := range priority {
		if t.has(r) {
			return r
		}
	}
	if len(t.reasons) > 0 {
		return t.reasons[0]
	}
	return ""
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultRecommendationLimit
	}
	return limit
}

// successfulPartners collects counterpart ids from completed orders rated 4+.
func successfulPartners(orders []Order, counterpart func(Order) string) map[string]bool {
	ids := make(map[string]bool)
	for _, o := range orders {
		if o.Status == OrderStatusCompleted && o.Rating >= 4 {
			ids[counterpart(o)] = true
		}
	}
	return ids
}

func scoreProximity(t *tally, from GeoPoint, to GeoPoint) {
	d := DistanceKm(from, to)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return
	}
	rounded := roundTo(d, 1)
	t.distance = &rounded

	switch {
	case d < 5:
		t.add(3, ReasonVeryClose)
	case d < 15:
		t.add(2, ReasonNearby)
	case d < 30:
		t.add(1, ReasonInRange)
	}
}

func scoreRating(t *tally, rating float64) {
	switch {
	case rating >= 4.8:
		t.add(3, ReasonTopRated)
	case rating >= 4.5:
		t.add(2, ReasonHighlyRated)
	case rating >= 4.0:
		t.add(1, ReasonWellRated)
	}
}

// RecommendProducersForDesigner uses the default engine.
func RecommendProducersForDesigner(designer *Designer, producers []Producer, opts RecommendOptions) []ProducerRecommendation {
	return defaultEngine.RecommendProducersForDesigner(designer, producers, opts)
}

// RecommendProducersForDesigner ranks producers for a designer without an
// active project. Candidates are never modified; the computed distance is
// returned on the recommendation.
func (e *Engine) RecommendProducersForDesigner(designer *Designer, producers []Producer, opts RecommendOptions) []ProducerRecommendation {
	if designer == nil || len(producers) == 0 {
		return []ProducerRecommendation{}
	}

	previous := successfulPartners(designer.PreviousOrders, func(o Order) string { return o.ProducerID })
	tallies := make([]tally, len(producers))

	for i := range producers {
		p := normalizeProducer(&producers[i])
		t := &tallies[i]

		if previous[p.ID] {
			t.add(3, ReasonPreviousSuccess)
		}
		if len(designer.CommonProductTypes) > 0 {
			if n := countMatching(e.match, p.Specialties, designer.CommonProductTypes); n > 0 {
				t.add(n, ReasonSpecialtyMatch)
			}
		}
		if designer.Location != nil && p.Location != nil {
			scoreProximity(t, *designer.Location, p.Location.Point())
		}
		scoreRating(t, p.Rating)
		if p.hasAvailability {
			switch pct := p.availability * 100; {
			case pct >= 70:
				t.add(2, ReasonHighAvailability)
			case pct >= 40:
				t.add(1, ReasonGoodAvailability)
			}
		}
	}

	order := rankTallies(tallies)
	n := min(limitOrDefault(opts.Limit), len(order))
	recs := make([]ProducerRecommendation, 0, n)
	for _, idx := range order[:n] {
		t := tallies[idx]
		recs = append(recs, ProducerRecommendation{
			Producer:             producers[idx],
			RecommendationScore:  t.score,
			RecommendationReason: producerReasonText(t.primary(producerReasonPriority), &producers[idx], t.distance),
			Distance:             t.distance,
			Reasons:              t.reasons,
		})
	}
	return recs
}

// RecommendDesignersForProducer uses the default engine.
func RecommendDesignersForProducer(producer *Producer, designers []Designer, opts RecommendOptions) []DesignerRecommendation {
	return defaultEngine.RecommendDesignersForProducer(producer, designers, opts)
}

// RecommendDesignersForProducer mirrors RecommendProducersForDesigner with
// activity tiers in place of availability tiers.
func (e *Engine) RecommendDesignersForProducer(producer *Producer, designers []Designer, opts RecommendOptions) []DesignerRecommendation {
	if producer == nil || len(designers) == 0 {
		return []DesignerRecommendation{}
	}

	previous := successfulPartners(producer.PreviousOrders, func(o Order) string { return o.DesignerID })
	tallies := make([]tally, len(designers))

	for i := range designers {
		d := &designers[i]
		t := &tallies[i]

		if previous[d.ID] {
			t.add(3, ReasonPreviousSuccess)
		}
		if len(d.CommonProductTypes) > 0 {
			if n := countMatching(e.match, d.CommonProductTypes, producer.Specialties); n > 0 {
				t.add(n, ReasonProductTypeMatch)
			}
		}
		if producer.Location != nil && d.Location != nil {
			scoreProximity(t, producer.Location.Point(), *d.Location)
		}
		scoreRating(t, d.Rating)
		switch d.ActivityLevel {
		case ActivityHigh:
			t.add(2, ReasonVeryActive)
		case ActivityMedium:
			t.add(1, ReasonActive)
		}
	}

	order := rankTallies(tallies)
	n := min(limitOrDefault(opts.Limit), len(order))
	recs := make([]DesignerRecommendation, 0, n)
	for _, idx := range order[:n] {
		t := tallies[idx]
		recs = append(recs, DesignerRecommendation{
			Designer:             designers[idx],
			RecommendationScore:  t.score,
			RecommendationReason: designerReasonText(t.primary(designerReasonPriority), &designers[idx], t.distance),
			Distance:             t.distance,
			Reasons:              t.reasons,
		})
	}
	return recs
}

// rankTallies returns candidate indexes by score descending, stable on ties.
func rankTallies(tallies []tally) []int {
	idx := make([]int, len(tallies))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return tallies[idx[a]].score > tallies[idx[b]].score
	})
	return idx
}

func distanceText(d *float64) string {
	if d == nil {
		return "unknown"
	}
	return formatNumber(*d)
}

func producerReasonText(r Reason, p *Producer, distance *float64) string {
	switch r {
	case "":
		return "This producer may be a good match for your projects."
	case ReasonPreviousSuccess:
		return "You've worked successfully with this producer before."
	case ReasonSpecialtyMatch:
		specialty := "your common project types"
		if len(p.Specialties) > 0 {
			specialty = p.Specialties[0]
		}
		return fmt.Sprintf("Specializes in %s.", specialty)
	case ReasonVeryClose:
		return fmt.Sprintf("Very close to your location (%skm).", distanceText(distance))
	case ReasonNearby:
		return fmt.Sprintf("Conveniently located near you (%skm).", distanceText(distance))
	case ReasonInRange:
		return fmt.Sprintf("Within your area (%skm).", distanceText(distance))
	case ReasonTopRated:
		return fmt.Sprintf("Top-rated producer (%s stars).", formatNumber(p.Rating))
	case ReasonHighlyRated:
		return fmt.Sprintf("Highly rated by other designers (%s stars).", formatNumber(p.Rating))
	case ReasonWellRated:
		return fmt.Sprintf("Well-reviewed producer (%s stars).", formatNumber(p.Rating))
	case ReasonHighAvailability:
		return "Currently has high availability for new projects."
	case ReasonGoodAvailability:
		return "Has good capacity for new projects."
	default:
		return "Recommended based on your profile and past projects."
	}
}

func designerReasonText(r Reason, d *Designer, distance *float64) string {
	switch r {
	case "":
		return "This designer may be looking for your services."
	case ReasonPreviousSuccess:
		return "You've worked successfully with this designer before."
	case ReasonProductTypeMatch:
		productType := "products you specialize in"
		if len(d.CommonProductTypes) > 0 {
			productType = d.CommonProductTypes[0]
		}
		return fmt.Sprintf("Creates %s that match your specialties.", productType)
	case ReasonVeryClose:
		return fmt.Sprintf("Very close to your location (%skm).", distanceText(distance))
	case ReasonNearby:
		return fmt.Sprintf("Conveniently located near you (%skm).", distanceText(distance))
	case ReasonInRange:
		return fmt.Sprintf("Within your service area (%skm).", distanceText(distance))
	case ReasonTopRated:
		return fmt.Sprintf("Top-rated designer (%s stars).", formatNumber(d.Rating))
	case ReasonHighlyRated:
		return fmt.Sprintf("Highly rated designer (%s stars).", formatNumber(d.Rating))
	case ReasonWellRated:
		return fmt.Sprintf("Well-reviewed designer (%s stars).", formatNumber(d.Rating))
	case ReasonVeryActive:
		return "Very active designer with frequent projects."
	case ReasonActive:
		return "Regularly creates new projects."
	default:
		return "Recommended based on your capabilities and location."
	}
}
