// internal/matching/reports.go
package matching

import (
	"math"
	"sort"
)

const OtherProductType = "Other"

// TrendingProductTypes returns the most frequent product types in orders,
// most frequent first. Ties keep first-seen order. Orders without a product
// type count as "Other".
func TrendingProductTypes(orders []Order, limit int) []string {
	if len(orders) == 0 {
		return []string{}
	}

	counts := make(map[string]int)
	var seen []string
	for _, o := range orders {
		pt := o.ProductType
		if pt == "" {
			pt = OtherProductType
		}
		if _, ok := counts[pt]; !ok {
			seen = append(seen, pt)
		}
		counts[pt]++
	}

	sort.SliceStable(seen, func(i, j int) bool {
		return counts[seen[i]] > counts[seen[j]]
	})

	n := min(limitOrDefault(limit), len(seen))
	return seen[:n]
}

// ProducerMomentum is the per-producer aggregate behind RisingProducers.
type ProducerMomentum struct {
	Producer         Producer `json:"producer"`
	RecentOrderCount int      `json:"recentOrderCount"`
	AverageRating    float64  `json:"averageRating"`
	ImprovementScore float64  `json:"improvementScore"`
}

// ProducerMomentums aggregates orders per producer. Producers are taken in
// input order with duplicate ids collapsed onto the first occurrence; orders
// for unknown producers are ignored and unrated orders do not enter the
// average.
func ProducerMomentums(producers []Producer, orders []Order) []ProducerMomentum {
	index := make(map[string]int, len(producers))
	metrics := make([]ProducerMomentum, 0, len(producers))
	ratingSums := make([]float64, 0, len(producers))
	ratingSamples := make([]int, 0, len(producers))

	for _, p := range producers {
		if _, dup := index[p.ID]; dup {
			continue
		}
		index[p.ID] = len(metrics)
		metrics = append(metrics, ProducerMomentum{Producer: p})
		ratingSums = append(ratingSums, 0)
		ratingSamples = append(ratingSamples, 0)
	}

	for _, o := range orders {
		i, ok := index[o.ProducerID]
		if !ok {
			continue
		}
		metrics[i].RecentOrderCount++
		if o.Rating != 0 && !math.IsNaN(o.Rating) {
			ratingSums[i] += o.Rating
			ratingSamples[i]++
		}
	}

	for i := range metrics {
		if ratingSamples[i] > 0 {
			metrics[i].AverageRating = ratingSums[i] / float64(ratingSamples[i])
		}
		volume := math.Min(5, float64(metrics[i].RecentOrderCount)) / 5
		// Rating term assumes a 3..5 range and is left unclamped.
		ratingTerm := (metrics[i].AverageRating - 3) / 2
		metrics[i].ImprovementScore = volume*0.6 + ratingTerm*0.4
	}
	return metrics
}

// RisingProducers returns the producers with the best mix of recent volume
// and recent ratings. A nil order list yields no result.
func RisingProducers(producers []Producer, orders []Order, limit int) []Producer {
	if len(producers) == 0 || orders == nil {
		return []Producer{}
	}

	metrics := ProducerMomentums(producers, orders)
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].ImprovementScore > metrics[j].ImprovementScore
	})

	n := min(limitOrDefault(limit), len(metrics))
	out := make([]Producer, 0, n)
	for _, m := range metrics[:n] {
		out = append(out, m.Producer)
	}
	return out
}
