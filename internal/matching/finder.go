// internal/matching/finder.go
package matching

import "sort"

// FindMatches scores producers with the default engine.
func FindMatches(project *Project, producers []Producer, opts MatchOptions) []Match {
	return defaultEngine.FindMatches(project, producers, opts)
}

// FindMatches scores every producer, orders by score descending with input
// order breaking ties, and drops results below opts.MinimumScore.
func (e *Engine) FindMatches(project *Project, producers []Producer, opts MatchOptions) []Match {
	matches := make([]Match, 0, len(producers))
	for i := range producers {
		result := e.CalculateMatchScore(project, &producers[i])
		matches = append(matches, Match{
			Producer:       producers[i],
			MatchScore:     result.Score,
			EstimatedPrice: result.EstimatedPrice,
			Turnaround:     result.EstimatedTurnaround,
			Notes:          result.MatchNotes,
			Scores:         result.Scores,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if opts.MinimumScore <= 0 {
		return matches
	}
	filtered := matches[:0]
	for _, m := range matches {
		if m.MatchScore >= opts.MinimumScore {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
