// internal/workers/matching/find-producer-matches/config.go
package findproducermatches

import "time"

type Config struct {
	CandidateSearchSize      int
	DefaultPreferredDistance float64
	DefaultMinimumScore      int
	ProfileCacheTTL          time.Duration
	CandidateCacheTTL        time.Duration
	MaxConcurrentLoads       int
	Timeout                  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CandidateSearchSize:      100,
		DefaultPreferredDistance: 25,
		ProfileCacheTTL:          10 * time.Minute,
		CandidateCacheTTL:        2 * time.Minute,
		MaxConcurrentLoads:       8,
		Timeout:                  30 * time.Second,
	}
}
