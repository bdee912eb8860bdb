// internal/workers/recommendation/recommend-producers/config.go
package recommendproducers

import "time"

type Config struct {
	SearchRadiusKm      float64
	CandidateSearchSize int
	DefaultLimit        int
	ProfileCacheTTL     time.Duration
	Timeout             time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SearchRadiusKm:      50,
		CandidateSearchSize: 100,
		DefaultLimit:        5,
		ProfileCacheTTL:     10 * time.Minute,
		Timeout:             30 * time.Second,
	}
}
