// internal/workers/recommendation/rising-producers/config.go
package risingproducers

import "time"

type Config struct {
	DefaultWindowDays int
	DefaultLimit      int
	CandidateLimit    int
	ReportCacheTTL    time.Duration
	Timeout           time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultWindowDays: 30,
		DefaultLimit:      5,
		CandidateLimit:    500,
		ReportCacheTTL:    15 * time.Minute,
		Timeout:           30 * time.Second,
	}
}
