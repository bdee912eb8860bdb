// internal/workers/recommendation/recommend-designers/config.go
package recommenddesigners

import "time"

type Config struct {
	CandidateLimit  int
	DefaultLimit    int
	ProfileCacheTTL time.Duration
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CandidateLimit:  200,
		DefaultLimit:    5,
		ProfileCacheTTL: 10 * time.Minute,
		Timeout:         30 * time.Second,
	}
}
