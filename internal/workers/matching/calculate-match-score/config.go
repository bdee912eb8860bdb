// internal/workers/matching/calculate-match-score/config.go
package calculatematchscore

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  15 * time.Second,
	}
}
