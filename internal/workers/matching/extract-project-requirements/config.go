// internal/workers/matching/extract-project-requirements/config.go
package extractprojectrequirements

import "time"

type Config struct {
	DefaultPreferredDistance float64
	Timeout                  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultPreferredDistance: 25,
		Timeout:                  10 * time.Second,
	}
}
