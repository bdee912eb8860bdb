// internal/workers/recommendation/trending-product-types/config.go
package trendingproducttypes

import "time"

type Config struct {
	DefaultWindowDays int
	DefaultLimit      int
	ReportCacheTTL    time.Duration
	Timeout           time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultWindowDays: 30,
		DefaultLimit:      5,
		ReportCacheTTL:    15 * time.Minute,
		Timeout:           20 * time.Second,
	}
}
