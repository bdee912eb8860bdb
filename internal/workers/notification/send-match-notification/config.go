// internal/workers/notification/send-match-notification/config.go
package sendmatchnotification

import "time"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SMSSenderID  string
	AWSRegion    string
	TopMatches   int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		TopMatches: 3,
		Timeout:    30 * time.Second,
	}
}
