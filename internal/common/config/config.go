// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the worker manager configuration.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Matching      MatchingConfig          `mapstructure:"matching"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	ConnectRetries int    `mapstructure:"connect_retries"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the lib/pq key/value connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"`
}

// GetURL returns URL, falling back to the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings every worker registration shares.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// MatchingConfig tunes candidate retrieval and caching around the scoring
// engine. The scoring weights themselves are fixed.
type MatchingConfig struct {
	ProducerIndex            string  `mapstructure:"producer_index"`
	CandidateSearchSize      int     `mapstructure:"candidate_search_size"`
	DefaultPreferredDistance float64 `mapstructure:"default_preferred_distance_km"`
	DefaultMinimumScore      int     `mapstructure:"default_minimum_score"`
	DefaultLimit             int     `mapstructure:"default_limit"`
	TrendingWindowDays       int     `mapstructure:"trending_window_days"`
	ProfileCacheTTL          int     `mapstructure:"profile_cache_ttl"`   // seconds
	ReportCacheTTL           int     `mapstructure:"report_cache_ttl"`    // seconds
	CandidateCacheTTL        int     `mapstructure:"candidate_cache_ttl"` // seconds
}

// NotificationConfig holds settings for the send-match-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	TopMatches int `mapstructure:"top_matches"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// RegistryConfig points at the activity registry that carries per task type
// input schemas.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

type ObservabilityConfig struct {
	ServiceName     string  `mapstructure:"service_name"`
	TracingEnabled  bool    `mapstructure:"tracing_enabled"`
	TraceSampleRate float64 `mapstructure:"trace_sample_rate"`
}

// Seconds converts a seconds setting to a duration.
func Seconds(s int) time.Duration {
	return time.Duration(s) * time.Second
}
