package config

import (
	"github.com/maxviazov/gps-performance-service/internal/logger"
)

// Config is the full application configuration loaded from config.yaml
// with APP_ environment overrides.
type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Engine   EngineConfig        `mapstructure:"engine"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// PostgresConfig holds connection and pool tuning parameters.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

// EngineConfig tunes the analysis engine's heuristics. The matcher
// thresholds are heuristic magic numbers with no principled derivation;
// keeping them here lets deployments adjust for their naming conventions.
type EngineConfig struct {
	Matcher  MatcherConfig  `mapstructure:"matcher"`
	Baseline BaselineConfig `mapstructure:"baseline"`
}

// MatcherConfig holds player-matching thresholds.
type MatcherConfig struct {
	MinAcceptScore    int `mapstructure:"min_accept_score"`
	OverlapBoostScore int `mapstructure:"overlap_boost_score"`
}

// BaselineConfig scopes the rolling windows for historical baselines and
// the TTL of the baseline cache.
type BaselineConfig struct {
	TrainingWindowDays int `mapstructure:"training_window_days"`
	MatchWindowCount   int `mapstructure:"match_window_count"`
	CacheTTLSeconds    int `mapstructure:"cache_ttl_seconds"`
}

// SetDefaults fills zero values with the stock engine tunables.
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Engine.Matcher.MinAcceptScore == 0 {
		c.Engine.Matcher.MinAcceptScore = 50
	}
	if c.Engine.Matcher.OverlapBoostScore == 0 {
		c.Engine.Matcher.OverlapBoostScore = 60
	}
	if c.Engine.Baseline.TrainingWindowDays == 0 {
		c.Engine.Baseline.TrainingWindowDays = 30
	}
	if c.Engine.Baseline.MatchWindowCount == 0 {
		c.Engine.Baseline.MatchWindowCount = 5
	}
	if c.Engine.Baseline.CacheTTLSeconds == 0 {
		c.Engine.Baseline.CacheTTLSeconds = 300
	}
}
