package config

import (
	"fmt"
	"strings"

	"github.com/2beens/gymplan/internal/plan"
	"github.com/2beens/gymplan/internal/progression"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresDBName   string `toml:"postgres_db_name"`
	PostgresUser     string `toml:"postgres_user"`
	PostgresMaxConns int32  `toml:"postgres_max_conns"`
	RunMigrations    bool   `toml:"run_migrations"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	RateLimitAllowedPerMin int      `toml:"rate_limit_allowed_per_min"`
	CorsAllowedOrigins     []string `toml:"cors_allowed_origins"`

	// requests without an owner header act on the default owner
	DefaultOwner string `toml:"default_owner"`

	// progression
	AdherenceWindowWeeks       int  `toml:"adherence_window_weeks"`
	AdherenceSessionsPerWeek   int  `toml:"adherence_sessions_per_week"`
	DeriveSessionsFromTemplate bool `toml:"derive_sessions_from_template"`

	// plan snapshot cache
	SnapshotCacheSizeBytes int `toml:"snapshot_cache_size_bytes"`
	SnapshotCacheTTLSec    int `toml:"snapshot_cache_ttl_sec"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for the given env,
// with defaults filled in for the keys left out.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}

	cfg.setDefaults()
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.RateLimitAllowedPerMin <= 0 {
		c.RateLimitAllowedPerMin = 60
	}
	if c.DefaultOwner == "" {
		c.DefaultOwner = "default"
	}
	if c.AdherenceWindowWeeks <= 0 {
		c.AdherenceWindowWeeks = 3
	}
	if c.AdherenceSessionsPerWeek <= 0 {
		c.AdherenceSessionsPerWeek = 4
	}
	// smaller caches refuse a full size plan
	if c.SnapshotCacheSizeBytes < plan.MinSnapshotCacheSizeBytes {
		c.SnapshotCacheSizeBytes = plan.MinSnapshotCacheSizeBytes
	}
	if c.SnapshotCacheTTLSec <= 0 {
		c.SnapshotCacheTTLSec = 300
	}
}

// AdherenceAnalyzer builds the adherence analysis configured by the progression keys.
func (c *Config) AdherenceAnalyzer() *progression.AdherenceAnalyzer {
	return &progression.AdherenceAnalyzer{
		WindowWeeks:     c.AdherenceWindowWeeks,
		SessionsPerWeek: c.AdherenceSessionsPerWeek,
		Tiers:           progression.DefaultAdherenceTiers,
	}
}
