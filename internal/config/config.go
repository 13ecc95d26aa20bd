package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Storage     StorageConfig     `yaml:"storage"`
	Attribution AttributionConfig `yaml:"attribution"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL                string `yaml:"url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the configured connection lifetime.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMin) * time.Minute
}

// RedisConfig holds settings for the rate-limiting Redis instance.
type RedisConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Addr              string `yaml:"addr"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	RateLimit         int    `yaml:"rate_limit"`
	RateWindowSeconds int    `yaml:"rate_window_seconds"`
}

// RateWindow returns the rate-limit window duration.
func (r RedisConfig) RateWindow() time.Duration {
	return time.Duration(r.RateWindowSeconds) * time.Second
}

// StorageConfig holds the optional S3 result archive settings.
type StorageConfig struct {
	S3Enabled  bool   `yaml:"s3_enabled"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	AWSProfile string `yaml:"aws_profile"`
}

// AttributionConfig carries deployment overrides for the engine's weight
// tables. Empty maps and a zero weight vector mean "use the defaults"; a
// partial map overrides only the named entries.
type AttributionConfig struct {
	CombineWeights        attribution.CombineWeights `yaml:"combine_weights"`
	TouchpointTypeWeights map[string]float64         `yaml:"touchpoint_type_weights"`
	StageWeights          map[string]float64         `yaml:"stage_weights"`
	QualityMultipliers    map[string]float64         `yaml:"quality_multipliers"`
	DealSizeMultipliers   map[string]float64         `yaml:"deal_size_multipliers"`
	ExpectedCycleDays     map[string]int             `yaml:"expected_cycle_days"`
}

// BuildTables merges the overrides onto the default weight tables.
func (a AttributionConfig) BuildTables() attribution.Tables {
	tables := attribution.DefaultTables()

	if a.CombineWeights.Sum() > 0 {
		tables.DefaultCombineWeights = a.CombineWeights
	}
	for k, v := range a.TouchpointTypeWeights {
		tables.TouchpointTypeWeights[domain.TouchpointType(k)] = v
	}
	for k, v := range a.StageWeights {
		tables.StageWeights[domain.Stage(k)] = v
	}
	for k, v := range a.QualityMultipliers {
		tables.QualityMultipliers[domain.QualityTier(k)] = v
	}
	for k, v := range a.DealSizeMultipliers {
		tables.DealSizeMultipliers[domain.DealSizeTier(k)] = v
	}
	for k, v := range a.ExpectedCycleDays {
		tables.ExpectedCycleDays[domain.DealSizeTier(k)] = v
	}
	return tables
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMin == 0 {
		cfg.Database.ConnMaxLifetimeMin = 30
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.RateLimit == 0 {
		cfg.Redis.RateLimit = 60
	}
	if cfg.Redis.RateWindowSeconds == 0 {
		cfg.Redis.RateWindowSeconds = 60
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = "us-west-2"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if bucket := os.Getenv("RESULTS_S3_BUCKET"); bucket != "" {
		cfg.Storage.S3Bucket = bucket
		cfg.Storage.S3Enabled = true
	}
	if region := os.Getenv("RESULTS_S3_REGION"); region != "" {
		cfg.Storage.S3Region = region
	}
	if profile := os.Getenv("AWS_PROFILE_OVERRIDE"); profile != "" {
		cfg.Storage.AWSProfile = profile
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg, nil
}
