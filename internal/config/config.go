package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Matching MatchingConfig
	Scoring  ScoringConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	ScoreTTL     time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MatchingConfig holds the match query defaults applied when a request
// omits a parameter.
type MatchingConfig struct {
	DefaultMaxDistanceKm    int
	DefaultMinCompatibility int
	DefaultLimit            int
	QueryTimeout            time.Duration
}

type RecomputeMode string

const (
	RecomputeAsync RecomputeMode = "async"
	RecomputeSync  RecomputeMode = "sync"
)

type ScoringConfig struct {
	CacheMaxAge          time.Duration
	RecomputeMode        RecomputeMode
	RecomputeConcurrency int
	RecomputeTimeout     time.Duration
	SweepInterval        time.Duration
	SweepBatchSize       int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_SCORE_TTL", "1h")
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	viper.SetDefault("REDIS_READ_TIMEOUT", "3s")
	viper.SetDefault("REDIS_WRITE_TIMEOUT", "3s")
	viper.SetDefault("MATCH_DEFAULT_MAX_DISTANCE_KM", 50)
	viper.SetDefault("MATCH_DEFAULT_MIN_COMPATIBILITY", 40)
	viper.SetDefault("MATCH_DEFAULT_LIMIT", 20)
	viper.SetDefault("MATCH_QUERY_TIMEOUT", "10s")
	viper.SetDefault("SCORE_CACHE_MAX_AGE", "24h")
	viper.SetDefault("RECOMPUTE_MODE", string(RecomputeAsync))
	viper.SetDefault("RECOMPUTE_CONCURRENCY", 8)
	viper.SetDefault("RECOMPUTE_TIMEOUT", "60s")
	viper.SetDefault("SCORE_SWEEP_INTERVAL", "15m")
	viper.SetDefault("SCORE_SWEEP_BATCH_SIZE", 50)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("METRICS_ENABLED", true)
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetInt("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			DBName:      viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSL_MODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:      viper.GetBool("REDIS_ENABLED"),
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetInt("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			ScoreTTL:     viper.GetDuration("REDIS_SCORE_TTL"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
		},
		Matching: MatchingConfig{
			DefaultMaxDistanceKm:    viper.GetInt("MATCH_DEFAULT_MAX_DISTANCE_KM"),
			DefaultMinCompatibility: viper.GetInt("MATCH_DEFAULT_MIN_COMPATIBILITY"),
			DefaultLimit:            viper.GetInt("MATCH_DEFAULT_LIMIT"),
			QueryTimeout:            viper.GetDuration("MATCH_QUERY_TIMEOUT"),
		},
		Scoring: ScoringConfig{
			CacheMaxAge:          viper.GetDuration("SCORE_CACHE_MAX_AGE"),
			RecomputeMode:        RecomputeMode(strings.ToLower(viper.GetString("RECOMPUTE_MODE"))),
			RecomputeConcurrency: viper.GetInt("RECOMPUTE_CONCURRENCY"),
			RecomputeTimeout:     viper.GetDuration("RECOMPUTE_TIMEOUT"),
			SweepInterval:        viper.GetDuration("SCORE_SWEEP_INTERVAL"),
			SweepBatchSize:       viper.GetInt("SCORE_SWEEP_BATCH_SIZE"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Matching.DefaultMaxDistanceKm <= 0 {
		return fmt.Errorf("default max distance must be positive")
	}
	if c.Matching.DefaultMinCompatibility < 0 || c.Matching.DefaultMinCompatibility > 100 {
		return fmt.Errorf("default min compatibility must be between 0 and 100")
	}
	if c.Matching.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive")
	}
	if c.Scoring.RecomputeMode != RecomputeAsync && c.Scoring.RecomputeMode != RecomputeSync {
		return fmt.Errorf("recompute mode must be %q or %q", RecomputeAsync, RecomputeSync)
	}
	if c.Scoring.RecomputeConcurrency <= 0 {
		return fmt.Errorf("recompute concurrency must be positive")
	}
	if c.Redis.Enabled && c.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool size must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
