package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the csvflag server.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Transform TransformConfig
	Retention RetentionConfig
	Registry  RegistryConfig
	RabbitMQ  RabbitMQConfig
}

type ServerConfig struct {
	Port         int           `mapstructure:"API_PORT"`
	ReadTimeout  time.Duration `mapstructure:"API_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"API_WRITE_TIMEOUT"`
	RateLimit    int           `mapstructure:"API_RATE_LIMIT"`
	GinMode      string        `mapstructure:"GIN_MODE"`
}

type StorageConfig struct {
	Dir            string `mapstructure:"STORAGE_DIR"`
	MaxUploadBytes int64  `mapstructure:"UPLOAD_MAX_BYTES"`
}

type WorkerConfig struct {
	PoolSize     int           `mapstructure:"WORKER_POOL_SIZE"`
	QueueSize    int           `mapstructure:"WORKER_QUEUE_SIZE"`
	JobTimeout   time.Duration `mapstructure:"JOB_TIMEOUT"`
	RetainFailed bool          `mapstructure:"JOB_RETAIN_FAILED"`
}

type TransformConfig struct {
	FlagColumn string `mapstructure:"FLAG_COLUMN"`
	Uppercase  bool   `mapstructure:"FLAG_UPPERCASE"`
}

type RetentionConfig struct {
	Window        time.Duration `mapstructure:"RETENTION_WINDOW"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	SweepOnStart  bool          `mapstructure:"SWEEP_ON_START"`
}

type RegistryConfig struct {
	Backend  string `mapstructure:"REGISTRY_BACKEND"`
	RedisURL string `mapstructure:"REDIS_URL"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"RABBITMQ_URL"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	// Attempt to read .env file (non-fatal if missing)
	_ = v.ReadInConfig()

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("API_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("API_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("API_WRITE_TIMEOUT")
	cfg.Server.RateLimit = v.GetInt("API_RATE_LIMIT")
	cfg.Server.GinMode = v.GetString("GIN_MODE")
	cfg.Storage.Dir = v.GetString("STORAGE_DIR")
	cfg.Storage.MaxUploadBytes = v.GetInt64("UPLOAD_MAX_BYTES")
	cfg.Worker.PoolSize = v.GetInt("WORKER_POOL_SIZE")
	cfg.Worker.QueueSize = v.GetInt("WORKER_QUEUE_SIZE")
	cfg.Worker.JobTimeout = v.GetDuration("JOB_TIMEOUT")
	cfg.Worker.RetainFailed = v.GetBool("JOB_RETAIN_FAILED")
	cfg.Transform.FlagColumn = v.GetString("FLAG_COLUMN")
	cfg.Transform.Uppercase = v.GetBool("FLAG_UPPERCASE")
	cfg.Retention.Window = v.GetDuration("RETENTION_WINDOW")
	cfg.Retention.SweepInterval = v.GetDuration("SWEEP_INTERVAL")
	cfg.Retention.SweepOnStart = v.GetBool("SWEEP_ON_START")
	cfg.Registry.Backend = v.GetString("REGISTRY_BACKEND")
	cfg.Registry.RedisURL = v.GetString("REDIS_URL")
	cfg.RabbitMQ.URL = v.GetString("RABBITMQ_URL")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_READ_TIMEOUT", "30s")
	v.SetDefault("API_WRITE_TIMEOUT", "60s")
	v.SetDefault("API_RATE_LIMIT", 100)
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORAGE_DIR", "uploaded-files")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("WORKER_POOL_SIZE", 4)
	v.SetDefault("WORKER_QUEUE_SIZE", 64)
	v.SetDefault("JOB_TIMEOUT", "0s")
	v.SetDefault("JOB_RETAIN_FAILED", true)
	v.SetDefault("FLAG_COLUMN", "flag")
	v.SetDefault("FLAG_UPPERCASE", false)
	v.SetDefault("RETENTION_WINDOW", "168h")
	v.SetDefault("SWEEP_INTERVAL", "24h")
	v.SetDefault("SWEEP_ON_START", false)
	v.SetDefault("REGISTRY_BACKEND", BackendMemory)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("RABBITMQ_URL", "")
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("config: STORAGE_DIR is required")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_BYTES must be positive, got %d", c.Storage.MaxUploadBytes)
	}
	if c.Worker.PoolSize <= 0 {
		return fmt.Errorf("config: WORKER_POOL_SIZE must be positive, got %d", c.Worker.PoolSize)
	}
	if c.Worker.QueueSize < 0 {
		return fmt.Errorf("config: WORKER_QUEUE_SIZE must not be negative, got %d", c.Worker.QueueSize)
	}
	if c.Transform.FlagColumn == "" {
		return fmt.Errorf("config: FLAG_COLUMN is required")
	}
	if c.Retention.Window <= 0 || c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("config: RETENTION_WINDOW and SWEEP_INTERVAL must be positive")
	}
	switch c.Registry.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown REGISTRY_BACKEND %q", c.Registry.Backend)
	}
	return nil
}
