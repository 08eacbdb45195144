package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
	SMTP      SMTPConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	ExpiryHours int    `mapstructure:"expiry_hours" envconfig:"JWT_EXPIRY_HOURS"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int    `mapstructure:"max_retries" envconfig:"REDIS_MAX_RETRIES"`
	PoolSize     int    `mapstructure:"pool_size" envconfig:"REDIS_POOL_SIZE"`
	MinIdleConns int    `mapstructure:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS"`
}

type SchedulerConfig struct {
	Enabled             bool `mapstructure:"enabled" envconfig:"SCHEDULER_ENABLED"`
	DispatchEnabled     bool `mapstructure:"dispatch_enabled" envconfig:"SCHEDULER_DISPATCH_ENABLED"`
	DispatchPollSeconds int  `mapstructure:"dispatch_poll_seconds" envconfig:"SCHEDULER_DISPATCH_POLL_SECONDS"`
	DispatchBatchSize   int  `mapstructure:"dispatch_batch_size" envconfig:"SCHEDULER_DISPATCH_BATCH_SIZE"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" envconfig:"RATE_LIMIT_RPS"`
	Burst int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

// LoadConfig reads config.yaml then overlays environment variables, so
// deployments can override any file value without editing it.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &config, nil
}
