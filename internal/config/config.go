package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	App       AppConfig       `yaml:"app"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Platform  PlatformConfig  `yaml:"platform"`
	SES       SESConfig       `yaml:"ses"`
	Metastore MetastoreConfig `yaml:"metastore"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// AppConfig holds merchant-facing identity used in outgoing mail.
type AppConfig struct {
	BaseURL     string `yaml:"base_url"`
	StoreName   string `yaml:"store_name"`
	SenderEmail string `yaml:"sender_email"`
}

// WebhookConfig holds the platform webhook shared secret.
type WebhookConfig struct {
	SharedSecret string `yaml:"shared_secret"`
}

// SchedulerConfig holds the signing keys for durable-scheduler callbacks.
// Two keys are active at once so keys can rotate without downtime: a
// callback is accepted if its signature matches either.
type SchedulerConfig struct {
	SigningKey     string `yaml:"signing_key"`
	SigningKeyNext string `yaml:"signing_key_next"`
}

// PlatformConfig holds the e-commerce platform API configuration.
type PlatformConfig struct {
	BaseURL        string `yaml:"base_url"`
	StoreDomain    string `yaml:"store_domain"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	TokenURL       string `yaml:"token_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageSize       int    `yaml:"page_size"`
}

// Timeout returns the configured timeout as a duration.
func (c PlatformConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SESConfig holds AWS SES API configuration.
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MetastoreConfig holds DynamoDB metadata-store configuration.
type MetastoreConfig struct {
	Table      string `yaml:"table"`
	Region     string `yaml:"region"`
	AWSProfile string `yaml:"aws_profile"` // empty uses the default credential chain
	InstallID  string `yaml:"install_id"`  // app-installation identity scoping all keys
}

// GetAWSProfile returns the AWS profile, with environment overrides.
func (c MetastoreConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// DispatchConfig holds batch fan-out tuning.
type DispatchConfig struct {
	BatchSize           int `yaml:"batch_size"`
	InterBatchDelayMs   int `yaml:"inter_batch_delay_ms"`
	PerItemTimeoutSecs  int `yaml:"per_item_timeout_seconds"`
}

// InterBatchDelay returns the configured delay as a duration.
func (c DispatchConfig) InterBatchDelay() time.Duration {
	return time.Duration(c.InterBatchDelayMs) * time.Millisecond
}

// PerItemTimeout returns the configured per-send timeout as a duration.
func (c DispatchConfig) PerItemTimeout() time.Duration {
	return time.Duration(c.PerItemTimeoutSecs) * time.Second
}

// Load reads and parses the configuration file.
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
	if cfg.Platform.TimeoutSeconds == 0 {
		cfg.Platform.TimeoutSeconds = 30
	}
	if cfg.Platform.PageSize == 0 {
		cfg.Platform.PageSize = 250
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.Metastore.Region == "" {
		cfg.Metastore.Region = cfg.SES.Region
	}
	if cfg.Dispatch.BatchSize == 0 {
		cfg.Dispatch.BatchSize = 100
	}
	if cfg.Dispatch.InterBatchDelayMs == 0 {
		cfg.Dispatch.InterBatchDelayMs = 1000
	}
	if cfg.Dispatch.PerItemTimeoutSecs == 0 {
		cfg.Dispatch.PerItemTimeoutSecs = 30
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) first, so secrets can live in .env
// locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("WEBHOOK_SHARED_SECRET"); v != "" {
		cfg.Webhook.SharedSecret = v
	}
	if v := os.Getenv("SCHEDULER_SIGNING_KEY"); v != "" {
		cfg.Scheduler.SigningKey = v
	}
	if v := os.Getenv("SCHEDULER_SIGNING_KEY_NEXT"); v != "" {
		cfg.Scheduler.SigningKeyNext = v
	}
	if v := os.Getenv("APP_BASE_URL"); v != "" {
		cfg.App.BaseURL = v
	}
	if v := os.Getenv("STORE_NAME"); v != "" {
		cfg.App.StoreName = v
	}
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		cfg.App.SenderEmail = v
	}
	if v := os.Getenv("PLATFORM_BASE_URL"); v != "" {
		cfg.Platform.BaseURL = v
	}
	if v := os.Getenv("PLATFORM_STORE_DOMAIN"); v != "" {
		cfg.Platform.StoreDomain = v
	}
	if v := os.Getenv("PLATFORM_CLIENT_ID"); v != "" {
		cfg.Platform.ClientID = v
	}
	if v := os.Getenv("PLATFORM_CLIENT_SECRET"); v != "" {
		cfg.Platform.ClientSecret = v
	}
	if v := os.Getenv("PLATFORM_TOKEN_URL"); v != "" {
		cfg.Platform.TokenURL = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("METASTORE_TABLE"); v != "" {
		cfg.Metastore.Table = v
	}
	if v := os.Getenv("METASTORE_INSTALL_ID"); v != "" {
		cfg.Metastore.InstallID = v
	}

	return cfg, nil
}

// Validate checks that every value required for correct operation is set.
// A missing secret is a fatal configuration error surfaced at startup, not
// a per-request failure.
func (c *Config) Validate() error {
	if c.Webhook.SharedSecret == "" {
		return fmt.Errorf("config: webhook shared secret is required (WEBHOOK_SHARED_SECRET)")
	}
	if c.Scheduler.SigningKey == "" {
		return fmt.Errorf("config: scheduler signing key is required (SCHEDULER_SIGNING_KEY)")
	}
	if c.App.BaseURL == "" {
		return fmt.Errorf("config: app base URL is required (APP_BASE_URL)")
	}
	if c.App.StoreName == "" {
		return fmt.Errorf("config: store name is required (STORE_NAME)")
	}
	if c.App.SenderEmail == "" {
		return fmt.Errorf("config: sender email is required (SENDER_EMAIL)")
	}
	if c.Platform.StoreDomain == "" {
		return fmt.Errorf("config: platform store domain is required (PLATFORM_STORE_DOMAIN)")
	}
	if c.Metastore.Table == "" {
		return fmt.Errorf("config: metastore table is required (METASTORE_TABLE)")
	}
	if c.Metastore.InstallID == "" {
		return fmt.Errorf("config: metastore install id is required (METASTORE_INSTALL_ID)")
	}
	return nil
}
